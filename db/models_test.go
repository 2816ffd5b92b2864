package db

import (
	"reflect"
	"testing"
)

func TestSplitStack(t *testing.T) {
	cases := []struct {
		stored *string
		want   []string
	}{
		{nil, []string{}},
		{strPtr(""), []string{}},
		{strPtr("Go"), []string{"Go"}},
		{strPtr("C#,Node,Oracle"), []string{"C#", "Node", "Oracle"}},
		{strPtr("Ruby on Rails,Go"), []string{"Ruby on Rails", "Go"}},
		{strPtr(",Go,,Rust,"), []string{"Go", "Rust"}},
	}

	for _, c := range cases {
		if got := SplitStack(c.stored); !reflect.DeepEqual(got, c.want) {
			t.Errorf("SplitStack(%v) = %#v, want %#v", c.stored, got, c.want)
		}
	}
}

func TestJoinStackRoundTrip(t *testing.T) {
	stack := []string{"C#", "Spring Boot", "Node"}

	if got := SplitStack(JoinStack(stack)); !reflect.DeepEqual(got, stack) {
		t.Errorf("round trip lost tags: %#v", got)
	}
	if JoinStack(nil) != nil {
		t.Error("nil stack must stay NULL")
	}
}

func TestJoinStack_whenTagHasSeparator_shouldSplitOnRead(t *testing.T) {
	// "," is the stored separator, a tag containing it comes back as two tags
	got := SplitStack(JoinStack([]string{"a,b"}))

	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestToPessoa(t *testing.T) {
	row := PessoaRow{
		Id:         testId,
		Apelido:    "josé",
		Nome:       "José Roberto",
		Nascimento: testNascimento,
		Stack:      strPtr("C#,Node,Oracle"),
	}

	pessoa := row.ToPessoa()

	if pessoa.Nascimento != "2000-10-01" {
		t.Errorf("unexpected nascimento %q", pessoa.Nascimento)
	}
	if pessoa.Apelido != row.Apelido || pessoa.Nome != row.Nome || pessoa.Id != row.Id {
		t.Errorf("fields not mapped through: %+v", pessoa)
	}
	if !reflect.DeepEqual(pessoa.Stack, []string{"C#", "Node", "Oracle"}) {
		t.Errorf("unexpected stack %#v", pessoa.Stack)
	}
}

func TestSearchText(t *testing.T) {
	if got := searchText("jose", "José Roberto", strPtr("C#,Node")); got != "jose José Roberto C#,Node" {
		t.Errorf("unexpected search text %q", got)
	}
	if got := searchText("ana", "Ana", nil); got != "ana Ana " {
		t.Errorf("unexpected search text %q", got)
	}
}
