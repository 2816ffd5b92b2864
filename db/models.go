package db

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	StackSeparator = ","
	DateLayout     = "2006-01-02"
)

// PessoaRow is a row of the pessoa table.
type PessoaRow struct {
	Id         uuid.UUID
	Apelido    string
	Nome       string
	Nascimento time.Time
	Stack      *string
	Search     *string
}

// Pessoa is the JSON shape served by the API.
type Pessoa struct {
	Id         uuid.UUID `json:"id"`
	Apelido    string    `json:"apelido"`
	Nome       string    `json:"nome"`
	Nascimento string    `json:"nascimento"`
	Stack      []string  `json:"stack"`
}

// NovaPessoa is a validated create request.
type NovaPessoa struct {
	Apelido    string
	Nome       string
	Nascimento time.Time
	Stack      []string
}

func (row PessoaRow) ToPessoa() Pessoa {
	return Pessoa{
		Id:         row.Id,
		Apelido:    row.Apelido,
		Nome:       row.Nome,
		Nascimento: row.Nascimento.Format(DateLayout),
		Stack:      SplitStack(row.Stack),
	}
}

func ToPessoas(rows []PessoaRow) []Pessoa {
	pessoas := make([]Pessoa, 0, len(rows))
	for _, row := range rows {
		pessoas = append(pessoas, row.ToPessoa())
	}
	return pessoas
}

// SplitStack never returns nil.
func SplitStack(stack *string) []string {
	tags := []string{}
	if stack == nil {
		return tags
	}

	for _, tag := range strings.Split(*stack, StackSeparator) {
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}

	return tags
}

// JoinStack returns nil for an absent stack so the column stays NULL.
func JoinStack(stack []string) *string {
	if stack == nil {
		return nil
	}
	joined := strings.Join(stack, StackSeparator)
	return &joined
}

func searchText(apelido, nome string, stack *string) string {
	search := apelido + " " + nome + " "
	if stack != nil {
		search += *stack
	}
	return search
}
