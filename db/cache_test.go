package db

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
)

func newCachedRepository(t *testing.T) (*CachedRepository, pgxmock.PgxPoolIface) {
	repo, mock := newMockRepository(t)

	cache, err := NewCache(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cache.Close)

	return NewCachedRepository(repo, cache), mock
}

func TestCachedRepository_insertThenFindHitsCache(t *testing.T) {
	repo, mock := newCachedRepository(t)

	mock.ExpectExec(`^INSERT INTO pessoa`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := repo.Insert(context.Background(), NovaPessoa{Apelido: "jose", Nome: "José", Nascimento: testNascimento})
	if err != nil {
		t.Fatal(err)
	}
	repo.cache.Wait()

	found, err := repo.FindById(context.Background(), created.Id)
	if err != nil {
		t.Fatal(err)
	}
	if found.Apelido != "jose" {
		t.Errorf("unexpected pessoa %+v", found)
	}

	// no SELECT expected: the lookup must be served from memory
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestCachedRepository_missIsNotCached(t *testing.T) {
	repo, mock := newCachedRepository(t)

	mock.ExpectQuery(`^SELECT (.+) FROM pessoa WHERE id = \$1$`).
		WithArgs(testId).
		WillReturnRows(mock.NewRows(pessoaColumns))
	mock.ExpectQuery(`^SELECT (.+) FROM pessoa WHERE id = \$1$`).
		WithArgs(testId).
		WillReturnRows(mock.NewRows(pessoaColumns).
			AddRow(testId, "jose", "José", testNascimento, nil))

	if _, err := repo.FindById(context.Background(), testId); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	repo.cache.Wait()

	found, err := repo.FindById(context.Background(), testId)
	if err != nil {
		t.Fatal(err)
	}
	if found.Apelido != "jose" {
		t.Errorf("unexpected pessoa %+v", found)
	}
}
