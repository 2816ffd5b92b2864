package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	SearchLimit = 50

	uniqueViolation = "23505"
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	pessoaColumns = []string{"id", "apelido", "nome", "nascimento", "stack"}

	ErrNotFound = errors.New("pessoa not found")
)

// ApelidoError reports an insert rejected by a unique constraint.
type ApelidoError struct {
	Apelido    string
	Constraint string
}

func (e *ApelidoError) Error() string {
	return fmt.Sprintf("apelido %q already exists (%s)", e.Apelido, e.Constraint)
}

type Repository interface {
	FindById(ctx context.Context, id uuid.UUID) (*PessoaRow, error)
	Search(ctx context.Context, term string) ([]PessoaRow, error)
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, pessoa NovaPessoa) (*PessoaRow, error)
}

type PessoaRepository struct {
	acquireTimeout time.Duration
	acquire        func(ctx context.Context) (Querier, func(), error)
	newId          func() uuid.UUID
}

// NewPessoaRepository limits waiting for a pooled connection to acquireTimeout when it is
// positive. Statements themselves run under the caller's context.
func NewPessoaRepository(conn PgxIface, acquireTimeout time.Duration) *PessoaRepository {
	r := &PessoaRepository{
		acquireTimeout: acquireTimeout,
		newId:          uuid.New,
	}

	r.acquire = func(context.Context) (Querier, func(), error) {
		return conn, func() {}, nil
	}
	if pool, ok := conn.(*pgxpool.Pool); ok {
		r.acquire = func(ctx context.Context) (Querier, func(), error) {
			c, err := pool.Acquire(ctx)
			if err != nil {
				return nil, nil, err
			}
			return c, c.Release, nil
		}
	}

	return r
}

// connection returns a querier and its release func. Only the wait is bounded.
func (r *PessoaRepository) connection(ctx context.Context) (Querier, func(), error) {
	acquireCtx := ctx
	if r.acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, r.acquireTimeout)
		defer cancel()
	}

	conn, release, err := r.acquire(acquireCtx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, release, nil
}

func (r *PessoaRepository) Count(ctx context.Context) (int64, error) {
	sql, args, err := psql.Select("count(*)").From("pessoa").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	conn, release, err := r.connection(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	var count int64
	if err := conn.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pessoas: %w", err)
	}

	return count, nil
}

func (r *PessoaRepository) FindById(ctx context.Context, id uuid.UUID) (*PessoaRow, error) {
	sql, args, err := psql.Select(pessoaColumns...).
		From("pessoa").
		Where(sq.Expr("id = ?", id)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find query: %w", err)
	}

	conn, release, err := r.connection(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var pessoa PessoaRow
	err = conn.QueryRow(ctx, sql, args...).Scan(
		&pessoa.Id,
		&pessoa.Apelido,
		&pessoa.Nome,
		&pessoa.Nascimento,
		&pessoa.Stack)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find pessoa %s: %w", id, err)
	}

	return &pessoa, nil
}

// Search matches term as a substring of the search column. The term is always a bound
// parameter, never part of the statement text.
func (r *PessoaRepository) Search(ctx context.Context, term string) ([]PessoaRow, error) {
	sql, args, err := psql.Select(pessoaColumns...).
		From("pessoa").
		Where(sq.Like{"search": "%" + term + "%"}).
		Limit(SearchLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}

	conn, release, err := r.connection(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search pessoas: %w", err)
	}
	defer rows.Close()

	pessoas := make([]PessoaRow, 0, SearchLimit)
	for rows.Next() {
		var pessoa PessoaRow

		err := rows.Scan(
			&pessoa.Id,
			&pessoa.Apelido,
			&pessoa.Nome,
			&pessoa.Nascimento,
			&pessoa.Stack)
		if err != nil {
			return nil, fmt.Errorf("scan pessoa: %w", err)
		}

		pessoas = append(pessoas, pessoa)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search pessoas: %w", err)
	}

	return pessoas, nil
}

func (r *PessoaRepository) Insert(ctx context.Context, nova NovaPessoa) (*PessoaRow, error) {
	stack := JoinStack(nova.Stack)
	search := searchText(nova.Apelido, nova.Nome, stack)

	pessoa := PessoaRow{
		Id:         r.newId(),
		Apelido:    nova.Apelido,
		Nome:       nova.Nome,
		Nascimento: nova.Nascimento,
		Stack:      stack,
		Search:     &search,
	}

	sql, args, err := psql.Insert("pessoa").
		Columns("id", "apelido", "nome", "nascimento", "stack", "search").
		Values(pessoa.Id, pessoa.Apelido, pessoa.Nome, pessoa.Nascimento, pessoa.Stack, search).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	conn, release, err := r.connection(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := conn.Exec(ctx, sql, args...); err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == uniqueViolation {
			return nil, &ApelidoError{Apelido: nova.Apelido, Constraint: pgerr.ConstraintName}
		}
		return nil, fmt.Errorf("insert pessoa %s: %w", pessoa.Id, err)
	}

	return &pessoa, nil
}
