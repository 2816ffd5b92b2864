package db

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
)

// rowOverhead approximates the fixed size of a cached PessoaRow beyond its strings.
const rowOverhead = 64

// CachedRepository keeps found and inserted rows by id in memory. Misses are not cached.
type CachedRepository struct {
	Repository
	cache *ristretto.Cache
}

func NewCache(maxCost int64) (*ristretto.Cache, error) {
	// ten counters per expected entry
	counters := maxCost / rowOverhead * 10
	if counters < 1000 {
		counters = 1000
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: counters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return cache, nil
}

func NewCachedRepository(repository Repository, cache *ristretto.Cache) *CachedRepository {
	return &CachedRepository{Repository: repository, cache: cache}
}

func cacheKey(id uuid.UUID) string {
	return "id::" + id.String()
}

func cost(row *PessoaRow) int64 {
	c := int64(rowOverhead + len(row.Apelido) + len(row.Nome))
	if row.Stack != nil {
		c += int64(len(*row.Stack))
	}
	return c
}

func (r *CachedRepository) FindById(ctx context.Context, id uuid.UUID) (*PessoaRow, error) {
	if cached, found := r.cache.Get(cacheKey(id)); found {
		row := cached.(PessoaRow)
		return &row, nil
	}

	row, err := r.Repository.FindById(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey(id), *row, cost(row))
	return row, nil
}

func (r *CachedRepository) Insert(ctx context.Context, nova NovaPessoa) (*PessoaRow, error) {
	row, err := r.Repository.Insert(ctx, nova)
	if err != nil {
		return nil, err
	}

	r.cache.Set(cacheKey(row.Id), *row, cost(row))
	return row, nil
}
