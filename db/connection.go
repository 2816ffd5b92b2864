package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier runs statements. Both pgxpool.Pool and pgxpool.Conn implement it.
type Querier interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
}

// PgxIface is the subset of pgxpool.Pool used by this package.
type PgxIface interface {
	Querier
	Ping(context.Context) error
	Close()
}

type PoolConfig struct {
	DatabaseURL    string
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
	IdleTimeout    time.Duration
	MaxLifetime    time.Duration
	SearchPath     string
}

func (c PoolConfig) pgxConfig() (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	config.MaxConns = c.MaxConns
	config.MinConns = c.MinConns
	if config.MinConns > config.MaxConns {
		config.MinConns = config.MaxConns
	}

	if c.ConnectTimeout > 0 {
		config.ConnConfig.ConnectTimeout = c.ConnectTimeout
	}
	if c.IdleTimeout > 0 {
		config.MaxConnIdleTime = c.IdleTimeout
	}
	if c.MaxLifetime > 0 {
		config.MaxConnLifetime = c.MaxLifetime
	}

	searchPath := c.SearchPath
	if searchPath == "" {
		searchPath = "public"
	}
	config.ConnConfig.RuntimeParams["search_path"] = searchPath

	return config, nil
}

// NewPool opens the process-wide pool.
func NewPool(ctx context.Context, c PoolConfig) (*pgxpool.Pool, error) {
	config, err := c.pgxConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	return pool, nil
}

// WaitForDatabase pings until the database answers, giving up after attempts tries.
func WaitForDatabase(ctx context.Context, conn PgxIface, attempts int, interval time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = conn.Ping(ctx); err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("database unreachable after %d attempts: %w", attempts, err)
}
