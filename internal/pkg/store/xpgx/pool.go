package xpgx

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps a pgx pool with squirrel-aware helpers so the store layer never
// touches raw SQL strings.
type Pool interface {
	Getx(ctx context.Context, dest any, q squirrel.Sqlizer) error
	Selectx(ctx context.Context, dest any, q squirrel.Sqlizer) error
	Execx(ctx context.Context, q squirrel.Sqlizer) (pgconn.CommandTag, error)
	Close()
}

type pool struct {
	inner *pgxpool.Pool
}

func NewPool(ctx context.Context, dsn string) (Pool, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err = p.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	return &pool{inner: p}, nil
}

func (p *pool) Getx(ctx context.Context, dest any, q squirrel.Sqlizer) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("q.ToSql: %w", err)
	}

	return pgxscan.Get(ctx, p.inner, dest, sql, args...)
}

func (p *pool) Selectx(ctx context.Context, dest any, q squirrel.Sqlizer) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("q.ToSql: %w", err)
	}

	return pgxscan.Select(ctx, p.inner, dest, sql, args...)
}

func (p *pool) Execx(ctx context.Context, q squirrel.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("q.ToSql: %w", err)
	}

	return p.inner.Exec(ctx, sql, args...)
}

func (p *pool) Close() {
	p.inner.Close()
}
