package postgres

import (
	"context"
	"errors"
	"fmt"

	"tidemark/internal/app/server/config"
	"tidemark/internal/infrastructure/migration"
	"tidemark/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Storage struct {
	pool *pgxpool.Pool
}

// New migrates the schema and opens the pool. Migrations come from cfg.DB.Migrations
// when set, otherwise from the copy embedded in the binary.
func New(ctx context.Context, cfg *config.Config) (*Storage, error) {
	m := migration.FromFS(migrations.FS, migrations.PostgresDir, cfg.DB.DatabaseURI)
	if cfg.DB.Migrations != "" {
		m = migration.FromDir(cfg.DB.Migrations, cfg.DB.DatabaseURI)
	}
	if err := m.Up(); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DB.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func (s *Storage) Pool() *pgxpool.Pool {
	return s.pool
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
