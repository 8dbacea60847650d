package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	createCacheTableSQL = `CREATE TABLE IF NOT EXISTS sentiment_cache (
	sentence   TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	selectCacheSQL = `SELECT value FROM sentiment_cache WHERE sentence = $1`
	upsertCacheSQL = `INSERT INTO sentiment_cache (sentence, value) VALUES ($1, $2)
ON CONFLICT (sentence) DO UPDATE SET value = EXCLUDED.value`
)

// Querier is satisfied by *pgxpool.Pool and *pgx.Conn.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	db Querier
}

func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the cache table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createCacheTableSQL); err != nil {
		return fmt.Errorf("[DB] Failed to create sentiment_cache table: %w", err)
	}
	slog.Info("[DB] sentiment_cache table ready")
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx, selectCacheSQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[DB] Failed to read cache entry: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.Exec(ctx, upsertCacheSQL, key, value); err != nil {
		return fmt.Errorf("[DB] Failed to write cache entry: %w", err)
	}
	return nil
}
