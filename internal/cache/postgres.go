package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonoalderson/edge-images-sub001/internal/sqlinline"
)

// DBTX is the subset of a pgx pool or connection the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists cache entries in the edge_cache table so multiple
// instances share one transform cache.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore wraps a pgx pool or connection.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get returns the unexpired value for key.
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx, sqlinline.QSelectCacheValue, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return value, true, nil
}

// Set upserts the value with its group and expiry.
func (s *PostgresStore) Set(ctx context.Context, key, group, value string, ttl time.Duration) error {
	interval := fmt.Sprintf("%d seconds", int(ttl.Seconds()))
	if _, err := s.db.Exec(ctx, sqlinline.QUpsertCacheValue, key, group, value, interval); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// DeleteGroup removes every entry in the group; an empty group clears the
// whole table.
func (s *PostgresStore) DeleteGroup(ctx context.Context, group string) error {
	if _, err := s.db.Exec(ctx, sqlinline.QDeleteCacheGroup, group); err != nil {
		return fmt.Errorf("cache delete group: %w", err)
	}
	return nil
}

// Sweep removes expired rows. Intended for a periodic background call; the
// read path already filters on expiry.
func (s *PostgresStore) Sweep(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, sqlinline.QDeleteExpiredCache); err != nil {
		return fmt.Errorf("cache sweep: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
