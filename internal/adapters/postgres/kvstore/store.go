package kvstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Overland-East-Bay/membership-tracker/internal/adapters/postgres"
	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/kvstore"
)

// Store is a Postgres implementation of kvstore.Store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.pool == nil {
		return nil, false, errors.New("nil postgres pool")
	}
	if !kvstore.ValidKey(key) {
		return nil, false, kvstore.ErrInvalidKey
	}
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, postgres.WrapQueryError(err, "could not read key "+key)
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	if !kvstore.ValidKey(key) {
		return kvstore.ErrInvalidKey
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, key, value)
	if err != nil {
		return postgres.WrapQueryError(err, "could not write key "+key)
	}
	return nil
}
