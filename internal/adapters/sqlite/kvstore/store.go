package kvstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/kvstore"
)

// Store is a SQLite implementation of kvstore.Store.
type Store struct {
	db *sql.DB
}

// NewStore wraps a database opened with sqlite.Open.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.db == nil {
		return nil, false, errors.New("nil sqlite database")
	}
	if !kvstore.ValidKey(key) {
		return nil, false, kvstore.ErrInvalidKey
	}
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "could not read key %q", key)
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if s.db == nil {
		return errors.New("nil sqlite database")
	}
	if !kvstore.ValidKey(key) {
		return kvstore.ErrInvalidKey
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return errors.Wrapf(err, "could not write key %q", key)
	}
	return nil
}
