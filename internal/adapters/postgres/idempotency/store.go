package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Overland-East-Bay/membership-tracker/internal/adapters/postgres"
	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/idempotency"
)

var errNilPool = errors.New("nil postgres pool")

// Store keeps idempotency records in the idempotency_keys table.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const selectRecord = `
	SELECT status_code, content_type, body, created_at
	FROM idempotency_keys
	WHERE idempotency_key = $1 AND method = $2 AND route = $3 AND body_hash = $4`

const upsertRecord = `
	INSERT INTO idempotency_keys
		(idempotency_key, method, route, body_hash, status_code, content_type, body, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (idempotency_key, method, route, body_hash) DO UPDATE SET
		status_code = EXCLUDED.status_code,
		content_type = EXCLUDED.content_type,
		body = EXCLUDED.body,
		created_at = EXCLUDED.created_at`

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	if s.pool == nil {
		return idempotency.Record{}, false, errNilPool
	}

	var rec idempotency.Record
	err := s.pool.QueryRow(ctx, selectRecord, string(fp.Key), fp.Method, fp.Route, fp.BodyHash).
		Scan(&rec.StatusCode, &rec.ContentType, &rec.Body, &rec.CreatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return idempotency.Record{}, false, nil
	case err != nil:
		return idempotency.Record{}, false, postgres.WrapQueryError(err, "could not read idempotency record")
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if s.pool == nil {
		return errNilPool
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Body == nil {
		rec.Body = []byte{}
	}

	_, err := s.pool.Exec(ctx, upsertRecord,
		string(fp.Key), fp.Method, fp.Route, fp.BodyHash,
		rec.StatusCode, rec.ContentType, rec.Body, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return postgres.WrapQueryError(err, "could not write idempotency record")
	}
	return nil
}

func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	if s.pool == nil {
		return 0, errNilPool
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, postgres.WrapQueryError(err, "could not purge idempotency records")
	}
	return int(tag.RowsAffected()), nil
}
