package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"
)

// PoolOptions tunes the connection pool. Zero values keep pgx defaults.
type PoolOptions struct {
	MaxConns int32
}

func NewPool(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("missing postgres DSN")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "parse postgres DSN")
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, pkgerrors.Wrap(err, "ping postgres")
	}
	return pool, nil
}

// AsPgError unwraps err to a Postgres server error, if it is one.
func AsPgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// WrapQueryError annotates err with message and, for server errors, the
// SQLSTATE code.
func WrapQueryError(err error, message string) error {
	if pe, ok := AsPgError(err); ok {
		return pkgerrors.Wrapf(err, "%s (sqlstate %s)", message, pe.Code)
	}
	return pkgerrors.Wrap(err, message)
}

const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS idempotency_keys (
	idempotency_key TEXT NOT NULL,
	method          TEXT NOT NULL,
	route           TEXT NOT NULL,
	body_hash       TEXT NOT NULL,
	status_code     INTEGER NOT NULL,
	content_type    TEXT NOT NULL,
	body            BYTEA NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (idempotency_key, method, route, body_hash)
);

CREATE INDEX IF NOT EXISTS idempotency_keys_created_at_idx ON idempotency_keys (created_at);
`

// Migrate creates the tables used by the Postgres adapters. It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("nil postgres pool")
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		return pkgerrors.Wrap(err, "apply postgres schema")
	}
	return nil
}
