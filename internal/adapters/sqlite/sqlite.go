package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      BLOB,
	updated_at TEXT NOT NULL
)`

// BusyTimeout is how long a statement waits on a lock held by another
// connection before failing with SQLITE_BUSY.
const BusyTimeout = 5 * time.Second

// Open opens a SQLite database at the given path, enables WAL mode, sets
// the busy timeout and ensures the key-value schema exists.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	// Pragmas are per connection, so the pool holds exactly one.
	db.SetMaxOpenConns(1)

	// WAL keeps readers from blocking the single writer.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable WAL mode")
	}

	// The CLI and the API may share one database file.
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", BusyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set busy timeout")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}

	return db, nil
}
