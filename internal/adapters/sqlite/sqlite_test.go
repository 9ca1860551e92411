package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpen_AppliesPragmasAndSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "memberships.sqlite"))
	if err != nil {
		t.Fatalf("Open() err=%v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var mode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("journal_mode=%q, want wal", mode)
	}

	var timeout int64
	if err := db.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	if timeout != BusyTimeout.Milliseconds() {
		t.Fatalf("busy_timeout=%d, want %d", timeout, BusyTimeout.Milliseconds())
	}

	var table string
	if err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'kv_entries'").Scan(&table); err != nil {
		t.Fatalf("kv_entries table missing: %v", err)
	}
}
