package contracttest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	idempotencyport "github.com/Overland-East-Bay/membership-tracker/internal/ports/out/idempotency"
	kvstoreport "github.com/Overland-East-Bay/membership-tracker/internal/ports/out/kvstore"
)

type CleanupFunc = func()

type KVStoreFactory func(t *testing.T) (kvstoreport.Store, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      idempotencyport.Key("k-" + uuid.NewString()),
		Method:   "POST",
		Route:    "/memberships",
		BodyHash: "",
	}
	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// Purge removes only records older than the cutoff. Timestamps are far
	// in the past so shared backends keep other runs' fresh records.
	respFP := fp
	respFP.BodyHash = "hash-def"
	fresh := idempotencyport.Record{
		StatusCode:  201,
		ContentType: "application/json",
		Body:        []byte(`{"membership":{}}`),
		CreatedAt:   time.Unix(10_000, 0).UTC(),
	}
	if err := store.Put(ctx, respFP, fresh); err != nil {
		t.Fatalf("Put response: %v", err)
	}
	removed, err := store.Purge(ctx, time.Unix(5_000, 0))
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if removed < 1 {
		t.Fatalf("Purge removed=%d, want >= 1", removed)
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get(purged) ok=%v err=%v, want miss", ok, err)
	}
	if _, ok, err := store.Get(ctx, respFP); err != nil || !ok {
		t.Fatalf("Get(kept) ok=%v err=%v, want hit", ok, err)
	}
}

func RunKVStore(t *testing.T, newStore KVStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// Keys are unique per run so shared backends (Postgres) don't leak state between runs.
	key := "memberships-" + uuid.NewString()

	if v, ok, err := store.Get(ctx, key); err != nil || ok || v != nil {
		t.Fatalf("Get(missing) = (%q, %v, %v), want (nil, false, nil)", v, ok, err)
	}

	if err := store.Put(ctx, key, []byte(`[]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, ok, err := store.Get(ctx, key)
	if err != nil || !ok || string(v) != `[]` {
		t.Fatalf("Get = (%q, %v, %v), want ([], true, nil)", v, ok, err)
	}

	// Full replacement, including a shorter value.
	payload := []byte(`[{"id":"1","name":"United","number":"UA123","type":"airline","createdAt":"2024-01-01T00:00:00Z"}]`)
	if err := store.Put(ctx, key, payload); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	if err := store.Put(ctx, key, []byte(`[1]`)); err != nil {
		t.Fatalf("Put shorter: %v", err)
	}
	v, ok, err = store.Get(ctx, key)
	if err != nil || !ok || string(v) != `[1]` {
		t.Fatalf("Get after overwrite = (%q, %v, %v)", v, ok, err)
	}

	// Empty values are values, not deletions.
	if err := store.Put(ctx, key, []byte{}); err != nil {
		t.Fatalf("Put empty: %v", err)
	}
	v, ok, err = store.Get(ctx, key)
	if err != nil || !ok || len(v) != 0 {
		t.Fatalf("Get empty = (%q, %v, %v), want (\"\", true, nil)", v, ok, err)
	}

	// Keys are independent.
	other := key + "-other"
	if err := store.Put(ctx, other, []byte("x")); err != nil {
		t.Fatalf("Put other: %v", err)
	}
	if v, _, _ := store.Get(ctx, key); len(v) != 0 {
		t.Fatalf("writing %q changed %q to %q", other, key, v)
	}

	if _, _, err := store.Get(ctx, ""); !errors.Is(err, kvstoreport.ErrInvalidKey) {
		t.Fatalf("Get(\"\") err=%v, want ErrInvalidKey", err)
	}
	if err := store.Put(ctx, "", []byte("x")); !errors.Is(err, kvstoreport.ErrInvalidKey) {
		t.Fatalf("Put(\"\") err=%v, want ErrInvalidKey", err)
	}
	if err := store.Put(ctx, "my list", []byte("x")); !errors.Is(err, kvstoreport.ErrInvalidKey) {
		t.Fatalf("Put(\"my list\") err=%v, want ErrInvalidKey", err)
	}

	// Concurrent writers never leave a torn value behind.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Put(ctx, key, []byte(fmt.Sprintf(`"writer-%d"`, i)))
		}(i)
	}
	wg.Wait()
	v, ok, err = store.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get after concurrent Put ok=%v err=%v", ok, err)
	}
	var matched bool
	for i := 0; i < 8; i++ {
		if string(v) == fmt.Sprintf(`"writer-%d"`, i) {
			matched = true
			break
		}
	}
	if !matched {
		t.Fatalf("torn value after concurrent writes: %q", v)
	}
}
