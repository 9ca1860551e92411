package idempotency

import (
	"context"
	"time"
)

// Key is the caller-provided Idempotency-Key header value.
type Key string

// Fingerprint identifies one replayable request. An empty BodyHash marks the
// slot that remembers which body a key was first used with.
type Fingerprint struct {
	Key      Key
	Method   string
	Route    string
	BodyHash string
}

// Record is a stored response. For the body-hash slot, Body holds the hash
// and StatusCode is zero.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store remembers create responses so retried POSTs replay instead of
// creating duplicate memberships.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
	// Purge drops records created strictly before cutoff and reports how
	// many were removed.
	Purge(ctx context.Context, cutoff time.Time) (int, error)
}
