package idempotency

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/idempotency"
)

const (
	DefaultCapacity = 4096
	DefaultTTL      = 24 * time.Hour
)

// Store keeps idempotency records in a bounded LRU. Entries are evicted
// once Capacity is exceeded or after TTL, whichever comes first.
type Store struct {
	cache *expirable.LRU[idempotency.Fingerprint, idempotency.Record]
}

type Options struct {
	Capacity int
	TTL      time.Duration
}

type OptionFunc func(opts *Options)

func WithCapacity(n int) OptionFunc {
	return func(opts *Options) {
		opts.Capacity = n
	}
}

// WithTTL sets the eviction age. A non-positive value disables expiry.
func WithTTL(ttl time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.TTL = ttl
	}
}

func NewStore(funcs ...OptionFunc) *Store {
	opts := Options{Capacity: DefaultCapacity, TTL: DefaultTTL}
	for _, fn := range funcs {
		fn(&opts)
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	return &Store{
		cache: expirable.NewLRU[idempotency.Fingerprint, idempotency.Record](opts.Capacity, nil, opts.TTL),
	}
}

func (s *Store) Get(_ context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	rec, ok := s.cache.Get(fp)
	if !ok {
		return idempotency.Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

func (s *Store) Put(_ context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	s.cache.Add(fp, cloneRecord(rec))
	return nil
}

func (s *Store) Purge(_ context.Context, cutoff time.Time) (int, error) {
	removed := 0
	for _, fp := range s.cache.Keys() {
		rec, ok := s.cache.Peek(fp)
		if ok && rec.CreatedAt.Before(cutoff) && s.cache.Remove(fp) {
			removed++
		}
	}
	return removed, nil
}

func (s *Store) Len() int {
	return s.cache.Len()
}

func cloneRecord(rec idempotency.Record) idempotency.Record {
	out := rec
	out.Body = append([]byte(nil), rec.Body...)
	return out
}
