package memberships

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/pkg/errors"

	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
	"github.com/Overland-East-Bay/membership-tracker/internal/ports/out/kvstore"
)

// DefaultKey is the slot holding the membership list.
const DefaultKey = "memberships"

const (
	OpSave = "save"
	OpLoad = "load"
)

// storedMembership is the durable shape of a record. Field names match the
// data written by earlier versions of the tracker and must not change.
type storedMembership struct {
	ID        storedID   `json:"id"`
	Name      string     `json:"name"`
	Number    string     `json:"number"`
	Type      string     `json:"type"`
	Tier      *string    `json:"tier,omitempty"`
	Website   *string    `json:"website,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// storedID accepts both string ids and the numeric millisecond ids found in
// older data. It is always written back as a string.
type storedID string

func (id *storedID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = storedID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Errorf("membership id must be a string or number, got %s", b)
	}
	*id = storedID(n.String())
	return nil
}

// Encode serializes the full list as a JSON array.
func Encode(records []domain.Membership) ([]byte, error) {
	out := make([]storedMembership, 0, len(records))
	for _, m := range records {
		out = append(out, storedMembership{
			ID:        storedID(m.ID),
			Name:      m.Name,
			Number:    m.Number,
			Type:      string(m.Type),
			Tier:      m.Tier,
			Website:   m.Website,
			Notes:     m.Notes,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

// Decode parses a list written by Encode. Blank input and a JSON null both
// decode to an empty list.
func Decode(b []byte) ([]domain.Membership, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return []domain.Membership{}, nil
	}
	var in []storedMembership
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, errors.Wrap(err, "malformed membership list")
	}
	out := make([]domain.Membership, 0, len(in))
	for _, s := range in {
		out = append(out, domain.Membership{
			ID:        domain.MembershipID(s.ID),
			Name:      s.Name,
			Number:    s.Number,
			Type:      domain.MembershipType(s.Type),
			Tier:      s.Tier,
			Website:   s.Website,
			Notes:     s.Notes,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return out, nil
}

// Persistence mirrors the record list into one key of a kvstore.Store.
//
// Failures never reach the caller: they are logged, reported to the failure
// hook and kept for LastError. The in-memory list stays authoritative.
type Persistence struct {
	kv     kvstore.Store
	key    string
	logger *slog.Logger

	onFailure func(op string, err error)

	mu      sync.Mutex
	lastErr error
}

type PersistenceOption func(*Persistence)

func WithPersistenceLogger(logger *slog.Logger) PersistenceOption {
	return func(p *Persistence) {
		p.logger = logger
	}
}

// WithFailureHook registers fn to be called on every failed save or load.
func WithFailureHook(fn func(op string, err error)) PersistenceOption {
	return func(p *Persistence) {
		p.onFailure = fn
	}
}

func NewPersistence(kv kvstore.Store, key string, opts ...PersistenceOption) *Persistence {
	if key == "" {
		key = DefaultKey
	}
	p := &Persistence{
		kv:     kv,
		key:    key,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Save writes the full list under the key.
func (p *Persistence) Save(ctx context.Context, records []domain.Membership) {
	b, err := Encode(records)
	if err == nil {
		err = p.kv.Put(ctx, p.key, b)
	}

	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()

	if err != nil {
		p.fail(ctx, OpSave, err, slog.Int("records", len(records)))
		return
	}
	p.logger.DebugContext(ctx, "persisted memberships", slog.String("key", p.key), slog.Int("records", len(records)))
}

// Load reads the list. An absent, unreadable or malformed value yields an empty list.
func (p *Persistence) Load(ctx context.Context) []domain.Membership {
	b, ok, err := p.kv.Get(ctx, p.key)
	if err != nil {
		p.fail(ctx, OpLoad, err)
		return []domain.Membership{}
	}
	if !ok {
		return []domain.Membership{}
	}
	records, err := Decode(b)
	if err != nil {
		p.fail(ctx, OpLoad, err, slog.Int("bytes", len(b)))
		return []domain.Membership{}
	}
	return records
}

// LastError returns the error of the most recent Save, or nil if it succeeded.
func (p *Persistence) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Persistence) fail(ctx context.Context, op string, err error, attrs ...any) {
	args := append([]any{slog.String("key", p.key), slog.String("operation", op), slogx.Error(err)}, attrs...)
	p.logger.ErrorContext(ctx, "could not "+op+" memberships", args...)
	if p.onFailure != nil {
		p.onFailure(op, err)
	}
}
