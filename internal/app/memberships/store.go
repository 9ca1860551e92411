package memberships

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
	clockport "github.com/Overland-East-Bay/membership-tracker/internal/ports/out/clock"
)

// maxIDAttempts bounds regeneration before falling back to suffixing.
const maxIDAttempts = 8

type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// Event describes a mutation that has been applied and persisted.
type Event struct {
	Kind       EventKind
	Membership domain.Membership
}

// Store is the authoritative collection of membership records.
//
// Every mutation rewrites the whole list through the Persistence adapter
// before returning. Store does not validate input: required fields and URL
// checks belong to the form layer (Service). It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	records []domain.Membership
	ids     map[domain.MembershipID]struct{}

	persistence *Persistence
	clk         clockport.Clock
	newID       func() domain.MembershipID
	logger      *slog.Logger

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

type StoreOption func(*Store)

// WithIDGenerator replaces the UUID generator. Colliding ids are regenerated.
func WithIDGenerator(fn func() domain.MembershipID) StoreOption {
	return func(s *Store) {
		s.newID = fn
	}
}

func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore hydrates a store from p. Hydration never fails: unreadable data
// starts the store empty. Records sharing an id keep the first occurrence's
// id; later ones get a fresh id and the list is written back.
func NewStore(ctx context.Context, p *Persistence, clk clockport.Clock, opts ...StoreOption) *Store {
	s := &Store{
		ids:         make(map[domain.MembershipID]struct{}),
		persistence: p,
		clk:         clk,
		newID: func() domain.MembershipID {
			return domain.MembershipID(uuid.NewString())
		},
		logger: slog.Default(),
		subs:   make(map[int]func(Event)),
	}
	for _, o := range opts {
		o(s)
	}

	loaded := p.Load(ctx)
	s.records = make([]domain.Membership, 0, len(loaded))
	renamed := 0
	for _, m := range loaded {
		if _, dup := s.ids[m.ID]; dup || m.ID == "" {
			id := s.uniqueID()
			s.logger.WarnContext(ctx, "reassigning duplicate membership id in stored data",
				slog.String("from", string(m.ID)), slog.String("to", string(id)), slog.String("name", m.Name))
			m.ID = id
			renamed++
		}
		if t := normalizeType(m.Type); t != m.Type {
			s.logger.WarnContext(ctx, "coercing stored membership type",
				slog.String("id", string(m.ID)), slog.String("from", string(m.Type)), slog.String("to", string(t)))
			m.Type = t
		}
		s.ids[m.ID] = struct{}{}
		s.records = append(s.records, m)
	}
	// Reassigned ids are written back so they stay stable across restarts.
	if renamed > 0 {
		s.persistLocked(ctx)
	}
	s.logger.DebugContext(ctx, "hydrated membership store", slog.Int("records", len(s.records)), slog.Int("reassigned", renamed))
	return s
}

// Create appends a new record and returns it.
func (s *Store) Create(ctx context.Context, in CreateInput) domain.Membership {
	s.mu.Lock()
	m := domain.Membership{
		ID:        s.uniqueID(),
		Name:      in.Name,
		Number:    in.Number,
		Type:      normalizeType(in.Type),
		Tier:      cloneStringPtr(in.Tier),
		Website:   normalizeWebsitePtr(in.Website),
		Notes:     cloneStringPtr(in.Notes),
		CreatedAt: s.clk.Now(),
	}
	s.records = append(s.records, m)
	s.ids[m.ID] = struct{}{}
	s.persistLocked(ctx)
	out := m.Clone()
	s.mu.Unlock()

	s.notify(Event{Kind: EventCreated, Membership: out.Clone()})
	return out
}

// Update merges patch into the record with the given id. It reports false,
// and changes nothing, when no such record exists.
func (s *Store) Update(ctx context.Context, id domain.MembershipID, patch Patch) (domain.Membership, bool) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Membership{}, false
	}

	m := applyPatch(s.records[i].Clone(), patch)
	now := s.clk.Now()
	if now.Before(m.CreatedAt) {
		now = m.CreatedAt
	}
	m.UpdatedAt = &now

	s.records[i] = m
	s.persistLocked(ctx)
	out := m.Clone()
	s.mu.Unlock()

	s.notify(Event{Kind: EventUpdated, Membership: out.Clone()})
	return out, true
}

// Delete removes the record with the given id and persists. A miss still
// writes the current list, which repairs a durable copy left stale by an
// earlier failed save, but reports false and sends no event.
func (s *Store) Delete(ctx context.Context, id domain.MembershipID) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.persistLocked(ctx)
		s.mu.Unlock()
		return false
	}

	removed := s.records[i].Clone()
	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.ids, id)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(Event{Kind: EventDeleted, Membership: removed})
	return true
}

// Get returns the record with the given id; ok is false on a miss.
func (s *Store) Get(ctx context.Context, id domain.MembershipID) (domain.Membership, bool) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Membership{}, false
	}
	return s.records[i].Clone(), true
}

// List returns a copy of the collection in insertion order.
func (s *Store) List(ctx context.Context) []domain.Membership {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Membership, 0, len(s.records))
	for _, m := range s.records {
		out = append(out, m.Clone())
	}
	return out
}

// Search applies q to the current collection.
func (s *Store) Search(ctx context.Context, q Query) []domain.Membership {
	return Apply(s.List(ctx), q)
}

// Subscribe registers fn to be called synchronously after each mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			delete(s.subs, id)
		})
	}
}

// PersistenceError returns the error of the last write, or nil.
func (s *Store) PersistenceError() error {
	return s.persistence.LastError()
}

func (s *Store) persistLocked(ctx context.Context) {
	s.persistence.Save(ctx, s.records)
}

func (s *Store) notify(e Event) {
	s.subsMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

func (s *Store) indexOf(id domain.MembershipID) int {
	if _, ok := s.ids[id]; !ok {
		return -1
	}
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) uniqueID() domain.MembershipID {
	var candidate domain.MembershipID
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		candidate = s.newID()
		if _, taken := s.ids[candidate]; candidate != "" && !taken {
			return candidate
		}
	}
	if candidate == "" {
		candidate = domain.MembershipID(uuid.NewString())
	}
	for n := 2; ; n++ {
		id := domain.MembershipID(fmt.Sprintf("%s-%d", candidate, n))
		if _, taken := s.ids[id]; !taken {
			return id
		}
	}
}

func applyPatch(m domain.Membership, p Patch) domain.Membership {
	setRequired := func(dst *string, o Optional[string]) {
		if !o.IsSpecified() || o.IsNull() {
			return
		}
		*dst = o.Value()
	}
	setOptional := func(dst **string, o Optional[string]) {
		if !o.IsSpecified() {
			return
		}
		if o.IsNull() {
			*dst = nil
			return
		}
		v := o.Value()
		*dst = &v
	}

	setRequired(&m.Name, p.Name)
	setRequired(&m.Number, p.Number)
	if p.Type.IsSpecified() && !p.Type.IsNull() {
		m.Type = normalizeType(p.Type.Value())
	}
	setOptional(&m.Tier, p.Tier)
	setOptional(&m.Website, p.Website)
	setOptional(&m.Notes, p.Notes)
	m.Website = normalizeWebsitePtr(m.Website)
	return m
}

// normalizeType keeps the category inside the fixed set: empty becomes the
// default type and anything unknown becomes "other".
func normalizeType(t domain.MembershipType) domain.MembershipType {
	switch {
	case t == "":
		return domain.DefaultMembershipType
	case t.Valid():
		return t
	default:
		return domain.MembershipTypeOther
	}
}

func normalizeWebsitePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := domain.NormalizeWebsite(*p)
	return &v
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
