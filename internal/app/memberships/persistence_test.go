package memberships

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	memkvstore "github.com/Overland-East-Bay/membership-tracker/internal/adapters/memory/kvstore"
	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	tier := "Gold"
	site := "https://united.com"
	updated := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	in := []domain.Membership{
		{
			ID: "1", Name: "United", Number: "UA123", Type: domain.MembershipTypeAirline,
			Tier: &tier, Website: &site,
			CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 123000000, time.UTC), UpdatedAt: &updated,
		},
		{ID: "2", Name: "Hilton", Number: "HH1", Type: domain.MembershipTypeHotel, CreatedAt: time.Date(2024, 3, 1, 9, 31, 0, 0, time.UTC)},
	}

	for _, records := range [][]domain.Membership{{}, in} {
		b, err := Encode(records)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := Decode(b)
		if err != nil {
			t.Fatalf("Decode(%s): %v", b, err)
		}
		if !equalMemberships(got, records) {
			t.Fatalf("Decode(Encode(x))=%+v, want %+v", got, records)
		}
	}
}

func TestEncode_EmptyListIsJSONArray(t *testing.T) {
	t.Parallel()

	b, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(b) != "[]" {
		t.Fatalf("Encode(nil)=%s, want []", b)
	}
}

func TestDecode_AcceptsLegacyNumericIDs(t *testing.T) {
	t.Parallel()

	raw := `[{"id":1709285400123,"name":"United","number":"UA123","type":"airline","tier":"","website":"https://united.com","notes":"","createdAt":"2024-03-01T09:30:00.123Z"},
		{"id":"1709285400999","name":"United","number":"UA123","type":"airline","tier":"","website":"https://united.com","notes":"","createdAt":"2024-03-01T09:30:00.123Z","updatedAt":"2024-03-02T10:00:00.000Z"}]`
	got, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 2 || got[0].ID != "1709285400123" || got[1].ID != "1709285400999" || got[0].Type != domain.MembershipTypeAirline {
		t.Fatalf("Decode()=%+v", got)
	}
	if want := time.Date(2024, 3, 1, 9, 30, 0, 123000000, time.UTC); !got[0].CreatedAt.Equal(want) {
		t.Fatalf("createdAt=%v, want %v", got[0].CreatedAt, want)
	}
	if got[0].UpdatedAt != nil || got[1].UpdatedAt == nil {
		t.Fatalf("updatedAt=%v,%v", got[0].UpdatedAt, got[1].UpdatedAt)
	}
	if _, err := Decode([]byte(`[{"id":true}]`)); err == nil {
		t.Fatalf("Decode(bool id): expected error")
	}
}

func TestDecode_BlankAndNull(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "  \n", "null"} {
		got, err := Decode([]byte(raw))
		if err != nil {
			t.Fatalf("Decode(%q): %v", raw, err)
		}
		if len(got) != 0 {
			t.Fatalf("Decode(%q)=%+v, want empty", raw, got)
		}
	}
	if _, err := Decode([]byte(`{"id":"1"}`)); err == nil {
		t.Fatalf("Decode(object): expected error")
	}
}

func TestPersistence_LoadMissingKeyIsEmpty(t *testing.T) {
	t.Parallel()

	var failed bool
	p := NewPersistence(memkvstore.NewStore(), "", WithFailureHook(func(string, error) { failed = true }))
	if p.key != DefaultKey {
		t.Fatalf("key=%q, want %q", p.key, DefaultKey)
	}
	if got := p.Load(context.Background()); len(got) != 0 {
		t.Fatalf("Load()=%+v, want empty", got)
	}
	if failed {
		t.Fatalf("missing key reported as failure")
	}
}

func TestPersistence_SaveFailureIsReportedNotReturned(t *testing.T) {
	t.Parallel()

	kv := memkvstore.NewStore()
	boom := errors.New("disk full")
	kv.FailPut = boom

	var logs bytes.Buffer
	var ops []string
	p := NewPersistence(kv, "custom",
		WithPersistenceLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithFailureHook(func(op string, err error) {
			if !errors.Is(err, boom) {
				t.Errorf("hook err=%v, want %v", err, boom)
			}
			ops = append(ops, op)
		}),
	)

	p.Save(context.Background(), []domain.Membership{{ID: "1", Name: "United", Number: "UA1", Type: domain.MembershipTypeAirline}})
	if len(ops) != 1 || ops[0] != OpSave {
		t.Fatalf("hook ops=%v, want [save]", ops)
	}
	if !errors.Is(p.LastError(), boom) {
		t.Fatalf("LastError()=%v, want %v", p.LastError(), boom)
	}
	if out := logs.String(); !strings.Contains(out, "disk full") || !strings.Contains(out, "key=custom") {
		t.Fatalf("failure log=%q, want the error and key", out)
	}

	kv.FailPut = nil
	p.Save(context.Background(), nil)
	if p.LastError() != nil {
		t.Fatalf("LastError() after success=%v", p.LastError())
	}
	raw, ok, _ := kv.Get(context.Background(), "custom")
	if !ok || string(raw) != "[]" {
		t.Fatalf("stored=%q ok=%v, want []", raw, ok)
	}
}
