package memberships

import (
	"context"
	"errors"
	"testing"

	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, _, _ := newTestStore(t)
	return NewService(s)
}

func requireAppError(t *testing.T, err error, status int, code string, field string) {
	t.Helper()
	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatalf("err=%v, want *Error", err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("err=(%d, %s), want (%d, %s)", ae.Status, ae.Code, status, code)
	}
	if field != "" {
		if _, ok := ae.Details[field]; !ok {
			t.Fatalf("details=%v, want key %q", ae.Details, field)
		}
	}
}

func TestService_CreateMembership(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.CreateMembership(ctx, CreateMembershipInput{
		Name:    "  United   MileagePlus ",
		Number:  " UA123 ",
		Type:    "Airline",
		Tier:    "  ",
		Website: "united.com",
		Notes:   " aisle ",
	})
	if err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}
	if m.Name != "United MileagePlus" || m.Number != "UA123" || m.Type != domain.MembershipTypeAirline {
		t.Fatalf("CreateMembership()=%+v", m)
	}
	if m.Tier != nil {
		t.Fatalf("tier=%q, want nil", *m.Tier)
	}
	if m.Website == nil || *m.Website != "https://united.com" {
		t.Fatalf("website=%v", m.Website)
	}
	if m.Notes == nil || *m.Notes != "aisle" {
		t.Fatalf("notes=%v", m.Notes)
	}
}

func TestService_CreateMembershipValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		in    CreateMembershipInput
		field string
	}{
		{name: "blank name", in: CreateMembershipInput{Name: "  ", Number: "1"}, field: "name"},
		{name: "blank number", in: CreateMembershipInput{Name: "United", Number: " "}, field: "number"},
		{name: "unknown type", in: CreateMembershipInput{Name: "United", Number: "1", Type: "train"}, field: "type"},
		{name: "website with spaces", in: CreateMembershipInput{Name: "United", Number: "1", Website: "not a url"}, field: "website"},
		{name: "website non-http scheme", in: CreateMembershipInput{Name: "United", Number: "1", Website: "ftp://united.com"}, field: "website"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t)
			_, err := svc.CreateMembership(context.Background(), tc.in)
			requireAppError(t, err, 422, CodeValidation, tc.field)
			if n := len(svc.store.List(context.Background())); n != 0 {
				t.Fatalf("store len=%d after rejected create", n)
			}
		})
	}
}

func TestService_UpdateMembership(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.CreateMembership(ctx, CreateMembershipInput{Name: "Hilton", Number: "HH1", Type: "hotel", Notes: "points", Website: "hilton.com"})
	if err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}

	got, err := svc.UpdateMembership(ctx, m.ID, UpdateMembershipInput{
		Tier:    Some("Diamond"),
		Notes:   Some("   "),
		Website: Null[string](),
	})
	if err != nil {
		t.Fatalf("UpdateMembership: %v", err)
	}
	if got.Tier == nil || *got.Tier != "Diamond" || got.Notes != nil || got.Website != nil {
		t.Fatalf("UpdateMembership()=%+v", got)
	}
	if got.Name != "Hilton" || got.Type != domain.MembershipTypeHotel {
		t.Fatalf("unspecified fields changed: %+v", got)
	}

	_, err = svc.UpdateMembership(ctx, m.ID, UpdateMembershipInput{Name: Null[string]()})
	requireAppError(t, err, 422, CodeValidation, "name")
	_, err = svc.UpdateMembership(ctx, m.ID, UpdateMembershipInput{Number: Some("")})
	requireAppError(t, err, 422, CodeValidation, "number")
	_, err = svc.UpdateMembership(ctx, m.ID, UpdateMembershipInput{Type: Some("spaceship")})
	requireAppError(t, err, 422, CodeValidation, "type")
	_, err = svc.UpdateMembership(ctx, m.ID, UpdateMembershipInput{Website: Some("mailto:x@y.z")})
	requireAppError(t, err, 422, CodeValidation, "website")

	_, err = svc.UpdateMembership(ctx, "missing", UpdateMembershipInput{Tier: Some("Gold")})
	requireAppError(t, err, 404, CodeNotFound, "")
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound(%v)=false", err)
	}
}

func TestService_GetAndDelete(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.CreateMembership(ctx, CreateMembershipInput{Name: "Carnival", Number: "C1", Type: "cruise"})
	if err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}
	if got, err := svc.GetMembership(ctx, m.ID); err != nil || got.ID != m.ID {
		t.Fatalf("GetMembership()=(%+v, %v)", got, err)
	}
	if err := svc.DeleteMembership(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMembership: %v", err)
	}
	if _, err := svc.GetMembership(ctx, m.ID); !IsNotFound(err) {
		t.Fatalf("GetMembership(deleted) err=%v, want not found", err)
	}
	if err := svc.DeleteMembership(ctx, m.ID); !IsNotFound(err) {
		t.Fatalf("DeleteMembership(deleted) err=%v, want not found", err)
	}
}

func TestService_SearchMemberships(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateMembership(ctx, CreateMembershipInput{Name: "Hilton", Number: "HH1", Type: "hotel"}); err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}
	if _, err := svc.CreateMembership(ctx, CreateMembershipInput{Name: "Delta", Number: "DL1", Type: "airline"}); err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}

	got, err := svc.SearchMemberships(ctx, "", "hotel")
	if err != nil || len(got) != 1 || got[0].Name != "Hilton" {
		t.Fatalf("SearchMemberships(hotel)=(%+v, %v)", got, err)
	}
	got, err = svc.SearchMemberships(ctx, "dl", "")
	if err != nil || len(got) != 1 || got[0].Name != "Delta" {
		t.Fatalf("SearchMemberships(dl)=(%+v, %v)", got, err)
	}
	_, err = svc.SearchMemberships(ctx, "", "train")
	requireAppError(t, err, 422, CodeValidation, "type")
}
