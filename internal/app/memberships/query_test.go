package memberships

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
)

func record(id string, name string, typ domain.MembershipType, createdAt int64) domain.Membership {
	return domain.Membership{
		ID:        domain.MembershipID(id),
		Name:      name,
		Number:    "N-" + id,
		Type:      typ,
		CreatedAt: time.Unix(createdAt, 0).UTC(),
	}
}

func ids(records []domain.Membership) []string {
	out := make([]string, 0, len(records))
	for _, m := range records {
		out = append(out, string(m.ID))
	}
	return out
}

func TestApply_FiltersByCategoryThenTerm(t *testing.T) {
	t.Parallel()

	gold := "Gold member since 2019"
	records := []domain.Membership{
		record("1", "Marriott Bonvoy", domain.MembershipTypeHotel, 1),
		record("2", "Hilton Honors", domain.MembershipTypeHotel, 2),
		record("3", "United MileagePlus", domain.MembershipTypeAirline, 3),
	}
	records[1].Notes = &gold
	records[2].Notes = &gold

	got := Apply(records, Query{Term: "gold", Category: Category(domain.MembershipTypeHotel)})
	if fmt.Sprint(ids(got)) != "[2]" {
		t.Fatalf("Apply()=%v, want [2]", ids(got))
	}
}

func TestApply_TermMatchesNameNumberAndNotesCaseInsensitively(t *testing.T) {
	t.Parallel()

	notes := "Lounge ACCESS"
	records := []domain.Membership{
		record("1", "Delta SkyMiles", domain.MembershipTypeAirline, 1),
		record("2", "Royal Caribbean", domain.MembershipTypeCruise, 2),
		record("3", "Hyatt", domain.MembershipTypeHotel, 3),
	}
	records[1].Number = "RC-9981"
	records[2].Notes = &notes

	cases := []struct {
		term string
		want string
	}{
		{term: "SKYMILES", want: "[1]"},
		{term: "rc-99", want: "[2]"},
		{term: "access", want: "[3]"},
		{term: "nothing", want: "[]"},
		{term: "   ", want: "[3 2 1]"},
		{term: "", want: "[3 2 1]"},
	}
	for _, tc := range cases {
		got := Apply(records, Query{Term: tc.term})
		if fmt.Sprint(ids(got)) != tc.want {
			t.Fatalf("Apply(term=%q)=%v, want %s", tc.term, ids(got), tc.want)
		}
	}
}

func TestApply_TermIsNotTrimmed(t *testing.T) {
	t.Parallel()

	records := []domain.Membership{record("1", "Delta", domain.MembershipTypeAirline, 1)}
	if got := Apply(records, Query{Term: " delta"}); len(got) != 0 {
		t.Fatalf("Apply(\" delta\")=%v, want no match", ids(got))
	}
}

func TestApply_SortsNewestFirstAndKeepsTiesStable(t *testing.T) {
	t.Parallel()

	records := []domain.Membership{
		record("a", "A", domain.MembershipTypeAirline, 10),
		record("b", "B", domain.MembershipTypeAirline, 30),
		record("c", "C", domain.MembershipTypeAirline, 20),
		record("d", "D", domain.MembershipTypeAirline, 30),
	}
	got := Apply(records, Query{})
	if fmt.Sprint(ids(got)) != "[b d c a]" {
		t.Fatalf("Apply()=%v, want [b d c a]", ids(got))
	}
	if fmt.Sprint(ids(records)) != "[a b c d]" {
		t.Fatalf("input reordered: %v", ids(records))
	}
}

func TestApply_AllCategoryIsIdentityFilter(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	types := domain.MembershipTypes()
	words := []string{"gold", "silver", "elite", "club", "miles"}

	for iter := 0; iter < 50; iter++ {
		var records []domain.Membership
		n := rng.Intn(12)
		for i := 0; i < n; i++ {
			m := record(fmt.Sprintf("%d-%d", iter, i), words[rng.Intn(len(words))]+" "+words[rng.Intn(len(words))],
				types[rng.Intn(len(types))], int64(rng.Intn(5)))
			records = append(records, m)
		}
		term := words[rng.Intn(len(words))]

		all := Apply(records, Query{Term: term, Category: CategoryAll})
		zero := Apply(records, Query{Term: term})
		if fmt.Sprint(ids(all)) != fmt.Sprint(ids(zero)) {
			t.Fatalf("all=%v zero=%v", ids(all), ids(zero))
		}

		// Every result satisfies the query, and nothing satisfying it is dropped.
		q := Query{Term: term, Category: Category(types[rng.Intn(len(types))])}
		got := Apply(records, q)
		var want int
		for _, m := range records {
			if q.Matches(m) {
				want++
			}
		}
		if len(got) != want {
			t.Fatalf("len(Apply())=%d, want %d", len(got), want)
		}
		for i, m := range got {
			if !q.Matches(m) || !strings.Contains(strings.ToLower(m.Name+" "+m.Number), term) {
				t.Fatalf("result %+v does not match %+v", m, q)
			}
			if i > 0 && got[i-1].CreatedAt.Before(m.CreatedAt) {
				t.Fatalf("results not newest first: %v", ids(got))
			}
		}
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in     string
		want   Category
		wantOK bool
	}{
		{in: "", want: CategoryAll, wantOK: true},
		{in: "ALL", want: CategoryAll, wantOK: true},
		{in: " Hotel ", want: Category(domain.MembershipTypeHotel), wantOK: true},
		{in: "cruise", want: Category(domain.MembershipTypeCruise), wantOK: true},
		{in: "train", wantOK: false},
	}
	for _, tc := range cases {
		got, ok := ParseCategory(tc.in)
		if ok != tc.wantOK || (ok && got != tc.want) {
			t.Fatalf("ParseCategory(%q)=(%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}
