package i18n

import (
	"testing"

	"golang.org/x/text/language"

	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
)

func TestNegotiate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		accept string
		want   language.Tag
	}{
		{accept: "", want: language.English},
		{accept: "es", want: language.Spanish},
		{accept: "fr-CA,fr;q=0.9,en;q=0.5", want: language.French},
		{accept: "de-DE", want: language.English},
		{accept: "en-GB;q=0.2,es-MX;q=0.8", want: language.Spanish},
		{accept: "%%%", want: language.English},
	}
	for _, tc := range cases {
		got := Negotiate(tc.accept)
		if got.Locale != tc.want {
			t.Fatalf("Negotiate(%q).Locale=%v, want %v", tc.accept, got.Locale, tc.want)
		}
	}
}

func TestLabels_CoverEveryCategoryInEveryLocale(t *testing.T) {
	t.Parallel()

	for _, l := range catalog {
		for _, typ := range domain.MembershipTypes() {
			if got := l.Category(typ); got == "" || got == string(typ) {
				t.Fatalf("%v: missing label for %q (got %q)", l.Locale, typ, got)
			}
		}
		if len(l.Categories()) != len(domain.MembershipTypes()) {
			t.Fatalf("%v: Categories() len=%d", l.Locale, len(l.Categories()))
		}
	}
}

func TestLabels_MessageFallsBack(t *testing.T) {
	t.Parallel()

	es := Negotiate("es")
	if got := es.Message(MsgDashboardTitle); got != "Mis membresías" {
		t.Fatalf("Message=%q", got)
	}
	if got := es.Message("unknown.key"); got != "unknown.key" {
		t.Fatalf("Message(unknown)=%q", got)
	}
	if got := es.Category(domain.MembershipType("train")); got != "train" {
		t.Fatalf("Category(unknown)=%q", got)
	}
	if len(es.Messages()) != len(english.messages) {
		t.Fatalf("Messages() len=%d, want %d", len(es.Messages()), len(english.messages))
	}
}
