package domain

import (
	"strings"
	"time"
)

// MembershipType is the program category of a membership.
// Only the raw keys are stored; localized labels live at the edges.
type MembershipType string

const (
	MembershipTypeAirline MembershipType = "airline"
	MembershipTypeHotel   MembershipType = "hotel"
	MembershipTypeCruise  MembershipType = "cruise"
	MembershipTypeOther   MembershipType = "other"
)

// DefaultMembershipType is applied when a record is created without a type.
const DefaultMembershipType = MembershipTypeAirline

// MembershipTypes lists the fixed category set in display order.
func MembershipTypes() []MembershipType {
	return []MembershipType{
		MembershipTypeAirline,
		MembershipTypeHotel,
		MembershipTypeCruise,
		MembershipTypeOther,
	}
}

func (t MembershipType) Valid() bool {
	switch t {
	case MembershipTypeAirline, MembershipTypeHotel, MembershipTypeCruise, MembershipTypeOther:
		return true
	default:
		return false
	}
}

// ParseMembershipType parses a raw category key. Surrounding whitespace and
// case are ignored; an empty input yields the default type.
func ParseMembershipType(s string) (MembershipType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultMembershipType, true
	}
	t := MembershipType(s)
	return t, t.Valid()
}

// Membership is a loyalty program membership (airline, hotel, cruise, ...).
type Membership struct {
	ID MembershipID

	Name   string
	Number string
	Type   MembershipType

	// Optional fields; nil means unset.
	Tier    *string
	Website *string
	Notes   *string

	CreatedAt time.Time
	// UpdatedAt is nil until the first update.
	UpdatedAt *time.Time
}

// Clone returns a deep copy of m.
func (m Membership) Clone() Membership {
	out := m
	out.Tier = cloneStringPtr(m.Tier)
	out.Website = cloneStringPtr(m.Website)
	out.Notes = cloneStringPtr(m.Notes)
	if m.UpdatedAt != nil {
		v := *m.UpdatedAt
		out.UpdatedAt = &v
	}
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
