package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"

	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
)

// Membership is the API representation of a record. Field names match the
// durable format.
type Membership struct {
	Id        string     `json:"id"`
	Name      string     `json:"name"`
	Number    string     `json:"number"`
	Type      string     `json:"type"`
	Tier      *string    `json:"tier,omitempty"`
	Website   *string    `json:"website,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type MembershipResponse struct {
	Membership Membership `json:"membership"`
}

type ListMembershipsResponse struct {
	Memberships []Membership `json:"memberships"`
}

type CreateMembershipRequest struct {
	Name    string  `json:"name"`
	Number  string  `json:"number"`
	Type    *string `json:"type,omitempty"`
	Tier    *string `json:"tier,omitempty"`
	Website *string `json:"website,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// UpdateMembershipRequest carries tri-state fields: omitted, null, or a value.
type UpdateMembershipRequest struct {
	Name    nullable.Nullable[string] `json:"name,omitempty"`
	Number  nullable.Nullable[string] `json:"number,omitempty"`
	Type    nullable.Nullable[string] `json:"type,omitempty"`
	Tier    nullable.Nullable[string] `json:"tier,omitempty"`
	Website nullable.Nullable[string] `json:"website,omitempty"`
	Notes   nullable.Nullable[string] `json:"notes,omitempty"`
}

type LabelsResponse struct {
	Locale     string            `json:"locale"`
	Categories map[string]string `json:"categories"`
	Messages   map[string]string `json:"messages"`
}

type ErrorResponse struct {
	Error struct {
		Code      string                            `json:"code"`
		Message   string                            `json:"message"`
		Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
		RequestId nullable.Nullable[string]         `json:"requestId,omitempty"`
	} `json:"error"`
}

func membershipFromDomain(m domain.Membership) Membership {
	return Membership{
		Id:        string(m.ID),
		Name:      m.Name,
		Number:    m.Number,
		Type:      string(m.Type),
		Tier:      m.Tier,
		Website:   m.Website,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func membershipsFromDomain(ms []domain.Membership) []Membership {
	out := make([]Membership, 0, len(ms))
	for _, m := range ms {
		out = append(out, membershipFromDomain(m))
	}
	return out
}
