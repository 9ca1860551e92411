package memberships

import "github.com/Overland-East-Bay/membership-tracker/internal/domain"

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// CreateInput is what the record store needs to create a membership.
// ID and CreatedAt are always assigned by the store.
type CreateInput struct {
	Name   string
	Number string
	Type   domain.MembershipType // empty means domain.DefaultMembershipType

	Tier    *string
	Website *string
	Notes   *string
}

// Patch lists the mutable fields of a membership. Unspecified fields are
// left untouched. Null clears an optional field; null on a required field
// (name, number, type) is ignored.
type Patch struct {
	Name   Optional[string]
	Number Optional[string]
	Type   Optional[domain.MembershipType]

	Tier    Optional[string]
	Website Optional[string]
	Notes   Optional[string]
}

// CreateMembershipInput is raw form input for a new membership.
type CreateMembershipInput struct {
	Name    string
	Number  string
	Type    string
	Tier    string
	Website string
	Notes   string
}

// UpdateMembershipInput is raw form input for a partial update.
type UpdateMembershipInput struct {
	Name    Optional[string] // cannot be null
	Number  Optional[string] // cannot be null
	Type    Optional[string] // cannot be null
	Tier    Optional[string] // may be null
	Website Optional[string] // may be null
	Notes   Optional[string] // may be null
}
