package domain

// MembershipID is the opaque identifier of a membership record.
// It is assigned by the record store at creation and never changes.
type MembershipID string
