package store

import "context"

// Rule is one sector/time/weekday constraint for an identity. Every field
// except IdentityID is optional; a rule with no constraints at all always
// admits. TimeStart/TimeEnd are wall-clock "HH:MM" strings and come as a
// pair. Weekdays uses 0=Monday .. 6=Sunday.
type Rule struct {
	ID         int64   `json:"id"`
	IdentityID int64   `json:"identity_id"`
	Sector     *string `json:"sector,omitempty"`
	TimeStart  *string `json:"time_start,omitempty"`
	TimeEnd    *string `json:"time_end,omitempty"`
	Weekdays   []int   `json:"weekdays,omitempty"`
}

// NewRule carries the fields for CreateRule.
type NewRule struct {
	IdentityID int64
	Sector     *string
	TimeStart  *string
	TimeEnd    *string
	Weekdays   []int
}

// PermissionStore is the durable table of access rules per identity.
//
// Time strings are not validated at write time: malformed values are stored
// and become inert at evaluation, by design — a lockout caused by bad data
// is worse than a permissive rule. Rules are never mutated in place;
// replacing one is delete + create.
type PermissionStore interface {
	CreateRule(ctx context.Context, n NewRule) (int64, error)

	// ListRules returns an identity's rules in creation order.
	ListRules(ctx context.Context, identityID int64) ([]Rule, error)

	DeleteRule(ctx context.Context, id int64) (bool, error)
}
