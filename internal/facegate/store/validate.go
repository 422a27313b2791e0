package store

import (
	"strings"

	"github.com/mereles/facegate/internal/facegate/types"
)

// NormalizeNewIdentity trims and validates an enrollment request, deriving
// the identification kind from the category when it was left empty. Shared
// by every store backend so validation never depends on which one is wired.
func NormalizeNewIdentity(n NewIdentity) (NewIdentity, error) {
	n.Name = strings.TrimSpace(n.Name)
	n.IdentificationNumber = strings.TrimSpace(n.IdentificationNumber)

	if n.Name == "" {
		return n, &ValidationError{Field: "name", Reason: "required"}
	}
	if n.IdentificationNumber == "" {
		return n, &ValidationError{Field: "identification_number", Reason: "required"}
	}
	if !n.Category.Valid() {
		return n, &ValidationError{Field: "access_category", Reason: "unknown value " + string(n.Category)}
	}

	want := types.KindForCategory(n.Category)
	switch n.IdentificationKind {
	case "":
		n.IdentificationKind = want
	case want:
	default:
		if !n.IdentificationKind.Valid() {
			return n, &ValidationError{Field: "identification_kind", Reason: "unknown value " + string(n.IdentificationKind)}
		}
		return n, &ValidationError{
			Field:  "identification_kind",
			Reason: string(n.Category) + " enrolls under " + string(want),
		}
	}

	return n, nil
}

// ValidateNewRule checks the shape of a rule: the time window comes as a
// pair or not at all, and weekday values stay in 0..6. Time strings are
// deliberately not parsed here (see PermissionStore).
func ValidateNewRule(n NewRule) error {
	if n.IdentityID <= 0 {
		return &ValidationError{Field: "identity_id", Reason: "required"}
	}
	if (n.TimeStart == nil) != (n.TimeEnd == nil) {
		return &ValidationError{Field: "time_start/time_end", Reason: "both or neither must be set"}
	}
	for _, d := range n.Weekdays {
		if d < 0 || d > 6 {
			return &ValidationError{Field: "weekdays", Reason: "values must be 0 (Monday) through 6 (Sunday)"}
		}
	}
	return nil
}

// ValidateEventRecord checks enum values and the denial_reason/outcome
// pairing before an audit append.
func ValidateEventRecord(rec AccessEventRecord) error {
	if !rec.EventType.Valid() {
		return &ValidationError{Field: "event_type", Reason: "unknown value " + string(rec.EventType)}
	}
	if !rec.Outcome.Valid() {
		return &ValidationError{Field: "outcome", Reason: "unknown value " + string(rec.Outcome)}
	}
	hasReason := rec.DenialReason != nil && strings.TrimSpace(*rec.DenialReason) != ""
	if rec.Outcome == types.OutcomeDenied && !hasReason {
		return &ValidationError{Field: "denial_reason", Reason: "required when outcome is denied"}
	}
	if rec.Outcome == types.OutcomeAdmitted && hasReason {
		return &ValidationError{Field: "denial_reason", Reason: "must be empty when outcome is admitted"}
	}
	return nil
}
