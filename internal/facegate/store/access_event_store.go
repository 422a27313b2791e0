package store

import (
	"context"
	"time"

	"github.com/mereles/facegate/internal/facegate/types"
)

// UnknownIdentityName is what Query reports for events whose identity
// reference is null or dangles after a hard delete.
const UnknownIdentityName = "unknown"

// AccessEventRecord captures one access decision for the audit log.
// IdentityID is nil when no identity could be resolved. DenialReason is set
// iff Outcome is denied; the store enforces this at write time.
type AccessEventRecord struct {
	IdentityID   *int64
	EventType    types.EventType
	Outcome      types.Outcome
	Confidence   *float64
	DenialReason *string
}

// AccessEventRow is a queried audit entry with the identity resolved.
// Name and Identification read as "unknown" / empty when the identity
// reference is null or dangling.
type AccessEventRow struct {
	ID             int64           `json:"id"`
	IdentityID     *int64          `json:"identity_id,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
	Name           string          `json:"name"`
	Identification string          `json:"identification,omitempty"`
	EventType      types.EventType `json:"event_type"`
	Outcome        types.Outcome   `json:"outcome"`
	Confidence     *float64        `json:"confidence,omitempty"`
	DenialReason   *string         `json:"denial_reason,omitempty"`
}

// EventFilter narrows a Query. Nil fields are unconstrained. Limit caps the
// result size; the store applies a default when it is zero.
type EventFilter struct {
	IdentityID *int64
	From       *time.Time
	To         *time.Time
	Outcome    *types.Outcome
	Limit      int
}

// AccessStats aggregates audit outcomes over an optional date range.
// SuccessRate is admitted/total*100 rounded to two decimals, 0 when empty.
type AccessStats struct {
	Total       int64   `json:"total"`
	Admitted    int64   `json:"admitted"`
	Denied      int64   `json:"denied"`
	SuccessRate float64 `json:"success_rate"`
}

// AccessEventStore persists access decisions as an append-only audit log.
// Nothing updates or deletes rows in normal operation; only the full-reset
// utility purges the table.
type AccessEventStore interface {
	Append(ctx context.Context, rec AccessEventRecord) (int64, error)

	// Query returns matching events ordered by timestamp descending.
	Query(ctx context.Context, f EventFilter) ([]AccessEventRow, error)

	Stats(ctx context.Context, from, to *time.Time) (AccessStats, error)
}
