package types

import "time"

// DecisionKind is the recognition handler's verdict for one prediction.
type DecisionKind string

const (
	// DecisionAdmitted and DecisionDenied carry an evaluated, audited result.
	DecisionAdmitted DecisionKind = "admitted"
	DecisionDenied   DecisionKind = "denied"

	// DecisionSuppressed means the identity already produced a decision
	// within the cooldown window. Nothing was written or notified.
	DecisionSuppressed DecisionKind = "suppressed"

	// DecisionUnresolved means no identity could be established: the
	// prediction was below acceptance quality, the label is unmapped, or
	// nobody has been enrolled yet.
	DecisionUnresolved DecisionKind = "unresolved"
)

// DecisionEvent is what the recognition handler hands to the decision sink
// (UI / notification layer) after processing one classifier prediction.
type DecisionEvent struct {
	Kind         DecisionKind `json:"kind"`
	IdentityID   *int64       `json:"identity_id,omitempty"`
	IdentityName string       `json:"identity_name,omitempty"`
	Confidence   *float64     `json:"confidence,omitempty"`
	Reason       string       `json:"reason,omitempty"`
	At           time.Time    `json:"at"`
}
