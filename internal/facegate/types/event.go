package types

// EventType distinguishes entry from exit events in the audit log.
type EventType string

const (
	EventEntry EventType = "entry"
	EventExit  EventType = "exit"
)

func (e EventType) Valid() bool {
	return e == EventEntry || e == EventExit
}

// Outcome is the binary result of an access evaluation.
type Outcome string

const (
	OutcomeAdmitted Outcome = "admitted"
	OutcomeDenied   Outcome = "denied"
)

func (o Outcome) Valid() bool {
	return o == OutcomeAdmitted || o == OutcomeDenied
}
