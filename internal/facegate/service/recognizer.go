package service

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/mereles/facegate/internal/facegate/store"
	"github.com/mereles/facegate/internal/facegate/types"
)

// noUsersKey is the cooldown key for the "nobody enrolled yet" notification,
// which has no identity to key on.
const noUsersKey = "__no_users__"

// DecisionSink receives decision events for on-screen/audio rendering.
// Suppressed decisions are not delivered.
type DecisionSink interface {
	OnDecision(ev types.DecisionEvent)
}

// SinkFunc adapts a function to the DecisionSink interface.
type SinkFunc func(types.DecisionEvent)

func (f SinkFunc) OnDecision(ev types.DecisionEvent) { f(ev) }

// RecognizerConfig tunes the recognition event handler.
type RecognizerConfig struct {
	// DistanceThreshold is the acceptance cutoff: predictions with a
	// larger distance are treated as noise. Defaults to
	// DefaultDistanceThreshold, which accepts everything the classifier
	// returns.
	DistanceThreshold float64

	// CooldownWindow is the per-identity decision cooldown. Defaults to
	// DefaultCooldown.
	CooldownWindow time.Duration

	// Sector is the sector this entry point guards; empty means the
	// evaluation is not sector-scoped.
	Sector string

	// EventType defaults to entry.
	EventType types.EventType
}

// DefaultDistanceThreshold keeps every prediction; deployments with a
// calibrated classifier lower it.
const DefaultDistanceThreshold = 1e6

// RecognizerDeps are the collaborators a Recognizer is wired with.
type RecognizerDeps struct {
	Identities store.IdentityStore
	Evaluator  *Evaluator
	Events     store.AccessEventStore
	Sink       DecisionSink // optional
	Logger     *log.Logger  // optional
	Clock      func() time.Time
}

// Recognizer turns classifier predictions into audited access decisions.
//
// Single-writer: Handle and Classify must only be invoked from one
// goroutine (the recognition loop). Reload may be called from elsewhere —
// it swaps the label-map/classifier snapshot atomically, and an evaluation
// in flight keeps using the snapshot it started with.
type Recognizer struct {
	identities store.IdentityStore
	evaluator  *Evaluator
	events     store.AccessEventStore
	sink       DecisionSink
	logger     *log.Logger
	cfg        RecognizerConfig
	cooldown   *Cooldown
	now        func() time.Time

	snap atomic.Pointer[snapshot]
}

// snapshot pairs the label map with the classifier trained against it, so a
// reload can never mix labels from one training run with a model from
// another.
type snapshot struct {
	labels     map[int]string
	classifier Classifier
}

func NewRecognizer(d RecognizerDeps, cfg RecognizerConfig) *Recognizer {
	if cfg.DistanceThreshold <= 0 {
		cfg.DistanceThreshold = DefaultDistanceThreshold
	}
	if cfg.CooldownWindow <= 0 {
		cfg.CooldownWindow = DefaultCooldown
	}
	if cfg.EventType == "" {
		cfg.EventType = types.EventEntry
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Logger == nil {
		d.Logger = log.New(io.Discard, "", 0)
	}

	r := &Recognizer{
		identities: d.Identities,
		evaluator:  d.Evaluator,
		events:     d.Events,
		sink:       d.Sink,
		logger:     d.Logger,
		cfg:        cfg,
		cooldown:   NewCooldown(cfg.CooldownWindow, d.Clock),
		now:        d.Clock,
	}
	r.snap.Store(&snapshot{})
	return r
}

// Reload swaps in the label map and classifier produced by a completed
// training run.
func (r *Recognizer) Reload(labels map[int]string, classifier Classifier) {
	r.snap.Store(&snapshot{labels: labels, classifier: classifier})
}

// Classify runs the current classifier on a face image and feeds the
// prediction through Handle, all against one coherent snapshot.
func (r *Recognizer) Classify(ctx context.Context, face []byte) (types.DecisionEvent, error) {
	s := r.snap.Load()
	if s.classifier == nil {
		return types.DecisionEvent{}, ErrClassifierUnavailable
	}

	p, err := s.classifier.Predict(ctx, face)
	if err != nil {
		return types.DecisionEvent{}, err
	}
	return r.handle(ctx, s, p.Label, p.Distance)
}

// Handle processes one (label, distance) prediction and returns the
// resulting decision event.
func (r *Recognizer) Handle(ctx context.Context, label int, distance float64) (types.DecisionEvent, error) {
	return r.handle(ctx, r.snap.Load(), label, distance)
}

func (r *Recognizer) handle(ctx context.Context, s *snapshot, label int, distance float64) (types.DecisionEvent, error) {
	now := r.now()

	// Nobody trained yet: detection works, recognition can't. Notify,
	// rate-limited under a dedicated key, with no audit write.
	if len(s.labels) == 0 {
		if !r.cooldown.Allow(noUsersKey) {
			return types.DecisionEvent{Kind: types.DecisionSuppressed, At: now}, nil
		}
		r.cooldown.Mark(noUsersKey)
		ev := types.DecisionEvent{
			Kind:   types.DecisionUnresolved,
			Reason: ReasonNoEnrolledUsers,
			At:     now,
		}
		r.emit(ev)
		return ev, nil
	}

	// Below acceptance quality, or a label no training run produced:
	// classifier noise. No audit, no cooldown, no notification.
	key, mapped := s.labels[label]
	if distance > r.cfg.DistanceThreshold || !mapped {
		return types.DecisionEvent{Kind: types.DecisionUnresolved, At: now}, nil
	}

	ident, err := r.identities.FindByTemplateID(ctx, int64(label))
	if err != nil {
		return types.DecisionEvent{}, err
	}

	// Trained face with no registry row: always audited and notified,
	// bypassing the cooldown.
	if ident == nil {
		reason := ReasonNotRegistered
		r.record(ctx, store.AccessEventRecord{
			EventType:    r.cfg.EventType,
			Outcome:      types.OutcomeDenied,
			Confidence:   &distance,
			DenialReason: &reason,
		})
		ev := types.DecisionEvent{
			Kind:         types.DecisionDenied,
			IdentityName: key,
			Confidence:   &distance,
			Reason:       reason,
			At:           now,
		}
		r.emit(ev)
		return ev, nil
	}

	if !r.cooldown.Allow(key) {
		return types.DecisionEvent{
			Kind:         types.DecisionSuppressed,
			IdentityID:   &ident.ID,
			IdentityName: ident.Name,
			At:           now,
		}, nil
	}

	admitted, reason, err := r.evaluator.Evaluate(ctx, ident.ID, r.cfg.Sector)
	if err != nil {
		return types.DecisionEvent{}, err
	}

	rec := store.AccessEventRecord{
		IdentityID: &ident.ID,
		EventType:  r.cfg.EventType,
		Outcome:    types.OutcomeAdmitted,
		Confidence: &distance,
	}
	kind := types.DecisionAdmitted
	if !admitted {
		rec.Outcome = types.OutcomeDenied
		rec.DenialReason = &reason
		kind = types.DecisionDenied
	}
	r.record(ctx, rec)
	r.cooldown.Mark(key)

	ev := types.DecisionEvent{
		Kind:         kind,
		IdentityID:   &ident.ID,
		IdentityName: ident.Name,
		Confidence:   &distance,
		Reason:       reason,
		At:           now,
	}
	r.emit(ev)
	return ev, nil
}

// record appends to the audit log. Errors are intentionally not returned —
// a failed audit write must not keep a person standing at the door without
// a decision.
func (r *Recognizer) record(ctx context.Context, rec store.AccessEventRecord) {
	if _, err := r.events.Append(ctx, rec); err != nil {
		r.logger.Printf("audit append failed: %v", err)
	}
}

func (r *Recognizer) emit(ev types.DecisionEvent) {
	if r.sink != nil {
		r.sink.OnDecision(ev)
	}
}

// IsNoFace reports whether a Classify error just means an empty frame.
func IsNoFace(err error) bool {
	return errors.Is(err, ErrNoFace)
}
