package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mereles/facegate/internal/facegate/service"
	"github.com/mereles/facegate/internal/facegate/store"
	"github.com/mereles/facegate/internal/facegate/store/memory"
	"github.com/mereles/facegate/internal/facegate/types"
)

// collectSink gathers delivered decision events.
type collectSink struct {
	events []types.DecisionEvent
}

func (c *collectSink) OnDecision(ev types.DecisionEvent) { c.events = append(c.events, ev) }

// fixedClassifier always returns the same prediction.
type fixedClassifier struct {
	p service.Prediction
}

func (f fixedClassifier) Predict(context.Context, []byte) (service.Prediction, error) {
	return f.p, nil
}

type recognizerFixture struct {
	ids    *memory.IdentityStore
	events *memory.AccessEventStore
	sink   *collectSink
	rec    *service.Recognizer
	clock  *stepClock
	anaID  int64
}

// newRecognizerFixture enrolls Ana with template id 1 under a business-hours
// rule and wires a recognizer around memory stores and a stepped clock.
func newRecognizerFixture(t *testing.T, cfg service.RecognizerConfig) *recognizerFixture {
	t.Helper()
	ctx := context.Background()

	ids := memory.NewIdentityStore()
	perms := memory.NewPermissionStore()
	events := memory.NewAccessEventStore(ids)
	sink := &collectSink{}
	clock := &stepClock{t: mondayMorning}

	anaID, err := ids.Create(ctx, store.NewIdentity{
		Name:                 "Ana Souza",
		IdentificationNumber: "12345",
		Category:             types.CategoryStudent,
	})
	require.NoError(t, err)
	_, err = ids.SetTemplateID(ctx, anaID, 1)
	require.NoError(t, err)
	businessHoursRule(t, perms, anaID)

	rec := service.NewRecognizer(service.RecognizerDeps{
		Identities: ids,
		Evaluator:  service.NewEvaluator(ids, perms, clock.Now),
		Events:     events,
		Sink:       sink,
		Clock:      clock.Now,
	}, cfg)
	rec.Reload(map[int]string{1: "12345"}, nil)

	return &recognizerFixture{ids: ids, events: events, sink: sink, rec: rec, clock: clock, anaID: anaID}
}

func TestRecognizer_AdmitsAndAudits(t *testing.T) {
	f := newRecognizerFixture(t, service.RecognizerConfig{})

	ev, err := f.rec.Handle(context.Background(), 1, 55.0)
	require.NoError(t, err)

	assert.Equal(t, types.DecisionAdmitted, ev.Kind)
	assert.Equal(t, "Ana Souza", ev.IdentityName)
	require.NotNil(t, ev.IdentityID)
	assert.Equal(t, f.anaID, *ev.IdentityID)

	recs := f.events.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, types.OutcomeAdmitted, recs[0].Outcome)
	require.NotNil(t, recs[0].Confidence)
	assert.Equal(t, 55.0, *recs[0].Confidence)
	assert.Nil(t, recs[0].DenialReason)

	require.Len(t, f.sink.events, 1)
}

func TestRecognizer_CooldownSuppressesRepeats(t *testing.T) {
	f := newRecognizerFixture(t, service.RecognizerConfig{CooldownWindow: 5 * time.Second})
	ctx := context.Background()

	// First sighting decides and audits.
	ev, err := f.rec.Handle(ctx, 1, 55.0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionAdmitted, ev.Kind)

	// The same face two seconds later is suppressed: no audit row, no
	// notification.
	f.clock.Advance(2 * time.Second)
	ev, err = f.rec.Handle(ctx, 1, 55.0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionSuppressed, ev.Kind)

	assert.Len(t, f.events.Records(), 1, "suppressed decision must not audit")
	assert.Len(t, f.sink.events, 1, "suppressed decision must not notify")

	// After the window it decides again.
	f.clock.Advance(3 * time.Second)
	ev, err = f.rec.Handle(ctx, 1, 55.0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionAdmitted, ev.Kind)
	assert.Len(t, f.events.Records(), 2)
}

func TestRecognizer_DeniedOutsideSchedule(t *testing.T) {
	f := newRecognizerFixture(t, service.RecognizerConfig{})
	f.clock.t = saturdayMorning

	ev, err := f.rec.Handle(context.Background(), 1, 55.0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionDenied, ev.Kind)
	assert.Equal(t, service.ReasonOutsideSchedule, ev.Reason)

	recs := f.events.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, types.OutcomeDenied, recs[0].Outcome)
	require.NotNil(t, recs[0].DenialReason)
	assert.Equal(t, service.ReasonOutsideSchedule, *recs[0].DenialReason)
}

func TestRecognizer_NoiseIsSilent(t *testing.T) {
	f := newRecognizerFixture(t, service.RecognizerConfig{DistanceThreshold: 80})
	ctx := context.Background()

	// Above the acceptance threshold.
	ev, err := f.rec.Handle(ctx, 1, 120.0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionUnresolved, ev.Kind)

	// A label no training run produced.
	ev, err = f.rec.Handle(ctx, 42, 10.0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionUnresolved, ev.Kind)

	assert.Empty(t, f.events.Records(), "noise must not reach the audit log")
	assert.Empty(t, f.sink.events, "noise must not notify")
}

func TestRecognizer_TrainedButNotEnrolled(t *testing.T) {
	f := newRecognizerFixture(t, service.RecognizerConfig{})
	ctx := context.Background()

	// Label 2 exists in the label map but no identity carries template 2.
	f.rec.Reload(map[int]string{1: "12345", 2: "99999"}, nil)

	ev, err := f.rec.Handle(ctx, 2, 40.0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionDenied, ev.Kind)
	assert.Equal(t, service.ReasonNotRegistered, ev.Reason)
	assert.Nil(t, ev.IdentityID)

	recs := f.events.Records()
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].IdentityID)
	require.NotNil(t, recs[0].DenialReason)
	assert.Equal(t, service.ReasonNotRegistered, *recs[0].DenialReason)

	// Bypasses the cooldown: a second sighting audits again.
	ev, err = f.rec.Handle(ctx, 2, 40.0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionDenied, ev.Kind)
	assert.Len(t, f.events.Records(), 2)
}

func TestRecognizer_NoEnrolledUsers(t *testing.T) {
	f := newRecognizerFixture(t, service.RecognizerConfig{CooldownWindow: 5 * time.Second})
	ctx := context.Background()

	f.rec.Reload(map[int]string{}, nil)

	ev, err := f.rec.Handle(ctx, 1, 10.0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionUnresolved, ev.Kind)
	assert.Equal(t, service.ReasonNoEnrolledUsers, ev.Reason)
	require.Len(t, f.sink.events, 1)

	// The notification itself is rate limited.
	f.clock.Advance(time.Second)
	ev, err = f.rec.Handle(ctx, 1, 10.0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionSuppressed, ev.Kind)
	assert.Len(t, f.sink.events, 1)

	// Never audited: there is no event to record.
	assert.Empty(t, f.events.Records())
}

func TestRecognizer_ClassifyUsesSnapshot(t *testing.T) {
	f := newRecognizerFixture(t, service.RecognizerConfig{})
	ctx := context.Background()

	// No classifier loaded yet.
	_, err := f.rec.Classify(ctx, []byte("frame"))
	assert.ErrorIs(t, err, service.ErrClassifierUnavailable)

	f.rec.Reload(map[int]string{1: "12345"}, fixedClassifier{
		p: service.Prediction{Label: 1, Distance: 30.0},
	})

	ev, err := f.rec.Classify(ctx, []byte("frame"))
	require.NoError(t, err)
	assert.Equal(t, types.DecisionAdmitted, ev.Kind)
	assert.Equal(t, "Ana Souza", ev.IdentityName)
}

func TestRecognizer_InactiveIdentityDenied(t *testing.T) {
	f := newRecognizerFixture(t, service.RecognizerConfig{})
	ctx := context.Background()

	inactive := false
	_, err := f.ids.Update(ctx, f.anaID, store.IdentityUpdate{Active: &inactive})
	require.NoError(t, err)

	ev, err := f.rec.Handle(ctx, 1, 55.0)
	require.NoError(t, err)
	assert.Equal(t, types.DecisionDenied, ev.Kind)
	assert.Equal(t, service.ReasonIdentityInactive, ev.Reason)
}
