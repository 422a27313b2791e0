package pipeline_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mereles/facegate/internal/facegate/pipeline"
	"github.com/mereles/facegate/internal/facegate/service"
	"github.com/mereles/facegate/internal/facegate/store"
	"github.com/mereles/facegate/internal/facegate/store/memory"
	"github.com/mereles/facegate/internal/facegate/types"
)

// fakeCamera yields frames with a small delay and counts Release calls.
type fakeCamera struct {
	frames   atomic.Int64
	released atomic.Bool
}

func (c *fakeCamera) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Millisecond):
	}
	c.frames.Add(1)
	return []byte("frame"), nil
}

func (c *fakeCamera) Release() { c.released.Store(true) }

// stuckCamera never returns a frame until its context is cancelled.
type stuckCamera struct {
	released atomic.Bool
}

func (c *stuckCamera) Read(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *stuckCamera) Release() { c.released.Store(true) }

// constClassifier returns the same prediction for every frame.
type constClassifier struct {
	label    int
	distance float64
}

func (c constClassifier) Predict(context.Context, []byte) (service.Prediction, error) {
	return service.Prediction{Label: c.label, Distance: c.distance}, nil
}

func newLoopRecognizer(t *testing.T) (*service.Recognizer, *memory.AccessEventStore) {
	t.Helper()
	ctx := context.Background()

	ids := memory.NewIdentityStore()
	perms := memory.NewPermissionStore()
	events := memory.NewAccessEventStore(ids)

	id, err := ids.Create(ctx, store.NewIdentity{
		Name:                 "Ana Souza",
		IdentificationNumber: "12345",
		Category:             types.CategoryStudent,
	})
	require.NoError(t, err)
	_, err = ids.SetTemplateID(ctx, id, 1)
	require.NoError(t, err)

	rec := service.NewRecognizer(service.RecognizerDeps{
		Identities: ids,
		Evaluator:  service.NewEvaluator(ids, perms, nil),
		Events:     events,
	}, service.RecognizerConfig{})
	rec.Reload(map[int]string{1: "12345"}, constClassifier{label: 1, distance: 40})
	return rec, events
}

func TestLoop_ProcessesFramesAndStops(t *testing.T) {
	rec, events := newLoopRecognizer(t)
	camera := &fakeCamera{}
	loop := pipeline.NewLoop(camera, rec, nil)

	require.NoError(t, loop.Start(context.Background()))

	// Let a few frames through.
	deadline := time.After(time.Second)
	for camera.frames.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("loop never processed frames")
		case <-time.After(5 * time.Millisecond):
		}
	}

	loop.Stop(time.Second)
	assert.True(t, camera.released.Load(), "camera must be released on stop")

	// The recognized identity was admitted once; the cooldown swallowed
	// the repeat sightings.
	assert.Len(t, events.Records(), 1)
}

func TestLoop_StartTwiceFails(t *testing.T) {
	rec, _ := newLoopRecognizer(t)
	camera := &fakeCamera{}
	loop := pipeline.NewLoop(camera, rec, nil)

	require.NoError(t, loop.Start(context.Background()))
	assert.Error(t, loop.Start(context.Background()))
	loop.Stop(time.Second)
}

func TestLoop_StopWithoutStartReleasesCamera(t *testing.T) {
	rec, _ := newLoopRecognizer(t)
	camera := &fakeCamera{}
	loop := pipeline.NewLoop(camera, rec, nil)

	loop.Stop(10 * time.Millisecond)
	assert.True(t, camera.released.Load())
}

func TestLoop_StopIsBoundedOnStuckCamera(t *testing.T) {
	rec, _ := newLoopRecognizer(t)
	camera := &stuckCamera{}
	loop := pipeline.NewLoop(camera, rec, nil)

	require.NoError(t, loop.Start(context.Background()))

	start := time.Now()
	loop.Stop(50 * time.Millisecond)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Second, "Stop must not wait for a stuck Read")
	assert.True(t, camera.released.Load(), "camera must be released even when the loop is stuck")
}

func TestLoop_ContextCancelStopsRun(t *testing.T) {
	rec, _ := newLoopRecognizer(t)
	camera := &fakeCamera{}
	loop := pipeline.NewLoop(camera, rec, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, loop.Start(ctx))
	cancel()

	// With the context gone the goroutine exits on its own; Stop just joins.
	loop.Stop(time.Second)
	assert.True(t, camera.released.Load())
}
