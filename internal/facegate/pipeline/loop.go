// Package pipeline runs the single-producer recognition loop: read a frame,
// classify it, feed the prediction through the recognition handler.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/mereles/facegate/internal/facegate/service"
)

// Camera is the capture collaborator. Read blocks until a frame is
// available; Release frees the device and must be safe to call after a
// failed Read.
type Camera interface {
	Read(ctx context.Context) ([]byte, error)
	Release()
}

// DefaultJoinWait bounds how long Stop waits for the loop goroutine before
// releasing the camera anyway.
const DefaultJoinWait = 2 * time.Second

// Loop drives one camera into one Recognizer. It is the only goroutine
// allowed to call the recognizer's Classify/Handle (single-writer
// constraint); everything it needs concurrently — the snapshot reload — is
// already safe on the recognizer side.
type Loop struct {
	camera     Camera
	recognizer *service.Recognizer
	logger     *log.Logger

	stopping atomic.Bool
	done     chan struct{}
	started  bool
}

func NewLoop(camera Camera, recognizer *service.Recognizer, logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Loop{
		camera:     camera,
		recognizer: recognizer,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start launches the loop goroutine. Calling Start twice is an error.
func (l *Loop) Start(ctx context.Context) error {
	if l.started {
		return errors.New("pipeline: already started")
	}
	l.started = true

	go l.run(ctx)
	l.logger.Printf("recognition pipeline started")
	return nil
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	for !l.stopping.Load() {
		if ctx.Err() != nil {
			return
		}

		frame, err := l.camera.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Transient capture failure; skip the frame.
			continue
		}

		if _, err := l.recognizer.Classify(ctx, frame); err != nil {
			switch {
			case service.IsNoFace(err):
				// Empty frame; nothing to do.
			case errors.Is(err, service.ErrClassifierUnavailable):
				l.logger.Printf("pipeline: classifier unavailable, running detection-only")
			default:
				l.logger.Printf("pipeline: classify: %v", err)
			}
		}
	}
}

// Stop asks the loop to finish its current iteration, waits up to joinWait
// for it, and then releases the camera unconditionally. Non-positive
// joinWait uses DefaultJoinWait.
func (l *Loop) Stop(joinWait time.Duration) {
	if joinWait <= 0 {
		joinWait = DefaultJoinWait
	}

	l.stopping.Store(true)

	if l.started {
		select {
		case <-l.done:
		case <-time.After(joinWait):
			l.logger.Printf("pipeline: loop did not stop within %s, releasing camera anyway", joinWait)
		}
	}

	l.camera.Release()
}
