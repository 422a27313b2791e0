package service

import (
	"context"
	"errors"
)

// Prediction is the classifier's raw output for one face image: an integer
// template label and a distance score where lower means a closer match.
type Prediction struct {
	Label    int
	Distance float64
}

var (
	// ErrNoFace means the frame contained nothing to classify. Routine;
	// callers skip the frame.
	ErrNoFace = errors.New("no face in frame")

	// ErrClassifierUnavailable means the model is missing or corrupt.
	// The system keeps running in detection-only mode rather than
	// refusing to start.
	ErrClassifierUnavailable = errors.New("classifier unavailable")
)

// Classifier is the consumed face-recognition interface. The detection and
// recognition algorithms behind it are a black box; facegate only sees
// labels and distances.
type Classifier interface {
	Predict(ctx context.Context, face []byte) (Prediction, error)
}
