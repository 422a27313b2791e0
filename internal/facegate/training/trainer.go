package training

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/mereles/facegate/internal/facegate/store"
)

var (
	// ErrTrainingInProgress guards the single-flight constraint: a
	// training run must never overlap another.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrEmptyDataset means no identity directory held any usable image.
	ErrEmptyDataset = errors.New("no faces found in dataset")
)

// Sample is one training image with its assigned label.
type Sample struct {
	Label int
	Path  string
}

// ModelBuilder trains the actual recognition model from labeled samples.
// It is the external, black-box half of training; a nil builder skips it
// (label map and template assignment still happen).
type ModelBuilder interface {
	Build(ctx context.Context, samples []Sample) error
}

// Summary reports what a training run covered.
type Summary struct {
	Identities int      // identity directories trained
	Images     int      // total images labeled
	Unmatched  []string // dataset directories with no enrolled identity
}

// Trainer scans the dataset directory — one subdirectory per identity,
// named by identification number, holding that identity's face images —
// assigns labels sequentially, persists the label map artifact, and stamps
// each enrolled identity with its template id.
type Trainer struct {
	datasetDir   string
	artifactsDir string
	identities   store.IdentityStore
	builder      ModelBuilder
	logger       *log.Logger

	busy atomic.Bool
}

func NewTrainer(datasetDir, artifactsDir string, identities store.IdentityStore, builder ModelBuilder, logger *log.Logger) *Trainer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Trainer{
		datasetDir:   datasetDir,
		artifactsDir: artifactsDir,
		identities:   identities,
		builder:      builder,
		logger:       logger,
	}
}

// Train runs one training pass and returns the produced label map. The
// caller is responsible for reloading the recognizer with it — the swap is
// explicit, never implicit.
func (t *Trainer) Train(ctx context.Context) (Summary, LabelMap, error) {
	if !t.busy.CompareAndSwap(false, true) {
		return Summary{}, nil, ErrTrainingInProgress
	}
	defer t.busy.Store(false)

	entries, err := os.ReadDir(t.datasetDir)
	if err != nil {
		return Summary{}, nil, fmt.Errorf("read dataset dir: %w", err)
	}

	var (
		summary Summary
		labels  = LabelMap{}
		samples []Sample
		label   = 1
	)

	// os.ReadDir sorts by name, so labels are stable for a given dataset.
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		key := e.Name()

		images, err := listImages(filepath.Join(t.datasetDir, key))
		if err != nil {
			return Summary{}, nil, err
		}
		if len(images) == 0 {
			continue
		}

		labels[label] = key
		for _, img := range images {
			samples = append(samples, Sample{Label: label, Path: img})
		}
		summary.Images += len(images)

		ident, err := t.identities.FindByIdentification(ctx, key)
		if err != nil {
			return Summary{}, nil, err
		}
		if ident == nil {
			// Images without an enrollment train fine but can only
			// ever resolve to "identity not registered".
			summary.Unmatched = append(summary.Unmatched, key)
			t.logger.Printf("training: dataset dir %q has no enrolled identity", key)
		} else if _, err := t.identities.SetTemplateID(ctx, ident.ID, int64(label)); err != nil {
			return Summary{}, nil, err
		}

		summary.Identities++
		label++
	}

	if len(labels) == 0 {
		return Summary{}, nil, ErrEmptyDataset
	}

	if t.builder != nil {
		if err := t.builder.Build(ctx, samples); err != nil {
			return Summary{}, nil, fmt.Errorf("build model: %w", err)
		}
	}

	if err := os.MkdirAll(t.artifactsDir, 0o755); err != nil {
		return Summary{}, nil, fmt.Errorf("mkdir artifacts dir: %w", err)
	}
	if err := labels.Save(filepath.Join(t.artifactsDir, LabelMapFile)); err != nil {
		return Summary{}, nil, err
	}

	t.logger.Printf("training: %d identities, %d images", summary.Identities, summary.Images)
	return summary, labels, nil
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset dir %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// RemoveArtifacts deletes the label map and any trained model files from
// the artifacts directory. Used by the full reset.
func RemoveArtifacts(artifactsDir string) error {
	entries, err := os.ReadDir(artifactsDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read artifacts dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name != LabelMapFile && !strings.HasSuffix(name, ".yml") {
			continue
		}
		if err := os.Remove(filepath.Join(artifactsDir, name)); err != nil {
			return fmt.Errorf("remove artifact %s: %w", name, err)
		}
	}
	return nil
}
