// Package training rebuilds the classifier label map from the enrollment
// dataset and assigns biometric template ids to identities. The model
// training itself is delegated to an external builder.
package training

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// LabelMapFile is the artifact name the label map is persisted under.
const LabelMapFile = "label_map.json"

// LabelMap maps a classifier label to the identity key (identification
// number) it was trained from.
type LabelMap map[int]string

// Save writes the map as JSON. JSON object keys are strings, so labels are
// stringified on disk.
func (m LabelMap) Save(path string) error {
	onDisk := make(map[string]string, len(m))
	for label, key := range m {
		onDisk[strconv.Itoa(label)] = key
	}

	data, err := json.MarshalIndent(onDisk, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal label map: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write label map: %w", err)
	}
	return nil
}

// LoadLabelMap reads a persisted label map. A missing file is not an
// error: it means no training has happened yet, and the empty map puts the
// recognizer in "no enrolled users" mode.
func LoadLabelMap(path string) (LabelMap, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return LabelMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read label map: %w", err)
	}

	var onDisk map[string]string
	if err := json.Unmarshal(data, &onDisk); err != nil {
		return nil, fmt.Errorf("parse label map: %w", err)
	}

	m := make(LabelMap, len(onDisk))
	for labelStr, key := range onDisk {
		label, err := strconv.Atoi(labelStr)
		if err != nil {
			return nil, fmt.Errorf("parse label map key %q: %w", labelStr, err)
		}
		m[label] = key
	}
	return m, nil
}
