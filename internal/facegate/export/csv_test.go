package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mereles/facegate/internal/facegate/export"
	"github.com/mereles/facegate/internal/facegate/store"
	"github.com/mereles/facegate/internal/facegate/types"
)

func TestWriteCSV(t *testing.T) {
	id := int64(7)
	confidence := 42.5
	reason := "identity inactive"
	at := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)

	rows := []store.AccessEventRow{
		{
			ID:             2,
			IdentityID:     &id,
			Timestamp:      at,
			Name:           "Ana Souza",
			Identification: "12345",
			EventType:      types.EventEntry,
			Outcome:        types.OutcomeDenied,
			Confidence:     &confidence,
			DenialReason:   &reason,
		},
		{
			ID:        1,
			Timestamp: at.Add(-time.Minute),
			Name:      store.UnknownIdentityName,
			EventType: types.EventEntry,
			Outcome:   types.OutcomeAdmitted,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"id", "timestamp", "name", "identification",
		"event_type", "outcome", "confidence", "denial_reason",
	}, records[0])

	assert.Equal(t, []string{
		"2", "2026-08-24T10:30:00Z", "Ana Souza", "12345",
		"entry", "denied", "42.5", "identity inactive",
	}, records[1])

	// Optional fields render as empty cells.
	assert.Equal(t, []string{
		"1", "2026-08-24T10:29:00Z", "unknown", "",
		"entry", "admitted", "", "",
	}, records[2])
}

func TestWriteCSV_EmptyLogStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
