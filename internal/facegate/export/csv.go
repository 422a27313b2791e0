// Package export renders audit log queries as CSV for external tooling.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mereles/facegate/internal/facegate/store"
)

var header = []string{
	"id", "timestamp", "name", "identification",
	"event_type", "outcome", "confidence", "denial_reason",
}

// WriteCSV writes rows (as returned by AccessEventStore.Query) with a
// header line. Optional fields render as empty cells.
func WriteCSV(w io.Writer, rows []store.AccessEventRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		confidence := ""
		if row.Confidence != nil {
			confidence = strconv.FormatFloat(*row.Confidence, 'f', -1, 64)
		}
		reason := ""
		if row.DenialReason != nil {
			reason = *row.DenialReason
		}

		record := []string{
			strconv.FormatInt(row.ID, 10),
			row.Timestamp.UTC().Format(time.RFC3339),
			row.Name,
			row.Identification,
			string(row.EventType),
			string(row.Outcome),
			confidence,
			reason,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", row.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
