// Package sqlite implements the facegate stores on modernc.org/sqlite.
// Reads go straight to the connection; every write runs as one transaction
// on the shared db.Worker.
package sqlite

import (
	"strconv"
	"strings"
)

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint
// failure. modernc.org/sqlite surfaces constraint errors with the standard
// SQLite message text, which is stable enough to match on.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// encodeWeekdays renders a weekday set as the stored CSV form ("0,1,4").
// Returns nil (SQL NULL) for an empty set.
func encodeWeekdays(days []int) any {
	if len(days) == 0 {
		return nil
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// decodeWeekdays parses the stored CSV form, dropping blanks and anything
// non-numeric the same way the evaluator would.
func decodeWeekdays(s string) []int {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []int
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}
