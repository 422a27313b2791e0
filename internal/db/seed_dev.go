package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev inserts a starter identity with a weekday business-hours rule so a
// fresh dev database has something to recognize against. Safe to run twice.
func SeedDev(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC().UnixMilli()

	if _, err := db.ExecContext(ctx, `
INSERT INTO identities(
  name, identification_number, identification_kind, access_category,
  active, registered_at_ms
) VALUES ('Ana Souza', '12345', 'RA', 'student', 1, ?)
ON CONFLICT(identification_number) DO NOTHING;
`, now); err != nil {
		return fmt.Errorf("seed identity: %w", err)
	}

	// Weekday 08:00-18:00 rule for the starter identity, once.
	if _, err := db.ExecContext(ctx, `
INSERT INTO permission_rules(identity_id, sector, time_start, time_end, weekdays)
SELECT i.identity_id, NULL, '08:00', '18:00', '0,1,2,3,4'
FROM identities i
WHERE i.identification_number = '12345'
  AND NOT EXISTS (
    SELECT 1 FROM permission_rules r WHERE r.identity_id = i.identity_id
  );
`); err != nil {
		return fmt.Errorf("seed rule: %w", err)
	}

	return nil
}
