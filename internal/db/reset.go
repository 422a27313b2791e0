package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Reset purges every identity, permission rule, and audit event in one
// transaction, and resets the AUTOINCREMENT counters. Irreversible; callers
// are expected to have confirmed with the operator first.
func Reset(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reset begin tx: %w", err)
	}

	for _, table := range []string{"access_events", "permission_rules", "identities"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+";"); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("reset purge %s: %w", table, err)
		}
	}

	// sqlite_sequence may not exist on a never-written database.
	if _, err := tx.ExecContext(ctx, `
DELETE FROM sqlite_sequence
WHERE name IN ('access_events', 'permission_rules', 'identities');
`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("reset sequences: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("reset commit: %w", err)
	}
	return nil
}
