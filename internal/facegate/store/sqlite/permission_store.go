package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	dbpkg "github.com/mereles/facegate/internal/db"
	"github.com/mereles/facegate/internal/facegate/store"
)

type PermissionStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewPermissionStore(db *sql.DB, writer *dbpkg.Worker) *PermissionStore {
	return &PermissionStore{db: db, writer: writer}
}

func (s *PermissionStore) CreateRule(ctx context.Context, n store.NewRule) (int64, error) {
	if err := store.ValidateNewRule(n); err != nil {
		return 0, err
	}

	var sector any
	if n.Sector != nil && strings.TrimSpace(*n.Sector) != "" {
		sector = strings.TrimSpace(*n.Sector)
	}
	var timeStart, timeEnd any
	if n.TimeStart != nil {
		timeStart = *n.TimeStart
	}
	if n.TimeEnd != nil {
		timeEnd = *n.TimeEnd
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO permission_rules(identity_id, sector, time_start, time_end, weekdays)
VALUES (?, ?, ?, ?, ?);
`, n.IdentityID, sector, timeStart, timeEnd, encodeWeekdays(n.Weekdays))
		if err != nil {
			return fmt.Errorf("CreateRule insert: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("CreateRule last insert id: %w", err)
		}
		return nil
	})
	return id, err
}

// ListRules returns rules in creation order; rule_id is monotonically
// assigned, so ordering by it preserves first-match-wins semantics.
func (s *PermissionStore) ListRules(ctx context.Context, identityID int64) ([]store.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT rule_id, identity_id, sector, time_start, time_end, weekdays
FROM permission_rules
WHERE identity_id = ?
ORDER BY rule_id;
`, identityID)
	if err != nil {
		return nil, fmt.Errorf("ListRules query: %w", err)
	}
	defer rows.Close()

	var out []store.Rule
	for rows.Next() {
		var (
			r          store.Rule
			sector     sql.NullString
			timeStart  sql.NullString
			timeEnd    sql.NullString
			weekdayCSV sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.IdentityID, &sector, &timeStart, &timeEnd, &weekdayCSV); err != nil {
			return nil, fmt.Errorf("ListRules scan: %w", err)
		}
		if sector.Valid {
			r.Sector = &sector.String
		}
		if timeStart.Valid {
			r.TimeStart = &timeStart.String
		}
		if timeEnd.Valid {
			r.TimeEnd = &timeEnd.String
		}
		if weekdayCSV.Valid {
			r.Weekdays = decodeWeekdays(weekdayCSV.String)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRules rows: %w", err)
	}
	return out, nil
}

func (s *PermissionStore) DeleteRule(ctx context.Context, id int64) (bool, error) {
	var removed bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM permission_rules WHERE rule_id = ?;", id)
		if err != nil {
			return fmt.Errorf("DeleteRule exec: %w", err)
		}
		n, _ := res.RowsAffected()
		removed = n > 0
		return nil
	})
	return removed, err
}
