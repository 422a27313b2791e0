package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	dbpkg "github.com/mereles/facegate/internal/db"
	"github.com/mereles/facegate/internal/facegate/store"
	"github.com/mereles/facegate/internal/facegate/types"
)

const defaultQueryLimit = 100

type AccessEventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAccessEventStore(db *sql.DB, writer *dbpkg.Worker) *AccessEventStore {
	return &AccessEventStore{db: db, writer: writer}
}

func (s *AccessEventStore) Append(ctx context.Context, rec store.AccessEventRecord) (int64, error) {
	if err := store.ValidateEventRecord(rec); err != nil {
		return 0, err
	}

	nowMs := time.Now().UTC().UnixMilli()

	var identityID any
	if rec.IdentityID != nil {
		identityID = *rec.IdentityID
	}
	var confidence any
	if rec.Confidence != nil {
		confidence = *rec.Confidence
	}
	var reason any
	if rec.DenialReason != nil {
		reason = *rec.DenialReason
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO access_events(
  identity_id, occurred_at_ms, event_type, outcome, confidence, denial_reason
) VALUES (?, ?, ?, ?, ?, ?);
`, identityID, nowMs, string(rec.EventType), string(rec.Outcome), confidence, reason)
		if err != nil {
			return fmt.Errorf("Append insert: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Append last insert id: %w", err)
		}
		return nil
	})
	return id, err
}

func (s *AccessEventStore) Query(ctx context.Context, f store.EventFilter) ([]store.AccessEventRow, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	q := `
SELECT e.event_id, e.identity_id, e.occurred_at_ms, e.event_type, e.outcome,
       e.confidence, e.denial_reason, i.name, i.identification_number
FROM access_events e
LEFT JOIN identities i ON e.identity_id = i.identity_id
WHERE 1=1`
	var args []any

	if f.IdentityID != nil {
		q += " AND e.identity_id = ?"
		args = append(args, *f.IdentityID)
	}
	if f.From != nil {
		q += " AND e.occurred_at_ms >= ?"
		args = append(args, f.From.UTC().UnixMilli())
	}
	if f.To != nil {
		q += " AND e.occurred_at_ms <= ?"
		args = append(args, f.To.UTC().UnixMilli())
	}
	if f.Outcome != nil {
		q += " AND e.outcome = ?"
		args = append(args, string(*f.Outcome))
	}

	q += " ORDER BY e.occurred_at_ms DESC, e.event_id DESC LIMIT ?;"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("Query: %w", err)
	}
	defer rows.Close()

	var out []store.AccessEventRow
	for rows.Next() {
		var (
			row        store.AccessEventRow
			identityID sql.NullInt64
			occurredMs int64
			eventType  string
			outcome    string
			confidence sql.NullFloat64
			reason     sql.NullString
			name       sql.NullString
			number     sql.NullString
		)
		if err := rows.Scan(&row.ID, &identityID, &occurredMs, &eventType, &outcome,
			&confidence, &reason, &name, &number); err != nil {
			return nil, fmt.Errorf("Query scan: %w", err)
		}

		if identityID.Valid {
			row.IdentityID = &identityID.Int64
		}
		row.Timestamp = time.UnixMilli(occurredMs).UTC()
		row.EventType = types.EventType(eventType)
		row.Outcome = types.Outcome(outcome)
		if confidence.Valid {
			row.Confidence = &confidence.Float64
		}
		if reason.Valid {
			row.DenialReason = &reason.String
		}

		// A null or dangling identity reference reads as "unknown"; the
		// log row itself is never touched.
		if name.Valid {
			row.Name = name.String
		} else {
			row.Name = store.UnknownIdentityName
		}
		if number.Valid {
			row.Identification = number.String
		}

		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Query rows: %w", err)
	}
	return out, nil
}

func (s *AccessEventStore) Stats(ctx context.Context, from, to *time.Time) (store.AccessStats, error) {
	q := `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN outcome = 'admitted' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN outcome = 'denied' THEN 1 ELSE 0 END), 0)
FROM access_events
WHERE 1=1`
	var args []any
	if from != nil {
		q += " AND occurred_at_ms >= ?"
		args = append(args, from.UTC().UnixMilli())
	}
	if to != nil {
		q += " AND occurred_at_ms <= ?"
		args = append(args, to.UTC().UnixMilli())
	}

	var st store.AccessStats
	if err := s.db.QueryRowContext(ctx, q+";", args...).Scan(&st.Total, &st.Admitted, &st.Denied); err != nil {
		return store.AccessStats{}, fmt.Errorf("Stats query: %w", err)
	}

	if st.Total > 0 {
		rate := float64(st.Admitted) / float64(st.Total) * 100
		st.SuccessRate = math.Round(rate*100) / 100
	}
	return st, nil
}
