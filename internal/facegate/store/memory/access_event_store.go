package memory

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/mereles/facegate/internal/facegate/store"
	"github.com/mereles/facegate/internal/facegate/types"
)

// AccessEventStore is an in-memory append-only audit log. Query resolves
// identity names through an optional IdentityStore so tests can exercise
// the "unknown" read path for dangling references.
type AccessEventStore struct {
	mu         sync.Mutex
	nextID     int64
	identities *IdentityStore // optional; nil means every row reads "unknown"
	events     []auditRow
}

type auditRow struct {
	id  int64
	at  time.Time
	rec store.AccessEventRecord
}

func NewAccessEventStore(identities *IdentityStore) *AccessEventStore {
	return &AccessEventStore{identities: identities}
}

func (s *AccessEventStore) Append(_ context.Context, rec store.AccessEventRecord) (int64, error) {
	if err := store.ValidateEventRecord(rec); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.events = append(s.events, auditRow{id: s.nextID, at: time.Now().UTC(), rec: rec})
	return s.nextID, nil
}

func (s *AccessEventStore) Query(ctx context.Context, f store.EventFilter) ([]store.AccessEventRow, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	s.mu.Lock()
	rows := make([]auditRow, len(s.events))
	copy(rows, s.events)
	s.mu.Unlock()

	var out []store.AccessEventRow
	// Newest first.
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		row := rows[i]
		rec := row.rec

		if f.IdentityID != nil && (rec.IdentityID == nil || *rec.IdentityID != *f.IdentityID) {
			continue
		}
		if f.From != nil && row.at.Before(*f.From) {
			continue
		}
		if f.To != nil && row.at.After(*f.To) {
			continue
		}
		if f.Outcome != nil && rec.Outcome != *f.Outcome {
			continue
		}

		r := store.AccessEventRow{
			ID:           row.id,
			IdentityID:   rec.IdentityID,
			Timestamp:    row.at,
			Name:         store.UnknownIdentityName,
			EventType:    rec.EventType,
			Outcome:      rec.Outcome,
			Confidence:   rec.Confidence,
			DenialReason: rec.DenialReason,
		}
		if rec.IdentityID != nil && s.identities != nil {
			if ident, _ := s.identities.FindByID(ctx, *rec.IdentityID); ident != nil {
				r.Name = ident.Name
				r.Identification = ident.IdentificationNumber
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *AccessEventStore) Stats(_ context.Context, from, to *time.Time) (store.AccessStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st store.AccessStats
	for _, row := range s.events {
		if from != nil && row.at.Before(*from) {
			continue
		}
		if to != nil && row.at.After(*to) {
			continue
		}
		st.Total++
		if row.rec.Outcome == types.OutcomeAdmitted {
			st.Admitted++
		} else {
			st.Denied++
		}
	}
	if st.Total > 0 {
		rate := float64(st.Admitted) / float64(st.Total) * 100
		st.SuccessRate = math.Round(rate*100) / 100
	}
	return st, nil
}

// Records returns a copy of all appended records. Test-only helper.
func (s *AccessEventStore) Records() []store.AccessEventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AccessEventRecord, len(s.events))
	for i, row := range s.events {
		out[i] = row.rec
	}
	return out
}
