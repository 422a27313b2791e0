package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mereles/facegate/internal/facegate/store"
	"github.com/mereles/facegate/internal/facegate/types"
)

func (s *Server) handleQueryEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.EventFilter

	if v := q.Get("identity_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_filter", "identity_id must be an integer")
			return
		}
		f.IdentityID = &id
	}
	if v := q.Get("outcome"); v != "" {
		outcome := types.Outcome(v)
		if !outcome.Valid() {
			writeError(w, http.StatusBadRequest, "bad_filter", "outcome must be admitted or denied")
			return
		}
		f.Outcome = &outcome
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "bad_filter", "limit must be a positive integer")
			return
		}
		f.Limit = limit
	}

	var ok bool
	if f.From, ok = parseDateParam(w, q.Get("from"), false); !ok {
		return
	}
	if f.To, ok = parseDateParam(w, q.Get("to"), true); !ok {
		return
	}

	rows, err := s.events.Query(r.Context(), f)
	if err != nil {
		s.logger.Printf("query events error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if rows == nil {
		rows = []store.AccessEventRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, ok := parseDateParam(w, q.Get("from"), false)
	if !ok {
		return
	}
	to, ok := parseDateParam(w, q.Get("to"), true)
	if !ok {
		return
	}

	stats, err := s.events.Stats(r.Context(), from, to)
	if err != nil {
		s.logger.Printf("stats error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type accessCheckRequest struct {
	IdentityID int64  `json:"identity_id"`
	Sector     string `json:"sector,omitempty"`
}

type accessCheckResponse struct {
	Admitted bool   `json:"admitted"`
	Reason   string `json:"reason"`
}

// handleAccessCheck runs the evaluator directly, without touching the audit
// log or the cooldown — an administrator probing "would this person get in
// right now?".
func (s *Server) handleAccessCheck(w http.ResponseWriter, r *http.Request) {
	var req accessCheckRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	if req.IdentityID <= 0 {
		writeError(w, http.StatusBadRequest, "bad_id", "identity_id must be a positive integer")
		return
	}

	admitted, reason, err := s.evaluator.Evaluate(r.Context(), req.IdentityID, req.Sector)
	if err != nil {
		s.logger.Printf("access check error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeJSON(w, http.StatusOK, accessCheckResponse{Admitted: admitted, Reason: reason})
}

// parseDateParam accepts "2006-01-02" (date, local-agnostic UTC) or full
// RFC 3339. Dates used as an upper bound extend to the end of the day so
// "to=2026-03-01" includes that whole day.
func parseDateParam(w http.ResponseWriter, v string, endOfDay bool) (*time.Time, bool) {
	if v == "" {
		return nil, true
	}

	if t, err := time.Parse("2006-01-02", v); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		t = t.UTC()
		return &t, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		t = t.UTC()
		return &t, true
	}

	writeError(w, http.StatusBadRequest, "bad_filter", "dates must be YYYY-MM-DD or RFC 3339")
	return nil, false
}
