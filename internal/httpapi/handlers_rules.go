package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/mereles/facegate/internal/facegate/store"
)

type createRuleRequest struct {
	Sector    *string `json:"sector,omitempty"`
	TimeStart *string `json:"time_start,omitempty"`
	TimeEnd   *string `json:"time_end,omitempty"`
	Weekdays  []int   `json:"weekdays,omitempty"`
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	identityID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req createRuleRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	// Rules for a nonexistent identity would be unreachable; reject
	// early instead of relying on the FK error.
	ident, err := s.identities.FindByID(r.Context(), identityID)
	if err != nil {
		s.logger.Printf("create rule lookup error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if ident == nil {
		writeError(w, http.StatusNotFound, "not_found", "identity not found")
		return
	}

	id, err := s.permissions.CreateRule(r.Context(), store.NewRule{
		IdentityID: identityID,
		Sector:     req.Sector,
		TimeStart:  req.TimeStart,
		TimeEnd:    req.TimeEnd,
		Weekdays:   req.Weekdays,
	})
	if err != nil {
		if !writeStoreError(w, err) {
			s.logger.Printf("create rule error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	identityID, ok := pathID(w, r)
	if !ok {
		return
	}

	rules, err := s.permissions.ListRules(r.Context(), identityID)
	if err != nil {
		s.logger.Printf("list rules error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if rules == nil {
		rules = []store.Rule{}
	}
	writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	removed, err := s.permissions.DeleteRule(r.Context(), id)
	if err != nil {
		s.logger.Printf("delete rule error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "not_found", "rule not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
