package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mereles/facegate/internal/facegate/store"
	"github.com/mereles/facegate/internal/facegate/types"
)

type createIdentityRequest struct {
	Name                 string `json:"name"`
	IdentificationNumber string `json:"identification_number"`
	IdentificationKind   string `json:"identification_kind,omitempty"`
	AccessCategory       string `json:"access_category"`
}

type updateIdentityRequest struct {
	Name                 *string `json:"name,omitempty"`
	IdentificationNumber *string `json:"identification_number,omitempty"`
	AccessCategory       *string `json:"access_category,omitempty"`
	Active               *bool   `json:"active,omitempty"`
}

func (s *Server) handleCreateIdentity(w http.ResponseWriter, r *http.Request) {
	var req createIdentityRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	id, err := s.identities.Create(r.Context(), store.NewIdentity{
		Name:                 req.Name,
		IdentificationNumber: req.IdentificationNumber,
		IdentificationKind:   types.IdentificationKind(req.IdentificationKind),
		Category:             types.AccessCategory(req.AccessCategory),
	})
	if err != nil {
		if !writeStoreError(w, err) {
			s.logger.Printf("create identity error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleListIdentities(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "1" || r.URL.Query().Get("active") == "true"

	idents, err := s.identities.List(r.Context(), activeOnly)
	if err != nil {
		s.logger.Printf("list identities error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if idents == nil {
		idents = []types.Identity{}
	}
	writeJSON(w, http.StatusOK, idents)
}

func (s *Server) handleGetIdentity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ident, err := s.identities.FindByID(r.Context(), id)
	if err != nil {
		s.logger.Printf("get identity error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if ident == nil {
		writeError(w, http.StatusNotFound, "not_found", "identity not found")
		return
	}
	writeJSON(w, http.StatusOK, ident)
}

func (s *Server) handleUpdateIdentity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateIdentityRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	upd := store.IdentityUpdate{
		Name:                 req.Name,
		IdentificationNumber: req.IdentificationNumber,
		Active:               req.Active,
	}
	if req.AccessCategory != nil {
		cat := types.AccessCategory(*req.AccessCategory)
		upd.Category = &cat
	}

	changed, err := s.identities.Update(r.Context(), id, upd)
	if err != nil {
		if !writeStoreError(w, err) {
			s.logger.Printf("update identity error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"updated": changed})
}

func (s *Server) handleDeleteIdentity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	removed, err := s.identities.Delete(r.Context(), id)
	if err != nil {
		s.logger.Printf("delete identity error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "not_found", "identity not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} path segment; on failure it writes a 400 and
// returns ok=false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_id", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
