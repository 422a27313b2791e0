package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mereles/facegate/internal/facegate/store"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeStoreError maps the store error taxonomy onto HTTP statuses;
// anything unclassified is a 500 and gets logged by the caller.
func writeStoreError(w http.ResponseWriter, err error) bool {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "validation_error", ve.Error())
		return true
	case errors.Is(err, store.ErrDuplicateIdentification):
		writeError(w, http.StatusConflict, "duplicate_identification", err.Error())
		return true
	}
	return false
}
