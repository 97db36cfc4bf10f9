package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps domain failures onto the API contract. Provider
// trouble surfaces as a generic 502; the detail stays in the logs.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":      "survey contains potential PHI",
			"violations": verr.Violations,
		})
	case errors.Is(err, core.ErrQuotaExceeded):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrSurveyNotEditable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrProviderUnavailable), errors.Is(err, core.ErrMalformedResponse):
		log.FromCtx(r.Context()).Error().Err(err).Msg("generation failed")
		writeError(w, http.StatusBadGateway, "generation failed")
	default:
		log.FromCtx(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON rejects unparseable bodies; absent optional fields are left to
// each handler's zero-value defaults.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
