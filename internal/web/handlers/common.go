package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/memora-app/memora/internal/logging"
	"github.com/memora-app/memora/internal/training"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondTrainingError maps generator failures to status codes: too few
// identities is a client-fixable 422, unreachable collaborators are
// retryable 503s, the rest is a plain 500.
func respondTrainingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, training.ErrInsufficientIdentities):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, training.ErrCatalogUnavailable), errors.Is(err, training.ErrStimulusUnavailable):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logging.WithError(err).Errorf("exercise request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
