package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"foodshare-backend/internal/apperr"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondServiceError maps a service error to an HTTP status. Unknown
// errors become a generic 500 so internals never leak.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsValidation(err):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperr.ErrNotFound):
		respondError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, apperr.ErrForbidden):
		respondError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, apperr.ErrInvalidState):
		respondError(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("Request failed")
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}
