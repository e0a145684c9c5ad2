package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/legendtrack/internal/adapter/http/dto"
	"github.com/iho/legendtrack/internal/domain"
	"github.com/iho/legendtrack/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotInLegendLeague):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, usecase.ErrCycleInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
