package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/legendtrack/internal/adapter/http/dto"
	"github.com/iho/legendtrack/internal/domain"
	"github.com/iho/legendtrack/internal/usecase"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"player not found", domain.ErrPlayerNotFound, http.StatusNotFound},
		{"upstream not found", domain.ErrUpstreamNotFound, http.StatusNotFound},
		{"upstream forbidden", domain.ErrUpstreamForbidden, http.StatusForbidden},
		{"not in legend league", domain.ErrNotInLegendLeague, http.StatusBadRequest},
		{"upstream unavailable", domain.ErrUpstreamUnavailable, http.StatusBadGateway},
		{"cycle in progress", usecase.ErrCycleInProgress, http.StatusConflict},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestMapDomainErrorUnwrapsStorageError(t *testing.T) {
	wrapped := domain.NewStorageError("get player", domain.ErrPlayerNotFound)
	if got := mapDomainError(wrapped); got != http.StatusNotFound {
		t.Fatalf("expected wrapped sentinel to map through, got %d", got)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}
