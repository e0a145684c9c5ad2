package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iho/legendtrack/internal/adapter/http/dto"
	"github.com/iho/legendtrack/internal/domain"
)

// EventService defines the ledger behavior needed by EventHandler.
type EventService interface {
	RecentEvents(ctx context.Context, rawTag string, limit int) ([]*domain.TrophyEvent, error)
}

// EventHandler handles trophy ledger HTTP requests.
type EventHandler struct {
	statsUC EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(statsUC EventService) *EventHandler {
	return &EventHandler{statsUC: statsUC}
}

// ListByPlayer returns a player's newest trophy changes.
func (h *EventHandler) ListByPlayer(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if tag == "" {
		writeError(w, http.StatusBadRequest, "missing player tag", "")
		return
	}

	limit := parseIntQuery(r, "limit", 0)

	events, err := h.statsUC.RecentEvents(r.Context(), tag, limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list trophy events", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TrophyEventsFromDomain(events))
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
