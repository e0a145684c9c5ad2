package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/legendtrack/internal/adapter/http/dto"
	"github.com/iho/legendtrack/internal/usecase"
)

// TrackerService defines the tracking behavior needed by PlayerHandler.
type TrackerService interface {
	TrackPlayer(ctx context.Context, rawTag string, now time.Time) (*usecase.TrackResult, error)
	UntrackPlayer(ctx context.Context, rawTag string) error
}

// StatsService defines the stats behavior needed by PlayerHandler.
type StatsService interface {
	PlayerData(ctx context.Context, rawTag string, now time.Time) (*usecase.PlayerData, error)
}

// PlayerHandler handles player-related HTTP requests.
type PlayerHandler struct {
	trackerUC TrackerService
	statsUC   StatsService
	now       func() time.Time
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(trackerUC TrackerService, statsUC StatsService) *PlayerHandler {
	return &PlayerHandler{
		trackerUC: trackerUC,
		statsUC:   statsUC,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Track starts tracking a player.
func (h *PlayerHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req dto.TrackPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.PlayerTag == "" {
		writeError(w, http.StatusBadRequest, "player tag is required", "")
		return
	}

	result, err := h.trackerUC.TrackPlayer(r.Context(), req.PlayerTag, h.now())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to track player", err.Error())
		return
	}

	status := http.StatusOK
	if result.IsNew {
		status = http.StatusCreated
	}

	writeJSON(w, status, dto.TrackPlayerResponse{
		IsNewPlayer: result.IsNew,
		Player:      dto.PlayerFromDomain(result.Player),
	})
}

// Get returns the full per-player view: profile, today's battle log, season
// histories, and season info.
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if tag == "" {
		writeError(w, http.StatusBadRequest, "missing player tag", "")
		return
	}

	data, err := h.statsUC.PlayerData(r.Context(), tag, h.now())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get player", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PlayerDataFromUseCase(data))
}

// Untrack disables polling for a player without deleting its history.
func (h *PlayerHandler) Untrack(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if tag == "" {
		writeError(w, http.StatusBadRequest, "missing player tag", "")
		return
	}

	if err := h.trackerUC.UntrackPlayer(r.Context(), tag); err != nil {
		writeError(w, mapDomainError(err), "failed to untrack player", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "untracked"})
}
