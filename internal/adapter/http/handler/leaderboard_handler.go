package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/legendtrack/internal/adapter/http/dto"
	"github.com/iho/legendtrack/internal/usecase"
)

// LeaderboardService defines the behavior needed by LeaderboardHandler.
type LeaderboardService interface {
	Build(ctx context.Context, now time.Time) ([]usecase.LeaderboardEntry, error)
}

// LeaderboardHandler handles leaderboard HTTP requests.
type LeaderboardHandler struct {
	leaderboardUC LeaderboardService
	now           func() time.Time
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardUC LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardUC: leaderboardUC,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the ranked board for the active game day.
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboardUC.Build(r.Context(), h.now())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build leaderboard", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LeaderboardResponse{
		Entries: entries,
		Total:   len(entries),
	})
}
