package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/legendtrack/internal/adapter/http/dto"
	"github.com/iho/legendtrack/internal/usecase"
)

// PollService defines the behavior needed by PollHandler.
type PollService interface {
	RunCycle(ctx context.Context, now time.Time) ([]usecase.Outcome, error)
}

// PollHandler triggers poll cycles over HTTP.
type PollHandler struct {
	pollerUC PollService
	now      func() time.Time
}

// NewPollHandler creates a new PollHandler.
func NewPollHandler(pollerUC PollService) *PollHandler {
	return &PollHandler{
		pollerUC: pollerUC,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Trigger runs one poll cycle and returns the per-player report. A cycle
// already in flight yields 409.
func (h *PollHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	outcomes, err := h.pollerUC.RunCycle(r.Context(), h.now())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to run poll cycle", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PollResponse{Outcomes: outcomes})
}
