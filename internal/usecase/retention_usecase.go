package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/legendtrack/internal/domain"
)

// RetentionUseCase prunes ledger events and daily rows older than the
// retention horizon. Sweeps are best-effort: failures are logged, never
// escalated.
type RetentionUseCase struct {
	events  TrophyEventRepository
	stats   DailyStatsRepository
	horizon time.Duration
	logger  zerolog.Logger
}

// NewRetentionUseCase creates a new RetentionUseCase.
func NewRetentionUseCase(events TrophyEventRepository, stats DailyStatsRepository, horizon time.Duration, logger zerolog.Logger) *RetentionUseCase {
	if horizon <= 0 {
		horizon = RetentionHorizon
	}

	return &RetentionUseCase{
		events:  events,
		stats:   stats,
		horizon: horizon,
		logger:  logger,
	}
}

// Sweep deletes rows strictly older than now minus the horizon. Rows dated
// exactly at the cutoff survive.
func (uc *RetentionUseCase) Sweep(ctx context.Context, now time.Time) {
	cutoff := now.Add(-uc.horizon)
	cutoffDay := domain.GameDayOf(cutoff)

	if n, err := uc.events.DeleteBefore(ctx, cutoff); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to prune trophy events")
	} else if n > 0 {
		uc.logger.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("pruned trophy events")
	}

	if n, err := uc.stats.DeleteBefore(ctx, cutoffDay); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to prune daily stats")
	} else if n > 0 {
		uc.logger.Info().Int64("deleted", n).Str("cutoff_day", cutoffDay.String()).Msg("pruned daily stats")
	}
}
