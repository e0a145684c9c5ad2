package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/legendtrack/internal/domain"
)

// OutcomeStatus classifies what happened to one player during a cycle.
type OutcomeStatus string

const (
	OutcomeUpdated OutcomeStatus = "updated"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeError   OutcomeStatus = "error"
)

// Outcome is the per-player result of a poll cycle. The slice returned by
// RunCycle is the cycle's sole externally observable summary.
type Outcome struct {
	Tag    string        `json:"player_tag"`
	Status OutcomeStatus `json:"status"`
	Detail string        `json:"detail,omitempty"`
}

// ErrCycleInProgress is returned when a cycle is requested while one is
// still running. Cycles for the same entity set never overlap.
var ErrCycleInProgress = errors.New("poll cycle already in progress")

// PollerUseCase drives one refresh cycle across all tracked players:
// sequential batches, concurrent fetches within a batch, per-player failure
// isolation, pacing between batches, and a best-effort retention sweep.
type PollerUseCase struct {
	players   PlayerRepository
	events    TrophyEventRepository
	stats     DailyStatsRepository
	source    SnapshotSource
	retention *RetentionUseCase
	pacer     Pacer
	cache     Cache
	idGen     IDGenerator
	batchSize int
	logger    zerolog.Logger
	running   atomic.Bool
}

// PollerConfig holds dependencies for the poller.
type PollerConfig struct {
	Players   PlayerRepository
	Events    TrophyEventRepository
	Stats     DailyStatsRepository
	Source    SnapshotSource
	Retention *RetentionUseCase
	Pacer     Pacer
	Cache     Cache // optional, invalidated after each cycle
	IDGen     IDGenerator
	BatchSize int
	Logger    zerolog.Logger
}

// NewPollerUseCase creates a new PollerUseCase.
func NewPollerUseCase(cfg PollerConfig) *PollerUseCase {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &PollerUseCase{
		players:   cfg.Players,
		events:    cfg.Events,
		stats:     cfg.Stats,
		source:    cfg.Source,
		retention: cfg.Retention,
		pacer:     cfg.Pacer,
		cache:     cfg.Cache,
		idGen:     cfg.IDGen,
		batchSize: cfg.BatchSize,
		logger:    cfg.Logger,
	}
}

// RunCycle refreshes every tracking-enabled player and returns one outcome
// per player, in the order the players were loaded. A cycle always completes
// and always returns the full report, even if every player failed.
func (uc *PollerUseCase) RunCycle(ctx context.Context, now time.Time) ([]Outcome, error) {
	if !uc.running.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer uc.running.Store(false)

	players, err := uc.players.ListTracking(ctx)
	if err != nil {
		return nil, err
	}

	uc.logger.Info().Int("players", len(players)).Msg("starting poll cycle")

	outcomes := make([]Outcome, len(players))

	for start := 0; start < len(players); start += uc.batchSize {
		end := start + uc.batchSize
		if end > len(players) {
			end = len(players)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i] = uc.refreshPlayer(ctx, players[i], now)
			}(i)
		}
		wg.Wait()

		if end < len(players) && uc.pacer != nil {
			if err := uc.pacer.Pause(ctx); err != nil {
				// Context gone; report the remaining players instead of
				// dropping them from the cycle summary.
				for i := end; i < len(players); i++ {
					outcomes[i] = Outcome{Tag: players[i].Tag, Status: OutcomeError, Detail: err.Error()}
				}
				break
			}
		}
	}

	uc.invalidateLeaderboard(ctx)

	if uc.retention != nil {
		uc.retention.Sweep(ctx, now)
	}

	uc.logCycle(outcomes)

	return outcomes, nil
}

// refreshPlayer fetches one snapshot and applies it. Every failure mode maps
// to an outcome; nothing propagates out of the player.
func (uc *PollerUseCase) refreshPlayer(ctx context.Context, player *domain.Player, now time.Time) Outcome {
	snap, err := uc.source.Fetch(ctx, player.Tag)
	if err != nil {
		return Outcome{Tag: player.Tag, Status: OutcomeError, Detail: fetchDetail(err)}
	}

	if !snap.InLegendLeague {
		return Outcome{Tag: player.Tag, Status: OutcomeSkipped, Detail: "not in legend league"}
	}

	day := domain.GameDayOf(now)
	detail := "no change"

	event, changed := domain.ClassifyDelta(player.ID, player.CurrentTrophies, snap.Trophies, now)
	if changed {
		event.ID = uc.idGen.Generate()

		// Ledger first, aggregate second: a crash between the two can at
		// worst under-count, never double-count.
		if err := uc.events.Append(ctx, event); err != nil {
			return Outcome{Tag: player.Tag, Status: OutcomeError, Detail: err.Error()}
		}
		if err := uc.stats.MergeEvent(ctx, player.ID, day, event); err != nil {
			return Outcome{Tag: player.Tag, Status: OutcomeError, Detail: err.Error()}
		}

		detail = fmt.Sprintf("%+d", event.Delta)
	} else if err := uc.stats.EnsureDay(ctx, player.ID, day); err != nil {
		// A queryable row must exist for every active day, changes or not.
		return Outcome{Tag: player.Tag, Status: OutcomeError, Detail: err.Error()}
	}

	player.Name = snap.Name
	player.ClanName = snap.ClanName
	player.CurrentTrophies = snap.Trophies
	player.LastUpdated = now

	if err := uc.players.Upsert(ctx, player); err != nil {
		return Outcome{Tag: player.Tag, Status: OutcomeError, Detail: err.Error()}
	}

	return Outcome{Tag: player.Tag, Status: OutcomeUpdated, Detail: detail}
}

func fetchDetail(err error) string {
	switch {
	case errors.Is(err, domain.ErrUpstreamNotFound):
		return "player not found upstream"
	case errors.Is(err, domain.ErrUpstreamForbidden):
		return "upstream access denied"
	default:
		return err.Error()
	}
}

func (uc *PollerUseCase) invalidateLeaderboard(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, leaderboardCacheKey); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
	}
}

func (uc *PollerUseCase) logCycle(outcomes []Outcome) {
	var updated, skipped, failed int
	for _, o := range outcomes {
		switch o.Status {
		case OutcomeUpdated:
			updated++
		case OutcomeSkipped:
			skipped++
		case OutcomeError:
			failed++
		}
	}

	uc.logger.Info().
		Int("updated", updated).
		Int("skipped", skipped).
		Int("errors", failed).
		Msg("poll cycle finished")
}

// FixedDelayPacer pauses a constant duration between batches.
type FixedDelayPacer struct {
	Delay time.Duration
}

// Pause blocks for the configured delay or until ctx is done.
func (p FixedDelayPacer) Pause(ctx context.Context) error {
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
