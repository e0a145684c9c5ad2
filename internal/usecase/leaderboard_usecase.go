package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/legendtrack/internal/domain"
)

const leaderboardCacheKey = "leaderboard"

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	Tag          string `json:"tag"`
	Name         string `json:"name"`
	Clan         string `json:"clan"`
	Trophies     int    `json:"trophies"`
	OffenseCount int    `json:"offense_count"`
	OffenseTotal int    `json:"offense_total"`
	DefenseCount int    `json:"defense_count"`
	DefenseTotal int    `json:"defense_total"`
	NetChange    int    `json:"net_change"`
}

// LeaderboardUseCase ranks tracked players by current trophies joined with
// the active game day's aggregates.
type LeaderboardUseCase struct {
	players PlayerRepository
	stats   DailyStatsRepository
	cache   Cache
	logger  zerolog.Logger
}

// NewLeaderboardUseCase creates a new LeaderboardUseCase. cache may be nil.
func NewLeaderboardUseCase(players PlayerRepository, stats DailyStatsRepository, cache Cache, logger zerolog.Logger) *LeaderboardUseCase {
	return &LeaderboardUseCase{
		players: players,
		stats:   stats,
		cache:   cache,
		logger:  logger,
	}
}

// Build assembles the leaderboard for the active game day. Ranks are 1-based
// and contiguous; ties keep the repository's stable first-tracked order.
// Players without a row for today get zero-valued stats.
func (uc *LeaderboardUseCase) Build(ctx context.Context, now time.Time) ([]LeaderboardEntry, error) {
	if cached, ok := uc.fromCache(ctx); ok {
		return cached, nil
	}

	players, err := uc.players.ListTracking(ctx)
	if err != nil {
		return nil, err
	}

	day := domain.GameDayOf(now)
	rows, err := uc.stats.ListForDay(ctx, day)
	if err != nil {
		return nil, err
	}

	byPlayer := make(map[string]*domain.DailyStats, len(rows))
	for _, row := range rows {
		byPlayer[row.PlayerID] = row
	}

	board := make([]LeaderboardEntry, 0, len(players))
	for i, p := range players {
		stats := byPlayer[p.ID]
		if stats == nil {
			stats = domain.NewDailyStats(p.ID, day)
		}

		board = append(board, LeaderboardEntry{
			Rank:         i + 1,
			Tag:          p.Tag,
			Name:         p.Name,
			Clan:         p.ClanName,
			Trophies:     p.CurrentTrophies,
			OffenseCount: stats.OffenseCount,
			OffenseTotal: stats.OffenseTotal,
			DefenseCount: stats.DefenseCount,
			DefenseTotal: stats.DefenseTotal,
			NetChange:    stats.NetChange,
		})
	}

	uc.toCache(ctx, board)

	return board, nil
}

func (uc *LeaderboardUseCase) fromCache(ctx context.Context) ([]LeaderboardEntry, bool) {
	if uc.cache == nil {
		return nil, false
	}

	raw, err := uc.cache.Get(ctx, leaderboardCacheKey)
	if err != nil {
		return nil, false
	}

	var board []LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &board); err != nil {
		uc.logger.Warn().Err(err).Msg("discarding malformed cached leaderboard")
		return nil, false
	}

	return board, true
}

func (uc *LeaderboardUseCase) toCache(ctx context.Context, board []LeaderboardEntry) {
	if uc.cache == nil {
		return
	}

	raw, err := json.Marshal(board)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, leaderboardCacheKey, string(raw), LeaderboardCacheTTL); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to cache leaderboard")
	}
}
