package usecase

import (
	"context"
	"math"
	"time"

	"github.com/iho/legendtrack/internal/domain"
)

// StatsUseCase assembles season-scoped views over the ledger and the daily
// aggregate store.
type StatsUseCase struct {
	players        PlayerRepository
	events         TrophyEventRepository
	stats          DailyStatsRepository
	seasonOverride *time.Time
}

// NewStatsUseCase creates a new StatsUseCase.
func NewStatsUseCase(players PlayerRepository, events TrophyEventRepository, stats DailyStatsRepository) *StatsUseCase {
	return &StatsUseCase{
		players: players,
		events:  events,
		stats:   stats,
	}
}

// SetSeasonResetOverride pins the next season reset to a known upstream
// timestamp instead of the computed last-Monday schedule. Passing nil clears
// the pin.
func (uc *StatsUseCase) SetSeasonResetOverride(t *time.Time) {
	uc.seasonOverride = t
}

// Today returns the aggregate for the active game day. When the poller has
// not materialized a row yet, the active window of the ledger is folded into
// a synthetic row instead; the fallback is never persisted.
func (uc *StatsUseCase) Today(ctx context.Context, playerID string, now time.Time) (*domain.DailyStats, error) {
	day := domain.GameDayOf(now)

	row, err := uc.stats.GetDay(ctx, playerID, day)
	if err != nil {
		return nil, err
	}
	if row != nil {
		return row, nil
	}

	events, err := uc.events.ListRange(ctx, playerID, domain.GameDayStart(now), now)
	if err != nil {
		return nil, err
	}

	row = domain.NewDailyStats(playerID, day)
	for _, e := range events {
		row.Apply(e)
	}

	return row, nil
}

// Yesterday returns the aggregate for the game day before the active one, or
// nil when no row exists. It is never synthesized from partial data.
func (uc *StatsUseCase) Yesterday(ctx context.Context, playerID string, now time.Time) (*domain.DailyStats, error) {
	return uc.stats.GetDay(ctx, playerID, domain.GameDayOf(now).AddDays(-1))
}

// RecentEvents returns the newest ledger entries for a tag, capped by limit.
func (uc *StatsUseCase) RecentEvents(ctx context.Context, rawTag string, limit int) ([]*domain.TrophyEvent, error) {
	player, err := uc.players.GetByTag(ctx, domain.NormalizeTag(rawTag))
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > RecentEventsLimit {
		limit = RecentEventsLimit
	}

	return uc.events.ListRecent(ctx, player.ID, limit)
}

// SeasonStats returns the current season's daily rows, newest first.
func (uc *StatsUseCase) SeasonStats(ctx context.Context, playerID string, now time.Time) ([]*domain.DailyStats, error) {
	seasonStart := domain.GameDayOf(domain.CurrentSeasonStart(now))
	return uc.stats.GetSince(ctx, playerID, seasonStart)
}

// BattleEntry is one attack or defense in today's log.
type BattleEntry struct {
	EventID string
	At      time.Time
	Change  int
	Count   int
}

// TodaySummary aggregates the active game day's events for display.
type TodaySummary struct {
	OffenseTotal  int
	OffenseAvg    float64
	DefenseTotal  int
	DefenseAvg    float64
	NetChange     int
	BestAttack    int
	WorstDefense  int
	SeasonHighest int
}

// PlayerData is the full per-player view: profile, today's battle log,
// current and previous season histories, and season info.
type PlayerData struct {
	Player          *domain.Player
	Recent          []*domain.TrophyEvent
	TodayAttacks    []BattleEntry
	TodayDefenses   []BattleEntry
	Summary         TodaySummary
	Today           *domain.DailyStats
	Yesterday       *domain.DailyStats
	CurrentSeason   []*domain.DailyStats
	PreviousSeason  []*domain.DailyStats
	SeasonInfo      domain.SeasonInfo
	SeasonStart     time.Time
	PrevSeasonEnd   time.Time
	NextSeasonReset time.Time
}

// PlayerData assembles the composite player view.
func (uc *StatsUseCase) PlayerData(ctx context.Context, rawTag string, now time.Time) (*PlayerData, error) {
	player, err := uc.players.GetByTag(ctx, domain.NormalizeTag(rawTag))
	if err != nil {
		return nil, err
	}

	recent, err := uc.events.ListRecent(ctx, player.ID, RecentEventsLimit)
	if err != nil {
		return nil, err
	}

	todayEvents, err := uc.events.ListRange(ctx, player.ID, domain.GameDayStart(now), now)
	if err != nil {
		return nil, err
	}

	seasonStart := domain.CurrentSeasonStart(now)
	seasonStartDay := domain.GameDayOf(seasonStart)

	current, err := uc.stats.GetSince(ctx, player.ID, seasonStartDay)
	if err != nil {
		return nil, err
	}

	previous, err := uc.stats.GetBefore(ctx, player.ID, seasonStartDay)
	if err != nil {
		return nil, err
	}

	today, err := uc.Today(ctx, player.ID, now)
	if err != nil {
		return nil, err
	}

	yesterday, err := uc.Yesterday(ctx, player.ID, now)
	if err != nil {
		return nil, err
	}

	attacks, defenses := splitBattleLog(todayEvents)

	return &PlayerData{
		Player:          player,
		Recent:          recent,
		TodayAttacks:    attacks,
		TodayDefenses:   defenses,
		Summary:         summarizeToday(player, recent, todayEvents),
		Today:           today,
		Yesterday:       yesterday,
		CurrentSeason:   current,
		PreviousSeason:  previous,
		SeasonInfo:      domain.CurrentSeasonInfo(now),
		SeasonStart:     seasonStart,
		PrevSeasonEnd:   domain.PreviousSeasonEnd(now),
		NextSeasonReset: domain.NextSeasonReset(now, uc.seasonOverride),
	}, nil
}

func splitBattleLog(events []*domain.TrophyEvent) (attacks, defenses []BattleEntry) {
	for _, e := range events {
		entry := BattleEntry{EventID: e.ID, At: e.RecordedAt, Change: e.Delta}
		if e.IsAttack {
			entry.Count = len(attacks) + 1
			attacks = append(attacks, entry)
		} else {
			entry.Count = len(defenses) + 1
			defenses = append(defenses, entry)
		}
	}

	return attacks, defenses
}

func summarizeToday(player *domain.Player, recent, todayEvents []*domain.TrophyEvent) TodaySummary {
	s := TodaySummary{SeasonHighest: player.CurrentTrophies}

	attacks, defenses := 0, 0
	for _, e := range todayEvents {
		if e.IsAttack {
			attacks++
			s.OffenseTotal += e.Delta
			if e.Delta > s.BestAttack {
				s.BestAttack = e.Delta
			}
		} else {
			defenses++
			s.DefenseTotal += -e.Delta
			if e.Delta < s.WorstDefense {
				s.WorstDefense = e.Delta
			}
		}
		s.NetChange += e.Delta
	}

	if attacks > 0 {
		s.OffenseAvg = round1(float64(s.OffenseTotal) / float64(attacks))
	}
	if defenses > 0 {
		s.DefenseAvg = round1(float64(s.DefenseTotal) / float64(defenses))
	}

	for _, e := range recent {
		if e.NewTrophies > s.SeasonHighest {
			s.SeasonHighest = e.NewTrophies
		}
	}

	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
