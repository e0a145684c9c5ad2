package dto

import (
	"time"

	"github.com/iho/legendtrack/internal/domain"
	"github.com/iho/legendtrack/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PlayerResponse represents a tracked player in API responses.
type PlayerResponse struct {
	ID              string    `json:"id"`
	Tag             string    `json:"player_tag"`
	Name            string    `json:"name"`
	ClanName        string    `json:"clan_name"`
	CurrentTrophies int       `json:"current_trophies"`
	IsTracking      bool      `json:"is_tracking"`
	LastUpdated     time.Time `json:"last_updated"`
	CreatedAt       time.Time `json:"created_at"`
}

// PlayerFromDomain converts a domain player to a response.
func PlayerFromDomain(p *domain.Player) *PlayerResponse {
	return &PlayerResponse{
		ID:              p.ID,
		Tag:             p.Tag,
		Name:            p.Name,
		ClanName:        p.ClanName,
		CurrentTrophies: p.CurrentTrophies,
		IsTracking:      p.IsTracking,
		LastUpdated:     p.LastUpdated,
		CreatedAt:       p.CreatedAt,
	}
}

// TrackPlayerResponse reports the result of a track request.
type TrackPlayerResponse struct {
	IsNewPlayer bool            `json:"is_new_player"`
	Player      *PlayerResponse `json:"player"`
}

// TrophyEventResponse represents one ledger entry in API responses.
type TrophyEventResponse struct {
	ID               string    `json:"id"`
	PreviousTrophies int       `json:"previous_trophies"`
	NewTrophies      int       `json:"new_trophies"`
	Delta            int       `json:"delta"`
	IsAttack         bool      `json:"is_attack"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// TrophyEventsFromDomain converts domain events to responses.
func TrophyEventsFromDomain(events []*domain.TrophyEvent) []*TrophyEventResponse {
	result := make([]*TrophyEventResponse, len(events))
	for i, e := range events {
		result[i] = &TrophyEventResponse{
			ID:               e.ID,
			PreviousTrophies: e.PreviousTrophies,
			NewTrophies:      e.NewTrophies,
			Delta:            e.Delta,
			IsAttack:         e.IsAttack,
			RecordedAt:       e.RecordedAt,
		}
	}
	return result
}

// DailyStatsResponse represents one game day's aggregate in API responses.
type DailyStatsResponse struct {
	Day          string `json:"day"`
	OffenseCount int    `json:"offense_count"`
	OffenseTotal int    `json:"offense_total"`
	DefenseCount int    `json:"defense_count"`
	DefenseTotal int    `json:"defense_total"`
	NetChange    int    `json:"net_change"`
}

// DailyStatsFromDomain converts a domain aggregate to a response.
func DailyStatsFromDomain(s *domain.DailyStats) *DailyStatsResponse {
	if s == nil {
		return nil
	}
	return &DailyStatsResponse{
		Day:          s.Day.String(),
		OffenseCount: s.OffenseCount,
		OffenseTotal: s.OffenseTotal,
		DefenseCount: s.DefenseCount,
		DefenseTotal: s.DefenseTotal,
		NetChange:    s.NetChange,
	}
}

// DailyStatsListFromDomain converts domain aggregates to responses.
func DailyStatsListFromDomain(rows []*domain.DailyStats) []*DailyStatsResponse {
	result := make([]*DailyStatsResponse, len(rows))
	for i, s := range rows {
		result[i] = DailyStatsFromDomain(s)
	}
	return result
}

// BattleEntryResponse represents one attack or defense in today's log.
type BattleEntryResponse struct {
	Count  int       `json:"count"`
	Change int       `json:"change"`
	At     time.Time `json:"at"`
}

// BattleEntriesFromUseCase converts battle log entries to responses.
func BattleEntriesFromUseCase(entries []usecase.BattleEntry) []BattleEntryResponse {
	result := make([]BattleEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = BattleEntryResponse{
			Count:  e.Count,
			Change: e.Change,
			At:     e.At,
		}
	}
	return result
}

// TodaySummaryResponse represents the active game day's summary.
type TodaySummaryResponse struct {
	OffenseTotal  int     `json:"offense_total"`
	OffenseAvg    float64 `json:"offense_avg"`
	DefenseTotal  int     `json:"defense_total"`
	DefenseAvg    float64 `json:"defense_avg"`
	NetChange     int     `json:"net_change"`
	BestAttack    int     `json:"best_attack"`
	WorstDefense  int     `json:"worst_defense"`
	SeasonHighest int     `json:"season_highest"`
}

// SeasonInfoResponse describes the current season.
type SeasonInfoResponse struct {
	Name            string    `json:"name"`
	Day             int       `json:"day"`
	SeasonStart     time.Time `json:"season_start"`
	PrevSeasonEnd   time.Time `json:"prev_season_end"`
	NextSeasonReset time.Time `json:"next_season_reset"`
}

// PlayerDataResponse is the full per-player view.
type PlayerDataResponse struct {
	Player         *PlayerResponse        `json:"player"`
	TodayAttacks   []BattleEntryResponse  `json:"today_attacks"`
	TodayDefenses  []BattleEntryResponse  `json:"today_defenses"`
	Summary        TodaySummaryResponse   `json:"summary"`
	Today          *DailyStatsResponse    `json:"today"`
	Yesterday      *DailyStatsResponse    `json:"yesterday"`
	CurrentSeason  []*DailyStatsResponse  `json:"current_season"`
	PreviousSeason []*DailyStatsResponse  `json:"previous_season"`
	Recent         []*TrophyEventResponse `json:"recent_events"`
	SeasonInfo     SeasonInfoResponse     `json:"season_info"`
}

// PlayerDataFromUseCase converts the composite player view to a response.
func PlayerDataFromUseCase(d *usecase.PlayerData) *PlayerDataResponse {
	return &PlayerDataResponse{
		Player:        PlayerFromDomain(d.Player),
		TodayAttacks:  BattleEntriesFromUseCase(d.TodayAttacks),
		TodayDefenses: BattleEntriesFromUseCase(d.TodayDefenses),
		Summary: TodaySummaryResponse{
			OffenseTotal:  d.Summary.OffenseTotal,
			OffenseAvg:    d.Summary.OffenseAvg,
			DefenseTotal:  d.Summary.DefenseTotal,
			DefenseAvg:    d.Summary.DefenseAvg,
			NetChange:     d.Summary.NetChange,
			BestAttack:    d.Summary.BestAttack,
			WorstDefense:  d.Summary.WorstDefense,
			SeasonHighest: d.Summary.SeasonHighest,
		},
		Today:          DailyStatsFromDomain(d.Today),
		Yesterday:      DailyStatsFromDomain(d.Yesterday),
		CurrentSeason:  DailyStatsListFromDomain(d.CurrentSeason),
		PreviousSeason: DailyStatsListFromDomain(d.PreviousSeason),
		Recent:         TrophyEventsFromDomain(d.Recent),
		SeasonInfo: SeasonInfoResponse{
			Name:            d.SeasonInfo.Name,
			Day:             d.SeasonInfo.Day,
			SeasonStart:     d.SeasonStart,
			PrevSeasonEnd:   d.PrevSeasonEnd,
			NextSeasonReset: d.NextSeasonReset,
		},
	}
}

// PollResponse reports the outcome of a manually triggered poll cycle.
type PollResponse struct {
	Outcomes []usecase.Outcome `json:"outcomes"`
}

// LeaderboardResponse wraps the ranked board.
type LeaderboardResponse struct {
	Entries []usecase.LeaderboardEntry `json:"entries"`
	Total   int                        `json:"total"`
}
