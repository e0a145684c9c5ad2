package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/iho/legendtrack/internal/domain"
	"github.com/iho/legendtrack/internal/usecase"
	"github.com/iho/legendtrack/internal/usecase/mocks"
)

func TestStatsTodayPrefersAggregateRow(t *testing.T) {
	ctx := context.Background()
	eventRepo := mocks.NewMockTrophyEventRepository()
	statsRepo := mocks.NewMockDailyStatsRepository()

	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	day := domain.GameDayOf(now)

	e, _ := domain.ClassifyDelta("p1", 5000, 5030, now)
	if err := statsRepo.MergeEvent(ctx, "p1", day, e); err != nil {
		t.Fatal(err)
	}

	uc := usecase.NewStatsUseCase(mocks.NewMockPlayerRepository(), eventRepo, statsRepo)

	row, err := uc.Today(ctx, "p1", now)
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if row.OffenseCount != 1 || row.NetChange != 30 {
		t.Errorf("row = %+v", row)
	}
}

func TestStatsTodayFallsBackToLedger(t *testing.T) {
	ctx := context.Background()
	eventRepo := mocks.NewMockTrophyEventRepository()
	statsRepo := mocks.NewMockDailyStatsRepository()

	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

	// Two events inside the active window, one from before the reset that
	// must stay out of today's fallback computation.
	inWindow1, _ := domain.ClassifyDelta("p1", 5000, 5030, now.Add(-2*time.Hour))
	inWindow2, _ := domain.ClassifyDelta("p1", 5030, 5010, now.Add(-time.Hour))
	before, _ := domain.ClassifyDelta("p1", 4980, 5000, now.Add(-10*time.Hour)) // 02:00, previous game day

	for _, e := range []*domain.TrophyEvent{before, inWindow1, inWindow2} {
		if err := eventRepo.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	uc := usecase.NewStatsUseCase(mocks.NewMockPlayerRepository(), eventRepo, statsRepo)

	row, err := uc.Today(ctx, "p1", now)
	if err != nil {
		t.Fatalf("Today: %v", err)
	}

	if row.OffenseCount != 1 || row.OffenseTotal != 30 {
		t.Errorf("offense = %d/%d, want 1/30", row.OffenseCount, row.OffenseTotal)
	}
	if row.DefenseCount != 1 || row.DefenseTotal != 20 {
		t.Errorf("defense = %d/%d, want 1/20", row.DefenseCount, row.DefenseTotal)
	}
	if row.NetChange != 10 {
		t.Errorf("net = %d, want 10", row.NetChange)
	}

	// The fallback is never persisted.
	stored, err := statsRepo.GetDay(ctx, "p1", domain.GameDayOf(now))
	if err != nil {
		t.Fatal(err)
	}
	if stored != nil {
		t.Errorf("fallback row must not be persisted, found %+v", stored)
	}
}

func TestStatsYesterdayMissingIsNil(t *testing.T) {
	uc := usecase.NewStatsUseCase(mocks.NewMockPlayerRepository(), mocks.NewMockTrophyEventRepository(), mocks.NewMockDailyStatsRepository())

	row, err := uc.Yesterday(context.Background(), "p1", time.Now().UTC())
	if err != nil {
		t.Fatalf("Yesterday: %v", err)
	}
	if row != nil {
		t.Errorf("expected nil for missing yesterday, got %+v", row)
	}
}

func TestStatsPlayerData(t *testing.T) {
	ctx := context.Background()
	playerRepo := mocks.NewMockPlayerRepository()
	eventRepo := mocks.NewMockTrophyEventRepository()
	statsRepo := mocks.NewMockDailyStatsRepository()

	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

	player := &domain.Player{ID: "p1", Tag: "AAA", Name: "Alice", CurrentTrophies: 5010, IsTracking: true}
	if err := playerRepo.Upsert(ctx, player); err != nil {
		t.Fatal(err)
	}

	deltas := []struct {
		prev, curr int
		at         time.Time
	}{
		{5000, 5032, now.Add(-3 * time.Hour)},
		{5032, 5040, now.Add(-2 * time.Hour)},
		{5040, 5010, now.Add(-time.Hour)},
	}
	for _, d := range deltas {
		e, _ := domain.ClassifyDelta("p1", d.prev, d.curr, d.at)
		if err := eventRepo.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	// One aggregate row in the current season, one from before it.
	seasonStartDay := domain.GameDayOf(domain.CurrentSeasonStart(now))
	oldEvent, _ := domain.ClassifyDelta("p1", 4900, 4950, now.AddDate(0, 0, -30))
	if err := statsRepo.MergeEvent(ctx, "p1", seasonStartDay.AddDays(-3), oldEvent); err != nil {
		t.Fatal(err)
	}
	yEvent, _ := domain.ClassifyDelta("p1", 4950, 5000, now.AddDate(0, 0, -1))
	if err := statsRepo.MergeEvent(ctx, "p1", domain.GameDayOf(now).AddDays(-1), yEvent); err != nil {
		t.Fatal(err)
	}

	uc := usecase.NewStatsUseCase(playerRepo, eventRepo, statsRepo)

	data, err := uc.PlayerData(ctx, "#aaa", now)
	if err != nil {
		t.Fatalf("PlayerData: %v", err)
	}

	if data.Player.Name != "Alice" {
		t.Errorf("player = %+v", data.Player)
	}
	if len(data.TodayAttacks) != 2 || len(data.TodayDefenses) != 1 {
		t.Errorf("battle log = %d attacks / %d defenses", len(data.TodayAttacks), len(data.TodayDefenses))
	}

	s := data.Summary
	if s.OffenseTotal != 40 || s.OffenseAvg != 20.0 {
		t.Errorf("offense summary = %+v", s)
	}
	if s.DefenseTotal != 30 || s.DefenseAvg != 30.0 {
		t.Errorf("defense summary = %+v", s)
	}
	if s.NetChange != 10 || s.BestAttack != 32 || s.WorstDefense != -30 {
		t.Errorf("summary = %+v", s)
	}
	if s.SeasonHighest != 5040 {
		t.Errorf("season highest = %d, want 5040", s.SeasonHighest)
	}

	if len(data.CurrentSeason) != 1 || len(data.PreviousSeason) != 1 {
		t.Errorf("season split = %d current / %d previous", len(data.CurrentSeason), len(data.PreviousSeason))
	}
	if data.Yesterday == nil || data.Yesterday.OffenseTotal != 50 {
		t.Errorf("yesterday = %+v", data.Yesterday)
	}
	if data.SeasonInfo.Name != "July 2025" {
		t.Errorf("season info = %+v", data.SeasonInfo)
	}
}

func TestStatsActiveWindowBeforeReset(t *testing.T) {
	ctx := context.Background()
	eventRepo := mocks.NewMockTrophyEventRepository()
	statsRepo := mocks.NewMockDailyStatsRepository()

	// 03:00 UTC: before the reset, so the active window opened at 05:00
	// yesterday and events from 23:00 yesterday are still "today".
	now := time.Date(2025, 7, 10, 3, 0, 0, 0, time.UTC)
	lateEvent, _ := domain.ClassifyDelta("p1", 5000, 5025, time.Date(2025, 7, 9, 23, 0, 0, 0, time.UTC))
	if err := eventRepo.Append(ctx, lateEvent); err != nil {
		t.Fatal(err)
	}

	uc := usecase.NewStatsUseCase(mocks.NewMockPlayerRepository(), eventRepo, statsRepo)

	row, err := uc.Today(ctx, "p1", now)
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if row.OffenseTotal != 25 {
		t.Errorf("pre-reset window missed yesterday evening's event: %+v", row)
	}
	if row.Day != "2025-07-09" {
		t.Errorf("active game day = %s, want 2025-07-09", row.Day)
	}
}
