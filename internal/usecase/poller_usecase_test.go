package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/legendtrack/internal/domain"
	"github.com/iho/legendtrack/internal/usecase"
	"github.com/iho/legendtrack/internal/usecase/mocks"
)

func seedPlayers(t *testing.T, repo *mocks.MockPlayerRepository, n int) []*domain.Player {
	t.Helper()

	players := make([]*domain.Player, 0, n)
	for i := 0; i < n; i++ {
		p := &domain.Player{
			ID:  fmt.Sprintf("player-%02d", i),
			Tag: fmt.Sprintf("TAG%02d", i),
			// Descending trophies keep ListTracking order equal to
			// insertion order, which the outcome assertions rely on.
			CurrentTrophies: 6000 - i,
			IsTracking:      true,
		}
		if err := repo.Upsert(context.Background(), p); err != nil {
			t.Fatalf("seed player: %v", err)
		}
		players = append(players, p)
	}

	return players
}

func newPoller(players *mocks.MockPlayerRepository, events *mocks.MockTrophyEventRepository, stats *mocks.MockDailyStatsRepository, source *mocks.MockSnapshotSource, pacer *mocks.MockPacer) *usecase.PollerUseCase {
	return usecase.NewPollerUseCase(usecase.PollerConfig{
		Players:   players,
		Events:    events,
		Stats:     stats,
		Source:    source,
		Pacer:     pacer,
		IDGen:     mocks.NewMockIDGenerator(),
		BatchSize: usecase.DefaultBatchSize,
		Logger:    zerolog.Nop(),
	})
}

func TestPollerRunCycleBatching(t *testing.T) {
	playerRepo := mocks.NewMockPlayerRepository()
	eventRepo := mocks.NewMockTrophyEventRepository()
	statsRepo := mocks.NewMockDailyStatsRepository()
	pacer := mocks.NewMockPacer()

	seedPlayers(t, playerRepo, 12)

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	source := mocks.NewMockSnapshotSource()
	source.FetchFunc = func(ctx context.Context, tag string) (*domain.Snapshot, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()

		return &domain.Snapshot{Tag: tag, Name: "n", Trophies: 5500, InLegendLeague: true}, nil
	}

	uc := newPoller(playerRepo, eventRepo, statsRepo, source, pacer)

	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	outcomes, err := uc.RunCycle(context.Background(), now)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if len(outcomes) != 12 {
		t.Fatalf("expected 12 outcomes, got %d", len(outcomes))
	}
	// 12 players at batch size 5 is 3 batches with 2 pauses between them.
	if pacer.Pauses != 2 {
		t.Errorf("expected 2 pauses, got %d", pacer.Pauses)
	}
	if maxInFlight > usecase.DefaultBatchSize {
		t.Errorf("concurrency %d exceeded batch size", maxInFlight)
	}
	if maxInFlight < 2 {
		t.Errorf("expected concurrent fetches within a batch, saw max %d", maxInFlight)
	}
}

func TestPollerRunCycleFailureIsolation(t *testing.T) {
	playerRepo := mocks.NewMockPlayerRepository()
	eventRepo := mocks.NewMockTrophyEventRepository()
	statsRepo := mocks.NewMockDailyStatsRepository()

	seedPlayers(t, playerRepo, 12)

	source := mocks.NewMockSnapshotSource()
	source.FetchFunc = func(ctx context.Context, tag string) (*domain.Snapshot, error) {
		switch tag {
		case "TAG03":
			return nil, domain.ErrUpstreamNotFound
		case "TAG07":
			return &domain.Snapshot{Tag: tag, Name: "dropped", Trophies: 4700, InLegendLeague: false}, nil
		default:
			return &domain.Snapshot{Tag: tag, Name: "n", Trophies: 5500, InLegendLeague: true}, nil
		}
	}

	uc := newPoller(playerRepo, eventRepo, statsRepo, source, mocks.NewMockPacer())

	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	outcomes, err := uc.RunCycle(context.Background(), now)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	byTag := make(map[string]usecase.Outcome, len(outcomes))
	for _, o := range outcomes {
		byTag[o.Tag] = o
	}

	if got := byTag["TAG03"].Status; got != usecase.OutcomeError {
		t.Errorf("TAG03 status = %s, want error", got)
	}
	if got := byTag["TAG07"].Status; got != usecase.OutcomeSkipped {
		t.Errorf("TAG07 status = %s, want skipped", got)
	}

	updated := 0
	for _, o := range outcomes {
		if o.Status == usecase.OutcomeUpdated {
			updated++
		}
	}
	if updated != 10 {
		t.Errorf("expected 10 updated players, got %d", updated)
	}

	// Outcome order must follow the loaded player order.
	for i, o := range outcomes {
		if want := fmt.Sprintf("TAG%02d", i); o.Tag != want {
			t.Fatalf("outcome %d is %s, want %s", i, o.Tag, want)
		}
	}
}

func TestPollerRunCycleAppliesDelta(t *testing.T) {
	playerRepo := mocks.NewMockPlayerRepository()
	eventRepo := mocks.NewMockTrophyEventRepository()
	statsRepo := mocks.NewMockDailyStatsRepository()

	start := &domain.Player{ID: "p1", Tag: "AAA", CurrentTrophies: 5000, IsTracking: true}
	if err := playerRepo.Upsert(context.Background(), start); err != nil {
		t.Fatal(err)
	}

	source := mocks.NewMockSnapshotSource()
	source.Snapshots["AAA"] = &domain.Snapshot{Tag: "AAA", Name: "Alice", ClanName: "Clan", Trophies: 5030, InLegendLeague: true}

	uc := newPoller(playerRepo, eventRepo, statsRepo, source, mocks.NewMockPacer())

	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	outcomes, err := uc.RunCycle(context.Background(), now)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if outcomes[0].Status != usecase.OutcomeUpdated || outcomes[0].Detail != "+30" {
		t.Errorf("outcome = %+v", outcomes[0])
	}

	if len(eventRepo.Events) != 1 {
		t.Fatalf("expected 1 ledger event, got %d", len(eventRepo.Events))
	}
	e := eventRepo.Events[0]
	if e.Delta != 30 || !e.IsAttack || e.PreviousTrophies != 5000 || e.NewTrophies != 5030 {
		t.Errorf("event = %+v", e)
	}
	if e.ID == "" {
		t.Error("event should have an assigned ID")
	}

	row, err := statsRepo.GetDay(context.Background(), "p1", domain.GameDayOf(now))
	if err != nil || row == nil {
		t.Fatalf("expected daily row, got %v err %v", row, err)
	}
	if row.OffenseCount != 1 || row.OffenseTotal != 30 || row.NetChange != 30 {
		t.Errorf("daily row = %+v", row)
	}

	updated, err := playerRepo.GetByTag(context.Background(), "AAA")
	if err != nil {
		t.Fatal(err)
	}
	if updated.CurrentTrophies != 5030 || updated.Name != "Alice" || !updated.LastUpdated.Equal(now) {
		t.Errorf("player not refreshed: %+v", updated)
	}
}

func TestPollerRunCycleNoChangeEnsuresDayRow(t *testing.T) {
	playerRepo := mocks.NewMockPlayerRepository()
	eventRepo := mocks.NewMockTrophyEventRepository()
	statsRepo := mocks.NewMockDailyStatsRepository()

	p := &domain.Player{ID: "p1", Tag: "AAA", CurrentTrophies: 5000, IsTracking: true}
	if err := playerRepo.Upsert(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	source := mocks.NewMockSnapshotSource()
	source.Snapshots["AAA"] = &domain.Snapshot{Tag: "AAA", Name: "Alice", Trophies: 5000, InLegendLeague: true}

	uc := newPoller(playerRepo, eventRepo, statsRepo, source, mocks.NewMockPacer())

	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	if _, err := uc.RunCycle(context.Background(), now); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if len(eventRepo.Events) != 0 {
		t.Errorf("zero delta must not produce events, got %d", len(eventRepo.Events))
	}

	row, err := statsRepo.GetDay(context.Background(), "p1", domain.GameDayOf(now))
	if err != nil {
		t.Fatal(err)
	}
	if row == nil {
		t.Fatal("expected a zero-valued row for the active day")
	}
	if !row.IsZero() {
		t.Errorf("expected zero row, got %+v", row)
	}
}

func TestPollerRejectsOverlappingCycles(t *testing.T) {
	playerRepo := mocks.NewMockPlayerRepository()
	seedPlayers(t, playerRepo, 1)

	started := make(chan struct{})
	release := make(chan struct{})
	source := mocks.NewMockSnapshotSource()
	source.FetchFunc = func(ctx context.Context, tag string) (*domain.Snapshot, error) {
		close(started)
		<-release
		return &domain.Snapshot{Tag: tag, Trophies: 5000, InLegendLeague: true}, nil
	}

	uc := newPoller(playerRepo, mocks.NewMockTrophyEventRepository(), mocks.NewMockDailyStatsRepository(), source, mocks.NewMockPacer())

	now := time.Now().UTC()
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := uc.RunCycle(context.Background(), now); err != nil {
			t.Errorf("first cycle failed: %v", err)
		}
	}()

	<-started

	if _, err := uc.RunCycle(context.Background(), now); err != usecase.ErrCycleInProgress {
		t.Errorf("expected ErrCycleInProgress, got %v", err)
	}

	close(release)
	<-done
}
