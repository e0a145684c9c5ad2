package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/legendtrack/internal/domain"
)

// MockPlayerRepository is a mock implementation of usecase.PlayerRepository.
// Unset function fields fall back to an in-memory map.
type MockPlayerRepository struct {
	mu      sync.RWMutex
	players map[string]*domain.Player
	order   []string

	GetByTagFunc     func(ctx context.Context, tag string) (*domain.Player, error)
	UpsertFunc       func(ctx context.Context, player *domain.Player) error
	ListTrackingFunc func(ctx context.Context) ([]*domain.Player, error)
	SetTrackingFunc  func(ctx context.Context, tag string, tracking bool) error
}

func NewMockPlayerRepository() *MockPlayerRepository {
	return &MockPlayerRepository{
		players: make(map[string]*domain.Player),
	}
}

func (m *MockPlayerRepository) GetByTag(ctx context.Context, tag string) (*domain.Player, error) {
	if m.GetByTagFunc != nil {
		return m.GetByTagFunc(ctx, tag)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.players[tag]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrPlayerNotFound
}

func (m *MockPlayerRepository) Upsert(ctx context.Context, player *domain.Player) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, player)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[player.Tag]; !ok {
		m.order = append(m.order, player.Tag)
	}
	cp := *player
	m.players[player.Tag] = &cp
	return nil
}

// ListTracking mirrors the repository contract: trophies descending, ties in
// insertion order.
func (m *MockPlayerRepository) ListTracking(ctx context.Context) ([]*domain.Player, error) {
	if m.ListTrackingFunc != nil {
		return m.ListTrackingFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var players []*domain.Player
	for _, tag := range m.order {
		if p := m.players[tag]; p.IsTracking {
			cp := *p
			players = append(players, &cp)
		}
	}
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].CurrentTrophies > players[j].CurrentTrophies
	})
	return players, nil
}

func (m *MockPlayerRepository) SetTracking(ctx context.Context, tag string, tracking bool) error {
	if m.SetTrackingFunc != nil {
		return m.SetTrackingFunc(ctx, tag, tracking)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[tag]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	p.IsTracking = tracking
	return nil
}

// MockTrophyEventRepository is a mock implementation of
// usecase.TrophyEventRepository backed by an append-only slice.
type MockTrophyEventRepository struct {
	mu     sync.RWMutex
	Events []*domain.TrophyEvent

	AppendFunc       func(ctx context.Context, event *domain.TrophyEvent) error
	ListRecentFunc   func(ctx context.Context, playerID string, limit int) ([]*domain.TrophyEvent, error)
	ListRangeFunc    func(ctx context.Context, playerID string, from, to time.Time) ([]*domain.TrophyEvent, error)
	DeleteBeforeFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func NewMockTrophyEventRepository() *MockTrophyEventRepository {
	return &MockTrophyEventRepository{}
}

func (m *MockTrophyEventRepository) Append(ctx context.Context, event *domain.TrophyEvent) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *event
	m.Events = append(m.Events, &cp)
	return nil
}

func (m *MockTrophyEventRepository) ListRecent(ctx context.Context, playerID string, limit int) ([]*domain.TrophyEvent, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, playerID, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.TrophyEvent
	for i := len(m.Events) - 1; i >= 0 && len(out) < limit; i-- {
		if m.Events[i].PlayerID == playerID {
			out = append(out, m.Events[i])
		}
	}
	return out, nil
}

func (m *MockTrophyEventRepository) ListRange(ctx context.Context, playerID string, from, to time.Time) ([]*domain.TrophyEvent, error) {
	if m.ListRangeFunc != nil {
		return m.ListRangeFunc(ctx, playerID, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.TrophyEvent
	for _, e := range m.Events {
		if e.PlayerID == playerID && !e.RecordedAt.Before(from) && e.RecordedAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockTrophyEventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteBeforeFunc != nil {
		return m.DeleteBeforeFunc(ctx, cutoff)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.TrophyEvent
	var deleted int64
	for _, e := range m.Events {
		if e.RecordedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.Events = kept
	return deleted, nil
}

// MockDailyStatsRepository is a mock implementation of
// usecase.DailyStatsRepository keyed by (player, day).
type MockDailyStatsRepository struct {
	mu   sync.RWMutex
	Rows map[string]*domain.DailyStats

	EnsureDayFunc    func(ctx context.Context, playerID string, day domain.GameDay) error
	MergeEventFunc   func(ctx context.Context, playerID string, day domain.GameDay, event *domain.TrophyEvent) error
	GetDayFunc       func(ctx context.Context, playerID string, day domain.GameDay) (*domain.DailyStats, error)
	GetSinceFunc     func(ctx context.Context, playerID string, from domain.GameDay) ([]*domain.DailyStats, error)
	GetBeforeFunc    func(ctx context.Context, playerID string, before domain.GameDay) ([]*domain.DailyStats, error)
	ListForDayFunc   func(ctx context.Context, day domain.GameDay) ([]*domain.DailyStats, error)
	DeleteBeforeFunc func(ctx context.Context, day domain.GameDay) (int64, error)
}

func NewMockDailyStatsRepository() *MockDailyStatsRepository {
	return &MockDailyStatsRepository{
		Rows: make(map[string]*domain.DailyStats),
	}
}

func statsKey(playerID string, day domain.GameDay) string {
	return fmt.Sprintf("%s|%s", playerID, day)
}

func (m *MockDailyStatsRepository) EnsureDay(ctx context.Context, playerID string, day domain.GameDay) error {
	if m.EnsureDayFunc != nil {
		return m.EnsureDayFunc(ctx, playerID, day)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := statsKey(playerID, day)
	if _, ok := m.Rows[key]; !ok {
		m.Rows[key] = domain.NewDailyStats(playerID, day)
	}
	return nil
}

func (m *MockDailyStatsRepository) MergeEvent(ctx context.Context, playerID string, day domain.GameDay, event *domain.TrophyEvent) error {
	if m.MergeEventFunc != nil {
		return m.MergeEventFunc(ctx, playerID, day, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := statsKey(playerID, day)
	row, ok := m.Rows[key]
	if !ok {
		row = domain.NewDailyStats(playerID, day)
		m.Rows[key] = row
	}
	row.Apply(event)
	return nil
}

func (m *MockDailyStatsRepository) GetDay(ctx context.Context, playerID string, day domain.GameDay) (*domain.DailyStats, error) {
	if m.GetDayFunc != nil {
		return m.GetDayFunc(ctx, playerID, day)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if row, ok := m.Rows[statsKey(playerID, day)]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

func (m *MockDailyStatsRepository) GetSince(ctx context.Context, playerID string, from domain.GameDay) ([]*domain.DailyStats, error) {
	if m.GetSinceFunc != nil {
		return m.GetSinceFunc(ctx, playerID, from)
	}
	return m.selectRows(func(row *domain.DailyStats) bool {
		return row.PlayerID == playerID && !row.Day.Before(from)
	}), nil
}

func (m *MockDailyStatsRepository) GetBefore(ctx context.Context, playerID string, before domain.GameDay) ([]*domain.DailyStats, error) {
	if m.GetBeforeFunc != nil {
		return m.GetBeforeFunc(ctx, playerID, before)
	}
	return m.selectRows(func(row *domain.DailyStats) bool {
		return row.PlayerID == playerID && row.Day.Before(before)
	}), nil
}

func (m *MockDailyStatsRepository) ListForDay(ctx context.Context, day domain.GameDay) ([]*domain.DailyStats, error) {
	if m.ListForDayFunc != nil {
		return m.ListForDayFunc(ctx, day)
	}
	return m.selectRows(func(row *domain.DailyStats) bool {
		return row.Day == day
	}), nil
}

func (m *MockDailyStatsRepository) DeleteBefore(ctx context.Context, day domain.GameDay) (int64, error) {
	if m.DeleteBeforeFunc != nil {
		return m.DeleteBeforeFunc(ctx, day)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for key, row := range m.Rows {
		if row.Day.Before(day) {
			delete(m.Rows, key)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MockDailyStatsRepository) selectRows(keep func(*domain.DailyStats) bool) []*domain.DailyStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.DailyStats
	for _, row := range m.Rows {
		if keep(row) {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Day.Before(out[i].Day) })
	return out
}

// MockSnapshotSource is a mock implementation of usecase.SnapshotSource.
type MockSnapshotSource struct {
	mu        sync.Mutex
	Snapshots map[string]*domain.Snapshot
	Calls     []string

	FetchFunc func(ctx context.Context, tag string) (*domain.Snapshot, error)
}

func NewMockSnapshotSource() *MockSnapshotSource {
	return &MockSnapshotSource{
		Snapshots: make(map[string]*domain.Snapshot),
	}
}

func (m *MockSnapshotSource) Fetch(ctx context.Context, tag string) (*domain.Snapshot, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, tag)
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, tag)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if snap, ok := m.Snapshots[tag]; ok {
		return snap, nil
	}
	return nil, domain.ErrUpstreamNotFound
}

// MockPacer counts pauses instead of sleeping.
type MockPacer struct {
	mu     sync.Mutex
	Pauses int

	PauseFunc func(ctx context.Context) error
}

func NewMockPacer() *MockPacer { return &MockPacer{} }

func (m *MockPacer) Pause(ctx context.Context) error {
	m.mu.Lock()
	m.Pauses++
	m.mu.Unlock()

	if m.PauseFunc != nil {
		return m.PauseFunc(ctx)
	}
	return nil
}

// MockIDGenerator returns sequential IDs.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator { return &MockIDGenerator{} }

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return fmt.Sprintf("id-%04d", m.next)
}

// MockCache is an in-memory usecase.Cache.
type MockCache struct {
	mu     sync.RWMutex
	values map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

var errCacheMiss = fmt.Errorf("cache miss")

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", errCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
