package usecase

import (
	"context"
	"time"

	"github.com/iho/legendtrack/internal/domain"
)

// PlayerRepository defines data access for tracked players.
type PlayerRepository interface {
	GetByTag(ctx context.Context, tag string) (*domain.Player, error)
	Upsert(ctx context.Context, player *domain.Player) error
	// ListTracking returns tracking-enabled players ordered by current
	// trophies descending, ties in first-tracked order.
	ListTracking(ctx context.Context) ([]*domain.Player, error)
	SetTracking(ctx context.Context, tag string, tracking bool) error
}

// TrophyEventRepository defines data access for the append-only event ledger.
type TrophyEventRepository interface {
	Append(ctx context.Context, event *domain.TrophyEvent) error
	ListRecent(ctx context.Context, playerID string, limit int) ([]*domain.TrophyEvent, error)
	// ListRange returns events with RecordedAt in [from, to), ascending.
	ListRange(ctx context.Context, playerID string, from, to time.Time) ([]*domain.TrophyEvent, error)
	// DeleteBefore removes events strictly older than cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// DailyStatsRepository defines data access for per-game-day aggregates.
type DailyStatsRepository interface {
	// EnsureDay creates a zero-valued row if absent. Concurrent calls for
	// the same key must not create duplicates.
	EnsureDay(ctx context.Context, playerID string, day domain.GameDay) error
	// MergeEvent folds one event into the row as an atomic increment
	// against the stored value, creating the row if needed.
	MergeEvent(ctx context.Context, playerID string, day domain.GameDay, event *domain.TrophyEvent) error
	// GetDay returns nil (not an error) when no row exists.
	GetDay(ctx context.Context, playerID string, day domain.GameDay) (*domain.DailyStats, error)
	// GetSince returns rows with day >= from, descending by day.
	GetSince(ctx context.Context, playerID string, from domain.GameDay) ([]*domain.DailyStats, error)
	// GetBefore returns rows with day < before, descending by day.
	GetBefore(ctx context.Context, playerID string, before domain.GameDay) ([]*domain.DailyStats, error)
	ListForDay(ctx context.Context, day domain.GameDay) ([]*domain.DailyStats, error)
	// DeleteBefore removes rows with day strictly older than the cutoff day.
	DeleteBefore(ctx context.Context, day domain.GameDay) (int64, error)
}

// SnapshotSource fetches the current upstream state of a player.
type SnapshotSource interface {
	Fetch(ctx context.Context, tag string) (*domain.Snapshot, error)
}

// Pacer paces the poller between batches.
type Pacer interface {
	Pause(ctx context.Context) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
