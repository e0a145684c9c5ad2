package usecase

import "time"

const (
	// DefaultBatchSize is how many players one poll batch fetches
	// concurrently; batches run strictly one after another.
	DefaultBatchSize = 5

	// DefaultBatchPause is the rate-limit gap between batches.
	DefaultBatchPause = time.Second

	// RecentEventsLimit caps the trophy history returned for a player.
	RecentEventsLimit = 50

	// RetentionHorizon is how long ledger events and daily rows are kept.
	RetentionHorizon = 60 * 24 * time.Hour

	// LeaderboardCacheTTL bounds staleness of the cached leaderboard
	// between poll cycles.
	LeaderboardCacheTTL = 30 * time.Second
)
