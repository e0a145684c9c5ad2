package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/legendtrack/internal/domain"
)

// TrackerUseCase handles adding and removing tracked players.
type TrackerUseCase struct {
	players PlayerRepository
	source  SnapshotSource
	idGen   IDGenerator
}

// NewTrackerUseCase creates a new TrackerUseCase.
func NewTrackerUseCase(players PlayerRepository, source SnapshotSource, idGen IDGenerator) *TrackerUseCase {
	return &TrackerUseCase{
		players: players,
		source:  source,
		idGen:   idGen,
	}
}

// TrackResult reports the tracked player and whether it was newly added.
type TrackResult struct {
	Player *domain.Player
	IsNew  bool
}

// TrackPlayer fetches a live snapshot for the tag and starts tracking the
// player. Players outside Legend League are rejected with
// domain.ErrNotInLegendLeague.
func (uc *TrackerUseCase) TrackPlayer(ctx context.Context, rawTag string, now time.Time) (*TrackResult, error) {
	tag := domain.NormalizeTag(rawTag)

	snap, err := uc.source.Fetch(ctx, tag)
	if err != nil {
		return nil, err
	}
	if !snap.InLegendLeague {
		return nil, domain.ErrNotInLegendLeague
	}

	player, err := uc.players.GetByTag(ctx, tag)
	isNew := false

	switch {
	case errors.Is(err, domain.ErrPlayerNotFound):
		isNew = true
		player = &domain.Player{
			ID:        uc.idGen.Generate(),
			Tag:       tag,
			CreatedAt: now,
		}
	case err != nil:
		return nil, err
	}

	player.Name = snap.Name
	player.ClanName = snap.ClanName
	player.CurrentTrophies = snap.Trophies
	player.IsTracking = true
	player.LastUpdated = now

	if err := uc.players.Upsert(ctx, player); err != nil {
		return nil, err
	}

	return &TrackResult{Player: player, IsNew: isNew}, nil
}

// UntrackPlayer disables polling for the tag without deleting history.
func (uc *TrackerUseCase) UntrackPlayer(ctx context.Context, rawTag string) error {
	return uc.players.SetTracking(ctx, domain.NormalizeTag(rawTag), false)
}

// GetPlayer retrieves a tracked player by tag.
func (uc *TrackerUseCase) GetPlayer(ctx context.Context, rawTag string) (*domain.Player, error) {
	return uc.players.GetByTag(ctx, domain.NormalizeTag(rawTag))
}
