package domain

import "time"

// TrophyEvent is one classified trophy change reconstructed from two
// successive snapshots. Events are append-only and never mutated.
type TrophyEvent struct {
	ID               string
	PlayerID         string
	PreviousTrophies int
	NewTrophies      int
	Delta            int
	IsAttack         bool
	RecordedAt       time.Time
}

// ClassifyDelta compares two snapshot values and produces an event for the
// transition. Equal values produce no event: there is no such thing as a
// logged zero change. Invariant: NewTrophies = PreviousTrophies + Delta.
func ClassifyDelta(playerID string, previous, current int, at time.Time) (*TrophyEvent, bool) {
	if current == previous {
		return nil, false
	}

	delta := current - previous

	return &TrophyEvent{
		PlayerID:         playerID,
		PreviousTrophies: previous,
		NewTrophies:      current,
		Delta:            delta,
		IsAttack:         delta > 0,
		RecordedAt:       at,
	}, true
}
