package domain

// DailyStats holds the incremental counters for one player and one game day.
// Rows are only ever changed by additive merges; net change always equals
// offense total minus defense total.
type DailyStats struct {
	PlayerID     string
	Day          GameDay
	OffenseCount int
	OffenseTotal int
	DefenseCount int
	DefenseTotal int
	NetChange    int
}

// NewDailyStats returns a zero-valued row for the given player and day.
func NewDailyStats(playerID string, day GameDay) *DailyStats {
	return &DailyStats{PlayerID: playerID, Day: day}
}

// Apply folds one event into the counters. Gains count toward offense,
// losses toward defense with the absolute value.
func (s *DailyStats) Apply(e *TrophyEvent) {
	if e.IsAttack {
		s.OffenseCount++
		s.OffenseTotal += e.Delta
	} else {
		s.DefenseCount++
		s.DefenseTotal += -e.Delta
	}

	s.NetChange += e.Delta
}

// IsZero reports whether no events have been merged into the row.
func (s *DailyStats) IsZero() bool {
	return s.OffenseCount == 0 && s.DefenseCount == 0 &&
		s.OffenseTotal == 0 && s.DefenseTotal == 0 && s.NetChange == 0
}
