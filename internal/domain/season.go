package domain

import (
	"fmt"
	"time"
)

// ResetHourUTC is the Legend League daily reset hour. Game days and season
// boundaries are anchored to this hour, not to UTC midnight.
const ResetHourUTC = 5

const gameDayLayout = "2006-01-02"

// GameDay identifies one reset-anchored 24h bucket as a YYYY-MM-DD string.
// The ISO layout makes lexicographic order equal to chronological order.
type GameDay string

func (d GameDay) String() string { return string(d) }

// Before reports whether d is strictly earlier than other.
func (d GameDay) Before(other GameDay) bool { return d < other }

// AddDays shifts the day by n calendar days.
func (d GameDay) AddDays(n int) GameDay {
	t, err := time.Parse(gameDayLayout, string(d))
	if err != nil {
		panic(fmt.Sprintf("malformed game day %q: %v", d, err))
	}

	return GameDay(t.AddDate(0, 0, n).Format(gameDayLayout))
}

// IsAfterDailyReset reports whether now is past today's reset hour.
func IsAfterDailyReset(now time.Time) bool {
	return now.UTC().Hour() >= ResetHourUTC
}

// GameDayOf maps an instant to the game day it belongs to: today's UTC date
// once the reset hour has passed, otherwise still yesterday's. The mapping is
// monotonic non-decreasing in now.
func GameDayOf(now time.Time) GameDay {
	u := now.UTC()
	if !IsAfterDailyReset(u) {
		u = u.AddDate(0, 0, -1)
	}

	return GameDay(u.Format(gameDayLayout))
}

// GameDayStart returns the reset instant that opened the game day containing
// now. Together with now it bounds the active "today" window.
func GameDayStart(now time.Time) time.Time {
	u := now.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), ResetHourUTC, 0, 0, 0, time.UTC)
	if !IsAfterDailyReset(u) {
		start = start.AddDate(0, 0, -1)
	}

	return start
}

// NextDailyReset returns the next reset instant strictly after now.
func NextDailyReset(now time.Time) time.Time {
	u := now.UTC()
	reset := time.Date(u.Year(), u.Month(), u.Day(), ResetHourUTC, 0, 0, 0, time.UTC)
	if !u.Before(reset) {
		reset = reset.AddDate(0, 0, 1)
	}

	return reset
}

// lastMondayOf finds the last Monday of the given month at the reset hour.
// It starts at the month's last calendar day and walks backward one day at a
// time; a month whose last day already is a Monday walks zero days.
func lastMondayOf(year int, month time.Month) time.Time {
	// Day 0 of the next month is the last day of this month.
	d := time.Date(year, month+1, 0, ResetHourUTC, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, -1)
	}

	return d
}

// CurrentSeasonStart returns the instant the running season began: the last
// Monday of the month before now's month, at the reset hour.
func CurrentSeasonStart(now time.Time) time.Time {
	u := now.UTC()
	year, month := u.Year(), u.Month()
	if month == time.January {
		return lastMondayOf(year-1, time.December)
	}

	return lastMondayOf(year, month-1)
}

// PreviousSeasonEnd returns the final instant of the season before the
// running one, one second before the current season started.
func PreviousSeasonEnd(now time.Time) time.Time {
	return CurrentSeasonStart(now).Add(-time.Second)
}

// NextSeasonReset returns the instant the running season ends. A non-nil
// override that is still in the future pins the result to a known one-off
// reset date; once it has passed the generic last-Monday rule resumes.
func NextSeasonReset(now time.Time, override *time.Time) time.Time {
	u := now.UTC()
	if override != nil && u.Before(override.UTC()) {
		return override.UTC()
	}

	reset := lastMondayOf(u.Year(), u.Month())
	if reset.After(u) {
		return reset
	}

	year, month := u.Year(), u.Month()
	if month == time.December {
		return lastMondayOf(year+1, time.January)
	}

	return lastMondayOf(year, month+1)
}

// SeasonInfo names the running season and counts its 1-based day.
type SeasonInfo struct {
	Name string
	Day  int
}

// CurrentSeasonInfo labels the season after now's month and year and counts
// whole days elapsed since the season started, plus one.
func CurrentSeasonInfo(now time.Time) SeasonInfo {
	u := now.UTC()
	start := CurrentSeasonStart(u)

	return SeasonInfo{
		Name: fmt.Sprintf("%s %d", u.Month().String(), u.Year()),
		Day:  int(u.Sub(start).Hours()/24) + 1,
	}
}
