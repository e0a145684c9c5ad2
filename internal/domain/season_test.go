package domain

import (
	"testing"
	"time"
)

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestGameDayOf(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want GameDay
	}{
		{"before reset belongs to yesterday", utc(2025, 7, 10, 4, 59), "2025-07-09"},
		{"exactly at reset belongs to today", utc(2025, 7, 10, 5, 0), "2025-07-10"},
		{"after reset belongs to today", utc(2025, 7, 10, 12, 0), "2025-07-10"},
		{"month boundary before reset", utc(2025, 8, 1, 2, 0), "2025-07-31"},
		{"year boundary before reset", utc(2026, 1, 1, 3, 30), "2025-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GameDayOf(tt.now); got != tt.want {
				t.Errorf("GameDayOf(%v) = %s, want %s", tt.now, got, tt.want)
			}
		})
	}
}

func TestGameDayOfMonotonic(t *testing.T) {
	start := utc(2025, 12, 27, 0, 0)
	prev := GameDayOf(start)

	// Step a week in 30-minute increments across a month and year boundary.
	for i := 1; i <= 7*48; i++ {
		now := start.Add(time.Duration(i) * 30 * time.Minute)

		day := GameDayOf(now)
		if day.Before(prev) {
			t.Fatalf("game day went backwards at %v: %s after %s", now, day, prev)
		}
		prev = day

		// The reset flag and the date/day agreement must coincide.
		sameDate := string(day) == now.Format("2006-01-02")
		if IsAfterDailyReset(now) != sameDate {
			t.Fatalf("reset flag disagrees with game day at %v", now)
		}
	}
}

func TestNextDailyReset(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before today's reset", utc(2025, 7, 10, 4, 0), utc(2025, 7, 10, 5, 0)},
		{"exactly at reset rolls to tomorrow", utc(2025, 7, 10, 5, 0), utc(2025, 7, 11, 5, 0)},
		{"after today's reset", utc(2025, 7, 10, 18, 0), utc(2025, 7, 11, 5, 0)},
		{"month rollover", utc(2025, 7, 31, 6, 0), utc(2025, 8, 1, 5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDailyReset(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("NextDailyReset(%v) = %v, want %v", tt.now, got, tt.want)
			}
			if !got.After(tt.now) {
				t.Errorf("NextDailyReset(%v) = %v is not strictly in the future", tt.now, got)
			}
			if got.Sub(tt.now) > 24*time.Hour {
				t.Errorf("NextDailyReset(%v) = %v is more than 24h away", tt.now, got)
			}
		})
	}
}

func TestGameDayStart(t *testing.T) {
	if got := GameDayStart(utc(2025, 7, 10, 12, 0)); !got.Equal(utc(2025, 7, 10, 5, 0)) {
		t.Errorf("after reset: got %v", got)
	}
	if got := GameDayStart(utc(2025, 7, 10, 3, 0)); !got.Equal(utc(2025, 7, 9, 5, 0)) {
		t.Errorf("before reset: got %v", got)
	}
}

func TestCurrentSeasonStart(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		// March 2025 ends on Monday the 31st: the backward walk takes zero steps.
		{"zero-step walk", utc(2025, 4, 15, 12, 0), utc(2025, 3, 31, 5, 0)},
		{"mid walk", utc(2025, 7, 10, 12, 0), utc(2025, 6, 30, 5, 0)},
		{"january rolls back to december", utc(2026, 1, 10, 12, 0), utc(2025, 12, 29, 5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentSeasonStart(tt.now); !got.Equal(tt.want) {
				t.Errorf("CurrentSeasonStart(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestPreviousSeasonEnd(t *testing.T) {
	got := PreviousSeasonEnd(utc(2025, 7, 10, 12, 0))
	want := utc(2025, 6, 30, 5, 0).Add(-time.Second)
	if !got.Equal(want) {
		t.Errorf("PreviousSeasonEnd = %v, want %v", got, want)
	}
}

func TestNextSeasonReset(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		override *time.Time
		want     time.Time
	}{
		{"this month's last monday still ahead", utc(2025, 12, 20, 12, 0), nil, utc(2025, 12, 29, 5, 0)},
		{"december rolls over to january", utc(2025, 12, 30, 12, 0), nil, utc(2026, 1, 26, 5, 0)},
		{"mid-year rollover to next month", utc(2025, 7, 29, 12, 0), nil, utc(2025, 8, 25, 5, 0)},
		{
			name:     "future override wins",
			now:      utc(2025, 7, 1, 12, 0),
			override: timePtr(utc(2025, 7, 29, 5, 0)),
			want:     utc(2025, 7, 29, 5, 0),
		},
		{
			name:     "expired override falls back to the rule",
			now:      utc(2025, 8, 1, 12, 0),
			override: timePtr(utc(2025, 7, 29, 5, 0)),
			want:     utc(2025, 8, 25, 5, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextSeasonReset(tt.now, tt.override); !got.Equal(tt.want) {
				t.Errorf("NextSeasonReset(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestCurrentSeasonInfo(t *testing.T) {
	info := CurrentSeasonInfo(utc(2026, 1, 10, 12, 0))
	if info.Name != "January 2026" {
		t.Errorf("season name = %q", info.Name)
	}
	// Season started 2025-12-29 05:00; 12 whole days elapsed, so day 13.
	if info.Day != 13 {
		t.Errorf("season day = %d, want 13", info.Day)
	}

	first := CurrentSeasonInfo(utc(2025, 12, 29, 6, 0))
	if first.Day != 1 {
		t.Errorf("first season day = %d, want 1", first.Day)
	}
}

func TestGameDayAddDays(t *testing.T) {
	if got := GameDay("2025-03-01").AddDays(-1); got != "2025-02-28" {
		t.Errorf("AddDays(-1) = %s", got)
	}
	if got := GameDay("2025-12-31").AddDays(1); got != "2026-01-01" {
		t.Errorf("AddDays(1) = %s", got)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
