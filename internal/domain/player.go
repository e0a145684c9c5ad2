package domain

import (
	"strings"
	"time"
)

// Player represents a tracked Legend League player.
type Player struct {
	ID              string
	Tag             string
	Name            string
	ClanName        string
	CurrentTrophies int
	IsTracking      bool
	LastUpdated     time.Time
	CreatedAt       time.Time
}

// Snapshot is a single observation of a player's state from the upstream API.
type Snapshot struct {
	Tag            string
	Name           string
	ClanName       string
	Trophies       int
	InLegendLeague bool
}

// NormalizeTag canonicalizes a player tag: leading '#' stripped, uppercased.
func NormalizeTag(raw string) string {
	tag := strings.TrimSpace(raw)
	tag = strings.TrimPrefix(tag, "#")

	return strings.ToUpper(tag)
}
