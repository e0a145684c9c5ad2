package dto

// TrackPlayerRequest represents a request to start tracking a player.
type TrackPlayerRequest struct {
	PlayerTag string `json:"player_tag"`
}
