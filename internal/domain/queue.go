package domain

import "time"

// QueueEntry is a user's standing request to be matched for one game.
// At most one entry exists per (GameID, UserID); a re-join overwrites.
// Display fields are snapshotted from the profile at join time.
type QueueEntry struct {
	GameID       string    `json:"game_id"`
	UserID       string    `json:"user_id"`
	GameTitle    string    `json:"game_title"`
	Bio          string    `json:"bio"`
	GameType     string    `json:"game_type"`
	GameRank     string    `json:"game_rank"`
	Username     string    `json:"username"`
	ProfileImage *string   `json:"profile_image"`
	Gender       *string   `json:"gender"`
	PostedAt     time.Time `json:"posted_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (e *QueueEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
