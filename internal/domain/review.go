package domain

import "time"

// Review is write-once per user; the done_review flag on the user row is
// flipped in the same transaction that inserts it.
type Review struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	Rating    int       `json:"rating" db:"rating"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
