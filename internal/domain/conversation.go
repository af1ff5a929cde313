package domain

import "time"

// Conversation is the single shared record for a pair of users. Participant
// read state lives in conversation_members, one row per side, so every
// mutation touches one record set atomically instead of two mirrored lists.
type Conversation struct {
	ID           string    `json:"id" db:"id"`
	User1ID      string    `json:"user1_id" db:"user1_id"`
	User2ID      string    `json:"user2_id" db:"user2_id"`
	LastMessage  *string   `json:"last_message" db:"last_message"`
	LastSenderID *string   `json:"last_sender_id" db:"last_sender_id"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (c *Conversation) HasUser(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

func (c *Conversation) OtherUserID(userID string) (string, bool) {
	if c.User1ID == userID {
		return c.User2ID, true
	}
	if c.User2ID == userID {
		return c.User1ID, true
	}
	return "", false
}

// OrderUserPair returns the pair in canonical order for the unique constraint
// on (user1_id, user2_id).
func OrderUserPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// ConversationSummary is one participant's view of a conversation.
type ConversationSummary struct {
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	PeerID         string    `json:"peer_id" db:"peer_id"`
	LastMessage    *string   `json:"last_message" db:"last_message"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
	Read           bool      `json:"read" db:"is_read"`
}

type Message struct {
	ID             int64     `json:"id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	SenderID       string    `json:"sender_id" db:"sender_id"`
	Body           string    `json:"body" db:"body"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
