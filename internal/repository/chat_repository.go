package repository

import (
	"context"

	"github.com/orbitapp/orbit-backend/internal/domain"
)

type ChatRepository interface {
	// EnsureConversation returns the conversation id for the pair, creating
	// the shared record and both member rows when absent. Idempotent.
	EnsureConversation(ctx context.Context, userA, userB string) (string, error)
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)
	// AppendMessage appends to the log, refreshes the preview and flips the
	// members' read flags (true for the sender, false for the peer) in a
	// single transaction.
	AppendMessage(ctx context.Context, conversationID, senderID, body, preview string) (*domain.Message, error)
	ListMessages(ctx context.Context, conversationID string, afterID int64) ([]*domain.Message, error)
	MarkRead(ctx context.Context, userID, conversationID string) error
	ListSummaries(ctx context.Context, userID string) ([]*domain.ConversationSummary, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	// PartnerIDs returns the ids of every user the given user already has a
	// conversation with. Recomputed per call, never cached.
	PartnerIDs(ctx context.Context, userID string) ([]string, error)
}
