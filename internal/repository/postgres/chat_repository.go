package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/repository"
)

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) repository.ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) EnsureConversation(ctx context.Context, userA, userB string) (string, error) {
	user1, user2 := domain.OrderUserPair(userA, userB)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	// The unique constraint on the ordered pair makes creation idempotent
	// even under concurrent calls.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, user1_id, user2_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user1_id, user2_id) DO NOTHING
	`, uuid.NewString(), user1, user2)
	if err != nil {
		return "", err
	}

	var id string
	err = tx.GetContext(ctx, &id, `
		SELECT id FROM conversations WHERE user1_id = $1 AND user2_id = $2
	`, user1, user2)
	if err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversation_members (conversation_id, user_id, is_read)
		VALUES ($1, $2, TRUE), ($1, $3, TRUE)
		ON CONFLICT (conversation_id, user_id) DO NOTHING
	`, id, user1, user2)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func (r *chatRepository) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	query := `
		SELECT id, user1_id, user2_id, last_message, last_sender_id, updated_at, created_at
		FROM conversations WHERE id = $1
	`
	err := r.db.GetContext(ctx, &conv, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *chatRepository) AppendMessage(ctx context.Context, conversationID, senderID, body, preview string) (*domain.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	msg := &domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO messages (conversation_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, conversationID, senderID, body).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE conversations
		SET last_message = $1, last_sender_id = $2, updated_at = NOW()
		WHERE id = $3
	`, preview, senderID, conversationID)
	if err != nil {
		return nil, err
	}
	if err := requireRow(result, domain.ErrConversationNotFound); err != nil {
		return nil, err
	}

	// The sender's own flag stays read; everyone else's goes unread.
	_, err = tx.ExecContext(ctx, `
		UPDATE conversation_members
		SET is_read = (user_id = $1)
		WHERE conversation_id = $2
	`, senderID, conversationID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *chatRepository) ListMessages(ctx context.Context, conversationID string, afterID int64) ([]*domain.Message, error) {
	var messages []*domain.Message
	query := `
		SELECT id, conversation_id, sender_id, body, created_at
		FROM messages
		WHERE conversation_id = $1 AND id > $2
		ORDER BY id
	`
	err := r.db.SelectContext(ctx, &messages, query, conversationID, afterID)
	return messages, err
}

func (r *chatRepository) MarkRead(ctx context.Context, userID, conversationID string) error {
	query := `
		UPDATE conversation_members
		SET is_read = TRUE
		WHERE conversation_id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, conversationID, userID)
	if err != nil {
		return err
	}
	return requireRow(result, domain.ErrConversationNotFound)
}

func (r *chatRepository) ListSummaries(ctx context.Context, userID string) ([]*domain.ConversationSummary, error) {
	var summaries []*domain.ConversationSummary
	query := `
		SELECT c.id AS conversation_id,
		       CASE WHEN c.user1_id = $1 THEN c.user2_id ELSE c.user1_id END AS peer_id,
		       c.last_message, c.updated_at, m.is_read
		FROM conversations c
		JOIN conversation_members m ON m.conversation_id = c.id AND m.user_id = $1
		ORDER BY c.updated_at DESC
	`
	err := r.db.SelectContext(ctx, &summaries, query, userID)
	return summaries, err
}

func (r *chatRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM conversation_members
		WHERE user_id = $1 AND is_read = FALSE
	`
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}

func (r *chatRepository) PartnerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	query := `
		SELECT CASE WHEN user1_id = $1 THEN user2_id ELSE user1_id END
		FROM conversations
		WHERE user1_id = $1 OR user2_id = $1
	`
	err := r.db.SelectContext(ctx, &ids, query, userID)
	return ids, err
}
