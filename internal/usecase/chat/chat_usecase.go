package chat

import (
	"context"
	"strings"
	"time"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/infrastructure/stream"
	"github.com/orbitapp/orbit-backend/internal/logger"
	"github.com/orbitapp/orbit-backend/internal/repository"
)

const (
	// PreviewLength caps the conversation-list preview.
	PreviewLength = 30
	// InviteMaxLength caps the opening message of an invite. Messages in an
	// open conversation are not capped; the asymmetry is per call site.
	InviteMaxLength = 35
)

type ChatUseCase struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	broker   *stream.Broker
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	broker *stream.Broker,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo: chatRepo,
		userRepo: userRepo,
		broker:   broker,
	}
}

// PeerProfile is the display info resolved for the other side of a
// conversation.
type PeerProfile struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	ProfileImage *string `json:"profile_image"`
	Gender       *string `json:"gender"`
	IsOnline     bool    `json:"is_online"`
}

// ConversationResponse is one entry of a user's conversation list.
type ConversationResponse struct {
	ConversationID string       `json:"conversation_id"`
	Peer           *PeerProfile `json:"peer"`
	LastMessage    *string      `json:"last_message"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Read           bool         `json:"read"`
}

// StartConversation is the invite path shared by discovery and the queue: it
// creates the conversation when absent and sends the opening message.
func (uc *ChatUseCase) StartConversation(ctx context.Context, fromID, toID, text string) (string, error) {
	if fromID == toID {
		return "", domain.ErrCannotMessageSelf
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrEmptyMessage
	}
	if len([]rune(text)) > InviteMaxLength {
		return "", domain.ErrMessageTooLong
	}

	// The recipient must exist; the invite target may have been deleted
	// since it was surfaced.
	if _, err := uc.userRepo.GetByID(ctx, toID); err != nil {
		return "", err
	}

	conversationID, err := uc.chatRepo.EnsureConversation(ctx, fromID, toID)
	if err != nil {
		return "", err
	}

	if _, err := uc.SendMessage(ctx, conversationID, fromID, text); err != nil {
		return "", err
	}
	return conversationID, nil
}

// SendMessage appends to the log and updates both participants' read state as
// one unit of work. The open-chat path does not cap the length.
func (uc *ChatUseCase) SendMessage(ctx context.Context, conversationID, senderID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	conv, err := uc.chatRepo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasUser(senderID) {
		return nil, domain.ErrNotParticipant
	}

	msg, err := uc.chatRepo.AppendMessage(ctx, conversationID, senderID, text, truncate(text, PreviewLength))
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, conv, "message")
	return msg, nil
}

// Messages returns the append-ordered log, newest last.
func (uc *ChatUseCase) Messages(ctx context.Context, userID, conversationID string, afterID int64) ([]*domain.Message, error) {
	if _, err := uc.conversationFor(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return uc.chatRepo.ListMessages(ctx, conversationID, afterID)
}

// MarkRead flips the caller's own read flag. Idempotent.
func (uc *ChatUseCase) MarkRead(ctx context.Context, userID, conversationID string) error {
	conv, err := uc.conversationFor(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	if err := uc.chatRepo.MarkRead(ctx, userID, conversationID); err != nil {
		return err
	}
	uc.notify(ctx, conv, "read")
	return nil
}

// ListConversations returns the caller's summaries ordered by recency, with
// peer display info resolved through the profile store.
func (uc *ChatUseCase) ListConversations(ctx context.Context, userID string) ([]*ConversationResponse, error) {
	summaries, err := uc.chatRepo.ListSummaries(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*ConversationResponse, 0, len(summaries))
	for _, s := range summaries {
		peer, err := uc.userRepo.GetByID(ctx, s.PeerID)
		if err != nil {
			// A deleted peer hides the conversation rather than failing
			// the whole list.
			logger.Warn("failed to resolve chat peer", "peer_id", s.PeerID, "error", err)
			continue
		}
		responses = append(responses, &ConversationResponse{
			ConversationID: s.ConversationID,
			Peer: &PeerProfile{
				ID:           peer.ID,
				Username:     peer.Username,
				ProfileImage: peer.ProfileImage,
				Gender:       peer.Gender,
				IsOnline:     peer.IsOnline,
			},
			LastMessage: s.LastMessage,
			UpdatedAt:   s.UpdatedAt,
			Read:        s.Read,
		})
	}
	return responses, nil
}

func (uc *ChatUseCase) UnreadCount(ctx context.Context, userID string) (int, error) {
	return uc.chatRepo.CountUnread(ctx, userID)
}

// SubscribeConversations delivers a hint whenever any conversation of the
// user changes; the caller re-reads the list on every hint.
func (uc *ChatUseCase) SubscribeConversations(ctx context.Context, userID string) (<-chan string, func()) {
	return uc.broker.Subscribe(ctx, stream.UserChatChannel(userID))
}

// SubscribeMessages delivers a hint whenever the conversation log grows.
func (uc *ChatUseCase) SubscribeMessages(ctx context.Context, userID, conversationID string) (<-chan string, func(), error) {
	if _, err := uc.conversationFor(ctx, userID, conversationID); err != nil {
		return nil, nil, err
	}
	events, cancel := uc.broker.Subscribe(ctx, stream.ConversationChannel(conversationID))
	return events, cancel, nil
}

func (uc *ChatUseCase) conversationFor(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	conv, err := uc.chatRepo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasUser(userID) {
		return nil, domain.ErrNotParticipant
	}
	return conv, nil
}

// notify fans the change out to both participants and the open-chat feed.
// The write already committed, so a failed publish is logged and dropped;
// feeds self-heal on their next read.
func (uc *ChatUseCase) notify(ctx context.Context, conv *domain.Conversation, kind string) {
	channels := []string{
		stream.UserChatChannel(conv.User1ID),
		stream.UserChatChannel(conv.User2ID),
		stream.ConversationChannel(conv.ID),
	}
	for _, ch := range channels {
		if err := uc.broker.Publish(ctx, ch, kind); err != nil {
			logger.Warn("failed to publish chat event", "channel", ch, "error", err)
		}
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
