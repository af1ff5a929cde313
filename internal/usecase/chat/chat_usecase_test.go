package chat_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/infrastructure/stream"
	"github.com/orbitapp/orbit-backend/internal/repository"
	"github.com/orbitapp/orbit-backend/internal/usecase/chat"
)

//
// In-memory fakes
//

type memUserRepo struct {
	users map[string]*domain.User
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) Create(context.Context, *domain.User) error { return nil }
func (r *memUserRepo) Update(context.Context, *domain.User) error { return nil }
func (r *memUserRepo) CompleteSurvey(context.Context, string, *repository.SurveyUpdate) error {
	return nil
}
func (r *memUserRepo) ListDiscoverable(context.Context) ([]*domain.User, error) { return nil, nil }
func (r *memUserRepo) SetOnline(context.Context, string, bool) error            { return nil }
func (r *memUserRepo) SetAdmin(context.Context, string, bool) error             { return nil }
func (r *memUserRepo) Heartbeat(context.Context, string) error                  { return nil }
func (r *memUserRepo) UpdateProfileImage(context.Context, string, string) error { return nil }
func (r *memUserRepo) List(context.Context, string, int, int) ([]*domain.User, error) {
	return nil, nil
}
func (r *memUserRepo) Count(context.Context, string) (int, error) { return 0, nil }

type memChatRepo struct {
	mu        sync.Mutex
	convs     map[string]*domain.Conversation
	reads     map[string]map[string]bool
	messages  map[string][]*domain.Message
	nextMsgID int64
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{
		convs:    map[string]*domain.Conversation{},
		reads:    map[string]map[string]bool{},
		messages: map[string][]*domain.Message{},
	}
}

func (r *memChatRepo) EnsureConversation(_ context.Context, userA, userB string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user1, user2 := domain.OrderUserPair(userA, userB)
	for _, c := range r.convs {
		if c.User1ID == user1 && c.User2ID == user2 {
			return c.ID, nil
		}
	}
	id := fmt.Sprintf("conv-%d", len(r.convs)+1)
	r.convs[id] = &domain.Conversation{ID: id, User1ID: user1, User2ID: user2, CreatedAt: time.Now()}
	r.reads[id] = map[string]bool{user1: true, user2: true}
	return id, nil
}

func (r *memChatRepo) GetConversation(_ context.Context, id string) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.convs[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return c, nil
}

func (r *memChatRepo) AppendMessage(_ context.Context, conversationID, senderID, body, preview string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.convs[conversationID]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	r.nextMsgID++
	msg := &domain.Message{
		ID:             r.nextMsgID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	r.messages[conversationID] = append(r.messages[conversationID], msg)
	c.LastMessage = &preview
	c.LastSenderID = &senderID
	c.UpdatedAt = msg.CreatedAt
	for uid := range r.reads[conversationID] {
		r.reads[conversationID][uid] = uid == senderID
	}
	return msg, nil
}

func (r *memChatRepo) ListMessages(_ context.Context, conversationID string, afterID int64) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Message
	for _, m := range r.messages[conversationID] {
		if m.ID > afterID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memChatRepo) MarkRead(_ context.Context, userID, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.reads[conversationID]
	if !ok {
		return domain.ErrConversationNotFound
	}
	members[userID] = true
	return nil
}

func (r *memChatRepo) ListSummaries(_ context.Context, userID string) ([]*domain.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.ConversationSummary
	for _, c := range r.convs {
		peerID, ok := c.OtherUserID(userID)
		if !ok {
			continue
		}
		out = append(out, &domain.ConversationSummary{
			ConversationID: c.ID,
			PeerID:         peerID,
			LastMessage:    c.LastMessage,
			UpdatedAt:      c.UpdatedAt,
			Read:           r.reads[c.ID][userID],
		})
	}
	return out, nil
}

func (r *memChatRepo) CountUnread(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, c := range r.convs {
		if c.HasUser(userID) && !r.reads[c.ID][userID] {
			count++
		}
	}
	return count, nil
}

func (r *memChatRepo) PartnerIDs(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, c := range r.convs {
		if peerID, ok := c.OtherUserID(userID); ok {
			out = append(out, peerID)
		}
	}
	return out, nil
}

//
// Setup
//

func setupChat(t *testing.T) (*chat.ChatUseCase, *memChatRepo) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	userRepo := &memUserRepo{users: map[string]*domain.User{
		"alice": {ID: "alice", Username: "alice"},
		"bob":   {ID: "bob", Username: "bob", IsOnline: true},
	}}
	chatRepo := newMemChatRepo()
	return chat.NewChatUseCase(chatRepo, userRepo, stream.NewBroker(client)), chatRepo
}

//
// Tests
//

func TestStartConversationValidation(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupChat(t)

	_, err := uc.StartConversation(ctx, "alice", "alice", "hi")
	assert.ErrorIs(t, err, domain.ErrCannotMessageSelf)

	_, err = uc.StartConversation(ctx, "alice", "bob", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	_, err = uc.StartConversation(ctx, "alice", "bob", strings.Repeat("x", chat.InviteMaxLength+1))
	assert.ErrorIs(t, err, domain.ErrMessageTooLong)

	_, err = uc.StartConversation(ctx, "alice", "ghost", "hi")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestStartConversationAtCap(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupChat(t)

	id, err := uc.StartConversation(ctx, "alice", "bob", strings.Repeat("x", chat.InviteMaxLength))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestStartConversationReusesPair(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupChat(t)

	first, err := uc.StartConversation(ctx, "alice", "bob", "hello")
	require.NoError(t, err)

	// The reverse direction lands in the same shared record.
	second, err := uc.StartConversation(ctx, "bob", "alice", "hey back")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	messages, err := uc.Messages(ctx, "alice", first, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Body)
	assert.Equal(t, "hey back", messages[1].Body)
}

func TestOpenChatMessagesAreUncapped(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupChat(t)

	id, err := uc.StartConversation(ctx, "alice", "bob", "hello")
	require.NoError(t, err)

	// Only the invite path caps length; the open conversation does not.
	long := strings.Repeat("y", 500)
	msg, err := uc.SendMessage(ctx, id, "bob", long)
	require.NoError(t, err)
	assert.Equal(t, long, msg.Body)
}

func TestSendMessagePreviewTruncated(t *testing.T) {
	ctx := context.Background()
	uc, repo := setupChat(t)

	id, err := uc.StartConversation(ctx, "alice", "bob", "hello")
	require.NoError(t, err)

	long := strings.Repeat("z", 100)
	_, err = uc.SendMessage(ctx, id, "bob", long)
	require.NoError(t, err)

	conv, err := repo.GetConversation(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, conv.LastMessage)
	assert.Len(t, []rune(*conv.LastMessage), chat.PreviewLength)
}

func TestSendMessageOutsiderRejected(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupChat(t)

	id, err := uc.StartConversation(ctx, "alice", "bob", "hello")
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, id, "mallory", "let me in")
	assert.ErrorIs(t, err, domain.ErrNotParticipant)

	_, err = uc.Messages(ctx, "mallory", id, 0)
	assert.ErrorIs(t, err, domain.ErrNotParticipant)
}

func TestReadFlags(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupChat(t)

	id, err := uc.StartConversation(ctx, "alice", "bob", "hello")
	require.NoError(t, err)

	// Sender stays read, recipient goes unread.
	aliceUnread, err := uc.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, aliceUnread)

	bobUnread, err := uc.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, bobUnread)

	require.NoError(t, uc.MarkRead(ctx, "bob", id))
	bobUnread, err = uc.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, bobUnread)

	// Idempotent.
	require.NoError(t, uc.MarkRead(ctx, "bob", id))

	// A reply flips the flags the other way.
	_, err = uc.SendMessage(ctx, id, "bob", "hi alice")
	require.NoError(t, err)

	aliceUnread, err = uc.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, aliceUnread)
}

func TestListConversationsResolvesPeer(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupChat(t)

	_, err := uc.StartConversation(ctx, "alice", "bob", "hello")
	require.NoError(t, err)

	conversations, err := uc.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, conversations, 1)

	assert.Equal(t, "bob", conversations[0].Peer.ID)
	assert.True(t, conversations[0].Peer.IsOnline)
	require.NotNil(t, conversations[0].LastMessage)
	assert.Equal(t, "hello", *conversations[0].LastMessage)
	assert.True(t, conversations[0].Read)
}

func TestListConversationsSkipsDeletedPeer(t *testing.T) {
	ctx := context.Background()
	uc, repo := setupChat(t)

	_, err := uc.StartConversation(ctx, "alice", "bob", "hello")
	require.NoError(t, err)

	// A conversation with a peer that no longer resolves is hidden, not fatal.
	_, err = repo.EnsureConversation(ctx, "alice", "deleted-user")
	require.NoError(t, err)

	conversations, err := uc.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "bob", conversations[0].Peer.ID)
}

func TestMessagesAfterID(t *testing.T) {
	ctx := context.Background()
	uc, _ := setupChat(t)

	id, err := uc.StartConversation(ctx, "alice", "bob", "one")
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, id, "bob", "two")
	require.NoError(t, err)
	third, err := uc.SendMessage(ctx, id, "alice", "three")
	require.NoError(t, err)

	all, err := uc.Messages(ctx, "alice", id, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	tail, err := uc.Messages(ctx, "alice", id, all[1].ID)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, third.ID, tail[0].ID)
}
