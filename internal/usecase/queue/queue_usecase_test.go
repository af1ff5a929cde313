package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/infrastructure/stream"
	"github.com/orbitapp/orbit-backend/internal/repository"
	redisrepo "github.com/orbitapp/orbit-backend/internal/repository/redis"
	"github.com/orbitapp/orbit-backend/internal/usecase/queue"
)

type stubUserRepo struct {
	repository.UserRepository
	users map[string]*domain.User
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

type stubGameRepo struct {
	repository.GameRepository
	games map[string]*domain.Game
}

func (r *stubGameRepo) GetByID(_ context.Context, id string) (*domain.Game, error) {
	g, ok := r.games[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return g, nil
}

type stubChatRepo struct {
	repository.ChatRepository
	partners map[string][]string
}

func (r *stubChatRepo) PartnerIDs(_ context.Context, userID string) ([]string, error) {
	return r.partners[userID], nil
}

func setupQueue(t *testing.T, partners map[string][]string) *queue.QueueUseCase {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	gender := "f"
	userRepo := &stubUserRepo{users: map[string]*domain.User{
		"alice": {ID: "alice", Username: "alice", Gender: &gender},
		"bob":   {ID: "bob", Username: "bob"},
		"carol": {ID: "carol", Username: "carol"},
	}}
	gameRepo := &stubGameRepo{games: map[string]*domain.Game{
		"g1": {ID: "g1", Title: "Valorant"},
	}}

	return queue.NewQueueUseCase(
		redisrepo.NewQueueRepository(client),
		userRepo,
		gameRepo,
		&stubChatRepo{partners: partners},
		stream.NewBroker(client),
		time.Minute,
	)
}

func TestJoinSnapshotsProfileFields(t *testing.T) {
	ctx := context.Background()
	uc := setupQueue(t, nil)

	entry, err := uc.Join(ctx, "g1", "alice", "chill games only", "ranked", "gold")
	require.NoError(t, err)

	assert.Equal(t, "Valorant", entry.GameTitle)
	assert.Equal(t, "alice", entry.Username)
	require.NotNil(t, entry.Gender)
	assert.Equal(t, "f", *entry.Gender)
	assert.Equal(t, "chill games only", entry.Bio)
	assert.False(t, entry.ExpiresAt.IsZero())
}

func TestJoinUnknownGame(t *testing.T) {
	ctx := context.Background()
	uc := setupQueue(t, nil)

	_, err := uc.Join(ctx, "ghost", "alice", "", "", "")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestSnapshotHidesViewerAndPartners(t *testing.T) {
	ctx := context.Background()
	uc := setupQueue(t, map[string][]string{"alice": {"bob"}})

	_, err := uc.Join(ctx, "g1", "alice", "", "", "")
	require.NoError(t, err)
	_, err = uc.Join(ctx, "g1", "bob", "", "", "")
	require.NoError(t, err)
	_, err = uc.Join(ctx, "g1", "carol", "", "", "")
	require.NoError(t, err)

	// alice sees neither herself nor bob, her existing chat partner.
	visible, err := uc.Snapshot(ctx, "g1", "alice")
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "carol", visible[0].UserID)

	// carol has no partners, so she sees everyone but herself.
	visible, err = uc.Snapshot(ctx, "g1", "carol")
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestHeartbeatRequiresMembership(t *testing.T) {
	ctx := context.Background()
	uc := setupQueue(t, nil)

	err := uc.Heartbeat(ctx, "g1", "alice")
	assert.ErrorIs(t, err, domain.ErrQueueEntryNotFound)

	_, err = uc.Join(ctx, "g1", "alice", "", "", "")
	require.NoError(t, err)
	require.NoError(t, uc.Heartbeat(ctx, "g1", "alice"))
}

func TestLeaveRemovesFromSnapshot(t *testing.T) {
	ctx := context.Background()
	uc := setupQueue(t, nil)

	_, err := uc.Join(ctx, "g1", "alice", "", "", "")
	require.NoError(t, err)
	require.NoError(t, uc.Leave(ctx, "g1", "alice"))

	visible, err := uc.Snapshot(ctx, "g1", "bob")
	require.NoError(t, err)
	assert.Empty(t, visible)
}
