package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/repository"
	redisrepo "github.com/orbitapp/orbit-backend/internal/repository/redis"
)

func setupRepo(t *testing.T) repository.QueueRepository {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return redisrepo.NewQueueRepository(client)
}

func entry(gameID, userID string) *domain.QueueEntry {
	return &domain.QueueEntry{
		GameID:    gameID,
		UserID:    userID,
		GameTitle: "Valorant",
		Bio:       "looking for a duo",
		GameType:  "ranked",
		GameRank:  "gold",
		Username:  "player_" + userID,
	}
}

func TestJoinAndSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	require.NoError(t, repo.Join(ctx, entry("g1", "u1"), time.Minute))
	require.NoError(t, repo.Join(ctx, entry("g1", "u2"), time.Minute))
	require.NoError(t, repo.Join(ctx, entry("g2", "u3"), time.Minute))

	entries, err := repo.Snapshot(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byUser := map[string]*domain.QueueEntry{}
	for _, e := range entries {
		byUser[e.UserID] = e
	}
	require.Contains(t, byUser, "u1")
	require.Contains(t, byUser, "u2")
	assert.Equal(t, "Valorant", byUser["u1"].GameTitle)
	assert.Equal(t, "looking for a duo", byUser["u1"].Bio)
	assert.False(t, byUser["u1"].ExpiresAt.IsZero())
}

func TestRejoinOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	first := entry("g1", "u1")
	require.NoError(t, repo.Join(ctx, first, time.Minute))

	second := entry("g1", "u1")
	second.GameRank = "platinum"
	require.NoError(t, repo.Join(ctx, second, time.Minute))

	entries, err := repo.Snapshot(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "platinum", entries[0].GameRank)
}

func TestLeave(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	require.NoError(t, repo.Join(ctx, entry("g1", "u1"), time.Minute))
	require.NoError(t, repo.Leave(ctx, "g1", "u1"))

	entries, err := repo.Snapshot(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Leaving a queue you are not in is a no-op.
	require.NoError(t, repo.Leave(ctx, "g1", "u1"))
}

func TestRenew(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	e := entry("g1", "u1")
	require.NoError(t, repo.Join(ctx, e, time.Minute))
	originalDeadline := e.ExpiresAt

	require.NoError(t, repo.Renew(ctx, "g1", "u1", time.Hour))

	entries, err := repo.Snapshot(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].ExpiresAt.After(originalDeadline))
}

func TestRenewMissingEntry(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	err := repo.Renew(ctx, "g1", "ghost", time.Minute)
	assert.ErrorIs(t, err, domain.ErrQueueEntryNotFound)
}

func TestExpiredEntriesHiddenFromSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	// A negative TTL puts the deadline in the past immediately.
	require.NoError(t, repo.Join(ctx, entry("g1", "stale"), -time.Minute))
	require.NoError(t, repo.Join(ctx, entry("g1", "live"), time.Minute))

	entries, err := repo.Snapshot(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "live", entries[0].UserID)
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	require.NoError(t, repo.Join(ctx, entry("g1", "stale"), -time.Minute))
	require.NoError(t, repo.Join(ctx, entry("g1", "live"), time.Hour))
	require.NoError(t, repo.Join(ctx, entry("g2", "fresh"), time.Hour))

	swept, err := repo.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, swept)

	entries, err := repo.Snapshot(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "live", entries[0].UserID)

	// Nothing left to sweep.
	swept, err = repo.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Empty(t, swept)
}
