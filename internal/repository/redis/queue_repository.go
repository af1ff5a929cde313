package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/repository"
)

// Key layout:
//   queue:entries:<gameID>   hash  userID -> entry JSON
//   queue:deadlines:<gameID> zset  userID scored by liveness deadline
//   queue:games              set   gameIDs with at least one entry ever
const (
	entriesKeyPrefix   = "queue:entries:"
	deadlinesKeyPrefix = "queue:deadlines:"
	gamesKey           = "queue:games"
)

type queueRepository struct {
	client *redis.Client
}

func NewQueueRepository(client *redis.Client) repository.QueueRepository {
	return &queueRepository{client: client}
}

func entriesKey(gameID string) string   { return entriesKeyPrefix + gameID }
func deadlinesKey(gameID string) string { return deadlinesKeyPrefix + gameID }

func (r *queueRepository) Join(ctx context.Context, entry *domain.QueueEntry, ttl time.Duration) error {
	entry.PostedAt = time.Now().UTC()
	entry.ExpiresAt = entry.PostedAt.Add(ttl)

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, entriesKey(entry.GameID), entry.UserID, data)
	pipe.ZAdd(ctx, deadlinesKey(entry.GameID), redis.Z{
		Score:  float64(entry.ExpiresAt.Unix()),
		Member: entry.UserID,
	})
	pipe.SAdd(ctx, gamesKey, entry.GameID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *queueRepository) Leave(ctx context.Context, gameID, userID string) error {
	pipe := r.client.TxPipeline()
	pipe.HDel(ctx, entriesKey(gameID), userID)
	pipe.ZRem(ctx, deadlinesKey(gameID), userID)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *queueRepository) Renew(ctx context.Context, gameID, userID string, ttl time.Duration) error {
	raw, err := r.client.HGet(ctx, entriesKey(gameID), userID).Result()
	if err != nil {
		if err == redis.Nil {
			return domain.ErrQueueEntryNotFound
		}
		return err
	}

	var entry domain.QueueEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return fmt.Errorf("corrupt queue entry for %s/%s: %w", gameID, userID, err)
	}
	entry.ExpiresAt = time.Now().UTC().Add(ttl)

	data, err := json.Marshal(&entry)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, entriesKey(gameID), userID, data)
	pipe.ZAdd(ctx, deadlinesKey(gameID), redis.Z{
		Score:  float64(entry.ExpiresAt.Unix()),
		Member: userID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *queueRepository) Snapshot(ctx context.Context, gameID string) ([]*domain.QueueEntry, error) {
	now := time.Now().UTC()

	// Only members whose deadline has not passed; expired ones wait for the
	// sweeper but must never be shown.
	live, err := r.client.ZRangeByScore(ctx, deadlinesKey(gameID), &redis.ZRangeBy{
		Min: strconv.FormatInt(now.Unix(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(live) == 0 {
		return nil, nil
	}

	raws, err := r.client.HMGet(ctx, entriesKey(gameID), live...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.QueueEntry, 0, len(raws))
	for _, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		var entry domain.QueueEntry
		if err := json.Unmarshal([]byte(s), &entry); err != nil {
			continue
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

func (r *queueRepository) SweepExpired(ctx context.Context) ([]string, error) {
	gameIDs, err := r.client.SMembers(ctx, gamesKey).Result()
	if err != nil {
		return nil, err
	}

	now := strconv.FormatInt(time.Now().UTC().Unix(), 10)
	var swept []string
	for _, gameID := range gameIDs {
		expired, err := r.client.ZRangeByScore(ctx, deadlinesKey(gameID), &redis.ZRangeBy{
			Min: "-inf",
			Max: "(" + now,
		}).Result()
		if err != nil {
			return swept, err
		}
		if len(expired) == 0 {
			continue
		}

		pipe := r.client.TxPipeline()
		pipe.HDel(ctx, entriesKey(gameID), expired...)
		pipe.ZRem(ctx, deadlinesKey(gameID), toMembers(expired)...)
		if _, err := pipe.Exec(ctx); err != nil {
			return swept, err
		}
		swept = append(swept, gameID)
	}
	return swept, nil
}

func toMembers(ids []string) []interface{} {
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	return members
}
