package repository

import (
	"context"
	"time"

	"github.com/orbitapp/orbit-backend/internal/domain"
)

type QueueRepository interface {
	// Join upserts the entry for (entry.GameID, entry.UserID) with a fresh
	// liveness deadline. Last writer wins.
	Join(ctx context.Context, entry *domain.QueueEntry, ttl time.Duration) error
	// Leave removes the entry; no-op when absent.
	Leave(ctx context.Context, gameID, userID string) error
	// Renew extends the liveness deadline of an existing entry.
	Renew(ctx context.Context, gameID, userID string, ttl time.Duration) error
	// Snapshot returns all live entries for the game; expired entries are
	// filtered out even before the sweeper removes them.
	Snapshot(ctx context.Context, gameID string) ([]*domain.QueueEntry, error)
	// SweepExpired removes entries whose deadline passed and reports the
	// games that changed.
	SweepExpired(ctx context.Context) ([]string, error)
}
