package queue

import (
	"context"
	"time"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/infrastructure/stream"
	"github.com/orbitapp/orbit-backend/internal/logger"
	"github.com/orbitapp/orbit-backend/internal/repository"
)

type QueueUseCase struct {
	queueRepo repository.QueueRepository
	userRepo  repository.UserRepository
	gameRepo  repository.GameRepository
	chatRepo  repository.ChatRepository
	broker    *stream.Broker
	entryTTL  time.Duration
}

func NewQueueUseCase(
	queueRepo repository.QueueRepository,
	userRepo repository.UserRepository,
	gameRepo repository.GameRepository,
	chatRepo repository.ChatRepository,
	broker *stream.Broker,
	entryTTL time.Duration,
) *QueueUseCase {
	return &QueueUseCase{
		queueRepo: queueRepo,
		userRepo:  userRepo,
		gameRepo:  gameRepo,
		chatRepo:  chatRepo,
		broker:    broker,
		entryTTL:  entryTTL,
	}
}

// Join puts the user into the game's queue, snapshotting display fields from
// the stored profile at join time. Re-joining overwrites.
func (uc *QueueUseCase) Join(ctx context.Context, gameID, userID, bio, gameType, gameRank string) (*domain.QueueEntry, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	game, err := uc.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	entry := &domain.QueueEntry{
		GameID:       game.ID,
		UserID:       user.ID,
		GameTitle:    game.Title,
		Bio:          bio,
		GameType:     gameType,
		GameRank:     gameRank,
		Username:     user.Username,
		ProfileImage: user.ProfileImage,
		Gender:       user.Gender,
	}
	if err := uc.queueRepo.Join(ctx, entry, uc.entryTTL); err != nil {
		return nil, err
	}

	uc.notify(ctx, gameID, "join")
	return entry, nil
}

// Leave removes the entry; leaving a queue you are not in is a no-op.
func (uc *QueueUseCase) Leave(ctx context.Context, gameID, userID string) error {
	if err := uc.queueRepo.Leave(ctx, gameID, userID); err != nil {
		return err
	}
	uc.notify(ctx, gameID, "leave")
	return nil
}

// Heartbeat renews the liveness deadline of an existing entry. A client that
// stops renewing drops out of snapshots once the deadline passes.
func (uc *QueueUseCase) Heartbeat(ctx context.Context, gameID, userID string) error {
	return uc.queueRepo.Renew(ctx, gameID, userID, uc.entryTTL)
}

// Snapshot returns the live entries for the game minus the viewer and minus
// the viewer's existing chat partners. The partner set is recomputed on
// every call because it can grow mid-session.
func (uc *QueueUseCase) Snapshot(ctx context.Context, gameID, viewerID string) ([]*domain.QueueEntry, error) {
	entries, err := uc.queueRepo.Snapshot(ctx, gameID)
	if err != nil {
		return nil, err
	}

	partners, err := uc.chatRepo.PartnerIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	excluded := make(map[string]bool, len(partners)+1)
	excluded[viewerID] = true
	for _, id := range partners {
		excluded[id] = true
	}

	visible := make([]*domain.QueueEntry, 0, len(entries))
	for _, e := range entries {
		if !excluded[e.UserID] {
			visible = append(visible, e)
		}
	}
	return visible, nil
}

// Subscribe delivers a hint whenever any entry for the game changes.
func (uc *QueueUseCase) Subscribe(ctx context.Context, gameID string) (<-chan string, func()) {
	return uc.broker.Subscribe(ctx, stream.QueueChannel(gameID))
}

// SweepExpired drops entries whose deadline passed and notifies the affected
// games. Wired to the cron scheduler.
func (uc *QueueUseCase) SweepExpired(ctx context.Context) error {
	gameIDs, err := uc.queueRepo.SweepExpired(ctx)
	if err != nil {
		return err
	}
	for _, gameID := range gameIDs {
		uc.notify(ctx, gameID, "expire")
	}
	return nil
}

func (uc *QueueUseCase) notify(ctx context.Context, gameID, kind string) {
	if err := uc.broker.Publish(ctx, stream.QueueChannel(gameID), kind); err != nil {
		logger.Warn("failed to publish queue event", "game_id", gameID, "error", err)
	}
}
