package repository

import (
	"context"

	"github.com/orbitapp/orbit-backend/internal/domain"
)

type GameRepository interface {
	Create(ctx context.Context, game *domain.Game) error
	GetByID(ctx context.Context, id string) (*domain.Game, error)
	List(ctx context.Context, search string, limit, offset int) ([]*domain.Game, error)
	Count(ctx context.Context, search string) (int, error)
	ListPopular(ctx context.Context, limit int) ([]*domain.Game, error)
	// ListPlayedBy resolves a user's played set against the catalog,
	// in catalog order.
	ListPlayedBy(ctx context.Context, userID string) ([]*domain.Game, error)
	// SelectForUser atomically bumps popularity and records played
	// membership for the user; both records must exist or nothing happens.
	// Returns the new popularity. Deliberately not idempotent per user.
	SelectForUser(ctx context.Context, userID, gameID string) (int, error)
	UpdateImage(ctx context.Context, gameID, imagePath string) error
}
