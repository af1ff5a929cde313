package repository

import (
	"context"

	"github.com/orbitapp/orbit-backend/internal/domain"
)

type ReviewRepository interface {
	// Create inserts the review and flips the user's done_review flag in one
	// transaction. A second submission fails with domain.ErrReviewExists.
	Create(ctx context.Context, review *domain.Review) error
	GetByUserID(ctx context.Context, userID string) (*domain.Review, error)
	List(ctx context.Context, search string, limit, offset int) ([]*domain.Review, error)
	Count(ctx context.Context, search string) (int, error)
}
