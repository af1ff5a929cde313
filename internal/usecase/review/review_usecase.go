package review

import (
	"context"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/repository"
)

type ReviewUseCase struct {
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
}

func NewReviewUseCase(reviewRepo repository.ReviewRepository, userRepo repository.UserRepository) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
	}
}

type SubmitReviewRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Body   string `json:"body" binding:"max=2000"`
}

// Submit records the user's one-shot review, snapshotting the username at
// submission time. A second submission fails with domain.ErrReviewExists.
func (uc *ReviewUseCase) Submit(ctx context.Context, userID string, req *SubmitReviewRequest) (*domain.Review, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		UserID:   user.ID,
		Username: user.Username,
		Rating:   req.Rating,
		Body:     req.Body,
	}
	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (uc *ReviewUseCase) MyReview(ctx context.Context, userID string) (*domain.Review, error) {
	return uc.reviewRepo.GetByUserID(ctx, userID)
}
