package repository

import (
	"context"

	"github.com/orbitapp/orbit-backend/internal/domain"
)

// SurveyUpdate is the one batched write the onboarding flow performs.
type SurveyUpdate struct {
	Gender         *string
	Bio            *string
	FavoriteGenres []string
	Platforms      []string
	SelectedGames  []string
	EmailConsent   bool
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// CompleteSurvey applies the batched onboarding update and transitions
	// survey_completed false -> true exactly once.
	CompleteSurvey(ctx context.Context, userID string, upd *SurveyUpdate) error
	ListDiscoverable(ctx context.Context) ([]*domain.User, error)
	SetOnline(ctx context.Context, id string, online bool) error
	SetAdmin(ctx context.Context, id string, admin bool) error
	Heartbeat(ctx context.Context, id string) error
	UpdateProfileImage(ctx context.Context, id string, imagePath string) error
	List(ctx context.Context, search string, limit, offset int) ([]*domain.User, error)
	Count(ctx context.Context, search string) (int, error)
}
