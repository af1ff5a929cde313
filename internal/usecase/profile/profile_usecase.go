package profile

import (
	"context"
	"fmt"
	"path"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/infrastructure/storage"
	"github.com/orbitapp/orbit-backend/internal/logger"
	"github.com/orbitapp/orbit-backend/internal/repository"
)

const defaultProfileImagePath = "profileImages/defaultProfileImage.png"

type ProfileUseCase struct {
	userRepo repository.UserRepository
	gameRepo repository.GameRepository
	blobs    storage.BlobStore
}

func NewProfileUseCase(
	userRepo repository.UserRepository,
	gameRepo repository.GameRepository,
	blobs storage.BlobStore,
) *ProfileUseCase {
	return &ProfileUseCase{
		userRepo: userRepo,
		gameRepo: gameRepo,
		blobs:    blobs,
	}
}

// ProfileResponse is the full profile view, with the image reference
// resolved to a fetchable URL and the played set resolved to titles.
type ProfileResponse struct {
	*domain.User
	ProfileImageURL string   `json:"profile_image_url"`
	GamesPlayed     []string `json:"games_played"`
}

type UpdateProfileRequest struct {
	Username       string   `json:"username" binding:"required,min=2,max=32"`
	Gender         *string  `json:"gender"`
	Bio            *string  `json:"bio" binding:"omitempty,max=500"`
	FavoriteGenres []string `json:"favorite_genres"`
	Platforms      []string `json:"platforms"`
	EmailConsent   bool     `json:"email_consent"`
}

// SurveyRequest is the single batched onboarding write.
type SurveyRequest struct {
	Gender         *string  `json:"gender"`
	Bio            *string  `json:"bio" binding:"omitempty,max=500"`
	FavoriteGenres []string `json:"favorite_genres" binding:"required,min=1"`
	Platforms      []string `json:"platforms" binding:"required,min=1"`
	SelectedGames  []string `json:"selected_games" binding:"required,min=1"`
	EmailConsent   bool     `json:"email_consent"`
}

func (uc *ProfileUseCase) GetProfile(ctx context.Context, userID string) (*ProfileResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	games, err := uc.gameRepo.ListPlayedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(games))
	for _, g := range games {
		titles = append(titles, g.Title)
	}

	return &ProfileResponse{
		User:            user,
		ProfileImageURL: uc.imageURL(ctx, user.ProfileImage),
		GamesPlayed:     titles,
	}, nil
}

func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*ProfileResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Username = req.Username
	user.Gender = req.Gender
	user.Bio = req.Bio
	user.FavoriteGenres = req.FavoriteGenres
	user.Platforms = req.Platforms
	user.EmailConsent = req.EmailConsent

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return uc.GetProfile(ctx, userID)
}

// CompleteSurvey applies the one-time onboarding update. A second attempt
// fails with domain.ErrSurveyCompleted.
func (uc *ProfileUseCase) CompleteSurvey(ctx context.Context, userID string, req *SurveyRequest) error {
	return uc.userRepo.CompleteSurvey(ctx, userID, &repository.SurveyUpdate{
		Gender:         req.Gender,
		Bio:            req.Bio,
		FavoriteGenres: req.FavoriteGenres,
		Platforms:      req.Platforms,
		SelectedGames:  req.SelectedGames,
		EmailConsent:   req.EmailConsent,
	})
}

// UploadProfileImage stores the image (capped at 2 MB) and points the
// profile at it.
func (uc *ProfileUseCase) UploadProfileImage(ctx context.Context, userID, filename, contentType string, data []byte) (string, error) {
	if len(data) > storage.MaxImageBytes {
		return "", domain.ErrImageTooLarge
	}

	blobPath := fmt.Sprintf("profileImages/%s%s", userID, path.Ext(filename))
	if _, err := uc.blobs.Upload(ctx, blobPath, data, contentType); err != nil {
		return "", err
	}
	if err := uc.userRepo.UpdateProfileImage(ctx, userID, blobPath); err != nil {
		return "", err
	}
	return uc.imageURL(ctx, &blobPath), nil
}

// Heartbeat advances last_seen while a messaging view is open.
func (uc *ProfileUseCase) Heartbeat(ctx context.Context, userID string) error {
	return uc.userRepo.Heartbeat(ctx, userID)
}

func (uc *ProfileUseCase) imageURL(ctx context.Context, imagePath *string) string {
	p := defaultProfileImagePath
	if imagePath != nil && *imagePath != "" {
		p = *imagePath
	}
	url, err := uc.blobs.DownloadURL(ctx, p)
	if err != nil {
		logger.Warn("failed to sign profile image url", "path", p, "error", err)
		return ""
	}
	return url
}
