package admin

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/infrastructure/storage"
	"github.com/orbitapp/orbit-backend/internal/repository"
)

// AdminUseCase is the read-mostly aggregation surface for the operator
// console, plus catalog maintenance.
type AdminUseCase struct {
	userRepo   repository.UserRepository
	gameRepo   repository.GameRepository
	reviewRepo repository.ReviewRepository
	blobs      storage.BlobStore
}

func NewAdminUseCase(
	userRepo repository.UserRepository,
	gameRepo repository.GameRepository,
	reviewRepo repository.ReviewRepository,
	blobs storage.BlobStore,
) *AdminUseCase {
	return &AdminUseCase{
		userRepo:   userRepo,
		gameRepo:   gameRepo,
		reviewRepo: reviewRepo,
		blobs:      blobs,
	}
}

type OverviewResponse struct {
	TotalUsers   int `json:"total_users"`
	TotalGames   int `json:"total_games"`
	TotalReviews int `json:"total_reviews"`
}

type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

type CreateGameRequest struct {
	Title string `json:"title" binding:"required,min=1,max=100"`
}

func (uc *AdminUseCase) Overview(ctx context.Context) (*OverviewResponse, error) {
	users, err := uc.userRepo.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	games, err := uc.gameRepo.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	reviews, err := uc.reviewRepo.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	return &OverviewResponse{
		TotalUsers:   users,
		TotalGames:   games,
		TotalReviews: reviews,
	}, nil
}

func (uc *AdminUseCase) ListUsers(ctx context.Context, search string, page, pageSize int) (*Page[*domain.User], error) {
	page, pageSize = clampPage(page, pageSize)
	items, err := uc.userRepo.List(ctx, search, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	total, err := uc.userRepo.Count(ctx, search)
	if err != nil {
		return nil, err
	}
	return &Page[*domain.User]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (uc *AdminUseCase) ListGames(ctx context.Context, search string, page, pageSize int) (*Page[*domain.Game], error) {
	page, pageSize = clampPage(page, pageSize)
	items, err := uc.gameRepo.List(ctx, search, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	total, err := uc.gameRepo.Count(ctx, search)
	if err != nil {
		return nil, err
	}
	return &Page[*domain.Game]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (uc *AdminUseCase) ListReviews(ctx context.Context, search string, page, pageSize int) (*Page[*domain.Review], error) {
	page, pageSize = clampPage(page, pageSize)
	items, err := uc.reviewRepo.List(ctx, search, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	total, err := uc.reviewRepo.Count(ctx, search)
	if err != nil {
		return nil, err
	}
	return &Page[*domain.Review]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (uc *AdminUseCase) CreateGame(ctx context.Context, req *CreateGameRequest) (*domain.Game, error) {
	game := &domain.Game{
		ID:    uuid.NewString(),
		Title: req.Title,
	}
	if err := uc.gameRepo.Create(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// ReplaceGameImage uploads a new image (capped at 2 MB) and points the game
// record at it. Returns a fetchable URL.
func (uc *AdminUseCase) ReplaceGameImage(ctx context.Context, gameID, filename, contentType string, data []byte) (string, error) {
	if len(data) > storage.MaxImageBytes {
		return "", domain.ErrImageTooLarge
	}

	game, err := uc.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return "", err
	}

	blobPath := fmt.Sprintf("gamesImages/%s%s", game.ID, path.Ext(filename))
	if _, err := uc.blobs.Upload(ctx, blobPath, data, contentType); err != nil {
		return "", err
	}
	if err := uc.gameRepo.UpdateImage(ctx, game.ID, blobPath); err != nil {
		return "", err
	}
	return uc.blobs.DownloadURL(ctx, blobPath)
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
