package catalog

import (
	"context"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/repository"
)

type CatalogUseCase struct {
	gameRepo repository.GameRepository
}

func NewCatalogUseCase(gameRepo repository.GameRepository) *CatalogUseCase {
	return &CatalogUseCase{gameRepo: gameRepo}
}

type GameListResponse struct {
	Games []*domain.Game `json:"games"`
	Total int            `json:"total"`
}

type SelectGameResponse struct {
	GameID     string `json:"game_id"`
	Popularity int    `json:"popularity"`
}

func (uc *CatalogUseCase) ListGames(ctx context.Context, search string, limit, offset int) (*GameListResponse, error) {
	games, err := uc.gameRepo.List(ctx, search, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.gameRepo.Count(ctx, search)
	if err != nil {
		return nil, err
	}
	return &GameListResponse{Games: games, Total: total}, nil
}

func (uc *CatalogUseCase) PopularGames(ctx context.Context, limit int) ([]*domain.Game, error) {
	return uc.gameRepo.ListPopular(ctx, limit)
}

func (uc *CatalogUseCase) PlayedGames(ctx context.Context, userID string) ([]*domain.Game, error) {
	return uc.gameRepo.ListPlayedBy(ctx, userID)
}

// SelectGame bumps popularity and records played membership atomically.
// Every selection counts, including repeats by the same user.
func (uc *CatalogUseCase) SelectGame(ctx context.Context, userID, gameID string) (*SelectGameResponse, error) {
	popularity, err := uc.gameRepo.SelectForUser(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}
	return &SelectGameResponse{GameID: gameID, Popularity: popularity}, nil
}
