package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/repository"
	"github.com/orbitapp/orbit-backend/internal/usecase/catalog"
)

type stubGameRepo struct {
	repository.GameRepository
	popularity map[string]int
	played     map[string]map[string]bool
}

func (r *stubGameRepo) SelectForUser(_ context.Context, userID, gameID string) (int, error) {
	if _, ok := r.popularity[gameID]; !ok {
		return 0, domain.ErrGameNotFound
	}
	r.popularity[gameID]++
	if r.played[userID] == nil {
		r.played[userID] = map[string]bool{}
	}
	r.played[userID][gameID] = true
	return r.popularity[gameID], nil
}

func TestSelectGameCountsEverySelection(t *testing.T) {
	ctx := context.Background()
	repo := &stubGameRepo{popularity: map[string]int{"g1": 5}, played: map[string]map[string]bool{}}
	uc := catalog.NewCatalogUseCase(repo)

	resp, err := uc.SelectGame(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Popularity)

	// Repeat selections by the same user keep counting; only played-set
	// membership is deduplicated.
	resp, err = uc.SelectGame(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Popularity)
	assert.True(t, repo.played["u1"]["g1"])
	assert.Len(t, repo.played["u1"], 1)
}

func TestSelectGameUnknownGame(t *testing.T) {
	ctx := context.Background()
	uc := catalog.NewCatalogUseCase(&stubGameRepo{popularity: map[string]int{}})

	_, err := uc.SelectGame(ctx, "u1", "ghost")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}
