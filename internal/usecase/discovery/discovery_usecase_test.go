package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/repository"
)

type stubUserRepo struct {
	repository.UserRepository
	discoverable []*domain.User
}

func (r *stubUserRepo) ListDiscoverable(context.Context) ([]*domain.User, error) {
	return r.discoverable, nil
}

type stubGameRepo struct {
	repository.GameRepository
	played map[string][]*domain.Game
}

func (r *stubGameRepo) ListPlayedBy(_ context.Context, userID string) ([]*domain.Game, error) {
	return r.played[userID], nil
}

type stubChatRepo struct {
	repository.ChatRepository
	partners map[string][]string
}

func (r *stubChatRepo) PartnerIDs(_ context.Context, userID string) ([]string, error) {
	return r.partners[userID], nil
}

func discoverableUser(id string) *domain.User {
	return &domain.User{ID: id, Username: "user_" + id, EmailConsent: true, SurveyCompleted: true}
}

func setupDiscovery(pool []*domain.User, partners map[string][]string) *DiscoveryUseCase {
	uc := NewDiscoveryUseCase(
		&stubUserRepo{discoverable: pool},
		&stubGameRepo{played: map[string][]*domain.Game{
			"b": {{ID: "g1", Title: "Dota 2"}, {ID: "g2", Title: "Valorant"}},
		}},
		&stubChatRepo{partners: partners},
		nil,
	)
	// Deterministic pick: always the first of the filtered pool.
	uc.randInt = func(int) int { return 0 }
	return uc
}

func TestNextCandidateExcludesSelfPartnersAndSeen(t *testing.T) {
	ctx := context.Background()
	pool := []*domain.User{
		discoverableUser("a"), // requester
		discoverableUser("b"),
		discoverableUser("c"), // existing chat partner
		discoverableUser("d"), // already seen this session
	}
	uc := setupDiscovery(pool, map[string][]string{"a": {"c"}})

	candidate, err := uc.NextCandidate(ctx, "a", []string{"d"})
	require.NoError(t, err)
	assert.Equal(t, "b", candidate.ID)
	assert.Equal(t, []string{"Dota 2", "Valorant"}, candidate.GamesPlayed)
}

func TestNextCandidateEmptyPool(t *testing.T) {
	ctx := context.Background()
	pool := []*domain.User{
		discoverableUser("a"),
		discoverableUser("b"),
	}
	uc := setupDiscovery(pool, map[string][]string{"a": {"b"}})

	_, err := uc.NextCandidate(ctx, "a", nil)
	assert.ErrorIs(t, err, domain.ErrNoCandidates)
}

func TestNextCandidatePartnersRecomputedPerCall(t *testing.T) {
	ctx := context.Background()
	chatRepo := &stubChatRepo{partners: map[string][]string{}}
	uc := NewDiscoveryUseCase(
		&stubUserRepo{discoverable: []*domain.User{discoverableUser("b")}},
		&stubGameRepo{},
		chatRepo,
		nil,
	)
	uc.randInt = func(int) int { return 0 }

	candidate, err := uc.NextCandidate(ctx, "a", nil)
	require.NoError(t, err)
	assert.Equal(t, "b", candidate.ID)

	// A conversation started mid-session removes the partner immediately.
	chatRepo.partners["a"] = []string{"b"}
	_, err = uc.NextCandidate(ctx, "a", nil)
	assert.ErrorIs(t, err, domain.ErrNoCandidates)
}
