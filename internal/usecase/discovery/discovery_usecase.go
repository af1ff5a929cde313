package discovery

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/repository"
	"github.com/orbitapp/orbit-backend/internal/usecase/chat"
)

type DiscoveryUseCase struct {
	userRepo repository.UserRepository
	gameRepo repository.GameRepository
	chatRepo repository.ChatRepository
	chatUC   *chat.ChatUseCase

	// randInt is rand.Intn unless a test injects a deterministic pick.
	randInt func(n int) int
}

func NewDiscoveryUseCase(
	userRepo repository.UserRepository,
	gameRepo repository.GameRepository,
	chatRepo repository.ChatRepository,
	chatUC *chat.ChatUseCase,
) *DiscoveryUseCase {
	return &DiscoveryUseCase{
		userRepo: userRepo,
		gameRepo: gameRepo,
		chatRepo: chatRepo,
		chatUC:   chatUC,
		randInt:  rand.Intn,
	}
}

// CandidateResponse is the discovered profile plus their played games
// resolved against the catalog, in catalog order.
type CandidateResponse struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	Gender         *string  `json:"gender"`
	Bio            *string  `json:"bio"`
	ProfileImage   *string  `json:"profile_image"`
	FavoriteGenres []string `json:"favorite_genres"`
	GamesPlayed    []string `json:"games_played"`
}

// NextCandidate picks one random discoverable user outside the exclusion
// set. The exclusion set is the requester, their existing chat partners
// (recomputed on every call, never cached), and the ids the caller already
// saw this session.
func (uc *DiscoveryUseCase) NextCandidate(ctx context.Context, requesterID string, seen []string) (*CandidateResponse, error) {
	partners, err := uc.chatRepo.PartnerIDs(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat partners: %w", err)
	}

	excluded := make(map[string]bool, len(partners)+len(seen)+1)
	excluded[requesterID] = true
	for _, id := range partners {
		excluded[id] = true
	}
	for _, id := range seen {
		excluded[id] = true
	}

	users, err := uc.userRepo.ListDiscoverable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list discoverable users: %w", err)
	}

	pool := make([]*domain.User, 0, len(users))
	for _, u := range users {
		if !excluded[u.ID] {
			pool = append(pool, u)
		}
	}
	if len(pool) == 0 {
		return nil, domain.ErrNoCandidates
	}

	candidate := pool[uc.randInt(len(pool))]

	games, err := uc.gameRepo.ListPlayedBy(ctx, candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve played games: %w", err)
	}
	titles := make([]string, 0, len(games))
	for _, g := range games {
		titles = append(titles, g.Title)
	}

	return &CandidateResponse{
		ID:             candidate.ID,
		Username:       candidate.Username,
		Gender:         candidate.Gender,
		Bio:            candidate.Bio,
		ProfileImage:   candidate.ProfileImage,
		FavoriteGenres: candidate.FavoriteGenres,
		GamesPlayed:    titles,
	}, nil
}

// Invite opens a conversation with the candidate and sends the bounded
// opening message. No side effect happens before this call.
func (uc *DiscoveryUseCase) Invite(ctx context.Context, requesterID, candidateID, message string) (string, error) {
	return uc.chatUC.StartConversation(ctx, requesterID, candidateID, message)
}
