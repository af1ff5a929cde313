package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/logger"
	"github.com/orbitapp/orbit-backend/internal/repository"
)

// TokenVerifier is the slice of the identity provider the middleware needs.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type AuthUseCase struct {
	authClient *fbauth.Client
	userRepo   repository.UserRepository
	adminUIDs  []string
}

func NewAuthUseCase(authClient *fbauth.Client, userRepo repository.UserRepository, adminUIDs []string) *AuthUseCase {
	return &AuthUseCase{
		authClient: authClient,
		userRepo:   userRepo,
		adminUIDs:  adminUIDs,
	}
}

type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Username     string `json:"username" binding:"required,min=2,max=32"`
	Birthdate    string `json:"birthdate" binding:"required,birthdate"`
	EmailConsent bool   `json:"email_consent"`
}

// Register creates the identity-provider account and the minimal profile
// row. The profile is enriched later by the onboarding survey.
func (uc *AuthUseCase) Register(ctx context.Context, req *RegisterRequest) (*domain.User, error) {
	birthdate, err := time.Parse("2006-01-02", req.Birthdate)
	if err != nil {
		return nil, fmt.Errorf("invalid birthdate: %w", err)
	}

	record, err := uc.authClient.CreateUser(ctx, (&fbauth.UserToCreate{}).
		Email(req.Email).
		Password(req.Password).
		DisplayName(req.Username))
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	user := &domain.User{
		ID:           record.UID,
		Username:     req.Username,
		Birthdate:    birthdate,
		EmailConsent: req.EmailConsent,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		// Best effort: don't leave an orphaned identity behind.
		if delErr := uc.authClient.DeleteUser(ctx, record.UID); delErr != nil {
			logger.Error("failed to roll back identity after profile create failure",
				"uid", record.UID, "error", delErr)
		}
		return nil, err
	}
	return user, nil
}

// VerifyToken validates a bearer ID token and returns the subject uid.
func (uc *AuthUseCase) VerifyToken(ctx context.Context, idToken string) (string, error) {
	token, err := uc.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}

// OpenSession marks the user online after a client-side sign-in and returns
// the profile.
func (uc *AuthUseCase) OpenSession(ctx context.Context, uid string) (*domain.User, error) {
	if err := uc.userRepo.SetOnline(ctx, uid, true); err != nil {
		return nil, err
	}
	return uc.userRepo.GetByID(ctx, uid)
}

// Logout revokes refresh tokens and flips the online flag.
func (uc *AuthUseCase) Logout(ctx context.Context, uid string) error {
	if err := uc.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return uc.userRepo.SetOnline(ctx, uid, false)
}

// GetUser loads a profile by uid; used by the admin gate.
func (uc *AuthUseCase) GetUser(ctx context.Context, uid string) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, uid)
}

// SeedAdmins grants the operator role to the configured uids at startup.
// Unknown uids are logged and skipped; they may not have registered yet.
func (uc *AuthUseCase) SeedAdmins(ctx context.Context) {
	for _, uid := range uc.adminUIDs {
		if err := uc.userRepo.SetAdmin(ctx, uid, true); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				logger.Warn("configured admin uid has no profile yet", "uid", uid)
				continue
			}
			logger.Error("failed to seed admin", "uid", uid, "error", err)
		}
	}
}
