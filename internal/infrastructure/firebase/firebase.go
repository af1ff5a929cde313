package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/orbitapp/orbit-backend/internal/config"
)

// Clients bundles the identity-provider and blob-store handles the app uses.
type Clients struct {
	App  *firebase.App
	Auth *auth.Client
}

// NewClients initializes the Firebase app and its auth client.
func NewClients(ctx context.Context, cfg *config.FirebaseConfig) (*Clients, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{
		StorageBucket: cfg.StorageBucket,
	}, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}

	return &Clients{App: app, Auth: authClient}, nil
}
