package bootstrap

import (
	"context"
	"errors"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	identityclient "github.com/honari/reading-backend/internal/client/identity"
	"github.com/honari/reading-backend/internal/config"
	"github.com/honari/reading-backend/internal/store"
)

// ResolveIdentityAPIKey prefers the Secret Manager secret over the plain
// environment value.
func ResolveIdentityAPIKey(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.IdentityAPIKeySecret == "" {
		if cfg.IdentityAPIKey == "" && cfg.AuthEmulatorHost == "" {
			return "", errors.New("IDENTITYAPIKEY or IDENTITYAPIKEYSECRET must be set")
		}
		return cfg.IdentityAPIKey, nil
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	return store.NewSecretsStore(client, cfg.ProjectID).Access(ctx, cfg.IdentityAPIKeySecret)
}

// InitIdentity points the Identity Toolkit client at the Auth emulator when
// FIREBASE_AUTH_EMULATOR_HOST is set.
func InitIdentity(ctx context.Context, cfg *config.Config, apiKey string, admin *auth.Client) (*identityclient.Adapter, error) {
	var opts []option.ClientOption
	if cfg.AuthEmulatorHost != "" {
		if apiKey == "" {
			apiKey = "emulator"
		}
		opts = append(opts, option.WithEndpoint(identityclient.EmulatorEndpoint(cfg.AuthEmulatorHost)))
	}
	return identityclient.NewAdapter(ctx, apiKey, admin, opts...)
}
