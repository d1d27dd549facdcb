package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"

	identityclient "github.com/honari/reading-backend/internal/client/identity"
	"github.com/honari/reading-backend/internal/config"
	"github.com/honari/reading-backend/pkg/logger"
)

type Bootstrap struct {
	Log             *slog.Logger
	Firestore       *firestore.Client
	Firebase        *auth.Client
	IdentityAdapter *identityclient.Adapter
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.Firebase, err = InitFirebase(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}

	apiKey, err := ResolveIdentityAPIKey(applicationCtx, cfg)
	if err != nil {
		return bs, err
	}
	bs.IdentityAdapter, err = InitIdentity(applicationCtx, cfg, apiKey, bs.Firebase)
	if err != nil {
		return bs, err
	}

	return bs, nil
}

func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	return errors.Join(errList...)
}
