package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honari/reading-backend/internal/bootstrap"
	"github.com/honari/reading-backend/internal/config"
	"github.com/honari/reading-backend/internal/handlers"
	"github.com/honari/reading-backend/internal/middleware"
	"github.com/honari/reading-backend/internal/ratelimit"
	"github.com/honari/reading-backend/internal/response"
	"github.com/honari/reading-backend/internal/router"
	"github.com/honari/reading-backend/internal/services"
	"github.com/honari/reading-backend/internal/store"
	"github.com/honari/reading-backend/internal/validation"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	ustore := store.NewUserStore(bs.Firestore)
	bkstore := store.NewBookStore(bs.Firestore)

	// services
	sessv := services.NewSessionService(bs.IdentityAdapter, ustore)
	catsv := services.NewCatalogService(bkstore, cfg.CatalogErrorPolicy)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Validator = validation.New()
	deps.SessionSvc = sessv
	deps.CatalogSvc = catsv

	// middleware
	authLimiter := ratelimit.New(cfg.AuthRateLimit, cfg.AuthRateBurst)
	defer authLimiter.Stop()

	// router
	r := router.NewRouter(deps, router.Options{
		Auth:        middleware.NewMiddleware(sessv, rh),
		AuthLimiter: middleware.RateLimit(authLimiter, rh, cfg.TrustedProxyHops),
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			bs.Log.Error("server shutdown failed", "error", err)
		}
	}()

	bs.Log.Info("server starting", "port", cfg.Port, "catalog_error_policy", string(cfg.CatalogErrorPolicy))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		exitOnError("server start failed", err, bs.Log)
	}
}
