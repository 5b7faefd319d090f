package setup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/itchan-dev/authgate/backend/internal/handler"
	"github.com/itchan-dev/authgate/backend/internal/proxy"
	"github.com/itchan-dev/authgate/backend/internal/service"
	"github.com/itchan-dev/authgate/backend/internal/storage/pg"
	"github.com/itchan-dev/authgate/backend/internal/utils/email"
	"github.com/itchan-dev/authgate/shared/config"
	"github.com/itchan-dev/authgate/shared/crypto"
	"github.com/itchan-dev/authgate/shared/jwt"
	"github.com/itchan-dev/authgate/shared/logger"
	"github.com/itchan-dev/authgate/shared/middleware"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Completions    http.Handler
	IsHTTPS        bool
}

// SetupDependencies connects to the database, applies migrations and wires
// the services together.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(ctx); err != nil {
		storage.Cleanup()
		return nil, err
	}

	completions, err := completionHandler(cfg)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	tokens := jwt.New(cfg.JwtKey())
	auth := service.NewAuth(storage, notifier(cfg), tokens, crypto.NewBcryptHasher(cfg.Public.BcryptCost), &cfg.Public)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Handler:        handler.New(auth, storage, cfg),
		AuthMiddleware: middleware.NewAuth(tokens),
		Completions:    completions,
		IsHTTPS:        strings.HasPrefix(cfg.BaseURL(), "https://"),
	}, nil
}

func notifier(cfg *config.Config) service.Notifier {
	if cfg.Private.Email.SMTPServer == "" {
		logger.Log.Warn("smtp server is not configured, verification links will be logged")
		return email.LogNotifier{}
	}
	return email.New(&cfg.Private.Email)
}

func completionHandler(cfg *config.Config) (http.Handler, error) {
	p, err := proxy.New(cfg.Public.Completion, cfg.Private.CompletionAPIKey)
	if errors.Is(err, proxy.ErrNotConfigured) {
		logger.Log.Warn("completion upstream is not configured")
		return http.HandlerFunc(proxy.Unavailable), nil
	}
	if err != nil {
		return nil, fmt.Errorf("completion proxy: %w", err)
	}
	return p, nil
}
