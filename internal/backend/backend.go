// Package backend opens the service.Service selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"evotodo/internal/backend/googletasks"
	"evotodo/internal/backend/httpapi"
	"evotodo/internal/backend/local"
	"evotodo/internal/config"
	"evotodo/internal/service"
)

// Open returns the configured backend. A missing credential is reported as
// service.ErrUnauthorized. The result may implement io.Closer and
// service.Agent.
func Open(ctx context.Context, cfg *config.Config) (service.Service, error) {
	log := cfg.Logger()
	switch cfg.Backend {
	case config.BackendHTTP:
		token, err := cfg.LoadToken()
		if err != nil {
			return nil, authError(err)
		}
		return httpapi.New(cfg.ServerURL, oauth2.StaticTokenSource(token),
			httpapi.WithAgentURL(cfg.AgentBaseURL()),
			httpapi.WithTimeout(cfg.Timeout),
			httpapi.WithLogger(log.Named("http")),
		), nil

	case config.BackendLocal:
		log.Debug("opening local database", zap.String("path", cfg.DatabasePath()))
		s, err := local.Open(ctx, cfg.DatabasePath())
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.BackendGoogleTasks:
		if !cfg.HasOAuthClient() {
			return nil, fmt.Errorf("%w: %s not found in %s", service.ErrUnauthorized, config.OAuthClientFile, cfg.Dir)
		}
		if !cfg.HasToken() {
			return nil, authError(config.ErrNotLoggedIn)
		}
		c, err := googletasks.New(ctx, cfg)
		if err != nil {
			return nil, authError(err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
}

// NeedsLogin reports whether the configured backend uses a stored credential.
func NeedsLogin(cfg *config.Config) bool {
	return cfg.Backend != config.BackendLocal
}

func authError(err error) error {
	if errors.Is(err, config.ErrNotLoggedIn) {
		return fmt.Errorf("%w (run: evotodo login)", service.ErrUnauthorized)
	}
	return fmt.Errorf("%w: %v", service.ErrUnauthorized, err)
}
