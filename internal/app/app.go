package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/backend/remote"
	"github.com/vovakirdan/wirechat-client/internal/backend/sqlite"
	"github.com/vovakirdan/wirechat-client/internal/chat"
	"github.com/vovakirdan/wirechat-client/internal/config"
	"github.com/vovakirdan/wirechat-client/internal/ui"
)

// App wires a backend, the synchronization engine, and the terminal UI.
type App struct {
	cfg     config.Config
	backend chat.Backend
	closer  func() error
	log     *zerolog.Logger
}

// New constructs the application with the provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{cfg: cfg, log: logger}

	switch cfg.Mode {
	case config.ModeLocal:
		st, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		logger.Info().Str("db_path", cfg.DatabasePath).Msg("local store initialized")
		app.backend = st
		app.closer = st.Close
	case config.ModeRemote:
		app.backend = remote.New(cfg.ServerURL, cfg.Token, logger)
		logger.Info().Str("server_url", cfg.ServerURL).Msg("remote backend configured")
	}

	return app, nil
}

// Run resolves the identity, starts the engine, and blocks in the terminal
// UI until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	if st, ok := a.backend.(*sqlite.Store); ok {
		if a.cfg.Username != "" {
			user, err := st.Login(ctx, a.cfg.Username, a.cfg.Password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			a.log.Info().Str("user_id", user.ID).Str("username", a.cfg.Username).Msg("logged in")
		}
		if err := st.SeedDefaultRoom(ctx); err != nil {
			return fmt.Errorf("seed room: %w", err)
		}
	}

	user, err := a.backend.CurrentUser(ctx)
	if err != nil && !errors.Is(err, chat.ErrNoUser) {
		return fmt.Errorf("resolve identity: %w", err)
	}
	if user == nil {
		a.log.Warn().Msg("running unauthenticated; sending is disabled")
	}

	session := chat.NewSession(a.backend, a.cfg.Room, a.log)
	go session.Run(ctx)

	terminal := ui.New(session, user, os.Stdin, os.Stdout, a.log)
	return terminal.Run(ctx)
}

// cleanup closes backend resources.
func (a *App) cleanup() {
	if a.closer == nil {
		return
	}
	if err := a.closer(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close backend")
	} else {
		a.log.Info().Msg("backend closed")
	}
}
