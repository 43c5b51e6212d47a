// Package cli is an interactive front end for the session manager: a small
// REPL driving login, profile, refresh and biometric flows against a live
// identity provider.
package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/sessionkeeper/internal/biometric"
	"github.com/dmitrijs2005/sessionkeeper/internal/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/cryptox"
	"github.com/dmitrijs2005/sessionkeeper/internal/filex"
	"github.com/dmitrijs2005/sessionkeeper/internal/identity"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/session"
	"github.com/dmitrijs2005/sessionkeeper/internal/store"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	manager *session.Manager
	reader  *bufio.Reader
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	dataDir, err := filex.EnsureSubdDir("data")
	if err != nil {
		return nil, err
	}

	secret, err := cryptox.LoadOrCreateDeviceSecret(filepath.Join(dataDir, cfg.DeviceSecretFile))
	if err != nil {
		return nil, err
	}

	db, err := store.InitDatabase(ctx, filepath.Join(dataDir, cfg.DatabaseDSN))
	if err != nil {
		return nil, err
	}

	st := store.NewSQLiteStore(db, cryptox.DeriveSealKey(secret))
	id := identity.NewHTTPClient(cfg.IdentityEndpointAddr, cfg.RequestTimeout)

	reader := bufio.NewReader(os.Stdin)
	bio := biometric.NewConsoleProvider(reader, os.Stdout)

	m := session.NewManager(st, id, bio, cfg.RefreshThreshold, cfg.RequestTimeout, logger)

	return &App{config: cfg, manager: m, reader: reader}, nil
}

func (a *App) isLoggedIn() bool {
	return a.manager.CurrentSession() != nil
}

// Run restores any persisted session and enters the REPL. The manager is
// shut down when the loop exits.
func (a *App) Run(ctx context.Context) {
	defer a.manager.Close()
	a.manager.Restore(ctx)
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) status() string {
	if u := a.manager.CurrentUser(); u != nil {
		return u.Email
	}
	return "not logged in"
}
