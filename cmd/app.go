package cmd

import (
	"fmt"
	"io"

	"github.com/iksnae/readgye-cli/internal"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

// app bundles everything a command needs once configuration is resolved
type app struct {
	cfg   *internal.Config
	db    *sqlx.DB
	store *internal.SessionStore
	auth  *internal.Authenticator
	cache *internal.CacheManager
}

// loadApp resolves config, opens the local store and restores the session
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := internal.LoadConfig(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Paths.Ensure(); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := internal.OpenDatabase(cfg.Paths.DBPath())
	if err != nil {
		return nil, err
	}

	store := internal.NewSessionStore(db, cfg.Paths.DBPath())
	client := internal.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	auth := internal.NewAuthenticator(client, store, cfg.Guest)
	auth.Bootstrap(cmd.Context())

	return &app{
		cfg:   cfg,
		db:    db,
		store: store,
		auth:  auth,
		cache: internal.NewCacheManager(cfg.Paths.CacheDir),
	}, nil
}

// Close releases the local store
func (a *app) Close() error {
	return a.db.Close()
}

// client returns a token-bound client, or ErrNotAuthenticated
func (a *app) client() (*internal.Client, error) {
	if !a.auth.Session().HasToken() {
		return nil, internal.ErrNotAuthenticated
	}
	return a.auth.Client(), nil
}

// account keys the archive cache to the signed-in user
func (a *app) account() string {
	user := a.auth.Session().User
	if user == nil {
		return ""
	}
	if user.Email != "" {
		return user.Email
	}
	return user.ID
}

// useColor reports whether w gets styled output
func useColor(w io.Writer) bool {
	return !noColor && internal.ColorEnabled(w)
}

// withApp wraps a RunE body with loadApp and Close
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				internal.LogWarn("Failed to close local store: %v", err)
			}
		}()
		return fn(cmd, args, a)
	}
}
