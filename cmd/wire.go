package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/recipebox/internal/auth"
	"github.com/desertthunder/recipebox/internal/backend"
	"github.com/desertthunder/recipebox/internal/models"
	"github.com/desertthunder/recipebox/internal/repositories"
	"github.com/desertthunder/recipebox/internal/shared"
)

// loadConfig reads the config file named by --config (when present), overlays the environment
// and applies the log level. Runners created with an explicit config skip the file.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if !r.configured {
		path := cmd.String("config")
		if path == "" {
			path = r.configPath
		}
		r.configPath = path

		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", path)
		}

		envFile := cmd.String("env")
		if envFile == "" {
			envFile = r.envFile
		}
		if err := shared.ApplyEnv(r.config, envFile); err != nil {
			return ctx, err
		}
		r.configured = true
	}

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))
	return ctx, nil
}

// database opens the local sqlite database once and runs pending migrations.
func (r *Runner) database() error {
	if r.db != nil {
		return nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	r.db = db
	return nil
}

// stack builds the authenticator, session and recipe repository selected by the config.
func (r *Runner) stack(ctx context.Context) error {
	if r.recipes != nil {
		return nil
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	if err := r.buildAuth(); err != nil {
		return err
	}

	sessionPath, err := shared.ExpandHome(r.config.Auth.SessionPath)
	if err != nil {
		return err
	}
	session, err := auth.NewSession(r.authn, sessionPath, r.config.Backend.AnonKey, r.logger)
	if err != nil {
		return err
	}
	r.session = session

	table, err := r.buildTable(ctx)
	if err != nil {
		return err
	}

	r.recipes = repositories.NewRecipeRepository(table, r.notifier, r.logger)
	return nil
}

func (r *Runner) buildAuth() error {
	switch r.config.Auth.Provider {
	case shared.ProviderGoTrue:
		client := &http.Client{Timeout: r.config.Backend.Timeout.Duration}
		r.authn = auth.NewGoTrue(r.config.Backend.URL, r.config.Backend.AnonKey, client)
	default:
		if err := r.database(); err != nil {
			return err
		}
		r.issuer = auth.NewIssuer(r.config.Server.JWTSecret, r.config.Server.TokenTTL.Duration)
		r.authn = auth.NewLocal(repositories.NewUserRepository(r.db), r.issuer)
	}
	return nil
}

func (r *Runner) buildTable(ctx context.Context) (backend.Table[models.Recipe], error) {
	switch r.config.Backend.Driver {
	case shared.DriverPostgres:
		pool, err := backend.Connect(ctx, r.config.Backend.DSN)
		if err != nil {
			return nil, err
		}
		if err := backend.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		r.pool = pool
		return backend.NewPostgresTable(pool, backend.RecipeSchema), nil

	case shared.DriverREST:
		return backend.NewRESTTable(backend.RecipeSchema, backend.RESTOptions{
			BaseURL:   r.config.Backend.URL,
			AnonKey:   r.config.Backend.AnonKey,
			Tokens:    r.session,
			RateLimit: r.config.Backend.RateLimit,
			Timeout:   r.config.Backend.Timeout.Duration,
			Logger:    r.logger,
		}), nil

	default:
		if err := r.database(); err != nil {
			return nil, err
		}
		return backend.NewSQLiteTable(r.db, backend.RecipeSchema), nil
	}
}

// identity returns the signed in user, or nil. A session whose token expired and
// cannot be refreshed is reported instead of being used.
func (r *Runner) identity() (*models.Identity, error) {
	who := r.session.Current()
	if who == nil {
		return nil, nil
	}
	if _, err := r.session.Token(); err != nil {
		return nil, fmt.Errorf("%w: run 'rbx auth login' again", err)
	}
	return who, nil
}
