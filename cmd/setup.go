package main

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/recipebox/internal/backend"
	"github.com/desertthunder/recipebox/internal/shared"
)

// SetupDatabase creates the config file when missing, then initializes the database and runs migrations.
//
// The postgres backend additionally gets its recipes table.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); err != nil && r.configPath != "" {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", r.configPath)
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if err := r.database(); err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if r.config.Backend.Driver == shared.DriverPostgres {
		r.logger.Info("creating postgres schema")
		pool, err := backend.Connect(ctx, r.config.Backend.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := backend.EnsureSchema(ctx, pool); err != nil {
			return err
		}
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}

// SetupConfig writes the built-in config template to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}
	r.writePlain("✓ Config written to %s\n", r.configPath)
	return r.writePlain("Edit [backend] and [auth] to use a hosted recipe box.\n")
}

// SetupStatus lists the applied migrations.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.database(); err != nil {
		return err
	}

	applied, err := shared.AppliedMigrations(r.db)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(r.output)
	table.SetHeader([]string{"Version", "Applied"})
	for _, m := range applied {
		table.Append([]string{fmt.Sprint(m.Version), m.AppliedAt.Local().Format("2006-01-02 15:04:05")})
	}
	table.Render()
	return nil
}

// SetupRollback rolls back the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	if err := r.database(); err != nil {
		return err
	}
	if err := shared.RollbackMigration(r.db); err != nil {
		return err
	}
	return r.writePlain("✓ Rolled back the latest migration\n")
}
