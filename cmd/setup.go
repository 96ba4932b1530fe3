package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/bbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file if it is missing, then initializes the database it names.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}
	config.ApplyEnv(os.Getenv)

	if err := config.Validate(); err != nil {
		r.logger.Warn("config is incomplete; login will fail until it is fixed", "error", err)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := shared.OpenMigrated(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("reset") {
		ok, err := r.confirmer(cmd).Confirm(ctx, "Delete the local session and export history?")
		if err != nil {
			return err
		}
		if ok {
			if err := shared.ResetMigrations(db); err != nil {
				return fmt.Errorf("failed to reset database: %w", err)
			}
			r.shell.SetSession(nil)
			r.logger.Info("database reset", "path", config.Database.Path)
			r.writePlain("✓ Database reset\n")
		} else {
			r.writePlain("Reset skipped\n")
		}
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	r.writePlain("✓ Config: %s\n", configPath)
	r.writePlain("✓ Database: %s\n", config.Database.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set oauth.client_id and oauth.redirect_uri in %s\n", configPath)
	r.writePlain("2. Run 'bbx auth login' to sign in\n")
	return nil
}
