package main

import (
	"context"
	"os"

	"github.com/desertthunder/chordx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase prepares a working directory: it writes the config template when none exists, then opens the
// library it names and migrates it, or rolls back one migration with --rollback.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.ensureConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
		version, _ := shared.SchemaVersion(db)
		r.writePlain("✓ Rolled back the last migration on %s (schema version %d)\n", config.Database.Path, version)
		return nil
	}

	if err := shared.RunMigrations(db); err != nil {
		return err
	}
	version, err := shared.SchemaVersion(db)
	if err != nil {
		return err
	}
	r.logger.Info("setup complete", "path", config.Database.Path, "schema", version)

	r.writePlain("✓ Library ready at %s\n", config.Database.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Run 'chordx library import <files>' to add songs\n")
	r.writePlain("2. Run 'chordx view' to browse them\n")
	r.writePlain("3. Run 'chordx serve' to use them over HTTP at %s\n", config.Server.Addr)
	return nil
}

// ensureConfig loads path, writing the template there first when it is missing. A template that cannot be written
// or read back falls back to the defaults so setup can still create the library.
func (r *Runner) ensureConfig(path string) (*shared.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return shared.LoadConfig(path)
	}

	r.logger.Info("writing config template", "path", path)
	if err := shared.CreateConfigFile(path); err != nil {
		r.logger.Warn("using built-in defaults", "error", err)
		return shared.DefaultConfig(), nil
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("using built-in defaults", "path", path, "error", err)
		return shared.DefaultConfig(), nil
	}
	return config, nil
}
