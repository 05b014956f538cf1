package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tasktrack/task-api/internal/infrastructure/db/postgres"
	"github.com/tasktrack/task-api/internal/pkg/config"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending schema migrations to the PostgreSQL database named by DATABASE_URL.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return oops.Code("CONFIG_INVALID").Errorf("migrate requires STORE_DRIVER=postgres, got %q", cfg.StoreDriver)
	}

	cmd.Println("Running migrations...")
	version, err := applyMigrations(cfg.Postgres.URL)
	if err != nil {
		return err
	}

	cmd.Printf("Migrations completed successfully (schema version %d)\n", version)
	return nil
}

func applyMigrations(databaseURL string) (uint, error) {
	migrator, err := postgres.NewMigrator(databaseURL)
	if err != nil {
		return 0, oops.Code("MIGRATION_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() { _ = migrator.Close() }()

	if err := migrator.Up(); err != nil {
		return 0, oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	version, _, err := migrator.Version()
	if err != nil {
		return 0, oops.Code("MIGRATION_FAILED").With("operation", "read version").Wrap(err)
	}
	return version, nil
}
