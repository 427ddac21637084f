package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/seuros/jogo/internal/config"
	"github.com/seuros/jogo/internal/database"
)

// Replaced in tests.
var (
	runMigrations      = database.RunMigrations
	rollbackMigrations = database.RollbackMigrations
	migrationVersion   = database.GetMigrationVersion
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
	Long: `Apply, roll back or inspect the embedded PostgreSQL migrations.

Only meaningful with the postgres store driver; the mongo driver creates its
indexes on connect.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		databaseURL, err := postgresURL()
		if err != nil {
			return err
		}
		if err := runMigrations(databaseURL); err != nil {
			return err
		}
		cmd.Println("✓ Migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back applied migrations (default: 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid steps %q: %w", args[0], err)
			}
			steps = n
		}

		databaseURL, err := postgresURL()
		if err != nil {
			return err
		}
		if err := rollbackMigrations(databaseURL, steps); err != nil {
			return err
		}
		cmd.Printf("✓ Rolled back %d migration(s)\n", steps)
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		databaseURL, err := postgresURL()
		if err != nil {
			return err
		}
		version, dirty, err := migrationVersion(databaseURL)
		if err != nil {
			return err
		}
		if dirty {
			cmd.Printf("v%d (dirty)\n", version)
			return nil
		}
		cmd.Printf("v%d\n", version)
		return nil
	},
}

// postgresURL loads the database URL, refusing to run against other drivers.
func postgresURL() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.StoreDriver != config.DriverPostgres {
		return "", fmt.Errorf("migrations only apply to the postgres driver (configured: %s)", cfg.StoreDriver)
	}
	if cfg.DatabaseURL == "" {
		return "", errors.New("DATABASE_URL environment variable not set")
	}
	return cfg.DatabaseURL, nil
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
	RootCmd.AddCommand(migrateCmd)
}
