package main

import (
	"fmt"

	"github.com/mrmailer/mrmailer/internal/config"
	"github.com/mrmailer/mrmailer/internal/database"
	"github.com/mrmailer/mrmailer/internal/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL record store schema",
}

func init() {
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration("up", database.MigrateUp)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration("down", database.MigrateDown)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the applied schema version",
			RunE:  runMigrateStatus,
		},
	)
}

func runMigration(direction string, apply func(config.DatabaseConfig) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format).WithComponent("migrate")

	log.Info().Str("direction", direction).Str("database", cfg.Database.Name).Msg("migrating sent_emails schema")
	if err := apply(cfg.Database); err != nil {
		return err
	}
	log.Info().Str("direction", direction).Msg("migration finished")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	version, dirty, err := database.MigrationVersion(cfg.Database)
	if err != nil {
		return err
	}
	if version == 0 {
		cmd.Println("No migrations have been applied")
		return nil
	}
	cmd.Printf("Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}
