package main

import (
	"github.com/spf13/cobra"

	"warehouse-manager/internal/infrastructure/database/postgres"
	"warehouse-manager/internal/logger"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *postgres.DB) error {
			return db.MigrateUp()
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *postgres.DB) error {
			return db.MigrateDown(migrateSteps)
		})
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")

	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

func withDB(fn func(db *postgres.DB) error) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := postgres.NewDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return fn(db)
}
