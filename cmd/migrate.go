package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the latest migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	gormDB, sqlxDB, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := runMigrations(ctx, sqlxDB, cfg.Database, migrateRollback); err != nil {
		return fmt.Errorf("goose: %w", err)
	}

	log.Info("migrations applied", "driver", cfg.Database.Driver, "rollback", migrateRollback)
	return nil
}
