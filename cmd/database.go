package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/frahmantamala/leave-management/db"
	"github.com/frahmantamala/leave-management/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// openDatabase opens one connection pool and exposes it both through gorm and sqlx.
func openDatabase(cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.GetDSN())
	default:
		dialector = sqlite.Open(cfg.GetDSN())
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == "sqlite" && strings.Contains(cfg.GetDSN(), ":memory:") {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gormDB, sqlx.NewDb(sqlDB, cfg.SQLDriverName()), nil
}

// runMigrations applies the embedded goose migrations in the given direction.
func runMigrations(ctx context.Context, sqlxDB *sqlx.DB, cfg internal.DatabaseConfig, rollback bool) error {
	goose.SetBaseFS(db.Migrations)
	goose.SetTableName("schema_migrations")

	dialect := "sqlite3"
	if cfg.Driver == "postgres" {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	command := "up"
	if rollback {
		command = "down"
	}
	return goose.RunContext(ctx, command, sqlxDB.DB, db.MigrationsDir)
}
