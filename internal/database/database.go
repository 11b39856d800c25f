// Package database opens the PostgreSQL connection and manages the schema
// of the users, profiles and posts tables.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"devconnector/internal/config"
	"devconnector/internal/middleware"
	"devconnector/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DSN returns the connection string for cfg. DATABASE_URL wins over the split keys.
func DSN(cfg *config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, sslMode)
}

// redactedTarget names the database for log lines without credentials.
func redactedTarget(cfg *config.Config) string {
	if cfg.DatabaseURL == "" {
		return cfg.DBHost + ":" + cfg.DBPort + "/" + cfg.DBName
	}
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil {
		return "DATABASE_URL"
	}
	return u.Host + u.Path
}

// Connect opens the database and sizes its pool. Schema changes are left to
// ApplySchema.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger: newQueryLogger(middleware.Logger),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", redactedTarget(cfg), err)
	}

	if err := configurePool(db, cfg); err != nil {
		return nil, err
	}
	if err := observability.RegisterQueryMetrics(db); err != nil {
		middleware.Logger.Warn("query metrics disabled", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("Database connected", slog.String("target", redactedTarget(cfg)))
	return db, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(orDefault(cfg.DBMaxOpenConns, 25))
	sqlDB.SetMaxIdleConns(orDefault(cfg.DBMaxIdleConns, 5))
	sqlDB.SetConnMaxLifetime(time.Duration(orDefault(cfg.DBConnMaxLifetimeMinutes, 5)) * time.Minute)
	return nil
}

// Ping checks that the connection is usable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
