package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devconnector/internal/config"
	"devconnector/internal/middleware"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// schemaPlan says which schema tools run for a config. Hybrid applies the
// SQL migrations everywhere and adds AutoMigrate outside production-like
// environments.
type schemaPlan struct {
	Mode string
	SQL  bool
	Auto bool
}

func planSchema(cfg *config.Config) (schemaPlan, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		mode = SchemaModeHybrid
	}
	env := strings.ToLower(strings.TrimSpace(cfg.Env))
	prodLike := env == "production" || env == "prod" || env == "staging"

	plan := schemaPlan{Mode: mode}
	switch mode {
	case SchemaModeSQL:
		plan.SQL = true
	case SchemaModeHybrid:
		plan.SQL, plan.Auto = true, !prodLike
	case SchemaModeAuto:
		if prodLike && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("DB_SCHEMA_MODE=auto in %q needs DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.Auto = true
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
	return plan, nil
}

// ApplySchema brings the users, profiles and posts tables up to date.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg)
	if err != nil {
		return err
	}

	if plan.SQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
	}
	if plan.Auto {
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("mode", plan.Mode), slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// SchemaStatus reports what ApplySchema would do.
type SchemaStatus struct {
	Mode        string
	Environment string
	RunsSQL     bool
	RunsAuto    bool
	Applied     []AppliedMigration
	Pending     []Migration
}

func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{Mode: plan.Mode, Environment: cfg.Env, RunsSQL: plan.SQL, RunsAuto: plan.Auto}
	if !plan.SQL {
		return status, nil
	}

	all, err := Migrations()
	if err != nil {
		return nil, err
	}
	m := NewMigrator(db, all)
	if status.Applied, err = m.Applied(ctx); err != nil {
		return nil, err
	}
	if status.Pending, err = m.Pending(ctx); err != nil {
		return nil, err
	}
	return status, nil
}
