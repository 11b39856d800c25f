// Package bootstrap wires the process-wide runtime: database, schema and
// cache.
package bootstrap

import (
	"context"
	"fmt"

	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/database"
	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"devconnector/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development database with demo developers.
	SeedDemo bool
}

// InitRuntime connects to DB and Redis, applies the schema and optionally
// seeds demo data. The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return nil, nil, fmt.Errorf("schema setup failed: %w", err)
	}

	rdb := cache.InitRedis(cfg.RedisURL)

	if opts.SeedDemo {
		if err := seedDemo(cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, rdb, nil
}

func seedDemo(cfg *config.Config, db *gorm.DB) error {
	if cfg.Env != "development" {
		middleware.Logger.Warn("demo seeding is only allowed in development", "env", cfg.Env)
		return nil
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	res, err := seed.Seed(db, seed.Options{NumUsers: 20, NumPosts: 60})
	if err != nil {
		return err
	}
	middleware.Logger.Info("seeded demo data", "users", res.Users, "profiles", res.Profiles, "posts", res.Posts)
	return nil
}
