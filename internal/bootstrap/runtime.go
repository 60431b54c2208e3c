// Package bootstrap wires the process-wide runtime dependencies.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"socialnet/internal/cache"
	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedPreset names a seed preset or YAML file applied to an empty
	// development database.
	SeedPreset string
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevSeed(ctx, cfg, db, opts.SeedPreset); err != nil {
		return nil, nil, fmt.Errorf("failed to seed development data: %w", err)
	}

	return db, r, nil
}

// ensureDevSeed applies preset when running in development against a
// database without users.
func ensureDevSeed(ctx context.Context, cfg *config.Config, db *gorm.DB, preset string) error {
	preset = strings.TrimSpace(preset)
	if cfg == nil || db == nil || preset == "" {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	opts, err := seed.ResolvePreset(preset)
	if err != nil {
		return err
	}
	seeder, err := seed.NewSeeder(db, opts)
	if err != nil {
		return err
	}
	summary, err := seeder.Run(ctx)
	if err != nil {
		return err
	}

	middleware.Logger.Info("development data seeded",
		slog.String("preset", preset),
		slog.Int("users", summary.Users),
		slog.Int("posts", summary.Posts),
	)
	return nil
}
