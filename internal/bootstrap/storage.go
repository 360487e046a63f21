package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/config"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/database"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
)

// Stores holds the process-wide store handles. Bootstrap owns their
// lifecycle; components receive them through constructors.
type Stores struct {
	DB    *sqlx.DB
	Redis *redis.Client
}

// SetupStorage connects to PostgreSQL and, when enabled, Redis. Redis is
// required only when it backs view dedup.
func SetupStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (*Stores, error) {
	db, err := database.New(ctx, &cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}
	stores := &Stores{DB: db}

	if !cfg.Redis.Enabled {
		return stores, nil
	}

	client, err := database.NewRedis(ctx, &cfg.Redis)
	if err != nil {
		if cfg.Views.DedupBackend == config.DedupBackendRedis {
			_ = db.Close()
			return nil, fmt.Errorf("redis connection: %w", err)
		}
		log.Warn("Redis not available, continuing without it", logger.Error(err))
		return stores, nil
	}

	log.Info("Redis connected", logger.String("address", cfg.Redis.Address))
	stores.Redis = client
	return stores, nil
}

// Close releases every store handle.
func (s *Stores) Close(log logger.Logger) {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Error("Failed to close redis", logger.Error(err))
		}
	}
	if err := s.DB.Close(); err != nil {
		log.Error("Failed to close database", logger.Error(err))
	}
}
