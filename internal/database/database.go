// Package database opens the PostgreSQL connection pool and runs schema
// migrations.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" //nolint:blankimports // PostgreSQL driver

	"github.com/jonesrussell/north-cloud/newsdesk/internal/config"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
)

const pingTimeout = 5 * time.Second

// New opens a connection pool and verifies it with a ping.
func New(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if pingErr := db.PingContext(pingCtx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	log.Info("Database connection established",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("dbname", cfg.Database),
	)

	return db, nil
}
