// Package bootstrap handles application initialization and lifecycle
// management for the newsdesk service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/metrics"
)

// Start initializes and runs the newsdesk service until a shutdown signal.
func Start() error {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Phase 2: Setup storage
	stores, err := SetupStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to set up storage: %w", err)
	}
	defer stores.Close(log)

	// Phase 3: Metrics and notification bus
	m := metrics.NewDefault()

	bus, err := SetupNotifications(ctx, cfg, m, log)
	if err != nil {
		return fmt.Errorf("failed to start notification bus: %w", err)
	}
	defer func() { _ = bus.Stop() }()

	// Phase 4: Domain services
	services, err := SetupServices(cfg, stores, bus, m, log)
	if err != nil {
		return fmt.Errorf("failed to set up services: %w", err)
	}

	if services.Janitor != nil {
		go services.Janitor.Run(ctx)
	}

	// Phase 5: HTTP server
	srv := SetupHTTPServer(cfg, stores, services, m, log)

	if runErr := srv.RunWithGracefulShutdown(cancel); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Server exited")
	return nil
}
