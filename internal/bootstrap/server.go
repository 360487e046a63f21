package bootstrap

import (
	"context"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/api"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/config"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/handlers"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/metrics"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/server"
)

// SetupHTTPServer creates the HTTP server with database and redis health
// checks.
func SetupHTTPServer(
	cfg *config.Config,
	stores *Stores,
	services *Services,
	m *metrics.Metrics,
	log logger.Logger,
) *server.Server {
	locale := cfg.Moderation.DefaultLocale

	h := api.Handlers{
		Reports:    handlers.NewReportHandler(services.Intake, services.Views, log),
		Moderation: handlers.NewModerationHandler(services.Queue, services.Engine, locale, log),
		Categories: handlers.NewCategoryHandler(services.Categories, locale),
	}

	checks := map[string]server.HealthChecker{
		"database": server.DatabaseHealthChecker(stores.DB.PingContext),
	}
	if stores.Redis != nil {
		client := stores.Redis
		checks["redis"] = server.RedisHealthChecker(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	return api.NewServer(h, cfg, m, checks, log)
}
