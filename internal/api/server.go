package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/config"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/metrics"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/server"
)

// NewServer creates the HTTP server with the given health checks.
func NewServer(
	h Handlers,
	cfg *config.Config,
	m *metrics.Metrics,
	checks map[string]server.HealthChecker,
	log logger.Logger,
) *server.Server {
	builder := server.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout).
		WithCORSOrigins(cfg.Server.CORSOrigins).
		WithTrustedProxies(cfg.Server.TrustedProxies)

	for name, check := range checks {
		builder = builder.WithHealthCheck(name, check)
	}

	return builder.
		WithRoutes(func(router *gin.Engine) {
			SetupRoutes(router, h, cfg.Auth.JWTSecret, m.Handler())
		}).
		Build()
}
