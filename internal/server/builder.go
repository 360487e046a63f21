package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
)

// ServerBuilder assembles a Server.
type ServerBuilder struct {
	config       *Config
	log          logger.Logger
	setupRoutes  func(*gin.Engine)
	healthChecks map[string]HealthChecker
}

// NewServerBuilder starts a builder for service listening on port.
func NewServerBuilder(service string, port int) *ServerBuilder {
	return &ServerBuilder{
		config:       &Config{ServiceName: service, Port: port},
		healthChecks: make(map[string]HealthChecker),
	}
}

// WithLogger sets the logger.
func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.log = log
	return b
}

// WithDebug toggles gin debug mode.
func (b *ServerBuilder) WithDebug(debug bool) *ServerBuilder {
	b.config.Debug = debug
	return b
}

// WithVersion sets the version reported by /health.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.config.ServiceVersion = version
	return b
}

// WithTimeouts sets the read, write and idle timeouts.
func (b *ServerBuilder) WithTimeouts(read, write, idle time.Duration) *ServerBuilder {
	b.config.ReadTimeout = read
	b.config.WriteTimeout = write
	b.config.IdleTimeout = idle
	return b
}

// WithCORSOrigins restricts allowed origins.
func (b *ServerBuilder) WithCORSOrigins(origins []string) *ServerBuilder {
	b.config.CORS.AllowedOrigins = origins
	return b
}

// WithTrustedProxies sets the proxies whose forwarding headers are honoured.
func (b *ServerBuilder) WithTrustedProxies(proxies []string) *ServerBuilder {
	b.config.TrustedProxies = proxies
	return b
}

// WithHealthCheck adds a named check to /health.
func (b *ServerBuilder) WithHealthCheck(name string, check HealthChecker) *ServerBuilder {
	b.healthChecks[name] = check
	return b
}

// WithRoutes sets the service route setup.
func (b *ServerBuilder) WithRoutes(setup func(*gin.Engine)) *ServerBuilder {
	b.setupRoutes = setup
	return b
}

// Build creates the server with health routes registered before service
// routes.
func (b *ServerBuilder) Build() *Server {
	if b.log == nil {
		b.log = logger.NewNop()
	}

	setup := func(router *gin.Engine) {
		RegisterHealthRoutes(router, b.config.ServiceName, b.config.ServiceVersion, b.healthChecks)
		if b.setupRoutes != nil {
			b.setupRoutes(router)
		}
	}
	return New(b.config, b.log, setup)
}
