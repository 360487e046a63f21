package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
)

// Server is an HTTP server with lifecycle management.
type Server struct {
	router *gin.Engine
	server *http.Server
	log    logger.Logger
	config *Config
}

// New creates the router with the standard middleware chain and calls
// setupRoutes to add service routes.
func New(cfg *Config, log logger.Logger, setupRoutes func(*gin.Engine)) *Server {
	cfg.SetDefaults()

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", logger.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(RecoveryMiddleware(log))
	router.Use(RequestIDLoggerMiddleware(log))
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.CORS))

	if setupRoutes != nil {
		setupRoutes(router)
	}

	return &Server{
		router: router,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		log:    log,
		config: cfg,
	}
}

// Router returns the gin engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until the server is shut down.
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		logger.String("address", s.server.Addr),
		logger.String("service", s.config.ServiceName),
		logger.String("version", s.config.ServiceVersion),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartAsync starts the server on a goroutine. The channel receives a
// start or serve error and is closed when serving ends.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown drains connections within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server", logger.Duration("timeout", s.config.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// ShutdownWithTimeout shuts down with a fresh context bounded by timeout.
func (s *Server) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// RunWithGracefulShutdown serves until SIGINT or SIGTERM, then shuts down.
// onShutdown runs after the HTTP server has drained.
func (s *Server) RunWithGracefulShutdown(onShutdown func()) error {
	errCh := s.StartAsync()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case sig := <-quit:
		s.log.Info("Shutdown signal received", logger.String("signal", sig.String()))
	}

	err := s.ShutdownWithTimeout(s.config.ShutdownTimeout)
	if onShutdown != nil {
		onShutdown()
	}
	return err
}
