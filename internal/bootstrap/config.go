package bootstrap

import (
	"flag"
	"fmt"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/config"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
)

// LoadConfig loads configuration. Uses -config flag with CONFIG_PATH default.
func LoadConfig() (*config.Config, error) {
	configPath := flag.String("config", config.GetConfigPath("config.yml"), "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// CreateLogger creates a logger instance from configuration.
func CreateLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
	), nil
}
