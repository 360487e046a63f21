// Package config loads the newsdesk service configuration from YAML with
// .env and environment variable overrides.
package config

import (
	"fmt"
	"net"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	defaultServiceName = "newsdesk"
	defaultVersion     = "0.1.0"
	defaultServicePort = 8095

	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second

	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBName          = "newsdesk"
	defaultDBUser          = "postgres"
	defaultDBSSLMode       = "disable"
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute

	defaultRedisAddress = "localhost:6379"
	defaultRedisPrefix  = "newsdesk"

	defaultVerifyURL          = "https://www.google.com/recaptcha/api/siteverify"
	defaultVerifyTimeout      = 5 * time.Second
	defaultBreakerFailures    = 5
	defaultBreakerOpenTimeout = 30 * time.Second

	// Ankara city centre; used when a submission omits coordinates.
	defaultLatitude  = 39.9334
	defaultLongitude = 32.8597

	defaultDedupWindow     = 24 * time.Hour
	defaultDedupBackend    = DedupBackendPostgres
	defaultCleanupInterval = 10 * time.Minute

	defaultQueueLimit = 20
	defaultMaxLimit   = 100
	defaultLocale     = "en"

	defaultBusBuffer        = 256
	defaultSubscriberBuffer = 32

	defaultLoggingLevel  = "info"
	defaultLoggingFormat = "json"
)

// Dedup store backends.
const (
	DedupBackendPostgres = "postgres"
	DedupBackendRedis    = "redis"
	DedupBackendMemory   = "memory"
)

// Config holds the application configuration.
type Config struct {
	Service      ServiceConfig      `yaml:"service"`
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Auth         AuthConfig         `yaml:"auth"`
	Verification VerificationConfig `yaml:"verification"`
	Intake       IntakeConfig       `yaml:"intake"`
	Moderation   ModerationConfig   `yaml:"moderation"`
	Views        ViewsConfig        `yaml:"views"`
	Notify       NotifyConfig       `yaml:"notify"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"NEWSDESK_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"     yaml:"debug"`
}

// ServerConfig holds HTTP server timeouts, CORS origins and the proxies
// whose forwarding headers identify the client.
type ServerConfig struct {
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	CORSOrigins    []string      `env:"CORS_ORIGINS"    yaml:"cors_origins"`
	TrustedProxies []string      `env:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_NEWSDESK_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_NEWSDESK_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_NEWSDESK_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_NEWSDESK_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_NEWSDESK_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_NEWSDESK_SSLMODE"  yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Enabled   bool   `env:"REDIS_ENABLED"  yaml:"enabled"`
	Address   string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password  string `env:"REDIS_PASSWORD" yaml:"password"`
	DB        int    `env:"REDIS_DB"       yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// AuthConfig holds moderator authorization settings.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// VerificationConfig configures the bot-verification collaborator.
type VerificationConfig struct {
	// Required may only be false in debug mode.
	Required bool          `env:"VERIFICATION_REQUIRED" yaml:"required"`
	Secret   string        `env:"RECAPTCHA_SECRET"      yaml:"secret"`
	URL      string        `yaml:"url"`
	Timeout  time.Duration `yaml:"timeout"`
	// MinScore is applied only when the verifier reports a score (reCAPTCHA v3).
	MinScore float64 `yaml:"min_score"`
	// ExpectedAction is compared only when non-empty.
	ExpectedAction      string        `yaml:"expected_action"`
	BreakerFailures     int           `yaml:"breaker_failures"`
	BreakerOpenDuration time.Duration `yaml:"breaker_open_duration"`

	requiredSet bool
}

// UnmarshalYAML records whether `required` was present so an omitted key
// defaults to true instead of Go's zero value.
func (v *VerificationConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain VerificationConfig
	var body plain
	if err := node.Decode(&body); err != nil {
		return err
	}
	var presence struct {
		Required *bool `yaml:"required"`
	}
	if err := node.Decode(&presence); err != nil {
		return err
	}
	*v = VerificationConfig(body)
	v.requiredSet = presence.Required != nil
	return nil
}

// IntakeConfig holds submission defaults.
type IntakeConfig struct {
	DefaultLatitude  float64 `yaml:"default_latitude"`
	DefaultLongitude float64 `yaml:"default_longitude"`
}

// ModerationConfig holds queue paging limits.
type ModerationConfig struct {
	DefaultLimit  int    `yaml:"default_limit"`
	MaxLimit      int    `yaml:"max_limit"`
	DefaultLocale string `yaml:"default_locale"`
}

// ViewsConfig configures the view dedup window and backend.
type ViewsConfig struct {
	DedupWindow     time.Duration `env:"VIEWS_DEDUP_WINDOW"  yaml:"dedup_window"`
	DedupBackend    string        `env:"VIEWS_DEDUP_BACKEND" yaml:"dedup_backend"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// NotifyConfig sizes the in-process notification bus.
type NotifyConfig struct {
	BufferSize           int `yaml:"buffer_size"`
	SubscriberBufferSize int `yaml:"subscriber_buffer_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return LoadWithDefaults(path, setDefaults)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setServerDefaults(&cfg.Server)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	setVerificationDefaults(&cfg.Verification)
	setIntakeDefaults(&cfg.Intake)
	setModerationDefaults(&cfg.Moderation)
	setViewsDefaults(&cfg.Views)
	setNotifyDefaults(&cfg.Notify)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
}

func setServerDefaults(srv *ServerConfig) {
	if srv.ReadTimeout == 0 {
		srv.ReadTimeout = defaultReadTimeout
	}
	if srv.WriteTimeout == 0 {
		srv.WriteTimeout = defaultWriteTimeout
	}
	if srv.IdleTimeout == 0 {
		srv.IdleTimeout = defaultIdleTimeout
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
	if db.MaxOpenConns == 0 {
		db.MaxOpenConns = defaultMaxOpenConns
	}
	if db.MaxIdleConns == 0 {
		db.MaxIdleConns = defaultMaxIdleConns
	}
	if db.ConnMaxLifetime == 0 {
		db.ConnMaxLifetime = defaultConnMaxLifetime
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.KeyPrefix == "" {
		r.KeyPrefix = defaultRedisPrefix
	}
}

func setVerificationDefaults(v *VerificationConfig) {
	if !v.requiredSet {
		v.Required = true
	}
	if v.URL == "" {
		v.URL = defaultVerifyURL
	}
	if v.Timeout == 0 {
		v.Timeout = defaultVerifyTimeout
	}
	if v.BreakerFailures == 0 {
		v.BreakerFailures = defaultBreakerFailures
	}
	if v.BreakerOpenDuration == 0 {
		v.BreakerOpenDuration = defaultBreakerOpenTimeout
	}
}

func setIntakeDefaults(in *IntakeConfig) {
	if in.DefaultLatitude == 0 && in.DefaultLongitude == 0 {
		in.DefaultLatitude = defaultLatitude
		in.DefaultLongitude = defaultLongitude
	}
}

func setModerationDefaults(m *ModerationConfig) {
	if m.DefaultLimit == 0 {
		m.DefaultLimit = defaultQueueLimit
	}
	if m.MaxLimit == 0 {
		m.MaxLimit = defaultMaxLimit
	}
	if m.DefaultLocale == "" {
		m.DefaultLocale = defaultLocale
	}
}

func setViewsDefaults(v *ViewsConfig) {
	if v.DedupWindow == 0 {
		v.DedupWindow = defaultDedupWindow
	}
	if v.DedupBackend == "" {
		v.DedupBackend = defaultDedupBackend
	}
	if v.CleanupInterval == 0 {
		v.CleanupInterval = defaultCleanupInterval
	}
}

func setNotifyDefaults(n *NotifyConfig) {
	if n.BufferSize == 0 {
		n.BufferSize = defaultBusBuffer
	}
	if n.SubscriberBufferSize == 0 {
		n.SubscriberBufferSize = defaultSubscriberBuffer
	}
}

func setLoggingDefaults(log *LoggingConfig) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
	if log.Format == "" {
		log.Format = defaultLoggingFormat
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := required("database.host", c.Database.Host); err != nil {
		return err
	}
	if err := required("database.database", c.Database.Database); err != nil {
		return err
	}
	if err := required("auth.jwt_secret", c.Auth.JWTSecret); err != nil {
		return err
	}
	if !c.Verification.Required && !c.Service.Debug {
		return &ValidationError{
			Field:   "verification.required",
			Message: "may only be disabled when service.debug is true",
		}
	}
	if c.Views.DedupWindow <= 0 {
		return &ValidationError{Field: "views.dedup_window", Message: "must be positive"}
	}
	if c.Views.CleanupInterval <= 0 {
		return &ValidationError{Field: "views.cleanup_interval", Message: "must be positive"}
	}
	if err := validateProxies(c.Server.TrustedProxies); err != nil {
		return err
	}
	return c.validateDedupBackend()
}

func validateProxies(proxies []string) error {
	for _, p := range proxies {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			return &ValidationError{
				Field:   "server.trusted_proxies",
				Message: fmt.Sprintf("%q is not an IP address or CIDR", p),
			}
		}
	}
	return nil
}

func (c *Config) validateDedupBackend() error {
	switch c.Views.DedupBackend {
	case DedupBackendPostgres, DedupBackendMemory:
		return nil
	case DedupBackendRedis:
		if !c.Redis.Enabled {
			return &ValidationError{
				Field:   "views.dedup_backend",
				Message: "redis requires redis.enabled",
			}
		}
		return nil
	default:
		return &ValidationError{
			Field:   "views.dedup_backend",
			Message: "must be one of postgres, redis, memory",
		}
	}
}
