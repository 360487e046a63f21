package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	path := writeConfig(t, "auth:\n  jwt_secret: s3cret\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "newsdesk", cfg.Service.Name)
	assert.Equal(t, 8095, cfg.Service.Port)
	assert.True(t, cfg.Verification.Required)
	assert.Equal(t, 24*time.Hour, cfg.Views.DedupWindow)
	assert.Equal(t, config.DedupBackendPostgres, cfg.Views.DedupBackend)
	assert.InDelta(t, 39.9334, cfg.Intake.DefaultLatitude, 0.00001)
	assert.InDelta(t, 32.8597, cfg.Intake.DefaultLongitude, 0.00001)
	assert.Equal(t, 20, cfg.Moderation.DefaultLimit)
	assert.Equal(t, 100, cfg.Moderation.MaxLimit)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("NEWSDESK_PORT", "9100")
	t.Setenv("VIEWS_DEDUP_WINDOW", "1h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	path := writeConfig(t, "service:\n  port: 8000\nauth:\n  jwt_secret: x\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Service.Port)
	assert.Equal(t, time.Hour, cfg.Views.DedupWindow)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_ExplicitVerificationOff(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	path := writeConfig(t, "service:\n  debug: true\nverification:\n  required: false\nauth:\n  jwt_secret: x\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Verification.Required)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func validConfig() *config.Config {
	return &config.Config{
		Service:      config.ServiceConfig{Port: 8095},
		Database:     config.DatabaseConfig{Host: "localhost", Database: "newsdesk"},
		Auth:         config.AuthConfig{JWTSecret: "secret"},
		Verification: config.VerificationConfig{Required: true},
		Views: config.ViewsConfig{
			DedupWindow:     time.Hour,
			DedupBackend:    config.DedupBackendPostgres,
			CleanupInterval: time.Minute,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "bad port", mutate: func(c *config.Config) { c.Service.Port = 70000 }, field: "service.port"},
		{name: "missing db host", mutate: func(c *config.Config) { c.Database.Host = "" }, field: "database.host"},
		{name: "missing jwt secret", mutate: func(c *config.Config) { c.Auth.JWTSecret = "" }, field: "auth.jwt_secret"},
		{
			name:   "verification off outside debug",
			mutate: func(c *config.Config) { c.Verification.Required = false },
			field:  "verification.required",
		},
		{
			name: "verification off in debug",
			mutate: func(c *config.Config) {
				c.Verification.Required = false
				c.Service.Debug = true
			},
		},
		{
			name:   "redis backend without redis",
			mutate: func(c *config.Config) { c.Views.DedupBackend = config.DedupBackendRedis },
			field:  "views.dedup_backend",
		},
		{
			name: "redis backend with redis",
			mutate: func(c *config.Config) {
				c.Views.DedupBackend = config.DedupBackendRedis
				c.Redis.Enabled = true
			},
		},
		{name: "unknown backend", mutate: func(c *config.Config) { c.Views.DedupBackend = "etcd" }, field: "views.dedup_backend"},
		{name: "zero window", mutate: func(c *config.Config) { c.Views.DedupWindow = 0 }, field: "views.dedup_window"},
		{
			name:   "negative cleanup interval",
			mutate: func(c *config.Config) { c.Views.CleanupInterval = -time.Second },
			field:  "views.cleanup_interval",
		},
		{
			name:   "trusted proxies",
			mutate: func(c *config.Config) { c.Server.TrustedProxies = []string{"10.0.0.1", "172.16.0.0/12"} },
		},
		{
			name:   "bad trusted proxy",
			mutate: func(c *config.Config) { c.Server.TrustedProxies = []string{"proxy.internal"} },
			field:  "server.trusted_proxies",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var vErr *config.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()
	db := config.DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Database: "n", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", db.DSN())
}
