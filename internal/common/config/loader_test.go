package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
widget:
  webhook_url: https://hooks.example.com/presentations
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, cfg.Widget.Title)
	assert.Equal(t, DefaultDescription, cfg.Widget.Description)
	assert.Equal(t, "", cfg.Widget.PortalID)
	assert.Equal(t, 60000, cfg.Webhook.Timeout)
	assert.Equal(t, GuardBackendMemory, cfg.Guard.Backend)
	assert.Equal(t, 65000, cfg.Guard.TTL)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10000, cfg.Server.MaxSessions)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "solution-creator", cfg.Observability.ServiceName)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_HOOK_HOST", "hooks.internal")
	path := writeConfig(t, `
widget:
  webhook_url: https://${TEST_HOOK_HOST}/generate
  portal_id: "12345"
webhook:
  timeout: 2000
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://hooks.internal/generate", cfg.Widget.WebhookURL)
	assert.Equal(t, "12345", cfg.Widget.PortalID)
	assert.Equal(t, 2*time.Second, GetDuration(cfg.Webhook.Timeout))
}

func TestLoadFromFile_EnvFallbacks(t *testing.T) {
	t.Setenv("WIDGET_WEBHOOK_URL", "http://localhost:9000/hook")
	t.Setenv("WIDGET_PORTAL_ID", "777")
	path := writeConfig(t, "app:\n  name: widget\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/hook", cfg.Widget.WebhookURL)
	assert.Equal(t, "777", cfg.Widget.PortalID)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Widget.WebhookURL = "https://hooks.example.com"
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing webhook", func(c *Config) { c.Widget.WebhookURL = "" }, "widget.webhook_url is required"},
		{"relative webhook", func(c *Config) { c.Widget.WebhookURL = "/hook" }, "absolute http(s) URL"},
		{"ftp webhook", func(c *Config) { c.Widget.WebhookURL = "ftp://files.example.com" }, "absolute http(s) URL"},
		{"negative session limit", func(c *Config) { c.Server.MaxSessions = -1 }, "server.max_sessions must not be negative"},
		{"unknown guard", func(c *Config) { c.Guard.Backend = "etcd" }, "guard.backend must be"},
		{"redis without address", func(c *Config) { c.Guard.Backend = GuardBackendRedis }, "database.redis.address is required"},
		{"redis with address", func(c *Config) {
			c.Guard.Backend = GuardBackendRedis
			c.Database.Redis.Address = "localhost:6379"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigString_RedactsWebhook(t *testing.T) {
	cfg := &Config{}
	cfg.Widget.WebhookURL = "https://secret-token@hooks.example.com"
	applyDefaults(cfg)

	s := cfg.String()
	assert.NotContains(t, s, "secret-token")
	assert.Contains(t, s, "webhookConfigured=true")
}
