// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Widget        WidgetConfig        `mapstructure:"widget"`
	Webhook       WebhookConfig       `mapstructure:"webhook"`
	Guard         GuardConfig         `mapstructure:"guard"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
	SessionTTL   int    `mapstructure:"session_ttl"`   // milliseconds
	MaxSessions  int    `mapstructure:"max_sessions"`
}

// WidgetConfig carries the settings the hosting page supplies to the form.
type WidgetConfig struct {
	Title               string `mapstructure:"title"`
	Description         string `mapstructure:"description"`
	WebhookURL          string `mapstructure:"webhook_url"`
	PortalID            string `mapstructure:"portal_id"`
	SanitizeDescription bool   `mapstructure:"sanitize_description"`
	FieldsPath          string `mapstructure:"fields_path"`
}

type WebhookConfig struct {
	Timeout int `mapstructure:"timeout"` // milliseconds
}

// GuardConfig selects the in-flight submission guard.
type GuardConfig struct {
	Backend string `mapstructure:"backend"` // memory | redis
	TTL     int    `mapstructure:"ttl"`     // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName string `mapstructure:"service_name"`
}

const (
	GuardBackendMemory = "memory"
	GuardBackendRedis  = "redis"
)

// String renders a redacted summary suitable for startup logs.
func (c *Config) String() string {
	return fmt.Sprintf("app=%s env=%s server=%s guard=%s webhookConfigured=%t",
		c.App.Name, c.App.Environment, c.Server.Address, c.Guard.Backend, c.Widget.WebhookURL != "")
}
