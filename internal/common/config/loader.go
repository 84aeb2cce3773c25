// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultTitle       = "Solution Architecture Presentation Creator"
	DefaultDescription = "<p>Create a custom solution architecture presentation tailored to your customer's needs. Our AI will generate a comprehensive, professional presentation based on your input.</p>"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// on top, expands ${VAR} placeholders and applies env overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"widget.title", "widget.description", "widget.webhook_url", "widget.portal_id",
		"widget.sanitize_description", "widget.fields_path",
		"webhook.timeout", "guard.backend", "guard.ttl",
		"database.redis.address", "database.redis.password", "database.redis.db",
		"server.address", "logging.level", "logging.format",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills values that are still empty from well-known env
// names used by the hosting platform.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Widget.WebhookURL == "" {
		if val := os.Getenv("WIDGET_WEBHOOK_URL"); val != "" {
			cfg.Widget.WebhookURL = val
		}
	}
	if cfg.Widget.PortalID == "" {
		if val := os.Getenv("WIDGET_PORTAL_ID"); val != "" {
			cfg.Widget.PortalID = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "solution-creator"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		// must outlive the webhook call
		cfg.Server.WriteTimeout = 90000
	}
	if cfg.Server.SessionTTL == 0 {
		cfg.Server.SessionTTL = 30 * 60 * 1000
	}
	if cfg.Server.MaxSessions == 0 {
		cfg.Server.MaxSessions = 10000
	}

	if cfg.Widget.Title == "" {
		cfg.Widget.Title = DefaultTitle
	}
	if cfg.Widget.Description == "" {
		cfg.Widget.Description = DefaultDescription
	}

	if cfg.Webhook.Timeout == 0 {
		cfg.Webhook.Timeout = 60000
	}

	if cfg.Guard.Backend == "" {
		cfg.Guard.Backend = GuardBackendMemory
	}
	if cfg.Guard.TTL == 0 {
		cfg.Guard.TTL = cfg.Webhook.Timeout + 5000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.Widget.WebhookURL == "" {
		return fmt.Errorf("widget.webhook_url is required")
	}
	u, err := url.Parse(cfg.Widget.WebhookURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("widget.webhook_url must be an absolute http(s) URL")
	}

	if cfg.Webhook.Timeout < 0 {
		return fmt.Errorf("webhook.timeout must not be negative")
	}
	if cfg.Server.MaxSessions < 0 {
		return fmt.Errorf("server.max_sessions must not be negative")
	}

	switch cfg.Guard.Backend {
	case GuardBackendMemory:
	case GuardBackendRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required when guard.backend is redis")
		}
	default:
		return fmt.Errorf("guard.backend must be %q or %q", GuardBackendMemory, GuardBackendRedis)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
