package architecturecreator

import (
	"fmt"
	"time"

	"solution-creator/internal/common/config"
	"solution-creator/internal/common/validation"
)

type Config struct {
	Title               string        `mapstructure:"title"`
	Description         string        `mapstructure:"description"`
	WebhookURL          string        `mapstructure:"webhook_url"`
	PortalID            string        `mapstructure:"portal_id"`
	SanitizeDescription bool          `mapstructure:"sanitize_description"`
	FieldsPath          string        `mapstructure:"fields_path"`
	Timeout             time.Duration `mapstructure:"timeout"`
	GuardTTL            time.Duration `mapstructure:"guard_ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		Title:       config.DefaultTitle,
		Description: config.DefaultDescription,
		Timeout:     60 * time.Second,
		GuardTTL:    65 * time.Second,
	}
}

// ConfigFrom lifts the widget settings out of the application config.
func ConfigFrom(cfg *config.Config) *Config {
	return &Config{
		Title:               cfg.Widget.Title,
		Description:         cfg.Widget.Description,
		WebhookURL:          cfg.Widget.WebhookURL,
		PortalID:            cfg.Widget.PortalID,
		SanitizeDescription: cfg.Widget.SanitizeDescription,
		FieldsPath:          cfg.Widget.FieldsPath,
		Timeout:             config.GetDuration(cfg.Webhook.Timeout),
		GuardTTL:            config.GetDuration(cfg.Guard.TTL),
	}
}

func (c *Config) Validate() error {
	if c.WebhookURL == "" {
		return fmt.Errorf("webhook_url is required")
	}
	if !validation.ValidateURL(c.WebhookURL) {
		return fmt.Errorf("webhook_url must be an absolute URL")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.GuardTTL <= 0 {
		return fmt.Errorf("guard_ttl must be positive")
	}
	return nil
}
