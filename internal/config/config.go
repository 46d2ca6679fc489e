package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"wanotify/internal/constants"
	"wanotify/internal/models"
)

// Environment variable overrides. Secrets are only accepted from the
// environment; the config file never carries them.
const (
	envToken         = "WANOTIFY_TOKEN"
	envVerifyToken   = "WANOTIFY_VERIFY_TOKEN"
	envAutomationURL = "WANOTIFY_AUTOMATION_URL"
	envShareSecret   = "WANOTIFY_SHARE_SECRET"
	envDBPath        = "DB_PATH"
	envMediaDir      = "MEDIA_DIR"
	envAPIURL        = "WHATSAPP_API_URL"
	envEnvironment   = "WANOTIFY_ENV"
)

// LoadConfig reads, overrides and validates the service configuration.
func LoadConfig(path string) (*models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg models.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *models.Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = constants.DefaultServerPort
	}
	if cfg.Server.ReadTimeoutSec == 0 {
		cfg.Server.ReadTimeoutSec = constants.DefaultReadTimeoutSec
	}
	if cfg.Server.WriteTimeoutSec == 0 {
		cfg.Server.WriteTimeoutSec = constants.DefaultWriteTimeoutSec
	}
	if cfg.Server.IdleTimeoutSec == 0 {
		cfg.Server.IdleTimeoutSec = constants.DefaultIdleTimeoutSec
	}
	if cfg.WhatsApp.APIVersion == "" {
		cfg.WhatsApp.APIVersion = constants.DefaultAPIVersion
	}
	if cfg.WhatsApp.TimeoutSec == 0 {
		cfg.WhatsApp.TimeoutSec = constants.DefaultVendorTimeoutSec
	}
	if cfg.Automation.TimeoutSec == 0 {
		cfg.Automation.TimeoutSec = constants.DefaultAutomationTimeoutSec
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "wanotify.db"
	}
	if cfg.Media.CacheDir == "" {
		cfg.Media.CacheDir = "media-cache"
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = constants.DefaultDatabaseRetryAttempts
	}
	if cfg.Retry.InitialBackoffMs == 0 {
		cfg.Retry.InitialBackoffMs = 1000
	}
	if cfg.Retry.MaxBackoffMs == 0 {
		cfg.Retry.MaxBackoffMs = 5000
	}
	if cfg.Tracing.SampleRate == 0 {
		cfg.Tracing.SampleRate = 0.1
	}
}

func applyEnvOverrides(cfg *models.Config) {
	if v := os.Getenv(envToken); v != "" {
		cfg.WhatsApp.Token = v
	}
	if v := os.Getenv(envVerifyToken); v != "" {
		cfg.WhatsApp.VerifyToken = v
	}
	if v := os.Getenv(envAutomationURL); v != "" {
		cfg.Automation.WebhookURL = v
	}
	if v := os.Getenv(envShareSecret); v != "" {
		cfg.Share.Secret = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv(envMediaDir); v != "" {
		cfg.Media.CacheDir = v
	}
	if v := os.Getenv(envAPIURL); v != "" {
		cfg.WhatsApp.BaseURL = v
	}
}

// IsProduction reports whether the deployment runs in production mode, which
// tightens the secret checks below.
func IsProduction() bool {
	return strings.EqualFold(os.Getenv(envEnvironment), "production")
}

func validate(cfg *models.Config) error {
	if cfg.WhatsApp.BaseURL == "" {
		return models.ConfigError{Message: "whatsapp.base_url is required"}
	}
	if cfg.WhatsApp.PhoneID == "" {
		return models.ConfigError{Message: "whatsapp.phone_id is required"}
	}

	if IsProduction() {
		if cfg.WhatsApp.Token == "" {
			return models.ConfigError{Message: envToken + " is required in production"}
		}
		if len(cfg.WhatsApp.VerifyToken) < constants.MinVerifyTokenLength {
			return models.ConfigError{Message: fmt.Sprintf(
				"%s must be at least %d characters in production",
				envVerifyToken, constants.MinVerifyTokenLength)}
		}
	}

	seen := make(map[string]bool, len(cfg.Rules))
	for i := range cfg.Rules {
		if err := validateRule(&cfg.Rules[i], seen); err != nil {
			return err
		}
	}
	return nil
}

func validateRule(rule *models.NotificationRule, seen map[string]bool) error {
	if rule.Name == "" {
		return models.ConfigError{Message: "rule name is required"}
	}
	if seen[rule.Name] {
		return models.ConfigError{Message: fmt.Sprintf("duplicate rule name %q", rule.Name)}
	}
	seen[rule.Name] = true

	switch rule.Channel {
	case models.ChannelWhatsApp, models.ChannelSystem, models.ChannelBoth:
	default:
		return models.ConfigError{Message: fmt.Sprintf("rule %q has unknown channel %q", rule.Name, rule.Channel)}
	}

	if rule.Channel.SendsWhatsApp() && rule.Template == "" {
		return models.ConfigError{Message: fmt.Sprintf("rule %q needs a template for its channel", rule.Name)}
	}
	if len(rule.Recipients) == 0 {
		return models.ConfigError{Message: fmt.Sprintf("rule %q has no recipients", rule.Name)}
	}
	return nil
}
