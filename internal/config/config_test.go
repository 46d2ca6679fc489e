package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanotify/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const minimalConfig = `{
	"whatsapp": {
		"base_url": "https://graph.facebook.com",
		"phone_id": "1234567890"
	}
}`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8084", cfg.Server.Port)
	assert.Equal(t, "v17.0", cfg.WhatsApp.APIVersion)
	assert.Equal(t, 30, cfg.WhatsApp.TimeoutSec)
	assert.Equal(t, "wanotify.db", cfg.Database.Path)
	assert.Equal(t, "media-cache", cfg.Media.CacheDir)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "{not json"))
	assert.Error(t, err)
}

func TestLoadConfigRequiresVendorSettings(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"whatsapp": {"phone_id": "123"}}`))
	require.Error(t, err)
	assert.IsType(t, models.ConfigError{}, err)

	_, err = LoadConfig(writeConfig(t, `{"whatsapp": {"base_url": "https://x"}}`))
	assert.Error(t, err)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("WANOTIFY_TOKEN", "secret-token")
	t.Setenv("WANOTIFY_VERIFY_TOKEN", "verify-token-1234567890")
	t.Setenv("WANOTIFY_AUTOMATION_URL", "https://automation.example.com/hook")
	t.Setenv("DB_PATH", "/data/override.db")
	t.Setenv("MEDIA_DIR", "/data/media")
	t.Setenv("WHATSAPP_API_URL", "https://graph.example.com")

	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.WhatsApp.Token)
	assert.Equal(t, "verify-token-1234567890", cfg.WhatsApp.VerifyToken)
	assert.Equal(t, "https://automation.example.com/hook", cfg.Automation.WebhookURL)
	assert.Equal(t, "/data/override.db", cfg.Database.Path)
	assert.Equal(t, "/data/media", cfg.Media.CacheDir)
	assert.Equal(t, "https://graph.example.com", cfg.WhatsApp.BaseURL)
}

func TestLoadConfigProductionChecks(t *testing.T) {
	t.Setenv("WANOTIFY_ENV", "production")
	t.Setenv("WANOTIFY_TOKEN", "")
	t.Setenv("WANOTIFY_VERIFY_TOKEN", "")

	_, err := LoadConfig(writeConfig(t, minimalConfig))
	require.Error(t, err)

	t.Setenv("WANOTIFY_TOKEN", "secret-token")
	t.Setenv("WANOTIFY_VERIFY_TOKEN", "short")
	_, err = LoadConfig(writeConfig(t, minimalConfig))
	require.Error(t, err)

	t.Setenv("WANOTIFY_VERIFY_TOKEN", "verify-token-1234567890")
	_, err = LoadConfig(writeConfig(t, minimalConfig))
	assert.NoError(t, err)
}

func TestLoadConfigRules(t *testing.T) {
	valid := `{
		"whatsapp": {"base_url": "https://x", "phone_id": "1"},
		"rules": [{
			"name": "order-confirmed",
			"enabled": true,
			"channel": "WhatsApp",
			"template": "Order Confirmation",
			"condition": "status == 'Submitted'",
			"fields": ["name", "delivery_date"],
			"recipients": ["{customer_phone}"]
		}]
	}`
	cfg, err := LoadConfig(writeConfig(t, valid))
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 1)

	rule := cfg.RuleByName("order-confirmed")
	require.NotNil(t, rule)
	assert.Equal(t, models.ChannelWhatsApp, rule.Channel)
	assert.Nil(t, cfg.RuleByName("missing"))
}

func TestLoadConfigRejectsBadRules(t *testing.T) {
	tests := []struct {
		name  string
		rules string
	}{
		{
			name:  "missing name",
			rules: `[{"channel": "WhatsApp", "template": "T", "recipients": ["1"]}]`,
		},
		{
			name: "duplicate names",
			rules: `[
				{"name": "r", "channel": "WhatsApp", "template": "T", "recipients": ["1"]},
				{"name": "r", "channel": "WhatsApp", "template": "T", "recipients": ["1"]}
			]`,
		},
		{
			name:  "unknown channel",
			rules: `[{"name": "r", "channel": "Email", "template": "T", "recipients": ["1"]}]`,
		},
		{
			name:  "whatsapp channel without template",
			rules: `[{"name": "r", "channel": "WhatsApp", "recipients": ["1"]}]`,
		},
		{
			name:  "no recipients",
			rules: `[{"name": "r", "channel": "WhatsApp", "template": "T", "recipients": []}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := `{"whatsapp": {"base_url": "https://x", "phone_id": "1"}, "rules": ` + tt.rules + `}`
			_, err := LoadConfig(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}
