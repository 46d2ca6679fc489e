package models

// ConfigError reports an invalid or incomplete configuration.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}

type Config struct {
	LogLevel   string           `json:"log_level"`
	Server     ServerConfig     `json:"server"`
	WhatsApp   WhatsAppConfig   `json:"whatsapp"`
	Automation AutomationConfig `json:"automation"`
	Database   DatabaseConfig   `json:"database"`
	Media      MediaConfig      `json:"media"`
	Share      ShareConfig      `json:"share"`
	Retry      RetryConfig      `json:"retry"`
	Tracing    TracingConfig    `json:"tracing"`

	Rules []NotificationRule `json:"rules"`
}

type ServerConfig struct {
	Port            string `json:"port"`
	ReadTimeoutSec  int    `json:"readTimeoutSec"`
	WriteTimeoutSec int    `json:"writeTimeoutSec"`
	IdleTimeoutSec  int    `json:"idleTimeoutSec"`
}

// WhatsAppConfig holds the vendor Cloud API settings. Token and VerifyToken
// are secrets and should come from the environment, not the config file.
type WhatsAppConfig struct {
	BaseURL     string `json:"base_url"`
	APIVersion  string `json:"api_version"`
	PhoneID     string `json:"phone_id"`
	Token       string `json:"-"`
	VerifyToken string `json:"-"`
	TimeoutSec  int    `json:"timeoutSec"`
}

// AutomationConfig points at the external automation webhook that receives
// attendance keywords and location messages.
type AutomationConfig struct {
	WebhookURL string `json:"webhook_url"`
	TimeoutSec int    `json:"timeoutSec"`
}

type DatabaseConfig struct {
	Path string `json:"path"`
}

type MediaConfig struct {
	CacheDir string `json:"cache_dir"`
}

// ShareConfig configures signed share links for document attachments.
type ShareConfig struct {
	PublicBaseURL string `json:"public_base_url"`
	Secret        string `json:"-"`
}

type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
}

type TracingConfig struct {
	Enabled        bool    `json:"enabled"`
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	UseStdout      bool    `json:"use_stdout"`
}

// RuleByName returns the named rule, or nil when no rule matches.
func (c *Config) RuleByName(name string) *NotificationRule {
	for i := range c.Rules {
		if c.Rules[i].Name == name {
			return &c.Rules[i]
		}
	}
	return nil
}
