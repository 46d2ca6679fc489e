package constants

const (
	// Server defaults
	DefaultServerPort          = "8084"
	DefaultReadTimeoutSec      = 15
	DefaultWriteTimeoutSec     = 15
	DefaultIdleTimeoutSec      = 60
	DefaultGracefulShutdownSec = 10
	ServerErrorChannelSize     = 1

	// Vendor API defaults
	DefaultAPIVersion       = "v17.0"
	DefaultVendorTimeoutSec = 30
	DefaultMediaTimeoutSec  = 30

	// Automation forward defaults
	DefaultAutomationTimeoutSec = 10

	// Database defaults
	DefaultDatabaseRetryAttempts = 3

	// Webhook limits
	MaxWebhookPayloadBytes = 1 << 20
	MinVerifyTokenLength   = 16

	// Column encryption (see internal/database/encryption.go)
	EncryptionSalt = "wanotify-column-salt-v1"
)

// DefaultUsageHint is the reply for any chatbot input that does not parse
// as a known command.
const DefaultUsageHint = "Please type your keyword with correct format (eg: 'production ptp 2025' or 'stockpile ptp 2025')"

// DefaultGreeting is the canned reply for a plain "hello".
const DefaultGreeting = "Hi there! How can I help you?"
