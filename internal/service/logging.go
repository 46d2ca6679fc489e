package service

// Standard structured-logging field names used across the service and the
// HTTP middleware.
const (
	LogFieldRequestID  = "request_id"
	LogFieldTraceID    = "trace_id"
	LogFieldMethod     = "method"
	LogFieldURL        = "url"
	LogFieldStatusCode = "status_code"
	LogFieldDuration   = "duration_ms"
	LogFieldRemoteIP   = "remote_ip"
	LogFieldUserAgent  = "user_agent"
	LogFieldSize       = "response_size"
	LogFieldService    = "service"
	LogFieldComponent  = "component"
	LogFieldRule       = "rule"
	LogFieldRecipient  = "recipient"
	LogFieldMessageID  = "message_id"
)
