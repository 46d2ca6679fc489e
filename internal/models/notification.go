package models

// Channel selects where a rule delivers.
type Channel string

const (
	ChannelWhatsApp Channel = "WhatsApp"
	ChannelSystem   Channel = "System Notification"
	ChannelBoth     Channel = "Both"
)

// SendsWhatsApp reports whether the channel includes a WhatsApp template send.
func (c Channel) SendsWhatsApp() bool {
	return c == ChannelWhatsApp || c == ChannelBoth
}

// SendsSystem reports whether the channel includes an in-app notification.
func (c Channel) SendsSystem() bool {
	return c == ChannelSystem || c == ChannelBoth
}

// NotificationRule describes when, how and to whom a notification is sent.
// Rules are read-only configuration input; their lifecycle is owned by the
// deployment's config file, not by this service.
type NotificationRule struct {
	Name      string  `json:"name"`
	Enabled   bool    `json:"enabled"`
	Channel   Channel `json:"channel"`
	Condition string  `json:"condition,omitempty"`
	Template  string  `json:"template"`

	// Fields are interpolated positionally into the template body.
	Fields []string `json:"fields,omitempty"`

	// Recipients are raw phone strings; entries containing a "{...}" marker
	// are rendered against the document snapshot first.
	Recipients []string `json:"recipients"`

	// Subject and Message feed the System Notification channel.
	Subject string `json:"subject,omitempty"`
	Message string `json:"message,omitempty"`

	// AttachPrint links a rendered PDF of the triggering document as a
	// template header. AttachFromField names a document field holding a file
	// path or URL; AttachURL is a static alternative.
	AttachPrint     bool   `json:"attach_print,omitempty"`
	AttachFromField string `json:"attach_from_field,omitempty"`
	AttachURL       string `json:"attach_url,omitempty"`
	AttachFilename  string `json:"attach_filename,omitempty"`
}
