package types

import (
	"fmt"
	"time"
)

// ClientConfig configures the vendor Cloud API client.
type ClientConfig struct {
	BaseURL    string
	APIVersion string
	PhoneID    string
	Token      string
	Timeout    time.Duration
}

// Header kinds a template may declare.
const (
	HeaderTypeDocument = "DOCUMENT"
	HeaderTypeImage    = "IMAGE"
)

// Payload is one outbound message. Exactly one of Text or Template is set,
// matching Type; the constructors below are the only intended way to build
// one, so every message kind is explicit at serialization time.
type Payload struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             *TextPayload     `json:"text,omitempty"`
	Template         *TemplatePayload `json:"template,omitempty"`
}

type TextPayload struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type TemplatePayload struct {
	Name       string       `json:"name"`
	Language   LanguageCode `json:"language"`
	Components []Component  `json:"components"`
}

type LanguageCode struct {
	Code string `json:"code"`
}

// Component is a template body or header block.
type Component struct {
	Type       string      `json:"type"` // "body" or "header"
	Parameters []Parameter `json:"parameters"`
}

// Parameter is one template parameter. Type selects which of the optional
// fields is populated.
type Parameter struct {
	Type     string        `json:"type"` // "text", "document" or "image"
	Text     string        `json:"text,omitempty"`
	Document *DocumentLink `json:"document,omitempty"`
	Image    *ImageLink    `json:"image,omitempty"`
}

type DocumentLink struct {
	Link     string `json:"link"`
	Filename string `json:"filename,omitempty"`
}

type ImageLink struct {
	Link string `json:"link"`
}

// NewTextPayload builds a plain text message.
func NewTextPayload(to, body string) Payload {
	return Payload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &TextPayload{PreviewURL: false, Body: body},
	}
}

// NewTemplatePayload builds a template message.
func NewTemplatePayload(to, name, languageCode string, components []Component) Payload {
	if components == nil {
		components = []Component{}
	}
	return Payload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template: &TemplatePayload{
			Name:       name,
			Language:   LanguageCode{Code: languageCode},
			Components: components,
		},
	}
}

// TextParameter builds a positional body parameter.
func TextParameter(text string) Parameter {
	return Parameter{Type: "text", Text: text}
}

// DocumentHeader builds a header component carrying a document link.
func DocumentHeader(link, filename string) Component {
	return Component{
		Type: "header",
		Parameters: []Parameter{{
			Type:     "document",
			Document: &DocumentLink{Link: link, Filename: filename},
		}},
	}
}

// ImageHeader builds a header component carrying an image link.
func ImageHeader(link string) Component {
	return Component{
		Type: "header",
		Parameters: []Parameter{{
			Type:  "image",
			Image: &ImageLink{Link: link},
		}},
	}
}

// SendResponse is the vendor's reply to a successful send.
type SendResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// MessageID returns the vendor-assigned id of the first accepted message.
func (r *SendResponse) MessageID() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

// ErrorResponse is the vendor's error envelope.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Message        string `json:"message"`
	Type           string `json:"type"`
	Code           int    `json:"code"`
	ErrorUserTitle string `json:"error_user_title,omitempty"`
	ErrorUserMsg   string `json:"error_user_msg,omitempty"`
	FBTraceID      string `json:"fbtrace_id,omitempty"`
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("vendor API error %d (%s): %s", e.Code, e.Type, e.Message)
	}
	return fmt.Sprintf("vendor API error %d: %s", e.Code, e.Message)
}

// MediaInfo is the vendor's media-id resolution response.
type MediaInfo struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}
