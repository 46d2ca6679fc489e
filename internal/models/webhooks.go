package models

import (
	"encoding/json"
	"fmt"
)

// Change field tags sent by the vendor.
const (
	ChangeFieldMessages       = "messages"
	ChangeFieldTemplateStatus = "message_template_status_update"
)

// Envelope is the vendor webhook payload. The vendor has been observed to
// send "entry" both as an array and as a single object; DecodeEnvelope
// normalizes both shapes, trying the array form first.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue carries either message units, delivery statuses, or a template
// approval event, depending on the change's field tag.
type ChangeValue struct {
	MessagingProduct string           `json:"messaging_product,omitempty"`
	Messages         []InboundMessage `json:"messages,omitempty"`
	Statuses         []StatusUpdate   `json:"statuses,omitempty"`

	// Template approval callbacks
	Event             string `json:"event,omitempty"`
	MessageTemplateID int64  `json:"message_template_id,omitempty"`
}

// InboundMessage is one message unit from the webhook. Exactly one of the
// typed sub-objects matching Type is populated; Raw keeps every sub-object
// for the unrecognized-type fallback.
type InboundMessage struct {
	From      string           `json:"from"`
	ID        string           `json:"id"`
	Timestamp string           `json:"timestamp"`
	Type      string           `json:"type"`
	Context   *MessageContext  `json:"context,omitempty"`
	Text      *TextBody        `json:"text,omitempty"`
	Location  *LocationBody    `json:"location,omitempty"`
	Reaction  *ReactionBody    `json:"reaction,omitempty"`
	Interact  *InteractiveBody `json:"interactive,omitempty"`
	Image     *MediaRef        `json:"image,omitempty"`
	Audio     *MediaRef        `json:"audio,omitempty"`
	Video     *MediaRef        `json:"video,omitempty"`
	Document  *MediaRef        `json:"document,omitempty"`
	Button    *ButtonBody      `json:"button,omitempty"`

	Raw map[string]json.RawMessage `json:"-"`
}

func (m *InboundMessage) UnmarshalJSON(data []byte) error {
	type alias InboundMessage
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = InboundMessage(a)
	// Keep the raw sub-objects so unrecognized types can still be extracted.
	return json.Unmarshal(data, &m.Raw)
}

// MediaFor returns the media reference matching the message's type tag.
func (m *InboundMessage) MediaFor() *MediaRef {
	switch m.Type {
	case "image":
		return m.Image
	case "audio":
		return m.Audio
	case "video":
		return m.Video
	case "document":
		return m.Document
	}
	return nil
}

type MessageContext struct {
	From string `json:"from,omitempty"`
	ID   string `json:"id"`
}

type TextBody struct {
	Body string `json:"body"`
}

type LocationBody struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

type ReactionBody struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

type InteractiveBody struct {
	Type     string    `json:"type"`
	NFMReply *NFMReply `json:"nfm_reply,omitempty"`
}

type NFMReply struct {
	Name         string `json:"name,omitempty"`
	Body         string `json:"body,omitempty"`
	ResponseJSON string `json:"response_json"`
}

type MediaRef struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type ButtonBody struct {
	Text    string `json:"text"`
	Payload string `json:"payload,omitempty"`
}

// StatusUpdate is one delivery-status unit of a status callback.
type StatusUpdate struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	Timestamp    string        `json:"timestamp,omitempty"`
	RecipientID  string        `json:"recipient_id,omitempty"`
	Conversation *Conversation `json:"conversation,omitempty"`
}

type Conversation struct {
	ID string `json:"id"`
}

// singleEntryEnvelope is the tolerated alternate top-level shape where
// "entry" is a single object rather than an array.
type singleEntryEnvelope struct {
	Object string `json:"object"`
	Entry  Entry  `json:"entry"`
}

// DecodeEnvelope parses a webhook payload, accepting both tolerated
// top-level shapes. The array form is tried first.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err == nil && len(env.Entry) > 0 {
		return &env, nil
	}

	var single singleEntryEnvelope
	if err := json.Unmarshal(data, &single); err == nil && len(single.Entry.Changes) > 0 {
		return &Envelope{Object: single.Object, Entry: []Entry{single.Entry}}, nil
	}

	return nil, fmt.Errorf("payload has no recognizable entry")
}

// FirstChange returns the first change of the first entry, which is where the
// vendor puts both message batches and status callbacks.
func (e *Envelope) FirstChange() *Change {
	if len(e.Entry) == 0 || len(e.Entry[0].Changes) == 0 {
		return nil
	}
	return &e.Entry[0].Changes[0]
}

// Messages returns the message units of the first change, if any.
func (e *Envelope) Messages() []InboundMessage {
	if c := e.FirstChange(); c != nil {
		return c.Value.Messages
	}
	return nil
}
