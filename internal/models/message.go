package models

import (
	"time"
)

type Direction string

const (
	DirectionIncoming Direction = "Incoming"
	DirectionOutgoing Direction = "Outgoing"
)

// ContentType identifies what the message body carries. The values mirror
// the vendor's message type tags so inbound rows keep the tag they arrived with.
type ContentType string

const (
	ContentTypeText     ContentType = "text"
	ContentTypeLocation ContentType = "location"
	ContentTypeReaction ContentType = "reaction"
	ContentTypeFlow     ContentType = "flow"
	ContentTypeImage    ContentType = "image"
	ContentTypeAudio    ContentType = "audio"
	ContentTypeVideo    ContentType = "video"
	ContentTypeDocument ContentType = "document"
	ContentTypeButton   ContentType = "button"
)

// MessageKind distinguishes template sends from plain text sends on the
// outgoing side. Incoming messages are always KindText.
type MessageKind string

const (
	KindText     MessageKind = "text"
	KindTemplate MessageKind = "template"
)

type DeliveryStatus string

const (
	DeliveryStatusSent      DeliveryStatus = "sent"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusRead      DeliveryStatus = "read"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

// Message is one stored WhatsApp message, either direction. VendorMessageID
// is the vendor-assigned id and, once set, is the unique join key for
// delivery status callbacks.
type Message struct {
	ID               int64          `db:"id"`
	Direction        Direction      `db:"direction"`
	Phone            string         `db:"phone"`
	Body             string         `db:"body"`
	ContentType      ContentType    `db:"content_type"`
	Kind             MessageKind    `db:"kind"`
	VendorMessageID  string         `db:"message_id"`
	ReplyToMessageID string         `db:"reply_to_message_id"`
	IsReply          bool           `db:"is_reply"`
	Status           DeliveryStatus `db:"status"`
	ConversationID   string         `db:"conversation_id"`
	MediaPath        *string        `db:"media_path"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// NotificationLog is an append-only audit record: one row per inbound webhook
// delivery and one per outbound send attempt, success or failure.
type NotificationLog struct {
	ID        int64     `db:"id"`
	Template  string    `db:"template"`
	MetaData  string    `db:"meta_data"`
	CreatedAt time.Time `db:"created_at"`
}

// Template is a vendor-approved message template. Status is the only field
// this service ever mutates, from template-approval callbacks.
type Template struct {
	Name         string `db:"name"`
	VendorID     string `db:"template_id"`
	ActualName   string `db:"actual_name"`
	LanguageCode string `db:"language_code"`
	HeaderType   string `db:"header_type"` // "", "DOCUMENT" or "IMAGE"
	Status       string `db:"status"`
}

// Site is a production site known to the chatbot keyword router.
type Site struct {
	Name     string `db:"name"`
	SiteName string `db:"site_name"`
	SiteAbbr string `db:"site_abbr"`
}

// User maps an account email to a display name for template parameters
// referencing owner or modified_by fields.
type User struct {
	Email    string `db:"email"`
	FullName string `db:"full_name"`
}

// SystemNotification is an in-app alert row created when a rule's channel is
// System Notification or Both.
type SystemNotification struct {
	ID           int64     `db:"id"`
	UserEmail    string    `db:"user_email"`
	Subject      string    `db:"subject"`
	Body         string    `db:"body"`
	DocumentType string    `db:"document_type"`
	DocumentName string    `db:"document_name"`
	CreatedAt    time.Time `db:"created_at"`
}
