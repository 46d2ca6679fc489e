package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"wanotify/internal/errors"
	"wanotify/internal/models"
	"wanotify/internal/privacy"
	"wanotify/internal/templating"
	"wanotify/internal/validation"
	"wanotify/pkg/whatsapp"
	"wanotify/pkg/whatsapp/types"
)

const textMessageLabel = "Text Message"

// NotifierStore is the persistence surface the dispatcher needs.
type NotifierStore interface {
	SaveMessage(ctx context.Context, msg *models.Message) (int64, error)
	InsertNotificationLog(ctx context.Context, template, metaData string) error
	GetTemplate(ctx context.Context, name string) (*models.Template, error)
	GetUserFullName(ctx context.Context, email string) (string, error)
	InsertSystemNotification(ctx context.Context, n *models.SystemNotification) error
}

// SendResult is the outcome of one send attempt. Exactly one of Response and
// Err is set; callers inspect the value rather than any shared state.
type SendResult struct {
	Recipient string              `json:"recipient"`
	OK        bool                `json:"ok"`
	Response  *types.SendResponse `json:"response,omitempty"`
	Err       error               `json:"-"`
	ErrorText string              `json:"error,omitempty"`
}

// Notifier dispatches rule-driven template notifications and plain-text
// chatbot replies through the vendor API, persisting one message row per
// accepted send and one audit log row per attempt.
type Notifier struct {
	store  NotifierStore
	client whatsapp.Client
	share  *ShareLinker
	logger *logrus.Logger
}

func NewNotifier(store NotifierStore, client whatsapp.Client, share *ShareLinker, logger *logrus.Logger) *Notifier {
	return &Notifier{store: store, client: client, share: share, logger: logger}
}

// Dispatch runs one rule against a document snapshot. A nil result with a nil
// error means the rule was skipped (disabled or condition not met). A non-nil
// error reports a configuration problem found before any send; per-recipient
// send failures land in the results and never abort the remaining recipients.
// Dispatching the same document twice sends twice.
func (n *Notifier) Dispatch(ctx context.Context, rule *models.NotificationRule, doc map[string]interface{}) ([]SendResult, error) {
	if !rule.Enabled {
		return nil, nil
	}
	if !EvaluateCondition(rule.Condition, doc) {
		n.logger.WithField(LogFieldRule, rule.Name).Debug("Rule condition not met, skipping")
		return nil, nil
	}

	if rule.Channel.SendsSystem() {
		n.createSystemNotifications(ctx, rule, doc)
	}
	if !rule.Channel.SendsWhatsApp() {
		return nil, nil
	}

	tpl, err := n.store.GetTemplate(ctx, rule.Template)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseQuery, "failed to load template")
	}
	if tpl == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown template").
			WithContext("template", rule.Template)
	}

	components, err := n.buildComponents(ctx, rule, tpl, doc)
	if err != nil {
		return nil, err
	}

	recipients := resolveRecipients(rule.Recipients, doc)
	results := make([]SendResult, 0, len(recipients))
	for _, recipient := range recipients {
		payload := types.NewTemplatePayload(recipient, tpl.ActualName, tpl.LanguageCode, components)
		results = append(results, n.send(ctx, rule.Template, payload, models.KindTemplate))
	}
	return results, nil
}

// SendText sends one plain-text message, used for chatbot replies.
func (n *Notifier) SendText(ctx context.Context, to, body string) SendResult {
	payload := types.NewTextPayload(validation.FormatNumber(to), body)
	return n.send(ctx, textMessageLabel, payload, models.KindText)
}

func (n *Notifier) send(ctx context.Context, label string, payload types.Payload, kind models.MessageKind) SendResult {
	resp, err := n.client.SendMessage(ctx, payload)
	if err != nil {
		n.logger.WithFields(logrus.Fields{
			LogFieldRecipient: privacy.MaskPhoneNumber(payload.To),
			LogFieldRule:      label,
		}).WithError(err).Warn("Vendor send failed")
		n.logAttempt(ctx, label, map[string]interface{}{"error": err.Error()})
		return SendResult{Recipient: payload.To, Err: err, ErrorText: err.Error()}
	}

	msg := &models.Message{
		Direction:   models.DirectionOutgoing,
		Phone:       payload.To,
		Body:        outgoingBody(payload),
		ContentType: models.ContentTypeText,
		Kind:        kind,
		Status:      models.DeliveryStatusSent,
	}
	msg.VendorMessageID = resp.MessageID()
	if _, err := n.store.SaveMessage(ctx, msg); err != nil {
		n.logger.WithError(err).Error("Failed to persist outgoing message")
	}
	n.logAttempt(ctx, label, resp)

	n.logger.WithFields(logrus.Fields{
		LogFieldRecipient: privacy.MaskPhoneNumber(payload.To),
		LogFieldMessageID: privacy.MaskMessageID(resp.MessageID()),
	}).Info("Message sent")
	return SendResult{Recipient: payload.To, OK: true, Response: resp}
}

func (n *Notifier) logAttempt(ctx context.Context, label string, meta interface{}) {
	data, err := json.Marshal(meta)
	if err != nil {
		data = []byte(`{}`)
	}
	if err := n.store.InsertNotificationLog(ctx, label, string(data)); err != nil {
		n.logger.WithError(err).Error("Failed to write notification log")
	}
}

func outgoingBody(payload types.Payload) string {
	if payload.Text != nil {
		return payload.Text.Body
	}
	if payload.Template != nil {
		return payload.Template.Name
	}
	return ""
}

// buildComponents assembles the positional body parameters and the optional
// attachment header for a template send.
func (n *Notifier) buildComponents(ctx context.Context, rule *models.NotificationRule, tpl *models.Template, doc map[string]interface{}) ([]types.Component, error) {
	var components []types.Component

	if len(rule.Fields) > 0 {
		params := make([]types.Parameter, 0, len(rule.Fields))
		for _, field := range rule.Fields {
			params = append(params, types.TextParameter(n.fieldValue(ctx, field, doc)))
		}
		components = append(components, types.Component{Type: "body", Parameters: params})
	}

	header, err := n.buildHeader(rule, tpl, doc)
	if err != nil {
		return nil, err
	}
	if header != nil {
		components = append(components, *header)
	}
	return components, nil
}

func (n *Notifier) buildHeader(rule *models.NotificationRule, tpl *models.Template, doc map[string]interface{}) (*types.Component, error) {
	if tpl.HeaderType == "" {
		return nil, nil
	}

	var link, filename string
	switch {
	case rule.AttachPrint:
		docType, docName := documentIdentity(doc)
		if docName == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "document has no name for print attachment")
		}
		link, filename = n.share.DocumentPrintLink(docType, docName)
	case rule.AttachFromField != "":
		fileURL := stringify(doc[rule.AttachFromField])
		if fileURL == "" {
			return nil, nil
		}
		link, filename = n.share.FileLink(fileURL), rule.AttachFilename
	case rule.AttachURL != "":
		link, filename = rule.AttachURL, rule.AttachFilename
	default:
		return nil, nil
	}

	switch tpl.HeaderType {
	case types.HeaderTypeDocument:
		header := types.DocumentHeader(link, filename)
		return &header, nil
	case types.HeaderTypeImage:
		header := types.ImageHeader(link)
		return &header, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported template header type").
		WithContext("header_type", tpl.HeaderType)
}

// fieldValue renders one template parameter from the document. Account fields
// resolve to display names; date-shaped strings render as "2 Jan 2006".
func (n *Notifier) fieldValue(ctx context.Context, field string, doc map[string]interface{}) string {
	value := stringify(doc[field])

	if field == "owner" || field == "modified_by" {
		if name, err := n.store.GetUserFullName(ctx, value); err == nil {
			return name
		}
		return value
	}

	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.Format("2 Jan 2006")
		}
	}
	return value
}

func (n *Notifier) createSystemNotifications(ctx context.Context, rule *models.NotificationRule, doc map[string]interface{}) {
	docType, docName := documentIdentity(doc)
	subject := templating.Render(rule.Subject, doc)
	body := templating.Render(rule.Message, doc)

	for _, recipient := range rule.Recipients {
		if templating.HasMarker(recipient) {
			recipient = templating.Render(recipient, doc)
		}
		if recipient == "" {
			continue
		}
		err := n.store.InsertSystemNotification(ctx, &models.SystemNotification{
			UserEmail:    recipient,
			Subject:      subject,
			Body:         body,
			DocumentType: docType,
			DocumentName: docName,
		})
		if err != nil {
			n.logger.WithError(err).Error("Failed to create system notification")
		}
	}
}

// resolveRecipients renders templated recipient entries against the document,
// normalizes numbers, and drops entries that render empty.
func resolveRecipients(raw []string, doc map[string]interface{}) []string {
	recipients := make([]string, 0, len(raw))
	for _, entry := range raw {
		if templating.HasMarker(entry) {
			entry = templating.Render(entry, doc)
		}
		entry = validation.FormatNumber(entry)
		if entry == "" {
			continue
		}
		recipients = append(recipients, entry)
	}
	return recipients
}

func documentIdentity(doc map[string]interface{}) (docType, docName string) {
	return stringify(doc["doctype"]), stringify(doc["name"])
}
