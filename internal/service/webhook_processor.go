package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wanotify/internal/constants"
	"wanotify/internal/errors"
	"wanotify/internal/models"
	"wanotify/internal/privacy"
	"wanotify/pkg/whatsapp"
)

const webhookAuditLabel = "Webhook"

// WebhookStore is the persistence surface the inbound pipeline needs.
type WebhookStore interface {
	SaveMessage(ctx context.Context, msg *models.Message) (int64, error)
	AttachMediaToMessage(ctx context.Context, id int64, mediaPath string) error
	InsertNotificationLog(ctx context.Context, template, metaData string) error
	UpdateMessageStatus(ctx context.Context, vendorID, status, conversationID string) error
	UpdateTemplateStatusByVendorID(ctx context.Context, vendorID, status string) error
}

// TextReplier sends plain-text chatbot replies.
type TextReplier interface {
	SendText(ctx context.Context, to, body string) SendResult
}

// WebhookProcessor classifies inbound vendor callbacks: message units are
// persisted and routed through the chatbot, status callbacks update delivery
// and template state. Every payload is audit-logged before any processing.
type WebhookProcessor struct {
	store       WebhookStore
	sites       SiteLookup
	client      whatsapp.Client
	reporter    *Reporter
	forwarder   *AutomationForwarder
	replier     TextReplier
	verifyToken string
	mediaDir    string
	logger      *logrus.Logger
}

func NewWebhookProcessor(
	store WebhookStore,
	sites SiteLookup,
	client whatsapp.Client,
	reporter *Reporter,
	forwarder *AutomationForwarder,
	replier TextReplier,
	verifyToken string,
	mediaDir string,
	logger *logrus.Logger,
) *WebhookProcessor {
	return &WebhookProcessor{
		store:       store,
		sites:       sites,
		client:      client,
		reporter:    reporter,
		forwarder:   forwarder,
		replier:     replier,
		verifyToken: verifyToken,
		mediaDir:    mediaDir,
		logger:      logger,
	}
}

// VerifyToken checks a webhook verification request. The comparison is
// constant time; verification has no side effects.
func (p *WebhookProcessor) VerifyToken(token string) bool {
	if p.verifyToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(p.verifyToken)) == 1
}

// ProcessPayload handles one webhook POST body. Processing errors are logged
// and swallowed so the endpoint can acknowledge every delivery; the vendor
// retries on non-200 and a retry would not fare better.
func (p *WebhookProcessor) ProcessPayload(ctx context.Context, raw []byte) {
	if err := p.store.InsertNotificationLog(ctx, webhookAuditLabel, string(raw)); err != nil {
		p.logger.WithError(err).Error("Failed to audit-log webhook payload")
	}

	env, err := models.DecodeEnvelope(raw)
	if err != nil {
		p.logger.WithError(err).Warn("Discarding undecodable webhook payload")
		return
	}

	messages := env.Messages()
	if len(messages) == 0 {
		p.handleStatusChange(ctx, env.FirstChange())
		return
	}

	for i := range messages {
		stop, err := p.handleMessage(ctx, env, &messages[i])
		if err != nil {
			p.logger.WithFields(logrus.Fields{
				LogFieldMessageID: privacy.MaskMessageID(messages[i].ID),
				"type":            messages[i].Type,
			}).WithError(err).Error("Failed to process message unit")
		}
		if stop {
			return
		}
	}
}

// handleMessage dispatches one message unit on its type tag. A true stop
// signals that the whole batch was handed to the automation webhook.
func (p *WebhookProcessor) handleMessage(ctx context.Context, env *models.Envelope, m *models.InboundMessage) (stop bool, err error) {
	switch m.Type {
	case "text":
		return p.handleText(ctx, env, m)
	case "location":
		return p.handleLocation(ctx, env, m)
	case "reaction":
		return false, p.handleReaction(ctx, m)
	case "interactive":
		return false, p.handleInteractive(ctx, m)
	case "image", "audio", "video", "document":
		return false, p.handleMedia(ctx, m)
	case "button":
		return false, p.handleButton(ctx, m)
	default:
		return false, p.handleUnknown(ctx, m)
	}
}

func (p *WebhookProcessor) handleText(ctx context.Context, env *models.Envelope, m *models.InboundMessage) (bool, error) {
	if m.Text == nil {
		return false, errors.New(errors.ErrCodeInvalidPayload, "text message without text body")
	}
	body := m.Text.Body

	if _, err := p.saveInbound(ctx, m, body, models.ContentTypeText); err != nil {
		return false, err
	}

	if IsAttendanceKeyword(body) {
		if err := p.forwarder.Forward(ctx, env.Entry); err != nil {
			return false, err
		}
		return true, nil
	}

	if strings.EqualFold(strings.TrimSpace(body), "hello") {
		p.reply(ctx, m.From, constants.DefaultGreeting)
		return false, nil
	}

	reply, err := p.commandReply(ctx, body)
	if err != nil {
		return false, err
	}
	p.reply(ctx, m.From, reply)
	return false, nil
}

// commandReply routes free text through the keyword grammar and renders the
// matching report, or the usage hint when nothing matches.
func (p *WebhookProcessor) commandReply(ctx context.Context, text string) (string, error) {
	cmd, err := ParseCommand(ctx, text, p.sites)
	if err != nil {
		return "", err
	}
	if cmd.IsZero() {
		return constants.DefaultUsageHint, nil
	}

	switch cmd.Keyword {
	case KeywordProduction:
		return p.reporter.ProductionReport(ctx, cmd.SiteName, cmd.Year)
	case KeywordStockpile:
		return p.reporter.StockpileReport(ctx, cmd.SiteName, cmd.Year)
	}
	return constants.DefaultUsageHint, nil
}

func (p *WebhookProcessor) reply(ctx context.Context, to, body string) {
	if result := p.replier.SendText(ctx, to, body); result.Err != nil {
		p.logger.WithField(LogFieldRecipient, privacy.MaskPhoneNumber(to)).
			WithError(result.Err).Warn("Failed to send chatbot reply")
	}
}

func (p *WebhookProcessor) handleLocation(ctx context.Context, env *models.Envelope, m *models.InboundMessage) (bool, error) {
	if m.Location == nil {
		return false, errors.New(errors.ErrCodeInvalidPayload, "location message without location body")
	}

	body, err := json.Marshal(m.Location)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInvalidPayload, "failed to encode location")
	}
	if _, err := p.saveInbound(ctx, m, string(body), models.ContentTypeLocation); err != nil {
		return false, err
	}

	if err := p.forwarder.Forward(ctx, env.Entry); err != nil {
		return false, err
	}
	return true, nil
}

func (p *WebhookProcessor) handleReaction(ctx context.Context, m *models.InboundMessage) error {
	if m.Reaction == nil {
		return errors.New(errors.ErrCodeInvalidPayload, "reaction message without reaction body")
	}

	msg := p.inboundModel(m, m.Reaction.Emoji, models.ContentTypeReaction)
	// A reaction always references the message it reacts to.
	msg.ReplyToMessageID = m.Reaction.MessageID
	msg.IsReply = true
	_, err := p.store.SaveMessage(ctx, msg)
	return err
}

func (p *WebhookProcessor) handleInteractive(ctx context.Context, m *models.InboundMessage) error {
	if m.Interact == nil || m.Interact.NFMReply == nil {
		return errors.New(errors.ErrCodeInvalidPayload, "interactive message without nfm_reply")
	}
	_, err := p.saveInbound(ctx, m, m.Interact.NFMReply.ResponseJSON, models.ContentTypeFlow)
	return err
}

func (p *WebhookProcessor) handleMedia(ctx context.Context, m *models.InboundMessage) error {
	ref := m.MediaFor()
	if ref == nil {
		return errors.New(errors.ErrCodeInvalidPayload, "media message without media reference")
	}

	info, err := p.client.ResolveMedia(ctx, ref.ID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeMediaDownload, "failed to resolve media")
	}

	data, err := p.client.DownloadMedia(ctx, info.URL)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeMediaDownload, "failed to download media")
	}

	fileName := uuid.New().String() + extensionFromMime(info.MimeType)
	mediaPath := filepath.Join(p.mediaDir, fileName)
	if err := os.WriteFile(mediaPath, data, 0600); err != nil {
		return errors.Wrap(err, errors.ErrCodeMediaDownload, "failed to store media file")
	}

	body := ref.Caption
	if body == "" {
		body = fileName
	}
	id, err := p.saveInbound(ctx, m, body, models.ContentType(m.Type))
	if err != nil {
		return err
	}
	return p.store.AttachMediaToMessage(ctx, id, mediaPath)
}

func (p *WebhookProcessor) handleButton(ctx context.Context, m *models.InboundMessage) error {
	if m.Button == nil {
		return errors.New(errors.ErrCodeInvalidPayload, "button message without button body")
	}
	_, err := p.saveInbound(ctx, m, m.Button.Text, models.ContentType(m.Type))
	return err
}

// handleUnknown stores unrecognized message types with whatever body can be
// extracted from the raw sub-object, so nothing the vendor sends is dropped.
func (p *WebhookProcessor) handleUnknown(ctx context.Context, m *models.InboundMessage) error {
	var body string
	if raw, ok := m.Raw[m.Type]; ok {
		var sub map[string]interface{}
		if err := json.Unmarshal(raw, &sub); err == nil {
			body = stringify(sub[m.Type])
			if body == "" {
				body = string(raw)
			}
		} else {
			body = string(raw)
		}
	}
	_, err := p.saveInbound(ctx, m, body, models.ContentType(m.Type))
	return err
}

func (p *WebhookProcessor) saveInbound(ctx context.Context, m *models.InboundMessage, body string, contentType models.ContentType) (int64, error) {
	return p.store.SaveMessage(ctx, p.inboundModel(m, body, contentType))
}

func (p *WebhookProcessor) inboundModel(m *models.InboundMessage, body string, contentType models.ContentType) *models.Message {
	msg := &models.Message{
		Direction:       models.DirectionIncoming,
		Phone:           m.From,
		Body:            body,
		ContentType:     contentType,
		Kind:            models.KindText,
		VendorMessageID: m.ID,
	}
	if m.Context != nil {
		msg.IsReply = true
		msg.ReplyToMessageID = m.Context.ID
	}
	return msg
}

// handleStatusChange applies a status callback: template approvals update all
// templates sharing the vendor template id; delivery statuses update the
// matching outbound message, silently skipping unknown message ids.
func (p *WebhookProcessor) handleStatusChange(ctx context.Context, change *models.Change) {
	if change == nil {
		p.logger.Debug("Webhook payload carries no change, ignoring")
		return
	}

	switch change.Field {
	case models.ChangeFieldTemplateStatus:
		vendorID := strconv.FormatInt(change.Value.MessageTemplateID, 10)
		if err := p.store.UpdateTemplateStatusByVendorID(ctx, vendorID, change.Value.Event); err != nil {
			p.logger.WithError(err).Error("Failed to update template status")
		}
	case models.ChangeFieldMessages:
		for _, status := range change.Value.Statuses {
			conversationID := ""
			if status.Conversation != nil {
				conversationID = status.Conversation.ID
			}
			if err := p.store.UpdateMessageStatus(ctx, status.ID, status.Status, conversationID); err != nil {
				p.logger.WithFields(logrus.Fields{
					LogFieldMessageID: privacy.MaskMessageID(status.ID),
				}).WithError(err).Error("Failed to update message status")
			}
		}
	default:
		p.logger.WithField("field", change.Field).Debug("Ignoring unhandled change field")
	}
}

// extensionFromMime derives a file extension from a MIME type, e.g.
// "image/jpeg" -> ".jpeg". Parameters after ";" are ignored.
func extensionFromMime(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	_, subtype, ok := strings.Cut(strings.TrimSpace(mimeType), "/")
	if !ok || subtype == "" {
		return ""
	}
	return fmt.Sprintf(".%s", subtype)
}
