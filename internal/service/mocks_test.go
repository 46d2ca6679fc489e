package service

import (
	"context"
	"sync"

	"wanotify/internal/models"
	"wanotify/pkg/whatsapp/types"
)

type logEntry struct {
	template string
	metaData string
}

type statusUpdate struct {
	vendorID       string
	status         string
	conversationID string
}

type templateStatusUpdate struct {
	vendorID string
	status   string
}

// mockStore is a hand-rolled in-memory stand-in for the database, shared by
// the notifier and webhook processor tests.
type mockStore struct {
	mu sync.Mutex

	messages            []*models.Message
	logs                []logEntry
	systemNotifications []*models.SystemNotification
	statusUpdates       []statusUpdate
	templateUpdates     []templateStatusUpdate
	attachments         map[int64]string

	templates map[string]*models.Template
	users     map[string]string
	sites     map[string]*models.Site

	saveMessageErr error
	nextID         int64
}

func newMockStore() *mockStore {
	return &mockStore{
		attachments: make(map[int64]string),
		templates:   make(map[string]*models.Template),
		users:       make(map[string]string),
		sites:       make(map[string]*models.Site),
	}
}

func (m *mockStore) SaveMessage(ctx context.Context, msg *models.Message) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveMessageErr != nil {
		return 0, m.saveMessageErr
	}
	m.nextID++
	msg.ID = m.nextID
	m.messages = append(m.messages, msg)
	return m.nextID, nil
}

func (m *mockStore) InsertNotificationLog(ctx context.Context, template, metaData string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, logEntry{template: template, metaData: metaData})
	return nil
}

func (m *mockStore) GetTemplate(ctx context.Context, name string) (*models.Template, error) {
	return m.templates[name], nil
}

func (m *mockStore) GetUserFullName(ctx context.Context, email string) (string, error) {
	if name, ok := m.users[email]; ok {
		return name, nil
	}
	return email, nil
}

func (m *mockStore) InsertSystemNotification(ctx context.Context, n *models.SystemNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.systemNotifications = append(m.systemNotifications, n)
	return nil
}

func (m *mockStore) AttachMediaToMessage(ctx context.Context, id int64, mediaPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attachments[id] = mediaPath
	return nil
}

func (m *mockStore) UpdateMessageStatus(ctx context.Context, vendorID, status, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusUpdates = append(m.statusUpdates, statusUpdate{vendorID, status, conversationID})
	return nil
}

func (m *mockStore) UpdateTemplateStatusByVendorID(ctx context.Context, vendorID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templateUpdates = append(m.templateUpdates, templateStatusUpdate{vendorID, status})
	return nil
}

func (m *mockStore) GetSiteByAbbr(ctx context.Context, abbr string) (*models.Site, error) {
	return m.sites[abbr], nil
}

// mockWhatsAppClient fakes the vendor client. Each hook defaults to a benign
// success when nil.
type mockWhatsAppClient struct {
	mu       sync.Mutex
	sent     []types.Payload
	sendFn   func(payload types.Payload) (*types.SendResponse, error)
	media    map[string]*types.MediaInfo
	mediaErr error
	content  []byte
}

func (m *mockWhatsAppClient) SendMessage(ctx context.Context, payload types.Payload) (*types.SendResponse, error) {
	m.mu.Lock()
	m.sent = append(m.sent, payload)
	m.mu.Unlock()
	if m.sendFn != nil {
		return m.sendFn(payload)
	}
	return acceptedResponse("wamid.test"), nil
}

func (m *mockWhatsAppClient) ResolveMedia(ctx context.Context, mediaID string) (*types.MediaInfo, error) {
	if m.mediaErr != nil {
		return nil, m.mediaErr
	}
	if info, ok := m.media[mediaID]; ok {
		return info, nil
	}
	return &types.MediaInfo{ID: mediaID, URL: "https://media.example.com/" + mediaID, MimeType: "image/jpeg"}, nil
}

func (m *mockWhatsAppClient) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	if m.mediaErr != nil {
		return nil, m.mediaErr
	}
	if m.content != nil {
		return m.content, nil
	}
	return []byte("media-bytes"), nil
}

func acceptedResponse(messageID string) *types.SendResponse {
	resp := &types.SendResponse{MessagingProduct: "whatsapp"}
	resp.Messages = append(resp.Messages, struct {
		ID string `json:"id"`
	}{ID: messageID})
	return resp
}

// mockReplier records chatbot replies.
type mockReplier struct {
	mu      sync.Mutex
	replies []struct{ to, body string }
	result  SendResult
}

func (m *mockReplier) SendText(ctx context.Context, to, body string) SendResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, struct{ to, body string }{to, body})
	return m.result
}
