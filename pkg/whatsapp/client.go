package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wanotify/pkg/whatsapp/types"
)

// Client is the vendor Cloud API surface this service depends on.
type Client interface {
	SendMessage(ctx context.Context, payload types.Payload) (*types.SendResponse, error)
	ResolveMedia(ctx context.Context, mediaID string) (*types.MediaInfo, error)
	DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error)
}

type client struct {
	cfg        types.ClientConfig
	httpClient *http.Client
}

func NewClient(cfg types.ClientConfig) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SendMessage posts one message payload to the vendor's /messages endpoint.
func (c *client) SendMessage(ctx context.Context, payload types.Payload) (*types.SendResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages",
		strings.TrimSuffix(c.cfg.BaseURL, "/"), c.cfg.APIVersion, c.cfg.PhoneID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp.StatusCode, data)
	}

	var result types.SendResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.MessageID() == "" {
		return nil, fmt.Errorf("response contains no message id")
	}

	return &result, nil
}

// ResolveMedia exchanges a media id for a short-lived download URL.
func (c *client) ResolveMedia(ctx context.Context, mediaID string) (*types.MediaInfo, error) {
	url := fmt.Sprintf("%s/%s/%s/",
		strings.TrimSuffix(c.cfg.BaseURL, "/"), c.cfg.APIVersion, mediaID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, data)
	}

	var info types.MediaInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to decode media info: %w", err)
	}
	if info.URL == "" {
		return nil, fmt.Errorf("media info contains no URL")
	}

	return &info, nil
}

// DownloadMedia fetches the bytes behind a resolved media URL.
func (c *client) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read media body: %w", err)
	}

	return data, nil
}

func decodeAPIError(status int, body []byte) error {
	var envelope types.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &envelope.Error
	}
	return fmt.Errorf("request failed with status %d: %s", status, string(body))
}
