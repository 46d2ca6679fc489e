package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wanotify/internal/errors"
	"wanotify/internal/models"
)

// AutomationForwarder relays attendance keywords and location messages to the
// external automation webhook, passing the vendor's entry array through
// unchanged so downstream flows see the original payload.
type AutomationForwarder struct {
	webhookURL string
	httpClient *http.Client
}

func NewAutomationForwarder(webhookURL string, timeout time.Duration) *AutomationForwarder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AutomationForwarder{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Forward posts the raw entry array to the automation webhook.
func (f *AutomationForwarder) Forward(ctx context.Context, entries []models.Entry) error {
	if f.webhookURL == "" {
		return errors.New(errors.ErrCodeMissingConfig, "automation webhook URL not configured")
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeAutomationForward, "failed to marshal entries")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhookURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeAutomationForward, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return errors.WrapRetryable(err, errors.ErrCodeAutomationForward, "failed to reach automation webhook")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New(errors.ErrCodeAutomationForward,
			fmt.Sprintf("automation webhook returned status %d", resp.StatusCode))
	}
	return nil
}
