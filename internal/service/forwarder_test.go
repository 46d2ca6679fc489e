package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanotify/internal/errors"
	"wanotify/internal/models"
)

func TestForwardPostsEntries(t *testing.T) {
	var received []byte
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	entries := []models.Entry{{ID: "entry-1"}}
	err := NewAutomationForwarder(server.URL, time.Second).Forward(context.Background(), entries)
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	var decoded []models.Entry
	require.NoError(t, json.Unmarshal(received, &decoded))
	assert.Equal(t, entries, decoded)
}

func TestForwardRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewAutomationForwarder(server.URL, time.Second).Forward(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAutomationForward, errors.GetCode(err))
}

func TestForwardWithoutURL(t *testing.T) {
	err := NewAutomationForwarder("", time.Second).Forward(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMissingConfig, errors.GetCode(err))
}
