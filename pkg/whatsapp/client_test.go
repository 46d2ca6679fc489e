package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanotify/pkg/whatsapp/types"
)

func testClient(serverURL string) Client {
	return NewClient(types.ClientConfig{
		BaseURL:    serverURL,
		APIVersion: "v17.0",
		PhoneID:    "1234567890",
		Token:      "test-token",
		Timeout:    5 * time.Second,
	})
}

func TestSendMessage(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messaging_product":"whatsapp","messages":[{"id":"wamid.sent"}]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	resp, err := client.SendMessage(context.Background(), types.NewTextPayload("628111111111", "hello"))

	require.NoError(t, err)
	assert.Equal(t, "wamid.sent", resp.MessageID())
	assert.Equal(t, "/v17.0/1234567890/messages", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "whatsapp", gotBody["messaging_product"])
	assert.Equal(t, "text", gotBody["type"])
}

func TestSendMessageTemplatePayloadShape(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.tpl"}]}`))
	}))
	defer server.Close()

	payload := types.NewTemplatePayload("628111111111", "order_confirmation", "en", nil)
	_, err := testClient(server.URL).SendMessage(context.Background(), payload)
	require.NoError(t, err)

	tpl, ok := gotBody["template"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "order_confirmation", tpl["name"])
	// Components must serialize as an empty array, not null.
	components, ok := tpl["components"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, components)
}

func TestSendMessageVendorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter","type":"OAuthException","code":100}}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).SendMessage(context.Background(), types.NewTextPayload("628", "x"))

	require.Error(t, err)
	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 100, apiErr.Code)
	assert.Contains(t, apiErr.Error(), "Invalid parameter")
}

func TestSendMessageRejectsMissingMessageID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"messages":[]}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).SendMessage(context.Background(), types.NewTextPayload("628", "x"))
	assert.Error(t, err)
}

func TestResolveMedia(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"id":"media-1","url":"https://lookaside.example.com/media-1","mime_type":"image/jpeg"}`))
	}))
	defer server.Close()

	info, err := testClient(server.URL).ResolveMedia(context.Background(), "media-1")

	require.NoError(t, err)
	assert.Equal(t, "/v17.0/media-1/", gotPath)
	assert.Equal(t, "https://lookaside.example.com/media-1", info.URL)
	assert.Equal(t, "image/jpeg", info.MimeType)
}

func TestResolveMediaRejectsMissingURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"media-1"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).ResolveMedia(context.Background(), "media-1")
	assert.Error(t, err)
}

func TestDownloadMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("binary-data"))
	}))
	defer server.Close()

	data, err := testClient(server.URL).DownloadMedia(context.Background(), server.URL+"/file")

	require.NoError(t, err)
	assert.Equal(t, []byte("binary-data"), data)
}

func TestDownloadMediaErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(server.URL).DownloadMedia(context.Background(), server.URL+"/file")
	assert.Error(t, err)
}
