package discord

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(testLogger(), serverURL+"/webhook", "test-token", "")
	require.NoError(t, err)
	client.apiBase = serverURL
	return client
}

func TestExecuteWebhookSuccess(t *testing.T) {
	var gotPayload Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/webhook", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("wait"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_, _ = w.Write([]byte(`{"id":"111","channel_id":"222"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	payload := NewPayload()
	payload.Content = "hello"

	ref, err := client.ExecuteWebhook(context.Background(), payload, nil)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "111", ref.ID)
	assert.Equal(t, "222", ref.ChannelID)

	require.NotNil(t, gotPayload.AllowedMentions)
	assert.Empty(t, gotPayload.AllowedMentions.Parse)
	assert.False(t, gotPayload.AllowedMentions.RepliedUser)
}

func TestExecuteWebhookNoConfirmation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ref, err := client.ExecuteWebhook(context.Background(), Payload{Content: "hi"}, nil)
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestStripReplyReferenceRetry(t *testing.T) {
	var attempts int
	var second Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		var p Payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		if attempts == 1 {
			require.NotNil(t, p.MessageReference)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":50035,"message":"Invalid Form Body"}`))
			return
		}
		second = p
		_, _ = w.Write([]byte(`{"id":"333","channel_id":"444"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	payload := Payload{
		Content:          "reply text",
		MessageReference: &discordgo.MessageReference{MessageID: "999", ChannelID: "444"},
	}

	ref, err := client.ExecuteWebhook(context.Background(), payload, nil)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "333", ref.ID)
	assert.Equal(t, 2, attempts)
	assert.Nil(t, second.MessageReference)
}

func TestNoRetryWithoutReference(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.ExecuteWebhook(context.Background(), Payload{Content: "hi"}, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestNoRetryOnServerError(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	payload := Payload{
		Content:          "hi",
		MessageReference: &discordgo.MessageReference{MessageID: "999"},
	}
	_, err := client.ExecuteWebhook(context.Background(), payload, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestSendChannelMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/channels/777/messages", r.URL.Path)
		require.Equal(t, "Bot test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"555","channel_id":"777"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ref, err := client.SendChannelMessage(context.Background(), "777", Payload{Content: "hi"}, nil)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "555", ref.ID)
}

func TestSendChannelMessageRequiresToken(t *testing.T) {
	client, err := NewClient(testLogger(), "http://example.invalid/webhook", "", "")
	require.NoError(t, err)
	_, err = client.SendChannelMessage(context.Background(), "777", Payload{Content: "hi"}, nil)
	assert.Error(t, err)
}

func TestMultipartEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		mediaType, params, err := mime.ParseMediaType(contentType)
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)
		require.True(t, strings.HasPrefix(params["boundary"], "relay"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		payloadJSON := r.MultipartForm.Value["payload_json"]
		require.Len(t, payloadJSON, 1)

		var p Payload
		require.NoError(t, json.Unmarshal([]byte(payloadJSON[0]), &p))
		require.Len(t, p.Attachments, 2)
		assert.Equal(t, 0, p.Attachments[0].ID)
		assert.Equal(t, "a.png", p.Attachments[0].Filename)
		assert.Equal(t, "b.bin", p.Attachments[1].Filename)

		files := r.MultipartForm.File
		require.Len(t, files["files[0]"], 1)
		require.Len(t, files["files[1]"], 1)
		assert.Equal(t, "image/png", files["files[0]"][0].Header.Get("Content-Type"))

		_, _ = w.Write([]byte(`{"id":"111","channel_id":"222"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	files := []File{
		{Name: "a.png", ContentType: "image/png", Data: []byte("png-bytes")},
		{Name: "b.bin", Data: []byte("raw-bytes")},
	}
	ref, err := client.ExecuteWebhook(context.Background(), Payload{Content: "with files"}, files)
	require.NoError(t, err)
	require.NotNil(t, ref)
}

func TestMultipartBoundaryIsPerRequest(t *testing.T) {
	first, _, err := encodeMultipart(Payload{Content: "a"}, []File{{Name: "f", Data: []byte("x")}})
	require.NoError(t, err)
	second, _, err := encodeMultipart(Payload{Content: "a"}, []File{{Name: "f", Data: []byte("x")}})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestWebhookInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"guild_id":"g1","channel_id":"c1","name":"relay"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	info, err := client.WebhookInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "g1", info.GuildID)
	assert.Equal(t, "c1", info.ChannelID)
	assert.Equal(t, "relay", info.Name)
}

func TestDownloadCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, MaxFileBytes+1))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Download(context.Background(), server.URL+"/big")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileTooLarge))
}

func TestDownloadSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("file-contents"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	data, err := client.Download(context.Background(), server.URL+"/f")
	require.NoError(t, err)
	assert.Equal(t, "file-contents", string(data))
}
