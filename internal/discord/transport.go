package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultAPIBase = "https://discord.com/api/v10"
	requestTimeout = 30 * time.Second
)

// Client posts payloads to the webhook or, with a bot token, straight to a
// channel endpoint. A single conditional retry applies to both paths: a
// client-error rejection of a payload carrying a message reference is
// resent exactly once with the reference stripped, so replies to deleted
// messages degrade to plain sends instead of failing the chunk.
type Client struct {
	webhookURL string
	botToken   string
	apiBase    string
	http       *http.Client
	logger     *slog.Logger
}

// NewClient creates a transport client. proxyURL optionally routes all
// outbound requests through an HTTP(S) proxy.
func NewClient(log *slog.Logger, webhookURL, botToken, proxyURL string) (*Client, error) {
	if strings.TrimSpace(webhookURL) == "" {
		return nil, fmt.Errorf("discord client: webhook url is required")
	}
	if log == nil {
		log = slog.Default()
	}

	transport := http.DefaultTransport
	if strings.TrimSpace(proxyURL) != "" {
		proxy, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("discord client: parse proxy url: %w", err)
		}
		transport = &http.Transport{Proxy: http.ProxyURL(proxy)}
	}

	return &Client{
		webhookURL: strings.TrimRight(webhookURL, "/"),
		botToken:   strings.TrimSpace(botToken),
		apiBase:    defaultAPIBase,
		http: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
		logger: log.With(slog.String("client", "discord")),
	}, nil
}

// SetAPIBase overrides the bot-API base URL, for API-compatible proxies.
func (c *Client) SetAPIBase(base string) {
	if strings.TrimSpace(base) != "" {
		c.apiBase = strings.TrimRight(base, "/")
	}
}

// WebhookInfo fetches the webhook metadata (owning guild, default channel,
// display name).
func (c *Client) WebhookInfo(ctx context.Context) (WebhookInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.webhookURL, nil)
	if err != nil {
		return WebhookInfo{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return WebhookInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return WebhookInfo{}, fmt.Errorf("webhook info: status %d", resp.StatusCode)
	}
	var info WebhookInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return WebhookInfo{}, fmt.Errorf("webhook info: decode: %w", err)
	}
	return info, nil
}

// ExecuteWebhook delivers one payload through the webhook. wait=true asks
// the destination for the created message so the result can be captured.
func (c *Client) ExecuteWebhook(ctx context.Context, payload Payload, files []File) (*MessageRef, error) {
	return c.send(ctx, c.webhookURL+"?wait=true", "", payload, files)
}

// SendChannelMessage delivers one payload through the bot-token API.
func (c *Client) SendChannelMessage(ctx context.Context, channelID string, payload Payload, files []File) (*MessageRef, error) {
	if c.botToken == "" {
		return nil, fmt.Errorf("bot token is not configured")
	}
	if strings.TrimSpace(channelID) == "" {
		return nil, fmt.Errorf("channel id is required")
	}
	endpoint := c.apiBase + "/channels/" + channelID + "/messages"
	return c.send(ctx, endpoint, "Bot "+c.botToken, payload, files)
}

func (c *Client) send(ctx context.Context, endpoint, authorization string, payload Payload, files []File) (*MessageRef, error) {
	ref, status, err := c.post(ctx, endpoint, authorization, payload, files)
	if err == nil {
		return ref, nil
	}
	if payload.MessageReference != nil && status >= 400 && status < 500 {
		c.logger.Warn("reply reference rejected, resending without it",
			slog.Int("status", status),
			slog.String("message_id", payload.MessageReference.MessageID),
		)
		payload.MessageReference = nil
		ref, _, retryErr := c.post(ctx, endpoint, authorization, payload, files)
		return ref, retryErr
	}
	return nil, err
}

// post performs one HTTP attempt. The returned status is zero for transport
// failures that never produced a response.
func (c *Client) post(ctx context.Context, endpoint, authorization string, payload Payload, files []File) (*MessageRef, int, error) {
	var (
		body        []byte
		contentType string
		err         error
	)
	if len(files) > 0 {
		body, contentType, err = encodeMultipart(payload, files)
	} else {
		contentType = "application/json"
		body, err = json.Marshal(payload)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	req.ContentLength = int64(len(body))
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode, fmt.Errorf("send failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var ref MessageRef
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		// Unparsable success body means no confirmation, not a failure.
		return nil, resp.StatusCode, nil
	}
	if ref.ID == "" || ref.ChannelID == "" {
		return nil, resp.StatusCode, nil
	}
	return &ref, resp.StatusCode, nil
}

// encodeMultipart builds a multipart body with one payload_json part and one
// files[n] part per file, under a random per-request boundary.
func encodeMultipart(payload Payload, files []File) ([]byte, string, error) {
	refs := make([]AttachmentRef, 0, len(files))
	for i, f := range files {
		refs = append(refs, AttachmentRef{ID: i, Filename: f.Name})
	}
	payload.Attachments = refs

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.SetBoundary("relay" + strings.ReplaceAll(uuid.NewString(), "-", "")); err != nil {
		return nil, "", err
	}

	jsonHeader := textproto.MIMEHeader{}
	jsonHeader.Set("Content-Disposition", `form-data; name="payload_json"`)
	jsonHeader.Set("Content-Type", "application/json")
	part, err := writer.CreatePart(jsonHeader)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(payloadJSON); err != nil {
		return nil, "", err
	}

	for i, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files[%d]"; filename=%q`, i, f.Name))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
