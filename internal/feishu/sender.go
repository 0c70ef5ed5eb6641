package feishu

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/memohai/relay/internal/config"
)

const requestTimeout = 30 * time.Second

// Sender posts interactive cards. With app credentials configured it sends
// through the official SDK; otherwise it falls back to the custom-bot
// webhook, signing requests when a secret is set.
type Sender struct {
	webhookURL string
	secret     string
	receiveID  string
	app        *lark.Client
	http       *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewSender creates a card sender from configuration.
func NewSender(log *slog.Logger, cfg config.FeishuConfig) (*Sender, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Sender{
		webhookURL: strings.TrimSpace(cfg.WebhookURL),
		secret:     strings.TrimSpace(cfg.Secret),
		receiveID:  strings.TrimSpace(cfg.ReceiveID),
		http: &http.Client{
			Timeout: requestTimeout,
		},
		logger: log.With(slog.String("service", "feishu")),
		now:    time.Now,
	}
	if cfg.AppID != "" && cfg.AppSecret != "" {
		if s.receiveID == "" {
			return nil, fmt.Errorf("feishu sender: receive_id is required with app credentials")
		}
		s.app = lark.NewClient(cfg.AppID, cfg.AppSecret)
	}
	if s.app == nil && s.webhookURL == "" {
		return nil, fmt.Errorf("feishu sender: webhook_url or app credentials are required")
	}
	return s, nil
}

// SendCard builds and delivers one interactive card.
func (s *Sender) SendCard(ctx context.Context, msg CardMessage) error {
	card := BuildCard(msg)
	if s.app != nil {
		return s.sendViaApp(ctx, card)
	}
	return s.sendViaWebhook(ctx, card)
}

func (s *Sender) sendViaApp(ctx context.Context, card Card) error {
	content, err := json.Marshal(card)
	if err != nil {
		return err
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDType(s.receiveID)).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(s.receiveID).
			MsgType(larkim.MsgTypeInteractive).
			Content(string(content)).
			Uuid(uuid.NewString()).
			Build()).
		Build()

	resp, err := s.app.Im.V1.Message.Create(ctx, req)
	if err != nil {
		s.logger.Error("card send failed", slog.Any("error", err))
		return err
	}
	if resp == nil || !resp.Success() {
		code := 0
		msg := ""
		if resp != nil {
			code = resp.Code
			msg = resp.Msg
		}
		s.logger.Error("card send failed", slog.Int("code", code), slog.String("msg", msg))
		return fmt.Errorf("feishu card send failed: %s (code: %d)", msg, code)
	}
	return nil
}

type webhookEnvelope struct {
	Timestamp string `json:"timestamp,omitempty"`
	Sign      string `json:"sign,omitempty"`
	MsgType   string `json:"msg_type"`
	Card      Card   `json:"card"`
}

type webhookResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (s *Sender) sendViaWebhook(ctx context.Context, card Card) error {
	envelope := webhookEnvelope{
		MsgType: "interactive",
		Card:    card,
	}
	if s.secret != "" {
		timestamp := strconv.FormatInt(s.now().Unix(), 10)
		envelope.Timestamp = timestamp
		envelope.Sign = webhookSign(timestamp, s.secret)
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("feishu webhook: status %d", resp.StatusCode)
	}
	var parsed webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		// 2xx with an unreadable body still counts as delivered.
		return nil
	}
	if parsed.Code != 0 {
		return fmt.Errorf("feishu webhook: %s (code: %d)", parsed.Msg, parsed.Code)
	}
	return nil
}

// webhookSign computes the custom-bot signature: HMAC-SHA256 keyed with
// timestamp+"\n"+secret over an empty body, base64-encoded.
func webhookSign(timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(timestamp+"\n"+secret))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func receiveIDType(receiveID string) string {
	switch {
	case strings.HasPrefix(receiveID, "ou_"):
		return "open_id"
	case strings.HasPrefix(receiveID, "on_"):
		return "union_id"
	case strings.HasPrefix(receiveID, "oc_"):
		return "chat_id"
	case strings.Contains(receiveID, "@"):
		return "email"
	default:
		return "chat_id"
	}
}
