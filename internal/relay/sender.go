// Package relay implements the outbound dispatch pipeline: normalize text,
// decide translation, split into chunks, and deliver each chunk through the
// selected transport.
package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/memohai/relay/internal/config"
	"github.com/memohai/relay/internal/discord"
	"github.com/memohai/relay/internal/lang"
	"github.com/memohai/relay/internal/translate"
)

// translationSeparator joins original and translated text. Text that already
// contains it is treated as bearing a translation and is never re-translated.
const translationSeparator = "\n---\n"

// Platform length limits per chunk.
const (
	plainChunkSize = 2000
	richChunkSize  = 4096
)

// ReplyTarget points at the destination message a source message replied to.
type ReplyTarget struct {
	ChannelID string `json:"channel_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

// Upload describes a remote file fetched into memory and re-uploaded with
// the message.
type Upload struct {
	URL     string `json:"url"`
	Name    string `json:"name,omitempty"`
	IsImage bool   `json:"is_image,omitempty"`
	IsVideo bool   `json:"is_video,omitempty"`
}

// Message is one logical outbound message, consumed once per SendData call.
type Message struct {
	Content    string                    `json:"content"`
	SourceID   string                    `json:"source_id,omitempty"`
	ReplyTo    *ReplyTarget              `json:"reply_to,omitempty"`
	Username   string                    `json:"username,omitempty"`
	AvatarURL  string                    `json:"avatar_url,omitempty"`
	Rich       bool                      `json:"rich,omitempty"`
	Embeds     []*discordgo.MessageEmbed `json:"embeds,omitempty"`
	Uploads    []Upload                  `json:"uploads,omitempty"`
	Components []json.RawMessage         `json:"components,omitempty"`
}

// Result maps a source message to one created destination message. SourceID
// is set only on the first chunk of a message.
type Result struct {
	SourceID  string `json:"source_id,omitempty"`
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
}

// Sender owns the delivery configuration for one webhook destination.
// Construct once, then call Prepare and SendData.
type Sender struct {
	transport    *discord.Client
	translator   *translate.Service
	replacements []lang.Pair
	botRelay     bool
	logger       *slog.Logger

	mu   sync.Mutex
	info discord.WebhookInfo
}

// NewSender builds a sender from configuration.
func NewSender(log *slog.Logger, cfg config.Config) (*Sender, error) {
	if log == nil {
		log = slog.Default()
	}
	transport, err := discord.NewClient(log, cfg.Webhook.URL, cfg.Bot.Token, cfg.Webhook.Proxy)
	if err != nil {
		return nil, err
	}
	transport.SetAPIBase(cfg.Bot.APIBase)

	pairs := make([]lang.Pair, 0, len(cfg.Replacements))
	for _, r := range cfg.Replacements {
		pairs = append(pairs, lang.Pair{Find: r.Find, Replace: r.Replace})
	}

	return &Sender{
		transport:    transport,
		translator:   translate.NewService(log, cfg.Translate),
		replacements: pairs,
		botRelay:     cfg.Bot.Enabled && strings.TrimSpace(cfg.Bot.Token) != "",
		logger:       log.With(slog.String("service", "relay")),
	}, nil
}

// Prepare resolves the webhook metadata (owning guild, default channel,
// display name) to enable bot-relay routing. Failures are swallowed; the
// sender degrades to webhook-only delivery.
func (s *Sender) Prepare(ctx context.Context) {
	info, err := s.transport.WebhookInfo(ctx)
	if err != nil {
		s.logger.Warn("webhook metadata unavailable, staying on webhook delivery", slog.Any("error", err))
		return
	}
	s.mu.Lock()
	s.info = info
	s.mu.Unlock()
	s.logger.Info("webhook metadata resolved",
		slog.String("guild_id", info.GuildID),
		slog.String("channel_id", info.ChannelID),
		slog.String("name", info.Name),
	)
}

// Info returns the webhook metadata resolved by Prepare.
func (s *Sender) Info() discord.WebhookInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// SendData dispatches a batch of messages. Messages run concurrently with no
// ordering guarantee between them; chunks within one message are delivered
// strictly in index order. The returned results are flattened in message
// completion order.
func (s *Sender) SendData(ctx context.Context, messages []Message) []Result {
	if len(messages) == 0 {
		return nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []Result
	)
	for _, msg := range messages {
		wg.Add(1)
		go func(msg Message) {
			defer wg.Done()
			delivered := s.sendMessage(ctx, msg)
			if len(delivered) == 0 {
				return
			}
			mu.Lock()
			results = append(results, delivered...)
			mu.Unlock()
		}(msg)
	}
	wg.Wait()
	return results
}

// sendMessage runs the full pipeline for one message and returns the results
// of its delivered chunks.
func (s *Sender) sendMessage(ctx context.Context, msg Message) []Result {
	text := lang.Apply(msg.Content, s.replacements)
	text = s.decorateTranslation(ctx, text)

	chunkSize := plainChunkSize
	if msg.Rich {
		chunkSize = richChunkSize
	}

	runes := []rune(text)
	chunks := chunkCount(len(runes), chunkSize, len(msg.Uploads) > 0, len(msg.Embeds) > 0)
	if chunks == 0 {
		return nil
	}

	useBot := s.botRelay && s.Info().ChannelID != ""

	results := make([]Result, 0, chunks)
	for i := 0; i < chunks; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if start > len(runes) {
			start = len(runes)
		}
		if end > len(runes) {
			end = len(runes)
		}
		chunkText := string(runes[start:end])
		if len(msg.Uploads) > 0 {
			// Uploads are never split; the embed description is truncated
			// during payload building instead.
			chunkText = text
		}

		payload, files, err := s.buildChunk(ctx, msg, chunkText, i, useBot)
		if err != nil {
			s.logger.Warn("build chunk failed", slog.Int("chunk", i), slog.Any("error", err))
			continue
		}

		var ref *discord.MessageRef
		if useBot {
			ref, err = s.transport.SendChannelMessage(ctx, s.Info().ChannelID, payload, files)
		} else {
			ref, err = s.transport.ExecuteWebhook(ctx, payload, files)
		}
		if err != nil {
			s.logger.Warn("deliver chunk failed", slog.Int("chunk", i), slog.Any("error", err))
			continue
		}
		if ref == nil {
			// Delivered without confirmation; nothing to record.
			continue
		}

		result := Result{MessageID: ref.ID, ChannelID: ref.ChannelID}
		if i == 0 {
			result.SourceID = msg.SourceID
		}
		results = append(results, result)
	}
	return results
}

// decorateTranslation appends a translation to text when the routing table
// asks for one. Text already carrying the separator is left untouched.
func (s *Sender) decorateTranslation(ctx context.Context, text string) string {
	if text == "" || strings.Contains(text, translationSeparator) {
		return text
	}
	if !s.translator.Enabled() {
		return text
	}
	target := lang.TranslateTarget(text)
	if target == lang.TargetNone {
		return text
	}
	if translated := s.translator.Translate(ctx, text, target); translated != "" {
		return text + translationSeparator + translated
	}
	return text
}

// chunkCount decides how many chunks a message becomes. Uploads are never
// split; embed-only messages send a single chunk; empty messages with
// nothing else to carry are dropped.
func chunkCount(textLen, chunkSize int, hasUploads, hasEmbeds bool) int {
	if hasUploads {
		return 1
	}
	if textLen == 0 {
		if hasEmbeds {
			return 1
		}
		return 0
	}
	count := (textLen + chunkSize - 1) / chunkSize
	if count < 1 {
		count = 1
	}
	return count
}
