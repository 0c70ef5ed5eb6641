package translate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/memohai/relay/internal/config"
	"github.com/memohai/relay/internal/lang"
)

// requestTimeout bounds every third-party translation call.
const requestTimeout = 60 * time.Second

// Service wraps the configured provider behind best-effort semantics: any
// failure (missing credentials, remote error, timeout, unparsable response)
// yields an empty result with a diagnostic log entry, never an error. A
// failed translation must not abort the enclosing send.
type Service struct {
	enabled  bool
	provider Provider
	logger   *slog.Logger
}

// NewService builds a Service from configuration. An unrecognized provider
// or incomplete credentials disable translation rather than failing startup.
func NewService(log *slog.Logger, cfg config.TranslateConfig) *Service {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("service", "translate"))

	s := &Service{enabled: cfg.Enabled, logger: log}
	if !cfg.Enabled {
		return s
	}

	var (
		provider Provider
		err      error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		provider, err = NewAIProvider(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case ProviderDeepSeek:
		provider, err = NewAIProvider(cfg.DeepSeek.BaseURL, cfg.DeepSeek.APIKey, cfg.DeepSeek.Model)
	case ProviderDeepLX:
		provider, err = NewDeepLXProvider(cfg.DeepLX.BaseURL, cfg.DeepLX.APIKey)
	case ProviderBaidu:
		provider, err = NewBaiduProvider(cfg.Baidu.AppID, cfg.Baidu.SecretKey)
	case ProviderYoudao:
		provider, err = NewYoudaoProvider(cfg.Youdao.AppKey, cfg.Youdao.AppSecret)
	default:
		log.Warn("unrecognized translation provider", slog.String("provider", cfg.Provider))
		return s
	}
	if err != nil {
		log.Warn("translation provider unavailable", slog.String("provider", cfg.Provider), slog.Any("error", err))
		return s
	}
	s.provider = provider
	return s
}

// Enabled reports whether a usable provider is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.provider != nil
}

// Translate returns the translation of text into target, or "" when
// translation is disabled, the text carries no linguistic signal, or the
// provider call fails for any reason.
func (s *Service) Translate(ctx context.Context, text string, target lang.Target) string {
	if !s.Enabled() || target == lang.TargetNone {
		return ""
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	stats := lang.Measure(text)
	if stats.Chinese == 0 && stats.English == 0 {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	translated, err := s.provider.Translate(ctx, text, target)
	if err != nil {
		s.logger.Warn("translate failed", slog.String("target", string(target)), slog.Any("error", err))
		return ""
	}
	return strings.TrimSpace(translated)
}
