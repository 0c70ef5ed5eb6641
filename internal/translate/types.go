// Package translate dispatches text translation to a configured provider.
// Translation is strictly Chinese<->English; direction is decided upstream
// by language-ratio gating.
package translate

import (
	"context"
	"errors"

	"github.com/memohai/relay/internal/lang"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderDeepLX   = "deeplx"
	ProviderBaidu    = "baidu"
	ProviderYoudao   = "youdao"
)

// Provider is a single translation strategy. Implementations return the
// translated text or an error; they never fall back between each other.
type Provider interface {
	Translate(ctx context.Context, text string, target lang.Target) (string, error)
}

// ErrMissingCredentials is returned by provider constructors when the
// configured credentials are incomplete.
var ErrMissingCredentials = errors.New("translate: missing credentials")
