// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath    = "config.toml"
	DefaultAIBaseURL     = "https://api.openai.com/v1"
	DefaultAIModel       = "gpt-4o-mini"
	DefaultDeepSeekURL   = "https://api.deepseek.com/v1"
	DefaultDeepSeekModel = "deepseek-chat"
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log          LogConfig       `toml:"log"`
	Webhook      WebhookConfig   `toml:"webhook"`
	Bot          BotConfig       `toml:"bot"`
	Translate    TranslateConfig `toml:"translate"`
	Replacements []Replacement   `toml:"replacement"`
	Feishu       FeishuConfig    `toml:"feishu"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// WebhookConfig holds the chat webhook URL and an optional outbound proxy URL.
type WebhookConfig struct {
	URL   string `toml:"url"`
	Proxy string `toml:"proxy"`
}

// BotConfig holds the bot-token relay settings. When enabled and a default
// channel has been resolved, delivery goes through the bot API instead of the webhook.
type BotConfig struct {
	Enabled bool   `toml:"enabled"`
	Token   string `toml:"token"`
	APIBase string `toml:"api_base"`
}

// TranslateConfig selects the translation provider and its credentials.
type TranslateConfig struct {
	Enabled  bool         `toml:"enabled"`
	Provider string       `toml:"provider"`
	OpenAI   AIConfig     `toml:"openai"`
	DeepSeek AIConfig     `toml:"deepseek"`
	DeepLX   DeepLXConfig `toml:"deeplx"`
	Baidu    BaiduConfig  `toml:"baidu"`
	Youdao   YoudaoConfig `toml:"youdao"`
}

// AIConfig holds chat-completion backend parameters (shared by OpenAI-compatible APIs).
type AIConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// DeepLXConfig holds the generic MT endpoint and API key.
type DeepLXConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// BaiduConfig holds the MD5-signed MT credentials.
type BaiduConfig struct {
	AppID     string `toml:"app_id"`
	SecretKey string `toml:"secret_key"`
}

// YoudaoConfig holds the SHA-256-signed MT credentials.
type YoudaoConfig struct {
	AppKey    string `toml:"app_key"`
	AppSecret string `toml:"app_secret"`
}

// Replacement is one ordered find/replace pair applied to outgoing text.
type Replacement struct {
	Find    string `toml:"find"`
	Replace string `toml:"replace"`
}

// FeishuConfig holds the card webhook settings and optional app credentials
// for delivery through the official SDK instead of the custom-bot webhook.
type FeishuConfig struct {
	WebhookURL string `toml:"webhook_url"`
	Secret     string `toml:"secret"`
	AppID      string `toml:"app_id"`
	AppSecret  string `toml:"app_secret"`
	ReceiveID  string `toml:"receive_id"`
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Translate: TranslateConfig{
			OpenAI: AIConfig{
				BaseURL: DefaultAIBaseURL,
				Model:   DefaultAIModel,
			},
			DeepSeek: AIConfig{
				BaseURL: DefaultDeepSeekURL,
				Model:   DefaultDeepSeekModel,
			},
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
