package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/memohai/relay/internal/lang"
)

// AIProvider translates through an OpenAI-compatible chat-completion API.
// One implementation serves every compatible backend; only base URL, key,
// and model differ.
type AIProvider struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewAIProvider creates a chat-completion translation provider.
func NewAIProvider(baseURL, apiKey, model string) (*AIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredentials
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("ai provider: base url is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("ai provider: model is required")
	}
	return &AIProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float32       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *AIProvider) Translate(ctx context.Context, text string, target lang.Target) (string, error) {
	direction := "Simplified Chinese"
	if target == lang.TargetEnglish {
		direction = "English"
	}
	system := fmt.Sprintf(
		"You are a translation engine. Translate the user's message into %s. "+
			"Preserve punctuation, links, emojis, and numbers exactly as they appear. "+
			"Reply with only the translated text and nothing else.",
		direction,
	)

	// Low temperature to minimize paraphrasing drift.
	body, err := json.Marshal(chatRequest{
		Model:       p.model,
		Temperature: 0.3,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat completion error: %s", strings.TrimSpace(string(b)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat completion response missing content")
	}
	return parsed.Choices[0].Message.Content, nil
}
