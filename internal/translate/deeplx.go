package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/memohai/relay/internal/lang"
)

// DeepLXProvider talks to a DeepLX-style endpoint: a plain JSON POST with
// the target language, no request signing. The API key rides as a query
// parameter when configured.
type DeepLXProvider struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewDeepLXProvider creates a generic MT provider for the given endpoint.
func NewDeepLXProvider(baseURL, apiKey string) (*DeepLXProvider, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrMissingCredentials
	}
	return &DeepLXProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type deeplxRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type deeplxResponse struct {
	Code int    `json:"code"`
	Data string `json:"data"`
}

func (p *DeepLXProvider) Translate(ctx context.Context, text string, target lang.Target) (string, error) {
	targetLang := "ZH"
	if target == lang.TargetEnglish {
		targetLang = "EN"
	}

	body, err := json.Marshal(deeplxRequest{
		Text:       text,
		SourceLang: "auto",
		TargetLang: targetLang,
	})
	if err != nil {
		return "", err
	}

	endpoint := p.baseURL + "/translate"
	if p.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(p.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("deeplx error: status %d", resp.StatusCode)
	}

	var parsed deeplxResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Code != 200 || parsed.Data == "" {
		return "", fmt.Errorf("deeplx error: code %d", parsed.Code)
	}
	return parsed.Data, nil
}
