package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/memohai/relay/internal/lang"
)

const youdaoEndpoint = "https://openapi.youdao.com/api"

// YoudaoProvider signs requests with SHA-256 over appKey+input+salt+curtime+
// secret. The API mandates that input is the query truncated to
// first10+length+last10 once it exceeds 20 characters; reproducing that rule
// exactly is required for the signature to validate.
type YoudaoProvider struct {
	appKey    string
	appSecret string
	endpoint  string
	http      *http.Client
	now       func() time.Time
	salt      func() string
}

// NewYoudaoProvider creates the SHA-256-signed MT provider.
func NewYoudaoProvider(appKey, appSecret string) (*YoudaoProvider, error) {
	if strings.TrimSpace(appKey) == "" || strings.TrimSpace(appSecret) == "" {
		return nil, ErrMissingCredentials
	}
	return &YoudaoProvider{
		appKey:    appKey,
		appSecret: appSecret,
		endpoint:  youdaoEndpoint,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		now:  time.Now,
		salt: uuid.NewString,
	}, nil
}

type youdaoResponse struct {
	ErrorCode   string   `json:"errorCode"`
	Translation []string `json:"translation"`
}

func (p *YoudaoProvider) Translate(ctx context.Context, text string, target lang.Target) (string, error) {
	to := "zh-CHS"
	if target == lang.TargetEnglish {
		to = "en"
	}
	salt := p.salt()
	curtime := strconv.FormatInt(p.now().Unix(), 10)

	form := url.Values{}
	form.Set("q", text)
	form.Set("from", "auto")
	form.Set("to", to)
	form.Set("appKey", p.appKey)
	form.Set("salt", salt)
	form.Set("curtime", curtime)
	form.Set("signType", "v3")
	form.Set("sign", youdaoSign(p.appKey, text, salt, curtime, p.appSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("youdao error: status %d", resp.StatusCode)
	}

	var parsed youdaoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.ErrorCode != "0" {
		return "", fmt.Errorf("youdao error: code %s", parsed.ErrorCode)
	}
	if len(parsed.Translation) == 0 {
		return "", fmt.Errorf("youdao response missing translation")
	}
	return parsed.Translation[0], nil
}

func youdaoSign(appKey, text, salt, curtime, appSecret string) string {
	sum := sha256.Sum256([]byte(appKey + youdaoInput(text) + salt + curtime + appSecret))
	return hex.EncodeToString(sum[:])
}

// youdaoInput applies the API's anti-abuse truncation: queries over 20
// characters sign first10 + length + last10 instead of the full text.
func youdaoInput(text string) string {
	runes := []rune(text)
	if len(runes) <= 20 {
		return text
	}
	return string(runes[:10]) + strconv.Itoa(len(runes)) + string(runes[len(runes)-10:])
}
