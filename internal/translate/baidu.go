package translate

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/memohai/relay/internal/lang"
)

const baiduEndpoint = "https://fanyi-api.baidu.com/api/trans/vip/translate"

// BaiduProvider signs requests with MD5 over appid+text+salt+secret, where
// the salt is the current unix timestamp.
type BaiduProvider struct {
	appID     string
	secretKey string
	endpoint  string
	http      *http.Client
	now       func() time.Time
}

// NewBaiduProvider creates the MD5-signed MT provider.
func NewBaiduProvider(appID, secretKey string) (*BaiduProvider, error) {
	if strings.TrimSpace(appID) == "" || strings.TrimSpace(secretKey) == "" {
		return nil, ErrMissingCredentials
	}
	return &BaiduProvider{
		appID:     appID,
		secretKey: secretKey,
		endpoint:  baiduEndpoint,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		now: time.Now,
	}, nil
}

type baiduResponse struct {
	ErrorCode   string `json:"error_code"`
	ErrorMsg    string `json:"error_msg"`
	TransResult []struct {
		Src string `json:"src"`
		Dst string `json:"dst"`
	} `json:"trans_result"`
}

func (p *BaiduProvider) Translate(ctx context.Context, text string, target lang.Target) (string, error) {
	to := "zh"
	if target == lang.TargetEnglish {
		to = "en"
	}
	salt := strconv.FormatInt(p.now().Unix(), 10)

	form := url.Values{}
	form.Set("q", text)
	form.Set("from", "auto")
	form.Set("to", to)
	form.Set("appid", p.appID)
	form.Set("salt", salt)
	form.Set("sign", baiduSign(p.appID, text, salt, p.secretKey))

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
		return "", fmt.Errorf("baidu error: status %d", resp.StatusCode)
	}

	var parsed baiduResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.ErrorCode != "" && parsed.ErrorCode != "0" {
		return "", fmt.Errorf("baidu error: %s (%s)", parsed.ErrorMsg, parsed.ErrorCode)
	}
	if len(parsed.TransResult) == 0 {
		return "", fmt.Errorf("baidu response missing trans_result")
	}

	lines := make([]string, 0, len(parsed.TransResult))
	for _, r := range parsed.TransResult {
		lines = append(lines, r.Dst)
	}
	return strings.Join(lines, "\n"), nil
}

func baiduSign(appID, text, salt, secretKey string) string {
	sum := md5.Sum([]byte(appID + text + salt + secretKey))
	return hex.EncodeToString(sum[:])
}
