package translate

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/relay/internal/lang"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBaiduSignFixture(t *testing.T) {
	// Fixture from the API documentation's signature example.
	got := baiduSign("2015063000000001", "apple", "1435660288", "12345678")
	assert.Equal(t, "f89f9594663708c1605f3d736d01d2d4", got)
}

func TestBaiduProviderTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "apple", r.PostForm.Get("q"))
		require.Equal(t, "zh", r.PostForm.Get("to"))
		require.Equal(t, "app-id", r.PostForm.Get("appid"))
		salt := r.PostForm.Get("salt")
		require.Equal(t, baiduSign("app-id", "apple", salt, "secret"), r.PostForm.Get("sign"))
		_, _ = w.Write([]byte(`{"from":"en","to":"zh","trans_result":[{"src":"apple","dst":"苹果"}]}`))
	}))
	defer server.Close()

	provider, err := NewBaiduProvider("app-id", "secret")
	require.NoError(t, err)
	provider.endpoint = server.URL

	out, err := provider.Translate(context.Background(), "apple", lang.TargetChinese)
	require.NoError(t, err)
	assert.Equal(t, "苹果", out)
}

func TestBaiduProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error_code":"54001","error_msg":"Invalid Sign"}`))
	}))
	defer server.Close()

	provider, err := NewBaiduProvider("app-id", "secret")
	require.NoError(t, err)
	provider.endpoint = server.URL

	_, err = provider.Translate(context.Background(), "apple", lang.TargetChinese)
	assert.Error(t, err)
}

func TestYoudaoInputTruncation(t *testing.T) {
	assert.Equal(t, "short text", youdaoInput("short text"))

	long := "The quick brown fox jumps over the lazy dog"
	assert.Equal(t, "The quick 43e lazy dog", youdaoInput(long))

	// Rune-based, not byte-based.
	cjk := "一二三四五六七八九十甲乙丙丁戊己庚辛壬癸子丑"
	assert.Equal(t, "一二三四五六七八九十"+"22"+"丙丁戊己庚辛壬癸子丑", youdaoInput(cjk))
}

func TestYoudaoSignFixture(t *testing.T) {
	long := "The quick brown fox jumps over the lazy dog"
	got := youdaoSign("appkey", long, "salt", "1700000000", "secret")
	assert.Equal(t, "ce859eeee73c5d01526914dd80314180b1556542f9dbfd4eff62d4675481ea31", got)
}

func TestYoudaoProviderTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "hello", r.PostForm.Get("q"))
		require.Equal(t, "zh-CHS", r.PostForm.Get("to"))
		require.Equal(t, "v3", r.PostForm.Get("signType"))
		salt := r.PostForm.Get("salt")
		curtime := r.PostForm.Get("curtime")
		require.Equal(t, youdaoSign("app-key", "hello", salt, curtime, "secret"), r.PostForm.Get("sign"))
		_, _ = w.Write([]byte(`{"errorCode":"0","translation":["你好"]}`))
	}))
	defer server.Close()

	provider, err := NewYoudaoProvider("app-key", "secret")
	require.NoError(t, err)
	provider.endpoint = server.URL
	provider.now = func() time.Time { return time.Unix(1700000000, 0) }

	out, err := provider.Translate(context.Background(), "hello", lang.TargetChinese)
	require.NoError(t, err)
	assert.Equal(t, "你好", out)
}
