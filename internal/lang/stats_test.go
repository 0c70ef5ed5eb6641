package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasureLatinOnly(t *testing.T) {
	stats := Measure("hello world")
	assert.Equal(t, 1.0, stats.English)
	assert.Equal(t, 0.0, stats.Chinese)
}

func TestMeasureChineseOnly(t *testing.T) {
	stats := Measure("今天天气不错")
	assert.Equal(t, 1.0, stats.Chinese)
	assert.Equal(t, 0.0, stats.English)
}

func TestMeasureIgnoresNonLetters(t *testing.T) {
	stats := Measure("1234 !!! ???")
	assert.Equal(t, 0.0, stats.Chinese)
	assert.Equal(t, 0.0, stats.English)
}

func TestMeasureMixed(t *testing.T) {
	// 2 CJK + 2 Latin letters
	stats := Measure("你好ab")
	assert.InDelta(t, 0.5, stats.Chinese, 1e-9)
	assert.InDelta(t, 0.5, stats.English, 1e-9)
}

func TestMeasureKanaAndHangulCountAsChinese(t *testing.T) {
	stats := Measure("こんにちは")
	assert.Equal(t, 1.0, stats.Chinese)

	stats = Measure("안녕하세요")
	assert.Equal(t, 1.0, stats.Chinese)
}

func TestTranslateTarget(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Target
	}{
		{name: "mostly chinese", in: "你好世界啊 ok", want: TargetNone},
		{name: "pure english", in: "good morning", want: TargetChinese},
		{name: "no letters", in: "123 :-) !!!", want: TargetNone},
		{name: "empty", in: "", want: TargetNone},
		{name: "exact tie", in: "你好ab", want: TargetNone},
		{name: "english majority", in: "hello 你", want: TargetChinese},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TranslateTarget(tc.in)
			if got != tc.want {
				t.Fatalf("TranslateTarget(%q) = %q, want %q", tc.in, got, tc.want)
			}
			// Pure function: a second run returns the same result.
			if again := TranslateTarget(tc.in); again != got {
				t.Fatalf("TranslateTarget(%q) not deterministic: %q then %q", tc.in, got, again)
			}
		})
	}
}

func TestApplyReplacements(t *testing.T) {
	pairs := []Pair{
		{Find: "foo", Replace: "bar"},
		{Find: "bar", Replace: "baz"},
	}
	// Pairs run in order, so foo -> bar -> baz.
	assert.Equal(t, "baz baz", Apply("foo bar", pairs))
}

func TestApplyLiteralOnly(t *testing.T) {
	pairs := []Pair{{Find: "a.c", Replace: "X"}}
	assert.Equal(t, "abc X", Apply("abc a.c", pairs))
}

func TestApplySkipsEmptyPattern(t *testing.T) {
	pairs := []Pair{{Find: "", Replace: "X"}}
	assert.Equal(t, "abc", Apply("abc", pairs))
}
