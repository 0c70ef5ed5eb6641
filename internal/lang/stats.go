package lang

import "unicode"

// Target is a translation destination language.
type Target string

const (
	TargetNone    Target = ""
	TargetChinese Target = "zh"
	TargetEnglish Target = "en"
)

// Stats holds the share of CJK vs Latin letters among the letter characters
// of a text. Both fields are zero when the text carries no letters at all.
type Stats struct {
	Chinese float64
	English float64
}

// Measure classifies every character as CJK (counted as Chinese) or Latin
// letter (counted as English) and returns the two ratios relative to the
// combined letter count. Punctuation, digits, and whitespace are ignored.
func Measure(text string) Stats {
	var cjk, latin int
	for _, r := range text {
		switch {
		case isCJK(r):
			cjk++
		case isLatinLetter(r):
			latin++
		}
	}
	total := cjk + latin
	if total == 0 {
		return Stats{}
	}
	return Stats{
		Chinese: float64(cjk) / float64(total),
		English: float64(latin) / float64(total),
	}
}

// TranslateTarget decides the translation direction for text:
//
//	predominantly Chinese (> 0.5)  -> none
//	no letters at all              -> none
//	exact nonzero tie              -> none
//	English at least half          -> Chinese
//	mixed, Chinese ahead           -> English
//	mixed, English ahead           -> Chinese
func TranslateTarget(text string) Target {
	stats := Measure(text)
	switch {
	case stats.Chinese > 0.5:
		return TargetNone
	case stats.Chinese == 0 && stats.English == 0:
		return TargetNone
	case stats.Chinese == stats.English:
		return TargetNone
	case stats.English >= 0.5:
		return TargetChinese
	case stats.Chinese > stats.English:
		return TargetEnglish
	default:
		return TargetChinese
	}
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}

func isLatinLetter(r rune) bool {
	return unicode.IsLetter(r) && unicode.Is(unicode.Latin, r)
}
