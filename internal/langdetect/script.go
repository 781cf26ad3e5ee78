package langdetect

import "unicode"

// cyrillicVariants are the Cyrillic-script languages a detector may name
// instead of Russian.
var cyrillicVariants = []string{"uk", "bg", "sr"}

// scriptVerdict forces a language from the writing system of text. It is
// only consulted when the detectors disagree. rawPrimary and rawSecondary
// are the unfiltered detector answers, used to pick a Cyrillic language.
//
// The rule only fires when letters of these scripts outnumber Latin
// letters, so a stray symbol such as "α" in German prose decides nothing.
// Kana is checked before Han because Japanese mixes kanji with kana.
func scriptVerdict(text, rawPrimary, rawSecondary string) (string, bool) {
	var kana, hangul, han, arabic, greek, cyrillic, latin int
	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			kana++
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.Is(unicode.Arabic, r):
			arabic++
		case unicode.Is(unicode.Greek, r):
			greek++
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	if kana+hangul+han+arabic+greek+cyrillic <= latin {
		return "", false
	}

	switch {
	case kana > 0:
		return "ja", true
	case hangul > 0:
		return "ko", true
	case han > 0:
		return "zh", true
	case arabic > 0:
		return "ar", true
	case greek > 0:
		return "el", true
	case cyrillic > 0:
		return cyrillicTieBreak(rawPrimary, rawSecondary), true
	}
	return "", false
}

func cyrillicTieBreak(primary, secondary string) string {
	if primary == "ru" || secondary == "ru" {
		return "ru"
	}
	for _, code := range []string{primary, secondary} {
		for _, v := range cyrillicVariants {
			if code == v {
				return code
			}
		}
	}
	return "ru"
}
