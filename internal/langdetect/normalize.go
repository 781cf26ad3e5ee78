package langdetect

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MinMeaningfulChars is the number of non-space characters a text needs
// after normalization before detection is attempted.
const MinMeaningfulChars = 3

var urlPattern = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+`)

// Normalize strips the parts of a message that only confuse language
// identification: pictographs, URLs and redundant whitespace. The second
// return value is false when fewer than MinMeaningfulChars non-space
// characters remain.
//
// Normalize is idempotent.
func Normalize(text string) (string, bool) {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, " ")
	}

	// Pictographs go first so that removing one can never splice a URL
	// back together ("http🙂://…").
	text = strings.Map(func(r rune) rune {
		if isPictographic(r) {
			return ' '
		}
		return r
	}, text)
	text = urlPattern.ReplaceAllString(text, " ")
	text = norm.NFC.String(text)
	text = strings.Join(strings.Fields(text), " ")

	return text, meaningfulChars(text) >= MinMeaningfulChars
}

func meaningfulChars(text string) int {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// isPictographic reports whether r belongs to the emoji and pictograph
// blocks, or is one of the joiners and selectors used to build emoji
// sequences.
func isPictographic(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // mahjong .. symbols & pictographs ext-A, incl. regional indicators
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2300 && r <= 0x23FF: // misc technical (⌚, ⏰)
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // misc symbols and arrows (⭐)
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r >= 0xE0020 && r <= 0xE007F: // tag sequences (subdivision flags)
		return true
	case r == 0x200D, r == 0x20E3, r == 0x3030, r == 0x303D, r == 0x3297, r == 0x3299:
		return true
	}
	return false
}
