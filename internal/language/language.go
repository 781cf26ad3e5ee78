// Package language holds the closed set of languages babelbot works with,
// together with their display names and a few code-level helpers.
//
// Codes are ISO-639-1 (two letters, lowercase). Anything coming from a
// detector, a speech engine or a client is passed through Canonical before
// membership is checked.
package language

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultSupported lists the languages the bot translates from and to when
// the configuration does not override them.
var DefaultSupported = []string{
	"ar", "bg", "cs", "da", "de", "el", "en", "es", "et", "fa",
	"fi", "fr", "he", "hi", "hr", "hu", "id", "it", "ja", "ko",
	"lt", "lv", "ms", "nl", "no", "pl", "pt", "ro", "ru", "sk",
	"sl", "sq", "sv", "th", "tr", "uk", "vi", "zh",
}

// DefaultSpeech lists the languages the speech synthesizers can voice.
var DefaultSpeech = []string{
	"ar", "bg", "cs", "da", "de", "el", "en", "es", "et", "fi",
	"fr", "hi", "hr", "hu", "id", "it", "ja", "ko", "lt", "lv",
	"nl", "no", "pl", "pt", "ro", "ru", "sk", "sv", "th", "tr",
	"uk", "vi", "zh",
}

// aliases folds codes that libraries emit for the same language we
// track under one code.
var aliases = map[string]string{
	"nb":  "no",
	"nn":  "no",
	"iw":  "he",
	"in":  "id",
	"cmn": "zh",
	"zsm": "ms",
	"pes": "fa",
}

// nativeNames are the names users see in menus.
var nativeNames = map[string]string{
	"ar": "العربية",
	"bg": "Български",
	"cs": "Čeština",
	"da": "Dansk",
	"de": "Deutsch",
	"el": "Ελληνικά",
	"en": "English",
	"es": "Español",
	"et": "Eesti",
	"fa": "فارسی",
	"fi": "Suomi",
	"fr": "Français",
	"he": "עברית",
	"hi": "हिन्दी",
	"hr": "Hrvatski",
	"hu": "Magyar",
	"id": "Bahasa Indonesia",
	"it": "Italiano",
	"ja": "日本語",
	"ko": "한국어",
	"lt": "Lietuvių",
	"lv": "Latviešu",
	"ms": "Bahasa Melayu",
	"nl": "Nederlands",
	"no": "Norsk",
	"pl": "Polski",
	"pt": "Português",
	"ro": "Română",
	"ru": "Русский",
	"sk": "Slovenčina",
	"sl": "Slovenščina",
	"sq": "Shqip",
	"sv": "Svenska",
	"th": "ไทย",
	"tr": "Türkçe",
	"uk": "Українська",
	"vi": "Tiếng Việt",
	"zh": "中文",
}

// countryLanguages maps ISO 3166-1 alpha-2 country codes to the language
// most users from that country expect.
var countryLanguages = map[string]string{
	"US": "en", "GB": "en", "AU": "en", "CA": "en",
	"RU": "ru", "BY": "ru", "KZ": "ru",
	"ES": "es", "MX": "es", "CO": "es", "AR": "es",
	"FR": "fr", "DE": "de", "IT": "it",
	"BR": "pt", "PT": "pt",
	"CN": "zh", "TW": "zh", "HK": "zh",
	"JP": "ja", "KR": "ko",
	"SA": "ar", "AE": "ar", "EG": "ar",
	"UA": "uk", "BG": "bg",
	"CZ": "cs", "DK": "da",
	"GR": "el", "EE": "et",
	"IR": "fa", "FI": "fi",
	"IL": "he", "IN": "hi",
	"HR": "hr", "HU": "hu",
	"ID": "id", "MY": "ms",
	"NL": "nl", "NO": "no",
	"PL": "pl", "RO": "ro",
	"SK": "sk", "SI": "sl",
	"AL": "sq", "SE": "sv",
	"TH": "th", "TR": "tr",
	"VN": "vi",
}

// Canonical normalizes a language code or tag ("RU", "pt-BR", "zh_Hans",
// "nb") to the two-letter code used throughout babelbot. It returns ""
// for input that is not a language tag.
func Canonical(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	code = strings.ReplaceAll(code, "_", "-")
	if alias, ok := aliases[code]; ok {
		return alias
	}

	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	code = base.String()
	if alias, ok := aliases[code]; ok {
		return alias
	}
	if code == "und" {
		return ""
	}
	return code
}

// Set is an immutable set of canonical language codes.
// The zero value is an empty set.
type Set struct {
	codes []string
	index map[string]struct{}
}

// NewSet builds a Set from codes, canonicalizing and de-duplicating them.
// Codes that do not parse are dropped.
func NewSet(codes ...string) *Set {
	s := &Set{index: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		c = Canonical(c)
		if c == "" {
			continue
		}
		if _, dup := s.index[c]; dup {
			continue
		}
		s.index[c] = struct{}{}
		s.codes = append(s.codes, c)
	}
	slices.Sort(s.codes)
	return s
}

// Contains reports whether code (after canonicalization) is in the set.
func (s *Set) Contains(code string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[Canonical(code)]
	return ok
}

// Codes returns the sorted codes of the set.
func (s *Set) Codes() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.codes)
}

// Len returns the number of languages in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.codes)
}

// EnglishName returns the English name of a language ("Russian"), or the
// code itself when x/text has no name for it.
func EnglishName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

// NativeName returns the name of a language in that language ("Русский").
func NativeName(code string) string {
	code = Canonical(code)
	if name, ok := nativeNames[code]; ok {
		return name
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}

// FromCountry returns the preferred language for an ISO 3166-1 alpha-2
// country code.
func FromCountry(country string) (string, bool) {
	code, ok := countryLanguages[strings.ToUpper(strings.TrimSpace(country))]
	return code, ok
}
