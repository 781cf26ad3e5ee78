package langdetect

import (
	"github.com/abadojack/whatlanggo"
)

// Whatlang is the general-purpose detector. It knows far more languages
// than babelbot supports and reports its single best guess.
type Whatlang struct{}

// NewWhatlang returns the whatlanggo-backed detector.
func NewWhatlang() *Whatlang { return &Whatlang{} }

// Name returns the detector identifier.
func (*Whatlang) Name() string { return "whatlanggo" }

// Detect returns whatlanggo's best guess as an ISO-639-1 code.
func (*Whatlang) Detect(text string) (string, bool) {
	info := whatlanggo.Detect(text)
	if info.Script == nil || info.Lang < 0 {
		return "", false
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return "", false
	}
	return code, true
}
