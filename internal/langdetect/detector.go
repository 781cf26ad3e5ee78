package langdetect

import (
	"fmt"
	"log/slog"

	"github.com/nadzzz/babelbot/internal/language"
)

// Detector guesses the language of a normalized text.
//
// Implementations return a language code and true, or "" and false when
// they have no usable answer. They must be safe for concurrent use.
type Detector interface {
	// Name identifies the detector in logs.
	Name() string

	// Detect returns the detected language code.
	Detect(text string) (string, bool)
}

// DetectorFunc adapts a plain function to the Detector interface.
type DetectorFunc struct {
	Label string
	Fn    func(text string) (string, bool)
}

// Name returns the label of the function detector.
func (f DetectorFunc) Name() string { return f.Label }

// Detect calls the wrapped function.
func (f DetectorFunc) Detect(text string) (string, bool) { return f.Fn(text) }

// detectSafely runs d and converts panics and empty answers into "absent".
// The returned code is canonical but not yet checked against any set.
func detectSafely(logger *slog.Logger, d Detector, text string) (code string) {
	if d == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("language detector panicked", "detector", d.Name(), "panic", fmt.Sprint(r))
			code = ""
		}
	}()

	raw, ok := d.Detect(text)
	if !ok {
		return ""
	}
	return language.Canonical(raw)
}
