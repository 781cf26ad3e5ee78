package langdetect

import (
	"fmt"

	"github.com/pemistahl/lingua-go"

	"github.com/nadzzz/babelbot/internal/language"
)

// DefaultMinConfidence is the confidence a Lingua answer has to exceed to
// count as a detection.
const DefaultMinConfidence = 0.5

// Lingua is the constrained detector: it is built only from the supported
// languages, so every answer it gives is one babelbot can work with.
//
// Building the underlying detector is expensive; create one Lingua per
// process and share it.
type Lingua struct {
	detector      lingua.LanguageDetector
	codes         map[lingua.Language]string
	minConfidence float64
}

// LinguaOptions tune the Lingua detector.
type LinguaOptions struct {
	// MinConfidence discards answers whose confidence is not above it.
	// Zero accepts any answer with a non-zero confidence.
	MinConfidence float64

	// LazyLoad defers loading the language models to first use. The first
	// detections then take seconds and usually exceed the arbiter timeout.
	LazyLoad bool

	// LowAccuracy trades accuracy on short texts for speed and memory.
	LowAccuracy bool
}

// NewLingua builds a Lingua detector restricted to the languages of set.
// At least two of them must be known to lingua.
func NewLingua(set *language.Set, opts LinguaOptions) (*Lingua, error) {
	codes := make(map[lingua.Language]string)
	var langs []lingua.Language
	for _, l := range lingua.AllLanguages() {
		code := language.Canonical(l.IsoCode639_1().String())
		if code == "" || !set.Contains(code) {
			continue
		}
		codes[l] = code
		langs = append(langs, l)
	}
	if len(langs) < 2 {
		return nil, fmt.Errorf("lingua needs at least two supported languages, got %d", len(langs))
	}

	builder := lingua.NewLanguageDetectorBuilder().FromLanguages(langs...)
	if !opts.LazyLoad {
		builder = builder.WithPreloadedLanguageModels()
	}
	if opts.LowAccuracy {
		builder = builder.WithLowAccuracyMode()
	}

	return &Lingua{
		detector:      builder.Build(),
		codes:         codes,
		minConfidence: opts.MinConfidence,
	}, nil
}

// Name returns the detector identifier.
func (*Lingua) Name() string { return "lingua" }

// Detect returns the most likely supported language, or false when lingua
// has no answer or is not confident enough.
func (l *Lingua) Detect(text string) (string, bool) {
	code, confidence, ok := l.DetectWithConfidence(text)
	if !ok || confidence <= l.minConfidence {
		return "", false
	}
	return code, true
}

// DetectWithConfidence returns lingua's answer together with its
// confidence in [0,1], without applying the confidence threshold.
func (l *Lingua) DetectWithConfidence(text string) (string, float64, bool) {
	lang, exists := l.detector.DetectLanguageOf(text)
	if !exists {
		return "", 0, false
	}
	code, known := l.codes[lang]
	if !known {
		return "", 0, false
	}
	return code, l.detector.ComputeLanguageConfidence(text, lang), true
}
