// Package tts defines the interface for text-to-speech synthesis.
//
// Babelbot voices the translation in the target language so a text or voice
// message can be answered with speech. Only languages in the configured
// speech set are synthesized.
package tts

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnsupportedLanguage is returned when no voice exists for a language.
var ErrUnsupportedLanguage = errors.New("no voice for language")

// Options controls synthesis behavior.
type Options struct {
	// Language is the ISO-639-1 code (e.g., "en", "fr", "es") to select the voice.
	Language string

	// Voice overrides automatic language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Name returns the backend identifier (e.g., "piper", "google").
	Name() string

	// Synthesize generates audio from the given text.
	Synthesize(ctx context.Context, text string, opts Options) (*Result, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// Result holds the output of TTS synthesis.
type Result struct {
	// Audio is the synthesized audio in a playable container.
	Audio []byte

	// ContentType is the MIME type of the audio (e.g., "audio/wav", "audio/mpeg").
	ContentType string

	// SampleRate is the audio sample rate in Hz, when known.
	SampleRate int

	// Channels is the number of audio channels, when known.
	Channels int
}

// Split breaks text into chunks of at most limit runes. It prefers sentence
// ends, then whitespace, and cuts mid-word only when a single word is longer
// than limit. Chunks are trimmed and never empty.
func Split(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" || limit <= 0 {
		return nil
	}

	var chunks []string
	for utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		window := runes[:limit]
		cut := lastIndexFunc(window, func(r rune) bool { return strings.ContainsRune(".!?;。！？\n", r) }) + 1
		if cut <= 0 {
			cut = lastIndexFunc(window, unicode.IsSpace) + 1
		}
		if cut <= 0 {
			cut = limit
		}
		if chunk := strings.TrimSpace(string(runes[:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		text = strings.TrimSpace(string(runes[cut:]))
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

func lastIndexFunc(runes []rune, f func(rune) bool) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if f(runes[i]) {
			return i
		}
	}
	return -1
}
