// Package transcribe defines the interface for speech-to-text backends.
//
// A transcriber turns a voice payload into text plus the language the
// recognizer heard. Babelbot ships with two backends: OpenAI (cloud) and
// Local (self-hosted Whisper).
package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"sync"

	"github.com/nadzzz/babelbot/internal/language"
)

// ErrEmpty is returned when the recognizer heard no speech.
var ErrEmpty = errors.New("no speech recognized")

// Options controls transcription behavior.
type Options struct {
	// Language is the ISO-639-1 code to force. Empty means auto-detect.
	Language string

	// Prompt provides context to improve recognition of domain-specific terms.
	Prompt string

	// Model overrides the default transcription model.
	Model string
}

// Result holds the output of a transcription.
type Result struct {
	// Text is the recognized speech.
	Text string

	// Language is the canonical code the recognizer reported, or "".
	Language string
}

// Transcriber converts audio bytes to text.
type Transcriber interface {
	// Name returns the backend identifier (e.g., "openai", "local").
	Name() string

	// Transcribe converts audio bytes to text.
	Transcribe(ctx context.Context, audio []byte, contentType string, opts Options) (*Result, error)

	// Close releases any resources held by the transcriber.
	Close() error
}

// NewResult trims text and canonicalizes the reported language. It returns
// ErrEmpty when nothing was recognized.
func NewResult(text, lang string) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmpty
	}
	return &Result{Text: text, Language: LanguageCode(lang)}, nil
}

// AudioForm writes audio as a multipart file field named field and then the
// given form fields. It returns the body and its content type.
func AudioForm(field string, audio []byte, contentType string, fields map[string]string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(field, "audio"+ExtFromContentType(contentType))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return nil, "", fmt.Errorf("writing audio: %w", err)
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := writer.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// ExtFromContentType maps an audio MIME type to a file extension the
// recognizers accept. Telegram voice notes arrive as audio/ogg.
func ExtFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"), strings.Contains(ct, "opus"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	case strings.Contains(ct, "m4a"), strings.Contains(ct, "mp4"):
		return ".m4a"
	default:
		return ".ogg"
	}
}

var (
	namesOnce sync.Once
	byName    map[string]string
)

// LanguageCode converts what a recognizer reports ("english", "EN",
// "pt-BR") to a canonical ISO-639-1 code. Unknown names yield "".
func LanguageCode(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return ""
	}
	namesOnce.Do(func() {
		byName = make(map[string]string, len(language.DefaultSupported)+4)
		for _, code := range language.DefaultSupported {
			byName[strings.ToLower(language.EnglishName(code))] = code
		}
		// Whisper's spellings that differ from CLDR.
		byName["norwegian"] = "no"
		byName["nynorsk"] = "no"
		byName["mandarin"] = "zh"
		byName["cantonese"] = "zh"
	})
	if code, ok := byName[lang]; ok {
		return code
	}
	if len(lang) > 3 && !strings.ContainsAny(lang, "-_") {
		return ""
	}
	return language.Canonical(lang)
}
