// Package google implements the TTS Synthesizer using the Google Translate
// speech endpoint, the same voice gTTS uses. It returns MP3.
package google

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/nadzzz/babelbot/internal/config"
	"github.com/nadzzz/babelbot/internal/language"
	"github.com/nadzzz/babelbot/internal/tts"
)

// MaxChunk is the longest text the endpoint speaks in one request.
const MaxChunk = 200

// Synthesizer requests one MP3 per chunk and concatenates them.
type Synthesizer struct {
	url    string
	speech *language.Set
	client *http.Client
}

// New creates a Google TTS synthesizer limited to the languages in speech.
func New(cfg config.GoogleSpeechConfig, speech *language.Set) *Synthesizer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Synthesizer{url: cfg.URL, speech: speech, client: &http.Client{Timeout: timeout}}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "google" }

// Synthesize speaks text in opts.Language. opts.Voice is ignored.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.Options) (*tts.Result, error) {
	lang := language.Canonical(opts.Language)
	if !s.speech.Contains(lang) {
		return nil, fmt.Errorf("google tts: %w %q", tts.ErrUnsupportedLanguage, opts.Language)
	}
	chunks := tts.Split(text, MaxChunk)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := s.fetch(ctx, &audio, chunk, lang, i, len(chunks)); err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	slog.Debug("google tts complete", "language", lang, "chunks", len(chunks), "bytes", audio.Len())
	return &tts.Result{Audio: audio.Bytes(), ContentType: "audio/mpeg"}, nil
}

func (s *Synthesizer) fetch(ctx context.Context, dst *bytes.Buffer, chunk, lang string, idx, total int) error {
	q := make(url.Values)
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", ttsCode(lang))
	q.Set("q", chunk)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tts failed (status %d): %s", resp.StatusCode, body)
	}
	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return fmt.Errorf("reading audio: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("empty audio")
	}
	return nil
}

// ttsCode maps canonical codes to the ones the endpoint expects.
func ttsCode(code string) string {
	switch code {
	case "he":
		return "iw"
	case "zh":
		return "zh-CN"
	default:
		return code
	}
}

// Close is a no-op.
func (s *Synthesizer) Close() error { return nil }
