// Package translate defines the Translator capability and a prioritized
// fallback chain over several backends.
//
// Babelbot ships with three backends: an OpenAI-compatible chat model
// (Mistral by default), Gemini, and the Google Translate web endpoint as the
// machine-translation fallback.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nadzzz/babelbot/internal/language"
)

var (
	// ErrNoTranslation is returned by Chain when every translator failed.
	ErrNoTranslation = errors.New("no translator produced a translation")

	// ErrUnavailable is returned by a translator that is not configured
	// (e.g. missing API key). Chain skips it silently.
	ErrUnavailable = errors.New("translator unavailable")
)

// Request is one translation job.
type Request struct {
	Text string

	// SourceLang is the canonical source code, or "" when unknown.
	SourceLang string

	// TargetLang is the canonical target code. Required.
	TargetLang string
}

// Translator translates text between languages.
type Translator interface {
	// Name returns the backend identifier (e.g., "llm", "google").
	Name() string

	// Translate returns the translated text.
	Translate(ctx context.Context, req Request) (string, error)
}

// Chain tries translators in order and returns the first non-empty result.
type Chain struct {
	translators []Translator
}

// NewChain creates a chain. Nil translators are ignored.
func NewChain(translators ...Translator) *Chain {
	c := &Chain{}
	for _, t := range translators {
		if t != nil {
			c.translators = append(c.translators, t)
		}
	}
	return c
}

// Names returns the backend names in priority order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.translators))
	for i, t := range c.translators {
		names[i] = t.Name()
	}
	return names
}

// Translate returns the translation and the name of the translator that
// produced it. When source and target are the same language the text is
// returned unchanged and the name is empty.
func (c *Chain) Translate(ctx context.Context, req Request) (string, string, error) {
	req.SourceLang = language.Canonical(req.SourceLang)
	req.TargetLang = language.Canonical(req.TargetLang)
	if req.TargetLang == "" {
		return "", "", errors.New("translate: target language required")
	}
	if strings.TrimSpace(req.Text) == "" {
		return "", "", errors.New("translate: empty text")
	}
	if req.SourceLang == req.TargetLang {
		return req.Text, "", nil
	}

	var errs []error
	for _, t := range c.translators {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		out, err := t.Translate(ctx, req)
		if errors.Is(err, ErrUnavailable) {
			slog.Debug("translator unavailable, skipping", "translator", t.Name())
			continue
		}
		if err != nil {
			slog.Warn("translator failed", "translator", t.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
			continue
		}
		out = strings.TrimSpace(out)
		if out == "" {
			errs = append(errs, fmt.Errorf("%s: empty result", t.Name()))
			continue
		}
		slog.Debug("translation complete", "translator", t.Name(), "source", req.SourceLang, "target", req.TargetLang)
		return out, t.Name(), nil
	}

	if len(errs) == 0 {
		return "", "", ErrNoTranslation
	}
	return "", "", fmt.Errorf("%w: %w", ErrNoTranslation, errors.Join(errs...))
}

// SystemPrompt is the instruction given to chat models.
func SystemPrompt(source, target string) string {
	var sb strings.Builder
	sb.WriteString("You are a professional translator.\n")
	if source != "" {
		fmt.Fprintf(&sb, "Your task is to translate text from %s (%s) to %s (%s).\n",
			language.EnglishName(source), source, language.EnglishName(target), target)
	} else {
		fmt.Fprintf(&sb, "Your task is to translate text to %s (%s).\n", language.EnglishName(target), target)
	}
	sb.WriteString("Translate the text accurately while preserving the original meaning, tone, and style.\n")
	sb.WriteString("Respond ONLY with the translated text, without any explanations or comments.")
	return sb.String()
}

var answerPrefixes = []string{"translation:", "translated text:", "перевод:"}

var quotePairs = [][2]string{{`"`, `"`}, {"«", "»"}, {"“", "”"}, {"„", "“"}, {"'", "'"}}

// Clean strips the wrappers chat models add around an answer: a leading
// "Translation:" label and quotes that the input did not have.
func Clean(output, input string) string {
	out := strings.TrimSpace(output)
	lower := strings.ToLower(out)
	for _, p := range answerPrefixes {
		if strings.HasPrefix(lower, p) {
			out = strings.TrimSpace(out[len(p):])
			break
		}
	}
	in := strings.TrimSpace(input)
	for _, q := range quotePairs {
		if strings.HasPrefix(in, q[0]) && strings.HasSuffix(in, q[1]) {
			break
		}
		if len(out) > len(q[0])+len(q[1]) && strings.HasPrefix(out, q[0]) && strings.HasSuffix(out, q[1]) {
			out = strings.TrimSpace(out[len(q[0]) : len(out)-len(q[1])])
			break
		}
	}
	return out
}
