// Package google implements the Translator interface using the public
// Google Translate web endpoint (translate_a/single, client=gtx). It needs no
// credentials and is the last resort in the chain.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nadzzz/babelbot/internal/config"
	"github.com/nadzzz/babelbot/internal/translate"
)

// MaxChars is the longest text the endpoint accepts in one request.
const MaxChars = 5000

// Translator calls translate_a/single.
type Translator struct {
	url    string
	client *http.Client
}

// New creates a Google Translate translator from config.
func New(cfg config.GoogleConfig) *Translator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Translator{url: cfg.URL, client: &http.Client{Timeout: timeout}}
}

// Name returns the backend identifier.
func (t *Translator) Name() string { return "google" }

// Translate machine-translates req.Text. An unknown source is sent as "auto".
func (t *Translator) Translate(ctx context.Context, req translate.Request) (string, error) {
	if t.url == "" {
		return "", translate.ErrUnavailable
	}
	if n := utf8.RuneCountInString(req.Text); n > MaxChars {
		return "", fmt.Errorf("text too long for google translate: %d characters", n)
	}

	source := req.SourceLang
	if source == "" {
		source = "auto"
	}
	q := make(url.Values)
	q.Set("client", "gtx")
	q.Set("sl", googleCode(source))
	q.Set("tl", googleCode(req.TargetLang))
	q.Set("dt", "t")
	q.Set("q", req.Text)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("google translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("google translate failed (status %d): %s", resp.StatusCode, respBody)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return parseResponse(data)
}

// parseResponse extracts the translated segments from the nested-array
// response: [[["Hallo","Hello",...],["Welt","World",...]],null,"en",...].
func parseResponse(data []byte) (string, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(root) == 0 {
		return "", fmt.Errorf("empty response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(root[0], &segments); err != nil {
		return "", fmt.Errorf("decoding segments: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(seg[0], &s); err != nil {
			continue
		}
		sb.WriteString(s)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no translated segments in response")
	}
	return sb.String(), nil
}

// googleCode maps canonical codes to the ones the endpoint expects.
func googleCode(code string) string {
	switch code {
	case "he":
		return "iw"
	case "zh":
		return "zh-CN"
	default:
		return code
	}
}
