// Package gemini implements the Translator interface using Google's Gemini
// generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nadzzz/babelbot/internal/config"
	"github.com/nadzzz/babelbot/internal/translate"
)

// Translator calls models/{model}:generateContent.
type Translator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// New creates a Gemini translator from config.
func New(cfg config.GeminiConfig) *Translator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Translator{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (t *Translator) Name() string { return "gemini" }

// Translate asks Gemini for a translation.
func (t *Translator) Translate(ctx context.Context, req translate.Request) (string, error) {
	if t.apiKey == "" || t.baseURL == "" {
		return "", translate.ErrUnavailable
	}

	reqBody := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: translate.SystemPrompt(req.SourceLang, req.TargetLang)}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: req.Text}}}},
		GenerationConfig:  generationConfig{Temperature: 0.3, MaxOutputTokens: 1024},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", t.baseURL, url.PathEscape(t.model), url.QueryEscape(t.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		// The URL carries the key; keep it out of logs.
		return "", fmt.Errorf("gemini request to %s: %w", t.model, unwrapURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("gemini failed (status %d): %s", resp.StatusCode, respBody)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates returned from gemini")
	}

	var sb strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return translate.Clean(sb.String(), req.Text), nil
}

func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}
