// Package openai implements the Transcriber interface using OpenAI's
// Audio Transcription API (Whisper / gpt-4o-transcribe).
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nadzzz/babelbot/internal/config"
	"github.com/nadzzz/babelbot/internal/transcribe"
)

const defaultURL = "https://api.openai.com/v1/audio/transcriptions"

// Transcriber uses the OpenAI transcription endpoint.
type Transcriber struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

// New creates a new OpenAI transcriber from config.
func New(cfg config.OpenAIConfig) *Transcriber {
	url := cfg.URL
	if url == "" {
		url = defaultURL
	}
	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}
	return &Transcriber{
		url:    url,
		apiKey: cfg.APIKey,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "openai" }

// Transcribe sends audio to the OpenAI Transcription API.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contentType string, opts transcribe.Options) (*transcribe.Result, error) {
	model := t.model
	if opts.Model != "" {
		model = opts.Model
	}
	body, formType, err := transcribe.AudioForm("file", audio, contentType, map[string]string{
		"model":           model,
		"language":        opts.Language,
		"prompt":          opts.Prompt,
		"response_format": "verbose_json",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	req.Header.Set("Content-Type", formType)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}

	// OpenAI returns full language names ("english").
	res, err := transcribe.NewResult(result.Text, result.Language)
	if err != nil {
		return nil, err
	}
	slog.Debug("transcription complete", "text_length", len(res.Text), "language", res.Language)
	return res, nil
}

// Close is a no-op for the OpenAI transcriber.
func (t *Transcriber) Close() error { return nil }
