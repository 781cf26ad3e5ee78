// Package local implements the Transcriber interface using a self-hosted
// Whisper server.
//
// It supports any OpenAI-compatible transcription endpoint (whisper.cpp
// server, faster-whisper) and ahmetoner/whisper-asr-webservice.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nadzzz/babelbot/internal/config"
	"github.com/nadzzz/babelbot/internal/transcribe"
)

// Transcriber talks to a local Whisper deployment.
type Transcriber struct {
	endpoint    string
	whisperType string // "openai" or "asr"
	model       string
	vadFilter   bool
	client      *http.Client
}

// New creates a new local transcriber from config.
func New(cfg config.LocalConfig) *Transcriber {
	wt := cfg.WhisperType
	if wt == "" {
		wt = "openai"
	}
	return &Transcriber{
		endpoint:    cfg.WhisperEndpoint,
		whisperType: wt,
		model:       cfg.Model,
		vadFilter:   cfg.VADFilter,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "local" }

// Transcribe sends audio to the local Whisper endpoint.
// Supports two flavors:
//   - "openai": OpenAI-compatible API (whisper.cpp server, faster-whisper)
//   - "asr":    ahmetoner/whisper-asr-webservice (POST /asr with query params)
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contentType string, opts transcribe.Options) (*transcribe.Result, error) {
	var (
		req *http.Request
		err error
	)
	switch t.whisperType {
	case "asr":
		req, err = t.asrRequest(ctx, audio, contentType, opts)
	default:
		req, err = t.openAIRequest(ctx, audio, contentType, opts)
	}
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s transcription request: %w", t.whisperType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%s transcription failed (status %d): %s", t.whisperType, resp.StatusCode, respBody)
	}

	// Both flavors return {"text": "...", "language": "..."} for verbose_json.
	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}

	res, err := transcribe.NewResult(result.Text, result.Language)
	if err != nil {
		return nil, err
	}
	slog.Debug("local transcription complete", "flavor", t.whisperType, "text_length", len(res.Text), "language", res.Language)
	return res, nil
}

// asrRequest builds a whisper-asr-webservice request.
// API: POST /asr?task=transcribe&language=en&output=json&vad_filter=true
// Body: multipart/form-data with field "audio_file"
func (t *Transcriber) asrRequest(ctx context.Context, audio []byte, contentType string, opts transcribe.Options) (*http.Request, error) {
	body, formType, err := transcribe.AudioForm("audio_file", audio, contentType, nil)
	if err != nil {
		return nil, err
	}

	q := make(url.Values)
	q.Set("task", "transcribe")
	q.Set("output", "json")
	q.Set("encode", "true")
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if opts.Prompt != "" {
		q.Set("initial_prompt", opts.Prompt)
	}
	if t.vadFilter {
		q.Set("vad_filter", "true")
	}

	reqURL := t.endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", formType)
	slog.Debug("whisper-asr request", "url", reqURL)
	return req, nil
}

func (t *Transcriber) openAIRequest(ctx context.Context, audio []byte, contentType string, opts transcribe.Options) (*http.Request, error) {
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

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", formType)
	return req, nil
}

// Close is a no-op for the local transcriber.
func (t *Transcriber) Close() error { return nil }
