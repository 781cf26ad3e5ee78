// Package llm implements the Translator interface on top of any
// OpenAI-compatible chat completions endpoint (Mistral, OpenAI, Ollama, vLLM).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nadzzz/babelbot/internal/config"
	"github.com/nadzzz/babelbot/internal/translate"
)

// Translator sends translation prompts to a chat model.
type Translator struct {
	url         string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// New creates a chat-model translator from config.
func New(cfg config.LLMConfig) *Translator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Translator{
		url:         cfg.URL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		client:      &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (t *Translator) Name() string { return "llm" }

// available reports whether the translator can be used. Hosted endpoints
// (https) need an API key; plain-http endpoints such as a local Ollama do not.
func (t *Translator) available() bool {
	if t.url == "" || t.model == "" {
		return false
	}
	return t.apiKey != "" || !strings.HasPrefix(t.url, "https://")
}

// Translate asks the chat model for a translation.
func (t *Translator) Translate(ctx context.Context, req translate.Request) (string, error) {
	if !t.available() {
		return "", translate.ErrUnavailable
	}

	reqBody := chatRequest{
		Model: t.model,
		Messages: []chatMessage{
			{Role: "system", Content: translate.SystemPrompt(req.SourceLang, req.TargetLang)},
			{Role: "user", Content: req.Text},
		},
		Temperature: t.temperature,
		MaxTokens:   t.maxTokens,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if t.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("chat failed (status %d): %s", resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from chat API")
	}

	return translate.Clean(chatResp.Choices[0].Message.Content, req.Text), nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
