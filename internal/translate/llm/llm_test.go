package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nadzzz/babelbot/internal/config"
	"github.com/nadzzz/babelbot/internal/translate"
)

func TestTranslate(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Translation: \"Guten Morgen\""}}]}`))
	}))
	defer server.Close()

	tr := New(config.LLMConfig{URL: server.URL, APIKey: "key", Model: "mistral-tiny", Temperature: 0.3})
	out, err := tr.Translate(context.Background(), translate.Request{Text: "Good morning", SourceLang: "en", TargetLang: "de"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "Guten Morgen" {
		t.Fatalf("Translate = %q", out)
	}
	if got.Model != "mistral-tiny" || got.MaxTokens != 1024 || got.Temperature != 0.3 {
		t.Fatalf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "Good morning" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if !strings.Contains(got.Messages[0].Content, "German (de)") {
		t.Fatalf("system prompt = %q", got.Messages[0].Content)
	}
}

func TestTranslateUnavailable(t *testing.T) {
	tests := []config.LLMConfig{
		{},
		{URL: "https://api.mistral.ai/v1/chat/completions", Model: "mistral-tiny"},
		{URL: "http://localhost:11434/v1/chat/completions"},
	}
	for _, cfg := range tests {
		_, err := New(cfg).Translate(context.Background(), translate.Request{Text: "hi", TargetLang: "de"})
		if !errors.Is(err, translate.ErrUnavailable) {
			t.Errorf("config %+v: err = %v, want ErrUnavailable", cfg, err)
		}
	}
}

func TestTranslateLocalWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header")
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Hola"}}]}`))
	}))
	defer server.Close()

	out, err := New(config.LLMConfig{URL: server.URL, Model: "llama3"}).Translate(context.Background(), translate.Request{Text: "Hello", TargetLang: "es"})
	if err != nil || out != "Hola" {
		t.Fatalf("Translate = (%q, %v)", out, err)
	}
}

func TestTranslateErrors(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
	}{
		"status":     {http.StatusTooManyRequests, `{"message":"rate limited"}`},
		"no choices": {http.StatusOK, `{"choices":[]}`},
		"malformed":  {http.StatusOK, `not json`},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := New(config.LLMConfig{URL: server.URL, APIKey: "k", Model: "m"}).Translate(context.Background(), translate.Request{Text: "Hello", TargetLang: "de"})
			if err == nil || errors.Is(err, translate.ErrUnavailable) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}
