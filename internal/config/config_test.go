package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "babelbot.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HealthPort != 8081 || cfg.Transports.Telegram.Workers != 10 {
		t.Fatalf("server/transport defaults = %+v %+v", cfg.Server, cfg.Transports.Telegram)
	}
	if got := cfg.SupportedSet().Len(); got != 38 {
		t.Fatalf("supported languages = %d, want 38", got)
	}
	if cfg.Languages.DefaultTarget != "en" || cfg.Detection.Timeout != 2*time.Second {
		t.Fatalf("languages/detection = %+v %+v", cfg.Languages, cfg.Detection)
	}
	if strings.Join(cfg.Translation.Order, ",") != "llm,gemini,google" {
		t.Fatalf("translation order = %v", cfg.Translation.Order)
	}
	if cfg.Prefs.Backend != "memory" || cfg.TTS.Backend != "google" {
		t.Fatalf("prefs/tts = %+v %+v", cfg.Prefs, cfg.TTS)
	}
	if cfg.Detection.LazyLoad || cfg.Detection.MinConfidence != 0.5 {
		t.Fatalf("detection = %+v, want eager model loading", cfg.Detection)
	}
}

func TestLoadKeepsZeroConfidence(t *testing.T) {
	cfg, err := Load(writeFile(t, "detection:\n  min_confidence: 0\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Detection.MinConfidence != 0 {
		t.Fatalf("min_confidence = %v, want 0", cfg.Detection.MinConfidence)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("BABELBOT_TRANSPORTS_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("BABELBOT_LOGGING_LEVEL", "debug")
	t.Setenv("TEST_MISTRAL_KEY", "sk-test")

	path := writeFile(t, `
transports:
  http:
    enabled: true
    port: 9090
languages:
  supported: [en, ru, uk]
  default_target: ru
translation:
  order: [google]
  llm:
    api_key: ${TEST_MISTRAL_KEY}
prefs:
  backend: sqlite
  path: /tmp/babelbot-test.db
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transports.Telegram.Token != "123:abc" || cfg.Logging.Level != "debug" {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Transports.Telegram, cfg.Logging)
	}
	if cfg.Translation.LLM.APIKey != "sk-test" {
		t.Fatalf("api key = %q, want resolved env reference", cfg.Translation.LLM.APIKey)
	}
	if !cfg.Transports.HTTP.Enabled || cfg.Transports.HTTP.Port != 9090 {
		t.Fatalf("http = %+v", cfg.Transports.HTTP)
	}
	if cfg.Prefs.Backend != "sqlite" || cfg.Languages.DefaultTarget != "ru" {
		t.Fatalf("prefs/languages = %+v %+v", cfg.Prefs, cfg.Languages)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"one language", "languages:\n  supported: [en]\n"},
		{"unknown codes only", "languages:\n  supported: [en, '!!']\n  default_target: en\n"},
		{"unsupported default", "languages:\n  supported: [en, ru]\n  default_target: de\n"},
		{"unknown transcriber", "transcriber:\n  backend: vosk\n"},
		{"unknown translator", "translation:\n  order: [deepl]\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"sqlite without path", "prefs:\n  backend: sqlite\n  path: ''\n"},
		{"bad port", "transports:\n  http:\n    port: 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.body)); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestValidateServe(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.ValidateServe(); err == nil || !strings.Contains(err.Error(), "token") {
		t.Fatalf("telegram without token: err = %v", err)
	}

	cfg.Transports.Telegram.Enabled = false
	if err := cfg.ValidateServe(); err == nil {
		t.Fatal("no transports accepted")
	}

	cfg.Transports.GRPC.Enabled = true
	if err := cfg.ValidateServe(); err != nil {
		t.Fatalf("grpc only: %v", err)
	}
}

func TestSpeechSetKeepsSupportedOnly(t *testing.T) {
	cfg := &Config{Languages: LanguagesConfig{
		Supported: []string{"en", "ru"},
		Speech:    []string{"EN", "ja", "ru"},
	}}
	speech := cfg.SpeechSet()
	if speech.Len() != 2 || !speech.Contains("en") || speech.Contains("ja") {
		t.Fatalf("speech = %v", speech.Codes())
	}
}

func TestResolveEnvRef(t *testing.T) {
	t.Setenv("BABELBOT_TEST_SECRET", "s3cret")
	tests := map[string]string{
		"${BABELBOT_TEST_SECRET}": "s3cret",
		"${BABELBOT_TEST_UNSET}":  "${BABELBOT_TEST_UNSET}",
		"plain":                   "plain",
		"":                        "",
	}
	for in, want := range tests {
		if got := resolveEnvRef(in); got != want {
			t.Errorf("resolveEnvRef(%q) = %q, want %q", in, got, want)
		}
	}
}
