// Package config handles loading and validating the babelbot configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/nadzzz/babelbot/internal/language"
)

// Config is the root configuration for the babelbot daemon.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Transports  TransportsConfig  `mapstructure:"transports"`
	Languages   LanguagesConfig   `mapstructure:"languages"`
	Detection   DetectionConfig   `mapstructure:"detection"`
	Transcriber TranscriberConfig `mapstructure:"transcriber"`
	Translation TranslationConfig `mapstructure:"translation"`
	TTS         TTSConfig         `mapstructure:"tts"`
	Prefs       PrefsConfig       `mapstructure:"prefs"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port" validate:"min=1,max=65535"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
}

// TelegramConfig configures the Telegram bot transport.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	// Workers bounds the number of updates handled concurrently.
	Workers int `mapstructure:"workers" validate:"min=1"`
	// PollTimeout is the long-polling timeout in seconds.
	PollTimeout int  `mapstructure:"poll_timeout" validate:"min=0"`
	Debug       bool `mapstructure:"debug"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"min=1,max=65535"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"min=1,max=65535"`
}

// LanguagesConfig defines the closed set of languages the bot works with.
type LanguagesConfig struct {
	Supported []string `mapstructure:"supported" validate:"min=2,dive,required"`
	// Speech lists the languages the synthesizer can voice.
	Speech []string `mapstructure:"speech"`
	// DefaultTarget is used for users without a stored preference.
	DefaultTarget string `mapstructure:"default_target" validate:"required"`
}

// DetectionConfig tunes the language arbitrator.
type DetectionConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	MinConfidence float64       `mapstructure:"min_confidence" validate:"gte=0,lte=1"`
	LazyLoad      bool          `mapstructure:"lazy_load"`
	LowAccuracy   bool          `mapstructure:"low_accuracy"`
}

// TranscriberConfig selects and configures the speech-to-text backend.
type TranscriberConfig struct {
	Backend string       `mapstructure:"backend" validate:"oneof=openai local none"`
	OpenAI  OpenAIConfig `mapstructure:"openai"`
	Local   LocalConfig  `mapstructure:"local"`
	// Prompt is passed to the recognizer as initial context.
	Prompt string `mapstructure:"prompt"`
}

// OpenAIConfig holds OpenAI transcription API settings.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	URL    string `mapstructure:"url" validate:"omitempty,url"`
	Model  string `mapstructure:"model"`
}

// LocalConfig holds self-hosted Whisper settings.
type LocalConfig struct {
	WhisperEndpoint string `mapstructure:"whisper_endpoint" validate:"omitempty,url"`
	WhisperType     string `mapstructure:"whisper_type" validate:"omitempty,oneof=openai asr"` // "openai" (default) or "asr" (ahmetoner/whisper-asr-webservice)
	Model           string `mapstructure:"model"`
	VADFilter       bool   `mapstructure:"vad_filter"`
}

// TranslationConfig configures the translator fallback chain.
type TranslationConfig struct {
	// Order lists translators by priority; the first one that succeeds wins.
	Order  []string     `mapstructure:"order" validate:"min=1,dive,oneof=llm gemini google"`
	LLM    LLMConfig    `mapstructure:"llm"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	Google GoogleConfig `mapstructure:"google"`
}

// LLMConfig configures an OpenAI-compatible chat completions endpoint
// (Mistral, OpenAI, Ollama, vLLM).
type LLMConfig struct {
	URL         string        `mapstructure:"url" validate:"omitempty,url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `mapstructure:"max_tokens" validate:"min=0"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// GeminiConfig configures the Gemini generateContent API.
type GeminiConfig struct {
	URL     string        `mapstructure:"url" validate:"omitempty,url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GoogleConfig configures the Google Translate web endpoint.
type GoogleConfig struct {
	URL     string        `mapstructure:"url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Enabled bool               `mapstructure:"enabled"`
	Backend string             `mapstructure:"backend" validate:"oneof=piper google"`
	Piper   PiperConfig        `mapstructure:"piper"`
	Google  GoogleSpeechConfig `mapstructure:"google"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// For a single Piper instance that serves all languages, set Endpoint.
// For per-language instances, set Endpoints which maps ISO-639-1 codes to
// individual Wyoming TCP endpoints. If both are set, Endpoints takes
// precedence and Endpoint is the fallback.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`  // Default Wyoming TCP endpoint (host:port)
	Endpoints map[string]string `mapstructure:"endpoints"` // ISO-639-1 language code -> Wyoming TCP endpoint
	Voices    map[string]string `mapstructure:"voices"`    // ISO-639-1 language code -> Piper voice model name
}

// GoogleSpeechConfig configures the Google Translate TTS endpoint.
type GoogleSpeechConfig struct {
	URL     string        `mapstructure:"url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PrefsConfig selects where per-user language preferences live.
type PrefsConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=memory sqlite"`
	Path    string `mapstructure:"path" validate:"required_if=Backend sqlite"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

// SupportedSet returns the configured supported languages as a set.
func (c *Config) SupportedSet() *language.Set {
	return language.NewSet(c.Languages.Supported...)
}

// SpeechSet returns the languages the synthesizer may voice. Only languages
// that are also supported are kept.
func (c *Config) SpeechSet() *language.Set {
	supported := c.SupportedSet()
	var codes []string
	for _, code := range c.Languages.Speech {
		if supported.Contains(code) {
			codes = append(codes, code)
		}
	}
	return language.NewSet(codes...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.telegram.enabled", true)
	v.SetDefault("transports.telegram.token", "")
	v.SetDefault("transports.telegram.workers", 10)
	v.SetDefault("transports.telegram.poll_timeout", 60)
	v.SetDefault("transports.telegram.debug", false)
	v.SetDefault("transports.http.enabled", false)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("languages.supported", language.DefaultSupported)
	v.SetDefault("languages.speech", language.DefaultSpeech)
	v.SetDefault("languages.default_target", "en")
	v.SetDefault("detection.timeout", 2*time.Second)
	v.SetDefault("detection.min_confidence", 0.5)
	v.SetDefault("detection.lazy_load", false)
	v.SetDefault("detection.low_accuracy", false)
	v.SetDefault("transcriber.backend", "openai")
	v.SetDefault("transcriber.prompt", "")
	v.SetDefault("transcriber.openai.api_key", "")
	v.SetDefault("transcriber.openai.url", "https://api.openai.com/v1/audio/transcriptions")
	v.SetDefault("transcriber.openai.model", "whisper-1")
	v.SetDefault("transcriber.local.whisper_endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("transcriber.local.whisper_type", "openai")
	v.SetDefault("transcriber.local.vad_filter", true)
	v.SetDefault("translation.order", []string{"llm", "gemini", "google"})
	v.SetDefault("translation.llm.url", "https://api.mistral.ai/v1/chat/completions")
	v.SetDefault("translation.llm.api_key", "")
	v.SetDefault("translation.llm.model", "mistral-tiny")
	v.SetDefault("translation.llm.temperature", 0.3)
	v.SetDefault("translation.llm.max_tokens", 1024)
	v.SetDefault("translation.llm.timeout", 30*time.Second)
	v.SetDefault("translation.gemini.url", "https://generativelanguage.googleapis.com/v1beta/models")
	v.SetDefault("translation.gemini.api_key", "")
	v.SetDefault("translation.gemini.model", "gemini-1.5-flash")
	v.SetDefault("translation.gemini.timeout", 30*time.Second)
	v.SetDefault("translation.google.url", "https://translate.googleapis.com/translate_a/single")
	v.SetDefault("translation.google.timeout", 15*time.Second)
	v.SetDefault("tts.enabled", true)
	v.SetDefault("tts.backend", "google")
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("tts.google.url", "https://translate.google.com/translate_tts")
	v.SetDefault("tts.google.timeout", 15*time.Second)
	v.SetDefault("prefs.backend", "memory")
	v.SetDefault("prefs.path", "babelbot.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./babelbot.yaml, ./configs/babelbot.yaml, /etc/babelbot/babelbot.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("babelbot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/babelbot")
	}

	// Environment variables: BABELBOT_TRANSPORTS_TELEGRAM_TOKEN, BABELBOT_LOGGING_LEVEL, etc.
	v.SetEnvPrefix("BABELBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional: env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${MISTRAL_API_KEY}")
	cfg.Transports.Telegram.Token = resolveEnvRef(cfg.Transports.Telegram.Token)
	cfg.Transcriber.OpenAI.APIKey = resolveEnvRef(cfg.Transcriber.OpenAI.APIKey)
	cfg.Translation.LLM.APIKey = resolveEnvRef(cfg.Translation.LLM.APIKey)
	cfg.Translation.Gemini.APIKey = resolveEnvRef(cfg.Translation.Gemini.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	supported := c.SupportedSet()
	if supported.Len() < 2 {
		return fmt.Errorf("invalid config: languages.supported needs at least two valid codes, got %v", c.Languages.Supported)
	}
	if !supported.Contains(c.Languages.DefaultTarget) {
		return fmt.Errorf("invalid config: languages.default_target %q is not a supported language", c.Languages.DefaultTarget)
	}
	return nil
}

// ValidateServe checks the rules that only matter when serving traffic.
func (c *Config) ValidateServe() error {
	t := c.Transports
	if !t.Telegram.Enabled && !t.HTTP.Enabled && !t.GRPC.Enabled {
		return errors.New("invalid config: no transports enabled, enable at least one")
	}
	if t.Telegram.Enabled && t.Telegram.Token == "" {
		return errors.New("invalid config: transports.telegram.token is required when telegram is enabled")
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
