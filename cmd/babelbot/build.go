package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nadzzz/babelbot/internal/config"
	"github.com/nadzzz/babelbot/internal/dispatch"
	"github.com/nadzzz/babelbot/internal/langdetect"
	"github.com/nadzzz/babelbot/internal/prefs"
	"github.com/nadzzz/babelbot/internal/transcribe"
	localstt "github.com/nadzzz/babelbot/internal/transcribe/local"
	openaistt "github.com/nadzzz/babelbot/internal/transcribe/openai"
	"github.com/nadzzz/babelbot/internal/translate"
	"github.com/nadzzz/babelbot/internal/translate/gemini"
	googlemt "github.com/nadzzz/babelbot/internal/translate/google"
	"github.com/nadzzz/babelbot/internal/translate/llm"
	"github.com/nadzzz/babelbot/internal/transport"
	grpctransport "github.com/nadzzz/babelbot/internal/transport/grpc"
	httptransport "github.com/nadzzz/babelbot/internal/transport/http"
	telegramtransport "github.com/nadzzz/babelbot/internal/transport/telegram"
	"github.com/nadzzz/babelbot/internal/tts"
	googletts "github.com/nadzzz/babelbot/internal/tts/google"
	"github.com/nadzzz/babelbot/internal/tts/piper"
)

// newArbiter builds the language arbitrator: whatlanggo as the primary
// detector, Lingua restricted to the supported languages as the secondary.
func newArbiter(cfg *config.Config) (*langdetect.Arbiter, error) {
	supported := cfg.SupportedSet()
	lingua, err := langdetect.NewLingua(supported, langdetect.LinguaOptions{
		MinConfidence: cfg.Detection.MinConfidence,
		LazyLoad:      cfg.Detection.LazyLoad,
		LowAccuracy:   cfg.Detection.LowAccuracy,
	})
	if err != nil {
		return nil, fmt.Errorf("building lingua detector: %w", err)
	}
	return langdetect.New(supported, langdetect.NewWhatlang(), lingua,
		langdetect.WithTimeout(cfg.Detection.Timeout),
	), nil
}

// newTranscriber returns nil when voice input is disabled.
func newTranscriber(cfg *config.Config) (transcribe.Transcriber, error) {
	switch cfg.Transcriber.Backend {
	case "openai":
		slog.Info("using OpenAI transcriber", "model", cfg.Transcriber.OpenAI.Model)
		return openaistt.New(cfg.Transcriber.OpenAI), nil
	case "local":
		slog.Info("using local transcriber",
			"whisper", cfg.Transcriber.Local.WhisperEndpoint,
			"type", cfg.Transcriber.Local.WhisperType)
		return localstt.New(cfg.Transcriber.Local), nil
	case "none", "":
		slog.Info("voice input disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown transcriber backend %q", cfg.Transcriber.Backend)
	}
}

// newTranslator chains the translators in the configured order.
func newTranslator(cfg *config.Config) (*translate.Chain, error) {
	var translators []translate.Translator
	for _, name := range cfg.Translation.Order {
		switch name {
		case "llm":
			translators = append(translators, llm.New(cfg.Translation.LLM))
		case "gemini":
			translators = append(translators, gemini.New(cfg.Translation.Gemini))
		case "google":
			translators = append(translators, googlemt.New(cfg.Translation.Google))
		default:
			return nil, fmt.Errorf("unknown translator %q", name)
		}
	}
	chain := translate.NewChain(translators...)
	slog.Info("translation chain configured", "order", chain.Names())
	return chain, nil
}

// newSynthesizer returns nil when speech output is disabled.
func newSynthesizer(cfg *config.Config) (tts.Synthesizer, error) {
	if !cfg.TTS.Enabled {
		slog.Info("speech output disabled")
		return nil, nil
	}
	switch cfg.TTS.Backend {
	case "piper":
		slog.Info("using Piper TTS", "endpoint", cfg.TTS.Piper.Endpoint, "endpoints", len(cfg.TTS.Piper.Endpoints))
		return piper.New(cfg.TTS.Piper), nil
	case "google":
		slog.Info("using Google TTS")
		return googletts.New(cfg.TTS.Google, cfg.SpeechSet()), nil
	default:
		return nil, fmt.Errorf("unknown TTS backend %q", cfg.TTS.Backend)
	}
}

// openPrefs opens the per-user preference store.
func openPrefs(ctx context.Context, cfg *config.Config) (prefs.Store, error) {
	switch cfg.Prefs.Backend {
	case "sqlite":
		store, err := prefs.OpenSQLite(ctx, cfg.Prefs.Path)
		if err != nil {
			return nil, err
		}
		slog.Info("using SQLite preference store", "path", store.Path())
		return store, nil
	case "memory", "":
		slog.Warn("using in-memory preference store, target languages are lost on restart")
		return prefs.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown prefs backend %q", cfg.Prefs.Backend)
	}
}

// newDispatcher wires the pipeline from its parts.
func newDispatcher(cfg *config.Config, arbiter *langdetect.Arbiter, translator *translate.Chain,
	transcriber transcribe.Transcriber, synth tts.Synthesizer, store prefs.Store) *dispatch.Dispatcher {
	return dispatch.New(dispatch.Deps{
		Detector:      arbiter,
		Translator:    translator,
		Transcriber:   transcriber,
		Synthesizer:   synth,
		Prefs:         store,
		Speech:        cfg.SpeechSet(),
		DefaultTarget: cfg.Languages.DefaultTarget,
		Prompt:        cfg.Transcriber.Prompt,
	})
}

// newTransports returns the enabled transports.
func newTransports(cfg *config.Config) []transport.Transport {
	var transports []transport.Transport
	if cfg.Transports.Telegram.Enabled {
		transports = append(transports, telegramtransport.New(cfg.Transports.Telegram))
	}
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port))
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port))
	}
	return transports
}
