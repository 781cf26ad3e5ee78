// Package dispatch implements the translation pipeline shared by every
// transport.
//
// The dispatcher receives messages from transports and runs them through
// transcribe → detect language → translate → synthesize. Pipeline failures
// are reported in the Result, never as an error: the sender always receives
// an answer.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nadzzz/babelbot/internal/langdetect"
	"github.com/nadzzz/babelbot/internal/language"
	"github.com/nadzzz/babelbot/internal/message"
	"github.com/nadzzz/babelbot/internal/prefs"
	"github.com/nadzzz/babelbot/internal/transcribe"
	"github.com/nadzzz/babelbot/internal/translate"
	"github.com/nadzzz/babelbot/internal/tts"
)

// Detector resolves the language of a text. *langdetect.Arbiter implements it.
type Detector interface {
	Explain(ctx context.Context, text, hint string) langdetect.Decision
	Supported() *language.Set
}

// Translator translates text and names the backend that did it.
// *translate.Chain implements it.
type Translator interface {
	Translate(ctx context.Context, req translate.Request) (string, string, error)
}

// Deps are the collaborators of a Dispatcher. Transcriber and Synthesizer
// may be nil to disable voice input and speech output.
type Deps struct {
	Detector    Detector
	Translator  Translator
	Transcriber transcribe.Transcriber
	Synthesizer tts.Synthesizer
	Prefs       prefs.Store

	// Speech lists the languages the synthesizer is asked to voice.
	Speech *language.Set

	// DefaultTarget is used when neither the message, the user's stored
	// preference nor the user's locale names a supported language.
	DefaultTarget string

	// Prompt is passed to the transcriber as initial context.
	Prompt string
}

// Dispatcher is the central pipeline.
type Dispatcher struct {
	Deps
}

// New creates a new Dispatcher.
func New(deps Deps) *Dispatcher {
	if deps.Prefs == nil {
		deps.Prefs = prefs.NewMemory()
	}
	if deps.Speech == nil {
		deps.Speech = language.NewSet()
	}
	if deps.DefaultTarget == "" {
		deps.DefaultTarget = "en"
	}
	return &Dispatcher{Deps: deps}
}

// Supported returns the languages the bot translates between.
func (d *Dispatcher) Supported() *language.Set { return d.Detector.Supported() }

// CanSpeak reports whether a translation into lang will be voiced.
func (d *Dispatcher) CanSpeak(lang string) bool {
	return d.Synthesizer != nil && d.Speech.Contains(lang)
}

// Detect runs language arbitration alone.
func (d *Dispatcher) Detect(ctx context.Context, text, hint string) langdetect.Decision {
	return d.Detector.Explain(ctx, text, hint)
}

// SetTarget stores userID's preferred target language.
func (d *Dispatcher) SetTarget(ctx context.Context, userID int64, lang string) error {
	code := language.Canonical(lang)
	if !d.Supported().Contains(code) {
		return fmt.Errorf("language %q is not supported", lang)
	}
	if err := d.Prefs.Set(ctx, userID, code); err != nil {
		return fmt.Errorf("storing target language: %w", err)
	}
	return nil
}

// Target returns the language msg should be translated into: an explicit
// TargetLanguage, then the sender's stored preference, then the sender's
// locale, then DefaultTarget.
func (d *Dispatcher) Target(ctx context.Context, msg *message.Message) string {
	supported := d.Supported()
	if code := language.Canonical(msg.TargetLanguage); supported.Contains(code) {
		return code
	}
	if msg.UserID != 0 {
		code, err := d.Prefs.Get(ctx, msg.UserID)
		switch {
		case err == nil && supported.Contains(code):
			return code
		case err != nil && !errors.Is(err, prefs.ErrNotFound):
			slog.Warn("reading target preference failed", "user_id", msg.UserID, "error", err)
		}
	}
	if code := language.Canonical(msg.UserLocale); supported.Contains(code) {
		return code
	}
	return language.Canonical(d.DefaultTarget)
}

// resolveResponseMode determines the effective ResponseMode for a message.
// If the caller didn't specify one, the default depends on whether TTS is available.
func (d *Dispatcher) resolveResponseMode(mode message.ResponseMode) message.ResponseMode {
	switch mode {
	case message.ResponseModeText, message.ResponseModeAudio, message.ResponseModeTextAudio:
		return mode
	default:
		if d.Synthesizer != nil {
			return message.ResponseModeTextAudio
		}
		return message.ResponseModeText
	}
}

func wantText(mode message.ResponseMode) bool {
	return mode == message.ResponseModeText || mode == message.ResponseModeTextAudio
}

func wantAudio(mode message.ResponseMode) bool {
	return mode == message.ResponseModeAudio || mode == message.ResponseModeTextAudio
}

// Handle processes a single message through the full pipeline.
// It is served to every transport through transport.Service.
func (d *Dispatcher) Handle(ctx context.Context, msg *message.Message) (*message.Result, error) {
	start := time.Now()
	msg.EnsureID()
	logger := slog.With("message_id", msg.ID, "source", msg.Source)

	respMode := d.resolveResponseMode(msg.ResponseMode)
	result := &message.Result{MessageID: msg.ID}
	fail := func(kind message.Failure, format string, args ...any) (*message.Result, error) {
		result.Failure = kind
		result.Error = fmt.Sprintf(format, args...)
		logger.Info("dispatch stopped", "failure", kind, "reason", result.Error, "duration", time.Since(start))
		return result, nil
	}

	// Step 1: obtain text, transcribing audio when present.
	text, hint := msg.Text, msg.LanguageHint
	if msg.HasAudio() {
		if d.Transcriber == nil {
			return fail(message.FailureTranscription, "voice messages are not enabled")
		}
		logger.Debug("transcribing audio", "content_type", msg.ContentType, "bytes", len(msg.Audio))
		res, err := d.Transcriber.Transcribe(ctx, msg.Audio, msg.ContentType, transcribe.Options{
			Prompt: d.Prompt,
		})
		if errors.Is(err, transcribe.ErrEmpty) {
			return fail(message.FailureTranscription, "no speech recognized")
		}
		if err != nil {
			logger.Error("transcription failed", "error", err)
			return fail(message.FailureTranscription, "transcription failed: %v", err)
		}
		text = res.Text
		result.Transcript = res.Text
		if hint == "" {
			hint = res.Language
		}
		logger.Info("transcription complete", "text_length", len(res.Text), "language", res.Language)
	}
	if strings.TrimSpace(text) == "" {
		return fail(message.FailureNoInput, "message has no audio and no text")
	}

	// Step 2: decide the source language.
	decision := d.Detector.Explain(ctx, text, hint)
	if !decision.OK {
		if raw := firstNonEmpty(decision.Primary, decision.Secondary); raw != "" {
			result.SourceLanguage = raw
			return fail(message.FailureUnsupported, "language %s (%s) is not supported", language.EnglishName(raw), raw)
		}
		return fail(message.FailureUndetected, "could not detect the language (%s)", decision.Rule)
	}
	result.SourceLanguage = decision.Language

	// Step 3: translate.
	target := d.Target(ctx, msg)
	result.TargetLanguage = target
	translation, by, err := d.Translator.Translate(ctx, translate.Request{
		Text:       text,
		SourceLang: decision.Language,
		TargetLang: target,
	})
	if err != nil {
		logger.Error("translation failed", "source", decision.Language, "target", target, "error", err)
		return fail(message.FailureTranslation, "translation failed: %v", err)
	}
	result.TranslatedBy = by
	if wantText(respMode) {
		result.Translation = translation
	}
	logger.Info("translation complete",
		"source", decision.Language,
		"target", target,
		"rule", decision.Rule,
		"translator", by)

	// Step 4: voice the translation. Failure here never fails the message.
	if wantAudio(respMode) && d.CanSpeak(target) {
		logger.Debug("synthesizing response", "language", target, "text_length", len(translation))
		synth, err := d.Synthesizer.Synthesize(ctx, translation, tts.Options{Language: target})
		if err != nil {
			logger.Warn("TTS synthesis failed, continuing without audio", "error", err)
		} else {
			result.SetResponseAudioBytes(synth.Audio)
			result.ResponseContentType = synth.ContentType
			logger.Info("TTS synthesis complete", "audio_bytes", len(synth.Audio))
		}
	}

	// Never answer with nothing: audio-only callers get text when no voice exists.
	if result.Translation == "" && result.ResponseAudio == "" {
		result.Translation = translation
	}

	logger.Info("dispatch complete", "duration", time.Since(start))
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
