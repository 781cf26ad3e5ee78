// Package message defines the core data types flowing through the babelbot pipeline.
package message

import (
	"encoding/base64"
	"time"

	"github.com/google/uuid"
)

// ResponseMode controls what output the caller wants back.
type ResponseMode string

const (
	// ResponseModeText returns the translated text only.
	ResponseModeText ResponseMode = "text"

	// ResponseModeAudio returns synthesized speech only (no text).
	ResponseModeAudio ResponseMode = "audio"

	// ResponseModeTextAudio returns both text and synthesized speech.
	ResponseModeTextAudio ResponseMode = "text+audio"
)

// Message represents an incoming request from any transport.
type Message struct {
	// ID is a unique identifier for this message (UUID).
	ID string `json:"id"`

	// Source identifies the transport or client ("telegram", "http", "grpc").
	Source string `json:"source"`

	// ChatID is the conversation the reply goes to. Zero outside chat transports.
	ChatID int64 `json:"chat_id,omitempty"`

	// UserID identifies the sender for preference lookups. Zero when anonymous.
	UserID int64 `json:"user_id,omitempty"`

	// UserLocale is the client-reported interface language (e.g. Telegram's language_code).
	UserLocale string `json:"user_locale,omitempty"`

	// Audio is the raw voice payload. Nil if the message is text-only.
	Audio []byte `json:"audio,omitempty"`

	// ContentType is the MIME type of the audio (e.g., "audio/ogg").
	ContentType string `json:"content_type,omitempty"`

	// Text is the text to translate. Ignored when Audio is present.
	Text string `json:"text,omitempty"`

	// LanguageHint is a caller-known source language. It is trusted over detection.
	LanguageHint string `json:"language_hint,omitempty"`

	// TargetLanguage overrides the user's stored preference.
	TargetLanguage string `json:"target_language,omitempty"`

	// ResponseMode controls the output:
	//   "text"      : translated text only
	//   "audio"     : synthesized speech only
	//   "text+audio": both
	// Defaults to "text+audio" when TTS is enabled, "text" otherwise.
	ResponseMode ResponseMode `json:"response_mode,omitempty"`

	// Timestamp is when the message was received.
	Timestamp time.Time `json:"timestamp"`
}

// New returns a message with a fresh ID and timestamp.
func New(source string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}

// HasAudio returns true if the message contains an audio payload.
func (m *Message) HasAudio() bool {
	return len(m.Audio) > 0
}

// EnsureID fills in ID and Timestamp when a transport decoded a message
// without them.
func (m *Message) EnsureID() {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
}

// Failure classifies why a message could not be translated.
type Failure string

const (
	FailureNone          Failure = ""
	FailureNoInput       Failure = "no_input"
	FailureTranscription Failure = "transcription"
	FailureUndetected    Failure = "undetected"
	FailureUnsupported   Failure = "unsupported"
	FailureTranslation   Failure = "translation"
)

// Result is the outcome of processing a message through the pipeline.
type Result struct {
	// MessageID is the original message ID.
	MessageID string `json:"message_id"`

	// Transcript is the recognized text of a voice message (empty for text input).
	Transcript string `json:"transcript,omitempty"`

	// SourceLanguage is the resolved language of the input.
	SourceLanguage string `json:"source_language,omitempty"`

	// TargetLanguage is the language of Translation.
	TargetLanguage string `json:"target_language,omitempty"`

	// Translation is the translated text. Populated when the response mode includes text.
	Translation string `json:"translation,omitempty"`

	// TranslatedBy names the translator that produced Translation ("" when
	// source and target were the same language).
	TranslatedBy string `json:"translated_by,omitempty"`

	// ResponseAudio is the synthesized translation as a base64-encoded string.
	ResponseAudio string `json:"response_audio,omitempty"`

	// ResponseContentType is the MIME type of ResponseAudio (e.g., "audio/mpeg").
	ResponseContentType string `json:"response_content_type,omitempty"`

	// Failure is set if processing stopped early.
	Failure Failure `json:"failure,omitempty"`

	// Error is a human-readable description of Failure.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the pipeline stopped before producing a translation.
func (r *Result) Failed() bool { return r.Failure != FailureNone }

// SetResponseAudioBytes base64-encodes raw audio bytes into ResponseAudio.
func (r *Result) SetResponseAudioBytes(audio []byte) {
	if len(audio) > 0 {
		r.ResponseAudio = base64.StdEncoding.EncodeToString(audio)
	}
}

// ResponseAudioBytes decodes ResponseAudio. It returns nil when there is no audio.
func (r *Result) ResponseAudioBytes() []byte {
	if r.ResponseAudio == "" {
		return nil
	}
	b, err := base64.StdEncoding.DecodeString(r.ResponseAudio)
	if err != nil {
		return nil
	}
	return b
}
