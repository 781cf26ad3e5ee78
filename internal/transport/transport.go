// Package transport defines the interface for pluggable inbound transports.
//
// Each transport (Telegram, HTTP, gRPC) turns its own wire format into a
// message.Message and hands it to the Service. The Service doesn't care how
// messages arrive.
package transport

import (
	"context"

	"github.com/nadzzz/babelbot/internal/langdetect"
	"github.com/nadzzz/babelbot/internal/language"
	"github.com/nadzzz/babelbot/internal/message"
)

// Service is what transports serve. *dispatch.Dispatcher implements it.
type Service interface {
	// Handle runs a message through the translation pipeline.
	Handle(ctx context.Context, msg *message.Message) (*message.Result, error)

	// Detect runs language arbitration alone.
	Detect(ctx context.Context, text, hint string) langdetect.Decision

	// Supported returns the languages the bot translates between.
	Supported() *language.Set

	// Target returns the language msg would be translated into.
	Target(ctx context.Context, msg *message.Message) string

	// CanSpeak reports whether translations into lang are voiced.
	CanSpeak(lang string) bool

	// SetTarget stores a user's preferred target language.
	SetTarget(ctx context.Context, userID int64, lang string) error
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "telegram", "http", "grpc").
	Name() string

	// Listen starts accepting incoming messages and passes them to svc.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, svc Service) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}

// LanguageInfo describes one supported language.
type LanguageInfo struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	Speech     bool   `json:"speech"`
}

// Languages lists the service's supported languages in code order.
func Languages(svc Service) []LanguageInfo {
	codes := svc.Supported().Codes()
	out := make([]LanguageInfo, 0, len(codes))
	for _, code := range codes {
		out = append(out, LanguageInfo{
			Code:       code,
			Name:       language.EnglishName(code),
			NativeName: language.NativeName(code),
			Speech:     svc.CanSpeak(code),
		})
	}
	return out
}
