// Package http implements the HTTP transport for babelbot.
//
// It exposes a small REST API: translation of JSON or raw-audio messages,
// language detection on its own, and the list of supported languages. The
// generated OpenAPI document is served by Swagger UI under /swagger/.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/babelbot/docs"
	"github.com/nadzzz/babelbot/internal/message"
	"github.com/nadzzz/babelbot/internal/transport"
)

// MaxBodyBytes caps uploaded audio and JSON bodies.
const MaxBodyBytes = 25 << 20

// Headers used with raw audio uploads.
const (
	HeaderSource         = "X-Babelbot-Source"
	HeaderUserID         = "X-Babelbot-User-Id"
	HeaderLanguageHint   = "X-Babelbot-Language-Hint"
	HeaderTargetLanguage = "X-Babelbot-Target-Language"
	HeaderResponseMode   = "X-Babelbot-Response-Mode"
)

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port   int
	server *http.Server
}

// New creates a new HTTP transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Listen starts the HTTP server and routes incoming requests to svc.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           Routes(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// Routes returns the API handler for svc.
func Routes(svc transport.Service) http.Handler {
	h := &handlers{svc: svc}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /translate", h.translate)
	mux.HandleFunc("POST /detect", h.detect)
	mux.HandleFunc("GET /languages", h.languages)
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	return mux
}

type handlers struct {
	svc transport.Service
}

// DetectRequest is the body of POST /detect.
type DetectRequest struct {
	Text string `json:"text"`
	Hint string `json:"hint,omitempty"`
}

// translate processes a POST /translate request.
//
// @Summary     Translate a text or voice message
// @Description Accepts a JSON message (text, or base64 audio) or raw audio bytes.
// @Description The message is transcribed if needed, its language detected, and the text translated
// @Description into the requested, stored, or default target language. Pipeline failures are reported
// @Description in the result's failure field with status 200.
// @Tags        translate
// @Accept      json
// @Accept      audio/ogg
// @Accept      audio/mpeg
// @Accept      audio/wav
// @Produce     json
// @Param       message  body      message.Message  true  "Translation request (JSON). For raw audio, POST the bytes directly with the appropriate Content-Type."
// @Param       X-Babelbot-Source           header  string   false  "Sender identifier (raw audio uploads)"
// @Param       X-Babelbot-User-Id          header  integer  false  "User whose stored target language applies (raw audio uploads)"
// @Param       X-Babelbot-Language-Hint    header  string   false  "Known source language (raw audio uploads)"
// @Param       X-Babelbot-Target-Language  header  string   false  "Target language (raw audio uploads)"
// @Param       X-Babelbot-Response-Mode    header  string   false  "text, audio or text+audio (raw audio uploads)"
// @Success     200  {object}  message.Result  "Translation or failure description"
// @Failure     400  {string}  string  "Invalid request body or headers"
// @Failure     500  {string}  string  "Internal processing error"
// @Router      /translate [post]
func (h *handlers) translate(w http.ResponseWriter, r *http.Request) {
	msg, err := decodeMessage(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg.Source == "" {
		msg.Source = "http"
	}

	result, err := h.svc.Handle(r.Context(), msg)
	if err != nil {
		slog.Error("translate failed", "error", err)
		http.Error(w, "translate error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// detect processes a POST /detect request.
//
// @Summary     Detect the language of a text
// @Description Runs language arbitration only and explains which rule decided.
// @Tags        detect
// @Accept      json
// @Produce     json
// @Param       request  body      DetectRequest        true  "Text and optional hint"
// @Success     200      {object}  langdetect.Decision  "Arbitration outcome"
// @Failure     400      {string}  string               "Invalid request body"
// @Router      /detect [post]
func (h *handlers) detect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, h.svc.Detect(r.Context(), req.Text, req.Hint))
}

// languages processes a GET /languages request.
//
// @Summary     List supported languages
// @Tags        languages
// @Produce     json
// @Success     200  {array}  transport.LanguageInfo
// @Router      /languages [get]
func (h *handlers) languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, transport.Languages(h.svc))
}

// decodeMessage builds a message from a JSON body or a raw audio upload.
func decodeMessage(r *http.Request) (*message.Message, error) {
	var msg message.Message
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		if err := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes)).Decode(&msg); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		return &msg, nil
	}
	if mediaType == "" || strings.HasPrefix(mediaType, "text/") {
		return nil, fmt.Errorf("unsupported content type %q: send application/json or audio", r.Header.Get("Content-Type"))
	}

	// Anything else is raw audio; the rest of the message comes from headers.
	audio, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio body")
	}
	msg.Audio = audio
	msg.ContentType = mediaType
	msg.Source = r.Header.Get(HeaderSource)
	msg.LanguageHint = r.Header.Get(HeaderLanguageHint)
	msg.TargetLanguage = r.Header.Get(HeaderTargetLanguage)
	msg.ResponseMode = message.ResponseMode(r.Header.Get(HeaderResponseMode))
	if v := r.Header.Get(HeaderUserID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s header: %w", HeaderUserID, err)
		}
		msg.UserID = id
	}
	return &msg, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response failed", "error", err)
	}
}
