// Package piper implements the TTS Synthesizer using a Piper Wyoming protocol server.
//
// Piper is a fast, local neural text-to-speech system. The linuxserver/piper
// container exposes the Wyoming protocol on TCP port 10200.
package piper

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"strings"
	"time"

	"github.com/nadzzz/babelbot/internal/config"
	"github.com/nadzzz/babelbot/internal/language"
	"github.com/nadzzz/babelbot/internal/tts"
)

// defaultVoices maps ISO-639-1 language codes to Piper voice model names.
// Languages without a published Piper voice are absent.
var defaultVoices = map[string]string{
	"ar": "ar_JO-kareem-medium",
	"ca": "ca_ES-upc_ona-medium",
	"cs": "cs_CZ-jirka-medium",
	"da": "da_DK-talesyntese-medium",
	"de": "de_DE-thorsten-medium",
	"el": "el_GR-rapunzelina-low",
	"en": "en_US-lessac-medium",
	"es": "es_ES-mls_10246-low",
	"fa": "fa_IR-amir-medium",
	"fi": "fi_FI-harri-medium",
	"fr": "fr_FR-siwis-medium",
	"hu": "hu_HU-anna-medium",
	"it": "it_IT-riccardo-x_low",
	"kk": "kk_KZ-issai-high",
	"nl": "nl_NL-mls-medium",
	"no": "no_NO-talesyntese-medium",
	"pl": "pl_PL-darkman-medium",
	"pt": "pt_BR-faber-medium",
	"ro": "ro_RO-mihai-medium",
	"ru": "ru_RU-ruslan-medium",
	"sk": "sk_SK-lili-medium",
	"sr": "sr_RS-serbski_institut-medium",
	"sv": "sv_SE-nst-medium",
	"tr": "tr_TR-dfki-medium",
	"uk": "uk_UA-ukrainian_tts-medium",
	"vi": "vi_VN-vais1000-medium",
	"zh": "zh_CN-huayan-medium",
}

// Synthesizer implements tts.Synthesizer using the Wyoming protocol.
//
// A single Piper instance may serve every language (Endpoint), or each
// language may have its own instance (Endpoints, falling back to Endpoint).
type Synthesizer struct {
	endpoint  string
	endpoints map[string]string
	voices    map[string]string
}

// New creates a new Piper synthesizer from config.
func New(cfg config.PiperConfig) *Synthesizer {
	voices := maps.Clone(defaultVoices)
	for k, v := range cfg.Voices {
		voices[language.Canonical(k)] = v
	}
	endpoints := make(map[string]string, len(cfg.Endpoints))
	for lang, ep := range cfg.Endpoints {
		endpoints[language.Canonical(lang)] = cleanEndpoint(ep)
	}
	return &Synthesizer{
		endpoint:  cleanEndpoint(cfg.Endpoint),
		endpoints: endpoints,
		voices:    voices,
	}
}

func cleanEndpoint(ep string) string {
	ep = strings.TrimPrefix(ep, "tcp://")
	return strings.TrimPrefix(ep, "http://")
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "piper" }

// Voice returns the voice used for lang, or "" when Piper has none.
func (s *Synthesizer) Voice(lang string) string {
	return s.voices[language.Canonical(lang)]
}

// Synthesize sends text to the Piper server and returns synthesized audio as WAV.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.Options) (*tts.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}
	lang := language.Canonical(opts.Language)

	// A wrong-language voice mangles the text, so there is no English fallback.
	voice := opts.Voice
	if voice == "" {
		voice = s.voices[lang]
	}
	if voice == "" {
		return nil, fmt.Errorf("piper: %w %q", tts.ErrUnsupportedLanguage, opts.Language)
	}

	endpoint := s.endpoints[lang]
	if endpoint == "" {
		endpoint = s.endpoint
	}
	if endpoint == "" {
		return nil, fmt.Errorf("no piper endpoint configured for language %q", lang)
	}

	slog.Debug("piper synthesize", "text_length", len(text), "voice", voice, "language", lang, "endpoint", endpoint)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to piper: %w", err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(30 * time.Second)
	}
	_ = conn.SetDeadline(deadline)

	var req synthesizeData
	req.Text = text
	req.Voice.Name = voice
	if err := writeEvent(conn, "synthesize", req); err != nil {
		return nil, fmt.Errorf("sending synthesize event: %w", err)
	}

	return readAudio(bufio.NewReader(conn))
}

// readAudio consumes audio-start, audio-chunk* and audio-stop events.
func readAudio(r *bufio.Reader) (*tts.Result, error) {
	format := audioFormat{Rate: 22050, Width: 2, Channels: 1}
	var pcm bytes.Buffer

	for {
		evt, payload, err := readEvent(r)
		if err != nil {
			return nil, fmt.Errorf("reading piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			if len(evt.Data) > 0 {
				if err := json.Unmarshal(evt.Data, &format); err != nil {
					return nil, fmt.Errorf("decoding audio-start: %w", err)
				}
			}
			slog.Debug("piper audio-start", "rate", format.Rate, "channels", format.Channels, "width", format.Width)

		case "audio-chunk":
			pcm.Write(payload)

		case "audio-stop":
			slog.Debug("piper audio-stop", "pcm_bytes", pcm.Len())
			return &tts.Result{
				Audio:       wav(pcm.Bytes(), format),
				ContentType: "audio/wav",
				SampleRate:  format.Rate,
				Channels:    format.Channels,
			}, nil

		case "error":
			var e errorData
			_ = json.Unmarshal(evt.Data, &e)
			if e.Text == "" {
				e.Text = "unknown error"
			}
			return nil, fmt.Errorf("piper error: %s", e.Text)

		default:
			slog.Debug("piper unknown event", "type", evt.Type)
		}
	}
}

// Close is a no-op; connections are per-request.
func (s *Synthesizer) Close() error { return nil }
