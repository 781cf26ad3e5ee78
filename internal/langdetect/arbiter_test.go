package langdetect

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nadzzz/babelbot/internal/language"
)

var testSupported = language.NewSet(language.DefaultSupported...)

type stubDetector struct {
	name  string
	code  string
	delay time.Duration
	calls atomic.Int32
}

func (s *stubDetector) Name() string { return s.name }

func (s *stubDetector) Detect(string) (string, bool) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.code, s.code != ""
}

func stub(code string) *stubDetector { return &stubDetector{name: "stub", code: code} }

func newTestArbiter(primary, secondary Detector, opts ...Option) *Arbiter {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(testSupported, primary, secondary, opts...)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		hint      string
		primary   string
		secondary string
		want      string
		wantOK    bool
		wantRule  Rule
	}{
		{"agreement", "Guten Morgen zusammen", "", "de", "de", "de", true, RuleAgreement},
		{"primary only", "Buongiorno a tutti", "", "it", "", "it", true, RulePrimaryOnly},
		{"secondary only", "Bom dia a todos", "", "", "pt", "pt", true, RuleSecondaryOnly},
		{"both absent", "zzzz qqqq", "", "", "", "", false, RuleNoSignal},
		{"empty text", "", "", "en", "en", "", false, RuleTooShort},
		{"too short", "a", "", "en", "en", "", false, RuleTooShort},
		{"url only", "https://example.com", "", "en", "en", "", false, RuleTooShort},
		{"supported hint wins", "this is plainly English", "ru", "en", "en", "ru", true, RuleHint},
		{"hint is canonicalized", "whatever text", "pt-BR", "en", "en", "pt", true, RuleHint},
		{"hint with empty text", "", "de", "", "", "de", true, RuleHint},
		{"unsupported hint ignored", "Dzień dobry wszystkim", "xx", "pl", "pl", "pl", true, RuleAgreement},
		{"unsupported hint never returned", "", "ca", "", "", "", false, RuleTooShort},
		{"single result beats script rule", "漢字漢字漢字", "", "ja", "", "ja", true, RulePrimaryOnly},
		{"cyrillic prefers ru", "Привет, как дела?", "", "ru", "bg", "ru", true, RuleScript},
		{"cyrillic keeps variant", "Привіт, як справи?", "", "uk", "bg", "uk", true, RuleScript},
		{"cyrillic secondary variant", "Здравей, как си?", "", "ky", "bg", "bg", true, RuleSecondaryOnly},
		{"kana forces ja", "これは日本語です", "", "zh", "ja", "ja", true, RuleScript},
		{"han forces zh", "这是中文文本", "", "ja", "zh", "zh", true, RuleScript},
		{"hangul forces ko", "안녕하세요 여러분", "", "ja", "ko", "ko", true, RuleScript},
		{"arabic forces ar", "مرحبا بالعالم", "", "fa", "ar", "ar", true, RuleScript},
		{"greek forces el", "Καλημέρα κόσμε", "", "el", "bg", "el", true, RuleScript},
		{"latin disagreement prefers primary", "Hej allihopa", "", "sv", "no", "sv", true, RulePrimaryPreferred},
		{"stray greek letter in latin text", "Der Winkel α beträgt dreißig Grad", "", "de", "nl", "de", true, RulePrimaryPreferred},
		{"kanji with romaji stays ja", "東京へ行きます Tokyo", "", "zh", "ja", "ja", true, RuleScript},
		{"primary outside set is no signal", "Bon dia a tothom", "", "ca", "es", "es", true, RuleSecondaryOnly},
		{"both outside set", "Bon dia a tothom", "", "ca", "gl", "", false, RuleNoSignal},
		{"detector aliases folded", "God morgen alle", "", "nb", "no", "no", true, RuleAgreement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestArbiter(stub(tt.primary), stub(tt.secondary))
			d := a.Explain(context.Background(), tt.text, tt.hint)
			if d.Language != tt.want || d.OK != tt.wantOK || d.Rule != tt.wantRule {
				t.Fatalf("Explain(%q, %q) = %+v, want language=%q ok=%v rule=%s",
					tt.text, tt.hint, d, tt.want, tt.wantOK, tt.wantRule)
			}

			code, ok := a.Resolve(context.Background(), tt.text, tt.hint)
			if code != tt.want || ok != tt.wantOK {
				t.Fatalf("Resolve = (%q, %v), want (%q, %v)", code, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestResolveHintSkipsDetectors(t *testing.T) {
	primary, secondary := stub("en"), stub("en")
	a := newTestArbiter(primary, secondary)

	for _, text := range []string{"", "Hello there", "日本語", "https://example.com"} {
		if code, ok := a.Resolve(context.Background(), text, "ru"); !ok || code != "ru" {
			t.Fatalf("Resolve(%q, ru) = (%q, %v)", text, code, ok)
		}
	}
	if primary.calls.Load() != 0 || secondary.calls.Load() != 0 {
		t.Fatalf("detectors called with a supported hint: %d, %d", primary.calls.Load(), secondary.calls.Load())
	}
}

func TestResolveHungDetectorTimesOut(t *testing.T) {
	slow := &stubDetector{name: "slow", code: "fr", delay: 500 * time.Millisecond}
	a := newTestArbiter(slow, stub("de"), WithTimeout(20*time.Millisecond))

	start := time.Now()
	code, ok := a.Resolve(context.Background(), "Guten Abend allerseits", "")
	if elapsed := time.Since(start); elapsed > 250*time.Millisecond {
		t.Fatalf("Resolve waited %s for a hung detector", elapsed)
	}
	if !ok || code != "de" {
		t.Fatalf("Resolve = (%q, %v), want de from the responsive detector", code, ok)
	}
}

func TestResolveCancelledContext(t *testing.T) {
	primary, secondary := stub("en"), stub("en")
	a := newTestArbiter(primary, secondary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if code, ok := a.Resolve(ctx, "Hello everybody", ""); ok {
		t.Fatalf("Resolve on cancelled context = %q, want absent", code)
	}
	if primary.calls.Load() != 0 || secondary.calls.Load() != 0 {
		t.Fatal("detectors started after cancellation")
	}
}

func TestResolvePanickingDetector(t *testing.T) {
	boom := DetectorFunc{Label: "boom", Fn: func(string) (string, bool) { panic("malformed input") }}
	a := newTestArbiter(boom, stub("fi"))

	if code, ok := a.Resolve(context.Background(), "Hyvää huomenta", ""); !ok || code != "fi" {
		t.Fatalf("Resolve = (%q, %v), want fi", code, ok)
	}
}

func TestResolveNilDetectors(t *testing.T) {
	a := newTestArbiter(nil, nil)
	if _, ok := a.Resolve(context.Background(), "Hello everybody", ""); ok {
		t.Fatal("expected absent without detectors")
	}
}

func TestResolveAgreementIsCommutative(t *testing.T) {
	for _, pair := range [][2]string{{"ru", "bg"}, {"zh", "ja"}, {"el", "ru"}} {
		ab := newTestArbiter(stub(pair[0]), stub(pair[1]))
		ba := newTestArbiter(stub(pair[1]), stub(pair[0]))
		text := "Привет 日本 Ελλάδα"
		got1, _ := ab.Resolve(context.Background(), text, "")
		got2, _ := ba.Resolve(context.Background(), text, "")
		if got1 != got2 {
			t.Errorf("script verdict depends on detector order for %v: %q vs %q", pair, got1, got2)
		}
	}
}

func TestCyrillicTieBreak(t *testing.T) {
	tests := []struct {
		primary, secondary, want string
	}{
		{"ru", "bg", "ru"},
		{"bg", "ru", "ru"},
		{"uk", "en", "uk"},
		{"en", "sr", "sr"},
		{"uk", "bg", "uk"},
		{"en", "de", "ru"},
		{"", "", "ru"},
	}
	for _, tt := range tests {
		if got := cyrillicTieBreak(tt.primary, tt.secondary); got != tt.want {
			t.Errorf("cyrillicTieBreak(%q, %q) = %q, want %q", tt.primary, tt.secondary, got, tt.want)
		}
	}
}
