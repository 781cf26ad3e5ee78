package langdetect

import (
	"context"
	"testing"

	"github.com/nadzzz/babelbot/internal/language"
)

func TestLinguaRestrictedToSet(t *testing.T) {
	set := language.NewSet("en", "de", "fr", "ru")
	d, err := NewLingua(set, LinguaOptions{})
	if err != nil {
		t.Fatalf("NewLingua: %v", err)
	}

	tests := map[string]string{
		"Guten Morgen, wie geht es dir heute? Das Wetter ist wirklich schön.":       "de",
		"Bonjour à tous, je suis très content de vous voir aujourd'hui.":            "fr",
		"Доброе утро, как у тебя дела сегодня? Погода сегодня действительно хорошая.": "ru",
	}
	for text, want := range tests {
		code, ok := d.Detect(text)
		if !ok || code != want {
			t.Errorf("Detect(%q) = (%q, %v), want %q", text, code, ok, want)
		}
		if !set.Contains(code) {
			t.Errorf("lingua answered %q outside its set", code)
		}
	}
}

func TestLinguaNeedsTwoLanguages(t *testing.T) {
	if _, err := NewLingua(language.NewSet("en"), LinguaOptions{}); err == nil {
		t.Fatal("expected error for a single-language set")
	}
}

func TestLinguaConfidenceThreshold(t *testing.T) {
	d, err := NewLingua(language.NewSet("en", "de"), LinguaOptions{MinConfidence: 1.01})
	if err != nil {
		t.Fatalf("NewLingua: %v", err)
	}
	if code, ok := d.Detect("This sentence is clearly written in English."); ok {
		t.Fatalf("Detect passed an impossible threshold with %q", code)
	}
}

func TestWhatlangDetect(t *testing.T) {
	d := NewWhatlang()
	code, ok := d.Detect("The quick brown fox jumps over the lazy dog and keeps running through the forest")
	if !ok || code != "en" {
		t.Fatalf("Detect = (%q, %v), want en", code, ok)
	}
	if code, ok := d.Detect("1234 5678 !!!"); ok {
		t.Fatalf("Detect on digits = %q, want absent", code)
	}
}

func TestFirstResolveUsesBothDetectors(t *testing.T) {
	set := language.NewSet(language.DefaultSupported...)
	lingua, err := NewLingua(set, LinguaOptions{MinConfidence: DefaultMinConfidence})
	if err != nil {
		t.Fatalf("NewLingua: %v", err)
	}
	a := New(set, NewWhatlang(), lingua, WithTimeout(DefaultTimeout))

	d := a.Explain(context.Background(), "Hello, how are you today?", "")
	if !d.OK || d.Language != "en" {
		t.Fatalf("first Explain = %+v, want en", d)
	}
}

func TestLinguaZeroConfidenceAcceptsAnyAnswer(t *testing.T) {
	d, err := NewLingua(language.NewSet("en", "de", "nl"), LinguaOptions{})
	if err != nil {
		t.Fatalf("NewLingua: %v", err)
	}
	for _, text := range []string{"Hallo", "Hand in hand", "Die Katze schläft"} {
		code, confidence, ok := d.DetectWithConfidence(text)
		if !ok || confidence == 0 {
			continue
		}
		got, gotOK := d.Detect(text)
		if !gotOK || got != code {
			t.Errorf("Detect(%q) = (%q, %v), want %q at confidence %.2f", text, got, gotOK, code, confidence)
		}
	}
}
