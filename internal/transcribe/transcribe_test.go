package transcribe

import (
	"errors"
	"mime"
	"mime/multipart"
	"testing"
)

func TestLanguageCode(t *testing.T) {
	tests := map[string]string{
		"english":   "en",
		"Russian":   "ru",
		"ukrainian": "uk",
		"EN":        "en",
		"pt-BR":     "pt",
		"nb":        "no",
		"norwegian": "no",
		"mandarin":  "zh",
		"":          "",
		"klingon":   "",
	}
	for in, want := range tests {
		if got := LanguageCode(in); got != want {
			t.Errorf("LanguageCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewResult(t *testing.T) {
	res, err := NewResult("  hello there \n", "english")
	if err != nil {
		t.Fatalf("NewResult: %v", err)
	}
	if res.Text != "hello there" || res.Language != "en" {
		t.Fatalf("NewResult = %+v", res)
	}

	if _, err := NewResult("   ", "en"); !errors.Is(err, ErrEmpty) {
		t.Fatalf("NewResult on blank text: err = %v, want ErrEmpty", err)
	}
}

func TestExtFromContentType(t *testing.T) {
	tests := map[string]string{
		"audio/ogg":              ".ogg",
		"audio/ogg; codecs=opus": ".ogg",
		"audio/mpeg":             ".mp3",
		"audio/wav":              ".wav",
		"audio/x-flac":           ".flac",
		"audio/mp4":              ".m4a",
		"":                       ".ogg",
	}
	for in, want := range tests {
		if got := ExtFromContentType(in); got != want {
			t.Errorf("ExtFromContentType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAudioFormSkipsEmptyFields(t *testing.T) {
	body, formType, err := AudioForm("file", []byte("OggS"), "audio/ogg", map[string]string{
		"model":    "whisper-1",
		"language": "",
	})
	if err != nil {
		t.Fatalf("AudioForm: %v", err)
	}

	_, params, err := mime.ParseMediaType(formType)
	if err != nil {
		t.Fatalf("ParseMediaType: %v", err)
	}
	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	if got := form.Value["model"]; len(got) != 1 || got[0] != "whisper-1" {
		t.Fatalf("model field = %v", got)
	}
	if _, ok := form.Value["language"]; ok {
		t.Fatal("empty language field was written")
	}
	files := form.File["file"]
	if len(files) != 1 || files[0].Filename != "audio.ogg" {
		t.Fatalf("file part = %+v", files)
	}
}
