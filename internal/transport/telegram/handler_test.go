package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nadzzz/babelbot/internal/i18n"
	"github.com/nadzzz/babelbot/internal/langdetect"
	"github.com/nadzzz/babelbot/internal/language"
	"github.com/nadzzz/babelbot/internal/message"
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	fileURL  string
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetFileDirectURL(fileID string) (string, error) {
	if b.fileURL == "" {
		return "", errors.New("no such file")
	}
	return b.fileURL + "/" + fileID, nil
}

// texts returns the text of every plain message sent.
func (b *fakeBot) texts() []string {
	var out []string
	for _, c := range b.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

type fakeService struct {
	result *message.Result
	err    error
	got    *message.Message
	saved  map[int64]string
	target string
}

func (f *fakeService) Handle(_ context.Context, msg *message.Message) (*message.Result, error) {
	f.got = msg
	return f.result, f.err
}

func (f *fakeService) Detect(context.Context, string, string) langdetect.Decision {
	return langdetect.Decision{}
}

func (f *fakeService) Supported() *language.Set { return language.NewSet("en", "de", "ru", "ja") }

func (f *fakeService) Target(context.Context, *message.Message) string {
	if f.target != "" {
		return f.target
	}
	return "en"
}

func (f *fakeService) CanSpeak(lang string) bool { return lang == "en" }

func (f *fakeService) SetTarget(_ context.Context, userID int64, lang string) error {
	if !f.Supported().Contains(lang) {
		return errors.New("unsupported")
	}
	if f.saved == nil {
		f.saved = map[int64]string{}
	}
	f.saved[userID] = lang
	return nil
}

func textMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 10,
		From:      &tgbotapi.User{ID: 5, LanguageCode: "ru"},
		Chat:      &tgbotapi.Chat{ID: 500},
		Text:      text,
	}
}

func command(name string) *tgbotapi.Message {
	m := textMessage("/" + name)
	m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name) + 1}}
	return m
}

func TestHandleTextMessage(t *testing.T) {
	bot := &fakeBot{}
	svc := &fakeService{result: &message.Result{SourceLanguage: "de", TargetLanguage: "en", Translation: "Good morning"}}
	h := newHandler(bot, svc, http.DefaultClient)

	h.handleUpdate(context.Background(), tgbotapi.Update{Message: textMessage("Guten Morgen")})

	if svc.got.Text != "Guten Morgen" || svc.got.UserID != 5 || svc.got.ChatID != 500 || svc.got.UserLocale != "ru" {
		t.Fatalf("message = %+v", svc.got)
	}
	texts := bot.texts()
	want := i18n.Text("ru", i18n.TranslationHeader) + "\nGood morning"
	if len(texts) != 1 || texts[0] != want {
		t.Fatalf("sent = %q, want %q", texts, want)
	}
	if reply := bot.sent[0].(tgbotapi.MessageConfig); reply.ReplyToMessageID != 10 {
		t.Fatalf("reply to = %d", reply.ReplyToMessageID)
	}
	if len(bot.requests) == 0 {
		t.Fatal("no chat action sent")
	}
}

func TestHandleVoiceMessage(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/voice-1") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("OggS-voice"))
	}))
	defer files.Close()

	bot := &fakeBot{fileURL: files.URL}
	res := &message.Result{Transcript: "Доброе утро", SourceLanguage: "ru", TargetLanguage: "en", Translation: "Good morning"}
	res.SetResponseAudioBytes([]byte("ID3"))
	res.ResponseContentType = "audio/mpeg"
	svc := &fakeService{result: res}
	h := newHandler(bot, svc, files.Client())

	m := textMessage("")
	m.Voice = &tgbotapi.Voice{FileID: "voice-1", Duration: 2}
	h.handleUpdate(context.Background(), tgbotapi.Update{Message: m})

	if string(svc.got.Audio) != "OggS-voice" || svc.got.ContentType != "audio/ogg" {
		t.Fatalf("audio = %q (%s)", svc.got.Audio, svc.got.ContentType)
	}

	texts := bot.texts()
	if len(texts) != 3 {
		t.Fatalf("sent texts = %q", texts)
	}
	if texts[0] != i18n.Text("ru", i18n.Translating, "English") {
		t.Fatalf("notice = %q", texts[0])
	}
	if !strings.HasPrefix(texts[1], i18n.Text("ru", i18n.TranscriptHeader)) || !strings.HasSuffix(texts[1], "Доброе утро") {
		t.Fatalf("transcript reply = %q", texts[1])
	}
	voice, ok := bot.sent[len(bot.sent)-1].(tgbotapi.VoiceConfig)
	if !ok {
		t.Fatalf("last sent = %T, want voice", bot.sent[len(bot.sent)-1])
	}
	if voice.Caption != i18n.Text("ru", i18n.AudioCaption) || voice.ReplyToMessageID != 10 {
		t.Fatalf("voice = %+v", voice)
	}
}

func TestVoiceNoticeWithoutSpeech(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OggS-voice"))
	}))
	defer files.Close()

	bot := &fakeBot{fileURL: files.URL}
	svc := &fakeService{
		target: "de",
		result: &message.Result{Transcript: "Hello", SourceLanguage: "en", TargetLanguage: "de", Translation: "Hallo"},
	}
	m := textMessage("")
	m.Voice = &tgbotapi.Voice{FileID: "voice-2"}
	newHandler(bot, svc, files.Client()).handleUpdate(context.Background(), tgbotapi.Update{Message: m})

	texts := bot.texts()
	if len(texts) == 0 || texts[0] != i18n.Text("ru", i18n.TranslatingText, "Deutsch") {
		t.Fatalf("sent = %q, want a text-only notice first", texts)
	}
}

func TestHandleVoiceDownloadFailure(t *testing.T) {
	bot := &fakeBot{}
	svc := &fakeService{}
	h := newHandler(bot, svc, http.DefaultClient)

	m := textMessage("")
	m.Voice = &tgbotapi.Voice{FileID: "missing"}
	h.handleUpdate(context.Background(), tgbotapi.Update{Message: m})

	if svc.got != nil {
		t.Fatal("pipeline ran without audio")
	}
	if texts := bot.texts(); len(texts) != 1 || texts[0] != i18n.Text("ru", i18n.NoSpeech) {
		t.Fatalf("sent = %q", texts)
	}
}

func TestFailureReplies(t *testing.T) {
	tests := []struct {
		failure message.Failure
		want    string
	}{
		{message.FailureTranscription, i18n.Text("ru", i18n.NoSpeech)},
		{message.FailureUndetected, i18n.Text("ru", i18n.Undetected)},
		{message.FailureUnsupported, i18n.Text("ru", i18n.Unsupported, "Swahili", "sw")},
		{message.FailureTranslation, i18n.Text("ru", i18n.TranslationFailed)},
	}
	for _, tt := range tests {
		t.Run(string(tt.failure), func(t *testing.T) {
			bot := &fakeBot{}
			svc := &fakeService{result: &message.Result{Failure: tt.failure, SourceLanguage: "sw", Error: "x"}}
			newHandler(bot, svc, http.DefaultClient).handleUpdate(context.Background(), tgbotapi.Update{Message: textMessage("Habari")})

			if texts := bot.texts(); len(texts) != 1 || texts[0] != tt.want {
				t.Fatalf("sent = %q, want %q", texts, tt.want)
			}
		})
	}
}

func TestHandleServiceError(t *testing.T) {
	bot := &fakeBot{}
	svc := &fakeService{err: errors.New("boom")}
	newHandler(bot, svc, http.DefaultClient).handleUpdate(context.Background(), tgbotapi.Update{Message: textMessage("hello")})

	if texts := bot.texts(); len(texts) != 1 || texts[0] != i18n.Text("ru", i18n.InternalError) {
		t.Fatalf("sent = %q", texts)
	}
}

func TestCommands(t *testing.T) {
	t.Run("start", func(t *testing.T) {
		bot := &fakeBot{}
		newHandler(bot, &fakeService{}, http.DefaultClient).handleUpdate(context.Background(), tgbotapi.Update{Message: command("start")})

		texts := bot.texts()
		if len(texts) != 1 || !strings.Contains(texts[0], "• Русский (ru)") || !strings.Contains(texts[0], "• Deutsch (de)") {
			t.Fatalf("welcome = %q", texts)
		}
	})

	t.Run("language", func(t *testing.T) {
		bot := &fakeBot{}
		newHandler(bot, &fakeService{}, http.DefaultClient).handleUpdate(context.Background(), tgbotapi.Update{Message: command("language")})

		reply := bot.sent[0].(tgbotapi.MessageConfig)
		kb, ok := reply.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		if !ok {
			t.Fatalf("reply markup = %T", reply.ReplyMarkup)
		}
		if len(kb.InlineKeyboard) != 2 || len(kb.InlineKeyboard[0]) != 3 || len(kb.InlineKeyboard[1]) != 1 {
			t.Fatalf("keyboard layout = %+v", kb.InlineKeyboard)
		}
		if data := kb.InlineKeyboard[0][0].CallbackData; data == nil || *data != "lang:de" {
			t.Fatalf("first button data = %v", data)
		}
	})
}

func TestLanguageCallback(t *testing.T) {
	cq := func(data string) tgbotapi.Update {
		return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			From:    &tgbotapi.User{ID: 5, LanguageCode: "de"},
			Message: &tgbotapi.Message{MessageID: 77, Chat: &tgbotapi.Chat{ID: 500}},
			Data:    data,
		}}
	}

	bot := &fakeBot{}
	svc := &fakeService{}
	h := newHandler(bot, svc, http.DefaultClient)

	h.handleUpdate(context.Background(), cq("lang:ja"))
	if svc.saved[5] != "ja" {
		t.Fatalf("saved = %v", svc.saved)
	}
	edit, ok := bot.sent[0].(tgbotapi.EditMessageTextConfig)
	if !ok || edit.MessageID != 77 || edit.Text != i18n.Text("de", i18n.LanguageSaved, "日本語") {
		t.Fatalf("edit = %+v", bot.sent[0])
	}

	h.handleUpdate(context.Background(), cq("lang:tlh"))
	if edit := bot.sent[1].(tgbotapi.EditMessageTextConfig); edit.Text != i18n.Text("de", i18n.InternalError) {
		t.Fatalf("unsupported choice answered %q", edit.Text)
	}

	before := len(bot.sent)
	h.handleUpdate(context.Background(), cq("other:1"))
	if len(bot.sent) != before {
		t.Fatal("foreign callback data was handled")
	}
}

func TestAudioReplyFormats(t *testing.T) {
	m := textMessage("")
	if _, ok := audioReply(m, []byte("x"), "audio/ogg", "c").(tgbotapi.VoiceConfig); !ok {
		t.Fatal("ogg should be a voice note")
	}
	a, ok := audioReply(m, []byte("x"), "audio/wav", "c").(tgbotapi.AudioConfig)
	if !ok {
		t.Fatal("wav should be an audio file")
	}
	if fb, _ := a.File.(tgbotapi.FileBytes); fb.Name != "translation.wav" {
		t.Fatalf("file name = %q", fb.Name)
	}
}

func TestReplySplitsLongText(t *testing.T) {
	bot := &fakeBot{}
	h := newHandler(bot, &fakeService{}, http.DefaultClient)
	h.reply(textMessage(""), strings.Repeat("слово ", 1500))

	texts := bot.texts()
	if len(texts) != 3 {
		t.Fatalf("parts = %d", len(texts))
	}
	for _, part := range texts {
		if n := len([]rune(part)); n > maxTextLen {
			t.Fatalf("part has %d runes", n)
		}
	}
}
