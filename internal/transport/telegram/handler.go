package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nadzzz/babelbot/internal/i18n"
	"github.com/nadzzz/babelbot/internal/language"
	"github.com/nadzzz/babelbot/internal/message"
	"github.com/nadzzz/babelbot/internal/transcribe"
	"github.com/nadzzz/babelbot/internal/transport"
	"github.com/nadzzz/babelbot/internal/tts"
)

const (
	// maxTextLen is the Bot API limit for one text message.
	maxTextLen = 4096

	// maxDownload is the Bot API limit for files bots may download.
	maxDownload = 20 << 20

	keyboardColumns = 3
	callbackPrefix  = "lang:"
)

// botAPI is the part of *tgbotapi.BotAPI the handler uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type handler struct {
	bot   botAPI
	svc   transport.Service
	httpc *http.Client
}

func newHandler(bot botAPI, svc transport.Service, httpc *http.Client) *handler {
	return &handler{bot: bot, svc: svc, httpc: httpc}
}

func (h *handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("telegram update panicked", "update_id", update.UpdateID, "panic", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		m := update.Message
		if m.IsCommand() {
			h.handleCommand(m)
			return
		}
		h.handleMessage(ctx, m)
	}
}

func (h *handler) handleCommand(m *tgbotapi.Message) {
	locale := m.From.LanguageCode
	switch m.Command() {
	case "language":
		reply := tgbotapi.NewMessage(m.Chat.ID, i18n.Text(locale, i18n.ChooseLanguage))
		reply.ReplyMarkup = languageKeyboard(h.svc.Supported())
		h.send(reply)
	default:
		h.send(tgbotapi.NewMessage(m.Chat.ID, i18n.Text(locale, i18n.Welcome, languageList(h.svc.Supported()))))
	}
}

func (h *handler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	code, ok := strings.CutPrefix(cq.Data, callbackPrefix)
	if !ok || cq.From == nil {
		return
	}
	locale := cq.From.LanguageCode

	text := i18n.Text(locale, i18n.LanguageSaved, language.NativeName(code))
	if err := h.svc.SetTarget(ctx, cq.From.ID, code); err != nil {
		slog.Warn("saving target language failed", "user_id", cq.From.ID, "language", code, "error", err)
		text = i18n.Text(locale, i18n.InternalError)
	}

	if _, err := h.bot.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
		slog.Warn("answering callback failed", "error", err)
	}
	if cq.Message != nil {
		h.send(tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, text))
	}
}

func (h *handler) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	locale := m.From.LanguageCode
	msg := message.New("telegram")
	msg.ChatID = m.Chat.ID
	msg.UserID = m.From.ID
	msg.UserLocale = locale

	fileID, contentType := voiceFile(m)
	switch {
	case fileID != "":
		h.action(m.Chat.ID, tgbotapi.ChatTyping)
		audio, err := h.download(ctx, fileID)
		if err != nil {
			slog.Error("downloading voice failed", "message_id", msg.ID, "error", err)
			h.reply(m, i18n.Text(locale, i18n.NoSpeech))
			return
		}
		msg.Audio = audio
		msg.ContentType = contentType
		target := h.svc.Target(ctx, msg)
		notice := i18n.TranslatingText
		if h.svc.CanSpeak(target) {
			notice = i18n.Translating
		}
		h.reply(m, i18n.Text(locale, notice, language.NativeName(target)))
	case strings.TrimSpace(m.Text) != "":
		h.action(m.Chat.ID, tgbotapi.ChatTyping)
		msg.Text = m.Text
	default:
		return
	}

	res, err := h.svc.Handle(ctx, msg)
	if err != nil {
		slog.Error("handling message failed", "message_id", msg.ID, "error", err)
		h.reply(m, i18n.Text(locale, i18n.InternalError))
		return
	}
	if res.Failed() {
		if text := failureText(locale, res); text != "" {
			h.reply(m, text)
		}
		return
	}

	if res.Transcript != "" {
		h.reply(m, i18n.Text(locale, i18n.TranscriptHeader)+"\n"+res.Transcript)
	}
	if res.Translation != "" {
		h.reply(m, i18n.Text(locale, i18n.TranslationHeader)+"\n"+res.Translation)
	}
	if audio := res.ResponseAudioBytes(); len(audio) > 0 {
		h.action(m.Chat.ID, tgbotapi.ChatRecordVoice)
		h.send(audioReply(m, audio, res.ResponseContentType, i18n.Text(locale, i18n.AudioCaption)))
	}
}

// failureText maps a pipeline failure to the reply shown to the user.
func failureText(locale string, res *message.Result) string {
	switch res.Failure {
	case message.FailureNoInput:
		return ""
	case message.FailureTranscription:
		return i18n.Text(locale, i18n.NoSpeech)
	case message.FailureUndetected:
		return i18n.Text(locale, i18n.Undetected)
	case message.FailureUnsupported:
		return i18n.Text(locale, i18n.Unsupported, language.EnglishName(res.SourceLanguage), res.SourceLanguage)
	case message.FailureTranslation:
		return i18n.Text(locale, i18n.TranslationFailed)
	default:
		return i18n.Text(locale, i18n.InternalError)
	}
}

// voiceFile returns the file to transcribe, if m carries one.
func voiceFile(m *tgbotapi.Message) (fileID, contentType string) {
	switch {
	case m.Voice != nil:
		return m.Voice.FileID, firstNonEmpty(m.Voice.MimeType, "audio/ogg")
	case m.Audio != nil:
		return m.Audio.FileID, firstNonEmpty(m.Audio.MimeType, "audio/mpeg")
	}
	return "", ""
}

// audioReply builds a voice note for formats Telegram plays inline and an
// audio file otherwise.
func audioReply(m *tgbotapi.Message, audio []byte, contentType, caption string) tgbotapi.Chattable {
	file := tgbotapi.FileBytes{Name: "translation" + transcribe.ExtFromContentType(contentType), Bytes: audio}
	switch contentType {
	case "audio/ogg", "audio/mpeg":
		voice := tgbotapi.NewVoice(m.Chat.ID, file)
		voice.Caption = caption
		voice.ReplyToMessageID = m.MessageID
		return voice
	default:
		a := tgbotapi.NewAudio(m.Chat.ID, file)
		a.Caption = caption
		a.ReplyToMessageID = m.MessageID
		return a
	}
}

// languageKeyboard lays out one button per supported language.
func languageKeyboard(supported *language.Set) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, code := range supported.Codes() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(language.NativeName(code), callbackPrefix+code))
		if len(row) == keyboardColumns {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// languageList formats the supported languages for the welcome text.
func languageList(supported *language.Set) string {
	var b strings.Builder
	for i, code := range supported.Codes() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "• %s (%s)", language.NativeName(code), code)
	}
	return b.String()
}

func (h *handler) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := h.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolving file %s: %w", fileID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}
	resp, err := h.httpc.Do(req)
	if err != nil {
		// The URL embeds the bot token.
		return nil, fmt.Errorf("downloading file %s: request failed", fileID)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading file %s (status %d)", fileID, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", fileID, err)
	}
	if len(data) > maxDownload {
		return nil, fmt.Errorf("file %s exceeds %d bytes", fileID, maxDownload)
	}
	return data, nil
}

// reply sends text as replies to m, split to fit the message size limit.
func (h *handler) reply(m *tgbotapi.Message, text string) {
	for _, part := range tts.Split(text, maxTextLen) {
		out := tgbotapi.NewMessage(m.Chat.ID, part)
		out.ReplyToMessageID = m.MessageID
		h.send(out)
	}
}

func (h *handler) action(chatID int64, action string) {
	if _, err := h.bot.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		slog.Debug("sending chat action failed", "action", action, "error", err)
	}
}

func (h *handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		slog.Warn("telegram send failed", "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
