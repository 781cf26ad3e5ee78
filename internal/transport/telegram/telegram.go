// Package telegram implements the Telegram bot transport for babelbot.
//
// It long-polls the Bot API for updates, handles commands and the
// target-language keyboard, and turns text, voice and audio messages into
// pipeline messages. Updates are handled concurrently, bounded by the
// configured number of workers.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nadzzz/babelbot/internal/config"
	"github.com/nadzzz/babelbot/internal/transport"
)

// Transport implements transport.Transport over the Telegram Bot API.
type Transport struct {
	cfg config.TelegramConfig

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
	wg  sync.WaitGroup
}

// New creates a new Telegram transport.
func New(cfg config.TelegramConfig) *Transport {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Transport{cfg: cfg}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "telegram" }

// Listen connects to the Bot API and handles updates until ctx is cancelled.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	bot, err := tgbotapi.NewBotAPI(t.cfg.Token)
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", err)
	}
	bot.Debug = t.cfg.Debug

	t.mu.Lock()
	t.bot = bot
	t.mu.Unlock()

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Show supported languages"},
		tgbotapi.BotCommand{Command: "language", Description: "Choose the language to translate into"},
	)); err != nil {
		slog.Warn("registering bot commands failed", "error", err)
	}

	h := newHandler(bot, svc, &http.Client{Timeout: 60 * time.Second})

	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.cfg.PollTimeout
	updates := bot.GetUpdatesChan(u)

	slog.Info("telegram transport listening", "bot", bot.Self.UserName, "workers", t.cfg.Workers)

	go func() {
		<-ctx.Done()
		slog.Info("telegram transport shutting down")
		t.stop()
	}()

	sem := make(chan struct{}, t.cfg.Workers)
	for update := range updates {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			continue
		}
		t.wg.Add(1)
		go func(update tgbotapi.Update) {
			defer func() {
				<-sem
				t.wg.Done()
			}()
			h.handleUpdate(ctx, update)
		}(update)
	}

	t.wg.Wait()
	return nil
}

func (t *Transport) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
		t.bot = nil
	}
}

// Close stops polling and waits for in-flight updates.
func (t *Transport) Close() error {
	t.stop()
	t.wg.Wait()
	return nil
}
