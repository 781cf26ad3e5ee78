package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nadzzz/babelbot/internal/config"
	"github.com/nadzzz/babelbot/internal/health"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the enabled transports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	slog.Info("babelbot starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	arbiter, err := newArbiter(cfg)
	if err != nil {
		return err
	}
	translator, err := newTranslator(cfg)
	if err != nil {
		return err
	}
	transcriber, err := newTranscriber(cfg)
	if err != nil {
		return err
	}
	if transcriber != nil {
		defer transcriber.Close()
	}
	synth, err := newSynthesizer(cfg)
	if err != nil {
		return err
	}
	if synth != nil {
		defer synth.Close()
	}
	store, err := openPrefs(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	dispatcher := newDispatcher(cfg, arbiter, translator, transcriber, synth, store)
	transports := newTransports(cfg)

	healthServer := health.New(cfg.Server.HealthPort)
	if p, ok := store.(interface{ Ping(context.Context) error }); ok {
		healthServer.AddCheck("prefs", p.Ping)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthServer.ListenAndServe(gctx) })
	for _, t := range transports {
		g.Go(func() error {
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(gctx, dispatcher); err != nil {
				return fmt.Errorf("%s transport: %w", t.Name(), err)
			}
			return nil
		})
	}

	healthServer.SetReady(true)
	slog.Info("babelbot ready",
		"transports", len(transports),
		"languages", cfg.SupportedSet().Len(),
		"health_port", cfg.Server.HealthPort)

	err = g.Wait()
	healthServer.SetReady(false)

	for _, t := range transports {
		if cerr := t.Close(); cerr != nil {
			slog.Error("transport close error", "name", t.Name(), "error", cerr)
		}
	}
	if err != nil {
		slog.Error("babelbot stopped with error", "error", err)
		return err
	}
	slog.Info("babelbot stopped")
	return nil
}
