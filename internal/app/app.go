// Package app wires the application together and exposes its two
// operational modes:
//
//   - Bot mode: connects to the configured chat platform and posts
//     artwork previews for linked artworks
//   - Relay mode: serves the image passthrough satisfying the origin's
//     Referer restriction
//
// Each mode runs as its own process.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/xcvr48/pixifull/internal/adapter"
	"github.com/xcvr48/pixifull/internal/adapter/discord"
	"github.com/xcvr48/pixifull/internal/adapter/telegram"
	"github.com/xcvr48/pixifull/internal/bot"
	"github.com/xcvr48/pixifull/internal/config"
	"github.com/xcvr48/pixifull/internal/core/embed"
	"github.com/xcvr48/pixifull/internal/core/pixiv"
	"github.com/xcvr48/pixifull/internal/platform/observability"
	"github.com/xcvr48/pixifull/internal/relay"
)

// App holds the application dependencies.
type App struct {
	cfg    *config.Config
	logger *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// RunBot selects the platform adapter, builds the preview pipeline,
// and serves messages until ctx is canceled.
func (a *App) RunBot(ctx context.Context) error {
	ad, err := a.newAdapter()
	if err != nil {
		return err
	}

	fetcher := pixiv.NewFetcher(a.cfg.PixivBaseURL, a.cfg.FetchRPS, a.cfg.FetchTimeout)

	builder, err := embed.NewBuilder(fetcher, a.cfg.RelayBaseURL)
	if err != nil {
		return fmt.Errorf("embed builder init: %w", err)
	}

	go func() {
		if err := observability.NewServer(a.cfg.HealthPort, a.logger).Start(ctx); err != nil {
			a.logger.Error().Err(err).Msg("health check server error")
		}
	}()

	return bot.New(ad, builder, a.logger).Run(ctx)
}

// RunRelay serves the image relay until ctx is canceled.
func (a *App) RunRelay(ctx context.Context) error {
	handler, err := relay.New(a.cfg.RelayOriginURL, a.logger)
	if err != nil {
		return fmt.Errorf("relay init: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.RelayPort),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background()) //nolint:errcheck,contextcheck // best-effort shutdown
	}()

	a.logger.Info().Int("port", a.cfg.RelayPort).Msg("image relay starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("relay server error: %w", err)
	}

	return nil
}

func (a *App) newAdapter() (adapter.Adapter, error) {
	platform, err := a.cfg.Platform()
	if err != nil {
		return nil, err
	}

	switch platform {
	case "discord":
		return discord.New(a.cfg.DiscordToken, a.logger), nil
	default:
		return telegram.New(a.cfg.TelegramToken, a.logger)
	}
}
