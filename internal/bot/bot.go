// Package bot wires the chat adapter to the preview pipeline: extract
// artwork ids from each incoming message, assemble previews
// concurrently, post them, and hide the platform's own link preview
// once per message.
package bot

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/xcvr48/pixifull/internal/adapter"
	"github.com/xcvr48/pixifull/internal/core/embed"
	apperrors "github.com/xcvr48/pixifull/internal/core/errors"
	"github.com/xcvr48/pixifull/internal/core/pixiv"
	"github.com/xcvr48/pixifull/internal/platform/observability"
)

// documentBuilder assembles one preview document per artwork id.
type documentBuilder interface {
	Build(ctx context.Context, id string) (*embed.Document, error)
}

// Bot drives one chat platform.
type Bot struct {
	adapter adapter.Adapter
	builder documentBuilder
	logger  *zerolog.Logger
}

// New creates a Bot posting previews built by builder through ad.
func New(ad adapter.Adapter, builder documentBuilder, logger *zerolog.Logger) *Bot {
	return &Bot{
		adapter: ad,
		builder: builder,
		logger:  logger,
	}
}

// Run connects the adapter and serves messages until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info().Str("platform", b.adapter.Name()).Msg("bot starting")

	return b.adapter.Run(ctx, func(ctx context.Context, msg adapter.Message) {
		go b.HandleMessage(ctx, msg)
	})
}

// HandleMessage processes one incoming message: every extracted id is
// attempted in its own goroutine, a failed id never aborts its
// siblings, and the native preview is suppressed exactly once after the
// first successful post. Returns after the whole group settles.
func (b *Bot) HandleMessage(ctx context.Context, msg adapter.Message) {
	ids := pixiv.ExtractArtworkIDs(msg.Content)
	if len(ids) == 0 {
		return
	}

	observability.MessagesSeen.WithLabelValues(b.adapter.Name()).Inc()

	// One-shot guard scoped to this message's task group.
	var suppressed atomic.Bool

	var wg sync.WaitGroup

	for _, id := range ids {
		wg.Add(1)

		go func(id string) {
			defer wg.Done()
			b.handleArtwork(ctx, msg, id, &suppressed)
		}(id)
	}

	wg.Wait()
}

func (b *Bot) handleArtwork(ctx context.Context, msg adapter.Message, id string, suppressed *atomic.Bool) {
	platform := b.adapter.Name()

	timer := prometheus.NewTimer(observability.EmbedBuildDuration)
	doc, err := b.builder.Build(ctx, id)
	timer.ObserveDuration()

	if err != nil {
		observability.EmbedFailures.WithLabelValues(platform, failureReason(err)).Inc()
		b.logger.Warn().Err(err).Str("artwork_id", id).Msg("failed to generate embed")

		return
	}

	if err := b.adapter.Post(ctx, msg, doc); err != nil {
		observability.EmbedFailures.WithLabelValues(platform, "post").Inc()
		b.logger.Warn().Err(err).Str("artwork_id", id).Msg("failed to post embed")

		return
	}

	observability.EmbedsGenerated.WithLabelValues(platform).Inc()

	if suppressed.CompareAndSwap(false, true) {
		if err := b.adapter.SuppressPreview(ctx, msg); err != nil {
			b.logger.Debug().Err(err).Str("message_id", msg.MessageID).Msg("could not suppress native preview")

			return
		}

		observability.PreviewsSuppressed.WithLabelValues(platform).Inc()
	}
}

func failureReason(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrMatureContent):
		return "mature"
	case apperrors.Is(err, apperrors.ErrMetadataNotFound):
		return "metadata"
	case apperrors.Is(err, apperrors.ErrUpstreamStatus):
		return "upstream"
	case apperrors.Is(err, context.DeadlineExceeded), apperrors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "other"
	}
}
