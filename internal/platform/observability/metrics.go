package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSeen = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixifull_messages_seen_total",
		Help: "The total number of incoming messages containing artwork links",
	}, []string{"platform"})

	EmbedsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixifull_embeds_generated_total",
		Help: "The total number of previews generated and posted",
	}, []string{"platform"})

	EmbedFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixifull_embed_failures_total",
		Help: "The total number of artwork ids that produced no preview",
	}, []string{"platform", "reason"})

	PreviewsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixifull_previews_suppressed_total",
		Help: "The total number of native link previews suppressed",
	}, []string{"platform"})

	EmbedBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pixifull_embed_build_duration_seconds",
		Help:    "Duration of metadata fetch, image probe, and assembly per artwork",
		Buckets: prometheus.DefBuckets,
	})

	RelayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixifull_relay_requests_total",
		Help: "The total number of image relay requests by upstream status",
	}, []string{"status"})

	RelayBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixifull_relay_bytes_total",
		Help: "The total number of image bytes streamed through the relay",
	})
)
