// Package relay re-serves the artwork site's images through a stateless
// HTTP passthrough. The origin CDN rejects requests without its own
// Referer, which chat platforms never send; the relay adds the header
// server-side and streams the origin response bytes back verbatim.
package relay

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/xcvr48/pixifull/internal/core/pixiv"
	"github.com/xcvr48/pixifull/internal/platform/observability"
)

// DefaultOriginURL is the artwork site's image CDN root.
const DefaultOriginURL = "https://i.pximg.net"

const originRequestTimeout = 60 * time.Second

// Handler is the relay HTTP handler.
type Handler struct {
	origin *url.URL
	client *http.Client
	logger *zerolog.Logger
}

// New builds a relay against originURL (DefaultOriginURL when empty).
func New(originURL string, logger *zerolog.Logger) (*Handler, error) {
	if originURL == "" {
		originURL = DefaultOriginURL
	}

	origin, err := url.Parse(originURL)
	if err != nil {
		return nil, fmt.Errorf("parse origin url: %w", err)
	}

	return &Handler{
		origin: origin,
		client: &http.Client{Timeout: originRequestTimeout},
		logger: logger,
	}, nil
}

// Routes returns the relay router: health and metrics endpoints plus
// the catch-all image passthrough.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/*", h.proxy)

	return r
}

// headers copied through from the origin response. Everything else,
// including the origin's access-control headers, is dropped.
var passthroughHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Cache-Control",
	"Last-Modified",
	"ETag",
}

func (h *Handler) proxy(w http.ResponseWriter, r *http.Request) {
	target := h.origin.JoinPath(r.URL.Path)

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)

		return
	}

	req.Header.Set("Referer", pixiv.RefererValue)

	resp, err := h.client.Do(req)
	if err != nil {
		observability.RelayRequests.WithLabelValues("unreachable").Inc()
		h.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("origin fetch failed")
		http.Error(w, "origin unreachable", http.StatusBadGateway)

		return
	}
	defer resp.Body.Close()

	observability.RelayRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	for _, name := range passthroughHeaders {
		if v := resp.Header.Get(name); v != "" {
			w.Header().Set(name, v)
		}
	}

	w.WriteHeader(resp.StatusCode)

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		h.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("stream interrupted")
	}

	observability.RelayBytes.Add(float64(n))
}
