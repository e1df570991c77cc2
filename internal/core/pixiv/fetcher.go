package pixiv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"golang.org/x/time/rate"

	apperrors "github.com/xcvr48/pixifull/internal/core/errors"
)

const (
	// DefaultBaseURL is the canonical artwork site root.
	DefaultBaseURL = "https://www.pixiv.net"

	// RefererValue satisfies the origin's hotlink protection. The site
	// checks the header against the http scheme specifically.
	RefererValue = "http://www.pixiv.net/"

	artworksPath     = "/artworks/"
	usersPath        = "/users/"
	metadataSelector = "#meta-preload-data"

	defaultFetchTimeout = 30 * time.Second
	maxRedirects        = 5
	limiterBurst        = 5
	maxBodySizeBytes    = 8 * 1024 * 1024
)

// Fetcher retrieves artwork pages and resolves the embedded metadata
// block. Safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	baseURL   string
	userAgent string
}

// NewFetcher builds a Fetcher against baseURL (DefaultBaseURL when
// empty) with a global request rate limit.
func NewFetcher(baseURL string, rps float64, timeout time.Duration) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return apperrors.ErrTooManyRedirects
				}

				return nil
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(rps), limiterBurst),
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: "pixifull/1.0 (artwork preview bot)",
	}
}

// ArtworkURL returns the public page URL for an artwork id.
func (f *Fetcher) ArtworkURL(id string) string {
	return f.baseURL + artworksPath + id
}

// UserURL returns the public profile URL for an author id.
func (f *Fetcher) UserURL(id string) string {
	return f.baseURL + usersPath + id
}

// Artwork fetches the artwork page for id and resolves its metadata.
// Age-restricted artworks fail with ErrMatureContent; a page without
// artwork records fails with ErrMetadataNotFound.
func (f *Fetcher) Artwork(ctx context.Context, id string) (*Artwork, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ArtworkURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch artwork page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrUpstreamStatus, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySizeBytes))
	if err != nil {
		return nil, fmt.Errorf("parse artwork page: %w", err)
	}

	payload, ok := doc.Find(metadataSelector).Attr("content")
	if !ok {
		return nil, fmt.Errorf("%w: metadata element missing", apperrors.ErrMetadataNotFound)
	}

	return resolveArtwork(payload, id)
}

// resolveArtwork decodes the preload JSON and picks the record for id.
// When the id is absent the first record wins; the source page is known
// to key records inconsistently on occasion, so this mirrors its
// behavior rather than failing.
func resolveArtwork(payload, id string) (*Artwork, error) {
	var data preloadData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	record, ok := data.Illust[id]
	if !ok {
		for _, first := range data.Illust {
			record = first
			ok = true

			break
		}
	}

	if !ok {
		return nil, fmt.Errorf("%w: no artwork records for id %s", apperrors.ErrMetadataNotFound, id)
	}

	if record.XRestrict != 0 {
		return nil, fmt.Errorf("%w: artwork %s", apperrors.ErrMatureContent, id)
	}

	art := &Artwork{
		ID:            record.ID,
		Title:         record.Title,
		Description:   record.Description,
		Uploaded:      parseUploadDate(record.UploadDate),
		ViewCount:     record.ViewCount,
		BookmarkCount: record.BookmarkCount,
		LikeCount:     record.LikeCount,
		AuthorID:      record.UserID,
		URLs:          record.URLs,
	}

	if art.ID == "" {
		art.ID = id
	}

	// A missing user record just means no author block on the preview.
	if user, ok := data.User[record.UserID]; ok {
		art.Author = &Author{
			ID:       user.UserID,
			Name:     user.Name,
			ImageURL: user.Image,
		}
	}

	return art, nil
}

func parseUploadDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	ts, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}
	}

	return ts
}
