package pixiv

import (
	"context"
	"net/http"
	"strconv"
)

// probeSizeLimitBytes is the largest original image the platforms will
// inline; anything bigger falls back to the regular rendition.
const probeSizeLimitBytes = 10 * 1024 * 1024

// SelectRendition probes the original rendition with a HEAD request and
// returns the rendition name to embed. Probe failures of any kind
// degrade to the regular rendition rather than surfacing an error.
func (f *Fetcher) SelectRendition(ctx context.Context, urls Renditions) string {
	original, ok := urls[RenditionOriginal]
	if !ok || original == "" {
		return RenditionRegular
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, original, nil)
	if err != nil {
		return RenditionRegular
	}

	req.Header.Set("Referer", RefererValue)
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return RenditionRegular
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return RenditionRegular
	}

	if raw := resp.Header.Get("Content-Length"); raw != "" {
		if size, err := strconv.ParseInt(raw, 10, 64); err == nil && size > probeSizeLimitBytes {
			return RenditionRegular
		}
	}

	return RenditionOriginal
}
