// Package embed assembles platform-agnostic preview documents for
// artwork links. Rendering a Document onto a specific chat platform is
// the adapter's job.
package embed

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xcvr48/pixifull/internal/core/pixiv"
)

// AccentColor is the brand color of the artwork site.
const AccentColor = 0x0096FA

const (
	fieldViews     = "Views"
	fieldBookmarks = "Bookmarks"
	fieldLikes     = "Likes"
	fieldQuality   = "Image Quality"
)

// Field is one labeled stat on a preview.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Author is the optional uploader block on a preview.
type Author struct {
	Name    string
	URL     string
	IconURL string
}

// Document is the platform-agnostic preview of a single artwork.
type Document struct {
	Color       int
	Title       string
	Description string
	URL         string
	Timestamp   time.Time
	ImageURL    string
	Fields      []Field
	Author      *Author
}

// Builder orchestrates metadata fetch, rendition selection, and text
// formatting into Documents. Image URLs are rewritten through the
// relay so the origin's Referer check is satisfied server-side.
type Builder struct {
	fetcher   *pixiv.Fetcher
	relayBase *url.URL
	printer   *message.Printer
}

// NewBuilder constructs a Builder rewriting image URLs onto relayBase.
func NewBuilder(fetcher *pixiv.Fetcher, relayBase string) (*Builder, error) {
	base, err := url.Parse(relayBase)
	if err != nil {
		return nil, fmt.Errorf("parse relay base url: %w", err)
	}

	return &Builder{
		fetcher:   fetcher,
		relayBase: base,
		printer:   message.NewPrinter(language.English),
	}, nil
}

// Build produces the preview document for an artwork id. Errors from
// the metadata fetch, including the mature-content rejection, propagate
// to the caller unchanged.
func (b *Builder) Build(ctx context.Context, id string) (*Document, error) {
	art, err := b.fetcher.Artwork(ctx, id)
	if err != nil {
		return nil, err
	}

	rendition := b.fetcher.SelectRendition(ctx, art.URLs)

	doc := &Document{
		Color:       AccentColor,
		Title:       art.Title,
		Description: pixiv.FormatDescription(art.Description),
		URL:         b.fetcher.ArtworkURL(id),
		Timestamp:   art.Uploaded,
		ImageURL:    b.Proxied(art.URLs[rendition]),
		Fields: []Field{
			{Name: fieldViews, Value: b.formatCount(art.ViewCount), Inline: true},
			{Name: fieldBookmarks, Value: b.formatCount(art.BookmarkCount), Inline: true},
			{Name: fieldLikes, Value: b.formatCount(art.LikeCount), Inline: true},
		},
	}

	if rendition != pixiv.RenditionOriginal {
		doc.Fields = append(doc.Fields, Field{
			Name: fieldQuality,
			Value: fmt.Sprintf("Using %s due to size, [click here for original](%s)",
				rendition, b.Proxied(art.URLs[pixiv.RenditionOriginal])),
		})
	}

	if art.Author != nil {
		doc.Author = &Author{
			Name:    art.Author.Name,
			URL:     b.fetcher.UserURL(art.Author.ID),
			IconURL: b.Proxied(art.Author.ImageURL),
		}
	}

	return doc, nil
}

// Proxied rewrites an origin image URL onto the relay, keeping only the
// path. Unparseable URLs pass through untouched.
func (b *Builder) Proxied(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	return b.relayBase.JoinPath(u.Path).String()
}

func (b *Builder) formatCount(n int64) string {
	return b.printer.Sprintf("%d", n)
}
