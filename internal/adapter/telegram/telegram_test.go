package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xcvr48/pixifull/internal/core/embed"
)

func TestRenderCaption(t *testing.T) {
	doc := &embed.Document{
		Color:       embed.AccentColor,
		Title:       "Evening <Sketch>",
		Description: "a quick one & a half",
		URL:         "https://www.pixiv.net/artworks/12345",
		Timestamp:   time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC),
		ImageURL:    "https://relay.test/img-original/img/12345_p0.png",
		Fields: []embed.Field{
			{Name: "Views", Value: "1,234,567", Inline: true},
			{Name: "Bookmarks", Value: "4,321", Inline: true},
			{Name: "Likes", Value: "999", Inline: true},
			{Name: "Image Quality", Value: "Using regular due to size, [click here for original](https://relay.test/x.png)", Inline: false},
		},
		Author: &embed.Author{
			Name: "somebody",
			URL:  "https://www.pixiv.net/users/99",
		},
	}

	caption := renderCaption(doc)

	require.Contains(t, caption, `<a href="https://www.pixiv.net/artworks/12345">`)
	require.Contains(t, caption, "Evening &lt;Sketch&gt;", "title must be HTML-escaped")
	require.Contains(t, caption, "a quick one &amp; a half")
	require.Contains(t, caption, "Views: 1,234,567 · Bookmarks: 4,321 · Likes: 999")
	require.Contains(t, caption, `by <a href="https://www.pixiv.net/users/99">somebody</a>`)

	// Non-inline fields carry markdown captions cannot express.
	require.NotContains(t, caption, "Image Quality")
	require.NotContains(t, caption, "click here for original")
}

func TestRenderCaptionMinimalDocument(t *testing.T) {
	caption := renderCaption(&embed.Document{
		Title: "bare",
		URL:   "https://www.pixiv.net/artworks/1",
	})

	require.True(t, strings.HasPrefix(caption, "<b>"))
	require.Contains(t, caption, "bare")
	require.NotContains(t, caption, "by ")
	require.NotContains(t, caption, "·")
}
