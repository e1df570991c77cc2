package embed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/xcvr48/pixifull/internal/core/errors"
	"github.com/xcvr48/pixifull/internal/core/pixiv"
)

const relayBase = "https://relay.test"

// pipeline spins up an image server answering HEAD probes with the
// given size and a page server carrying metadata that points at it,
// then returns a Builder over both.
func pipeline(t *testing.T, originalSize int64, xRestrict int, withAuthor bool) *Builder {
	t.Helper()

	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.FormatInt(originalSize, 10))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(imgSrv.Close)

	userBlock := `{}`
	if withAuthor {
		userBlock = fmt.Sprintf(`{"99": {"userId": "99", "name": "somebody", "image": "%s/user-profile/img/99.png"}}`, imgSrv.URL)
	}

	payload := fmt.Sprintf(`{
		"illust": {
			"12345": {
				"id": "12345",
				"title": "Evening Sketch",
				"description": "a quick one<br>enjoy",
				"xRestrict": %d,
				"userId": "99",
				"viewCount": 1234567,
				"bookmarkCount": 4321,
				"likeCount": 999,
				"uploadDate": "2021-06-01T12:00:00+09:00",
				"urls": {
					"regular": "%s/img-master/img/12345_p0_master1200.jpg",
					"original": "%s/img-original/img/12345_p0.png"
				}
			}
		},
		"user": %s
	}`, xRestrict, imgSrv.URL, imgSrv.URL, userBlock)

	pageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, `<html><head><meta id="meta-preload-data" content='`+payload+`'></head><body></body></html>`)
	}))
	t.Cleanup(pageSrv.Close)

	fetcher := pixiv.NewFetcher(pageSrv.URL, 100, time.Second)

	builder, err := NewBuilder(fetcher, relayBase)
	require.NoError(t, err)

	return builder
}

func TestBuildFullQuality(t *testing.T) {
	builder := pipeline(t, 500000, 0, true)

	doc, err := builder.Build(context.Background(), "12345")
	require.NoError(t, err)

	require.Equal(t, AccentColor, doc.Color)
	require.Equal(t, "Evening Sketch", doc.Title)
	require.Equal(t, "a quick one\nenjoy", doc.Description)
	require.Contains(t, doc.URL, "/artworks/12345")
	require.Equal(t, 2021, doc.Timestamp.Year())

	// The original passed the probe, so it is embedded, rewritten onto
	// the relay with only the origin path kept.
	require.Equal(t, relayBase+"/img-original/img/12345_p0.png", doc.ImageURL)

	require.Len(t, doc.Fields, 3)
	require.Equal(t, Field{Name: "Views", Value: "1,234,567", Inline: true}, doc.Fields[0])
	require.Equal(t, Field{Name: "Bookmarks", Value: "4,321", Inline: true}, doc.Fields[1])
	require.Equal(t, Field{Name: "Likes", Value: "999", Inline: true}, doc.Fields[2])

	require.NotNil(t, doc.Author)
	require.Equal(t, "somebody", doc.Author.Name)
	require.Contains(t, doc.Author.URL, "/users/99")
	require.Equal(t, relayBase+"/user-profile/img/99.png", doc.Author.IconURL)
}

func TestBuildDowngradedQuality(t *testing.T) {
	builder := pipeline(t, 12000000, 0, false)

	doc, err := builder.Build(context.Background(), "12345")
	require.NoError(t, err)

	require.Equal(t, relayBase+"/img-master/img/12345_p0_master1200.jpg", doc.ImageURL)

	require.Len(t, doc.Fields, 4)
	quality := doc.Fields[3]
	require.Equal(t, "Image Quality", quality.Name)
	require.False(t, quality.Inline)
	require.Contains(t, quality.Value, "Using regular due to size")
	require.Contains(t, quality.Value, relayBase+"/img-original/img/12345_p0.png")
}

func TestBuildRejectsMatureContent(t *testing.T) {
	builder := pipeline(t, 500000, 1, true)

	_, err := builder.Build(context.Background(), "12345")
	require.ErrorIs(t, err, apperrors.ErrMatureContent)
}

func TestBuildOmitsAuthorWhenUnresolved(t *testing.T) {
	builder := pipeline(t, 500000, 0, false)

	doc, err := builder.Build(context.Background(), "12345")
	require.NoError(t, err)
	require.Nil(t, doc.Author)
}

func TestProxied(t *testing.T) {
	builder, err := NewBuilder(pixiv.NewFetcher("", 1, time.Second), relayBase)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "origin url keeps path only",
			in:   "https://i.pximg.net/img-original/img/2021/06/01/12345_p0.png",
			want: relayBase + "/img-original/img/2021/06/01/12345_p0.png",
		},
		{
			name: "empty stays empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, builder.Proxied(tt.in))
		})
	}
}
