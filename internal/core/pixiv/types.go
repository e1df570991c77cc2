package pixiv

import "time"

// Rendition names as they appear in the artwork metadata urls map,
// ordered from smallest to largest.
const (
	RenditionMini     = "mini"
	RenditionThumb    = "thumb"
	RenditionSmall    = "small"
	RenditionRegular  = "regular"
	RenditionOriginal = "original"
)

// Renditions maps a rendition name to its image URL on the origin CDN.
type Renditions map[string]string

// Artwork is the resolved metadata for a single uploaded piece.
type Artwork struct {
	ID            string
	Title         string
	Description   string // raw, may carry HTML
	Uploaded      time.Time
	ViewCount     int64
	BookmarkCount int64
	LikeCount     int64
	AuthorID      string
	URLs          Renditions

	// Author is nil when no matching user record was present.
	Author *Author
}

// Author is the profile of the artwork's uploader.
type Author struct {
	ID       string
	Name     string
	ImageURL string
}

// preloadData mirrors the JSON document embedded in the artwork page.
// Both maps are keyed by string ids.
type preloadData struct {
	Illust map[string]illustRecord `json:"illust"`
	User   map[string]userRecord   `json:"user"`
}

type illustRecord struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	XRestrict     int               `json:"xRestrict"`
	UserID        string            `json:"userId"`
	ViewCount     int64             `json:"viewCount"`
	BookmarkCount int64             `json:"bookmarkCount"`
	LikeCount     int64             `json:"likeCount"`
	UploadDate    string            `json:"uploadDate"`
	URLs          map[string]string `json:"urls"`
}

type userRecord struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Image  string `json:"image"`
}
