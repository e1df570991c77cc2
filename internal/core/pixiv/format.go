package pixiv

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	// descriptionMaxLen is the platform-safe description length in runes,
	// including the ellipsis marker.
	descriptionMaxLen = 350

	ellipsis = " …"
)

// FormatDescription renders an artwork description for display: HTML
// entities decoded, <br> tags replaced with newlines, all other markup
// stripped, and the result truncated at a word boundary. Idempotent
// for text already within the limit.
func FormatDescription(raw string) string {
	return truncateAtWord(stripMarkup(raw), descriptionMaxLen)
}

// stripMarkup walks the description as an HTML token stream. Text
// tokens arrive entity-decoded; only line breaks survive as markup.
func stripMarkup(raw string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(raw))

	var sb strings.Builder

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(tokenizer.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "br" {
				sb.WriteByte('\n')
			}
		}
	}
}

// truncateAtWord shortens text to at most limit runes including the
// ellipsis, backing up to the preceding word boundary so no word is
// split mid-way.
func truncateAtWord(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:limit-utf8.RuneCountInString(ellipsis)])

	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}

	return strings.TrimRight(cut, " \t\n") + ellipsis
}
