package pixiv

import "regexp"

// artworkURLRegex matches artwork page URLs with an optional "www."
// prefix and an optional locale path segment. The captured digits are
// the artwork id.
var artworkURLRegex = regexp.MustCompile(`https?://(?:www\.)?pixiv\.net/(?:en/)?artworks/(\d+)`)

// ExtractArtworkIDs scans free-form text for artwork page links and
// returns the ids in order of first occurrence, deduplicated.
func ExtractArtworkIDs(text string) []string {
	matches := artworkURLRegex.FindAllStringSubmatch(text, -1)

	var ids []string

	seen := make(map[string]bool)

	for _, match := range matches {
		id := match[1]
		if seen[id] {
			continue
		}

		seen[id] = true

		ids = append(ids, id)
	}

	return ids
}
