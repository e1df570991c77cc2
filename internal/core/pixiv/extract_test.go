package pixiv

import (
	"reflect"
	"testing"
)

func TestExtractArtworkIDs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single artwork link",
			text: "look at this https://www.pixiv.net/artworks/12345",
			want: []string{"12345"},
		},
		{
			name: "no www prefix",
			text: "https://pixiv.net/artworks/987",
			want: []string{"987"},
		},
		{
			name: "locale path segment",
			text: "https://www.pixiv.net/en/artworks/555",
			want: []string{"555"},
		},
		{
			name: "http scheme",
			text: "http://pixiv.net/artworks/1",
			want: []string{"1"},
		},
		{
			name: "duplicate link counted once",
			text: "https://www.pixiv.net/artworks/42 again https://www.pixiv.net/artworks/42 and https://www.pixiv.net/artworks/7",
			want: []string{"42", "7"},
		},
		{
			name: "order of first occurrence preserved",
			text: "https://pixiv.net/artworks/3 https://pixiv.net/artworks/2 https://pixiv.net/artworks/3 https://pixiv.net/artworks/1",
			want: []string{"3", "2", "1"},
		},
		{
			name: "no links",
			text: "just words, no art here",
			want: nil,
		},
		{
			name: "unrelated url",
			text: "https://example.com/artworks/12345",
			want: nil,
		},
		{
			name: "non-numeric path ignored",
			text: "https://www.pixiv.net/artworks/abc",
			want: nil,
		},
		{
			name: "link embedded mid-sentence",
			text: "(see https://www.pixiv.net/en/artworks/31415926, it's great)",
			want: []string{"31415926"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractArtworkIDs(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractArtworkIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}
