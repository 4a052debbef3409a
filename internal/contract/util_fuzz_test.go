package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateURL fuzzes TruncateURL with random URLs and widths.
func FuzzTruncateURL(f *testing.F) {
	f.Add("https://example.com/app.js", 10)
	f.Add("", 0)
	f.Add("chrome-extension://abcdef/content.js", 4)
	f.Add("Unattributable", -1)

	f.Fuzz(func(t *testing.T, url string, width int) {
		got := TruncateURL(url, width)
		if width > 3 && utf8.RuneCountInString(url) > width && utf8.RuneCountInString(got) != width {
			t.Fatalf("TruncateURL(%q, %d) = %q, want %d runes", url, width, got, width)
		}
	})
}
