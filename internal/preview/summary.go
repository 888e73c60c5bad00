package preview

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	// MaxTextChars is how many characters of text content are kept in a summary.
	MaxTextChars = 500
	// LineBreakMarker replaces every line break in a text summary.
	LineBreakMarker = "↵ "
	// Ellipsis is appended to summaries cut by the display width.
	Ellipsis = "..."
)

var lineBreaks = strings.NewReplacer("\r\n", LineBreakMarker, "\n", LineBreakMarker)

// TextSummary decodes b as UTF-8, replacing ill-formed bytes, keeps the first
// MaxTextChars characters, trims it and makes line breaks visible.
func TextSummary(b []byte) string {
	decoded, _, _ := transform.Bytes(runes.ReplaceIllFormed(), b)
	text := firstRunes(string(decoded), MaxTextChars)
	return lineBreaks.Replace(strings.TrimSpace(text))
}

// BinarySummary describes content the sniffer recognized.
func BinarySummary(mime string, size int) string {
	return mime + " " + HumanSize(size)
}

// HumanSize formats n bytes with base-1024 units.
func HumanSize(n int) string {
	const (
		kib = 1 << 10
		mib = 1 << 20
		gib = 1 << 30
	)
	switch {
	case n < kib:
		return fmt.Sprintf("%d B", n)
	case n < mib:
		return fmt.Sprintf("%.1f KiB", float64(n)/kib)
	case n < gib:
		return fmt.Sprintf("%.1f MiB", float64(n)/mib)
	default:
		return fmt.Sprintf("%.1f GiB", float64(n)/gib)
	}
}

// Truncate caps s to limit characters, appending Ellipsis when it cut anything.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return firstRunes(s, limit) + Ellipsis
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
