package engine

import (
	"github.com/anatolykoptev/go-kit/strutil"
)

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Safe for UTF-8 (emoji in comments, CJK titles).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// preview shortens model output for log lines.
func preview(s string) string {
	return TruncateRunes(s, 200, "...")
}
