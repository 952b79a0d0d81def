package models

import (
	"strings"
	"unicode"
)

// Slug normalises an exercise name into the key shared by the media cache,
// templates and set logs: lowercase, whitespace runs to one dash, anything outside
// [a-z0-9-] dropped.
func Slug(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(lower))
	inSpace := false
	for _, r := range lower {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
