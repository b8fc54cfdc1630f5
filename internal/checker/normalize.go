package checker

import (
	"strings"
	"unicode"
)

// isSpace matches Unicode white space plus the ASCII separator controls
// U+001C..U+001F, which some pages use as filler.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Normalize collapses every run of white space (CR/LF variants included) to a
// single space and trims trailing white space. Leading white space becomes one
// space. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if isSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return strings.TrimRightFunc(b.String(), isSpace)
}
