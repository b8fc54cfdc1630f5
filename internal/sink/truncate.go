package sink

import (
	"fmt"
	"unicode/utf8"

	consts "github.com/khanhnv2901/assetwatch/internal/shared/constants"
)

// cutLength is the number of characters kept when a value is truncated for a
// cell holding at most limit characters.
func cutLength(limit int) int {
	return limit - 10
}

// Truncate shortens text of at least limit-10 characters to limit-10
// characters followed by "...(more)". Lengths count characters, not bytes.
func Truncate(text string, limit int) (string, bool) {
	cut := cutLength(limit)
	if cut <= 0 || utf8.RuneCountInString(text) < cut {
		return text, false
	}
	n := 0
	for i := range text {
		if n == cut {
			return text[:i] + consts.TruncationMarker, true
		}
		n++
	}
	return text + consts.TruncationMarker, true
}

// prepareValue passes integers and floats through and truncates everything else as text.
func prepareValue(value any, limit int) (any, bool) {
	switch v := value.(type) {
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return v, false
	case string:
		return Truncate(v, limit)
	case fmt.Stringer:
		return Truncate(v.String(), limit)
	case nil:
		return "", false
	default:
		return Truncate(fmt.Sprint(v), limit)
	}
}
