package workbook

import (
	"fmt"
	"strconv"

	sharedErrors "github.com/khanhnv2901/assetwatch/internal/shared/errors"
)

// Kind records how a stored value was written.
type Kind string

const (
	KindText  Kind = "text"
	KindInt   Kind = "int"
	KindFloat Kind = "float"
)

// FormatValue renders value as stored text.
func FormatValue(value any) (string, Kind, error) {
	switch v := value.(type) {
	case string:
		return v, KindText, nil
	case int:
		return strconv.Itoa(v), KindInt, nil
	case int32:
		return strconv.FormatInt(int64(v), 10), KindInt, nil
	case int64:
		return strconv.FormatInt(v, 10), KindInt, nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), KindInt, nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), KindInt, nil
	case uint64:
		return strconv.FormatUint(v, 10), KindInt, nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), KindFloat, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), KindFloat, nil
	}
	return "", "", fmt.Errorf("%w: unsupported cell value %T", sharedErrors.ErrInvalidInput, value)
}

// ValidateCell rejects coordinates below 1.
func ValidateCell(row, col int) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("%w: row %d col %d", sharedErrors.ErrInvalidCell, row, col)
	}
	return nil
}

// TrimTrailingEmpty drops empty cells from the end of a row.
func TrimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return row[:end]
}

// ColumnIndex returns the 1-based position of name in header, or 0.
func ColumnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i + 1
		}
	}
	return 0
}
