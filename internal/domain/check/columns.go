package check

import (
	"fmt"

	sharedErrors "github.com/khanhnv2901/assetwatch/internal/shared/errors"
)

// Columns holds the 1-based result page column of the target URL and of every
// enabled field. It is resolved once per run from a header row.
type Columns struct {
	URL     int
	byField map[Field]int
}

// ResolveColumns locates the mapping's headers in header. Every enabled field
// must be present; the URL column is required.
func ResolveColumns(mapping FieldMapping, header []string) (Columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i + 1
		}
	}

	urlCol, ok := index[mapping.URLColumn()]
	if !ok {
		return Columns{}, fmt.Errorf("%w: %q", sharedErrors.ErrColumnNotFound, mapping.URLColumn())
	}

	cols := Columns{URL: urlCol, byField: make(map[Field]int)}
	for _, f := range mapping.EnabledFields() {
		col, ok := index[mapping.Header(f)]
		if !ok {
			return Columns{}, fmt.Errorf("%w: %q", sharedErrors.ErrColumnNotFound, mapping.Header(f))
		}
		cols.byField[f] = col
	}
	return cols, nil
}

// Column returns the column of f and whether f is enabled.
func (c Columns) Column(f Field) (int, bool) {
	col, ok := c.byField[f]
	return col, ok
}

// Has reports whether f has a column.
func (c Columns) Has(f Field) bool {
	_, ok := c.byField[f]
	return ok
}

// MissingHeaders returns the enabled headers absent from header, in write order.
func MissingHeaders(mapping FieldMapping, header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}
	var missing []string
	for _, f := range mapping.EnabledFields() {
		h := mapping.Header(f)
		if _, ok := present[h]; !ok {
			missing = append(missing, h)
			present[h] = struct{}{}
		}
	}
	return missing
}
