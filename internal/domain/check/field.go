package check

import (
	"fmt"
	"strings"

	consts "github.com/khanhnv2901/assetwatch/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/assetwatch/internal/shared/errors"
)

// Field identifies one value recorded per target.
type Field string

const (
	FieldIP             Field = "ip"
	FieldCertStatus     Field = "cert_status"
	FieldWebStatus      Field = "web_status"
	FieldWebHeader      Field = "web_header"
	FieldWebContent     Field = "web_content"
	FieldWebContentSize Field = "web_content_size"
	FieldUpdateAt       Field = "update_at"
)

// Fields lists every result field in the order results are written.
var Fields = []Field{
	FieldIP,
	FieldCertStatus,
	FieldWebHeader,
	FieldWebStatus,
	FieldWebContent,
	FieldWebContentSize,
	FieldUpdateAt,
}

// FieldMapping maps logical fields to output column headers.
// A header equal to "NA" switches the corresponding check off.
type FieldMapping struct {
	url     string
	headers map[Field]string
}

// NewFieldMapping builds a mapping. Fields missing from headers are treated as "NA".
func NewFieldMapping(urlColumn string, headers map[Field]string) (FieldMapping, error) {
	urlColumn = strings.TrimSpace(urlColumn)
	if urlColumn == "" || urlColumn == consts.NotApplicable {
		return FieldMapping{}, fmt.Errorf("%w: url column", sharedErrors.ErrMissingRequired)
	}

	m := FieldMapping{url: urlColumn, headers: make(map[Field]string, len(Fields))}
	seen := map[string]Field{}
	for _, f := range Fields {
		h := strings.TrimSpace(headers[f])
		if h == "" {
			h = consts.NotApplicable
		}
		if h != consts.NotApplicable {
			if h == urlColumn {
				return FieldMapping{}, fmt.Errorf("%w: field %s reuses the url column %q", sharedErrors.ErrInvalidConfig, f, h)
			}
			if other, dup := seen[h]; dup {
				return FieldMapping{}, fmt.Errorf("%w: fields %s and %s share column %q", sharedErrors.ErrInvalidConfig, other, f, h)
			}
			seen[h] = f
		}
		m.headers[f] = h
	}
	return m, nil
}

// URLColumn returns the header of the target column.
func (m FieldMapping) URLColumn() string {
	return m.url
}

// Header returns the column header configured for f, or "NA".
func (m FieldMapping) Header(f Field) string {
	if h, ok := m.headers[f]; ok {
		return h
	}
	return consts.NotApplicable
}

// Enabled reports whether the check producing f should run.
func (m FieldMapping) Enabled(f Field) bool {
	return m.Header(f) != consts.NotApplicable
}

// EnabledFields returns the configured fields in write order.
func (m FieldMapping) EnabledFields() []Field {
	out := make([]Field, 0, len(Fields))
	for _, f := range Fields {
		if m.Enabled(f) {
			out = append(out, f)
		}
	}
	return out
}

// NeedsFetch reports whether any field produced by the content fetch is configured.
func (m FieldMapping) NeedsFetch() bool {
	return m.Enabled(FieldWebStatus) || m.Enabled(FieldWebContent) || m.Enabled(FieldWebContentSize)
}
