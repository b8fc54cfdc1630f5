package workbook

import (
	"errors"
	"reflect"
	"testing"

	sharedErrors "github.com/khanhnv2901/assetwatch/internal/shared/errors"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
		kind Kind
	}{
		{in: "text", want: "text", kind: KindText},
		{in: 200, want: "200", kind: KindInt},
		{in: int64(-3), want: "-3", kind: KindInt},
		{in: 1.5, want: "1.5", kind: KindFloat},
	}
	for _, tt := range tests {
		got, kind, err := FormatValue(tt.in)
		if err != nil || got != tt.want || kind != tt.kind {
			t.Fatalf("FormatValue(%v) = %q,%q,%v", tt.in, got, kind, err)
		}
	}

	if _, _, err := FormatValue(struct{}{}); !errors.Is(err, sharedErrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateCell(t *testing.T) {
	if err := ValidateCell(1, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateCell(0, 1); !errors.Is(err, sharedErrors.ErrInvalidCell) {
		t.Fatalf("expected ErrInvalidCell, got %v", err)
	}
}

func TestTrimTrailingEmptyAndColumnIndex(t *testing.T) {
	row := TrimTrailingEmpty([]string{"URL", "", "IP", "", ""})
	if !reflect.DeepEqual(row, []string{"URL", "", "IP"}) {
		t.Fatalf("TrimTrailingEmpty = %v", row)
	}
	if ColumnIndex(row, "IP") != 3 || ColumnIndex(row, "missing") != 0 {
		t.Fatal("ColumnIndex mismatch")
	}
}
