package cmd

import (
	"errors"
	"fmt"

	checkapp "github.com/khanhnv2901/assetwatch/internal/application/check"
	sharedErrors "github.com/khanhnv2901/assetwatch/internal/shared/errors"
)

// CSVError reports a malformed CSV input file.
type CSVError struct {
	Path string
	Line int
	Err  error
}

func (e *CSVError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("csv %s line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("csv %s: %v", e.Path, e.Err)
}

func (e *CSVError) Unwrap() error {
	return e.Err
}

// RunCancelledError signals that the run stopped before every target was checked.
type RunCancelledError struct {
	RunID   string
	Checked int
	Total   int
}

func (e *RunCancelledError) Error() string {
	return fmt.Sprintf("run %s cancelled after %d of %d targets", e.RunID, e.Checked, e.Total)
}

// describeError turns configuration failures into a hint the operator can act on.
func describeError(err error) string {
	var cfgErr *checkapp.ConfigurationError
	switch {
	case errors.As(err, &cfgErr) && cfgErr.Column != "":
		return fmt.Sprintf("%v; add the column or set fields.url", err)
	case errors.As(err, &cfgErr) && errors.Is(err, sharedErrors.ErrPageNotFound):
		return fmt.Sprintf("%v; import it with `assetwatch import --page %s file.csv`", err, cfgErr.Page)
	case errors.Is(err, sharedErrors.ErrMissingRequired), errors.Is(err, sharedErrors.ErrInvalidConfig):
		return fmt.Sprintf("configuration error: %v", err)
	}
	return err.Error()
}
