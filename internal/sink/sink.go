// Package sink writes probe results into the result page one cell at a time.
// Writes are paced by a token bucket, text is capped to the cell size and a
// failed write is retried a bounded number of times with the error text in
// place of the value.
package sink

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/khanhnv2901/assetwatch/internal/checker"
	"github.com/khanhnv2901/assetwatch/internal/logging"
	consts "github.com/khanhnv2901/assetwatch/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/assetwatch/internal/shared/errors"
)

const defaultMaxAttempts = 3

// CellWriter stores a single value. workbook.Repository satisfies it.
type CellWriter interface {
	UpdateCell(ctx context.Context, page string, row, col int, value any) error
}

// Mirror receives every successfully written cell.
type Mirror interface {
	Publish(ctx context.Context, event CellEvent) error
}

// CellEvent describes one stored cell.
type CellEvent struct {
	RunID     string    `json:"run_id"`
	Page      string    `json:"page"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Field     string    `json:"field,omitempty"`
	Target    string    `json:"target,omitempty"`
	Value     any       `json:"value"`
	Truncated bool      `json:"truncated"`
	Attempts  int       `json:"attempts"`
	WrittenAt time.Time `json:"written_at"`
}

// Cell addresses a write. Field and Target are informational.
type Cell struct {
	Row    int
	Col    int
	Field  string
	Target string
}

// WriteError is returned once every attempt to store a cell has failed.
type WriteError struct {
	Page     string
	Row      int
	Col      int
	Attempts int
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s row %d col %d failed after %d attempt(s): %v", e.Page, e.Row, e.Col, e.Attempts, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{sharedErrors.ErrSinkWrite, e.Err}
}

// Options tune a Sink. Zero values select the defaults.
type Options struct {
	CellCharLimit int
	MaxAttempts   int
	WriteInterval time.Duration
	RunID         string
	Mirror        Mirror
	Logger        *zap.Logger
	Now           func() time.Time
}

// Sink writes cells of one page.
type Sink struct {
	writer      CellWriter
	page        string
	limiter     *rate.Limiter
	cellLimit   int
	maxAttempts int
	runID       string
	mirror      Mirror
	logger      *zap.Logger
	now         func() time.Time
}

// New creates a sink writing to page through writer.
func New(writer CellWriter, page string, opts Options) *Sink {
	if opts.CellCharLimit <= 0 {
		opts.CellCharLimit = consts.DefaultCellCharLimit
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Sink{
		writer:      writer,
		page:        page,
		limiter:     checker.NewLimiter(opts.WriteInterval),
		cellLimit:   opts.CellCharLimit,
		maxAttempts: opts.MaxAttempts,
		runID:       opts.RunID,
		mirror:      opts.Mirror,
		logger:      logging.OrNop(opts.Logger),
		now:         opts.Now,
	}
}

// Page returns the page this sink writes to.
func (s *Sink) Page() string {
	return s.page
}

// Write stores value at (row, col).
func (s *Sink) Write(ctx context.Context, row, col int, value any) error {
	return s.WriteCell(ctx, Cell{Row: row, Col: col}, value)
}

// WriteCell stores value in cell. The first attempt writes the value itself;
// later attempts write "Error: <detail>" describing the previous failure. A
// *WriteError is returned when every attempt fails or ctx ends while waiting.
func (s *Sink) WriteCell(ctx context.Context, cell Cell, value any) error {
	current, truncated := prepareValue(value, s.cellLimit)
	if truncated {
		s.logger.Debug("sink_value_truncated",
			zap.String("page", s.page), zap.Int("row", cell.Row), zap.Int("col", cell.Col))
	}

	var lastErr error
	attempts := 0
	for attempts < s.maxAttempts {
		if err := s.limiter.Wait(ctx); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}
		attempts++

		err := s.writer.UpdateCell(ctx, s.page, cell.Row, cell.Col, current)
		if err == nil {
			if lastErr != nil {
				s.logger.Warn("sink_value_replaced_by_error",
					zap.String("page", s.page), zap.Int("row", cell.Row), zap.Int("col", cell.Col),
					zap.Int("attempts", attempts), zap.Error(lastErr))
			}
			s.publish(ctx, cell, current, truncated, attempts)
			return nil
		}

		lastErr = err
		s.logger.Warn("sink_write_failed",
			zap.String("page", s.page), zap.Int("row", cell.Row), zap.Int("col", cell.Col),
			zap.Int("attempt", attempts), zap.Error(err))
		current, truncated = Truncate(fmt.Sprintf("Error: %v", err), s.cellLimit)
	}

	return &WriteError{Page: s.page, Row: cell.Row, Col: cell.Col, Attempts: attempts, Err: lastErr}
}

func (s *Sink) publish(ctx context.Context, cell Cell, value any, truncated bool, attempts int) {
	if s.mirror == nil {
		return
	}
	event := CellEvent{
		RunID:     s.runID,
		Page:      s.page,
		Row:       cell.Row,
		Col:       cell.Col,
		Field:     cell.Field,
		Target:    cell.Target,
		Value:     value,
		Truncated: truncated,
		Attempts:  attempts,
		WrittenAt: s.now().UTC(),
	}
	if err := s.mirror.Publish(ctx, event); err != nil {
		s.logger.Warn("sink_mirror_failed",
			zap.String("page", s.page), zap.Int("row", cell.Row), zap.Int("col", cell.Col), zap.Error(err))
	}
}
