package check

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/khanhnv2901/assetwatch/internal/checker"
	"github.com/khanhnv2901/assetwatch/internal/domain/check"
	"github.com/khanhnv2901/assetwatch/internal/domain/workbook"
	"github.com/khanhnv2901/assetwatch/internal/logging"
	"github.com/khanhnv2901/assetwatch/internal/sink"
	consts "github.com/khanhnv2901/assetwatch/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/assetwatch/internal/shared/errors"
)

// ConfigurationError reports a missing page or column detected before any probing.
type ConfigurationError struct {
	Page   string
	Column string
	Err    error
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("required column %q not found in page %q", e.Column, e.Page)
	case e.Page != "":
		return fmt.Sprintf("page %q: %v", e.Page, e.Err)
	}
	return e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ProgressFunc is called before a target is probed and after its last write.
// done is false on the first call and true on the second.
type ProgressFunc func(row, total int, target string, done bool)

// Dependencies are the collaborators of an Orchestrator. Checkers may be nil
// when their fields are not configured.
type Dependencies struct {
	Workbook workbook.Repository
	Runs     check.Repository
	Resolver checker.HostResolver
	Certs    checker.CertChecker
	Tracer   checker.Tracer
	Fetcher  checker.Fetcher
	Logger   *zap.Logger
	Progress ProgressFunc
}

// Settings select the pages, fields and pacing of a run.
type Settings struct {
	InventoryPage  string
	ResultPage     string
	Mapping        check.FieldMapping
	Backup         bool
	Location       *time.Location
	TargetInterval time.Duration
	Sink           sink.Options
	Now            func() time.Time
}

// Orchestrator prepares the result page and probes every target in it.
type Orchestrator struct {
	deps     Dependencies
	settings Settings
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewOrchestrator creates a new check orchestrator
func NewOrchestrator(deps Dependencies, settings Settings) (*Orchestrator, error) {
	if deps.Workbook == nil {
		return nil, fmt.Errorf("%w: workbook", sharedErrors.ErrMissingRequired)
	}
	if settings.InventoryPage == "" {
		return nil, &ConfigurationError{Err: fmt.Errorf("%w: inventory page", sharedErrors.ErrMissingRequired)}
	}
	if settings.ResultPage == "" {
		return nil, &ConfigurationError{Err: fmt.Errorf("%w: result page", sharedErrors.ErrMissingRequired)}
	}
	m := settings.Mapping
	switch {
	case m.Enabled(check.FieldIP) && deps.Resolver == nil:
		return nil, fmt.Errorf("%w: resolver", sharedErrors.ErrMissingRequired)
	case m.Enabled(check.FieldCertStatus) && deps.Certs == nil:
		return nil, fmt.Errorf("%w: certificate checker", sharedErrors.ErrMissingRequired)
	case m.Enabled(check.FieldWebHeader) && deps.Tracer == nil:
		return nil, fmt.Errorf("%w: redirect tracer", sharedErrors.ErrMissingRequired)
	case m.NeedsFetch() && deps.Fetcher == nil:
		return nil, fmt.Errorf("%w: content fetcher", sharedErrors.ErrMissingRequired)
	}
	if settings.Location == nil {
		settings.Location = time.Local
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}

	return &Orchestrator{
		deps:     deps,
		settings: settings,
		limiter:  checker.NewLimiter(settings.TargetInterval),
		logger:   logging.OrNop(deps.Logger),
	}, nil
}

// Prepare backs up and creates the result page as needed, makes sure every
// configured header exists and returns the resolved columns together with
// the targets read from the URL column.
func (o *Orchestrator) Prepare(ctx context.Context) (check.Columns, []string, error) {
	wb := o.deps.Workbook
	inventory := o.settings.InventoryPage
	result := o.settings.ResultPage

	ok, err := wb.HasPage(ctx, inventory)
	if err != nil {
		return check.Columns{}, nil, fmt.Errorf("failed to look up inventory page: %w", err)
	}
	if !ok {
		return check.Columns{}, nil, &ConfigurationError{Page: inventory, Err: sharedErrors.ErrPageNotFound}
	}

	hasResult, err := wb.HasPage(ctx, result)
	if err != nil {
		return check.Columns{}, nil, fmt.Errorf("failed to look up result page: %w", err)
	}

	if o.settings.Backup && hasResult {
		if err := o.backup(ctx); err != nil {
			return check.Columns{}, nil, err
		}
	}

	if !hasResult {
		if err := wb.DuplicatePage(ctx, inventory, result); err != nil {
			return check.Columns{}, nil, fmt.Errorf("failed to create result page: %w", err)
		}
		o.logger.Info("result_page_created", zap.String("page", result), zap.String("source", inventory))
	}

	header, err := wb.Header(ctx, result)
	if err != nil {
		return check.Columns{}, nil, fmt.Errorf("failed to read result header: %w", err)
	}

	mapping := o.settings.Mapping
	if workbook.ColumnIndex(header, mapping.URLColumn()) == 0 {
		return check.Columns{}, nil, &ConfigurationError{
			Page:   result,
			Column: mapping.URLColumn(),
			Err:    sharedErrors.ErrColumnNotFound,
		}
	}

	for _, name := range check.MissingHeaders(mapping, header) {
		col := len(header) + 1
		if err := wb.UpdateCell(ctx, result, consts.HeaderRow, col, name); err != nil {
			return check.Columns{}, nil, fmt.Errorf("failed to add column %q: %w", name, err)
		}
		header = append(header, name)
		o.logger.Info("result_column_added", zap.String("page", result), zap.String("column", name), zap.Int("col", col))
	}

	cols, err := check.ResolveColumns(mapping, header)
	if err != nil {
		return check.Columns{}, nil, &ConfigurationError{Page: result, Err: err}
	}

	targets, err := wb.ColumnValues(ctx, result, cols.URL)
	if err != nil {
		return check.Columns{}, nil, fmt.Errorf("failed to read targets: %w", err)
	}
	return cols, targets, nil
}

// BackupTitle returns the title yesterday's copy of page is stored under.
func BackupTitle(page string, now time.Time, loc *time.Location) string {
	return page + now.In(loc).AddDate(0, 0, -1).Format(consts.BackupSuffixLayout)
}

func (o *Orchestrator) backup(ctx context.Context) error {
	title := BackupTitle(o.settings.ResultPage, o.settings.Now(), o.settings.Location)
	exists, err := o.deps.Workbook.HasPage(ctx, title)
	if err != nil {
		return fmt.Errorf("failed to look up backup page: %w", err)
	}
	if exists {
		o.logger.Debug("backup_exists", zap.String("page", title))
		return nil
	}
	if err := o.deps.Workbook.DuplicatePage(ctx, o.settings.ResultPage, title); err != nil {
		return fmt.Errorf("failed to back up result page: %w", err)
	}
	o.logger.Info("result_page_backed_up", zap.String("page", o.settings.ResultPage), zap.String("backup", title))
	return nil
}

// Run probes every non-blank target and writes the configured fields. Row n
// of the result page holds targets[n-2]. Probe failures are recorded as cell
// text; only a cancelled context ends the run early, after the target in
// progress has been written.
func (o *Orchestrator) Run(ctx context.Context, targets []string, cols check.Columns) (*check.Run, error) {
	run, err := check.NewRun(o.settings.InventoryPage, o.settings.ResultPage)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	if err := run.Start(len(targets)); err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	o.save(ctx, run)

	opts := o.settings.Sink
	opts.RunID = run.ID()
	if opts.Logger == nil {
		opts.Logger = o.logger
	}
	out := sink.New(o.deps.Workbook, o.settings.ResultPage, opts)

	o.logger.Info("run_started", zap.String("run_id", run.ID()), zap.Int("targets", len(targets)))

	stopped := false
	for i, target := range targets {
		row := i + consts.FirstDataRow
		if strings.TrimSpace(target) == "" {
			run.RecordSkipped()
			continue
		}
		if err := o.limiter.Wait(ctx); err != nil {
			stopped = true
			break
		}

		// A target that has started is probed and written in full even if
		// ctx is cancelled meanwhile; the loop stops before the next one.
		current := context.WithoutCancel(ctx)
		o.progress(row, len(targets), target, false)
		res := o.probe(current, row, target, cols)
		failures := o.write(current, out, res, cols)
		run.RecordChecked(failures)
		o.progress(row, len(targets), target, true)

		o.logger.Info("target_checked",
			zap.String("run_id", run.ID()),
			zap.Int("row", row),
			zap.String("target", target),
			zap.Int("write_failures", failures))

		if ctx.Err() != nil {
			stopped = true
			break
		}
	}

	if stopped {
		_ = run.Cancel()
		o.logger.Warn("run_cancelled", zap.String("run_id", run.ID()), zap.Int("checked", run.Stats().Checked))
	} else {
		_ = run.Complete()
		o.logger.Info("run_completed",
			zap.String("run_id", run.ID()),
			zap.Int("checked", run.Stats().Checked),
			zap.Int("skipped", run.Stats().Skipped),
			zap.Int("write_failures", run.Stats().WriteFailures),
			zap.Duration("duration", run.Duration()))
	}
	o.save(context.WithoutCancel(ctx), run)
	return run, nil
}

// probe runs each configured check for one target. Checks never fail; their
// diagnostics become the recorded values.
func (o *Orchestrator) probe(ctx context.Context, row int, target string, cols check.Columns) *check.Result {
	host := checker.Host(target)
	res := check.NewResult(row, target, host)

	if cols.Has(check.FieldIP) {
		res.Set(check.FieldIP, o.deps.Resolver.Resolve(ctx, host))
	}
	if cols.Has(check.FieldCertStatus) {
		res.Set(check.FieldCertStatus, o.deps.Certs.Validate(ctx, host))
	}
	if cols.Has(check.FieldWebHeader) {
		res.Set(check.FieldWebHeader, o.deps.Tracer.Trace(ctx, target))
	}
	if cols.Has(check.FieldWebStatus) || cols.Has(check.FieldWebContent) || cols.Has(check.FieldWebContentSize) {
		resp := o.deps.Fetcher.Fetch(ctx, target)
		if resp.Truncated {
			o.logger.Warn("content_truncated",
				zap.Int("row", row),
				zap.String("target", target),
				zap.Int("content_length", resp.ContentLength))
		}
		res.Set(check.FieldWebStatus, resp.Code)
		res.Set(check.FieldWebContent, resp.Content)
		res.Set(check.FieldWebContentSize, resp.ContentLength)
	}
	if cols.Has(check.FieldUpdateAt) {
		res.Set(check.FieldUpdateAt, o.settings.Now().In(o.settings.Location).Format(consts.CompletionDateLayout))
	}
	return res
}

// write stores every produced field that has a column and returns the
// number of cells that could not be stored.
func (o *Orchestrator) write(ctx context.Context, out *sink.Sink, res *check.Result, cols check.Columns) int {
	failures := 0
	for _, f := range res.Fields() {
		col, ok := cols.Column(f)
		if !ok {
			continue
		}
		value, _ := res.Value(f)
		cell := sink.Cell{Row: res.Row(), Col: col, Field: string(f), Target: res.Target()}
		if err := out.WriteCell(ctx, cell, value); err != nil {
			failures++
			var werr *sink.WriteError
			if errors.As(err, &werr) {
				o.logger.Error("cell_write_failed",
					zap.Int("row", werr.Row),
					zap.Int("col", werr.Col),
					zap.String("field", string(f)),
					zap.Int("attempts", werr.Attempts),
					zap.Error(werr.Err))
			} else {
				o.logger.Error("cell_write_failed", zap.String("field", string(f)), zap.Error(err))
			}
		}
	}
	return failures
}

func (o *Orchestrator) progress(row, total int, target string, done bool) {
	if o.deps.Progress != nil {
		o.deps.Progress(row, total, target, done)
	}
}

func (o *Orchestrator) save(ctx context.Context, run *check.Run) {
	if o.deps.Runs == nil {
		return
	}
	if err := o.deps.Runs.Save(ctx, run); err != nil {
		o.logger.Warn("run_save_failed", zap.String("run_id", run.ID()), zap.Error(err))
	}
}

// History returns the most recent runs, newest first.
func (o *Orchestrator) History(ctx context.Context, limit int) ([]*check.Run, error) {
	if o.deps.Runs == nil {
		return nil, nil
	}
	runs, err := o.deps.Runs.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	return runs, nil
}
