package check

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Run represents one pass over the inventory. It is an aggregate root tracking
// how many targets were probed, skipped and how many cell writes failed.
type Run struct {
	id            string
	inventoryPage string
	resultPage    string
	startedAt     time.Time
	completedAt   time.Time
	status        RunStatus
	stats         Stats
	failure       string
}

// RunStatus represents the status of a run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// Stats counts run progress.
type Stats struct {
	TotalTargets  int
	Checked       int
	Skipped       int
	WriteFailures int
}

// NewRun creates a pending run for the given pages.
func NewRun(inventoryPage, resultPage string) (*Run, error) {
	if inventoryPage == "" {
		return nil, errors.New("inventory page cannot be empty")
	}
	if resultPage == "" {
		return nil, errors.New("result page cannot be empty")
	}

	return &Run{
		id:            uuid.NewString(),
		inventoryPage: inventoryPage,
		resultPage:    resultPage,
		status:        RunStatusPending,
	}, nil
}

// Reconstruct creates a run from persisted data
func Reconstruct(id, inventoryPage, resultPage string, startedAt, completedAt time.Time,
	status RunStatus, stats Stats, failure string) *Run {
	return &Run{
		id:            id,
		inventoryPage: inventoryPage,
		resultPage:    resultPage,
		startedAt:     startedAt,
		completedAt:   completedAt,
		status:        status,
		stats:         stats,
		failure:       failure,
	}
}

// Business methods

// Start marks the run as running
func (r *Run) Start(totalTargets int) error {
	if r.status != RunStatusPending {
		return errors.New("run can only be started from pending status")
	}
	r.status = RunStatusRunning
	r.startedAt = time.Now()
	r.stats.TotalTargets = totalTargets
	return nil
}

// RecordChecked counts a probed target and the cell writes that failed for it.
func (r *Run) RecordChecked(writeFailures int) {
	r.stats.Checked++
	r.stats.WriteFailures += writeFailures
}

// RecordSkipped counts a row without a target.
func (r *Run) RecordSkipped() {
	r.stats.Skipped++
}

// Complete marks the run as completed
func (r *Run) Complete() error {
	if r.status != RunStatusRunning {
		return errors.New("run can only be completed from running status")
	}
	r.status = RunStatusCompleted
	r.completedAt = time.Now()
	return nil
}

// Cancel marks a running run as stopped before reaching the last target.
func (r *Run) Cancel() error {
	if r.status != RunStatusRunning {
		return errors.New("run can only be cancelled from running status")
	}
	r.status = RunStatusCancelled
	r.completedAt = time.Now()
	return nil
}

// Fail marks the run as failed
func (r *Run) Fail(reason string) error {
	if r.status == RunStatusCompleted {
		return errors.New("cannot fail a completed run")
	}
	r.status = RunStatusFailed
	r.failure = reason
	r.completedAt = time.Now()
	return nil
}

// Getters

func (r *Run) ID() string {
	return r.id
}

func (r *Run) InventoryPage() string {
	return r.inventoryPage
}

func (r *Run) ResultPage() string {
	return r.resultPage
}

func (r *Run) StartedAt() time.Time {
	return r.startedAt
}

func (r *Run) CompletedAt() time.Time {
	return r.completedAt
}

func (r *Run) Status() RunStatus {
	return r.status
}

func (r *Run) Stats() Stats {
	return r.stats
}

func (r *Run) Failure() string {
	return r.failure
}

// Duration returns the wall time of a finished run.
func (r *Run) Duration() time.Duration {
	if r.completedAt.IsZero() || r.startedAt.IsZero() {
		return 0
	}
	return r.completedAt.Sub(r.startedAt)
}
