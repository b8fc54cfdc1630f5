package check

import "context"

// Repository defines the interface for run history persistence
type Repository interface {
	// Save persists a run, replacing an earlier record with the same ID
	Save(ctx context.Context, run *Run) error

	// FindByID retrieves a run by its ID
	FindByID(ctx context.Context, id string) (*Run, error)

	// FindRecent retrieves at most limit runs, newest first. A non-positive limit returns all runs.
	FindRecent(ctx context.Context, limit int) ([]*Run, error)
}
