package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/khanhnv2901/assetwatch/internal/domain/check"
	consts "github.com/khanhnv2901/assetwatch/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/assetwatch/internal/shared/errors"
	"github.com/khanhnv2901/assetwatch/internal/shared/security"
)

// RunsFileName is the run history file created in the data directory.
const RunsFileName = "runs.json"

// runDTO is the data transfer object for JSON serialization
type runDTO struct {
	ID            string `json:"id"`
	InventoryPage string `json:"inventory_page"`
	ResultPage    string `json:"result_page"`
	StartedAt     string `json:"started_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
	Status        string `json:"status"`
	Failure       string `json:"failure,omitempty"`
	TotalTargets  int    `json:"total_targets"`
	Checked       int    `json:"checked"`
	Skipped       int    `json:"skipped"`
	WriteFailures int    `json:"write_failures"`
}

// RunRepository implements the check.Repository interface using JSON file storage
type RunRepository struct {
	filePath string
	mu       sync.RWMutex
}

var _ check.Repository = (*RunRepository)(nil)

// NewRunRepository creates a new JSON-based run history repository
func NewRunRepository(dataDir string) (*RunRepository, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}

	// Ensure the data directory exists
	if err := os.MkdirAll(dataDir, consts.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	filePath, err := security.ResolveWithin(dataDir, RunsFileName)
	if err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	repo := &RunRepository{filePath: filePath}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := repo.saveToFile([]runDTO{}); err != nil {
			return nil, fmt.Errorf("failed to initialize runs file: %w", err)
		}
	}
	return repo, nil
}

// Save persists a run, replacing an earlier record with the same ID
func (r *RunRepository) Save(ctx context.Context, run *check.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	runs, err := r.loadFromFile()
	if err != nil {
		return fmt.Errorf("failed to load runs: %w", err)
	}

	dto := toRunDTO(run)
	found := false
	for i, existing := range runs {
		if existing.ID == dto.ID {
			runs[i] = dto
			found = true
			break
		}
	}
	if !found {
		runs = append(runs, dto)
	}

	if err := r.saveToFile(runs); err != nil {
		return fmt.Errorf("failed to save runs: %w", err)
	}
	return nil
}

// FindByID retrieves a run by its ID
func (r *RunRepository) FindByID(ctx context.Context, id string) (*check.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs, err := r.loadFromFile()
	if err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}
	for _, dto := range runs {
		if dto.ID == id {
			return fromRunDTO(dto)
		}
	}
	return nil, fmt.Errorf("%w: run %s", sharedErrors.ErrRepositoryOperation, id)
}

// FindRecent retrieves at most limit runs, newest first
func (r *RunRepository) FindRecent(ctx context.Context, limit int) ([]*check.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs, err := r.loadFromFile()
	if err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}

	result := make([]*check.Run, 0, len(runs))
	for _, dto := range runs {
		run, err := fromRunDTO(dto)
		if err != nil {
			return nil, fmt.Errorf("failed to convert run %s: %w", dto.ID, err)
		}
		result = append(result, run)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartedAt().After(result[j].StartedAt())
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *RunRepository) loadFromFile() ([]runDTO, error) {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []runDTO{}, nil
		}
		return nil, err
	}

	var runs []runDTO
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("%w: %v", sharedErrors.ErrDeserializationFailed, err)
	}
	return runs, nil
}

func (r *RunRepository) saveToFile(runs []runDTO) error {
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", sharedErrors.ErrSerializationFailed, err)
	}
	return os.WriteFile(filepath.Clean(r.filePath), data, consts.DefaultFilePerm)
}

func toRunDTO(run *check.Run) runDTO {
	stats := run.Stats()
	dto := runDTO{
		ID:            run.ID(),
		InventoryPage: run.InventoryPage(),
		ResultPage:    run.ResultPage(),
		Status:        string(run.Status()),
		Failure:       run.Failure(),
		TotalTargets:  stats.TotalTargets,
		Checked:       stats.Checked,
		Skipped:       stats.Skipped,
		WriteFailures: stats.WriteFailures,
	}
	if !run.StartedAt().IsZero() {
		dto.StartedAt = run.StartedAt().Format(time.RFC3339Nano)
	}
	if !run.CompletedAt().IsZero() {
		dto.CompletedAt = run.CompletedAt().Format(time.RFC3339Nano)
	}
	return dto
}

func fromRunDTO(dto runDTO) (*check.Run, error) {
	var startedAt, completedAt time.Time
	var err error

	if dto.StartedAt != "" {
		startedAt, err = time.Parse(time.RFC3339Nano, dto.StartedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at: %w", err)
		}
	}
	if dto.CompletedAt != "" {
		completedAt, err = time.Parse(time.RFC3339Nano, dto.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse completed_at: %w", err)
		}
	}

	return check.Reconstruct(dto.ID, dto.InventoryPage, dto.ResultPage, startedAt, completedAt,
		check.RunStatus(dto.Status), check.Stats{
			TotalTargets:  dto.TotalTargets,
			Checked:       dto.Checked,
			Skipped:       dto.Skipped,
			WriteFailures: dto.WriteFailures,
		}, dto.Failure), nil
}
