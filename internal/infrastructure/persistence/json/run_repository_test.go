package json

import (
	"context"
	"testing"
	"time"

	"github.com/khanhnv2901/assetwatch/internal/domain/check"
)

func TestRunRepositorySaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRunRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunRepository: %v", err)
	}

	older := check.Reconstruct("run-old", "assets", "detect", time.Now().Add(-time.Hour), time.Now().Add(-50*time.Minute),
		check.RunStatusCompleted, check.Stats{TotalTargets: 2, Checked: 2}, "")
	if err := repo.Save(ctx, older); err != nil {
		t.Fatalf("Save older: %v", err)
	}

	run, err := check.NewRun("assets", "detect")
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	if err := run.Start(3); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := repo.Save(ctx, run); err != nil {
		t.Fatalf("Save running: %v", err)
	}
	run.RecordChecked(1)
	if err := run.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := repo.Save(ctx, run); err != nil {
		t.Fatalf("Save completed: %v", err)
	}

	found, err := repo.FindByID(ctx, run.ID())
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Status() != check.RunStatusCompleted || found.Stats().WriteFailures != 1 {
		t.Fatalf("unexpected run: status=%s stats=%+v", found.Status(), found.Stats())
	}

	recent, err := repo.FindRecent(ctx, 0)
	if err != nil {
		t.Fatalf("FindRecent: %v", err)
	}
	if len(recent) != 2 || recent[0].ID() != run.ID() {
		t.Fatalf("expected newest run first, got %d runs", len(recent))
	}

	limited, _ := repo.FindRecent(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}

	if _, err := repo.FindByID(ctx, "missing"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}
