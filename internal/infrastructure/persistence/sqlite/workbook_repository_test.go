package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	sharedErrors "github.com/khanhnv2901/assetwatch/internal/shared/errors"
)

func newTestRepo(t *testing.T) *WorkbookRepository {
	t.Helper()
	repo, err := NewWorkbookRepository(context.Background(), filepath.Join(t.TempDir(), "workbook.db"))
	if err != nil {
		t.Fatalf("NewWorkbookRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestWorkbookImportAndRead(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	data := [][]string{
		{"Name", "URL", ""},
		{"home", "https://example.com", ""},
		{"", "", ""},
		{"docs", "https://docs.example.com", "x"},
	}
	if err := repo.ImportRows(ctx, "assets", data); err != nil {
		t.Fatalf("ImportRows: %v", err)
	}

	header, err := repo.Header(ctx, "assets")
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if !reflect.DeepEqual(header, []string{"Name", "URL"}) {
		t.Fatalf("Header = %v", header)
	}

	col, err := repo.FindColumn(ctx, "assets", "URL")
	if err != nil || col != 2 {
		t.Fatalf("FindColumn = %d, %v", col, err)
	}
	if _, err := repo.FindColumn(ctx, "assets", "IP"); !errors.Is(err, sharedErrors.ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}

	values, err := repo.ColumnValues(ctx, "assets", col)
	if err != nil {
		t.Fatalf("ColumnValues: %v", err)
	}
	want := []string{"https://example.com", "", "https://docs.example.com"}
	if !reflect.DeepEqual(values, want) {
		t.Fatalf("ColumnValues = %v, want %v", values, want)
	}

	grid, err := repo.Rows(ctx, "assets")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(grid) != 4 || len(grid[0]) != 3 || grid[3][2] != "x" {
		t.Fatalf("unexpected grid: %v", grid)
	}
}

func TestWorkbookPages(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.ImportRows(ctx, "assets", [][]string{{"URL"}, {"https://a.example"}}); err != nil {
		t.Fatalf("ImportRows: %v", err)
	}
	if err := repo.DuplicatePage(ctx, "assets", "detect"); err != nil {
		t.Fatalf("DuplicatePage: %v", err)
	}
	if err := repo.DuplicatePage(ctx, "assets", "detect"); !errors.Is(err, sharedErrors.ErrPageAlreadyExists) {
		t.Fatalf("expected ErrPageAlreadyExists, got %v", err)
	}
	if err := repo.DuplicatePage(ctx, "missing", "other"); !errors.Is(err, sharedErrors.ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
	if err := repo.CreatePage(ctx, "empty"); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}

	pages, err := repo.ListPages(ctx)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if !reflect.DeepEqual(pages, []string{"assets", "detect", "empty"}) {
		t.Fatalf("ListPages = %v", pages)
	}

	ok, err := repo.HasPage(ctx, "detect")
	if err != nil || !ok {
		t.Fatalf("HasPage(detect) = %v, %v", ok, err)
	}
	values, err := repo.ColumnValues(ctx, "detect", 1)
	if err != nil || !reflect.DeepEqual(values, []string{"https://a.example"}) {
		t.Fatalf("duplicated values = %v, %v", values, err)
	}
	values, err = repo.ColumnValues(ctx, "empty", 1)
	if err != nil || len(values) != 0 {
		t.Fatalf("empty page values = %v, %v", values, err)
	}
}

func TestWorkbookUpdateCell(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.CreatePage(ctx, "detect"); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if err := repo.UpdateCell(ctx, "detect", 1, 1, "URL"); err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}
	if err := repo.UpdateCell(ctx, "detect", 1, 3, "Status"); err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}
	if err := repo.UpdateCell(ctx, "detect", 2, 3, 200); err != nil {
		t.Fatalf("UpdateCell int: %v", err)
	}
	if err := repo.UpdateCell(ctx, "detect", 2, 3, 301); err != nil {
		t.Fatalf("UpdateCell overwrite: %v", err)
	}

	header, _ := repo.Header(ctx, "detect")
	if !reflect.DeepEqual(header, []string{"URL", "", "Status"}) {
		t.Fatalf("Header = %v", header)
	}
	values, _ := repo.ColumnValues(ctx, "detect", 3)
	if !reflect.DeepEqual(values, []string{"301"}) {
		t.Fatalf("ColumnValues = %v", values)
	}

	if err := repo.UpdateCell(ctx, "detect", 0, 1, "x"); !errors.Is(err, sharedErrors.ErrInvalidCell) {
		t.Fatalf("expected ErrInvalidCell, got %v", err)
	}
	if err := repo.UpdateCell(ctx, "missing", 1, 1, "x"); !errors.Is(err, sharedErrors.ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
	if err := repo.UpdateCell(ctx, "detect", 1, 1, []int{1}); !errors.Is(err, sharedErrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWorkbookPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "workbook.db")

	repo, err := NewWorkbookRepository(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.ImportRows(ctx, "assets", [][]string{{"URL"}}); err != nil {
		t.Fatalf("ImportRows: %v", err)
	}
	repo.Close()

	reopened, err := NewWorkbookRepository(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if ok, _ := reopened.HasPage(ctx, "assets"); !ok {
		t.Fatal("expected page to survive reopen")
	}
}
