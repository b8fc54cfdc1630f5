// Package workbook describes the paged, tabular store holding the asset
// inventory and the probe results. Rows and columns are 1-based and row 1 is
// the header row.
package workbook

import "context"

// Repository is the contract every workbook backend satisfies.
type Repository interface {
	// ListPages returns page titles in creation order.
	ListPages(ctx context.Context) ([]string, error)

	// HasPage reports whether a page with the given title exists.
	HasPage(ctx context.Context, page string) (bool, error)

	// CreatePage adds an empty page. It fails with ErrPageAlreadyExists when taken.
	CreatePage(ctx context.Context, page string) error

	// DuplicatePage copies every cell of src into a new page dst.
	DuplicatePage(ctx context.Context, src, dst string) error

	// Header returns the header row, trailing empty cells trimmed.
	Header(ctx context.Context, page string) ([]string, error)

	// FindColumn returns the 1-based column whose header equals name, or ErrColumnNotFound.
	FindColumn(ctx context.Context, page, name string) (int, error)

	// ColumnValues returns every value of col below the header row, in row order.
	// Missing cells are returned as empty strings.
	ColumnValues(ctx context.Context, page string, col int) ([]string, error)

	// UpdateCell stores value at (row, col). Strings and integers are accepted.
	UpdateCell(ctx context.Context, page string, row, col int, value any) error

	// Rows returns the page as a dense grid, header row first.
	Rows(ctx context.Context, page string) ([][]string, error)

	// ImportRows replaces the content of page with rows, creating the page when absent.
	ImportRows(ctx context.Context, page string, rows [][]string) error

	// Close releases the backend.
	Close() error
}

// Cell addresses one value of a page.
type Cell struct {
	Page string
	Row  int
	Col  int
}
