package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/khanhnv2901/assetwatch/internal/domain/workbook"
	consts "github.com/khanhnv2901/assetwatch/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/assetwatch/internal/shared/errors"
	"github.com/khanhnv2901/assetwatch/internal/shared/security"
)

// workbookDTO is the data transfer object for JSON serialization
type workbookDTO struct {
	Pages []pageDTO `json:"pages"`
}

type pageDTO struct {
	Title string     `json:"title"`
	Rows  [][]string `json:"rows"`
}

// WorkbookRepository implements the workbook.Repository interface using a single JSON file
type WorkbookRepository struct {
	filePath string
	mu       sync.RWMutex
}

var _ workbook.Repository = (*WorkbookRepository)(nil)

// NewWorkbookRepository creates a new JSON-based workbook stored at filePath
func NewWorkbookRepository(filePath string) (*WorkbookRepository, error) {
	if filePath == "" {
		return nil, fmt.Errorf("workbook path cannot be empty")
	}
	if !security.IsValidPath(filePath) {
		return nil, fmt.Errorf("invalid file path: %s", filePath)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), consts.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &WorkbookRepository{filePath: filePath}

	// Initialize the file if it doesn't exist
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := repo.saveToFile(workbookDTO{Pages: []pageDTO{}}); err != nil {
			return nil, fmt.Errorf("failed to initialize workbook file: %w", err)
		}
	}
	return repo, nil
}

// Close is a no-op; every operation reads and writes the file.
func (r *WorkbookRepository) Close() error { return nil }

// ListPages returns page titles in creation order
func (r *WorkbookRepository) ListPages(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.loadFromFile()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		titles = append(titles, p.Title)
	}
	return titles, nil
}

// HasPage reports whether a page exists
func (r *WorkbookRepository) HasPage(ctx context.Context, page string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.loadFromFile()
	if err != nil {
		return false, err
	}
	return doc.find(page) >= 0, nil
}

// CreatePage adds an empty page
func (r *WorkbookRepository) CreatePage(ctx context.Context, page string) error {
	if page == "" {
		return fmt.Errorf("%w: page title", sharedErrors.ErrMissingRequired)
	}
	return r.update(func(doc *workbookDTO) error {
		if doc.find(page) >= 0 {
			return fmt.Errorf("%w: %q", sharedErrors.ErrPageAlreadyExists, page)
		}
		doc.Pages = append(doc.Pages, pageDTO{Title: page, Rows: [][]string{}})
		return nil
	})
}

// DuplicatePage copies src into the new page dst
func (r *WorkbookRepository) DuplicatePage(ctx context.Context, src, dst string) error {
	if dst == "" {
		return fmt.Errorf("%w: page title", sharedErrors.ErrMissingRequired)
	}
	return r.update(func(doc *workbookDTO) error {
		i := doc.find(src)
		if i < 0 {
			return fmt.Errorf("%w: %q", sharedErrors.ErrPageNotFound, src)
		}
		if doc.find(dst) >= 0 {
			return fmt.Errorf("%w: %q", sharedErrors.ErrPageAlreadyExists, dst)
		}
		rows := make([][]string, len(doc.Pages[i].Rows))
		for j, row := range doc.Pages[i].Rows {
			rows[j] = append([]string(nil), row...)
		}
		doc.Pages = append(doc.Pages, pageDTO{Title: dst, Rows: rows})
		return nil
	})
}

// Header returns the first row of a page
func (r *WorkbookRepository) Header(ctx context.Context, page string) ([]string, error) {
	p, err := r.page(page)
	if err != nil {
		return nil, err
	}
	if len(p.Rows) == 0 {
		return []string{}, nil
	}
	return workbook.TrimTrailingEmpty(append([]string(nil), p.Rows[0]...)), nil
}

// FindColumn returns the 1-based column titled name
func (r *WorkbookRepository) FindColumn(ctx context.Context, page, name string) (int, error) {
	header, err := r.Header(ctx, page)
	if err != nil {
		return 0, err
	}
	if col := workbook.ColumnIndex(header, name); col > 0 {
		return col, nil
	}
	return 0, fmt.Errorf("%w: %q in page %q", sharedErrors.ErrColumnNotFound, name, page)
}

// ColumnValues returns the values of col below the header row
func (r *WorkbookRepository) ColumnValues(ctx context.Context, page string, col int) ([]string, error) {
	if err := workbook.ValidateCell(1, col); err != nil {
		return nil, err
	}
	p, err := r.page(page)
	if err != nil {
		return nil, err
	}
	values := []string{}
	for i := 1; i < len(p.Rows); i++ {
		v := ""
		if col <= len(p.Rows[i]) {
			v = p.Rows[i][col-1]
		}
		values = append(values, v)
	}
	return values, nil
}

// UpdateCell stores value at (row, col), growing the page as needed
func (r *WorkbookRepository) UpdateCell(ctx context.Context, page string, row, col int, value any) error {
	if err := workbook.ValidateCell(row, col); err != nil {
		return err
	}
	text, _, err := workbook.FormatValue(value)
	if err != nil {
		return err
	}
	return r.update(func(doc *workbookDTO) error {
		i := doc.find(page)
		if i < 0 {
			return fmt.Errorf("%w: %q", sharedErrors.ErrPageNotFound, page)
		}
		rows := doc.Pages[i].Rows
		for len(rows) < row {
			rows = append(rows, []string{})
		}
		for len(rows[row-1]) < col {
			rows[row-1] = append(rows[row-1], "")
		}
		rows[row-1][col-1] = text
		doc.Pages[i].Rows = rows
		return nil
	})
}

// Rows returns a page as a dense grid
func (r *WorkbookRepository) Rows(ctx context.Context, page string) ([][]string, error) {
	p, err := r.page(page)
	if err != nil {
		return nil, err
	}
	width := 0
	for _, row := range p.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	grid := make([][]string, len(p.Rows))
	for i, row := range p.Rows {
		grid[i] = make([]string, width)
		copy(grid[i], row)
	}
	return grid, nil
}

// ImportRows replaces the content of page with rows
func (r *WorkbookRepository) ImportRows(ctx context.Context, page string, data [][]string) error {
	if page == "" {
		return fmt.Errorf("%w: page title", sharedErrors.ErrMissingRequired)
	}
	rows := make([][]string, len(data))
	for i, row := range data {
		rows[i] = append([]string(nil), row...)
	}
	return r.update(func(doc *workbookDTO) error {
		if i := doc.find(page); i >= 0 {
			doc.Pages[i].Rows = rows
			return nil
		}
		doc.Pages = append(doc.Pages, pageDTO{Title: page, Rows: rows})
		return nil
	})
}

func (r *WorkbookRepository) page(title string) (pageDTO, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.loadFromFile()
	if err != nil {
		return pageDTO{}, err
	}
	i := doc.find(title)
	if i < 0 {
		return pageDTO{}, fmt.Errorf("%w: %q", sharedErrors.ErrPageNotFound, title)
	}
	return doc.Pages[i], nil
}

func (r *WorkbookRepository) update(fn func(doc *workbookDTO) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.loadFromFile()
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	if err := r.saveToFile(doc); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (d *workbookDTO) find(title string) int {
	for i, p := range d.Pages {
		if p.Title == title {
			return i
		}
	}
	return -1
}

func (r *WorkbookRepository) loadFromFile() (workbookDTO, error) {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return workbookDTO{Pages: []pageDTO{}}, nil
		}
		return workbookDTO{}, fmt.Errorf("%w: %v", sharedErrors.ErrRepositoryOperation, err)
	}

	var doc workbookDTO
	if err := json.Unmarshal(data, &doc); err != nil {
		return workbookDTO{}, fmt.Errorf("%w: %v", sharedErrors.ErrDeserializationFailed, err)
	}
	return doc, nil
}

func (r *WorkbookRepository) saveToFile(doc workbookDTO) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", sharedErrors.ErrSerializationFailed, err)
	}
	return os.WriteFile(r.filePath, data, consts.DefaultFilePerm)
}
