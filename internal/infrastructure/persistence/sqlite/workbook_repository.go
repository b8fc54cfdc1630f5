package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/khanhnv2901/assetwatch/internal/domain/workbook"
	sharedErrors "github.com/khanhnv2901/assetwatch/internal/shared/errors"
)

// WorkbookRepository implements workbook.Repository on a SQLite file.
type WorkbookRepository struct {
	db *sql.DB
}

var _ workbook.Repository = (*WorkbookRepository)(nil)

// NewWorkbookRepository opens (or creates) the database at path and runs migrations.
func NewWorkbookRepository(ctx context.Context, path string) (*WorkbookRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	repo := &WorkbookRepository{db: db}
	if err := repo.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return repo, nil
}

// Close closes the database connection.
func (r *WorkbookRepository) Close() error { return r.db.Close() }

func (r *WorkbookRepository) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS pages (
	title      TEXT PRIMARY KEY,
	position   INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cells (
	page    TEXT NOT NULL,
	row_idx INTEGER NOT NULL,
	col_idx INTEGER NOT NULL,
	value   TEXT NOT NULL,
	kind    TEXT NOT NULL DEFAULT 'text',
	PRIMARY KEY (page, row_idx, col_idx),
	FOREIGN KEY(page) REFERENCES pages(title) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_cells_page_col ON cells (page, col_idx, row_idx);
`
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// ListPages returns page titles in creation order.
func (r *WorkbookRepository) ListPages(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT title FROM pages ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var pages []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, title)
	}
	return pages, rows.Err()
}

// HasPage reports whether page exists.
func (r *WorkbookRepository) HasPage(ctx context.Context, page string) (bool, error) {
	return pageExists(ctx, r.db, page)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func pageExists(ctx context.Context, q querier, page string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM pages WHERE title = ?`, page).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup page %q: %w", page, err)
	}
	return true, nil
}

func (r *WorkbookRepository) requirePage(ctx context.Context, q querier, page string) error {
	ok, err := pageExists(ctx, q, page)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", sharedErrors.ErrPageNotFound, page)
	}
	return nil
}

func insertPage(ctx context.Context, tx *sql.Tx, page string) error {
	exists, err := pageExists(ctx, tx, page)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %q", sharedErrors.ErrPageAlreadyExists, page)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO pages (title, position, created_at)
		 VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM pages), ?)`,
		page, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert page %q: %w", page, err)
	}
	return nil
}

// CreatePage adds an empty page.
func (r *WorkbookRepository) CreatePage(ctx context.Context, page string) error {
	if page == "" {
		return fmt.Errorf("%w: page title", sharedErrors.ErrMissingRequired)
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return insertPage(ctx, tx, page)
	})
}

// DuplicatePage copies src with all its cells into the new page dst.
func (r *WorkbookRepository) DuplicatePage(ctx context.Context, src, dst string) error {
	if dst == "" {
		return fmt.Errorf("%w: page title", sharedErrors.ErrMissingRequired)
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := r.requirePage(ctx, tx, src); err != nil {
			return err
		}
		if err := insertPage(ctx, tx, dst); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cells (page, row_idx, col_idx, value, kind)
			 SELECT ?, row_idx, col_idx, value, kind FROM cells WHERE page = ?`, dst, src)
		if err != nil {
			return fmt.Errorf("copy cells %q -> %q: %w", src, dst, err)
		}
		return nil
	})
}

// Header returns the first row of page.
func (r *WorkbookRepository) Header(ctx context.Context, page string) ([]string, error) {
	if err := r.requirePage(ctx, r.db, page); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT col_idx, value FROM cells WHERE page = ? AND row_idx = 1 ORDER BY col_idx`, page)
	if err != nil {
		return nil, fmt.Errorf("read header of %q: %w", page, err)
	}
	defer rows.Close()

	var header []string
	for rows.Next() {
		var (
			col   int
			value string
		)
		if err := rows.Scan(&col, &value); err != nil {
			return nil, fmt.Errorf("scan header cell: %w", err)
		}
		for len(header) < col {
			header = append(header, "")
		}
		header[col-1] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workbook.TrimTrailingEmpty(header), nil
}

// FindColumn returns the 1-based column titled name.
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

// ColumnValues returns the values of col from row 2 to the last used row.
func (r *WorkbookRepository) ColumnValues(ctx context.Context, page string, col int) ([]string, error) {
	if err := workbook.ValidateCell(1, col); err != nil {
		return nil, err
	}
	if err := r.requirePage(ctx, r.db, page); err != nil {
		return nil, err
	}

	var lastRow sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(row_idx) FROM cells WHERE page = ?`, page).Scan(&lastRow); err != nil {
		return nil, fmt.Errorf("size of %q: %w", page, err)
	}
	if !lastRow.Valid || lastRow.Int64 < 2 {
		return []string{}, nil
	}

	values := make([]string, lastRow.Int64-1)
	rows, err := r.db.QueryContext(ctx,
		`SELECT row_idx, value FROM cells WHERE page = ? AND col_idx = ? AND row_idx > 1`, page, col)
	if err != nil {
		return nil, fmt.Errorf("read column %d of %q: %w", col, page, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			row   int
			value string
		)
		if err := rows.Scan(&row, &value); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		values[row-2] = value
	}
	return values, rows.Err()
}

// UpdateCell stores value at (row, col), replacing any previous value.
func (r *WorkbookRepository) UpdateCell(ctx context.Context, page string, row, col int, value any) error {
	if err := workbook.ValidateCell(row, col); err != nil {
		return err
	}
	text, kind, err := workbook.FormatValue(value)
	if err != nil {
		return err
	}
	if err := r.requirePage(ctx, r.db, page); err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO cells (page, row_idx, col_idx, value, kind) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(page, row_idx, col_idx) DO UPDATE SET value = excluded.value, kind = excluded.kind`,
		page, row, col, text, string(kind))
	if err != nil {
		return fmt.Errorf("update %q row %d col %d: %w", page, row, col, err)
	}
	return nil
}

// Rows returns page as a dense grid.
func (r *WorkbookRepository) Rows(ctx context.Context, page string) ([][]string, error) {
	if err := r.requirePage(ctx, r.db, page); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT row_idx, col_idx, value FROM cells WHERE page = ? ORDER BY row_idx, col_idx`, page)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", page, err)
	}
	defer rows.Close()

	var grid [][]string
	width := 0
	for rows.Next() {
		var (
			row, col int
			value    string
		)
		if err := rows.Scan(&row, &col, &value); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		for len(grid) < row {
			grid = append(grid, nil)
		}
		for len(grid[row-1]) < col {
			grid[row-1] = append(grid[row-1], "")
		}
		grid[row-1][col-1] = value
		if col > width {
			width = col
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range grid {
		for len(grid[i]) < width {
			grid[i] = append(grid[i], "")
		}
	}
	return grid, nil
}

// ImportRows replaces the content of page with rows.
func (r *WorkbookRepository) ImportRows(ctx context.Context, page string, data [][]string) error {
	if page == "" {
		return fmt.Errorf("%w: page title", sharedErrors.ErrMissingRequired)
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := pageExists(ctx, tx, page)
		if err != nil {
			return err
		}
		if !exists {
			if err := insertPage(ctx, tx, page); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cells WHERE page = ?`, page); err != nil {
			return fmt.Errorf("clear %q: %w", page, err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO cells (page, row_idx, col_idx, value, kind) VALUES (?, ?, ?, ?, 'text')`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, row := range data {
			for j, value := range row {
				if value == "" {
					continue
				}
				if _, err := stmt.ExecContext(ctx, page, i+1, j+1, value); err != nil {
					return fmt.Errorf("insert %q row %d col %d: %w", page, i+1, j+1, err)
				}
			}
		}
		return nil
	})
}

func (r *WorkbookRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
