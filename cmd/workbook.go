package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanhnv2901/assetwatch/internal/application"
	"github.com/khanhnv2901/assetwatch/internal/config"
	"github.com/khanhnv2901/assetwatch/internal/domain/workbook"
	consts "github.com/khanhnv2901/assetwatch/internal/shared/constants"
)

var importCmd = &cobra.Command{
	Use:   "import --page TITLE file.csv",
	Short: "Replace a workbook page with the rows of a CSV file",
	Long: `Import a CSV file into the workbook. The first CSV row becomes the header
row of the page. An existing page with the same title is replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetString("page")
		if err := validatePageTitle(page); err != nil {
			return err
		}
		path, err := resolveCSVPath(args[0])
		if err != nil {
			return err
		}

		rows, err := readCSV(path)
		if err != nil {
			return err
		}

		wb, err := openWorkbook(cmd)
		if err != nil {
			return err
		}
		defer wb.Close()

		if err := wb.ImportRows(cmd.Context(), page, rows); err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}

		getAppContext(cmd).Logger.Info("page_imported", zap.String("page", page), zap.String("file", path), zap.Int("rows", len(rows)))
		fmt.Fprintf(cmd.OutOrStdout(), "%s imported %d row(s) into page %s\n", colorSuccess("✓"), len(rows), colorInfo(page))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export --page TITLE [file.csv]",
	Short: "Write a workbook page as CSV",
	Long:  "Export a workbook page as CSV to the given file, or to standard output when no file is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetString("page")
		if err := validatePageTitle(page); err != nil {
			return err
		}

		wb, err := openWorkbook(cmd)
		if err != nil {
			return err
		}
		defer wb.Close()

		rows, err := wb.Rows(cmd.Context(), page)
		if err != nil {
			return fmt.Errorf("failed to read page %s: %w", page, err)
		}

		if len(args) == 0 {
			return writeCSV(cmd.OutOrStdout(), rows)
		}

		path, err := resolveCSVPath(args[0])
		if err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, consts.DefaultFilePerm)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := writeCSV(f, rows); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", path, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s exported %d row(s) of page %s to %s\n", colorSuccess("✓"), len(rows), colorInfo(page), path)
		return nil
	},
}

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List the pages of the workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := openWorkbook(cmd)
		if err != nil {
			return err
		}
		defer wb.Close()

		titles, err := wb.ListPages(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list pages: %w", err)
		}
		if len(titles) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No pages yet. Use `assetwatch import --page TITLE file.csv` to add the inventory.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PAGE\tROWS\tCOLUMNS")
		for _, title := range titles {
			rows, err := wb.Rows(cmd.Context(), title)
			if err != nil {
				return fmt.Errorf("failed to read page %s: %w", title, err)
			}
			header := []string{}
			if len(rows) > 0 {
				header = workbook.TrimTrailingEmpty(rows[0])
			}
			dataRows := 0
			if len(rows) > 1 {
				dataRows = len(rows) - 1
			}
			fmt.Fprintf(w, "%s\t%d\t%s\n", title, dataRows, strings.Join(header, ", "))
		}
		return w.Flush()
	},
}

func init() {
	importCmd.Flags().String("page", "", "page title to create or replace (required)")
	_ = importCmd.MarkFlagRequired("page")
	exportCmd.Flags().String("page", "", "page title to export (required)")
	_ = exportCmd.MarkFlagRequired("page")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(pagesCmd)
}

// openWorkbook opens the configured backend without requiring page settings.
func openWorkbook(cmd *cobra.Command) (workbook.Repository, error) {
	appCtx := getAppContext(cmd)
	store, err := config.LoadStore(appCtx.Viper)
	if err != nil {
		return nil, err
	}
	return application.OpenWorkbook(cmd.Context(), store, appCtx.DataDir)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			return nil, &CSVError{Path: path, Line: line, Err: err}
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return nil, &CSVError{Path: path, Err: errors.New("file is empty")}
	}
	// Strip a UTF-8 byte order mark left by spreadsheet exports.
	rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	return rows, nil
}

func writeCSV(out io.Writer, rows [][]string) error {
	w := csv.NewWriter(out)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
