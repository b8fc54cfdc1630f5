package cmd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/khanhnv2901/assetwatch/internal/application"
	checkapp "github.com/khanhnv2901/assetwatch/internal/application/check"
	"github.com/khanhnv2901/assetwatch/internal/config"
)

func TestRunHealthCheckEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>\n  <body>ok</body>\n</html>\n"))
	}))
	defer server.Close()

	appCtx := setupTestAppContext(t, map[string]any{
		"pages.inventory":         "assets",
		"pages.result":            "detect",
		"fields.web_status":       "Status",
		"fields.web_content_size": "Size",
		"fields.update_at":        "Updated",
		"pacing.target_interval":  "0s",
		"pacing.write_interval":   "0s",
	})

	store, err := config.LoadStore(appCtx.Viper)
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	wb, err := application.OpenWorkbook(context.Background(), store, appCtx.DataDir)
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	rows := [][]string{{"Name", "URL"}, {"local", server.URL}, {"blank", ""}}
	if err := wb.ImportRows(context.Background(), "assets", rows); err != nil {
		t.Fatalf("ImportRows: %v", err)
	}

	out, err := runCommand(t, rootCmd)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "[2/2]"+server.URL+"...ok") {
		t.Fatalf("expected progress line, got:\n%s", out)
	}
	if !strings.Contains(out, "Checked: 1  Skipped: 1  Total: 2") {
		t.Fatalf("expected summary, got:\n%s", out)
	}

	grid, err := wb.Rows(context.Background(), "detect")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if got := strings.Join(grid[0], ","); got != "Name,URL,Status,Size,Updated" {
		t.Fatalf("unexpected header %q", got)
	}
	if grid[1][2] != "200" || grid[1][3] != "33" {
		t.Fatalf("unexpected result row %q", grid[1])
	}
	if _, err := time.Parse("2006/01/02", grid[1][4]); err != nil {
		t.Fatalf("unexpected completion date %q", grid[1][4])
	}

	historyOut, err := runCommand(t, historyCmd)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(historyOut, "completed") || !strings.Contains(historyOut, "detect") {
		t.Fatalf("expected the run in history, got:\n%s", historyOut)
	}
}

func TestRunHealthCheckMissingInventory(t *testing.T) {
	setupTestAppContext(t, map[string]any{
		"pages.inventory": "assets",
		"pages.result":    "detect",
	})

	_, err := runCommand(t, rootCmd)
	var cfgErr *checkapp.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestRunHealthCheckRequiresPages(t *testing.T) {
	setupTestAppContext(t, nil)

	if _, err := runCommand(t, rootCmd); err == nil || !strings.Contains(describeError(err), "pages.inventory") {
		t.Fatalf("expected missing pages.inventory error, got %v", err)
	}
}

func TestHistoryEmpty(t *testing.T) {
	setupTestAppContext(t, nil)

	out, err := runCommand(t, historyCmd)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "No runs recorded yet.") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out := runVersion(t, false)
	if out != "assetwatch version dev\n" {
		t.Fatalf("unexpected version output %q", out)
	}

	out = runVersion(t, true)
	if !strings.Contains(out, "Go Version:") {
		t.Fatalf("expected verbose output, got %q", out)
	}
}

func runVersion(t *testing.T, verbose bool) string {
	t.Helper()
	if verbose {
		setFlag(t, versionCmd, "verbose", "true")
	}
	var buf strings.Builder
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)
	versionCmd.Run(versionCmd, nil)
	return buf.String()
}
