package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/assetwatch/internal/application"
	"github.com/khanhnv2901/assetwatch/internal/config"
	"github.com/khanhnv2901/assetwatch/internal/infrastructure/persistence/json"
	"github.com/khanhnv2901/assetwatch/internal/logging"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system information and data directory paths",
	Long: `Display assetwatch configuration information including:
  - Data directory locations
  - Workbook backend and file
  - Configuration file path
  - Platform information`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application context
		appCtx := getAppContext(cmd)

		store, err := config.LoadStore(appCtx.Viper)
		if err != nil {
			return err
		}
		workbookPath := store.Path
		if workbookPath == "" {
			name := application.DefaultSQLiteFile
			if store.Driver == config.StoreDriverJSON {
				name = application.DefaultJSONFile
			}
			workbookPath = filepath.Join(appCtx.DataDir, name)
		}
		runsPath := filepath.Join(appCtx.DataDir, json.RunsFileName)

		logCfg, err := config.LoadLog(appCtx.Viper)
		if err != nil {
			return err
		}
		logPath := filepath.Join(getLogDir(logCfg.Dir, appCtx.DataDir), logging.FileName)

		configFile := appCtx.ConfigFile
		configExists := "✓ (exists)"
		if configFile == "" {
			configFile = "./.assetwatch.yaml, ~/.assetwatch.yaml"
			configExists = "✗ (using defaults)"
		}

		// Get output writer (for testing support)
		out := cmd.OutOrStdout()

		// Print information
		fmt.Fprintln(out, "assetwatch System Information")
		fmt.Fprintln(out, "=============================")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Platform:          %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "Version:           %s\n", Version)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Data Locations:")
		fmt.Fprintf(out, "  Data Directory:   %s\n", appCtx.DataDir)
		fmt.Fprintf(out, "  Workbook (%s):  %s %s\n", store.Driver, workbookPath, existence(workbookPath))
		fmt.Fprintf(out, "  Run History:      %s %s\n", runsPath, existence(runsPath))
		fmt.Fprintf(out, "  Log File:         %s %s\n", logPath, existence(logPath))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Configuration File: %s %s\n", configFile, configExists)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "To override the data directory, set %s.\n", dataDirEnvVar)
		fmt.Fprintln(out, "Every configuration key can be set as ASSETWATCH_<SECTION>_<KEY>, e.g. ASSETWATCH_PAGES_RESULT.")

		return nil
	},
}

func existence(path string) string {
	if _, err := os.Stat(path); err == nil {
		return "✓ (exists)"
	}
	return "✗ (not created yet)"
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
