package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanhnv2901/assetwatch/internal/config"
	"github.com/khanhnv2901/assetwatch/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "assetwatch",
	Short: "Probe every asset URL of the inventory and record its health in the result page",
	Long: `assetwatch reads the asset inventory from the workbook, copies it to the
result page when needed and, for every URL, records the resolved IP, the
certificate chain status, the redirect headers, the response status, the
response body and its size and the check date.

Configuration is read from --config, ./.assetwatch.yaml or
$HOME/.assetwatch.yaml, then from ASSETWATCH_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, used, err := newViper(cfgFile)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd.Flags(), v)

		dataDir, err := getDataDir()
		if err != nil {
			return err
		}

		logCfg, err := config.LoadLog(v)
		if err != nil {
			return err
		}
		logCfg.Dir = getLogDir(logCfg.Dir, dataDir)
		logger, err := logging.NewLogger(logCfg, cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Debug("cli_initialized",
			zap.String("command", cmd.Name()),
			zap.String("config_file", used),
			zap.String("data_dir", dataDir))

		storeAppContext(cmd, &AppContext{
			Logger:     logger,
			Viper:      v,
			DataDir:    dataDir,
			ConfigFile: used,
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appCtx := getAppContext(cmd); appCtx != nil && appCtx.Logger != nil {
			_ = appCtx.Logger.Sync()
		}
	},
	RunE: runHealthCheck,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, colorError("Error:"), describeError(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	// config file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.assetwatch.yaml or $HOME/.assetwatch.yaml)")
	rootCmd.PersistentFlags().String("store", "", "workbook file (default is <data dir>/workbook.db)")
	rootCmd.PersistentFlags().String("driver", "", "workbook backend: sqlite or json")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-dir", "", "directory of the rolling JSON log (default is <data dir>/logs)")

	rootCmd.Flags().String("inventory", "", "inventory page title (pages.inventory)")
	rootCmd.Flags().String("result", "", "result page title (pages.result)")
	rootCmd.Flags().String("url-column", "", "header of the URL column (fields.url)")
	rootCmd.Flags().Int("max-redirects", 0, "maximum redirects followed by the header trace")
	rootCmd.Flags().Duration("target-interval", 0, "minimum delay between two targets")
	rootCmd.Flags().Duration("write-interval", 0, "minimum delay between two cell writes")
	rootCmd.Flags().Bool("no-backup", false, "skip the daily backup of the result page")

	// add subcommands
	rootCmd.AddCommand(versionCmd)
}
