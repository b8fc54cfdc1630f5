package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanhnv2901/assetwatch/internal/application"
	"github.com/khanhnv2901/assetwatch/internal/config"
	"github.com/khanhnv2901/assetwatch/internal/domain/check"
)

const timestampLayout = "2006-01-02 15:04:05"

func runHealthCheck(cmd *cobra.Command, args []string) error {
	appCtx := getAppContext(cmd)
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	cfg, err := config.Load(appCtx.Viper)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Started at %s\n", time.Now().Format(timestampLayout))

	printer := newProgressPrinter(out)
	container, err := application.NewContainer(ctx, cfg, appCtx.DataDir, appCtx.Logger, printer.Report)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := container.Close(); cerr != nil {
			appCtx.Logger.Warn("container_close_failed", zap.Error(cerr))
		}
	}()

	fmt.Fprintf(out, "Loading result page %s...", cfg.Pages.Result)
	cols, targets, err := container.CheckOrchestrator.Prepare(ctx)
	if err != nil {
		fmt.Fprintln(out, colorError("failed"))
		return err
	}
	fmt.Fprintln(out, formatStatusWithColor("ok"))

	fmt.Fprintf(out, "Checking %d target(s)\n", len(targets))
	run, err := container.CheckOrchestrator.Run(ctx, targets, cols)
	if err != nil {
		return err
	}

	printRunSummary(cmd, run)

	if run.Status() == check.RunStatusCancelled {
		return &RunCancelledError{RunID: run.ID(), Checked: run.Stats().Checked, Total: run.Stats().TotalTargets}
	}
	fmt.Fprintf(out, "Finished at %s\n", time.Now().Format(timestampLayout))
	return nil
}

func printRunSummary(cmd *cobra.Command, run *check.Run) {
	out := cmd.OutOrStdout()
	stats := run.Stats()

	fmt.Fprintf(out, "Run %s %s in %s\n", colorInfo(run.ID()), formatStatusWithColor(string(run.Status())), run.Duration().Round(time.Millisecond))
	fmt.Fprintf(out, "  Checked: %d  Skipped: %d  Total: %d\n", stats.Checked, stats.Skipped, stats.TotalTargets)
	if stats.WriteFailures > 0 {
		fmt.Fprintln(out, colorWarn(fmt.Sprintf("  %d cell(s) could not be written, see the log for details", stats.WriteFailures)))
	}
}
