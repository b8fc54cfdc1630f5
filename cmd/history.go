package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/assetwatch/internal/infrastructure/persistence/json"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent health check runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		appCtx := getAppContext(cmd)

		repo, err := json.NewRunRepository(appCtx.DataDir)
		if err != nil {
			return err
		}
		runs, err := repo.FindRecent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSTARTED\tSTATUS\tRESULT PAGE\tCHECKED\tSKIPPED\tWRITE FAILURES\tDURATION")
		for _, run := range runs {
			stats := run.Stats()
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%d\t%d\t%s\n",
				run.ID(),
				run.StartedAt().Local().Format(timestampLayout),
				run.Status(),
				run.ResultPage(),
				stats.Checked, stats.TotalTargets,
				stats.Skipped,
				stats.WriteFailures,
				run.Duration().Round(time.Second))
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().Int("limit", 10, "number of runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
