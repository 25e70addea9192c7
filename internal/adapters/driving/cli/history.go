package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = withServices(&cobra.Command{
	Use:   "history [table]",
	Short: "Show recent sync runs",
	Long: `Lists recent sync runs, most recent first. With a table argument only
runs of that mapping are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
})

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	var table string
	if len(args) > 0 {
		table = args[0]
	}

	runs, err := syncService.History(cmd.Context(), table, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if historyJSON {
		return writeJSON(cmd, runs)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	st := newStyles(cmd.OutOrStdout())
	for _, run := range runs {
		status := st.Success.Render("ok")
		if !run.Succeeded() {
			status = st.Error.Render("failed")
		}
		cmd.Printf("%s  %-10s %-6s %5d records  %s\n",
			run.StartedAt.Local().Format(time.DateTime),
			run.Table, status, run.Synced,
			st.Muted.Render(run.Duration().Round(time.Millisecond).String()))
		if run.Error != "" {
			cmd.Printf("    %s\n", run.Error)
		}
	}
	return nil
}
