package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ratecheck/internal/config"
	"ratecheck/internal/runner"
	"ratecheck/internal/storage"
	"ratecheck/internal/tui/styles"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored run summaries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := v.GetString(config.KeyHistory)
		if path == "" {
			p, err := storage.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		limit, _ := cmd.Flags().GetInt("limit")
		id, _ := cmd.Flags().GetString("id")

		st, err := storage.Open(path)
		if err != nil {
			return err
		}
		defer st.Close()

		if id != "" {
			item, err := st.Get(id)
			if err != nil {
				return fmt.Errorf("run %s: %w", id, err)
			}
			printHistoryItem(cmd.OutOrStdout(), item)
			return nil
		}

		items, err := st.List(limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintf(out, "No runs stored in %s\n", path)
			return nil
		}

		fmt.Fprintf(out, "%-19s  %-5s  %-14s  %5s  %5s  %5s  %5s  %-20s\n",
			"START", "NAME", "PATH", "TOTAL", "OK", "429", "ERR", "VERDICT")
		fmt.Fprintln(out, strings.Repeat("=", 90))
		for _, it := range items {
			sum := it.Summary
			verdict := styles.ForVerdict(sum.Verdict == runner.VerdictCorrect, sum.Verdict.Partial()).Render(sum.Verdict.String())
			fmt.Fprintf(out, "%-19s  %-5s  %-14s  %5d  %5d  %5d  %5d  %s\n",
				it.Timestamp.Local().Format("2006-01-02 15:04:05"),
				it.Scenario.Name, it.Scenario.Path,
				sum.TotalRequests, sum.Success, sum.RateLimited, sum.Errors,
				verdict,
			)
		}
		return nil
	},
}

func printHistoryItem(out io.Writer, it *storage.HistoryItem) {
	sum := it.Summary
	fmt.Fprintf(out, "ID:           %s\n", it.ID)
	fmt.Fprintf(out, "Start:        %s\n", it.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Server:       %s\n", it.BaseURL)
	fmt.Fprintf(out, "Scenario:     %s %s (%d requests, %d expected success)\n",
		it.Scenario.Name, it.Scenario.Path, it.Scenario.Total, it.Scenario.ExpectedSuccess)
	fmt.Fprintf(out, "Success:      %d\n", sum.Success)
	fmt.Fprintf(out, "Rate limited: %d (%.1f%%)\n", sum.RateLimited, sum.LimitedPct)
	fmt.Fprintf(out, "Errors:       %d\n", sum.Errors)
	fmt.Fprintf(out, "Elapsed:      %.2f s\n", sum.ElapsedSec)
	fmt.Fprintf(out, "Latency:      P50 %.2f ms, P99 %.2f ms, max %.2f ms\n", sum.P50LatencyMs, sum.P99LatencyMs, sum.MaxLatencyMs)
	if sum.Interrupted {
		fmt.Fprintln(out, "Interrupted:  yes")
	}
	verdict := styles.ForVerdict(sum.Verdict == runner.VerdictCorrect, sum.Verdict.Partial()).Render(sum.Verdict.String())
	fmt.Fprintf(out, "Verdict:      %s\n", verdict)
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show (0 for all)")
	historyCmd.Flags().String("id", "", "Show the details of one stored run")
}
