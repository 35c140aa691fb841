package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AMANN-N/smart-practice/internal/store"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the request journal",
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent service calls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		op, _ := cmd.Flags().GetString("op")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.Journal().Recent(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query journal: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No requests recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-6s  %-19s  %-16s  %-6s  %-22s  %-6s  %-7s  %s\n",
			"Seq", "Timestamp", "Operation", "Method", "Path", "Status", "Ms", "OK")
		fmt.Fprintln(out, strings.Repeat("─", 100))

		for _, e := range events {
			if op != "" && e.Operation != op {
				continue
			}
			if failed && e.Success {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗ " + truncate(e.ErrorMessage, 40)
			}
			fmt.Fprintf(out, "%-6d  %-19s  %-16s  %-6s  %-22s  %-6d  %-7d  %s\n",
				e.Sequence,
				e.RecordedAt.Local().Format("2006-01-02 15:04:05"),
				e.Operation,
				e.Method,
				truncate(e.Path, 22),
				e.StatusCode,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var journalStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show call counts, failures and latency per operation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openJournal(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		usage, err := s.Journal().UsageByOperation(cmd.Context())
		if err != nil {
			return fmt.Errorf("query journal: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(usage) == 0 {
			fmt.Fprintln(out, "No requests recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-16s  %-6s  %-8s  %s\n", "Operation", "Calls", "Failures", "Avg ms")
		fmt.Fprintln(out, strings.Repeat("─", 48))
		var calls, failures int
		for _, u := range usage {
			fmt.Fprintf(out, "%-16s  %-6d  %-8d  %.1f\n", u.Operation, u.Calls, u.Failures, u.AvgLatencyMs)
			calls += u.Calls
			failures += u.Failures
		}
		fmt.Fprintln(out, strings.Repeat("─", 48))
		fmt.Fprintf(out, "%-16s  %-6d  %-8d\n", "Total", calls, failures)
		return nil
	},
}

func init() {
	journalListCmd.Flags().Int("limit", 20, "Maximum number of calls to show (0 for all)")
	journalListCmd.Flags().String("op", "", "Show only this operation, e.g. submit-answer")
	journalListCmd.Flags().Bool("failed", false, "Show only failed calls")

	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalStatsCmd)
}

// openJournal opens the journal database named by the config.
func openJournal(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
