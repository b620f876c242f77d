package licensebanner

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/redactyl/licensebanner/internal/audit"
	"github.com/spf13/cobra"
)

var flagHistoryLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show dependencies added or removed by recent written builds",
		RunE:  runHistory,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "project root")
	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 10, "number of builds to show (0 = all)")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "emit JSON")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	root, err := filepath.Abs(flagPath)
	if err != nil {
		return err
	}
	records, err := audit.NewLog(root).LoadHistory()
	if err != nil {
		return err
	}
	if flagHistoryLimit > 0 && len(records) > flagHistoryLimit {
		records = records[:flagHistoryLimit]
	}
	w := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	for _, r := range records {
		commit := r.Commit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		if commit == "" {
			commit = "-"
		}
		fmt.Fprintf(w, "%s  %s  %d dependencies, %d chunks\n", r.Timestamp.Format("2006-01-02 15:04"), commit, r.Dependencies, r.Chunks)
		if len(r.Added) > 0 {
			fmt.Fprintf(w, "  + %s\n", strings.Join(r.Added, ", "))
		}
		if len(r.Removed) > 0 {
			fmt.Fprintf(w, "  - %s\n", strings.Join(r.Removed, ", "))
		}
		for _, v := range r.Violations {
			fmt.Fprintf(w, "  ! %s\n", v)
		}
	}
	return nil
}
