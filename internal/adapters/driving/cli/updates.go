package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

var historyLimit int

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Check watched sources for new documentation",
	Long: `Watched sources are vendor listing pages (release notes, configuration
guides, community posts). A check compares the listing against what was seen
last time and ingests new or changed documents.`,
}

var updatesCheckCmd = &cobra.Command{
	Use:   "check [source-key]",
	Short: "Run an update check now",
	Long: `Check one watched source, or every source when no key is given.
Keys are shown by 'netassist updates sources'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdatesCheck,
}

var updatesHistoryCmd = &cobra.Command{
	Use:   "history [source-key]",
	Short: "Show recent update check runs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUpdatesHistory,
}

var updatesSourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List watched sources",
	RunE:  runUpdatesSources,
}

func init() {
	updatesHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum runs to show")

	updatesCmd.AddCommand(updatesCheckCmd)
	updatesCmd.AddCommand(updatesHistoryCmd)
	updatesCmd.AddCommand(updatesSourcesCmd)
	rootCmd.AddCommand(updatesCmd)
}

func runUpdatesCheck(cmd *cobra.Command, args []string) error {
	if updateService == nil {
		return errNotConfigured("update service")
	}

	if len(args) == 1 {
		src, err := findSource(args[0])
		if err != nil {
			return err
		}
		report, err := updateService.Check(cmd.Context(), src)
		if err != nil {
			return fmt.Errorf("check %s: %w", src.Key(), err)
		}
		printUpdateReport(cmd, report)
		return nil
	}

	// The scheduler records each run in the task history.
	if schedulerService != nil {
		results := schedulerService.RunOnce(cmd.Context())
		failed := 0
		for _, r := range results {
			printTaskResult(cmd, r)
			if !r.Success {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d update checks failed", failed, len(results))
		}
		return nil
	}

	reports, err := updateService.CheckAll(cmd.Context())
	for _, r := range reports {
		printUpdateReport(cmd, r)
	}
	if err != nil {
		return fmt.Errorf("check sources: %w", err)
	}
	return nil
}

func runUpdatesHistory(cmd *cobra.Command, args []string) error {
	if schedulerService == nil {
		return errNotConfigured("scheduler")
	}

	var taskID string
	if len(args) == 1 {
		if updateService == nil {
			return errNotConfigured("update service")
		}
		src, err := findSource(args[0])
		if err != nil {
			return err
		}
		taskID = domain.UpdateCheckTaskID(src)
	}

	results, err := schedulerService.History(cmd.Context(), taskID, historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(results) == 0 {
		cmd.Println("No update checks recorded yet.")
		return nil
	}
	for _, r := range results {
		printTaskResult(cmd, r)
	}
	return nil
}

func runUpdatesSources(cmd *cobra.Command, _ []string) error {
	if updateService == nil {
		return errNotConfigured("update service")
	}

	sources := updateService.Sources()
	if len(sources) == 0 {
		cmd.Println("No watched sources configured.")
		return nil
	}
	for _, src := range sources {
		interval := "default interval"
		if src.Interval > 0 {
			interval = "every " + src.Interval.Std().String()
		}
		cmd.Printf("%-28s %-14s %s\n", src.Key(), src.DocType, interval)
		cmd.Printf("  %s\n", src.URL)
	}
	return nil
}

// findSource resolves a source key to its configured source.
func findSource(key string) (domain.WatchedSource, error) {
	for _, src := range updateService.Sources() {
		if src.Key() == key {
			return src, nil
		}
	}
	return domain.WatchedSource{}, fmt.Errorf("source %q: %w", key, domain.ErrNotFound)
}

func printUpdateReport(cmd *cobra.Command, r domain.UpdateReport) {
	if r.FirstCheck {
		cmd.Printf("%s: baseline recorded (%d documents)\n", r.Source, r.Discovered)
		return
	}
	cmd.Printf("%s: %d new, %d changed, %d chunks ingested\n",
		r.Source, r.New, r.Changed, r.Ingest.Chunks)
}

func printTaskResult(cmd *cobra.Command, r domain.TaskResult) {
	status := "ok"
	if !r.Success {
		status = "FAILED: " + r.Error
	}
	cmd.Printf("%s  %-40s %3d items  %6s  %s\n",
		r.StartedAt.Local().Format(time.DateTime),
		r.TaskID,
		r.ItemsProcessed,
		r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond),
		status)
}
