package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/mcsbridge/internal/store"
	"github.com/spf13/cobra"
)

var (
	runsDataDir   string
	keepLast      int
	olderThanDays int
	forceClean    bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage recorded runs",
	Long:  `List, inspect and clean the run records written by "mcsbridge run --data-dir".`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	RunE:  runListRuns,
}

var showRunCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a recorded run and its trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var cleanRunsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old runs",
	Long: `Delete runs older than N days, or all but the newest N runs.
Both limits may be combined.`,
	RunE: runCleanRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(listRunsCmd, showRunCmd, cleanRunsCmd)

	runsCmd.PersistentFlags().StringVar(&runsDataDir, "data-dir", "./data", "Base directory of run records")

	cleanRunsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N runs (0 = no count limit)")
	cleanRunsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete runs older than N days (0 = no age limit)")
	cleanRunsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runListRuns(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tTIMESTAMP\tOBJECTIVE\tENGINE\tN\tBEST\tFLAG\tSIZE")
	for _, info := range infos {
		size := "unknown"
		if n, err := getDirSize(runStore.RunDir(info.RunID)); err == nil {
			size = formatBytes(n)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.6g\t%s\t%s\n",
			shortID(info.RunID),
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Objective,
			info.Engine,
			info.N,
			info.BestValue,
			info.Flag,
			size,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal runs: %d\n", len(infos))
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	record, err := runStore.LoadRun(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	c := record.Config
	fmt.Fprintf(out, "Run:        %s\n", record.RunID)
	fmt.Fprintf(out, "Timestamp:  %s (took %s)\n", record.Timestamp.Format(time.RFC3339), record.Duration)
	fmt.Fprintf(out, "Objective:  %s n=%d lower=%v upper=%v\n", c.Objective, c.N, c.Lower, c.Upper)
	fmt.Fprintf(out, "Engine:     %s smax=%d sweeps=%d evals=%d local=%d gamma=%g\n",
		c.Engine, c.SMax, c.MaxSweeps, c.MaxEvals, c.Local, c.Gamma)
	fmt.Fprintf(out, "Flag:       %s after %d sweeps\n", record.Flag, record.Sweeps)
	fmt.Fprintf(out, "Best:       %.10g at %v\n", record.BestValue, record.BestPoint)
	fmt.Fprintf(out, "Evals:      %d (%d local)\n", record.NCall, record.NCloc)
	for k, p := range record.MinimaPoints {
		fmt.Fprintf(out, "  min %2d  f=%.10g  x=%v\n", k, record.MinimaValues[k], p)
	}

	reader, err := store.NewTraceReader(runStore.BaseDir(), record.RunID)
	if err != nil {
		slog.Debug("No trace for run", "runID", record.RunID, "error", err)
		return nil
	}
	defer reader.Close()
	entries, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		fmt.Fprintf(out, "Trace:      %d sweeps, first f=%.6g, last f=%.6g\n", len(entries), entries[0].BestValue, last.BestValue)
	}
	return nil
}

func runCleanRuns(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	runStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	toDelete := selectRunsForDeletion(infos, keepLast, olderThanDays, time.Now())
	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No runs match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d run(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (%s, %s)\n", shortID(info.RunID), info.Objective, info.Timestamp.Format("2006-01-02 15:04:05"))
	}

	if !forceClean {
		fmt.Fprint(out, "\nProceed with deletion? [y/N]: ")
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	deleted, failed := 0, 0
	for _, info := range toDelete {
		if err := runStore.DeleteRun(info.RunID); err != nil {
			slog.Error("Failed to delete run", "runID", info.RunID, "error", err)
			failed++
			continue
		}
		slog.Info("Deleted run", "runID", info.RunID)
		deleted++
	}

	fmt.Fprintf(out, "\nDeleted %d run(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRunsForDeletion returns the runs older than olderThanDays plus every
// run beyond the newest keepLast, oldest first and without duplicates.
func selectRunsForDeletion(infos []store.RunInfo, keepLast, olderThanDays int, now time.Time) []store.RunInfo {
	sorted := append([]store.RunInfo(nil), infos...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	cutoff := now.AddDate(0, 0, -olderThanDays)
	var toDelete []store.RunInfo
	for i := len(sorted) - 1; i >= 0; i-- {
		info := sorted[i]
		tooOld := olderThanDays > 0 && info.Timestamp.Before(cutoff)
		overCount := keepLast > 0 && i >= keepLast
		if tooOld || overCount {
			toDelete = append(toDelete, info)
		}
	}
	return toDelete
}

// getDirSize sums the sizes of the regular files below path.
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes renders n with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	value, suffix := float64(n)/unit, 0
	for value >= unit && suffix < 5 {
		value /= unit
		suffix++
	}
	return fmt.Sprintf("%.1f %cB", value, "KMGTPE"[suffix])
}
