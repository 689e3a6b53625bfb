package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cwbudde/mcsbridge/internal/bridge"
	"github.com/cwbudde/mcsbridge/internal/config"
	"github.com/cwbudde/mcsbridge/internal/mcs"
	"github.com/cwbudde/mcsbridge/internal/store"
	"github.com/spf13/cobra"
)

var (
	objectiveName string
	dim           int
	smax          int
	lowerBound    float64
	upperBound    float64
	maxSweeps     int
	maxEvals      int
	localSteps    int
	gamma         float64
	engine        string
	runDataDir    string
	tracePoints   bool
)

// traceFlushEvery is the number of sweeps between trace syncs.
const traceFlushEvery = 100

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Minimize a test objective",
	Long: `Runs one optimization through the dispatcher on a built-in objective over
the box [lower, upper]^n. With --data-dir the result and a per-sweep trace are
recorded under <data-dir>/runs/<run-id>/.

Limits set to -1 are taken from the config defaults.`,
	RunE: runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&objectiveName, "objective", "sphere", fmt.Sprintf("Objective to minimize %v", objectiveNames()))
	runCmd.Flags().IntVar(&dim, "n", 6, "Problem dimension")
	runCmd.Flags().IntVar(&smax, "smax", -1, "Box level capacity")
	runCmd.Flags().Float64Var(&lowerBound, "lower", -1, "Lower bound for every coordinate")
	runCmd.Flags().Float64Var(&upperBound, "upper", 1, "Upper bound for every coordinate")
	runCmd.Flags().IntVar(&maxSweeps, "sweeps", -1, "Maximum number of sweeps")
	runCmd.Flags().IntVar(&maxEvals, "evals", -1, "Maximum number of objective evaluations")
	runCmd.Flags().IntVar(&localSteps, "local", -1, "Local search steps (0 disables local search)")
	runCmd.Flags().Float64Var(&gamma, "gamma", -1, "Local search acceptance threshold")
	runCmd.Flags().StringVar(&engine, "engine", "", "Override the configured engine (mcs, mayfly)")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "Directory for run records (empty: do not record)")
	runCmd.Flags().BoolVar(&tracePoints, "trace-points", false, "Record the best point in every trace entry")

	rootCmd.AddCommand(runCmd)
}

// runParams resolves -1 flags against the config defaults.
func runParams(d config.RunDefaults) config.RunDefaults {
	p := d
	if smax >= 0 {
		p.SMax = smax
	}
	if maxSweeps >= 0 {
		p.MaxSweeps = maxSweeps
	}
	if maxEvals >= 0 {
		p.MaxEvals = maxEvals
	}
	if localSteps >= 0 {
		p.Local = localSteps
	}
	if gamma >= 0 {
		p.Gamma = gamma
	}
	return p
}

func uniform(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func identity(n int) []float64 {
	h := make([]float64, n*n)
	for i := 0; i < n; i++ {
		h[i*n+i] = 1
	}
	return h
}

func runOptimization(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if engine != "" {
		cfg.Engine = engine
	}
	d, err := cfg.Dispatcher()
	if err != nil {
		return fmt.Errorf("failed to build dispatcher: %w", err)
	}

	if dim <= 0 {
		return fmt.Errorf("--n must be positive, got %d", dim)
	}
	f, err := lookupObjective(objectiveName, dim)
	if err != nil {
		return err
	}
	p := runParams(cfg.Defaults)

	runID := store.NewRunID()
	var (
		runStore *store.FSStore
		trace    *store.TraceWriter
	)
	if runDataDir != "" {
		runStore, err = store.NewFSStore(runDataDir)
		if err != nil {
			return fmt.Errorf("failed to open data dir: %w", err)
		}
		trace, err = store.NewTraceWriter(runStore.BaseDir(), runID)
		if err != nil {
			return err
		}
	}

	sweeps := 0
	req := bridge.Request{
		Objective: f,
		Lower:     uniform(dim, lowerBound),
		Upper:     uniform(dim, upperBound),
		Hessian:   identity(dim),
		MaxSweeps: p.MaxSweeps,
		MaxEvals:  p.MaxEvals,
		Local:     p.Local,
		Gamma:     p.Gamma,
		SMax:      p.SMax,
		N:         dim,
		Progress: func(s mcs.Sweep) {
			sweeps = s.Index
			if trace == nil {
				return
			}
			entry := store.TraceEntry{
				Sweep:     s.Index,
				BestValue: s.BestValue,
				NCall:     s.NCall,
				Timestamp: time.Now(),
			}
			if tracePoints {
				entry.Point = s.BestPoint
			}
			if err := trace.Write(entry); err != nil {
				slog.Warn("Failed to write trace entry", "runID", runID, "sweep", s.Index, "error", err)
			}
			if s.Index%traceFlushEvery == 0 {
				if err := trace.Flush(); err != nil {
					slog.Warn("Failed to flush trace", "runID", runID, "error", err)
				}
			}
		},
	}

	slog.Info("Starting optimization", "runID", runID, "objective", objectiveName, "engine", cfg.Engine, "n", dim, "smax", p.SMax)
	start := time.Now()
	flat, err := d.Run(req)
	elapsed := time.Since(start)

	if trace != nil {
		if cerr := trace.Close(); cerr != nil {
			slog.Warn("Failed to close trace", "runID", runID, "error", cerr)
		}
	}
	if err != nil {
		if runStore != nil {
			_ = runStore.DeleteRun(runID)
		}
		return fmt.Errorf("optimization failed: %w", err)
	}

	slog.Info("Optimization complete", "runID", runID, "fbest", flat.BestValue, "ncall", flat.NCall, "flag", flat.Flag, "elapsed", elapsed)
	printResult(cmd.OutOrStdout(), runID, flat)

	if runStore == nil {
		return nil
	}
	record := &store.RunRecord{
		RunID: runID,
		Config: store.RunConfig{
			Objective: objectiveName,
			Engine:    cfg.Engine,
			N:         dim,
			SMax:      p.SMax,
			Lower:     req.Lower,
			Upper:     req.Upper,
			MaxSweeps: p.MaxSweeps,
			MaxEvals:  p.MaxEvals,
			Local:     p.Local,
			Gamma:     p.Gamma,
		},
		BestPoint:    flat.BestPoint,
		BestValue:    flat.BestValue,
		MinimaValues: flat.MinimaValues,
		NCall:        flat.NCall,
		NCloc:        flat.NCloc,
		Flag:         flat.Flag.String(),
		Sweeps:       sweeps,
		Duration:     elapsed,
		Timestamp:    time.Now(),
	}
	for k := 0; k < flat.Count; k++ {
		record.MinimaPoints = append(record.MinimaPoints, flat.Minimum(k))
	}
	if err := runStore.SaveRun(record); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved run to %s\n", runStore.RunDir(runID))
	return nil
}

func printResult(w io.Writer, runID string, flat *bridge.Flat) {
	fmt.Fprintf(w, "Run:     %s\n", runID)
	fmt.Fprintf(w, "Flag:    %s\n", flat.Flag)
	fmt.Fprintf(w, "Best:    %.10g\n", flat.BestValue)
	fmt.Fprintf(w, "Point:   %v\n", flat.BestPoint)
	fmt.Fprintf(w, "Evals:   %d (%d local)\n", flat.NCall, flat.NCloc)
	fmt.Fprintf(w, "Minima:  %d\n", flat.Count)
	for k := 0; k < flat.Count; k++ {
		fmt.Fprintf(w, "  %2d  f=%.10g  x=%v\n", k, flat.MinimaValues[k], flat.Minimum(k))
	}
}
