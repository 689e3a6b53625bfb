package bridge

import (
	"errors"
	"testing"

	"github.com/cwbudde/mcsbridge/internal/mcs"
)

func TestMarshalFlattensMinima(t *testing.T) {
	res := &mcs.Result{
		BestPoint:    []float64{1, 2},
		BestValue:    -3,
		MinimaPoints: [][]float64{{1, 2}, {3, 4}, {5, 6}},
		MinimaValues: []float64{-3, -1, 0},
		NCall:        40,
		NCloc:        12,
		Flag:         mcs.StopSweepLimitExceeded,
	}

	flat, err := Marshal(res, 2)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if flat.Count != 3 {
		t.Errorf("Expected count 3, got %d", flat.Count)
	}
	want := []float64{1, 2, 3, 4, 5, 6}
	if len(flat.MinimaPoints) != len(want) {
		t.Fatalf("Expected %d flattened entries, got %d", len(want), len(flat.MinimaPoints))
	}
	for i := range want {
		if flat.MinimaPoints[i] != want[i] {
			t.Errorf("MinimaPoints[%d] = %v, want %v", i, flat.MinimaPoints[i], want[i])
		}
	}
	if row := flat.Minimum(1); row[0] != 3 || row[1] != 4 {
		t.Errorf("Minimum(1) = %v, want [3 4]", row)
	}
	if flat.Flag != ExitStopNSweepsExceeded {
		t.Errorf("Expected StopSweepLimitExceeded, got %v", flat.Flag)
	}
	if flat.NCall != 40 || flat.NCloc != 12 {
		t.Errorf("Counters not copied: ncall=%d ncloc=%d", flat.NCall, flat.NCloc)
	}

	// The flat form does not alias the optimizer's slices
	res.BestPoint[0] = 99
	if flat.BestPoint[0] != 1 {
		t.Error("BestPoint aliases the source result")
	}
}

func TestMarshalEmptyMinima(t *testing.T) {
	flat, err := Marshal(&mcs.Result{BestPoint: []float64{0, 0, 0}, Flag: mcs.NormalShutdown}, 3)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if flat.Count != 0 || len(flat.MinimaPoints) != 0 || len(flat.MinimaValues) != 0 {
		t.Errorf("Expected empty minima, got count %d", flat.Count)
	}
}

func TestMarshalRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		res  *mcs.Result
	}{
		{"nil", nil},
		{"short best", &mcs.Result{BestPoint: []float64{1}}},
		{"count mismatch", &mcs.Result{BestPoint: []float64{1, 2}, MinimaPoints: [][]float64{{1, 2}}}},
		{"short minimum", &mcs.Result{BestPoint: []float64{1, 2}, MinimaPoints: [][]float64{{1}}, MinimaValues: []float64{0}}},
		{"unknown flag", &mcs.Result{BestPoint: []float64{1, 2}, Flag: mcs.ExitFlag(7)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Marshal(tt.res, 2); !errors.Is(err, ErrOptimizer) {
				t.Errorf("Expected OptimizerError, got %v", err)
			}
		})
	}
}

func TestExitCodeString(t *testing.T) {
	if ExitStopNFExceeded.String() != "StopEvalLimitExceeded" {
		t.Errorf("Unexpected name %q", ExitStopNFExceeded.String())
	}
	if ExitCode(5).String() != "ExitCode(5)" {
		t.Errorf("Unexpected name %q", ExitCode(5).String())
	}
}
