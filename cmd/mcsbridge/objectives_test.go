package main

import (
	"math"
	"testing"
)

func TestObjectivesAtKnownMinima(t *testing.T) {
	const n = 4
	tests := []struct {
		name string
		x    []float64
		want float64
	}{
		{"sphere", []float64{0, 0, 0, 0}, 0},
		{"shifted-sphere", shiftedCenter(n), 0},
		{"rastrigin", []float64{0, 0, 0, 0}, 0},
		{"rosenbrock", []float64{1, 1, 1, 1}, 0},
		{"constant", []float64{0.3, -0.2, 0.9, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := lookupObjective(tt.name, n)
			if err != nil {
				t.Fatalf("lookupObjective failed: %v", err)
			}
			if got := f(tt.x); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("f(%v) = %g, want %g", tt.x, got, tt.want)
			}
		})
	}
}

func TestObjectivesAwayFromMinima(t *testing.T) {
	x := []float64{0.5, 0.5}
	if got := sphere(x); got != 0.5 {
		t.Errorf("sphere = %g, want 0.5", got)
	}
	if got := rosenbrock([]float64{0, 0}); got != 1 {
		t.Errorf("rosenbrock(0, 0) = %g, want 1", got)
	}
	if got := rastrigin(x); math.Abs(got-40.5) > 1e-9 {
		t.Errorf("rastrigin = %g, want 40.5", got)
	}
}

func TestShiftedCenterInsideDefaultBounds(t *testing.T) {
	for i, c := range shiftedCenter(12) {
		if c < -1 || c > 1 {
			t.Errorf("center[%d] = %g outside [-1, 1]", i, c)
		}
	}
}

func TestLookupUnknownObjective(t *testing.T) {
	if _, err := lookupObjective("himmelblau", 2); err == nil {
		t.Error("Expected error for unknown objective")
	}
	names := objectiveNames()
	if len(names) != len(objectives) || names[0] != "constant" {
		t.Errorf("Unexpected sorted names: %v", names)
	}
}
