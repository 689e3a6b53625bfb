package opt

import "github.com/cwbudde/mcsbridge/internal/mcs"

// MCSAdapter runs the multilevel coordinate search
type MCSAdapter struct{}

// NewMCS creates the MCS optimizer
func NewMCS() Optimizer {
	return &MCSAdapter{}
}

// Run executes the search
func (m *MCSAdapter) Run(f mcs.Objective, lower, upper []float64, p mcs.Params) (*mcs.Result, error) {
	return mcs.Run(f, lower, upper, p)
}
