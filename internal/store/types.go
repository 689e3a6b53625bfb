package store

import (
	"time"

	"github.com/google/uuid"
)

// RunConfig records how a run was started.
type RunConfig struct {
	Objective string    `json:"objective"`
	Engine    string    `json:"engine"`
	N         int       `json:"n"`
	SMax      int       `json:"smax"`
	Lower     []float64 `json:"lower"`
	Upper     []float64 `json:"upper"`
	MaxSweeps int       `json:"maxSweeps"`
	MaxEvals  int       `json:"maxEvals"`
	Local     int       `json:"local"`
	Gamma     float64   `json:"gamma"`
}

// RunRecord is the persisted outcome of one run.
type RunRecord struct {
	RunID  string    `json:"runId"`
	Config RunConfig `json:"config"`

	BestPoint    []float64   `json:"bestPoint"`
	BestValue    float64     `json:"bestValue"`
	MinimaPoints [][]float64 `json:"minimaPoints,omitempty"`
	MinimaValues []float64   `json:"minimaValues,omitempty"`

	NCall  int    `json:"ncall"`
	NCloc  int    `json:"ncloc"`
	Flag   string `json:"flag"`
	Sweeps int    `json:"sweeps"`

	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// RunInfo is the listing view of a RunRecord.
type RunInfo struct {
	RunID     string    `json:"runId"`
	Objective string    `json:"objective"`
	Engine    string    `json:"engine"`
	N         int       `json:"n"`
	BestValue float64   `json:"bestValue"`
	Flag      string    `json:"flag"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// ToInfo converts a record to its listing view.
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		RunID:     r.RunID,
		Objective: r.Config.Objective,
		Engine:    r.Config.Engine,
		N:         r.Config.N,
		BestValue: r.BestValue,
		Flag:      r.Flag,
		Timestamp: r.Timestamp,
	}
}

// Validate checks the record for missing or inconsistent fields.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if r.Config.N <= 0 {
		return &ValidationError{Field: "Config.N", Reason: "must be positive"}
	}
	if len(r.BestPoint) != r.Config.N {
		return &ValidationError{Field: "BestPoint", Reason: "length must equal Config.N"}
	}
	if len(r.MinimaPoints) != len(r.MinimaValues) {
		return &ValidationError{Field: "MinimaValues", Reason: "length must equal MinimaPoints"}
	}
	for _, p := range r.MinimaPoints {
		if len(p) != r.Config.N {
			return &ValidationError{Field: "MinimaPoints", Reason: "every point must have Config.N entries"}
		}
	}
	if r.NCall < 0 || r.NCloc < 0 || r.NCloc > r.NCall {
		return &ValidationError{Field: "NCloc", Reason: "counters must satisfy 0 <= ncloc <= ncall"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	return nil
}

// ValidationError represents an invalid run record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
