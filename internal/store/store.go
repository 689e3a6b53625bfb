// Package store persists optimization runs and their per-sweep traces on
// the filesystem.
package store

// Store persists run records.
//
// Error conventions:
//   - Load and Delete return ErrNotFound for unknown run IDs
//   - other failures are wrapped with fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRun atomically writes the record, replacing any previous one.
	SaveRun(record *RunRecord) error

	// LoadRun reads the record for runID.
	LoadRun(runID string) (*RunRecord, error)

	// ListRuns returns metadata for every readable record. Directories
	// without a record and unreadable records are skipped.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the run directory, record and trace included.
	DeleteRun(runID string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
