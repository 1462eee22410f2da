package thronewatch

import (
	"context"
	"time"
)

// RunStatus describes the outcome of processing one target once.
type RunStatus string

// RunStatus constants.
const (
	RunChanged          RunStatus = "changed"
	RunUnchanged        RunStatus = "unchanged"
	RunInitial          RunStatus = "initial"
	RunFetchFailed      RunStatus = "fetch_failed"
	RunExtractionFailed RunStatus = "extraction_failed"
	RunFailed           RunStatus = "failed"
)

// Valid reports whether s is one of the RunStatus constants.
func (s RunStatus) Valid() bool {
	switch s {
	case RunChanged, RunUnchanged, RunInitial, RunFetchFailed, RunExtractionFailed, RunFailed:
		return true
	}
	return false
}

// Run records one pass over a target. Only counts are kept; change reports
// themselves are never persisted.
type Run struct {
	ID           string    `json:"id"`
	TargetKey    string    `json:"targetKey"`
	Status       RunStatus `json:"status"`
	Strategy     string    `json:"strategy"`
	ItemCount    int       `json:"itemCount"`
	Added        int       `json:"added"`
	Removed      int       `json:"removed"`
	PriceChanges int       `json:"priceChanges"`
	Error        string    `json:"error"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.TargetKey == "" {
		return Errorf(EINVALID, "run target key required")
	}
	if r.Status == "" {
		return Errorf(EINVALID, "run status required")
	}
	if !r.Status.Valid() {
		return Errorf(EINVALID, "invalid run status %q", r.Status)
	}
	return nil
}

// RunService represents a service for recording runs.
type RunService interface {
	// CreateRun records a run. The ID is generated.
	CreateRun(ctx context.Context, run *Run) error

	// FindRuns retrieves runs matching the filter, most recent first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	TargetKey *string    `json:"targetKey"`
	Status    *RunStatus `json:"status"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
