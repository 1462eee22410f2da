package sqlite

import (
	"context"
	"strings"

	"github.com/fwojciec/thronewatch"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ thronewatch.RunService = (*RunService)(nil)

// RunService implements thronewatch.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun records a run with a generated ID.
func (s *RunService) CreateRun(ctx context.Context, run *thronewatch.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, target_key, status, strategy, item_count, added, removed, price_changes, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.TargetKey, string(run.Status), run.Strategy, run.ItemCount, run.Added, run.Removed,
		run.PriceChanges, run.Error, formatTime(run.StartedAt), formatTime(run.FinishedAt))

	return err
}

// FindRuns retrieves runs matching the filter, most recent first.
func (s *RunService) FindRuns(ctx context.Context, filter thronewatch.RunFilter) ([]*thronewatch.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, target_key, status, strategy, item_count, added, removed, price_changes, error, started_at, finished_at
		FROM runs WHERE 1=1`)

	if filter.TargetKey != nil {
		query.WriteString(" AND target_key = ?")
		args = append(args, *filter.TargetKey)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*thronewatch.Run
	for rows.Next() {
		var run thronewatch.Run
		var status, startedAt, finishedAt string

		if err := rows.Scan(&run.ID, &run.TargetKey, &status, &run.Strategy, &run.ItemCount, &run.Added,
			&run.Removed, &run.PriceChanges, &run.Error, &startedAt, &finishedAt); err != nil {
			return nil, err
		}

		run.Status = thronewatch.RunStatus(status)
		if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			return nil, err
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}
