package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/thronewatch"
	"github.com/fwojciec/thronewatch/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunService_CreateRun(t *testing.T) {
	t.Parallel()

	t.Run("creates run with generated ID", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		run := &thronewatch.Run{
			TargetKey:  key,
			Status:     thronewatch.RunChanged,
			StartedAt:  takenAt,
			FinishedAt: takenAt.Add(2 * time.Second),
		}

		err := svc.CreateRun(context.Background(), run)

		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
	})

	t.Run("returns error for invalid run", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))

		err := svc.CreateRun(context.Background(), &thronewatch.Run{})

		assert.Equal(t, thronewatch.EINVALID, thronewatch.ErrorCode(err))
	})
}

func TestRunService_FindRuns(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, svc *sqlite.RunService) {
		t.Helper()
		ctx := context.Background()
		runs := []*thronewatch.Run{
			{TargetKey: key, Status: thronewatch.RunInitial, ItemCount: 3, Added: 3, StartedAt: takenAt, FinishedAt: takenAt},
			{TargetKey: key, Status: thronewatch.RunExtractionFailed, Error: "no wishlist items found", StartedAt: takenAt.Add(time.Hour), FinishedAt: takenAt.Add(time.Hour)},
			{TargetKey: "https://throne.com/u/bob/wishlist", Status: thronewatch.RunUnchanged, StartedAt: takenAt.Add(2 * time.Hour), FinishedAt: takenAt.Add(2 * time.Hour)},
		}
		for _, run := range runs {
			require.NoError(t, svc.CreateRun(ctx, run))
		}
	}

	t.Run("returns most recent first", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		seed(t, svc)

		runs, err := svc.FindRuns(context.Background(), thronewatch.RunFilter{})

		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, thronewatch.RunUnchanged, runs[0].Status)
		assert.Equal(t, thronewatch.RunInitial, runs[2].Status)
		assert.Equal(t, 3, runs[2].Added)
		assert.Equal(t, takenAt, runs[2].StartedAt)
	})

	t.Run("filters by target and status", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		seed(t, svc)
		target := key
		status := thronewatch.RunExtractionFailed

		runs, err := svc.FindRuns(context.Background(), thronewatch.RunFilter{TargetKey: &target, Status: &status})

		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "no wishlist items found", runs[0].Error)
	})

	t.Run("paginates", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		seed(t, svc)
		ctx := context.Background()

		page, err := svc.FindRuns(ctx, thronewatch.RunFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, page, 2)

		rest, err := svc.FindRuns(ctx, thronewatch.RunFilter{Offset: 2})
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, thronewatch.RunInitial, rest[0].Status)
	})
}
