package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whenever-go/whenever/internal/executor"
	"github.com/whenever-go/whenever/internal/model"
)

func openTestRing(t *testing.T, capacity int) *Ring {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	r, err := Open(path, capacity)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestStoreAndRecent(t *testing.T) {
	r := openTestRing(t, 0)
	ctx := context.Background()

	err := r.RecordFire(ctx, "c1", time.Now(), model.OutcomeSuccess, executor.Result{
		Overall: model.OutcomeSuccess,
		Outcomes: []executor.TaskOutcome{
			{Name: "t1", Outcome: model.OutcomeSuccess, Detail: "ok"},
		},
	})
	require.NoError(t, err)

	recs, err := r.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "c1", recs[0].Condition)
	assert.Equal(t, model.OutcomeSuccess, recs[0].Outcome)
	require.Len(t, recs[0].Tasks, 1)
	assert.Equal(t, "t1", recs[0].Tasks[0].Task)
}

func TestRingTrimsToCapacity(t *testing.T) {
	r := openTestRing(t, 2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := r.RecordFire(ctx, "c1", time.Now(), model.OutcomeSuccess, executor.Result{Overall: model.OutcomeSuccess})
		require.NoError(t, err)
	}

	recs, err := r.Recent(ctx, "", 100)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestRecentFiltersByCondition(t *testing.T) {
	r := openTestRing(t, 0)
	ctx := context.Background()

	require.NoError(t, r.RecordFire(ctx, "c1", time.Now(), model.OutcomeSuccess, executor.Result{}))
	require.NoError(t, r.RecordFire(ctx, "c2", time.Now(), model.OutcomeFailure, executor.Result{}))

	recs, err := r.Recent(ctx, "c2", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "c2", recs[0].Condition)
}
