package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/flood-control-pipeline/internal/loader"
	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
)

func TestStore_EmptyUntilLoaded(t *testing.T) {
	store := NewStore()

	assert.False(t, store.Loaded())
	_, err := store.Snapshot()
	assert.True(t, errors.Is(err, ErrNotLoaded))
}

func TestStore_ReplaceWholesale(t *testing.T) {
	store := NewStore()

	first := &loader.Result{
		RunID:   "run-1",
		Records: []types.CleanRecord{{Province: "Cebu"}},
		Report:  types.LoadReport{TotalRows: 1, FilteredRows: 1},
	}
	store.Replace(first)

	snap, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "run-1", snap.RunID)
	assert.Len(t, snap.Records, 1)
	assert.False(t, snap.LoadedAt.IsZero())

	second := &loader.Result{
		RunID:   "run-2",
		Records: []types.CleanRecord{{Province: "Bohol"}, {Province: "Leyte"}},
	}
	store.Replace(second)

	snap, err = store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "run-2", snap.RunID)
	assert.Len(t, snap.Records, 2)
}

func TestStore_FailedLoadKeepsPrevious(t *testing.T) {
	store := NewStore()
	store.Replace(&loader.Result{RunID: "run-1"})

	got := store.Replace(nil)
	require.NotNil(t, got)
	assert.Equal(t, "run-1", got.RunID)

	snap, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "run-1", snap.RunID)
}
