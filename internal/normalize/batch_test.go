package normalize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopecraft/presales-cli/internal/model"
)

func TestEstimateBatchCollectsFailures(t *testing.T) {
	t.Parallel()

	n := New(testPolicy())
	items := []model.ScopeItem{
		needItem("Profile Form", "Form with 10 fields.", model.CategoryNewUI),
		needItem("Tweak", "Small change.", model.CategoryAdjustUI), // no band configured
		needItem("Nightly Job", "Nightly sync job with 4 fields.", model.CategoryNewBackgrounder),
	}

	got, err := n.EstimateBatch(context.Background(), items, nil)
	require.NoError(t, err)

	require.Len(t, got.Estimates, 2)
	assert.Equal(t, "Profile Form", got.Estimates[0].Item.ID)
	assert.Equal(t, "Nightly Job", got.Estimates[1].Item.ID)

	require.Len(t, got.Failed, 1)
	assert.Equal(t, "Tweak", got.Failed[0].ItemID)
	assert.ErrorIs(t, got.Failed[0].Err, ErrBandNotFound)
	assert.NotEmpty(t, got.Failed[0].Reason)
	assert.Greater(t, got.TotalHours(), 0.0)
}

func TestEstimateBatchEmpty(t *testing.T) {
	t.Parallel()

	n := New(testPolicy())
	got, err := n.EstimateBatch(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got.Estimates)
	assert.Empty(t, got.Failed)
	assert.Zero(t, got.TotalHours())
}

func TestEstimateBatchWithWorkers(t *testing.T) {
	t.Parallel()

	n := New(testPolicy(), WithWorkers(1))
	items := []model.ScopeItem{
		needItem("Profile Form", "Form with 10 fields.", model.CategoryNewUI),
		needItem("Nightly Job", "Nightly sync job with 4 fields.", model.CategoryNewBackgrounder),
	}

	got, err := n.EstimateBatch(context.Background(), items, nil)
	require.NoError(t, err)
	require.Len(t, got.Estimates, 2)
	assert.Equal(t, "Profile Form", got.Estimates[0].Item.ID)

	assert.Equal(t, batchWorkers, New(testPolicy(), WithWorkers(0)).workers)
}

func TestEstimateBatchCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := New(testPolicy())
	items := []model.ScopeItem{needItem("Profile Form", "Form with 10 fields.", model.CategoryNewUI)}
	_, err := n.EstimateBatch(ctx, items, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
