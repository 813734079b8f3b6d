package refstats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopecraft/presales-cli/internal/model"
)

func TestComputeMedian(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		hours []float64
		want  float64
	}{
		{"odd sample", []float64{8, 2, 4}, 4},
		{"even sample midpoint", []float64{1, 2, 3, 4}, 2.5},
		{"single value", []float64{16}, 16},
		{"non-positive excluded", []float64{0, -3, 10, 20}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := Compute(tt.hours)
			require.True(t, b.HasMedian)
			assert.InDelta(t, tt.want, b.Median, 1e-9)
		})
	}
}

func TestComputeGeoMean(t *testing.T) {
	t.Parallel()

	b := Compute([]float64{2, 8})
	require.True(t, b.HasGeoMean)
	assert.InDelta(t, 4.0, b.GeoMean, 1e-9) // sqrt(2*8)

	b = Compute([]float64{3, 3, 3})
	assert.InDelta(t, 3.0, b.GeoMean, 1e-9)
}

func TestComputeEmptySample(t *testing.T) {
	t.Parallel()

	for _, hours := range [][]float64{nil, {}, {0}, {-1, -2}} {
		b := Compute(hours)
		assert.False(t, b.HasMedian)
		assert.False(t, b.HasGeoMean)
		assert.Zero(t, b.SampleSize)
		_, ok := b.Selected()
		assert.False(t, ok)
	}
}

func TestSelectedPrefersSmaller(t *testing.T) {
	t.Parallel()

	// Skewed sample: median 4, geomean sqrt-ish below the arithmetic pull
	// of the outlier.
	b := Compute([]float64{2, 4, 100})
	sel, ok := b.Selected()
	require.True(t, ok)
	assert.InDelta(t, math.Min(b.Median, b.GeoMean), sel, 1e-9)
	assert.Equal(t, 4.0, b.Median)

	only := Baseline{Median: 12, HasMedian: true}
	sel, ok = only.Selected()
	require.True(t, ok)
	assert.Equal(t, 12.0, sel)

	only = Baseline{GeoMean: 7, HasGeoMean: true}
	sel, ok = only.Selected()
	require.True(t, ok)
	assert.Equal(t, 7.0, sel)
}

func TestBaselineForPrefersItemMatches(t *testing.T) {
	t.Parallel()

	obs := []model.RefObservation{
		{ItemID: "Login Screen", Category: model.CategoryNewUI, Column: "Dev Hours", Hours: 30},
		{ItemID: "login screen", Category: model.CategoryNewUI, Column: "Dev Hours", Hours: 34},
		{ItemID: "Dashboard", Category: model.CategoryNewUI, Column: "Dev Hours", Hours: 80},
		{ItemID: "Login Screen", Category: model.CategoryNewUI, Column: "QA Hours", Hours: 12},
	}

	b := BaselineFor(obs, "LOGIN SCREEN", model.CategoryNewUI, "dev hours")
	require.Equal(t, "item", b.Source)
	assert.Equal(t, 2, b.SampleSize)
	assert.InDelta(t, 32.0, b.Median, 1e-9) // (30+34)/2
}

func TestBaselineForCategoryFallback(t *testing.T) {
	t.Parallel()

	obs := []model.RefObservation{
		{ItemID: "Dashboard", Category: model.CategoryNewUI, Column: "Dev Hours", Hours: 40},
		{ItemID: "Reports", Category: model.CategoryNewUI, Column: "Dev Hours", Hours: 60},
		{ItemID: "Importer", Category: model.CategoryNewBackgrounder, Column: "Dev Hours", Hours: 20},
	}

	b := BaselineFor(obs, "Login Screen", model.CategoryNewUI, "Dev Hours")
	require.Equal(t, "category", b.Source)
	assert.Equal(t, 2, b.SampleSize)
	assert.InDelta(t, 50.0, b.Median, 1e-9)
}

func TestBaselineForNoMatches(t *testing.T) {
	t.Parallel()

	obs := []model.RefObservation{
		{ItemID: "Dashboard", Category: model.CategoryNewUI, Column: "Dev Hours", Hours: 40},
	}

	b := BaselineFor(obs, "Login Screen", model.CategoryAdjustLogic, "Dev Hours")
	assert.Empty(t, b.Source)
	_, ok := b.Selected()
	assert.False(t, ok)

	// Column mismatch also yields nothing.
	b = BaselineFor(obs, "Dashboard", model.CategoryNewUI, "QA Hours")
	assert.Empty(t, b.Source)
}

func TestRefObservationsFrom(t *testing.T) {
	t.Parallel()

	hours := model.NewFoldMap[float64]()
	hours.Set("Dev Hours", 24)
	hours.Set("QA Hours", 8)

	skipped := model.NewFoldMap[float64]()
	skipped.Set("Dev Hours", 99)

	items := []model.ScopeItem{
		{ID: "Login", Category: model.CategoryNewUI, Hours: hours, IsNeeded: true},
		{ID: "Dropped", Category: model.CategoryNewUI, Hours: skipped, IsNeeded: false},
	}

	obs := model.RefObservationsFrom(items)
	require.Len(t, obs, 2)
	assert.Equal(t, "Login", obs[0].ItemID)
	assert.Equal(t, "Dev Hours", obs[0].Column)
	assert.Equal(t, 24.0, obs[0].Hours)
	assert.Equal(t, "QA Hours", obs[1].Column)
}
