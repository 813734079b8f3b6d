// Package refstats computes reference baselines from historical estimate
// observations. Baselines feed the normalizer's shrinkage step and bias it
// toward what comparable work actually took.
package refstats

import (
	"math"
	"sort"
	"strings"

	"github.com/scopecraft/presales-cli/internal/model"
)

// Baseline holds the optional statistics computed from one comparable
// sample. Has* guards tell the two values apart from a true zero.
type Baseline struct {
	Median     float64 `json:"median"`
	GeoMean    float64 `json:"geo_mean"`
	HasMedian  bool    `json:"has_median"`
	HasGeoMean bool    `json:"has_geo_mean"`
	SampleSize int     `json:"sample_size"`
	// Source records which fallback produced the sample: "item" or
	// "category". Empty when no sample was found.
	Source string `json:"source,omitempty"`
}

// Selected returns the baseline value used for shrinkage: the smaller of
// median and geometric mean when both exist, else whichever exists. The
// conservative pick keeps historical data from inflating estimates.
func (b Baseline) Selected() (float64, bool) {
	switch {
	case b.HasMedian && b.HasGeoMean:
		return math.Min(b.Median, b.GeoMean), true
	case b.HasMedian:
		return b.Median, true
	case b.HasGeoMean:
		return b.GeoMean, true
	default:
		return 0, false
	}
}

// Compute derives a baseline from raw hour values. Non-positive values are
// excluded from the sample before either statistic is taken.
func Compute(hours []float64) Baseline {
	sample := make([]float64, 0, len(hours))
	for _, h := range hours {
		if h > 0 {
			sample = append(sample, h)
		}
	}
	if len(sample) == 0 {
		return Baseline{}
	}
	return Baseline{
		Median:     median(sample),
		GeoMean:    geoMean(sample),
		HasMedian:  true,
		HasGeoMean: true,
		SampleSize: len(sample),
	}
}

// median averages the two middle values for even-length samples.
func median(sample []float64) float64 {
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// geoMean works in log space to avoid overflow on long samples. Callers
// guarantee strictly positive input.
func geoMean(sample []float64) float64 {
	var logSum float64
	for _, v := range sample {
		logSum += math.Log(v)
	}
	return math.Exp(logSum / float64(len(sample)))
}

// BaselineFor builds the baseline for one item and column from historical
// observations. Observations matching the item identifier are preferred;
// only when none exist does the sample widen to the whole category. All
// matching is case-insensitive.
func BaselineFor(obs []model.RefObservation, itemID string, category model.Category, column string) Baseline {
	var byItem, byCategory []float64
	for _, o := range obs {
		if !strings.EqualFold(strings.TrimSpace(o.Column), strings.TrimSpace(column)) {
			continue
		}
		if itemID != "" && strings.EqualFold(strings.TrimSpace(o.ItemID), strings.TrimSpace(itemID)) {
			byItem = append(byItem, o.Hours)
			continue
		}
		if o.Category == category {
			byCategory = append(byCategory, o.Hours)
		}
	}

	if b := Compute(byItem); b.SampleSize > 0 {
		b.Source = "item"
		return b
	}
	if b := Compute(byCategory); b.SampleSize > 0 {
		b.Source = "category"
		return b
	}
	return Baseline{}
}
