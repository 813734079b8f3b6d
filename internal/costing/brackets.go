package costing

import (
	"math"

	"github.com/scopecraft/presales-cli/internal/model"
)

// ApplyCommission runs amount through a progressive bracket set, the same
// way tax brackets work. Brackets are walked in order: each tier with a
// positive upper bound taxes min(remaining, bound) at its rate and
// consumes that slice; the first tier with a bound ≤ 0 taxes everything
// still remaining and terminates the walk. Brackets must be pre-sorted
// ascending with the terminal tier last.
func ApplyCommission(brackets []model.CommissionBracket, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	remaining := amount
	var total float64
	for _, b := range brackets {
		if b.UpperBound <= 0 {
			total += remaining * b.RatePercent / 100
			remaining = 0
			break
		}
		slice := math.Min(remaining, b.UpperBound)
		total += slice * b.RatePercent / 100
		remaining -= slice
		if remaining <= 0 {
			break
		}
	}
	return total
}
