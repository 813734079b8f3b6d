// Package export renders estimation results for the people who consume
// them: XLSX workbooks for the account team, plain-text summaries for the
// terminal, and Opportunity upserts for Salesforce.
package export

import (
	"github.com/scopecraft/presales-cli/internal/costing"
	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/internal/normalize"
	"github.com/scopecraft/presales-cli/internal/timeline"
)

// Summary bundles everything one export can render. Nil sections are
// simply left out.
type Summary struct {
	Assessment *model.Assessment
	Estimates  *normalize.BatchResult
	Cost       *costing.Result
	Timeline   *timeline.Allocation
}

// estimateColumns returns the union of column names across all estimates,
// in first-appearance order.
func estimateColumns(ests []normalize.ItemEstimate) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range ests {
		for _, c := range e.Columns {
			if !seen[c.Column] {
				seen[c.Column] = true
				out = append(out, c.Column)
			}
		}
	}
	return out
}

// columnFinal returns an item's final hours for one column.
func columnFinal(e normalize.ItemEstimate, column string) (float64, bool) {
	for _, c := range e.Columns {
		if c.Column == column {
			return c.Final, true
		}
	}
	return 0, false
}

// reportLine is one labelled figure in a cost or revenue breakdown. The
// workbook and the text report render the same lines in the same order.
type reportLine struct {
	Label string
	Value float64
}

func costLines(c costing.Result) []reportLine {
	return []reportLine{
		{"Total salaries", c.TotalSalaries},
		{"Project duration (months)", c.ProjectDurationMonths},
		{"Warranty", c.WarrantyCost},
		{"Operational cost", c.OperationalCost},
		{"Financing cost", c.FinancingCost},
		{"Overhead cost", c.OverheadCost},
		{"External commission", c.ExternalCommission},
		{"Tax", c.TaxCost},
		{"Sales commission", c.SalesCommission},
		{"Base cost", c.BaseCost},
		{"Cost commission", c.CostCommission},
		{"Total cost", c.TotalCost},
	}
}

func revenueLines(c costing.Result) []reportLine {
	return []reportLine{
		{"Project value", c.ProjectValue},
		{"Price after multiplier", c.PriceAfterMultiplier},
		{"Discount", c.DiscountAmount},
		{"Price after discount", c.PriceAfterDiscount},
		{"Total cost", c.TotalCost},
		{"Profit", c.ProfitAmount},
		{"Profit margin %", c.ProfitPercent},
	}
}
