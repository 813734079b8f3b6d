// Package costing implements the cost/revenue model: role salaries,
// warranty, financing, overhead, commissions, tax, and profitability.
// Calculate is a pure function; every run recomputes the whole model from
// its inputs.
package costing

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/model"
)

// workDaysPerMonth converts man-days to calendar months of effort.
const workDaysPerMonth = 20.0

// ErrRateCardNotFound marks a rate-card key with no configured card.
var ErrRateCardNotFound = eris.New("costing: rate card not found")

// RoleManDays is the model's effort input for one role. PeakDailyEffort
// carries the maximum daily effort seen in a timeline, when one exists; it
// is the last headcount fallback.
type RoleManDays struct {
	Role            string  `json:"role"`
	ManDays         float64 `json:"man_days"`
	PeakDailyEffort float64 `json:"peak_daily_effort,omitempty"`
}

// RoleCostRow is the computed cost side for one role.
type RoleCostRow struct {
	Role            string  `json:"role"`
	Headcount       float64 `json:"headcount"`
	MonthlySalary   float64 `json:"monthly_salary"`
	BestCaseMonths  float64 `json:"best_case_months"`
	WorstCaseMonths float64 `json:"worst_case_months"`
	TotalCost       float64 `json:"total_cost"`
}

// RevenueRow is the computed revenue side for one role.
type RevenueRow struct {
	Role      string  `json:"role"`
	ManDays   float64 `json:"man_days"`
	DailyRate float64 `json:"daily_rate"`
	Price     float64 `json:"price"`
}

// Result is the full cost/revenue breakdown. Values stay at full precision
// internally; call Rounded before showing them to anyone.
type Result struct {
	RoleCosts             []RoleCostRow `json:"role_costs"`
	Revenue               []RevenueRow  `json:"revenue"`
	TotalSalaries         float64       `json:"total_salaries"`
	ProjectDurationMonths float64       `json:"project_duration_months"`
	WarrantyCost          float64       `json:"warranty_cost"`
	ProjectValue          float64       `json:"project_value"`
	PriceAfterMultiplier  float64       `json:"price_after_multiplier"`
	DiscountAmount        float64       `json:"discount_amount"`
	PriceAfterDiscount    float64       `json:"price_after_discount"`
	OperationalCost       float64       `json:"operational_cost"`
	FinancingCost         float64       `json:"financing_cost"`
	OverheadCost          float64       `json:"overhead_cost"`
	ExternalCommission    float64       `json:"external_commission"`
	TaxCost               float64       `json:"tax_cost"`
	SalesCommission       float64       `json:"sales_commission"`
	BaseCost              float64       `json:"base_cost"`
	CostCommission        float64       `json:"cost_commission"`
	TotalCost             float64       `json:"total_cost"`
	ProfitAmount          float64       `json:"profit_amount"`
	ProfitPercent         float64       `json:"profit_percent"`
}

// Calculator binds the cost configuration. Safe for concurrent use; the
// configuration is treated as immutable.
type Calculator struct {
	cfg model.CostModelConfig
}

// NewCalculator returns a calculator over the given configuration.
func NewCalculator(cfg model.CostModelConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Config returns the bound configuration.
func (c *Calculator) Config() model.CostModelConfig {
	return c.cfg
}

// Calculate runs the whole model over per-role man-days. Inputs are
// normalized first (percentages clamped non-negative, multiplier floored),
// so any caller value produces a computable result. The only error is a
// rate-card key that resolves to nothing.
func (c *Calculator) Calculate(manDays []RoleManDays, in model.CostInputs) (Result, error) {
	in = in.Normalized()

	cardKey := in.RateCardKey
	if cardKey == "" {
		cardKey = c.cfg.DefaultRateKey
	}
	card, ok := c.cfg.RateCard(cardKey)
	if !ok {
		return Result{}, eris.Wrapf(ErrRateCardNotFound, "key %q", cardKey)
	}

	var res Result

	// Salaries and durations per role. The longest worst-case duration
	// becomes the project duration.
	for _, rmd := range manDays {
		row := RoleCostRow{Role: rmd.Role}
		if role, ok := c.cfg.Role(rmd.Role); ok {
			row.MonthlySalary = role.MonthlySalary
			row.Headcount = c.headcount(rmd, role.DefaultHeadcount, in)
		} else {
			row.Headcount = c.headcount(rmd, 0, in)
		}
		row.BestCaseMonths = rmd.ManDays / workDaysPerMonth
		row.WorstCaseMonths = row.BestCaseMonths * (1 + in.WorstCaseBufferPercent/100)
		row.TotalCost = row.Headcount * row.MonthlySalary * row.WorstCaseMonths

		res.TotalSalaries += row.TotalCost
		if row.WorstCaseMonths > res.ProjectDurationMonths {
			res.ProjectDurationMonths = row.WorstCaseMonths
		}
		res.RoleCosts = append(res.RoleCosts, row)
	}

	res.WarrantyCost = c.warrantyCost(res.RoleCosts, in.WarrantyMonths)

	// Revenue side: rate card prices, multiplier, discount.
	for _, rmd := range manDays {
		rate, _ := card.Get(rmd.Role)
		row := RevenueRow{
			Role:      rmd.Role,
			ManDays:   rmd.ManDays,
			DailyRate: rate,
			Price:     rmd.ManDays * rate,
		}
		res.ProjectValue += row.Price
		res.Revenue = append(res.Revenue, row)
	}
	res.PriceAfterMultiplier = res.ProjectValue * in.Multiplier
	res.DiscountAmount = res.PriceAfterMultiplier * in.DiscountPercent / 100
	res.PriceAfterDiscount = res.PriceAfterMultiplier - res.DiscountAmount

	res.OperationalCost = in.OperationalCostPercent / 100 * res.PriceAfterDiscount
	res.FinancingCost = in.InterestRatePercent / 100 *
		((res.ProjectDurationMonths + in.PaymentDelayMonths) / 12) *
		(res.TotalSalaries + res.WarrantyCost + res.OperationalCost)
	res.OverheadCost = in.OverheadPercent / 100 *
		(res.TotalSalaries + res.WarrantyCost + res.FinancingCost)

	if in.CommissionMode == model.CommissionManual {
		res.ExternalCommission = in.ExternalCommissionAmount
	} else {
		res.ExternalCommission = in.ExternalCommissionPercent / 100 * res.PriceAfterDiscount
	}
	res.TaxCost = in.TaxPercent / 100 * res.PriceAfterDiscount

	res.SalesCommission = ApplyCommission(c.cfg.SalesBrackets, res.PriceAfterDiscount)
	res.BaseCost = res.TotalSalaries + res.WarrantyCost + res.FinancingCost +
		res.OverheadCost + res.ExternalCommission + res.OperationalCost +
		res.TaxCost + res.SalesCommission
	res.CostCommission = ApplyCommission(c.cfg.CostBrackets, res.BaseCost)
	res.TotalCost = res.BaseCost + res.CostCommission

	res.ProfitAmount = res.PriceAfterDiscount - res.TotalCost
	if res.PriceAfterDiscount != 0 {
		res.ProfitPercent = res.ProfitAmount / res.PriceAfterDiscount * 100
	}

	zap.L().Debug("costing: calculated",
		zap.Float64("project_value", res.ProjectValue),
		zap.Float64("total_cost", res.TotalCost),
		zap.Float64("profit_percent", res.ProfitPercent))
	return res, nil
}

// headcount resolves one role's resource count: explicit override first,
// then the configured default, then the ceiling of the timeline's peak
// daily effort, then 1.
func (c *Calculator) headcount(rmd RoleManDays, configured float64, in model.CostInputs) float64 {
	if override, ok := in.HeadcountOverrides.Get(rmd.Role); ok && override > 0 {
		return override
	}
	if configured > 0 {
		return configured
	}
	if rmd.PeakDailyEffort > 0 {
		return math.Ceil(rmd.PeakDailyEffort)
	}
	return 1
}

// Warranty staffing is looked up through ordered candidate chains rather
// than exact names, because packs name these roles differently. Each chain
// is tried exact-match first, then by prefix/suffix.
var (
	analystChain   = []string{"Business Analyst", "BA", "Analyst"}
	developerChain = []string{"Junior Programmer", "Programmer Junior", "Junior", "Programmer", "Developer"}
)

// warrantyCost covers the support window after delivery: one analyst plus
// one developer presence at project headcount for the warranty months.
func (c *Calculator) warrantyCost(rows []RoleCostRow, months float64) float64 {
	if months <= 0 {
		return 0
	}
	var cost float64
	if row, ok := findRoleRow(rows, analystChain); ok {
		cost += row.Headcount * row.MonthlySalary
	}
	if row, ok := findRoleRow(rows, developerChain); ok {
		cost += row.Headcount * row.MonthlySalary
	}
	return cost * months
}

// findRoleRow tries every candidate as an exact case-insensitive match
// before falling back to prefix/suffix matching. The chain order is part
// of the model's observable behavior; do not replace with fuzzy scoring.
func findRoleRow(rows []RoleCostRow, chain []string) (RoleCostRow, bool) {
	for _, cand := range chain {
		for _, r := range rows {
			if strings.EqualFold(strings.TrimSpace(r.Role), cand) {
				return r, true
			}
		}
	}
	for _, cand := range chain {
		f := strings.ToLower(cand)
		for _, r := range rows {
			name := strings.ToLower(strings.TrimSpace(r.Role))
			if strings.HasPrefix(name, f) || strings.HasSuffix(name, f) {
				return r, true
			}
		}
	}
	return RoleCostRow{}, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Rounded returns a copy with every figure rounded to 2 decimal places.
// Rounding happens only here, at the exposure boundary, never inside the
// model.
func (r Result) Rounded() Result {
	out := r
	out.RoleCosts = make([]RoleCostRow, len(r.RoleCosts))
	for i, row := range r.RoleCosts {
		row.Headcount = round2(row.Headcount)
		row.MonthlySalary = round2(row.MonthlySalary)
		row.BestCaseMonths = round2(row.BestCaseMonths)
		row.WorstCaseMonths = round2(row.WorstCaseMonths)
		row.TotalCost = round2(row.TotalCost)
		out.RoleCosts[i] = row
	}
	out.Revenue = make([]RevenueRow, len(r.Revenue))
	for i, row := range r.Revenue {
		row.ManDays = round2(row.ManDays)
		row.DailyRate = round2(row.DailyRate)
		row.Price = round2(row.Price)
		out.Revenue[i] = row
	}
	out.TotalSalaries = round2(r.TotalSalaries)
	out.ProjectDurationMonths = round2(r.ProjectDurationMonths)
	out.WarrantyCost = round2(r.WarrantyCost)
	out.ProjectValue = round2(r.ProjectValue)
	out.PriceAfterMultiplier = round2(r.PriceAfterMultiplier)
	out.DiscountAmount = round2(r.DiscountAmount)
	out.PriceAfterDiscount = round2(r.PriceAfterDiscount)
	out.OperationalCost = round2(r.OperationalCost)
	out.FinancingCost = round2(r.FinancingCost)
	out.OverheadCost = round2(r.OverheadCost)
	out.ExternalCommission = round2(r.ExternalCommission)
	out.TaxCost = round2(r.TaxCost)
	out.SalesCommission = round2(r.SalesCommission)
	out.BaseCost = round2(r.BaseCost)
	out.CostCommission = round2(r.CostCommission)
	out.TotalCost = round2(r.TotalCost)
	out.ProfitAmount = round2(r.ProfitAmount)
	out.ProfitPercent = round2(r.ProfitPercent)
	return out
}
