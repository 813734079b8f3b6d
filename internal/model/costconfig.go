package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// RoleCost is one delivery role's cost configuration. The position of a
// role in the configured list is its display order, used when sorting
// cost rows and timeline rows.
type RoleCost struct {
	Name             string  `yaml:"name" json:"name"`
	MonthlySalary    float64 `yaml:"monthly_salary" json:"monthly_salary"`
	DefaultHeadcount float64 `yaml:"default_headcount" json:"default_headcount"`
}

// CommissionBracket is one progressive-rate tier. UpperBound is the slice
// of the amount the tier's rate applies to; a bound ≤ 0 marks the terminal
// bracket that consumes the whole remainder and must come last.
type CommissionBracket struct {
	UpperBound  float64 `yaml:"upper_bound" json:"upper_bound"`
	RatePercent float64 `yaml:"rate_percent" json:"rate_percent"`
}

// ValidateBrackets checks that only the final bracket, if any, is terminal.
func ValidateBrackets(brackets []CommissionBracket) error {
	for i, b := range brackets {
		if b.UpperBound <= 0 && i != len(brackets)-1 {
			return eris.Errorf("brackets: terminal bracket at position %d is not last", i)
		}
	}
	return nil
}

// CommissionMode selects how the external commission is determined.
type CommissionMode string

const (
	// CommissionPercent derives the commission from a percentage of the
	// discounted price.
	CommissionPercent CommissionMode = "percent"
	// CommissionManual uses a fixed caller-supplied amount.
	CommissionManual CommissionMode = "manual"
)

// ParseCommissionMode matches s case-insensitively, defaulting to percent.
func ParseCommissionMode(s string) CommissionMode {
	if strings.EqualFold(strings.TrimSpace(s), string(CommissionManual)) {
		return CommissionManual
	}
	return CommissionPercent
}

// CostModelConfig is the read-only configuration half of the cost model:
// role salaries, daily rate cards, and the two progressive bracket sets.
type CostModelConfig struct {
	Roles          []RoleCost                    `yaml:"roles" json:"roles"`
	RateCards      map[string]*FoldMap[float64]  `yaml:"rate_cards" json:"rate_cards"`
	SalesBrackets  []CommissionBracket           `yaml:"sales_brackets" json:"sales_brackets"`
	CostBrackets   []CommissionBracket           `yaml:"cost_brackets" json:"cost_brackets"`
	DefaultRateKey string                        `yaml:"default_rate_key" json:"default_rate_key"`
}

// Role returns the configured role matching name (case-insensitive).
func (c CostModelConfig) Role(name string) (RoleCost, bool) {
	for _, r := range c.Roles {
		if strings.EqualFold(strings.TrimSpace(r.Name), strings.TrimSpace(name)) {
			return r, true
		}
	}
	return RoleCost{}, false
}

// RoleOrder returns the configured role names in display order.
func (c CostModelConfig) RoleOrder() []string {
	out := make([]string, 0, len(c.Roles))
	for _, r := range c.Roles {
		out = append(out, r.Name)
	}
	return out
}

// RateCard returns the rate card stored under key (case-insensitive).
func (c CostModelConfig) RateCard(key string) (*FoldMap[float64], bool) {
	for k, card := range c.RateCards {
		if strings.EqualFold(strings.TrimSpace(k), strings.TrimSpace(key)) {
			return card, true
		}
	}
	return nil, false
}

// Validate checks bracket ordering for both sets.
func (c CostModelConfig) Validate() error {
	if err := ValidateBrackets(c.SalesBrackets); err != nil {
		return eris.Wrap(err, "cost config: sales")
	}
	if err := ValidateBrackets(c.CostBrackets); err != nil {
		return eris.Wrap(err, "cost config: cost")
	}
	return nil
}

// CostInputs are the request-scoped dials of the cost model. Zero values
// are meaningful (no buffer, no discount), so callers usually start from a
// policy pack's defaults and override selectively.
type CostInputs struct {
	WorstCaseBufferPercent    float64           `yaml:"worst_case_buffer_percent" json:"worst_case_buffer_percent"`
	WarrantyMonths            float64           `yaml:"warranty_months" json:"warranty_months"`
	InterestRatePercent       float64           `yaml:"interest_rate_percent" json:"interest_rate_percent"`
	PaymentDelayMonths        float64           `yaml:"payment_delay_months" json:"payment_delay_months"`
	OverheadPercent           float64           `yaml:"overhead_percent" json:"overhead_percent"`
	CommissionMode            CommissionMode    `yaml:"commission_mode" json:"commission_mode"`
	ExternalCommissionAmount  float64           `yaml:"external_commission_amount" json:"external_commission_amount"`
	ExternalCommissionPercent float64           `yaml:"external_commission_percent" json:"external_commission_percent"`
	TaxPercent                float64           `yaml:"tax_percent" json:"tax_percent"`
	OperationalCostPercent    float64           `yaml:"operational_cost_percent" json:"operational_cost_percent"`
	Multiplier                float64           `yaml:"multiplier" json:"multiplier"`
	DiscountPercent           float64           `yaml:"discount_percent" json:"discount_percent"`
	RateCardKey               string            `yaml:"rate_card_key" json:"rate_card_key"`
	HeadcountOverrides        *FoldMap[float64] `yaml:"headcount_overrides,omitempty" json:"headcount_overrides,omitempty"`
}

// Normalized returns a copy with every percentage clamped non-negative and
// the revenue multiplier floored at 0.01. Out-of-range input is corrected,
// never rejected, so the model stays computable for any caller value.
func (in CostInputs) Normalized() CostInputs {
	out := in
	out.WorstCaseBufferPercent = max(0, in.WorstCaseBufferPercent)
	out.WarrantyMonths = max(0, in.WarrantyMonths)
	out.InterestRatePercent = max(0, in.InterestRatePercent)
	out.PaymentDelayMonths = max(0, in.PaymentDelayMonths)
	out.OverheadPercent = max(0, in.OverheadPercent)
	out.ExternalCommissionAmount = max(0, in.ExternalCommissionAmount)
	out.ExternalCommissionPercent = max(0, in.ExternalCommissionPercent)
	out.TaxPercent = max(0, in.TaxPercent)
	out.OperationalCostPercent = max(0, in.OperationalCostPercent)
	out.Multiplier = max(0.01, in.Multiplier)
	out.DiscountPercent = max(0, in.DiscountPercent)
	out.CommissionMode = ParseCommissionMode(string(in.CommissionMode))
	out.HeadcountOverrides = in.HeadcountOverrides.Clone()
	return out
}
