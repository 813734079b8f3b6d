package model

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// PolicyPack bundles everything tunable about presales estimation: the
// effort policy, the cost-model configuration, and the default cost
// inputs. Packs live as YAML files and are versioned when saved to the
// store.
type PolicyPack struct {
	Name       string           `yaml:"name" json:"name"`
	Estimation EstimationPolicy `yaml:"estimation" json:"estimation"`
	Cost       CostModelConfig  `yaml:"cost" json:"cost"`
	Defaults   CostInputs       `yaml:"defaults" json:"defaults"`
}

// LoadPolicyPack reads and parses a pack from a YAML file.
func LoadPolicyPack(path string) (*PolicyPack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "policy pack: read %s", path)
	}
	pack, err := ParsePolicyPack(data)
	if err != nil {
		return nil, eris.Wrapf(err, "policy pack: parse %s", path)
	}
	return pack, nil
}

// ParsePolicyPack parses YAML bytes into a pack, fills missing sections
// with defaults, and validates the result.
func ParsePolicyPack(data []byte) (*PolicyPack, error) {
	var pack PolicyPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, eris.Wrap(err, "policy pack: unmarshal yaml")
	}
	pack.FillDefaults()
	if err := pack.Validate(); err != nil {
		return nil, err
	}
	return &pack, nil
}

// Validate checks the pack's estimation policy and cost configuration.
func (p *PolicyPack) Validate() error {
	if err := p.Estimation.Validate(); err != nil {
		return err
	}
	return p.Cost.Validate()
}

// FillDefaults replaces empty or zero sections with the built-in defaults,
// so a partial pack file only needs to state what it changes.
func (p *PolicyPack) FillDefaults() {
	def := DefaultPolicyPack()
	if p.Name == "" {
		p.Name = def.Name
	}
	fillEstimationDefaults(&p.Estimation, def.Estimation)
	fillCostDefaults(&p.Cost, def.Cost)
	if p.Defaults == (CostInputs{}) {
		p.Defaults = def.Defaults
	}
	p.Defaults = p.Defaults.Normalized()
}

func fillEstimationDefaults(e *EstimationPolicy, def EstimationPolicy) {
	if len(e.Bands) == 0 {
		e.Bands = def.Bands
	}
	if e.CRUD.Create <= 0 {
		e.CRUD.Create = def.CRUD.Create
	}
	if e.CRUD.Read <= 0 {
		e.CRUD.Read = def.CRUD.Read
	}
	if e.CRUD.Update <= 0 {
		e.CRUD.Update = def.CRUD.Update
	}
	if e.CRUD.Delete <= 0 {
		e.CRUD.Delete = def.CRUD.Delete
	}
	if e.Rates == (SignalRates{}) {
		e.Rates = def.Rates
	}
	// ShrinkageWeight is left alone: zero means shrinkage off, which is a
	// legitimate pack choice, not a missing value.
	if e.ReferenceCap <= 0 {
		e.ReferenceCap = def.ReferenceCap
	}
	if e.MaxHours <= 0 {
		e.MaxHours = def.MaxHours
	}
	if e.Granularity <= 0 {
		e.Granularity = def.Granularity
	}
	if e.HoursPerDay <= 0 {
		e.HoursPerDay = def.HoursPerDay
	}
	if e.Guardrail.ConfidenceThreshold <= 0 {
		e.Guardrail.ConfidenceThreshold = def.Guardrail.ConfidenceThreshold
	}
	if e.Guardrail.MaxSize == "" {
		e.Guardrail.MaxSize = def.Guardrail.MaxSize
	}
	if len(e.Columns) == 0 {
		e.Columns = def.Columns
	}
}

func fillCostDefaults(c *CostModelConfig, def CostModelConfig) {
	if len(c.Roles) == 0 {
		c.Roles = def.Roles
	}
	if len(c.RateCards) == 0 {
		c.RateCards = def.RateCards
	}
	if len(c.SalesBrackets) == 0 {
		c.SalesBrackets = def.SalesBrackets
	}
	if len(c.CostBrackets) == 0 {
		c.CostBrackets = def.CostBrackets
	}
	if c.DefaultRateKey == "" {
		c.DefaultRateKey = def.DefaultRateKey
	}
}

// DefaultPolicyPack returns the built-in pack used when no pack file or
// stored pack is supplied.
func DefaultPolicyPack() *PolicyPack {
	standard := NewFoldMap[float64]()
	standard.Set("Project Manager", 680)
	standard.Set("Solution Architect", 760)
	standard.Set("System Analyst", 540)
	standard.Set("Business Analyst", 520)
	standard.Set("Programmer", 480)
	standard.Set("Programmer Junior", 320)
	standard.Set("Quality Assurance", 400)
	standard.Set("UI Designer", 420)

	premium := NewFoldMap[float64]()
	premium.Set("Project Manager", 885)
	premium.Set("Solution Architect", 990)
	premium.Set("System Analyst", 700)
	premium.Set("Business Analyst", 675)
	premium.Set("Programmer", 625)
	premium.Set("Programmer Junior", 415)
	premium.Set("Quality Assurance", 520)
	premium.Set("UI Designer", 545)

	return &PolicyPack{
		Name: "default",
		Estimation: EstimationPolicy{
			Bands: map[Category]Band{
				CategoryNewUI:           {XS: 8, S: 16, M: 32, L: 64, XL: 120},
				CategoryNewInterface:    {XS: 12, S: 24, M: 48, L: 96, XL: 160},
				CategoryNewBackgrounder: {XS: 6, S: 12, M: 24, L: 48, XL: 80},
				CategoryAdjustUI:        {XS: 4, S: 8, M: 16, L: 32, XL: 56},
				CategoryAdjustLogic:     {XS: 4, S: 10, M: 20, L: 40, XL: 72},
			},
			CRUD: CRUDMultipliers{Create: 1.15, Read: 1, Update: 1.1, Delete: 1.05},
			Rates: SignalRates{
				PerField:        0.4,
				PerIntegration:  6,
				PerWorkflowStep: 2,
				Upload:          4,
				Auth:            6,
			},
			ShrinkageWeight: 0.35,
			ReferenceCap:    1.25,
			MinHours:        2,
			MaxHours:        400,
			Granularity:     0.5,
			HoursPerDay:     8,
			Guardrail: Guardrail{
				Enabled:             true,
				ConfidenceThreshold: 0.6,
				MaxSize:             string(SizeM),
			},
			Columns: []ColumnPolicy{
				{Name: "SA Hours", Role: "System Analyst"},
				{Name: "Dev Hours", Role: "Programmer"},
				{Name: "QA Hours", Role: "Quality Assurance"},
				{Name: "UI Hours", Role: "UI Designer", Categories: []Category{CategoryNewUI, CategoryAdjustUI}},
			},
		},
		Cost: CostModelConfig{
			Roles: []RoleCost{
				{Name: "Project Manager", MonthlySalary: 9500, DefaultHeadcount: 1},
				{Name: "Solution Architect", MonthlySalary: 11000},
				{Name: "System Analyst", MonthlySalary: 7200},
				{Name: "Business Analyst", MonthlySalary: 6800},
				{Name: "Programmer", MonthlySalary: 6500},
				{Name: "Programmer Junior", MonthlySalary: 4200},
				{Name: "Quality Assurance", MonthlySalary: 5200},
				{Name: "UI Designer", MonthlySalary: 5600},
			},
			RateCards: map[string]*FoldMap[float64]{
				"standard": standard,
				"premium":  premium,
			},
			SalesBrackets: []CommissionBracket{
				{UpperBound: 50000, RatePercent: 5},
				{UpperBound: 150000, RatePercent: 3},
				{UpperBound: 0, RatePercent: 1.5},
			},
			CostBrackets: []CommissionBracket{
				{UpperBound: 100000, RatePercent: 2},
				{UpperBound: 0, RatePercent: 1},
			},
			DefaultRateKey: "standard",
		},
		Defaults: CostInputs{
			WorstCaseBufferPercent:    15,
			WarrantyMonths:            3,
			InterestRatePercent:       9,
			PaymentDelayMonths:        2,
			OverheadPercent:           8,
			CommissionMode:            CommissionPercent,
			ExternalCommissionPercent: 2.5,
			TaxPercent:                11,
			OperationalCostPercent:    5,
			Multiplier:                1.15,
			DiscountPercent:           0,
			RateCardKey:               "standard",
		},
	}
}
