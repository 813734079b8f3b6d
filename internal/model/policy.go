package model

import "github.com/rotisserie/eris"

// Band holds the ascending hour thresholds for the five size classes of one
// category. Threshold[i] is the nominal effort for sizeOrder[i]; base hours
// for a class are taken at the midpoint between its threshold and the next
// lower one.
type Band struct {
	XS float64 `yaml:"xs" json:"xs"`
	S  float64 `yaml:"s" json:"s"`
	M  float64 `yaml:"m" json:"m"`
	L  float64 `yaml:"l" json:"l"`
	XL float64 `yaml:"xl" json:"xl"`
}

// Points returns the thresholds in XS..XL order.
func (b Band) Points() [5]float64 {
	return [5]float64{b.XS, b.S, b.M, b.L, b.XL}
}

// Threshold returns the configured hours for one size class.
func (b Band) Threshold(s SizeClass) float64 {
	r := s.Rank()
	if r < 0 {
		return 0
	}
	return b.Points()[r]
}

// Midpoint returns the base hours for a size class. XS uses its threshold
// directly; every other class uses the midpoint between its threshold and
// the next lower one.
func (b Band) Midpoint(s SizeClass) float64 {
	r := s.Rank()
	if r <= 0 {
		if r < 0 {
			return 0
		}
		return b.XS
	}
	points := b.Points()
	return (points[r-1] + points[r]) / 2
}

// Validate checks that thresholds are non-negative and non-decreasing.
func (b Band) Validate() error {
	points := b.Points()
	prev := 0.0
	for i, p := range points {
		if p < 0 {
			return eris.Errorf("band: %s threshold is negative", sizeOrder[i])
		}
		if p < prev {
			return eris.Errorf("band: %s threshold below %s", sizeOrder[i], sizeOrder[i-1])
		}
		prev = p
	}
	return nil
}

// CRUDMultipliers scale base hours for each data operation an item
// performs. Factors compose multiplicatively; an absent flag contributes 1.
type CRUDMultipliers struct {
	Create float64 `yaml:"create" json:"create"`
	Read   float64 `yaml:"read" json:"read"`
	Update float64 `yaml:"update" json:"update"`
	Delete float64 `yaml:"delete" json:"delete"`
}

// SignalRates are the additive hour rates applied per extracted signal on
// top of the banded base.
type SignalRates struct {
	PerField        float64 `yaml:"per_field" json:"per_field"`
	PerIntegration  float64 `yaml:"per_integration" json:"per_integration"`
	PerWorkflowStep float64 `yaml:"per_workflow_step" json:"per_workflow_step"`
	Upload          float64 `yaml:"upload" json:"upload"`
	Auth            float64 `yaml:"auth" json:"auth"`
}

// Guardrail caps the size of low-confidence adjustment items.
type Guardrail struct {
	Enabled             bool    `yaml:"enabled" json:"enabled"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" json:"confidence_threshold"`
	MaxSize             string  `yaml:"max_size" json:"max_size"`
}

// Cap returns the configured maximum size class, defaulting to M.
func (g Guardrail) Cap() SizeClass {
	if sc, ok := ParseSizeClass(g.MaxSize); ok {
		return sc
	}
	return SizeM
}

// ColumnPolicy describes one estimation column: its display name, the role
// that performs the work, and the categories it applies to. An empty
// category list means the column applies to every category.
type ColumnPolicy struct {
	Name       string     `yaml:"name" json:"name"`
	Role       string     `yaml:"role" json:"role"`
	Categories []Category `yaml:"categories,omitempty" json:"categories,omitempty"`
}

// AppliesTo reports whether the column is estimated for category c.
func (cp ColumnPolicy) AppliesTo(c Category) bool {
	if len(cp.Categories) == 0 {
		return true
	}
	for _, cc := range cp.Categories {
		if cc == c {
			return true
		}
	}
	return false
}

// EstimationPolicy is the tunable half of the effort model: per-category
// bands, signal rates, shrinkage toward reference data, and the output
// clamps.
type EstimationPolicy struct {
	Bands           map[Category]Band `yaml:"bands" json:"bands"`
	CRUD            CRUDMultipliers   `yaml:"crud_multipliers" json:"crud_multipliers"`
	Rates           SignalRates       `yaml:"signal_rates" json:"signal_rates"`
	ShrinkageWeight float64           `yaml:"shrinkage_weight" json:"shrinkage_weight"`
	ReferenceCap    float64           `yaml:"reference_cap" json:"reference_cap"`
	MinHours        float64           `yaml:"min_hours" json:"min_hours"`
	MaxHours        float64           `yaml:"max_hours" json:"max_hours"`
	Granularity     float64           `yaml:"granularity" json:"granularity"`
	HoursPerDay     float64           `yaml:"hours_per_day" json:"hours_per_day"`
	Guardrail       Guardrail         `yaml:"guardrail" json:"guardrail"`
	Columns         []ColumnPolicy    `yaml:"columns" json:"columns"`
}

// BandFor returns the hour band for a category.
func (p EstimationPolicy) BandFor(c Category) (Band, bool) {
	b, ok := p.Bands[c]
	return b, ok
}

// ColumnsFor returns the columns estimated for category c, in configured
// order.
func (p EstimationPolicy) ColumnsFor(c Category) []ColumnPolicy {
	var out []ColumnPolicy
	for _, cp := range p.Columns {
		if cp.AppliesTo(c) {
			out = append(out, cp)
		}
	}
	return out
}

// ColumnRole returns the role configured for a column name
// (case-insensitive), or "" when the column is unknown.
func (p EstimationPolicy) ColumnRole(name string) string {
	for _, cp := range p.Columns {
		if fold(cp.Name) == fold(name) {
			return cp.Role
		}
	}
	return ""
}

// Validate checks band shape and clamp ordering.
func (p EstimationPolicy) Validate() error {
	for cat, b := range p.Bands {
		if err := b.Validate(); err != nil {
			return eris.Wrapf(err, "policy: category %q", string(cat))
		}
	}
	if p.MinHours < 0 {
		return eris.New("policy: min_hours is negative")
	}
	if p.MaxHours > 0 && p.MaxHours < p.MinHours {
		return eris.New("policy: max_hours below min_hours")
	}
	if p.Granularity < 0 {
		return eris.New("policy: granularity is negative")
	}
	if p.ShrinkageWeight < 0 || p.ShrinkageWeight > 1 {
		return eris.New("policy: shrinkage_weight outside [0,1]")
	}
	return nil
}
