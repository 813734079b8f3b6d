// Package normalize turns classified scope items into final per-column
// hour estimates. It is the only component that writes estimates onto an
// item, and it always overwrites the whole column map in one pass.
package normalize

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/internal/refstats"
	"github.com/scopecraft/presales-cli/internal/signal"
)

// ErrNoValidEstimate marks an item that yields zero usable estimation
// columns. The caller decides whether to drop the item or fail the batch;
// the normalizer never invents a nonzero value.
var ErrNoValidEstimate = eris.New("normalize: no valid estimate")

// ErrBandNotFound marks a category with no configured hour band.
var ErrBandNotFound = eris.New("normalize: hour band not found")

// Normalizer applies one estimation policy to items. It is stateless
// beyond the policy value and safe for concurrent use.
type Normalizer struct {
	policy  model.EstimationPolicy
	workers int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithWorkers caps batch concurrency. Values below 1 keep the default.
func WithWorkers(w int) Option {
	return func(n *Normalizer) {
		if w >= 1 {
			n.workers = w
		}
	}
}

// New returns a normalizer for the given policy.
func New(policy model.EstimationPolicy, opts ...Option) *Normalizer {
	n := &Normalizer{policy: policy, workers: batchWorkers}
	for _, o := range opts {
		o(n)
	}
	return n
}

// ColumnTrace records how one column's final figure was reached, for
// audit and display.
type ColumnTrace struct {
	Column        string   `json:"column"`
	Role          string   `json:"role"`
	BaseHours     float64  `json:"base_hours"`
	CRUDFactor    float64  `json:"crud_factor"`
	AdditiveHours float64  `json:"additive_hours"`
	RawHours      float64  `json:"raw_hours"`
	ProvidedCap   *float64 `json:"provided_cap,omitempty"`
	Baseline      *float64 `json:"baseline,omitempty"`
	BaselineSrc   string   `json:"baseline_source,omitempty"`
	Final         float64  `json:"final"`
}

// ItemEstimate is the full normalization output for one item: the item
// copy with its hours overwritten, plus the diagnostics behind them.
type ItemEstimate struct {
	Item           model.ScopeItem       `json:"item"`
	Classification signal.Classification `json:"classification"`
	Columns        []ColumnTrace         `json:"columns"`
}

// TotalHours sums the final column figures.
func (e ItemEstimate) TotalHours() float64 {
	var total float64
	for _, c := range e.Columns {
		total += c.Final
	}
	return total
}

// EstimateItem runs the full pipeline for one item against historical
// observations. The returned item is a copy; the input is never mutated.
func (n *Normalizer) EstimateItem(item model.ScopeItem, refs []model.RefObservation) (ItemEstimate, error) {
	cls := signal.Classify(item.Detail, item.Category, item.RequestedSize, item.Justification, n.policy.Guardrail)

	cols := n.policy.ColumnsFor(item.Category)
	if len(cols) == 0 {
		return ItemEstimate{}, eris.Wrapf(ErrNoValidEstimate, "item %q category %q", item.ID, string(item.Category))
	}
	band, ok := n.policy.BandFor(item.Category)
	if !ok {
		return ItemEstimate{}, eris.Wrapf(ErrBandNotFound, "item %q category %q", item.ID, string(item.Category))
	}

	base := band.Midpoint(cls.Size)
	crud := n.crudFactor(cls.Signals)
	additive := n.additiveHours(cls.Signals)

	out := item.Clone()
	out.Hours = model.NewFoldMap[float64]()

	traces := make([]ColumnTrace, 0, len(cols))
	for _, col := range cols {
		tr := ColumnTrace{
			Column:        col.Name,
			Role:          col.Role,
			BaseHours:     base,
			CRUDFactor:    crud,
			AdditiveHours: additive,
		}
		tr.RawHours = base*crud + additive

		candidate := tr.RawHours
		if provided, ok := item.Hours.Get(col.Name); ok {
			p := provided
			tr.ProvidedCap = &p
			// Never estimate upward from a caller-provided figure.
			candidate = math.Min(candidate, provided)
		}

		if bl := refstats.BaselineFor(refs, item.ID, item.Category, col.Name); bl.Source != "" {
			if ref, ok := bl.Selected(); ok {
				r := ref
				tr.Baseline = &r
				tr.BaselineSrc = bl.Source
				candidate = n.shrink(candidate, ref)
			}
		}

		tr.Final = n.ClampRound(candidate)
		if !item.IsNeeded {
			tr.Final = 0
		}
		out.Hours.Set(col.Name, tr.Final)
		traces = append(traces, tr)
	}

	zap.L().Debug("normalize: item estimated",
		zap.String("item", item.ID),
		zap.String("category", string(item.Category)),
		zap.String("size", string(cls.Size)),
		zap.Float64("score", cls.Score),
		zap.Int("columns", len(traces)))

	return ItemEstimate{Item: out, Classification: cls, Columns: traces}, nil
}

// crudFactor multiplies the configured per-operation factors for every
// raised flag. Absent flags contribute 1.
func (n *Normalizer) crudFactor(s signal.Set) float64 {
	factor := 1.0
	if s.Create {
		factor *= n.policy.CRUD.Create
	}
	if s.Read {
		factor *= n.policy.CRUD.Read
	}
	if s.Update {
		factor *= n.policy.CRUD.Update
	}
	if s.Delete {
		factor *= n.policy.CRUD.Delete
	}
	return factor
}

func (n *Normalizer) additiveHours(s signal.Set) float64 {
	r := n.policy.Rates
	add := float64(s.Fields)*r.PerField +
		float64(s.Integrations)*r.PerIntegration +
		float64(s.WorkflowSteps)*r.PerWorkflowStep
	if s.HasUpload {
		add += r.Upload
	}
	if s.HasAuthRole {
		add += r.Auth
	}
	return add
}

// shrink blends a candidate toward the reference baseline by the policy
// weight. With a nonzero weight the result is also capped at baseline
// times the reference-cap multiplier; a zero weight disables shrinkage and
// the cap with it.
func (n *Normalizer) shrink(candidate, baseline float64) float64 {
	w := n.policy.ShrinkageWeight
	if w == 0 {
		return candidate
	}
	shrunk := candidate - w*(candidate-baseline)
	return math.Min(shrunk, baseline*n.policy.ReferenceCap)
}

// ClampRound applies the policy's hard bounds and rounding grid. A
// non-positive max leaves the upper end open; a non-positive granularity
// skips rounding. Rounding is half away from zero.
func (n *Normalizer) ClampRound(v float64) float64 {
	v = math.Max(v, n.policy.MinHours)
	if n.policy.MaxHours > 0 {
		v = math.Min(v, n.policy.MaxHours)
	}
	if g := n.policy.Granularity; g > 0 {
		v = math.Round(v/g) * g
	}
	return v
}
