// Package goalseek inverts the cost model: it adjusts one input dial until
// a chosen output hits a target value, by plain bisection. The model is
// recomputed from scratch every iteration; inputs interact non-linearly
// (discount moves revenue, which moves financing and commissions), so no
// incremental shortcut is safe.
package goalseek

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/scopecraft/presales-cli/internal/model"
)

// Adjustable names an input dial the solver may move. The set is closed;
// adding a dial means extending every switch in this file.
type Adjustable string

const (
	AdjustDiscountPercent Adjustable = "discount_percent"
	AdjustMultiplier      Adjustable = "multiplier"
	AdjustWorstCaseBuffer Adjustable = "worst_case_buffer"
)

// Target names a model output the solver steers toward.
type Target string

const (
	TargetProfitAmount  Target = "profit_amount"
	TargetProfitPercent Target = "profit_percent"
	TargetTotalCost     Target = "total_cost"
)

// ErrUnsupportedField marks an adjustable or target key outside the fixed
// registries. This is a caller-facing condition, not a crash.
var ErrUnsupportedField = eris.New("goalseek: unsupported field")

// ErrInvalidBounds marks an override range with min above max.
var ErrInvalidBounds = eris.New("goalseek: invalid bounds")

// ParseAdjustable resolves a user-supplied dial name, accepting short
// aliases.
func ParseAdjustable(s string) (Adjustable, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "discount_percent", "discount":
		return AdjustDiscountPercent, nil
	case "multiplier":
		return AdjustMultiplier, nil
	case "worst_case_buffer", "buffer":
		return AdjustWorstCaseBuffer, nil
	default:
		return "", eris.Wrapf(ErrUnsupportedField, "adjustable %q", s)
	}
}

// ParseTarget resolves a user-supplied target name.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "profit_amount", "profit":
		return TargetProfitAmount, nil
	case "profit_percent":
		return TargetProfitPercent, nil
	case "total_cost", "cost":
		return TargetTotalCost, nil
	default:
		return "", eris.Wrapf(ErrUnsupportedField, "target %q", s)
	}
}

// Adjustables lists the supported dials.
func Adjustables() []Adjustable {
	return []Adjustable{AdjustDiscountPercent, AdjustMultiplier, AdjustWorstCaseBuffer}
}

// Targets lists the supported outputs.
func Targets() []Target {
	return []Target{TargetProfitAmount, TargetProfitPercent, TargetTotalCost}
}

// value reads the dial from a set of inputs.
func (a Adjustable) value(in model.CostInputs) (float64, error) {
	switch a {
	case AdjustDiscountPercent:
		return in.DiscountPercent, nil
	case AdjustMultiplier:
		return in.Multiplier, nil
	case AdjustWorstCaseBuffer:
		return in.WorstCaseBufferPercent, nil
	default:
		return 0, eris.Wrapf(ErrUnsupportedField, "adjustable %q", string(a))
	}
}

// apply returns a copy of the inputs with the dial set to v.
func (a Adjustable) apply(in model.CostInputs, v float64) model.CostInputs {
	switch a {
	case AdjustDiscountPercent:
		in.DiscountPercent = v
	case AdjustMultiplier:
		in.Multiplier = v
	case AdjustWorstCaseBuffer:
		in.WorstCaseBufferPercent = v
	}
	return in
}

// defaults returns the dial's search range and deviation tolerance, used
// when the request does not override them.
func (a Adjustable) defaults() (lo, hi, tol float64) {
	switch a {
	case AdjustMultiplier:
		return 0.01, 10, 0.001
	case AdjustWorstCaseBuffer:
		return 0, 300, 0.01
	default: // AdjustDiscountPercent
		return 0, 100, 0.01
	}
}
