package goalseek

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/costing"
	"github.com/scopecraft/presales-cli/internal/model"
)

// maxIterations bounds the bisection loop.
const maxIterations = 30

// Request describes one goal-seek run. Min, Max, and Tolerance override
// the dial's defaults when set.
type Request struct {
	Adjust      Adjustable `json:"adjust"`
	Target      Target     `json:"target"`
	TargetValue float64    `json:"target_value"`
	Min         *float64   `json:"min,omitempty"`
	Max         *float64   `json:"max,omitempty"`
	Tolerance   *float64   `json:"tolerance,omitempty"`
}

// Response carries the final dial value, the inputs and the full model
// result at that value, and how the search ended. Converged=false with a
// well-formed result means the target was not reachable within bounds;
// callers surface that, they do not treat it as an error.
type Response struct {
	Inputs     model.CostInputs `json:"inputs"`
	Result     costing.Result   `json:"result"`
	Value      float64          `json:"value"`
	Iterations int              `json:"iterations"`
	Converged  bool             `json:"converged"`
}

// Solver wraps a calculator as the evaluation function.
type Solver struct {
	calc *costing.Calculator
}

// New returns a solver over the given calculator.
func New(calc *costing.Calculator) *Solver {
	return &Solver{calc: calc}
}

type evaluation struct {
	inputs model.CostInputs
	result costing.Result
	value  float64
	dev    float64
}

// Solve looks for the dial value whose model output matches the target
// within tolerance.
//
// The search starts at the current value (0 iterations when it already
// fits), then probes the bounds: a bound with exactly zero deviation is
// adopted outright, and two bounds deviating with the same sign mean the
// target is not bracketed, which ends the run unchanged and non-converged
// after that single probe round. Only a bracketing pair starts bisection.
func (s *Solver) Solve(manDays []costing.RoleManDays, in model.CostInputs, req Request) (Response, error) {
	target, err := ParseTarget(string(req.Target))
	if err != nil {
		return Response{}, err
	}
	adjust, err := ParseAdjustable(string(req.Adjust))
	if err != nil {
		return Response{}, err
	}

	lo, hi, tol := adjust.defaults()
	if req.Min != nil {
		lo = *req.Min
	}
	if req.Max != nil {
		hi = *req.Max
	}
	if req.Tolerance != nil && *req.Tolerance > 0 {
		tol = *req.Tolerance
	}
	if lo > hi {
		return Response{}, eris.Wrapf(ErrInvalidBounds, "min %.4f above max %.4f", lo, hi)
	}

	in = in.Normalized()
	eval := func(v float64) (evaluation, error) {
		candidate := adjust.apply(in, v)
		res, err := s.calc.Calculate(manDays, candidate)
		if err != nil {
			return evaluation{}, eris.Wrap(err, "goalseek: evaluate")
		}
		return evaluation{
			inputs: candidate,
			result: res,
			value:  v,
			dev:    readTarget(res, target) - req.TargetValue,
		}, nil
	}

	current, err := adjust.value(in)
	if err != nil {
		return Response{}, err
	}
	start, err := eval(current)
	if err != nil {
		return Response{}, err
	}
	if math.Abs(start.dev) <= tol {
		return response(start, 0, true), nil
	}

	atLo, err := eval(lo)
	if err != nil {
		return Response{}, err
	}
	if atLo.dev == 0 {
		return response(atLo, 1, true), nil
	}
	atHi, err := eval(hi)
	if err != nil {
		return Response{}, err
	}
	if atHi.dev == 0 {
		return response(atHi, 1, true), nil
	}

	if sameSign(atLo.dev, atHi.dev) {
		// Not bracketed: the target lies outside what the bounds can
		// produce. Deliberate non-error fallback, the caller shows
		// "could not reach target within bounds".
		zap.L().Debug("goalseek: target not bracketed",
			zap.String("adjust", string(adjust)),
			zap.String("target", string(target)),
			zap.Float64("dev_lo", atLo.dev),
			zap.Float64("dev_hi", atHi.dev))
		return response(start, 1, false), nil
	}

	last := start
	for iter := 1; iter <= maxIterations; iter++ {
		mid, err := eval((atLo.value + atHi.value) / 2)
		if err != nil {
			return Response{}, err
		}
		last = mid
		if math.Abs(mid.dev) <= tol {
			return response(mid, iter, true), nil
		}
		if sameSign(mid.dev, atLo.dev) {
			atLo = mid
		} else {
			atHi = mid
		}
	}
	return response(last, maxIterations, false), nil
}

func response(e evaluation, iterations int, converged bool) Response {
	return Response{
		Inputs:     e.inputs,
		Result:     e.result,
		Value:      e.value,
		Iterations: iterations,
		Converged:  converged,
	}
}

func sameSign(a, b float64) bool {
	return (a > 0) == (b > 0)
}

// readTarget extracts the steered output from a result.
func readTarget(res costing.Result, t Target) float64 {
	switch t {
	case TargetProfitAmount:
		return res.ProfitAmount
	case TargetProfitPercent:
		return res.ProfitPercent
	default: // TargetTotalCost, validated upstream
		return res.TotalCost
	}
}
