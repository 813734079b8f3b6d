package signal

import (
	"math"

	"github.com/scopecraft/presales-cli/internal/model"
)

// Score weights, tuned so a plain three-field CRUD form lands in XS/S and
// anything touching multiple external systems climbs quickly.
const (
	fieldWeight       = 1.8
	integrationWeight = 15.0
	stepWeight        = 6.0
	uploadWeight      = 6.0
	authWeight        = 10.0
	crudWeight        = 4.0
	scoreCap          = 100.0
)

// Classification is the full classifier output for one item.
type Classification struct {
	Signals Set             `json:"signals"`
	Score   float64         `json:"score"`
	Size    model.SizeClass `json:"size"`
}

// Score converts a signal set into a 0..100 complexity score.
func Score(s Set) float64 {
	score := fieldWeight*float64(s.Fields) +
		integrationWeight*float64(s.Integrations) +
		stepWeight*float64(s.WorkflowSteps) +
		crudWeight*float64(s.CRUDCount())
	if s.HasUpload {
		score += uploadWeight
	}
	if s.HasAuthRole {
		score += authWeight
	}
	return math.Min(score, scoreCap)
}

// SizeFromScore maps a complexity score onto the base size class.
func SizeFromScore(score float64) model.SizeClass {
	switch {
	case score <= 8:
		return model.SizeXS
	case score <= 18:
		return model.SizeS
	case score <= 32:
		return model.SizeM
	case score <= 55:
		return model.SizeL
	default:
		return model.SizeXL
	}
}

// escalate applies the signal-driven size overrides on top of the base
// class. Integration-heavy or field-heavy items are forced up; trivially
// small forms are pulled down to S, though never below it.
func escalate(size model.SizeClass, s Set) model.SizeClass {
	if s.Integrations >= 2 {
		size = size.AtLeast(model.SizeM)
	}
	if s.Integrations >= 3 {
		size = size.AtLeast(model.SizeL)
	}
	if s.Fields >= 25 {
		size = size.AtLeast(model.SizeL)
	}
	if s.Fields <= 3 && size.Rank() > model.SizeS.Rank() {
		size = model.SizeS
	}
	return size
}

// Classify runs the whole chain for one item: extract signals, score them,
// pick the size class, and apply the guardrail.
//
// A valid caller-requested size replaces the score-derived base, but the
// escalation rules and the adjustment guardrail still apply on top of it.
func Classify(detail string, category model.Category, requestedSize string, justification float64, g model.Guardrail) Classification {
	signals := Extract(detail)
	score := Score(signals)

	size := SizeFromScore(score)
	if req, ok := model.ParseSizeClass(requestedSize); ok {
		size = req
	}
	size = escalate(size, signals)

	if g.Enabled && category.IsAdjustment() && justification < g.ConfidenceThreshold {
		size = size.AtMost(g.Cap())
	}

	return Classification{
		Signals: signals,
		Score:   math.Round(score*100) / 100,
		Size:    size,
	}
}
