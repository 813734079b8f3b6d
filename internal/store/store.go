package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/scopecraft/presales-cli/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// AssessmentFilter specifies criteria for listing assessments.
type AssessmentFilter struct {
	Client string `json:"client,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// ReferenceFilter narrows reference observations. Zero-valued fields
// match everything; Limit <= 0 means no limit, because a truncated
// history would silently skew the baselines computed from it.
type ReferenceFilter struct {
	Batch    string `json:"batch,omitempty"`
	Category string `json:"category,omitempty"`
	Column   string `json:"column,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Store defines the persistence interface for assessments, reference
// history, policy packs, and timeline plans.
type Store interface {
	// Assessments
	SaveAssessment(ctx context.Context, a *model.Assessment) error
	GetAssessment(ctx context.Context, id string) (*model.Assessment, error)
	ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.Assessment, error)
	DeleteAssessment(ctx context.Context, id string) error

	// Reference history
	SaveReferenceBatch(ctx context.Context, batch string, obs []model.RefObservation) (int, error)
	ListReferenceObservations(ctx context.Context, filter ReferenceFilter) ([]model.RefObservation, error)
	DeleteReferenceBatch(ctx context.Context, batch string) (int, error)

	// Policy packs, versioned by name. Version 0 reads the latest.
	SavePolicyPack(ctx context.Context, name string, body []byte) (int, error)
	GetPolicyPack(ctx context.Context, name string, version int) ([]byte, int, error)

	// Timeline plans, one per assessment.
	SaveTimeline(ctx context.Context, plan *model.TimelinePlan) error
	GetTimeline(ctx context.Context, assessmentID string) (*model.TimelinePlan, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
