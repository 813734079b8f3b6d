package model

import "time"

// ScopeItem is one line of presales scope: a feature or change the client
// asked for, with the per-column hour estimates attached to it.
//
// Hours carries the estimate for each applicable column. Before
// normalization it may hold caller-provided guesses, which the normalizer
// treats as upper caps; after normalization it holds the final figures.
// Each pass overwrites the map wholesale, never merges into it.
type ScopeItem struct {
	ID            string            `json:"id"`
	Detail        string            `json:"detail"`
	Category      Category          `json:"category"`
	RequestedSize string            `json:"requested_size,omitempty"`
	Hours         *FoldMap[float64] `json:"hours"`
	IsNeeded      bool              `json:"is_needed"`
	Justification float64           `json:"justification"`
}

// TotalHours sums the item's column estimates.
func (s ScopeItem) TotalHours() float64 {
	var total float64
	if s.Hours == nil {
		return 0
	}
	for _, col := range s.Hours.Keys() {
		v, _ := s.Hours.Get(col)
		total += v
	}
	return total
}

// Clone returns a deep copy of the item.
func (s ScopeItem) Clone() ScopeItem {
	out := s
	out.Hours = s.Hours.Clone()
	return out
}

// Assessment is a client engagement's full scope list.
type Assessment struct {
	ID        string      `json:"id"`
	Client    string      `json:"client"`
	Title     string      `json:"title"`
	Items     []ScopeItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TotalHours sums estimates across all needed items.
func (a Assessment) TotalHours() float64 {
	var total float64
	for _, it := range a.Items {
		if !it.IsNeeded {
			continue
		}
		total += it.TotalHours()
	}
	return total
}

// RefObservation is one historical data point: the hours one past item
// actually consumed in one estimation column. Reference baselines are
// computed from collections of these.
type RefObservation struct {
	ItemID   string   `json:"item_id"`
	Category Category `json:"category"`
	Column   string   `json:"column"`
	Hours    float64  `json:"hours"`
	Batch    string   `json:"batch,omitempty"`
}

// RefObservationsFrom flattens historical scope items into per-column
// observations. Items flagged not needed are skipped.
func RefObservationsFrom(items []ScopeItem) []RefObservation {
	var out []RefObservation
	for _, it := range items {
		if !it.IsNeeded || it.Hours == nil {
			continue
		}
		for _, col := range it.Hours.Keys() {
			v, _ := it.Hours.Get(col)
			out = append(out, RefObservation{
				ItemID:   it.ID,
				Category: it.Category,
				Column:   col,
				Hours:    v,
			})
		}
	}
	return out
}

// TimelineTask is a scheduled block of work. Actors holds comma-separated
// role names that share the task's man-days equally.
type TimelineTask struct {
	Name         string  `json:"name"`
	Actors       string  `json:"actors"`
	ManDays      float64 `json:"man_days"`
	StartDay     int     `json:"start_day"`
	DurationDays int     `json:"duration_days"`
}

// TimelinePlan is the persisted task schedule for an assessment.
type TimelinePlan struct {
	ID           string         `json:"id"`
	AssessmentID string         `json:"assessment_id"`
	Tasks        []TimelineTask `json:"tasks"`
	TotalDays    int            `json:"total_days"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
