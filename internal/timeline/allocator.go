// Package timeline spreads per-task man-days into a per-role, per-day
// effort matrix. It decides nothing about task ordering; start days and
// durations arrive already assigned.
package timeline

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/model"
)

// minPresence is the floor for supervising roles: PM and Architect never
// drop below this on any project day.
const minPresence = 0.5

// pmChain and architectChain identify the supervising rows among
// arbitrarily named roles. Ordered: exact matches across the whole chain
// win before prefix/suffix matches.
var (
	pmChain        = []string{"PM", "Project Manager"}
	architectChain = []string{"Architect", "Solution Architect", "Technical Architect"}
)

// RoleRow is one role's daily effort over the whole project.
type RoleRow struct {
	Role  string    `json:"role"`
	Daily []float64 `json:"daily"`
}

// TotalManDays sums the row's daily efforts.
func (r RoleRow) TotalManDays() float64 {
	var total float64
	for _, v := range r.Daily {
		total += v
	}
	return total
}

// Peak returns the row's maximum daily effort.
func (r RoleRow) Peak() float64 {
	var peak float64
	for _, v := range r.Daily {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// Allocation is the complete daily effort matrix. Every row's Daily slice
// has exactly TotalDays entries.
type Allocation struct {
	TotalDays int       `json:"total_days"`
	Rows      []RoleRow `json:"rows"`
}

// TotalManDays sums effort across all rows.
func (a Allocation) TotalManDays() float64 {
	var total float64
	for _, r := range a.Rows {
		total += r.TotalManDays()
	}
	return total
}

// Row returns the row for a role, matched case-insensitively.
func (a Allocation) Row(role string) (RoleRow, bool) {
	for _, r := range a.Rows {
		if strings.EqualFold(strings.TrimSpace(r.Role), strings.TrimSpace(role)) {
			return r, true
		}
	}
	return RoleRow{}, false
}

// PeakByRole returns each role's maximum daily effort, for headcount
// derivation.
func (a Allocation) PeakByRole() map[string]float64 {
	out := make(map[string]float64, len(a.Rows))
	for _, r := range a.Rows {
		out[r.Role] = r.Peak()
	}
	return out
}

// Allocator builds allocations under one role-ordering configuration.
type Allocator struct {
	roleOrder []string
}

// NewAllocator returns an allocator sorting rows by the given role order.
func NewAllocator(roleOrder []string) *Allocator {
	return &Allocator{roleOrder: roleOrder}
}

// Allocate turns tasks into the daily matrix.
//
// The project spans max(configuredDays, latest task end). Each task with a
// positive duration contributes manDays/duration per day, split evenly
// across its comma-separated actors, clipped to the project range. PM and
// Architect rows are forced to exist and floored at 0.5 every day. Roles
// whose rounded total is ≤ 0.01 man-days are dropped, except the two
// supervising rows, which always stay.
func (a *Allocator) Allocate(tasks []model.TimelineTask, configuredDays int) Allocation {
	totalDays := configuredDays
	for _, t := range tasks {
		if end := t.StartDay + t.DurationDays - 1; end > totalDays {
			totalDays = end
		}
	}
	if totalDays < 0 {
		totalDays = 0
	}

	buckets := model.NewFoldMap[[]float64]()
	row := func(role string) []float64 {
		if daily, ok := buckets.Get(role); ok {
			return daily
		}
		daily := make([]float64, totalDays)
		buckets.Set(role, daily)
		return daily
	}

	for _, t := range tasks {
		if t.DurationDays <= 0 || t.ManDays == 0 {
			continue
		}
		actors := splitActors(t.Actors)
		if len(actors) == 0 {
			continue
		}
		perDay := t.ManDays / float64(t.DurationDays)
		share := perDay / float64(len(actors))
		for _, actor := range actors {
			daily := row(actor)
			for day := t.StartDay; day < t.StartDay+t.DurationDays; day++ {
				if day < 1 || day > totalDays {
					continue
				}
				daily[day-1] += share
			}
		}
	}

	a.ensureFloor(buckets, pmChain, totalDays)
	a.ensureFloor(buckets, architectChain, totalDays)

	rows := make([]RoleRow, 0, buckets.Len())
	for _, role := range buckets.Keys() {
		daily, _ := buckets.Get(role)
		r := RoleRow{Role: role, Daily: daily}
		if !matchesChain(role, pmChain) && !matchesChain(role, architectChain) {
			if math.Round(r.TotalManDays()*100)/100 <= 0.01 {
				continue
			}
		}
		rows = append(rows, r)
	}
	a.sortRows(rows)

	alloc := Allocation{TotalDays: totalDays, Rows: rows}
	zap.L().Debug("timeline: allocated",
		zap.Int("tasks", len(tasks)),
		zap.Int("total_days", totalDays),
		zap.Int("roles", len(rows)),
		zap.Float64("total_man_days", alloc.TotalManDays()))
	return alloc
}

// ensureFloor guarantees a row matching the chain exists and holds the
// minimum presence on every day. When no computed row matches, the row is
// created under the configured role name if the configuration has one,
// else under the chain's canonical first name.
func (a *Allocator) ensureFloor(buckets *model.FoldMap[[]float64], chain []string, totalDays int) {
	name, ok := findKey(buckets.Keys(), chain)
	if !ok {
		if cfgName, found := findKey(a.roleOrder, chain); found {
			name = cfgName
		} else {
			name = chain[0]
		}
	}
	daily, ok := buckets.Get(name)
	if !ok {
		daily = make([]float64, totalDays)
		buckets.Set(name, daily)
	}
	for i, v := range daily {
		if v < minPresence {
			daily[i] = minPresence
		}
	}
}

func splitActors(actors string) []string {
	parts := strings.Split(actors, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// findKey tries every chain candidate as an exact case-insensitive match
// over keys, then falls back to prefix/suffix matching. Chain order is
// observable behavior.
func findKey(keys []string, chain []string) (string, bool) {
	for _, cand := range chain {
		for _, k := range keys {
			if strings.EqualFold(strings.TrimSpace(k), cand) {
				return k, true
			}
		}
	}
	for _, cand := range chain {
		f := strings.ToLower(cand)
		for _, k := range keys {
			name := strings.ToLower(strings.TrimSpace(k))
			if strings.HasPrefix(name, f) || strings.HasSuffix(name, f) {
				return k, true
			}
		}
	}
	return "", false
}

func matchesChain(role string, chain []string) bool {
	_, ok := findKey([]string{role}, chain)
	return ok
}

// sortRows orders by configured position, then alphabetically for roles
// the configuration does not know.
func (a *Allocator) sortRows(rows []RoleRow) {
	index := func(role string) int {
		for i, r := range a.roleOrder {
			if strings.EqualFold(strings.TrimSpace(r), strings.TrimSpace(role)) {
				return i
			}
		}
		return len(a.roleOrder)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ii, ij := index(rows[i].Role), index(rows[j].Role)
		if ii != ij {
			return ii < ij
		}
		return strings.ToLower(rows[i].Role) < strings.ToLower(rows[j].Role)
	})
}
