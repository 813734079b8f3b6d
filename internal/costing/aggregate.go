package costing

import (
	"sort"
	"strings"

	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/internal/normalize"
)

// AggregateManDays groups normalized column hours into per-role man-days,
// converting with the policy's hours-per-day. Roles appear in the
// configured display order; roles the configuration does not know go last,
// alphabetically.
func AggregateManDays(ests []normalize.ItemEstimate, policy model.EstimationPolicy, roleOrder []string) []RoleManDays {
	hoursPerDay := policy.HoursPerDay
	if hoursPerDay <= 0 {
		hoursPerDay = 8
	}

	totals := model.NewFoldMap[float64]()
	for _, est := range ests {
		for _, tr := range est.Columns {
			role := tr.Role
			if role == "" {
				role = policy.ColumnRole(tr.Column)
			}
			if role == "" {
				continue
			}
			cur, _ := totals.Get(role)
			totals.Set(role, cur+tr.Final)
		}
	}

	out := make([]RoleManDays, 0, totals.Len())
	for _, role := range totals.Keys() {
		hours, _ := totals.Get(role)
		out = append(out, RoleManDays{Role: role, ManDays: hours / hoursPerDay})
	}
	SortByRoleOrder(out, roleOrder)
	return out
}

// ApplyEffortPeaks copies timeline peak daily efforts onto man-day rows by
// case-insensitive role match.
func ApplyEffortPeaks(manDays []RoleManDays, peaks map[string]float64) []RoleManDays {
	folded := make(map[string]float64, len(peaks))
	for role, peak := range peaks {
		folded[strings.ToLower(strings.TrimSpace(role))] = peak
	}
	out := make([]RoleManDays, len(manDays))
	for i, rmd := range manDays {
		if peak, ok := folded[strings.ToLower(strings.TrimSpace(rmd.Role))]; ok {
			rmd.PeakDailyEffort = peak
		}
		out[i] = rmd
	}
	return out
}

// SortByRoleOrder sorts rows by position in the configured role list;
// unconfigured roles sort after configured ones, alphabetically.
func SortByRoleOrder(rows []RoleManDays, roleOrder []string) {
	index := func(role string) int {
		for i, r := range roleOrder {
			if strings.EqualFold(strings.TrimSpace(r), strings.TrimSpace(role)) {
				return i
			}
		}
		return len(roleOrder)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ii, ij := index(rows[i].Role), index(rows[j].Role)
		if ii != ij {
			return ii < ij
		}
		return strings.ToLower(rows[i].Role) < strings.ToLower(rows[j].Role)
	})
}
