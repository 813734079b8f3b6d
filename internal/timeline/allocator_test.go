package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopecraft/presales-cli/internal/model"
)

func task(name, actors string, manDays float64, start, duration int) model.TimelineTask {
	return model.TimelineTask{Name: name, Actors: actors, ManDays: manDays, StartDay: start, DurationDays: duration}
}

func TestAllocateSingleTask(t *testing.T) {
	t.Parallel()

	a := NewAllocator(nil)
	got := a.Allocate([]model.TimelineTask{task("Build", "Dev", 40, 1, 20)}, 0)

	assert.Equal(t, 20, got.TotalDays)

	dev, ok := got.Row("Dev")
	require.True(t, ok)
	require.Len(t, dev.Daily, 20)
	for day, v := range dev.Daily {
		assert.InDelta(t, 2.0, v, 1e-9, "day %d", day+1) // 40/20
	}
	assert.InDelta(t, 40.0, dev.TotalManDays(), 1e-9)

	// Supervising rows are created and floored even with no tasks of
	// their own.
	pm, ok := got.Row("PM")
	require.True(t, ok)
	arch, ok := got.Row("Architect")
	require.True(t, ok)
	for day := 0; day < 20; day++ {
		assert.InDelta(t, 0.5, pm.Daily[day], 1e-9)
		assert.InDelta(t, 0.5, arch.Daily[day], 1e-9)
	}
}

func TestAllocateMatrixInvariants(t *testing.T) {
	t.Parallel()

	a := NewAllocator([]string{"Project Manager", "Architect", "Dev", "QA"})
	got := a.Allocate([]model.TimelineTask{
		task("Design", "Architect", 5, 1, 10),
		task("Build", "Dev, QA", 30, 5, 10),
		task("Stabilize", "QA", 8, 15, 8),
	}, 0)

	assert.Equal(t, 22, got.TotalDays) // stabilize ends day 15+8-1

	for _, row := range got.Rows {
		assert.Len(t, row.Daily, got.TotalDays, "role %s", row.Role)
		for day, v := range row.Daily {
			assert.GreaterOrEqual(t, v, 0.0, "role %s day %d", row.Role, day+1)
		}
	}

	pm, ok := got.Row("Project Manager")
	require.True(t, ok)
	arch, ok := got.Row("Architect")
	require.True(t, ok)
	for day := 0; day < got.TotalDays; day++ {
		assert.GreaterOrEqual(t, pm.Daily[day], 0.5, "pm day %d", day+1)
		assert.GreaterOrEqual(t, arch.Daily[day], 0.5, "architect day %d", day+1)
	}
}

func TestAllocateSharedActors(t *testing.T) {
	t.Parallel()

	a := NewAllocator(nil)
	got := a.Allocate([]model.TimelineTask{task("Build", "Dev, QA", 20, 1, 10)}, 0)

	dev, _ := got.Row("Dev")
	qa, _ := got.Row("QA")
	// perDay 2, split across two actors.
	assert.InDelta(t, 1.0, dev.Daily[0], 1e-9)
	assert.InDelta(t, 1.0, qa.Daily[9], 1e-9)
	assert.InDelta(t, 10.0, dev.TotalManDays(), 1e-9)
}

func TestAllocateClipsOutOfRangeDays(t *testing.T) {
	t.Parallel()

	a := NewAllocator(nil)
	// Days -2..2 clip to 1..2: only two of five days land.
	got := a.Allocate([]model.TimelineTask{task("Prep", "Dev", 10, -2, 5)}, 0)

	dev, ok := got.Row("Dev")
	require.True(t, ok)
	assert.Equal(t, 2, got.TotalDays)
	assert.InDelta(t, 2.0, dev.Daily[0], 1e-9) // 10/5 per day
	assert.InDelta(t, 2.0, dev.Daily[1], 1e-9)
	assert.InDelta(t, 4.0, dev.TotalManDays(), 1e-9)
}

func TestAllocateConfiguredDaysExtend(t *testing.T) {
	t.Parallel()

	a := NewAllocator(nil)
	got := a.Allocate([]model.TimelineTask{task("Build", "Dev", 10, 1, 5)}, 30)

	assert.Equal(t, 30, got.TotalDays)
	dev, _ := got.Row("Dev")
	require.Len(t, dev.Daily, 30)
	assert.InDelta(t, 2.0, dev.Daily[4], 1e-9)
	assert.Zero(t, dev.Daily[5])

	pm, _ := got.Row("PM")
	assert.Len(t, pm.Daily, 30)
	assert.InDelta(t, 0.5, pm.Daily[29], 1e-9)
}

func TestAllocateZeroDurationSkipped(t *testing.T) {
	t.Parallel()

	a := NewAllocator(nil)
	got := a.Allocate([]model.TimelineTask{
		task("Milestone", "Dev", 5, 4, 0),
		task("Build", "Dev", 10, 1, 5),
	}, 0)

	dev, _ := got.Row("Dev")
	// The zero-duration task contributes no effort and no division blows
	// up; only Build's 2/day lands.
	assert.InDelta(t, 10.0, dev.TotalManDays(), 1e-9)
	assert.Equal(t, 5, got.TotalDays)
}

func TestAllocateFloorMergesWithTaskEffort(t *testing.T) {
	t.Parallel()

	a := NewAllocator(nil)
	got := a.Allocate([]model.TimelineTask{
		task("Oversee", "Project Manager", 2, 1, 10),  // 0.2/day, below floor
		task("Steering", "Project Manager", 8, 11, 10), // 0.8/day, above floor
	}, 0)

	pm, ok := got.Row("Project Manager")
	require.True(t, ok)
	assert.InDelta(t, 0.5, pm.Daily[0], 1e-9) // raised
	assert.InDelta(t, 0.8, pm.Daily[10], 1e-9) // untouched

	// No duplicate canonical "PM" row appears next to the matched one.
	_, clash := got.Row("PM")
	assert.False(t, clash)
}

func TestAllocatePrunesNegligibleRoles(t *testing.T) {
	t.Parallel()

	a := NewAllocator(nil)
	got := a.Allocate([]model.TimelineTask{
		task("Build", "Dev", 10, 1, 5),
		task("Glance", "Reviewer", 0.008, 1, 1), // rounds to 0.01, dropped
	}, 0)

	_, ok := got.Row("Reviewer")
	assert.False(t, ok)
	_, ok = got.Row("Dev")
	assert.True(t, ok)

	// Supervisors survive pruning no matter how small their total.
	_, ok = got.Row("PM")
	assert.True(t, ok)
}

func TestAllocateSortOrder(t *testing.T) {
	t.Parallel()

	a := NewAllocator([]string{"Project Manager", "Architect", "Dev"})
	got := a.Allocate([]model.TimelineTask{
		task("Build", "Zeta, Dev, Alpha", 30, 1, 10),
		task("Oversee", "Project Manager", 10, 1, 10),
	}, 0)

	names := make([]string, 0, len(got.Rows))
	for _, r := range got.Rows {
		names = append(names, r.Role)
	}
	// Configured first in configured order, then the rest alphabetically.
	assert.Equal(t, []string{"Project Manager", "Architect", "Dev", "Alpha", "Zeta"}, names)
}

func TestAllocateUsesConfiguredSupervisorNames(t *testing.T) {
	t.Parallel()

	a := NewAllocator([]string{"Solution Architect", "Project Manager"})
	got := a.Allocate([]model.TimelineTask{task("Build", "Dev", 10, 1, 5)}, 0)

	_, ok := got.Row("Solution Architect")
	assert.True(t, ok)
	_, ok = got.Row("Architect")
	assert.False(t, ok)
}

func TestAllocateEmpty(t *testing.T) {
	t.Parallel()

	a := NewAllocator(nil)
	got := a.Allocate(nil, 0)

	assert.Zero(t, got.TotalDays)
	// Supervisor rows still exist, just with no days.
	require.Len(t, got.Rows, 2)
	for _, r := range got.Rows {
		assert.Empty(t, r.Daily)
	}
	assert.Zero(t, got.TotalManDays())
}

func TestPeakByRole(t *testing.T) {
	t.Parallel()

	a := NewAllocator(nil)
	got := a.Allocate([]model.TimelineTask{
		task("Build", "Dev", 10, 1, 5),    // 2/day
		task("Fix", "Dev", 9, 3, 3),       // +3/day on days 3..5
	}, 0)

	peaks := got.PeakByRole()
	assert.InDelta(t, 5.0, peaks["Dev"], 1e-9)
	assert.InDelta(t, 0.5, peaks["PM"], 1e-9)
}
