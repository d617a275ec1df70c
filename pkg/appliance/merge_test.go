package appliance

import (
	"testing"

	"github.com/gmcavallazzi/opthome/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestMergeOptimizedHours(t *testing.T) {
	apps := []types.Appliance{
		{ID: 1, Name: "Dishwasher", OptimalHours: []int{19, 20}},
		{ID: 2, Name: "Washing Machine", OptimalHours: []int{18}},
	}
	sched := &types.OptimizedSchedule{
		OptimizedAppliances: map[string]types.OptimizedAppliance{
			"dishwasher": {OptimizedHours: []int{2, 3}},
		},
	}

	merged := MergeOptimizedHours(apps, sched)

	assert.Equal(t, []int{2, 3}, merged[0].OptimalHours)
	// no entry for washing_machine: passes through unchanged
	assert.Equal(t, []int{18}, merged[1].OptimalHours)

	// inputs are not mutated
	assert.Equal(t, []int{19, 20}, apps[0].OptimalHours)
}

func TestMergeOptimizedHoursNilSchedule(t *testing.T) {
	apps := []types.Appliance{{ID: 1, Name: "Dryer", OptimalHours: []int{19}}}
	assert.Equal(t, apps, MergeOptimizedHours(apps, nil))
	assert.Equal(t, apps, MergeOptimizedHours(apps, &types.OptimizedSchedule{}))
}

func TestMergeOptimizedHoursDedupesAndSorts(t *testing.T) {
	apps := []types.Appliance{{ID: 1, Name: "EV Charger", OptimalHours: []int{18}}}
	sched := &types.OptimizedSchedule{
		OptimizedAppliances: map[string]types.OptimizedAppliance{
			"ev_charger": {OptimizedHours: []int{3, 1, 2, 1}},
		},
	}
	merged := MergeOptimizedHours(apps, sched)
	assert.Equal(t, []int{1, 2, 3}, merged[0].OptimalHours)
}

func TestMergeOptimizedHoursEmptyHoursEntry(t *testing.T) {
	apps := []types.Appliance{{ID: 1, Name: "Dryer", OptimalHours: []int{19}}}
	sched := &types.OptimizedSchedule{
		OptimizedAppliances: map[string]types.OptimizedAppliance{
			"dryer": {},
		},
	}
	merged := MergeOptimizedHours(apps, sched)
	assert.Equal(t, []int{19}, merged[0].OptimalHours)
}
