package energy

import (
	"testing"

	"github.com/gmcavallazzi/opthome/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSolarDisabled(t *testing.T) {
	records := []types.HourlyRecord{
		{Time: "00:00", StandardCost: 1.00, OptimalCost: 0.50, SolarProduction: 2.0, BatteryCharge: 10},
		{Time: "01:00", StandardCost: 0.40, OptimalCost: 0.30, SolarProduction: 1.5, BatteryCharge: 80},
	}

	derived := Derive(records, false, nil)

	assert.Equal(t, 0.0, derived[0].SolarProduction)
	assert.InDelta(t, 0.85, derived[0].OptimalCost, 1e-9)
	// max(20, 10*0.5) = 20
	assert.Equal(t, 20.0, derived[0].BatteryCharge)
	// max(20, 80*0.5) = 40
	assert.Equal(t, 40.0, derived[1].BatteryCharge)

	// baseline untouched
	assert.Equal(t, 2.0, records[0].SolarProduction)
	assert.Equal(t, 10.0, records[0].BatteryCharge)
}

func TestDeriveSolarEnabledNoSchedule(t *testing.T) {
	records := types.DefaultHourlyData()
	derived := Derive(records, true, nil)
	assert.Equal(t, records, derived)
	for _, r := range derived {
		assert.Nil(t, r.OptimizedCost)
	}
}

func TestDeriveOptimizedOverlay(t *testing.T) {
	records := types.DefaultHourlyData()
	records[5].GridCost = 0.20

	sched := &types.OptimizedSchedule{
		DailySchedule: map[string][]types.ScheduleEntry{
			"5": {
				{ID: 1, Name: "Dishwasher", PowerW: 1000},
				{ID: 3, Name: "Dryer", PowerW: 2000},
			},
		},
	}

	derived := Derive(records, true, sched)

	// (1000+2000)/1000 * 0.20 = 0.60
	require.NotNil(t, derived[5].OptimizedCost)
	assert.InDelta(t, 0.60, *derived[5].OptimizedCost, 1e-9)

	// hours absent from the schedule default to the optimal cost
	require.NotNil(t, derived[6].OptimizedCost)
	assert.Equal(t, records[6].OptimalCost, *derived[6].OptimizedCost)
	// and keep their battery charge
	assert.Equal(t, records[6].BatteryCharge, derived[6].BatteryCharge)
}

func TestDeriveBatteryStateConversion(t *testing.T) {
	records := types.DefaultHourlyData()
	sched := &types.OptimizedSchedule{
		DailySchedule: map[string][]types.ScheduleEntry{
			"0": {{ID: 7, Name: "Refrigerator", PowerW: 150}},
			"1": {{ID: 7, Name: "Refrigerator", PowerW: 150}},
		},
		Battery: &types.BatteryState{
			HourlyState: map[string]float64{
				"0": 1.75,
				// hour 1 has schedule entries but no battery state
			},
		},
	}

	derived := Derive(records, true, sched)

	// 1.75 / 3.5 * 100 = 50
	assert.InDelta(t, 50.0, derived[0].BatteryCharge, 1e-9)
	// missing battery state retains the existing charge
	assert.Equal(t, records[1].BatteryCharge, derived[1].BatteryCharge)
}

func TestDeriveBatteryStateNotClamped(t *testing.T) {
	records := types.DefaultHourlyData()
	sched := &types.OptimizedSchedule{
		DailySchedule: map[string][]types.ScheduleEntry{
			"0": {{ID: 7, Name: "Refrigerator", PowerW: 150}},
		},
		Battery: &types.BatteryState{
			HourlyState: map[string]float64{"0": 4.2},
		},
	}
	derived := Derive(records, true, sched)
	// 4.2 / 3.5 * 100 = 120: values above 100 pass through
	assert.InDelta(t, 120.0, derived[0].BatteryCharge, 1e-9)
}

func TestSavingsExplicitDaily(t *testing.T) {
	records := []types.HourlyRecord{
		{StandardCost: 4.00},
		{StandardCost: 6.00},
	}
	sched := &types.OptimizedSchedule{
		Savings: &types.SavingsEstimate{Daily: 2.50},
	}

	summary := Savings(records, sched)

	assert.Equal(t, 10.00, summary.TotalStandardCost)
	assert.Equal(t, 2.50, summary.SavingsAmount)
	assert.Equal(t, "25.0", summary.SavingsPercentage)
}

func TestSavingsComputedFromCosts(t *testing.T) {
	optimized := 0.40
	records := []types.HourlyRecord{
		{StandardCost: 1.00, OptimalCost: 0.80},
		{StandardCost: 1.00, OptimalCost: 0.60, OptimizedCost: &optimized},
	}

	summary := Savings(records, nil)

	assert.Equal(t, 2.00, summary.TotalStandardCost)
	// 2.00 - (0.80 + 0.40) = 0.80
	assert.InDelta(t, 0.80, summary.SavingsAmount, 1e-9)
	assert.Equal(t, "40.0", summary.SavingsPercentage)
}

func TestSavingsZeroStandardCost(t *testing.T) {
	summary := Savings(nil, nil)
	assert.Equal(t, 0.0, summary.TotalStandardCost)
	assert.Equal(t, "0.0", summary.SavingsPercentage)
}

func TestDefaultHourlyDataShape(t *testing.T) {
	records := types.DefaultHourlyData()
	require.Len(t, records, types.HoursPerDay)
	for i, r := range records {
		assert.Equal(t, types.TimeLabel(i), r.Time)
	}
}
