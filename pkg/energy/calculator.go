// Package energy derives the dashboard's hourly cost table and aggregate
// savings from the baseline data, the solar state, and an optional optimized
// schedule. All functions operate on copies; the baseline is never mutated.
package energy

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gmcavallazzi/opthome/pkg/types"
)

// batteryCapacityKWH converts optimizer battery levels (kWh) to a percentage.
// The resulting percentage is deliberately not clamped to [0,100].
const batteryCapacityKWH = 3.5

// solarDisabledOptimalFactor models reduced optimization headroom when solar
// is off: optimal cost sits at 85% of standard cost.
const solarDisabledOptimalFactor = 0.85

// Derive produces the 24-record table for the current solar state with the
// optimized schedule overlaid when present. It tolerates missing optional
// schedule fields and never fails on a well-formed input.
func Derive(records []types.HourlyRecord, solarEnabled bool, sched *types.OptimizedSchedule) []types.HourlyRecord {
	out := make([]types.HourlyRecord, len(records))
	copy(out, records)

	if !solarEnabled {
		for i := range out {
			out[i].SolarProduction = 0
			out[i].OptimalCost = out[i].StandardCost * solarDisabledOptimalFactor
			out[i].BatteryCharge = math.Max(20, out[i].BatteryCharge*0.5)
		}
	}

	if sched == nil || len(sched.DailySchedule) == 0 {
		return out
	}

	for i := range out {
		hourKey := strconv.Itoa(i)
		entries, ok := sched.DailySchedule[hourKey]
		if !ok {
			// hours absent from the schedule fall back to the optimal cost
			cost := out[i].OptimalCost
			out[i].OptimizedCost = &cost
			continue
		}

		var totalW float64
		for _, e := range entries {
			totalW += e.PowerW
		}
		cost := totalW / 1000 * out[i].GridCost
		out[i].OptimizedCost = &cost

		if sched.Battery != nil {
			if level, ok := sched.Battery.HourlyState[hourKey]; ok {
				out[i].BatteryCharge = level / batteryCapacityKWH * 100
			}
		}
	}
	return out
}

// Savings computes the aggregate over a derived table. When the schedule
// carries an explicit daily savings figure it wins; otherwise the amount is
// the standard total minus the optimized (or optimal) total. Internal sums
// keep full float precision; only the percentage is formatted, to one
// decimal place.
func Savings(records []types.HourlyRecord, sched *types.OptimizedSchedule) types.SavingsSummary {
	var totalStandard float64
	for _, r := range records {
		totalStandard += r.StandardCost
	}

	if sched != nil && sched.Savings != nil && sched.Savings.Daily != 0 {
		amount := sched.Savings.Daily
		return types.SavingsSummary{
			TotalStandardCost: totalStandard,
			SavingsAmount:     amount,
			SavingsPercentage: formatPercentage(amount, totalStandard),
		}
	}

	var totalOptimal float64
	for _, r := range records {
		if r.OptimizedCost != nil {
			totalOptimal += *r.OptimizedCost
		} else {
			totalOptimal += r.OptimalCost
		}
	}
	amount := totalStandard - totalOptimal
	return types.SavingsSummary{
		TotalStandardCost: totalStandard,
		SavingsAmount:     amount,
		SavingsPercentage: formatPercentage(amount, totalStandard),
	}
}

func formatPercentage(amount, total float64) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", amount/total*100)
}
