package types

import "fmt"

// HoursPerDay is the number of fixed time slots in the hourly table.
const HoursPerDay = 24

// HourlyRecord describes grid/solar/battery state for one hour of the day.
type HourlyRecord struct {
	// Time is the slot label in "HH:00" form.
	Time string `json:"time"`
	// GridCost is the per-kWh price charged by the utility for this hour.
	GridCost float64 `json:"gridCost"`
	// SolarProduction is solar output in kW.
	SolarProduction float64 `json:"solarProduction"`
	// OptimalCost is the cost for this hour under baseline optimization.
	OptimalCost float64 `json:"optimalCost"`
	// StandardCost is the cost for this hour without any optimization.
	StandardCost float64 `json:"standardCost"`
	// BatteryCharge is the battery state as a percentage. Not clamped to 100
	// when derived from an optimizer battery state.
	BatteryCharge float64 `json:"batteryCharge"`
	// OptimizedCost is only set once an optimized schedule has been overlaid.
	OptimizedCost *float64 `json:"optimizedCost,omitempty"`
}

// TimeLabel formats an hour (0-23) as the slot label used in the hourly table.
func TimeLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}
