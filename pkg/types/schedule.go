package types

import "time"

// ScheduleEntry is one appliance running during a scheduled hour. Power is in
// watts; consumers must divide by 1000 before multiplying by a grid cost.
type ScheduleEntry struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	PowerW float64 `json:"power"`
}

// BatteryState holds the optimizer's projected battery levels in kWh, keyed
// by stringified hour ("0".."23").
type BatteryState struct {
	HourlyState map[string]float64 `json:"hourly_state"`
	MinState    float64            `json:"min_state"`
	MaxState    float64            `json:"max_state"`
}

// SavingsEstimate carries the optimizer's projected currency savings.
type SavingsEstimate struct {
	Daily   float64 `json:"daily"`
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// OptimizedAppliance is the optimizer's per-appliance result, keyed in
// OptimizedSchedule by the normalized appliance name.
type OptimizedAppliance struct {
	ID             int     `json:"id,omitempty"`
	Name           string  `json:"name,omitempty"`
	PowerW         float64 `json:"power,omitempty"`
	Flexible       bool    `json:"flexible,omitempty"`
	RunDuration    float64 `json:"run_duration,omitempty"`
	OptimizedHours []int   `json:"optimized_hours,omitempty"`
}

// Recommendation is a human-readable suggestion grouped by period of day.
type Recommendation struct {
	Period     string   `json:"period"`
	Emoji      string   `json:"emoji"`
	Appliances []string `json:"appliances"`
}

// OptimizedSchedule is the external optimizer's result: the assignment of
// appliances to hours plus projected savings. Hour keys in DailySchedule and
// Battery.HourlyState are stringified integers 0-23.
type OptimizedSchedule struct {
	Timestamp           time.Time                     `json:"timestamp"`
	OptimizationStatus  string                        `json:"optimization_status,omitempty"`
	OptimizationMethod  string                        `json:"optimization_method,omitempty"`
	Savings             *SavingsEstimate              `json:"savings,omitempty"`
	Battery             *BatteryState                 `json:"battery,omitempty"`
	DailySchedule       map[string][]ScheduleEntry    `json:"daily_schedule,omitempty"`
	OptimizedAppliances map[string]OptimizedAppliance `json:"optimized_appliances,omitempty"`
	Recommendations     []Recommendation              `json:"recommendations,omitempty"`
}

// SavingsSummary is the aggregate derived from the hourly table and an
// optional optimized schedule.
type SavingsSummary struct {
	TotalStandardCost float64 `json:"totalStandardCost"`
	SavingsAmount     float64 `json:"savingsAmount"`
	// SavingsPercentage is formatted to one decimal place, e.g. "25.0".
	SavingsPercentage string `json:"savingsPercentage"`
}
