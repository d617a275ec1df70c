package types

import "time"

// NormalizedAppliance is the canonical export form of an appliance, keyed in
// a Snapshot by the normalized (slugified) appliance name.
type NormalizedAppliance struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	PowerW   float64 `json:"power"`
	Flexible bool    `json:"flexible"`
	// RunDuration in hours.
	RunDuration float64 `json:"run_duration"`
	// CurrentHours and PreferredHours default to empty lists, never null.
	CurrentHours       []int         `json:"current_hours"`
	PreferredHours     []int         `json:"preferred_hours"`
	PriorityLevel      PriorityLevel `json:"priority_level"`
	PreferredTimeOfDay []string      `json:"preferred_time_of_day"`
}

// Snapshot is the canonical export object: the request body for the external
// optimizer, the file-export document, and the durable-state payload.
type Snapshot struct {
	Appliances    map[string]NormalizedAppliance `json:"appliances"`
	EnergyProfile EnergyProfile                  `json:"energy_profile"`
	Timestamp     time.Time                      `json:"timestamp"`
}
