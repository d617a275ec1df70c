package types

// Optimization strategies the external optimizer understands.
const (
	StrategyCostSavings = "cost_savings"
	StrategyGreenEnergy = "green_energy"
	StrategyBalanced    = "balanced"
	StrategyComfort     = "comfort"
)

// Defaults applied when an energy profile field is unset.
const (
	DefaultHouseholdType     = "custom"
	DefaultBatteryMinReserve = 30
	DefaultBatteryStrategy   = "peak_price"
)

// BatterySettings describes how the home battery should be managed.
type BatterySettings struct {
	// MinReserve is the minimum reserve percentage to keep in the battery.
	MinReserve float64 `json:"min_reserve"`
	Strategy   string  `json:"strategy"`
}

// EnergyProfile describes the optimization objective sent alongside the
// appliance export on every optimize call.
type EnergyProfile struct {
	OptimizationStrategy string          `json:"optimization_strategy"`
	HouseholdType        string          `json:"household_type"`
	BatterySettings      BatterySettings `json:"battery_settings"`
	SolarEnabled         bool            `json:"solar_enabled"`
}

// WithDefaults returns a copy with unset fields replaced by defaults.
func (p EnergyProfile) WithDefaults() EnergyProfile {
	if p.OptimizationStrategy == "" {
		p.OptimizationStrategy = StrategyCostSavings
	}
	if p.HouseholdType == "" {
		p.HouseholdType = DefaultHouseholdType
	}
	if p.BatterySettings.MinReserve == 0 {
		p.BatterySettings.MinReserve = DefaultBatteryMinReserve
	}
	if p.BatterySettings.Strategy == "" {
		p.BatterySettings.Strategy = DefaultBatteryStrategy
	}
	return p
}

// ValidStrategy reports whether s is a known optimization strategy.
func ValidStrategy(s string) bool {
	switch s {
	case StrategyCostSavings, StrategyGreenEnergy, StrategyBalanced, StrategyComfort:
		return true
	}
	return false
}
