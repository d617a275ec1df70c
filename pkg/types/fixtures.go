package types

// DefaultAppliances returns the preloaded system appliances shown before the
// user adds their own.
func DefaultAppliances() []Appliance {
	allDay := make([]int, HoursPerDay)
	for h := range allDay {
		allDay[h] = h
	}
	return []Appliance{
		{ID: 1, Name: "Dishwasher", Emoji: "🍽️", PowerW: 1200, Flexible: true, RunDuration: 1.5, OptimalHours: []int{19, 20}, CurrentHours: []int{19, 20}},
		{ID: 2, Name: "Washing Machine", Emoji: "👕", PowerW: 500, Flexible: true, RunDuration: 1, OptimalHours: []int{18}, CurrentHours: []int{18}},
		{ID: 3, Name: "Dryer", Emoji: "💨", PowerW: 3000, Flexible: true, RunDuration: 1, OptimalHours: []int{19}, CurrentHours: []int{19}},
		{ID: 4, Name: "EV Charger", Emoji: "🔌", PowerW: 7200, Flexible: true, RunDuration: 3, OptimalHours: []int{18, 19, 20}, CurrentHours: []int{18, 19, 20}},
		{ID: 5, Name: "Water Heater", Emoji: "🚿", PowerW: 4500, Flexible: true, RunDuration: 2, OptimalHours: []int{17, 18}, CurrentHours: []int{17, 18}},
		{ID: 6, Name: "Air Conditioner", Emoji: "❄️", PowerW: 3500, Flexible: false, RunDuration: 8, OptimalHours: []int{12, 13, 14, 15, 16, 17, 18, 19}, CurrentHours: []int{12, 13, 14, 15, 16, 17, 18, 19}},
		{ID: 7, Name: "Refrigerator", Emoji: "🧊", PowerW: 150, Flexible: false, RunDuration: 24, OptimalHours: allDay, CurrentHours: append([]int(nil), allDay...)},
	}
}

// DefaultHourlyData returns the baseline 24-record cost/production table.
// Derived copies are produced per solar state and optimizer overlay; the
// baseline itself is never mutated.
func DefaultHourlyData() []HourlyRecord {
	return []HourlyRecord{
		{Time: "00:00", GridCost: 0.08, SolarProduction: 0, OptimalCost: 0.14, StandardCost: 0.15, BatteryCharge: 45},
		{Time: "01:00", GridCost: 0.07, SolarProduction: 0, OptimalCost: 0.11, StandardCost: 0.12, BatteryCharge: 43},
		{Time: "02:00", GridCost: 0.06, SolarProduction: 0, OptimalCost: 0.09, StandardCost: 0.10, BatteryCharge: 41},
		{Time: "03:00", GridCost: 0.06, SolarProduction: 0, OptimalCost: 0.08, StandardCost: 0.09, BatteryCharge: 39},
		{Time: "04:00", GridCost: 0.07, SolarProduction: 0, OptimalCost: 0.09, StandardCost: 0.10, BatteryCharge: 38},
		{Time: "05:00", GridCost: 0.08, SolarProduction: 0, OptimalCost: 0.14, StandardCost: 0.15, BatteryCharge: 36},
		{Time: "06:00", GridCost: 0.12, SolarProduction: 0.1, OptimalCost: 0.30, StandardCost: 0.32, BatteryCharge: 35},
		{Time: "07:00", GridCost: 0.15, SolarProduction: 0.6, OptimalCost: 0.45, StandardCost: 0.48, BatteryCharge: 36},
		{Time: "08:00", GridCost: 0.18, SolarProduction: 1.2, OptimalCost: 0.60, StandardCost: 0.65, BatteryCharge: 40},
		{Time: "09:00", GridCost: 0.20, SolarProduction: 1.8, OptimalCost: 0.70, StandardCost: 0.75, BatteryCharge: 45},
		{Time: "10:00", GridCost: 0.18, SolarProduction: 2.4, OptimalCost: 0.50, StandardCost: 0.55, BatteryCharge: 52},
		{Time: "11:00", GridCost: 0.16, SolarProduction: 2.8, OptimalCost: 0.44, StandardCost: 0.48, BatteryCharge: 59},
		{Time: "12:00", GridCost: 0.15, SolarProduction: 3.0, OptimalCost: 0.42, StandardCost: 0.45, BatteryCharge: 66},
		{Time: "13:00", GridCost: 0.16, SolarProduction: 2.9, OptimalCost: 0.47, StandardCost: 0.50, BatteryCharge: 73},
		{Time: "14:00", GridCost: 0.17, SolarProduction: 2.8, OptimalCost: 0.49, StandardCost: 0.52, BatteryCharge: 78},
		{Time: "15:00", GridCost: 0.18, SolarProduction: 2.5, OptimalCost: 0.52, StandardCost: 0.55, BatteryCharge: 82},
		{Time: "16:00", GridCost: 0.20, SolarProduction: 1.9, OptimalCost: 0.57, StandardCost: 0.60, BatteryCharge: 85},
		{Time: "17:00", GridCost: 0.22, SolarProduction: 1.2, OptimalCost: 0.68, StandardCost: 0.70, BatteryCharge: 84},
		{Time: "18:00", GridCost: 0.25, SolarProduction: 0.6, OptimalCost: 1.07, StandardCost: 0.90, BatteryCharge: 80},
		{Time: "19:00", GridCost: 0.28, SolarProduction: 0.2, OptimalCost: 1.15, StandardCost: 1.20, BatteryCharge: 74},
		{Time: "20:00", GridCost: 0.30, SolarProduction: 0, OptimalCost: 1.16, StandardCost: 1.40, BatteryCharge: 67},
		{Time: "21:00", GridCost: 0.28, SolarProduction: 0, OptimalCost: 1.05, StandardCost: 1.10, BatteryCharge: 60},
		{Time: "22:00", GridCost: 0.20, SolarProduction: 0, OptimalCost: 0.68, StandardCost: 0.70, BatteryCharge: 54},
		{Time: "23:00", GridCost: 0.12, SolarProduction: 0, OptimalCost: 0.33, StandardCost: 0.35, BatteryCharge: 49},
	}
}
