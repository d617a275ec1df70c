package tariff

import (
	"context"
	"fmt"
	"math"

	"github.com/gmcavallazzi/opthome/pkg/types"
)

// Period is one time-of-use rate window. HourEnd is exclusive.
type Period struct {
	HourStart     int     `json:"hourStart"`
	HourEnd       int     `json:"hourEnd"`
	DollarsPerKWH float64 `json:"dollarsPerKWH"`
	Description   string  `json:"description,omitempty"`
}

// TOU generates the hourly table from a set of rate periods combined with a
// typical household load curve and solar production profile.
type TOU struct {
	rates [types.HoursPerDay]float64
}

func defaultTOUPeriods() []Period {
	return []Period{
		{HourStart: 0, HourEnd: 6, DollarsPerKWH: 0.07, Description: "Night"},
		{HourStart: 6, HourEnd: 16, DollarsPerKWH: 0.17, Description: "Day"},
		{HourStart: 16, HourEnd: 21, DollarsPerKWH: 0.28, Description: "Peak"},
		{HourStart: 21, HourEnd: 24, DollarsPerKWH: 0.15, Description: "Evening"},
	}
}

// householdLoadKWH is the assumed consumption per hour used to price each
// slot, low overnight and peaking in the evening.
var householdLoadKWH = [types.HoursPerDay]float64{
	1.9, 1.7, 1.7, 1.5, 1.4, 1.9,
	2.7, 3.2, 3.6, 3.8, 3.1, 3.0,
	3.0, 3.1, 3.1, 3.1, 3.0, 3.2,
	3.6, 4.3, 4.7, 3.9, 3.5, 2.9,
}

// solarProfileKW is the expected solar output per hour in kW.
var solarProfileKW = [types.HoursPerDay]float64{
	0, 0, 0, 0, 0, 0,
	0.1, 0.6, 1.2, 1.8, 2.4, 2.8,
	3.0, 2.9, 2.8, 2.5, 1.9, 1.2,
	0.6, 0.2, 0, 0, 0, 0,
}

const baselineOptimalFactor = 0.93

// NewTOU builds a provider from the given rate periods. Every hour of the
// day must be covered by exactly one period.
func NewTOU(periods []Period) (*TOU, error) {
	var t TOU
	var covered [types.HoursPerDay]bool
	for _, p := range periods {
		if p.HourStart < 0 || p.HourEnd > types.HoursPerDay || p.HourStart >= p.HourEnd {
			return nil, fmt.Errorf("invalid period %+v", p)
		}
		if p.DollarsPerKWH < 0 {
			return nil, fmt.Errorf("negative rate in period %+v", p)
		}
		for h := p.HourStart; h < p.HourEnd; h++ {
			if covered[h] {
				return nil, fmt.Errorf("hour %d covered by multiple periods", h)
			}
			covered[h] = true
			t.rates[h] = p.DollarsPerKWH
		}
	}
	for h, ok := range covered {
		if !ok {
			return nil, fmt.Errorf("hour %d not covered by any period", h)
		}
	}
	return &t, nil
}

func (t *TOU) HourlyRecords(context.Context) ([]types.HourlyRecord, error) {
	var mean float64
	for _, r := range t.rates {
		mean += r
	}
	mean /= types.HoursPerDay

	records := make([]types.HourlyRecord, types.HoursPerDay)
	battery := 45.0
	for h := range records {
		rate := t.rates[h]
		standard := round2(rate * householdLoadKWH[h])

		// The reference battery trickle-charges while the rate is below the
		// daily mean and drains while it is above.
		if rate < mean {
			battery = math.Min(90, battery+4)
		} else {
			battery = math.Max(20, battery-5)
		}

		records[h] = types.HourlyRecord{
			Time:            types.TimeLabel(h),
			GridCost:        rate,
			SolarProduction: solarProfileKW[h],
			StandardCost:    standard,
			OptimalCost:     round2(standard * baselineOptimalFactor),
			BatteryCharge:   battery,
		}
	}
	return records, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
