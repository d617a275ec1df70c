package optimizer

import (
	"context"
	"strconv"
	"time"

	"github.com/gmcavallazzi/opthome/pkg/types"
)

// Mock is a stand-in optimizer for demos and development. It produces a
// deterministic schedule without calling out anywhere: inflexible appliances
// keep their current hours, flexible ones move to the cheapest contiguous
// window of the baseline grid-cost table.
type Mock struct {
	now func() time.Time
}

// NewMock returns a ready Mock.
func NewMock() *Mock {
	return &Mock{now: time.Now}
}

// mockBatteryState mirrors the projected battery curve of the reference
// optimizer run, in kWh.
var mockBatteryState = map[string]float64{
	"0": 1.50, "1": 1.40, "2": 1.30, "3": 1.20, "4": 1.15, "5": 1.10,
	"6": 1.05, "7": 1.10, "8": 1.20, "9": 1.35, "10": 1.55, "11": 1.80,
	"12": 2.10, "13": 2.30, "14": 2.45, "15": 2.55, "16": 2.50, "17": 2.40,
	"18": 2.20, "19": 1.95, "20": 1.75, "21": 1.60, "22": 1.55, "23": 1.50,
}

// Optimize builds the schedule synchronously. It never fails.
func (m *Mock) Optimize(_ context.Context, snap types.Snapshot) (types.OptimizedSchedule, error) {
	gridCosts := make([]float64, types.HoursPerDay)
	for i, r := range types.DefaultHourlyData() {
		gridCosts[i] = r.GridCost
	}

	daily := make(map[string][]types.ScheduleEntry)
	optimized := make(map[string]types.OptimizedAppliance, len(snap.Appliances))

	var dailySavings float64
	for key, app := range snap.Appliances {
		hours := app.CurrentHours
		if app.Flexible {
			hours = cheapestWindow(gridCosts, len(app.CurrentHours))
			dailySavings += windowCost(gridCosts, app.CurrentHours, app.PowerW) -
				windowCost(gridCosts, hours, app.PowerW)
		}
		for _, h := range hours {
			hourKey := strconv.Itoa(h)
			daily[hourKey] = append(daily[hourKey], types.ScheduleEntry{
				ID:     app.ID,
				Name:   app.Name,
				PowerW: app.PowerW,
			})
		}
		optimized[key] = types.OptimizedAppliance{
			ID:             app.ID,
			Name:           app.Name,
			PowerW:         app.PowerW,
			Flexible:       app.Flexible,
			RunDuration:    app.RunDuration,
			OptimizedHours: hours,
		}
	}

	return types.OptimizedSchedule{
		Timestamp:           m.now().UTC(),
		OptimizationStatus:  "completed",
		OptimizationMethod:  "mock_optimizer_v1",
		Savings:             mockSavings(dailySavings),
		Battery:             &types.BatteryState{HourlyState: mockBatteryState, MinState: 1.05, MaxState: 2.55},
		DailySchedule:       daily,
		OptimizedAppliances: optimized,
		Recommendations:     mockRecommendations(optimized),
	}, nil
}

func mockSavings(daily float64) *types.SavingsEstimate {
	round := func(v float64) float64 {
		return float64(int(v*100+0.5)) / 100
	}
	return &types.SavingsEstimate{
		Daily:   round(daily),
		Monthly: round(daily * 30),
		Yearly:  round(daily * 365),
	}
}

// cheapestWindow finds the contiguous run of n hours minimizing total grid
// cost. Zero-length requests get no hours.
func cheapestWindow(gridCosts []float64, n int) []int {
	if n <= 0 {
		return []int{}
	}
	if n >= len(gridCosts) {
		n = len(gridCosts)
	}
	bestStart := 0
	bestCost := -1.0
	for start := 0; start+n <= len(gridCosts); start++ {
		var cost float64
		for i := start; i < start+n; i++ {
			cost += gridCosts[i]
		}
		if bestCost < 0 || cost < bestCost {
			bestCost = cost
			bestStart = start
		}
	}
	hours := make([]int, n)
	for i := range hours {
		hours[i] = bestStart + i
	}
	return hours
}

func windowCost(gridCosts []float64, hours []int, powerW float64) float64 {
	var cost float64
	for _, h := range hours {
		if h >= 0 && h < len(gridCosts) {
			cost += powerW / 1000 * gridCosts[h]
		}
	}
	return cost
}

func mockRecommendations(apps map[string]types.OptimizedAppliance) []types.Recommendation {
	periods := []struct {
		label string
		emoji string
		from  int
		to    int
	}{
		{"Morning (6:00 - 12:00)", "☀️", 6, 12},
		{"Afternoon (12:00 - 18:00)", "🌤️", 12, 18},
		{"Evening (18:00 - 00:00)", "🌙", 18, 24},
		{"Night (00:00 - 6:00)", "🌃", 0, 6},
	}

	var recs []types.Recommendation
	for _, p := range periods {
		var lines []string
		for _, app := range apps {
			if !app.Flexible || len(app.OptimizedHours) == 0 {
				continue
			}
			first := app.OptimizedHours[0]
			if first >= p.from && first < p.to {
				lines = append(lines, "Run "+app.Name+" starting at "+types.TimeLabel(first))
			}
		}
		if len(lines) > 0 {
			recs = append(recs, types.Recommendation{Period: p.label, Emoji: p.emoji, Appliances: lines})
		}
	}
	return recs
}

var (
	_ Service = (*Client)(nil)
	_ Service = (*Mock)(nil)
)
