package tariff

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmcavallazzi/opthome/pkg/types"
)

func TestFixtureHourlyRecords(t *testing.T) {
	records, err := NewFixture().HourlyRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, types.HoursPerDay)
	for h, r := range records {
		assert.Equal(t, types.TimeLabel(h), r.Time)
	}
}

func TestTOUHourlyRecords(t *testing.T) {
	tou, err := NewTOU(defaultTOUPeriods())
	require.NoError(t, err)

	records, err := tou.HourlyRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, types.HoursPerDay)

	// Night hours carry the night rate, peak hours the peak rate.
	assert.Equal(t, 0.07, records[2].GridCost)
	assert.Equal(t, 0.28, records[18].GridCost)

	for _, r := range records {
		assert.InDelta(t, r.GridCost*householdLoadKWH[hourOf(t, r.Time)], r.StandardCost, 0.01)
		assert.GreaterOrEqual(t, r.BatteryCharge, 20.0)
		assert.LessOrEqual(t, r.BatteryCharge, 90.0)
		assert.Less(t, r.OptimalCost, r.StandardCost+0.001)
	}
}

func hourOf(t *testing.T, label string) int {
	t.Helper()
	for h := 0; h < types.HoursPerDay; h++ {
		if types.TimeLabel(h) == label {
			return h
		}
	}
	t.Fatalf("bad time label %q", label)
	return -1
}

func TestNewTOUValidation(t *testing.T) {
	_, err := NewTOU([]Period{{HourStart: 0, HourEnd: 12, DollarsPerKWH: 0.1}})
	require.Error(t, err, "gap should be rejected")

	_, err = NewTOU([]Period{
		{HourStart: 0, HourEnd: 24, DollarsPerKWH: 0.1},
		{HourStart: 12, HourEnd: 13, DollarsPerKWH: 0.2},
	})
	require.Error(t, err, "overlap should be rejected")

	_, err = NewTOU([]Period{{HourStart: 0, HourEnd: 24, DollarsPerKWH: -0.1}})
	require.Error(t, err, "negative rate should be rejected")

	_, err = NewTOU([]Period{{HourStart: 5, HourEnd: 5, DollarsPerKWH: 0.1}})
	require.Error(t, err, "empty window should be rejected")
}
