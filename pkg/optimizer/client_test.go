package optimizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmcavallazzi/opthome/pkg/types"
)

func testSnapshot() types.Snapshot {
	return types.Snapshot{
		Appliances: map[string]types.NormalizedAppliance{
			"dishwasher": {
				ID:                 1,
				Name:               "Dishwasher",
				PowerW:             1200,
				Flexible:           true,
				RunDuration:        2,
				CurrentHours:       []int{19, 20},
				PreferredHours:     []int{},
				PriorityLevel:      types.PriorityMedium,
				PreferredTimeOfDay: []string{types.TimeOfDayAfternoon},
			},
		},
		EnergyProfile: types.EnergyProfile{}.WithDefaults(),
		Timestamp:     time.Now().UTC(),
	}
}

func TestClientOptimize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/optimize", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var snap types.Snapshot
		require.NoError(t, json.NewDecoder(r.Body).Decode(&snap))
		require.Contains(t, snap.Appliances, "dishwasher")

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": types.OptimizedSchedule{
				OptimizationStatus: "completed",
				Savings:            &types.SavingsEstimate{Daily: 1.15, Monthly: 34.50, Yearly: 419.75},
				OptimizedAppliances: map[string]types.OptimizedAppliance{
					"dishwasher": {ID: 1, Name: "Dishwasher", OptimizedHours: []int{2, 3}},
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	sched, err := c.Optimize(context.Background(), testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "completed", sched.OptimizationStatus)
	require.NotNil(t, sched.Savings)
	assert.Equal(t, 1.15, sched.Savings.Daily)
	assert.Equal(t, []int{2, 3}, sched.OptimizedAppliances["dishwasher"].OptimizedHours)
}

func TestClientOptimizeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"error": "solver exploded"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Optimize(context.Background(), testSnapshot())
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
	assert.Equal(t, "solver exploded", ue.Message)
}

func TestClientOptimizeUpstreamErrorUndecodable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Optimize(context.Background(), testSnapshot())
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusBadGateway, ue.StatusCode)
	assert.Equal(t, "optimization failed", ue.Message)
}

func TestClientOptimizeMissingData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Optimize(context.Background(), testSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing data")
}

func TestClientOptimizeSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    types.OptimizedSchedule{OptimizationStatus: "completed"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = c.Optimize(context.Background(), testSnapshot())
	}()

	<-started
	_, err := c.Optimize(context.Background(), testSnapshot())
	require.ErrorIs(t, err, ErrRunInFlight)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
}

func TestMockOptimize(t *testing.T) {
	m := NewMock()
	snap := testSnapshot()
	snap.Appliances["refrigerator"] = types.NormalizedAppliance{
		ID: 2, Name: "Refrigerator", PowerW: 150, Flexible: false,
		RunDuration: 24, CurrentHours: allHours(), PreferredHours: []int{},
	}

	sched, err := m.Optimize(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, "completed", sched.OptimizationStatus)
	assert.Equal(t, "mock_optimizer_v1", sched.OptimizationMethod)
	require.NotNil(t, sched.Battery)
	assert.Equal(t, 1.05, sched.Battery.MinState)
	assert.Equal(t, 2.55, sched.Battery.MaxState)
	assert.Len(t, sched.Battery.HourlyState, types.HoursPerDay)

	// The inflexible refrigerator keeps all of its hours.
	fridge, ok := sched.OptimizedAppliances["refrigerator"]
	require.True(t, ok)
	assert.Len(t, fridge.OptimizedHours, types.HoursPerDay)

	// The flexible dishwasher is moved to a window of the same length.
	dw, ok := sched.OptimizedAppliances["dishwasher"]
	require.True(t, ok)
	assert.Len(t, dw.OptimizedHours, 2)

	// Every scheduled hour appears in the daily schedule.
	for _, h := range dw.OptimizedHours {
		entries := sched.DailySchedule[strconv.Itoa(h)]
		require.NotEmpty(t, entries)
	}
}

func allHours() []int {
	hours := make([]int, types.HoursPerDay)
	for i := range hours {
		hours[i] = i
	}
	return hours
}
