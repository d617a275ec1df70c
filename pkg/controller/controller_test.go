package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gmcavallazzi/opthome/pkg/optimizer"
	"github.com/gmcavallazzi/opthome/pkg/storage"
	"github.com/gmcavallazzi/opthome/pkg/storage/storagemock"
	"github.com/gmcavallazzi/opthome/pkg/types"
)

type fakeOptimizer struct {
	fn func(ctx context.Context, snap types.Snapshot) (types.OptimizedSchedule, error)
}

func (f *fakeOptimizer) Optimize(ctx context.Context, snap types.Snapshot) (types.OptimizedSchedule, error) {
	return f.fn(ctx, snap)
}

func newTestController(t *testing.T, opt optimizer.Service) (*Controller, *storagemock.MockDatabase) {
	t.Helper()
	db := &storagemock.MockDatabase{}
	db.On("GetSnapshot", mock.Anything, "home").Return(types.Snapshot{}, storage.ErrNotFound).Once()
	db.On("GetSchedule", mock.Anything, "home").Return(types.OptimizedSchedule{}, storage.ErrNotFound).Once()
	db.On("SetSnapshot", mock.Anything, "home", mock.Anything).Return(nil).Maybe()
	db.On("SetSchedule", mock.Anything, "home", mock.Anything).Return(nil).Maybe()

	c := New(db, opt, "home")
	require.NoError(t, c.Load(context.Background()))
	return c, db
}

func TestLoadDefaults(t *testing.T) {
	c, _ := newTestController(t, nil)

	apps := c.Appliances()
	require.Len(t, apps, 7)
	assert.Equal(t, "Dishwasher", apps[0].Name)

	p := c.Profile()
	assert.Equal(t, types.StrategyCostSavings, p.OptimizationStrategy)
	assert.Equal(t, float64(types.DefaultBatteryMinReserve), p.BatterySettings.MinReserve)
}

func TestLoadRestoresSavedState(t *testing.T) {
	db := &storagemock.MockDatabase{}
	db.On("GetSnapshot", mock.Anything, "home").Return(types.Snapshot{
		Appliances: map[string]types.NormalizedAppliance{
			"heat_pump": {
				ID: 3, Name: "Heat Pump", PowerW: 2500, Flexible: true,
				RunDuration: 4, CurrentHours: []int{6, 7},
				PreferredHours: []int{2, 3}, PriorityLevel: types.PriorityHigh,
			},
		},
		EnergyProfile: types.EnergyProfile{
			OptimizationStrategy: types.StrategyGreenEnergy,
			SolarEnabled:         true,
		},
		Timestamp: time.Now().UTC(),
	}, nil)
	db.On("GetSchedule", mock.Anything, "home").Return(types.OptimizedSchedule{}, storage.ErrNotFound)

	c := New(db, nil, "home")
	require.NoError(t, c.Load(context.Background()))

	apps := c.Appliances()
	require.Len(t, apps, 1)
	assert.Equal(t, "Heat Pump", apps[0].Name)
	assert.Equal(t, []int{2, 3}, apps[0].OptimalHours)
	assert.Equal(t, types.StrategyGreenEnergy, c.Profile().OptimizationStrategy)
}

func TestAddAppliance(t *testing.T) {
	c, db := newTestController(t, nil)

	added, err := c.AddAppliance(context.Background(), types.Appliance{
		Name:         "Pool Pump",
		PowerW:       800,
		Flexible:     true,
		RunDuration:  3,
		CurrentHours: []int{14, 13, 14},
	})
	require.NoError(t, err)
	assert.Equal(t, 8, added.ID)
	assert.Equal(t, "🏊", added.Emoji)
	assert.Equal(t, []int{13, 14}, added.CurrentHours)
	assert.Equal(t, types.PriorityMedium, added.PriorityLevel)
	assert.Equal(t, []string{types.TimeOfDayAfternoon}, added.PreferredTimeOfDay)

	assert.Len(t, c.Appliances(), 8)
	db.AssertCalled(t, "SetSnapshot", mock.Anything, "home", mock.Anything)
}

func TestAddApplianceInvalid(t *testing.T) {
	c, _ := newTestController(t, nil)

	_, err := c.AddAppliance(context.Background(), types.Appliance{PowerW: 100, RunDuration: 1})
	require.Error(t, err)
	assert.Len(t, c.Appliances(), 7)
}

func TestUpdateApplianceHours(t *testing.T) {
	c, _ := newTestController(t, nil)

	app, err := c.UpdateApplianceHours(context.Background(), 1, []int{22, 5, 5, 22})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 22}, app.CurrentHours)

	_, err = c.UpdateApplianceHours(context.Background(), 999, []int{5})
	require.ErrorIs(t, err, ErrApplianceNotFound)

	_, err = c.UpdateApplianceHours(context.Background(), 1, []int{24})
	require.Error(t, err)
}

func TestOptimizeInstallsSchedule(t *testing.T) {
	sched := types.OptimizedSchedule{
		OptimizationStatus: "completed",
		Savings:            &types.SavingsEstimate{Daily: 1.15},
		OptimizedAppliances: map[string]types.OptimizedAppliance{
			"dishwasher": {ID: 1, Name: "Dishwasher", OptimizedHours: []int{2, 3}},
		},
	}
	opt := &fakeOptimizer{fn: func(_ context.Context, snap types.Snapshot) (types.OptimizedSchedule, error) {
		require.NotEmpty(t, snap.Appliances)
		return sched, nil
	}}
	c, db := newTestController(t, opt)

	got, err := c.Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "completed", got.OptimizationStatus)
	assert.False(t, got.Timestamp.IsZero())

	// The optimized hours fold back into the appliance list.
	apps := c.Appliances()
	assert.Equal(t, []int{2, 3}, apps[0].OptimalHours)

	stored, err := c.Schedule()
	require.NoError(t, err)
	assert.Equal(t, "completed", stored.OptimizationStatus)
	db.AssertCalled(t, "SetSchedule", mock.Anything, "home", mock.Anything)
}

func TestOptimizeStaleRunDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	opt := &fakeOptimizer{fn: func(_ context.Context, _ types.Snapshot) (types.OptimizedSchedule, error) {
		close(started)
		<-release
		return types.OptimizedSchedule{OptimizationStatus: "completed"}, nil
	}}
	c, _ := newTestController(t, opt)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Optimize(context.Background())
		errCh <- err
	}()

	<-started
	// An import while the run is out supersedes it.
	c.ImportSchedule(context.Background(), types.OptimizedSchedule{OptimizationStatus: "imported"})
	close(release)

	require.Error(t, <-errCh)
	stored, err := c.Schedule()
	require.NoError(t, err)
	assert.Equal(t, "imported", stored.OptimizationStatus)
}

func TestOptimizeError(t *testing.T) {
	opt := &fakeOptimizer{fn: func(_ context.Context, _ types.Snapshot) (types.OptimizedSchedule, error) {
		return types.OptimizedSchedule{}, &optimizer.UpstreamError{StatusCode: 500, Message: "boom"}
	}}
	c, _ := newTestController(t, opt)

	_, err := c.Optimize(context.Background())
	require.Error(t, err)
	_, err = c.Schedule()
	require.ErrorIs(t, err, ErrNoSchedule)
}

func TestImportScheduleMergesHours(t *testing.T) {
	c, _ := newTestController(t, nil)

	c.ImportSchedule(context.Background(), types.OptimizedSchedule{
		OptimizedAppliances: map[string]types.OptimizedAppliance{
			"dryer": {ID: 3, Name: "Dryer", OptimizedHours: []int{1, 2}},
		},
	})

	var dryer *types.Appliance
	for _, app := range c.Appliances() {
		if app.Name == "Dryer" {
			a := app
			dryer = &a
		}
	}
	require.NotNil(t, dryer)
	assert.Equal(t, []int{1, 2}, dryer.OptimalHours)
}

func TestDashboard(t *testing.T) {
	c, _ := newTestController(t, nil)

	d := c.Dashboard(context.Background())
	require.Len(t, d.Records, types.HoursPerDay)
	assert.Nil(t, d.Schedule)
	assert.Greater(t, d.Savings.TotalStandardCost, 0.0)

	c.ImportSchedule(context.Background(), types.OptimizedSchedule{
		Savings: &types.SavingsEstimate{Daily: 2.50},
	})
	d = c.Dashboard(context.Background())
	require.NotNil(t, d.Schedule)
	assert.Equal(t, 2.50, d.Savings.SavingsAmount)
}

func TestSetSolarEnabled(t *testing.T) {
	c, _ := newTestController(t, nil)

	c.SetSolarEnabled(context.Background(), false)
	assert.False(t, c.Profile().SolarEnabled)

	d := c.Dashboard(context.Background())
	for _, r := range d.Records {
		assert.Zero(t, r.SolarProduction)
	}
}

func TestUpdateProfile(t *testing.T) {
	c, _ := newTestController(t, nil)

	p, err := c.UpdateProfile(context.Background(), types.EnergyProfile{
		OptimizationStrategy: types.StrategyBalanced,
	})
	require.NoError(t, err)
	assert.Equal(t, types.StrategyBalanced, p.OptimizationStrategy)
	assert.Equal(t, types.DefaultHouseholdType, p.HouseholdType)

	_, err = c.UpdateProfile(context.Background(), types.EnergyProfile{
		OptimizationStrategy: "warp_speed",
	})
	require.Error(t, err)
}

func TestRunAutosaveFlushesAfterFailure(t *testing.T) {
	db := &storagemock.MockDatabase{}
	db.On("GetSnapshot", mock.Anything, "home").Return(types.Snapshot{}, storage.ErrNotFound).Once()
	db.On("GetSchedule", mock.Anything, "home").Return(types.OptimizedSchedule{}, storage.ErrNotFound).Once()

	flushed := make(chan struct{})
	// First write fails, leaving unsaved state for the autosave loop.
	db.On("SetSnapshot", mock.Anything, "home", mock.Anything).Return(assert.AnError).Once()
	db.On("SetSnapshot", mock.Anything, "home", mock.Anything).Run(func(mock.Arguments) {
		select {
		case <-flushed:
		default:
			close(flushed)
		}
	}).Return(nil)

	c := New(db, nil, "home")
	require.NoError(t, c.Load(context.Background()))
	c.SetSolarEnabled(context.Background(), false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.RunAutosave(ctx, 10*time.Millisecond)
		close(done)
	}()

	select {
	case <-flushed:
	case <-time.After(2 * time.Second):
		t.Fatal("autosave never flushed")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("autosave did not stop on cancel")
	}
}
