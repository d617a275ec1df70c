// Package controller owns the mutable dashboard state for a site: the
// appliance lists, the energy profile, the solar flag and the latest
// optimized schedule. Every mutation is serialized behind a mutex and
// persisted; derived data (hourly records, savings) is recomputed on read.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/levenlabs/go-lflag"

	"github.com/gmcavallazzi/opthome/pkg/appliance"
	"github.com/gmcavallazzi/opthome/pkg/energy"
	"github.com/gmcavallazzi/opthome/pkg/log"
	"github.com/gmcavallazzi/opthome/pkg/optimizer"
	"github.com/gmcavallazzi/opthome/pkg/storage"
	"github.com/gmcavallazzi/opthome/pkg/tariff"
	"github.com/gmcavallazzi/opthome/pkg/types"
)

// ErrApplianceNotFound is returned when an appliance ID does not match any
// known appliance.
var ErrApplianceNotFound = errors.New("appliance not found")

// ErrNoSchedule is returned when no optimized schedule exists yet.
var ErrNoSchedule = errors.New("no optimized schedule available")

// Dashboard is the derived view served to clients: the hourly cost table
// with any schedule overlay applied, plus the savings summary.
type Dashboard struct {
	Records  []types.HourlyRecord     `json:"records"`
	Savings  types.SavingsSummary     `json:"savings"`
	Schedule *types.OptimizedSchedule `json:"schedule,omitempty"`
}

// Controller manages the dashboard state for a single site.
type Controller struct {
	db     storage.Database
	opt    optimizer.Service
	tariff tariff.Provider
	siteID string

	mu           sync.RWMutex
	system       []types.Appliance
	user         []types.Appliance
	profile      types.EnergyProfile
	solarEnabled bool
	schedule     *types.OptimizedSchedule
	// currentRunID tags the run whose completion we will accept. Completions
	// carrying any other ID are stale and dropped.
	currentRunID uuid.UUID
	dirty        bool

	autosaveInterval time.Duration
}

// New creates a Controller backed by db and the given optimizer service.
func New(db storage.Database, opt optimizer.Service, siteID string) *Controller {
	return &Controller{
		db:               db,
		opt:              opt,
		tariff:           tariff.NewFixture(),
		siteID:           siteID,
		profile:          types.EnergyProfile{}.WithDefaults(),
		solarEnabled:     true,
		autosaveInterval: 30 * time.Second,
	}
}

// Configured creates a Controller with its site and autosave settings taken
// from flags.
func Configured(db storage.Database, opt optimizer.Service, tp tariff.Provider) *Controller {
	c := New(db, opt, "")
	c.tariff = tp
	siteID := lflag.String("site-id", "home", "Site identifier for stored state")
	interval := lflag.Duration("autosave-interval", 30*time.Second, "Interval between autosave flushes")
	lflag.Do(func() {
		c.siteID = *siteID
		c.autosaveInterval = *interval
	})
	return c
}

// AutosaveInterval returns the configured autosave flush interval.
func (c *Controller) AutosaveInterval() time.Duration {
	return c.autosaveInterval
}

// Load restores the last persisted state for the site, falling back to the
// built-in appliance set when nothing has been saved yet.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.db.GetSnapshot(ctx, c.siteID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.system = types.DefaultAppliances()
		log.Ctx(ctx).InfoContext(ctx, "no saved state, starting from defaults",
			slog.String("siteID", c.siteID))
	case err != nil:
		return fmt.Errorf("failed to load snapshot: %w", err)
	default:
		c.system = appliance.FromSnapshot(snap)
		c.profile = snap.EnergyProfile.WithDefaults()
		c.solarEnabled = snap.EnergyProfile.SolarEnabled
		log.Ctx(ctx).InfoContext(ctx, "restored saved state",
			slog.String("siteID", c.siteID),
			slog.Int("appliances", len(c.system)),
			slog.Time("savedAt", snap.Timestamp))
	}

	sched, err := c.db.GetSchedule(ctx, c.siteID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to load schedule: %w", err)
		}
	} else {
		c.schedule = &sched
	}
	return nil
}

// Appliances returns the current appliance list with any optimized hours
// from the active schedule merged in.
func (c *Controller) Appliances() []types.Appliance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return appliance.MergeOptimizedHours(c.mergedLocked(), c.schedule)
}

// mergedLocked flattens the system and user lists in order. Callers must
// hold at least the read lock.
func (c *Controller) mergedLocked() []types.Appliance {
	merged := make([]types.Appliance, 0, len(c.system)+len(c.user))
	merged = append(merged, c.system...)
	merged = append(merged, c.user...)
	return merged
}

// AddAppliance validates and adds a user appliance, assigning it the next
// free ID and an emoji when none was provided.
func (c *Controller) AddAppliance(ctx context.Context, app types.Appliance) (types.Appliance, error) {
	if err := app.Validate(); err != nil {
		return types.Appliance{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	maxID := 0
	for _, a := range c.mergedLocked() {
		if a.ID > maxID {
			maxID = a.ID
		}
	}
	app.ID = maxID + 1
	if app.Emoji == "" {
		app.Emoji = types.EmojiFor(app.Name)
	}
	app.CurrentHours = types.NormalizeHours(app.CurrentHours)
	app.OptimalHours = types.NormalizeHours(app.OptimalHours)
	if app.PriorityLevel == "" {
		app.PriorityLevel = types.PriorityMedium
	}
	if len(app.PreferredTimeOfDay) == 0 {
		app.PreferredTimeOfDay = []string{types.TimeOfDayAfternoon}
	}
	c.user = append(c.user, app)

	c.persistLocked(ctx)
	log.Ctx(ctx).InfoContext(ctx, "appliance added",
		slog.Int("id", app.ID), slog.String("name", app.Name))
	return app, nil
}

// UpdateApplianceHours replaces an appliance's usage hours. Hours are
// deduped, sorted and must fall in [0,23].
func (c *Controller) UpdateApplianceHours(ctx context.Context, id int, hours []int) (types.Appliance, error) {
	for _, h := range hours {
		if h < 0 || h >= types.HoursPerDay {
			return types.Appliance{}, fmt.Errorf("hour %d out of range", h)
		}
	}
	hours = types.NormalizeHours(hours)

	c.mu.Lock()
	defer c.mu.Unlock()

	update := func(list []types.Appliance) *types.Appliance {
		for i := range list {
			if list[i].ID == id {
				list[i].CurrentHours = hours
				return &list[i]
			}
		}
		return nil
	}
	app := update(c.user)
	if app == nil {
		app = update(c.system)
	}
	if app == nil {
		return types.Appliance{}, ErrApplianceNotFound
	}

	c.persistLocked(ctx)
	return *app, nil
}

// SetSolarEnabled toggles solar production for the site.
func (c *Controller) SetSolarEnabled(ctx context.Context, enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.solarEnabled = enabled
	c.profile.SolarEnabled = enabled
	c.persistLocked(ctx)
}

// Profile returns the current energy profile.
func (c *Controller) Profile() types.EnergyProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// UpdateProfile replaces the energy profile after validating the strategy.
func (c *Controller) UpdateProfile(ctx context.Context, p types.EnergyProfile) (types.EnergyProfile, error) {
	if p.OptimizationStrategy != "" && !types.ValidStrategy(p.OptimizationStrategy) {
		return types.EnergyProfile{}, fmt.Errorf("unknown optimization strategy %q", p.OptimizationStrategy)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = p.WithDefaults()
	c.profile.SolarEnabled = c.solarEnabled
	c.persistLocked(ctx)
	return c.profile, nil
}

// Snapshot builds the canonical export of the current state.
func (c *Controller) Snapshot() (types.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return appliance.Normalize(c.system, c.user, c.solarEnabled, c.profile)
}

// Schedule returns the active optimized schedule, or ErrNoSchedule.
func (c *Controller) Schedule() (types.OptimizedSchedule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.schedule == nil {
		return types.OptimizedSchedule{}, ErrNoSchedule
	}
	return *c.schedule, nil
}

// Dashboard returns the derived hourly records and savings summary.
func (c *Controller) Dashboard(ctx context.Context) Dashboard {
	c.mu.RLock()
	defer c.mu.RUnlock()

	baseline, err := c.tariff.HourlyRecords(ctx)
	if err != nil || len(baseline) != types.HoursPerDay {
		if err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "tariff provider failed, using built-in table", slog.Any("error", err))
		}
		baseline = types.DefaultHourlyData()
	}
	records := energy.Derive(baseline, c.solarEnabled, c.schedule)
	return Dashboard{
		Records:  records,
		Savings:  energy.Savings(records, c.schedule),
		Schedule: c.schedule,
	}
}

// Optimize runs a full optimization: snapshot the current state, send it to
// the optimizer and install the resulting schedule. At most one run is in
// flight; a completion is dropped if the state was replaced (for example by
// an import) while the run was out.
func (c *Controller) Optimize(ctx context.Context) (types.OptimizedSchedule, error) {
	c.mu.Lock()
	snap, err := appliance.Normalize(c.system, c.user, c.solarEnabled, c.profile)
	if err != nil {
		c.mu.Unlock()
		return types.OptimizedSchedule{}, err
	}
	runID := uuid.New()
	prevRunID := c.currentRunID
	c.currentRunID = runID
	c.mu.Unlock()

	log.Ctx(ctx).InfoContext(ctx, "optimization run started",
		slog.String("runID", runID.String()),
		slog.Int("appliances", len(snap.Appliances)))

	sched, err := c.opt.Optimize(ctx, snap)
	if err != nil {
		if errors.Is(err, optimizer.ErrRunInFlight) {
			// This call never started a run; put back the ID the real
			// in-flight run is waiting on.
			c.mu.Lock()
			if c.currentRunID == runID {
				c.currentRunID = prevRunID
			}
			c.mu.Unlock()
		}
		return types.OptimizedSchedule{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentRunID != runID {
		log.Ctx(ctx).WarnContext(ctx, "dropping stale optimization result",
			slog.String("runID", runID.String()))
		return types.OptimizedSchedule{}, fmt.Errorf("optimization run superseded")
	}
	c.installScheduleLocked(ctx, &sched)
	return sched, nil
}

// ImportSchedule installs an externally produced schedule, replacing the
// active one and invalidating any in-flight optimization run.
func (c *Controller) ImportSchedule(ctx context.Context, sched types.OptimizedSchedule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentRunID = uuid.Nil
	c.installScheduleLocked(ctx, &sched)
	log.Ctx(ctx).InfoContext(ctx, "schedule imported",
		slog.Int("optimizedAppliances", len(sched.OptimizedAppliances)))
}

// installScheduleLocked sets the schedule, folds its optimized hours back
// into the appliance lists and persists. Callers must hold the write lock.
func (c *Controller) installScheduleLocked(ctx context.Context, sched *types.OptimizedSchedule) {
	if sched.Timestamp.IsZero() {
		sched.Timestamp = time.Now().UTC()
	}
	c.schedule = sched
	c.system = appliance.MergeOptimizedHours(c.system, sched)
	c.user = appliance.MergeOptimizedHours(c.user, sched)

	if err := c.db.SetSchedule(ctx, c.siteID, *sched); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to persist schedule", slog.Any("error", err))
	}
	c.persistLocked(ctx)
}

// persistLocked writes the current snapshot through to storage and clears
// the dirty flag. Callers must hold the write lock. Persistence failures
// are logged and retried by the autosave loop via the dirty flag.
func (c *Controller) persistLocked(ctx context.Context) {
	snap, err := appliance.Normalize(c.system, c.user, c.solarEnabled, c.profile)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to build snapshot for persistence", slog.Any("error", err))
		return
	}
	if err := c.db.SetSnapshot(ctx, c.siteID, snap); err != nil {
		c.dirty = true
		log.Ctx(ctx).ErrorContext(ctx, "failed to persist snapshot", slog.Any("error", err))
		return
	}
	c.dirty = false
}

// RunAutosave periodically flushes unsaved state until ctx is cancelled.
// It returns when the context is done.
func (c *Controller) RunAutosave(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// Final flush so a clean shutdown never loses a failed write.
			c.mu.Lock()
			if c.dirty {
				c.persistLocked(context.WithoutCancel(ctx))
			}
			c.mu.Unlock()
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.dirty {
				log.Ctx(ctx).InfoContext(ctx, "autosave flushing unsaved state",
					slog.String("siteID", c.siteID))
				c.persistLocked(ctx)
			}
			c.mu.Unlock()
		}
	}
}
