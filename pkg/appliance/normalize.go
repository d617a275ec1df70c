// Package appliance converts between the in-memory appliance collection and
// the canonical export schema shared with the external optimizer.
package appliance

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gmcavallazzi/opthome/pkg/types"
)

// ErrMissingName means an appliance had no name to derive an export key from.
// Normalization fails as a whole; appliances are never silently skipped.
var ErrMissingName = errors.New("appliance is missing a name")

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	nonWordChars   = regexp.MustCompile(`[^\w_]`)
)

// Key derives the normalized mapping key for an appliance name: lower-cased,
// whitespace runs collapsed to underscores, everything else outside
// word-characters stripped. "Pool Pump!!" becomes "pool_pump".
func Key(name string) string {
	key := strings.ToLower(name)
	key = whitespaceRuns.ReplaceAllString(key, "_")
	return nonWordChars.ReplaceAllString(key, "")
}

// Normalize produces the canonical export snapshot from the system and
// user-added appliance lists plus the energy profile. Two appliances whose
// names normalize to the same key resolve last-wins, with user appliances
// iterated after system ones.
func Normalize(system, user []types.Appliance, solarEnabled bool, profile types.EnergyProfile) (types.Snapshot, error) {
	all := make([]types.Appliance, 0, len(system)+len(user))
	all = append(all, system...)
	all = append(all, user...)

	dict := make(map[string]types.NormalizedAppliance, len(all))
	for _, app := range all {
		if strings.TrimSpace(app.Name) == "" {
			return types.Snapshot{}, fmt.Errorf("appliance %d: %w", app.ID, ErrMissingName)
		}
		dict[Key(app.Name)] = normalizeOne(app)
	}

	profile = profile.WithDefaults()
	profile.SolarEnabled = solarEnabled

	return types.Snapshot{
		Appliances:    dict,
		EnergyProfile: profile,
		Timestamp:     time.Now().UTC(),
	}, nil
}

func normalizeOne(app types.Appliance) types.NormalizedAppliance {
	n := types.NormalizedAppliance{
		ID:                 app.ID,
		Name:               app.Name,
		PowerW:             app.PowerW,
		Flexible:           app.Flexible,
		RunDuration:        app.RunDuration,
		CurrentHours:       app.CurrentHours,
		PreferredHours:     app.OptimalHours,
		PriorityLevel:      app.PriorityLevel,
		PreferredTimeOfDay: app.PreferredTimeOfDay,
	}
	// exported hour lists are always lists, never null
	if n.CurrentHours == nil {
		n.CurrentHours = []int{}
	}
	if n.PreferredHours == nil {
		n.PreferredHours = []int{}
	}
	if n.PriorityLevel == "" {
		n.PriorityLevel = types.PriorityMedium
	}
	if len(n.PreferredTimeOfDay) == 0 {
		n.PreferredTimeOfDay = []string{types.TimeOfDayAfternoon}
	}
	return n
}

// FromSnapshot rebuilds an appliance list from a snapshot, ordered by ID.
// This is the inverse of Normalize up to defaults: id, power, flexible and
// run_duration round-trip unchanged.
func FromSnapshot(snap types.Snapshot) []types.Appliance {
	apps := make([]types.Appliance, 0, len(snap.Appliances))
	for _, n := range snap.Appliances {
		apps = append(apps, types.Appliance{
			ID:                 n.ID,
			Name:               n.Name,
			Emoji:              types.EmojiFor(n.Name),
			PowerW:             n.PowerW,
			Flexible:           n.Flexible,
			RunDuration:        n.RunDuration,
			CurrentHours:       n.CurrentHours,
			OptimalHours:       n.PreferredHours,
			PriorityLevel:      n.PriorityLevel,
			PreferredTimeOfDay: n.PreferredTimeOfDay,
		})
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps
}
