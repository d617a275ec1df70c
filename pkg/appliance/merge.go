package appliance

import "github.com/gmcavallazzi/opthome/pkg/types"

// MergeOptimizedHours replaces each appliance's optimal hours with the
// optimized hours from the schedule, matched by re-deriving the normalized
// key from the appliance name. Appliances without a matching entry (or whose
// entry carries no hours) pass through unchanged. This never fails; an
// unmatched entry is not an error.
func MergeOptimizedHours(apps []types.Appliance, sched *types.OptimizedSchedule) []types.Appliance {
	if sched == nil || len(sched.OptimizedAppliances) == 0 {
		return apps
	}
	out := make([]types.Appliance, len(apps))
	copy(out, apps)
	for i, app := range out {
		opt, ok := sched.OptimizedAppliances[Key(app.Name)]
		if !ok || len(opt.OptimizedHours) == 0 {
			continue
		}
		out[i].OptimalHours = types.NormalizeHours(opt.OptimizedHours)
	}
	return out
}
