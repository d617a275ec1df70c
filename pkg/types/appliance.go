package types

import (
	"fmt"
	"strings"
)

// PriorityLevel indicates how important it is that an appliance runs at its
// preferred hours rather than being shifted by the optimizer.
type PriorityLevel string

const (
	PriorityLow    PriorityLevel = "low"
	PriorityMedium PriorityLevel = "medium"
	PriorityHigh   PriorityLevel = "high"
)

// Valid time-of-day tags for appliance preferences.
const (
	TimeOfDayMorning   = "Morning"
	TimeOfDayAfternoon = "Afternoon"
	TimeOfDayEvening   = "Evening"
	TimeOfDayNight     = "Night"
)

// Appliance is a controllable household load with schedulable operating hours.
type Appliance struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji,omitempty"`
	// PowerW is the rated power in watts.
	PowerW   float64 `json:"power"`
	Flexible bool    `json:"flexible"`
	// RunDuration is how many hours the appliance runs per day.
	RunDuration float64 `json:"runDuration"`
	// CurrentHours are the hours (0-23) the appliance runs today.
	CurrentHours []int `json:"currentHours"`
	// OptimalHours are the preferred hours (0-23), replaced when an optimized
	// schedule is merged in.
	OptimalHours       []int         `json:"optimalHours"`
	PriorityLevel      PriorityLevel `json:"priorityLevel,omitempty"`
	PreferredTimeOfDay []string      `json:"preferredTimeOfDay,omitempty"`
}

// Validate checks that the appliance is well formed enough to schedule.
func (a Appliance) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("appliance name is required")
	}
	if a.PowerW <= 0 {
		return fmt.Errorf("appliance power must be positive")
	}
	if a.RunDuration <= 0 {
		return fmt.Errorf("appliance run duration must be positive")
	}
	if err := validateHours(a.CurrentHours); err != nil {
		return fmt.Errorf("current hours: %w", err)
	}
	if err := validateHours(a.OptimalHours); err != nil {
		return fmt.Errorf("optimal hours: %w", err)
	}
	return nil
}

func validateHours(hours []int) error {
	for _, h := range hours {
		if h < 0 || h > 23 {
			return fmt.Errorf("hour %d is out of range [0,23]", h)
		}
	}
	return nil
}

// NormalizeHours sorts and dedupes an hour list. Hour sets are semantically
// sets; duplicates carry no meaning.
func NormalizeHours(hours []int) []int {
	if hours == nil {
		return nil
	}
	seen := make(map[int]bool, len(hours))
	out := make([]int, 0, len(hours))
	for _, h := range hours {
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// EmojiFor picks a display emoji based on the appliance name.
func EmojiFor(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "pool"):
		return "🏊"
	case strings.Contains(lower, "tv"), strings.Contains(lower, "television"):
		return "📺"
	case strings.Contains(lower, "oven"), strings.Contains(lower, "stove"):
		return "🍳"
	case strings.Contains(lower, "light"):
		return "💡"
	case strings.Contains(lower, "computer"), strings.Contains(lower, "pc"):
		return "💻"
	case strings.Contains(lower, "heat"), strings.Contains(lower, "furnace"):
		return "🔥"
	case strings.Contains(lower, "fan"):
		return "🌀"
	case strings.Contains(lower, "vacuum"):
		return "🧹"
	case strings.Contains(lower, "microwave"):
		return "🍲"
	}
	return "🔌"
}
