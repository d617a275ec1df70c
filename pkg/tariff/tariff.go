// Package tariff supplies the 24-slot hourly baseline table the dashboard
// is derived from: grid prices, expected solar production and the reference
// battery curve.
package tariff

import (
	"context"
	"fmt"

	"github.com/levenlabs/go-lflag"

	"github.com/gmcavallazzi/opthome/pkg/types"
)

// Provider produces the hourly baseline records for one day. Implementations
// must return exactly types.HoursPerDay records ordered by hour.
type Provider interface {
	HourlyRecords(ctx context.Context) ([]types.HourlyRecord, error)
}

// Configured sets up the tariff provider based on flags.
func Configured() Provider {
	name := lflag.String("tariff-provider", "fixture", "Hourly tariff provider (fixture or tou)")
	periods := defaultTOUPeriods()
	lflag.JSON(&periods, "tariff-tou-periods", periods, "JSON list of TOU rate periods (hourStart, hourEnd, dollarsPerKWH)")

	var p struct{ Provider }
	lflag.Do(func() {
		switch *name {
		case "fixture":
			p.Provider = NewFixture()
		case "tou":
			tou, err := NewTOU(periods)
			if err != nil {
				panic(fmt.Errorf("invalid tariff-tou-periods: %w", err))
			}
			p.Provider = tou
		default:
			panic(fmt.Errorf("unknown tariff provider: %s", *name))
		}
	})
	return &p
}

// Fixture serves the built-in demo table.
type Fixture struct{}

// NewFixture returns the fixture provider.
func NewFixture() *Fixture {
	return &Fixture{}
}

func (*Fixture) HourlyRecords(context.Context) ([]types.HourlyRecord, error) {
	return types.DefaultHourlyData(), nil
}
