// Package storage persists the dashboard's durable state: the latest
// appliance snapshot and the most recent optimized schedule, per site.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/levenlabs/go-lflag"

	"github.com/gmcavallazzi/opthome/pkg/types"
)

// ErrNotFound is returned when a site has no stored snapshot or schedule.
var ErrNotFound = errors.New("not found")

// Database defines the interface for persisting dashboard state.
type Database interface {
	// Snapshot is the canonical export payload, refreshed on every relevant
	// state change and on the autosave interval.
	GetSnapshot(ctx context.Context, siteID string) (types.Snapshot, error)
	SetSnapshot(ctx context.Context, siteID string, snap types.Snapshot) error

	// Schedule is the latest optimizer result, held until replaced.
	GetSchedule(ctx context.Context, siteID string) (types.OptimizedSchedule, error)
	SetSchedule(ctx context.Context, siteID string, sched types.OptimizedSchedule) error

	// ListSites returns every site that has stored state.
	ListSites(ctx context.Context) ([]string, error)

	// Lifecycle
	Close() error
}

// Configured sets up the storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "sqlite", "Storage provider to use (available: sqlite, firestore)")

	var p struct{ Database }

	sq := configuredSQLite()
	fs := configuredFirestore()

	lflag.Do(func() {
		switch *provider {
		case "sqlite":
			if err := sq.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("sqlite init failed: %v", err))
			}
			p.Database = sq
		case "firestore":
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
			p.Database = fs
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
