// Package optimizer is the boundary to the external schedule optimizer. The
// optimization algorithm itself lives behind an HTTP service; this package
// only ships the appliance snapshot out and validates the response envelope.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/levenlabs/go-lflag"

	"github.com/gmcavallazzi/opthome/pkg/types"
)

// ErrRunInFlight is returned when an optimization run is requested while a
// previous run for the same client has not completed yet. At most one run is
// in flight per client; later calls are rejected rather than queued.
var ErrRunInFlight = errors.New("an optimization run is already in flight")

// Service is implemented by anything that can produce an optimized schedule
// from an appliance snapshot.
type Service interface {
	Optimize(ctx context.Context, snap types.Snapshot) (types.OptimizedSchedule, error)
}

// UpstreamError carries the optimizer service's own error message so the
// caller can surface it to the user.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("optimizer returned %d: %s", e.StatusCode, e.Message)
}

// Configured sets up the optimizer service based on flags.
func Configured() Service {
	url := lflag.String("optimizer-url", "http://localhost:5000", "Base URL of the external optimizer service")
	timeout := lflag.Duration("optimizer-timeout", 60*time.Second, "Timeout for optimizer calls")
	useMock := lflag.Bool("optimizer-mock", false, "Use the built-in mock optimizer instead of the external service")

	var s struct{ Service }
	lflag.Do(func() {
		if *useMock {
			s.Service = NewMock()
			return
		}
		s.Service = NewClient(*url, *timeout)
	})
	return &s
}
