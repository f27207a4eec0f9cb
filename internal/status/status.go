// Package status probes the external dependencies of the service and
// reports whether each one is configured and reachable.
package status

import (
	"context"
	"sync"
	"time"
)

// Probe describes a single dependency check. Ping is only invoked when
// Configured is true; an unconfigured dependency is reported as absent
// without touching the network.
type Probe struct {
	Name       string
	Configured bool
	Ping       func(ctx context.Context) error
}

// State is the result of one probe.
type State struct {
	Configured bool
	Connected  bool
}

// Check runs all probes concurrently and returns their states keyed by
// probe name. Each ping gets its own deadline so one slow dependency
// cannot stall the whole report.
func Check(ctx context.Context, timeout time.Duration, probes []Probe) map[string]State {
	results := make([]State, len(probes))

	var wg sync.WaitGroup
	for i, p := range probes {
		if !p.Configured || p.Ping == nil {
			results[i] = State{Configured: p.Configured}
			continue
		}

		wg.Add(1)
		go func(i int, p Probe) {
			defer wg.Done()

			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			results[i] = State{
				Configured: true,
				Connected:  p.Ping(pingCtx) == nil,
			}
		}(i, p)
	}
	wg.Wait()

	out := make(map[string]State, len(probes))
	for i, p := range probes {
		out[p.Name] = results[i]
	}
	return out
}
