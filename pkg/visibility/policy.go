// Package visibility decides when a foreground transition should trigger a
// background session refresh, and fans visibility changes out to listeners.
package visibility

import "time"

// DefaultCooldown is the minimum gap between successful identity fetches
// before a visibility change may trigger another one.
const DefaultCooldown = 30 * time.Second

// Params are the inputs to ShouldRefresh. A zero LastSuccessfulFetch means
// the session identity has never been fetched. Cooldown is taken as given:
// zero disables it, so callers wanting the usual gap pass DefaultCooldown.
type Params struct {
	Visible             bool
	InFlight            bool
	LastSuccessfulFetch time.Time
	Now                 time.Time
	Cooldown            time.Duration
}

// ShouldRefresh reports whether a refresh should run for this visibility
// event. It guards against refresh storms when the user flips focus rapidly.
func ShouldRefresh(p Params) bool {
	if !p.Visible || p.InFlight {
		return false
	}
	last := p.LastSuccessfulFetch
	if last.IsZero() {
		last = time.Unix(0, 0)
	}
	return p.Now.Sub(last) >= p.Cooldown
}
