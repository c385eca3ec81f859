package playback

import "time"

// StatusSnapshot is emitted to the status sink on every transition. It is
// the sole channel by which external observers learn of transport state.
type StatusSnapshot struct {
	State     State
	Position  int64   // Reported position in milliseconds
	Rate      float64 // Playback rate, fixed at 1.0
	Actions   Actions
	UpdatedAt time.Time
}

// StatusSink receives status snapshots. Sinks are called synchronously from
// the machine's control path and must not call back into it.
type StatusSink func(StatusSnapshot)
