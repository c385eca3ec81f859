package focus

import (
	zlog "github.com/rs/zerolog/log"
)

// Volume targets.
const (
	FullVolume        = 1.0
	DefaultDuckVolume = 0.2
)

// Arbiter tracks externally granted audio focus and decides whether
// playback should pause, duck, or resume. It never drives the transport
// itself: focus changes yield an Intent the owning coordinator executes,
// keeping all transport mutations on one control path.
//
// The arbiter is owned by a single session coordinator.
type Arbiter struct {
	authority Authority
	duckLevel float64

	possession     Possession
	resumeOnRegain bool
	volumeTarget   float64
}

// NewArbiter creates an arbiter. duckLevel is the volume target applied on
// a can-duck focus loss; values outside (0, 1] fall back to the default.
func NewArbiter(authority Authority, duckLevel float64) *Arbiter {
	if duckLevel <= 0 || duckLevel > 1 {
		duckLevel = DefaultDuckVolume
	}
	return &Arbiter{
		authority:    authority,
		duckLevel:    duckLevel,
		possession:   PossessionNone,
		volumeTarget: FullVolume,
	}
}

// Acquire requests audio focus from the authority unless already held.
// Returns false when the authority denies the request; playback simply does
// not start in that case.
func (a *Arbiter) Acquire() bool {
	if a.possession != PossessionNone {
		return true
	}
	if !a.authority.RequestFocus() {
		zlog.Info().Msg("focus: request denied by authority")
		return false
	}
	a.possession = PossessionGranted
	a.volumeTarget = FullVolume
	return true
}

// Release abandons focus and resets all arbitration state. Called on
// session teardown (stop).
func (a *Arbiter) Release() {
	if a.possession != PossessionNone {
		a.authority.AbandonFocus()
	}
	a.possession = PossessionNone
	a.resumeOnRegain = false
	a.volumeTarget = FullVolume
}

// HandleChange applies the focus policy to an asynchronous change event and
// returns the transport intent to execute. playing reports whether the
// transport is currently in the Playing state.
//
// The asymmetry matters: a can-duck loss lowers volume without touching the
// transport, a transient loss pauses with resume-on-regain set, and a
// permanent loss abandons focus and stops outright.
func (a *Arbiter) HandleChange(c Change, playing bool) Intent {
	zlog.Debug().Str("change", c.String()).Bool("playing", playing).Msg("focus: change received")

	switch c {
	case ChangeGained:
		a.possession = PossessionGranted
		a.volumeTarget = FullVolume
		if a.resumeOnRegain {
			a.resumeOnRegain = false
			return IntentPlay
		}
		return IntentNone

	case ChangeLostTransientCanDuck:
		a.possession = PossessionDucked
		a.volumeTarget = a.duckLevel
		return IntentNone

	case ChangeLostTransient:
		a.possession = PossessionNone
		if playing {
			a.resumeOnRegain = true
			return IntentPause
		}
		return IntentNone

	case ChangeLostPermanent:
		if a.possession != PossessionNone {
			a.authority.AbandonFocus()
		}
		a.possession = PossessionNone
		a.resumeOnRegain = false
		a.volumeTarget = FullVolume
		return IntentStop
	}

	return IntentNone
}

// Possession returns the current focus possession.
func (a *Arbiter) Possession() Possession {
	return a.possession
}

// ResumePending reports whether playback was involuntarily paused and
// should resume when focus is regained.
func (a *Arbiter) ResumePending() bool {
	return a.resumeOnRegain
}

// VolumeTarget returns the volume the presentation layer should apply:
// FullVolume normally, the duck level while ducked.
func (a *Arbiter) VolumeTarget() float64 {
	return a.volumeTarget
}
