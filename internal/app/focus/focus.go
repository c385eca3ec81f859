// Package focus provides audio-focus arbitration for a playback session.
package focus

// Possession represents the session's current audio-focus possession.
type Possession int

const (
	PossessionNone    Possession = iota // Focus not held
	PossessionGranted                   // Focus held at full volume
	PossessionDucked                    // Focus held but ducked by another stream
)

// String returns the string representation of the possession state.
func (p Possession) String() string {
	switch p {
	case PossessionNone:
		return "none"
	case PossessionGranted:
		return "granted"
	case PossessionDucked:
		return "ducked"
	default:
		return "unknown"
	}
}

// Change represents an asynchronous focus-change event delivered by the
// focus authority.
type Change int

const (
	ChangeGained               Change = iota // Focus (re)gained
	ChangeLostTransientCanDuck               // Another stream wants focus, ducking allowed
	ChangeLostTransient                      // Focus lost temporarily
	ChangeLostPermanent                      // Focus lost for good
)

// String returns the string representation of the change event.
func (c Change) String() string {
	switch c {
	case ChangeGained:
		return "gained"
	case ChangeLostTransientCanDuck:
		return "lost_transient_can_duck"
	case ChangeLostTransient:
		return "lost_transient"
	case ChangeLostPermanent:
		return "lost_permanent"
	default:
		return "unknown"
	}
}

// Intent is the transport action the arbiter asks its owner to execute in
// response to a focus change.
type Intent int

const (
	IntentNone Intent = iota
	IntentPlay
	IntentPause
	IntentStop
)

// String returns the string representation of the intent.
func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "none"
	case IntentPlay:
		return "play"
	case IntentPause:
		return "pause"
	case IntentStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Authority is the external focus-granting collaborator.
type Authority interface {
	RequestFocus() bool
	AbandonFocus()
}
