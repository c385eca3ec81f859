// Package playback provides the transport state machine driving a renderer.
package playback

// State represents the transport state.
type State int

const (
	StateStopped State = iota // No media loaded, or playback explicitly stopped
	StatePlaying              // Renderer is playing
	StatePaused               // Playback paused, position retained
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// IsActive returns true if playback is playing or paused.
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}
