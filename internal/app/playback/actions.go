package playback

import "strings"

// Actions is a bitset of the transport actions available in a given state.
type Actions uint32

const (
	ActionPlay Actions = 1 << iota
	ActionPlayPause
	ActionPause
	ActionStop
	ActionSeekTo
	ActionSkipNext
	ActionSkipPrevious
	ActionPlayFromID
	ActionPlayFromSearch
)

// actionsAlways are available regardless of transport state.
const actionsAlways = ActionPlayFromID | ActionPlayFromSearch | ActionSkipNext | ActionSkipPrevious

// ActionsFor returns the available-actions bitset for a state. The result
// is a pure function of the state and is recomputed on every transition.
func ActionsFor(s State) Actions {
	switch s {
	case StateStopped:
		return actionsAlways | ActionPlay | ActionPause
	case StatePlaying:
		return actionsAlways | ActionStop | ActionPause | ActionSeekTo
	case StatePaused:
		return actionsAlways | ActionPlay | ActionStop
	default:
		return actionsAlways | ActionPlay | ActionPlayPause | ActionStop | ActionPause
	}
}

// Has returns true if the bitset contains the given action.
func (a Actions) Has(action Actions) bool {
	return a&action != 0
}

// String returns a pipe-separated list of the set actions.
func (a Actions) String() string {
	names := []struct {
		action Actions
		name   string
	}{
		{ActionPlay, "play"},
		{ActionPlayPause, "play_pause"},
		{ActionPause, "pause"},
		{ActionStop, "stop"},
		{ActionSeekTo, "seek_to"},
		{ActionSkipNext, "skip_next"},
		{ActionSkipPrevious, "skip_previous"},
		{ActionPlayFromID, "play_from_id"},
		{ActionPlayFromSearch, "play_from_search"},
	}

	var set []string
	for _, n := range names {
		if a.Has(n.action) {
			set = append(set, n.name)
		}
	}
	return strings.Join(set, "|")
}
