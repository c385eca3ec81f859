package playback

import (
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playbox/internal/domain/track"
)

// Renderer is the capability interface for the rendering collaborator.
// Completion is delivered out-of-band to a callback handed to the renderer
// at construction time, routed back into the machine by its owner.
type Renderer interface {
	// Load prepares the given media for playback. A failed load is fatal
	// to the current play attempt.
	Load(m track.Media) error
	// Start begins or resumes playback of the loaded media.
	Start()
	// Pause halts playback, retaining position.
	Pause()
	// SeekTo moves the playback position, in milliseconds.
	SeekTo(positionMs int64)
	// Release discards the loaded media and any held resources.
	Release()
	// CurrentPosition reports the playback position in milliseconds.
	CurrentPosition() int64
	// IsActive reports whether media is currently loaded.
	IsActive() bool
}

// Machine owns the transport state and drives the renderer through it.
// Once stopped or played to completion, the next play of the same media
// goes through a full Load again.
//
// A machine is owned by a single session coordinator, which serializes all
// calls including the routed completion signal.
type Machine struct {
	renderer Renderer
	sink     StatusSink

	state          State
	loadedRef      string // Source ref of the currently loaded media
	reloadRequired bool   // Set on stop and on natural completion
	pendingSeek    int64  // Seek target issued while not playing, -1 when none
	lastPosition   int64  // Position captured at the last pause
}

// NewMachine creates a machine in the Stopped state.
func NewMachine(r Renderer, sink StatusSink) *Machine {
	return &Machine{
		renderer:    r,
		sink:        sink,
		state:       StateStopped,
		pendingSeek: -1,
	}
}

// Play starts or resumes playback of the given media. The media is loaded
// into the renderer when nothing compatible is loaded, or when a stop or
// natural completion forced a reload. A load failure transitions to Stopped
// and is surfaced to the caller.
func (m *Machine) Play(media track.Media) error {
	// Already playing this exact media: nothing to do. Playing different
	// media (a skip) falls through to a full reload.
	if m.state == StatePlaying && m.loadedRef == media.SourceRef && !m.reloadRequired {
		return nil
	}

	needLoad := m.reloadRequired || m.loadedRef == "" || m.loadedRef != media.SourceRef
	if needLoad {
		if m.renderer.IsActive() {
			m.renderer.Release()
		}
		if err := m.renderer.Load(media); err != nil {
			m.loadedRef = ""
			m.reloadRequired = true
			m.lastPosition = 0
			m.state = StateStopped
			m.emit()
			return errors.Wrapf(err, "failed to load %s", media.SourceRef)
		}
		m.loadedRef = media.SourceRef
		m.reloadRequired = false
		m.lastPosition = 0
	}

	if m.pendingSeek >= 0 {
		m.renderer.SeekTo(m.pendingSeek)
		m.pendingSeek = -1
	}

	m.renderer.Start()
	m.state = StatePlaying
	m.emit()
	return nil
}

// Pause halts playback. A no-op unless currently playing.
func (m *Machine) Pause() {
	if m.state != StatePlaying {
		return
	}
	m.lastPosition = m.renderer.CurrentPosition()
	m.renderer.Pause()
	m.state = StatePaused
	m.emit()
}

// Stop is unconditionally allowed from any state. It releases the rendering
// resource and forces a full reload on the next play of the same media.
func (m *Machine) Stop() {
	m.renderer.Release()
	m.state = StateStopped
	m.reloadRequired = true
	m.pendingSeek = -1
	m.lastPosition = 0
	m.emit()
}

// SeekTo moves the playback position. While not playing the target is held
// as a pending override and applied to the renderer on the next play; until
// then the reported position is the target itself, guarding against stale
// reads from the renderer.
func (m *Machine) SeekTo(positionMs int64) {
	if positionMs < 0 {
		positionMs = 0
	}

	if m.state == StatePlaying {
		m.renderer.SeekTo(positionMs)
	} else {
		m.pendingSeek = positionMs
		if m.renderer.IsActive() {
			m.renderer.SeekTo(positionMs)
		}
	}
	m.emit()
}

// HandleCompleted processes the renderer's natural end-of-media signal,
// distinct from a user pause: the transition is Playing to Paused and the
// next play of the same media reloads it.
func (m *Machine) HandleCompleted() {
	if m.state != StatePlaying {
		return
	}
	zlog.Debug().Str("source", m.loadedRef).Msg("playback: media completed")
	m.lastPosition = m.renderer.CurrentPosition()
	m.reloadRequired = true
	m.state = StatePaused
	m.emit()
}

// Position reports the playback position in milliseconds, honoring a
// pending seek override while not playing.
func (m *Machine) Position() int64 {
	if m.pendingSeek >= 0 && m.state != StatePlaying {
		return m.pendingSeek
	}
	if m.renderer.IsActive() {
		return m.renderer.CurrentPosition()
	}
	return m.lastPosition
}

// State returns the current transport state.
func (m *Machine) State() State {
	return m.state
}

// ReloadRequired reports whether the next play must fully reload the media.
func (m *Machine) ReloadRequired() bool {
	return m.reloadRequired
}

// Status returns a snapshot of the current transport status.
func (m *Machine) Status() StatusSnapshot {
	return StatusSnapshot{
		State:     m.state,
		Position:  m.Position(),
		Rate:      1.0,
		Actions:   ActionsFor(m.state),
		UpdatedAt: time.Now(),
	}
}

func (m *Machine) emit() {
	if m.sink == nil {
		return
	}
	m.sink(m.Status())
}
