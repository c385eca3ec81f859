// Package session provides the playback session coordinator.
package session

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playbox/internal/app/focus"
	"github.com/osa030/playbox/internal/app/notification"
	"github.com/osa030/playbox/internal/app/playback"
	"github.com/osa030/playbox/internal/domain/queue"
	"github.com/osa030/playbox/internal/domain/track"
)

// Catalog resolves track IDs to tracks. Implementations live behind the
// platform boundary (file catalog, streaming service client).
type Catalog interface {
	// ResolveTrack returns the track for an ID, or an error wrapping
	// track.ErrNotFound.
	ResolveTrack(ctx context.Context, id string) (track.Track, error)
	// ListAllTracks returns the full catalog contents.
	ListAllTracks(ctx context.Context) ([]track.Track, error)
}

// Status is the aggregated session status for direct callers. Broadcast
// consumers receive playback.StatusSnapshot notices instead.
type Status struct {
	Transport    playback.StatusSnapshot
	VolumeTarget float64
	Current      *queue.Entry
	QueueLength  int
}

// Coordinator owns one playback session: the queue, the transport machine,
// and the focus arbiter. All transport operations and inbound collaborator
// events are serialized on a single mutex, mirroring a single owner thread.
//
// Coordinators are constructed explicitly and hold no process-wide state.
type Coordinator struct {
	mu      sync.Mutex
	queue   *queue.Queue
	catalog Catalog
	machine *playback.Machine
	arbiter *focus.Arbiter

	notifier *notification.Manager

	prepared        *track.Media
	preparedEntryID string
	noisyArmed      bool
}

// New creates a coordinator. notifier may be nil when no presentation layer
// is attached. duckLevel is the volume target applied while ducked.
func New(catalog Catalog, renderer playback.Renderer, authority focus.Authority, notifier *notification.Manager, duckLevel float64) *Coordinator {
	c := &Coordinator{
		queue:    queue.New(),
		catalog:  catalog,
		notifier: notifier,
	}
	c.machine = playback.NewMachine(renderer, c.forwardStatus)
	c.arbiter = focus.NewArbiter(authority, duckLevel)
	return c
}

// forwardStatus relays machine snapshots to the presentation layer.
func (c *Coordinator) forwardStatus(s playback.StatusSnapshot) {
	if c.notifier == nil {
		return
	}
	c.notifier.Broadcast(s)
}

// Enqueue resolves a track through the catalog and appends it to the queue.
func (c *Coordinator) Enqueue(ctx context.Context, trackID string) (queue.Entry, error) {
	t, err := c.catalog.ResolveTrack(ctx, trackID)
	if err != nil {
		return queue.Entry{}, errors.Wrapf(err, "failed to resolve track %s", trackID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := queue.NewEntry(t)
	if err := c.queue.Enqueue(entry); err != nil {
		return queue.Entry{}, err
	}
	zlog.Debug().Str("entry", entry.ID).Str("track", t.ID).Msg("session: enqueued")
	return entry, nil
}

// Dequeue removes an entry from the queue. Removing the entry under the
// cursor while it is playing or paused stops playback first. An unknown
// entry ID is a no-op.
func (c *Coordinator) Dequeue(entryID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.queue.Current(); ok && cur.ID == entryID && c.machine.State().IsActive() {
		c.stopLocked()
	}
	if c.preparedEntryID == entryID {
		c.prepared = nil
		c.preparedEntryID = ""
	}

	if err := c.queue.Dequeue(entryID); err != nil {
		zlog.Warn().Str("entry", entryID).Msg("session: dequeue of unknown entry ignored")
	}
}

// Prepare resolves the queue's current entry into a loadable descriptor
// without starting playback. A no-op on an empty queue.
func (c *Coordinator) Prepare() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prepareLocked()
}

func (c *Coordinator) prepareLocked() {
	entry, ok := c.queue.Current()
	if !ok {
		c.prepared = nil
		c.preparedEntryID = ""
		return
	}
	if c.prepared != nil && c.preparedEntryID == entry.ID {
		return
	}
	media := entry.Track.Media()
	c.prepared = &media
	c.preparedEntryID = entry.ID
}

// Play starts or resumes playback of the current queue entry, preparing it
// first when needed. A no-op on an empty queue, and when the focus
// authority denies the request playback simply does not start.
func (c *Coordinator) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playLocked()
}

func (c *Coordinator) playLocked() error {
	if c.queue.IsEmpty() {
		zlog.Debug().Msg("session: play ignored, queue is empty")
		return nil
	}

	entry, _ := c.queue.Current()
	if c.prepared == nil || c.preparedEntryID != entry.ID {
		c.prepareLocked()
	}

	if !c.arbiter.Acquire() {
		return nil
	}

	if err := c.machine.Play(*c.prepared); err != nil {
		c.noisyArmed = false
		return err
	}
	c.noisyArmed = true
	return nil
}

// Pause pauses playback. A no-op unless playing.
func (c *Coordinator) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseLocked()
}

func (c *Coordinator) pauseLocked() {
	c.machine.Pause()
	// Keep listening for noisy-output events while an involuntary pause
	// waits on focus regain.
	if !c.arbiter.ResumePending() {
		c.noisyArmed = false
	}
}

// Stop tears the session's playback down: renderer released, focus
// abandoned, arbitration state reset. Always safe to call.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Coordinator) stopLocked() {
	c.machine.Stop()
	c.arbiter.Release()
	c.noisyArmed = false
	c.prepared = nil
	c.preparedEntryID = ""
}

// SeekTo moves the playback position. A no-op on an empty queue.
func (c *Coordinator) SeekTo(positionMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.queue.IsEmpty() {
		return
	}
	c.machine.SeekTo(positionMs)
}

// SkipNext advances the cursor and starts playback of the new entry,
// discarding any prepared media. Skip always resumes playback, even from
// Paused or Stopped.
func (c *Coordinator) SkipNext() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skipLocked(c.queue.Next)
}

// SkipPrevious moves the cursor back and starts playback of the new entry.
// Like SkipNext, it always resumes playback.
func (c *Coordinator) SkipPrevious() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skipLocked(c.queue.Previous)
}

func (c *Coordinator) skipLocked(move func() error) error {
	if err := move(); err != nil {
		zlog.Debug().Msg("session: skip ignored, queue is empty")
		return nil
	}
	c.prepared = nil
	c.preparedEntryID = ""
	return c.playLocked()
}

// PlayFromID starts playback of a specific track, queueing it first when it
// is not already queued.
func (c *Coordinator) PlayFromID(ctx context.Context, trackID string) error {
	c.mu.Lock()
	for _, e := range c.queue.Entries() {
		if e.Track.ID == trackID {
			_ = c.queue.Select(e.ID)
			c.prepared = nil
			c.preparedEntryID = ""
			err := c.playLocked()
			c.mu.Unlock()
			return err
		}
	}
	c.mu.Unlock()

	entry, err := c.Enqueue(ctx, trackID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.queue.Select(entry.ID); err != nil {
		return err
	}
	c.prepared = nil
	c.preparedEntryID = ""
	return c.playLocked()
}

// HandleFocusChange processes an asynchronous focus-change event from the
// authority, executing whatever transport intent the arbiter decides.
func (c *Coordinator) HandleFocusChange(change focus.Change) {
	c.mu.Lock()
	defer c.mu.Unlock()

	playing := c.machine.State() == playback.StatePlaying
	intent := c.arbiter.HandleChange(change, playing)

	switch intent {
	case focus.IntentPlay:
		if err := c.playLocked(); err != nil {
			zlog.Error().Err(err).Msg("session: resume on focus regain failed")
		}
	case focus.IntentPause:
		c.pauseLocked()
	case focus.IntentStop:
		c.stopLocked()
	}
}

// HandleNoisyOutput processes a noisy-audio-output event (output route
// became audible to others, e.g. headphones unplugged). Honored only while
// armed by a successful play.
func (c *Coordinator) HandleNoisyOutput() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.noisyArmed {
		return
	}
	if c.machine.State() == playback.StatePlaying {
		zlog.Debug().Msg("session: pausing on noisy output")
		c.pauseLocked()
	}
}

// HandleCompleted processes the renderer's natural end-of-media signal.
func (c *Coordinator) HandleCompleted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.machine.HandleCompleted()
}

// Status returns the aggregated session status.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		Transport:    c.machine.Status(),
		VolumeTarget: c.arbiter.VolumeTarget(),
		QueueLength:  c.queue.Len(),
	}
	if entry, ok := c.queue.Current(); ok {
		s.Current = &entry
	}
	return s
}

// Queue returns a copy of the queued entries in order.
func (c *Coordinator) Queue() []queue.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Entries()
}

// ListTracks returns the full catalog contents.
func (c *Coordinator) ListTracks(ctx context.Context) ([]track.Track, error) {
	return c.catalog.ListAllTracks(ctx)
}

// Close stops playback and releases session resources.
func (c *Coordinator) Close() {
	c.Stop()
}
