// Package renderer provides a simulated renderer that advances playback
// position on the wall clock instead of producing audio. It is what the
// demo binary and session assembly use in place of a hardware player.
package renderer

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playbox/internal/domain/track"
)

// Clock simulates playback of loaded media: position is derived from
// start/pause timestamps, and the completion callback fires once elapsed
// time reaches the media duration.
//
// The wall clock (monotonic reading stripped) is used for all arithmetic so
// position survives clock adjustments the same way on every path; tests
// inject their own now func.
type Clock struct {
	mu sync.Mutex

	now          func() time.Time
	pollInterval time.Duration
	onComplete   func()

	media       track.Media
	loaded      bool
	playing     bool
	startedAt   time.Time
	elapsed     time.Duration // Accumulated playing time before startedAt
	cancelTimer func()
}

// Option configures a Clock.
type Option func(*Clock)

// WithNow replaces the clock source. Intended for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) { c.now = now }
}

// WithPollInterval sets how often the completion check runs.
func WithPollInterval(d time.Duration) Option {
	return func(c *Clock) { c.pollInterval = d }
}

// NewClock creates a simulated renderer. onComplete is invoked from a
// background goroutine when the loaded media plays to its end; pass the
// session's completion hook.
func NewClock(onComplete func(), opts ...Option) *Clock {
	c := &Clock{
		now:          time.Now,
		pollInterval: 100 * time.Millisecond,
		onComplete:   onComplete,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load prepares media for playback, discarding anything loaded before.
func (c *Clock) Load(m track.Media) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m.SourceRef == "" {
		return errors.New("empty source reference")
	}
	if m.Duration <= 0 {
		return errors.Newf("non-positive duration for %s", m.SourceRef)
	}

	c.stopTimerLocked()
	c.media = m
	c.loaded = true
	c.playing = false
	c.elapsed = 0
	zlog.Debug().Str("source", m.SourceRef).Dur("duration", m.Duration).Msg("renderer: loaded")
	return nil
}

// Start begins or resumes playback. A no-op when nothing is loaded.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded || c.playing {
		return
	}
	c.playing = true
	c.startedAt = wallTime(c.now())
	c.scheduleCompletionLocked()
}

// Pause halts playback, retaining position.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing {
		return
	}
	c.elapsed += wallTime(c.now()).Sub(c.startedAt)
	c.playing = false
	c.stopTimerLocked()
}

// SeekTo moves the position, clamped to the media bounds.
func (c *Clock) SeekTo(positionMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return
	}
	target := time.Duration(positionMs) * time.Millisecond
	if target < 0 {
		target = 0
	}
	if target > c.media.Duration {
		target = c.media.Duration
	}
	c.elapsed = target
	if c.playing {
		c.startedAt = wallTime(c.now())
		c.scheduleCompletionLocked()
	}
}

// Release discards the loaded media.
func (c *Clock) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.loaded = false
	c.playing = false
	c.elapsed = 0
	c.media = track.Media{}
}

// CurrentPosition reports the playback position in milliseconds.
func (c *Clock) CurrentPosition() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked().Milliseconds()
}

// IsActive reports whether media is loaded.
func (c *Clock) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Clock) positionLocked() time.Duration {
	pos := c.elapsed
	if c.playing {
		pos += wallTime(c.now()).Sub(c.startedAt)
	}
	if pos > c.media.Duration {
		pos = c.media.Duration
	}
	return pos
}

// scheduleCompletionLocked polls the wall clock until the remaining play
// time is exhausted, then fires the completion callback.
func (c *Clock) scheduleCompletionLocked() {
	c.stopTimerLocked()

	done := make(chan struct{})
	c.cancelTimer = func() { close(done) }

	go func() {
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				c.mu.Lock()
				if !c.playing {
					c.mu.Unlock()
					return
				}
				if c.positionLocked() < c.media.Duration {
					c.mu.Unlock()
					continue
				}
				// Played to the end: freeze position at the duration and
				// deliver the completion signal outside the lock.
				c.elapsed = c.media.Duration
				c.playing = false
				c.cancelTimer = nil
				source := c.media.SourceRef
				c.mu.Unlock()

				zlog.Debug().Str("source", source).Msg("renderer: playback completed")
				if c.onComplete != nil {
					c.onComplete()
				}
				return
			}
		}
	}()
}

func (c *Clock) stopTimerLocked() {
	if c.cancelTimer != nil {
		c.cancelTimer()
		c.cancelTimer = nil
	}
}

// wallTime strips the monotonic clock reading so differences use wall time.
func wallTime(t time.Time) time.Time {
	return time.Unix(t.Unix(), int64(t.Nanosecond()))
}
