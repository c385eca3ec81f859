package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playbox/internal/app/focus"
	"github.com/osa030/playbox/internal/app/playback"
	"github.com/osa030/playbox/internal/domain/track"
)

type fakeCatalog struct {
	tracks map[string]track.Track
}

func (f *fakeCatalog) ResolveTrack(_ context.Context, id string) (track.Track, error) {
	t, ok := f.tracks[id]
	if !ok {
		return track.Track{}, track.ErrNotFound
	}
	return t, nil
}

func (f *fakeCatalog) ListAllTracks(_ context.Context) ([]track.Track, error) {
	result := make([]track.Track, 0, len(f.tracks))
	for _, t := range f.tracks {
		result = append(result, t)
	}
	return result, nil
}

type fakeRenderer struct {
	loads    []string
	starts   int
	pauses   int
	seeks    []int64
	releases int
	position int64
	active   bool
}

func (f *fakeRenderer) Load(m track.Media) error {
	f.loads = append(f.loads, m.SourceRef)
	f.active = true
	return nil
}

func (f *fakeRenderer) Start() { f.starts++ }
func (f *fakeRenderer) Pause() { f.pauses++ }
func (f *fakeRenderer) SeekTo(positionMs int64) {
	f.seeks = append(f.seeks, positionMs)
	f.position = positionMs
}
func (f *fakeRenderer) Release() {
	f.releases++
	f.active = false
	f.position = 0
}
func (f *fakeRenderer) CurrentPosition() int64 { return f.position }
func (f *fakeRenderer) IsActive() bool { return f.active }

type fakeAuthority struct {
	deny     bool
	requests int
	abandons int
}

func (f *fakeAuthority) RequestFocus() bool {
	f.requests++
	return !f.deny
}

func (f *fakeAuthority) AbandonFocus() { f.abandons++ }

func catalogTrack(id string) track.Track {
	return track.Track{
		ID:        id,
		Title:     "Title " + id,
		Artist:    "Artist",
		Duration:  3 * time.Minute,
		SourceRef: "file:///music/" + id + ".mp3",
	}
}

func newTestCoordinator(t *testing.T, trackIDs ...string) (*Coordinator, *fakeRenderer, *fakeAuthority) {
	t.Helper()
	tracks := make(map[string]track.Track, len(trackIDs))
	for _, id := range trackIDs {
		tracks[id] = catalogTrack(id)
	}
	r := &fakeRenderer{}
	auth := &fakeAuthority{}
	c := New(&fakeCatalog{tracks: tracks}, r, auth, nil, focus.DefaultDuckVolume)
	return c, r, auth
}

func TestCoordinator_PlayOnEmptyQueue(t *testing.T) {
	c, r, auth := newTestCoordinator(t)

	require.NoError(t, c.Play())

	// No state change and no renderer or authority interaction
	assert.Equal(t, playback.StateStopped, c.Status().Transport.State)
	assert.Empty(t, r.loads)
	assert.Equal(t, 0, r.starts)
	assert.Equal(t, 0, auth.requests)
}

func TestCoordinator_PlayStopScenario(t *testing.T) {
	c, r, _ := newTestCoordinator(t, "track-a")
	ctx := context.Background()

	_, err := c.Enqueue(ctx, "track-a")
	require.NoError(t, err)

	require.NoError(t, c.Play())
	assert.Equal(t, playback.StatePlaying, c.Status().Transport.State)
	assert.Equal(t, []string{"file:///music/track-a.mp3"}, r.loads)
	assert.Equal(t, 1, r.starts)

	c.Stop()
	assert.Equal(t, playback.StateStopped, c.Status().Transport.State)
	assert.Equal(t, 1, r.releases)

	// Stop forces full reinitialization of the same track
	require.NoError(t, c.Play())
	assert.Len(t, r.loads, 2)
}

func TestCoordinator_Enqueue_UnknownTrack(t *testing.T) {
	c, _, _ := newTestCoordinator(t, "track-a")

	_, err := c.Enqueue(context.Background(), "no-such-track")
	assert.ErrorIs(t, err, track.ErrNotFound)
}

func TestCoordinator_FocusDenied(t *testing.T) {
	c, r, auth := newTestCoordinator(t, "track-a")
	auth.deny = true
	_, err := c.Enqueue(context.Background(), "track-a")
	require.NoError(t, err)

	// Denied focus degrades gracefully: no error, playback just not started
	require.NoError(t, c.Play())
	assert.Equal(t, playback.StateStopped, c.Status().Transport.State)
	assert.Equal(t, 0, r.starts)
	assert.Equal(t, 1, auth.requests)
}

func TestCoordinator_SkipAlwaysResumes(t *testing.T) {
	c, r, _ := newTestCoordinator(t, "track-a", "track-b")
	ctx := context.Background()
	_, err := c.Enqueue(ctx, "track-a")
	require.NoError(t, err)
	_, err = c.Enqueue(ctx, "track-b")
	require.NoError(t, err)

	require.NoError(t, c.Play())
	c.Pause()
	assert.Equal(t, playback.StatePaused, c.Status().Transport.State)

	// Skip from paused starts the next track playing
	require.NoError(t, c.SkipNext())
	s := c.Status()
	assert.Equal(t, playback.StatePlaying, s.Transport.State)
	require.NotNil(t, s.Current)
	assert.Equal(t, "track-b", s.Current.Track.ID)
	assert.Equal(t, "file:///music/track-b.mp3", r.loads[len(r.loads)-1])
}

func TestCoordinator_SkipFromStopped(t *testing.T) {
	c, _, _ := newTestCoordinator(t, "track-a", "track-b")
	ctx := context.Background()
	_, err := c.Enqueue(ctx, "track-a")
	require.NoError(t, err)
	_, err = c.Enqueue(ctx, "track-b")
	require.NoError(t, err)

	require.NoError(t, c.SkipPrevious())
	s := c.Status()
	assert.Equal(t, playback.StatePlaying, s.Transport.State)
	require.NotNil(t, s.Current)
	assert.Equal(t, "track-b", s.Current.Track.ID)
}

func TestCoordinator_SkipCyclic(t *testing.T) {
	ids := []string{"track-a", "track-b", "track-c"}
	c, _, _ := newTestCoordinator(t, ids...)
	ctx := context.Background()
	for _, id := range ids {
		_, err := c.Enqueue(ctx, id)
		require.NoError(t, err)
	}
	require.NoError(t, c.Play())
	start := c.Status().Current.Track.ID

	for range ids {
		require.NoError(t, c.SkipNext())
	}

	assert.Equal(t, start, c.Status().Current.Track.ID)
}

func TestCoordinator_SkipOnEmptyQueue(t *testing.T) {
	c, r, _ := newTestCoordinator(t)

	require.NoError(t, c.SkipNext())
	require.NoError(t, c.SkipPrevious())
	assert.Empty(t, r.loads)
}

func TestCoordinator_DequeueCurrentSingleton(t *testing.T) {
	c, r, _ := newTestCoordinator(t, "track-a")
	entry, err := c.Enqueue(context.Background(), "track-a")
	require.NoError(t, err)
	require.NoError(t, c.Play())

	c.Dequeue(entry.ID)

	// Queue empty: playback stopped, cursor unset, play becomes a no-op
	s := c.Status()
	assert.Equal(t, playback.StateStopped, s.Transport.State)
	assert.Nil(t, s.Current)
	assert.Equal(t, 0, s.QueueLength)
	assert.Equal(t, 1, r.releases)

	loadsBefore := len(r.loads)
	require.NoError(t, c.Play())
	assert.Len(t, r.loads, loadsBefore)
}

func TestCoordinator_DequeueUnknownIsNoop(t *testing.T) {
	c, _, _ := newTestCoordinator(t, "track-a")
	_, err := c.Enqueue(context.Background(), "track-a")
	require.NoError(t, err)

	c.Dequeue("no-such-entry")
	assert.Equal(t, 1, c.Status().QueueLength)
}

func TestCoordinator_DuckLeavesTransportAlone(t *testing.T) {
	c, _, _ := newTestCoordinator(t, "track-a")
	_, err := c.Enqueue(context.Background(), "track-a")
	require.NoError(t, err)
	require.NoError(t, c.Play())

	c.HandleFocusChange(focus.ChangeLostTransientCanDuck)
	s := c.Status()
	assert.Equal(t, playback.StatePlaying, s.Transport.State)
	assert.InDelta(t, focus.DefaultDuckVolume, s.VolumeTarget, 1e-9)

	c.HandleFocusChange(focus.ChangeGained)
	s = c.Status()
	assert.Equal(t, playback.StatePlaying, s.Transport.State)
	assert.InDelta(t, focus.FullVolume, s.VolumeTarget, 1e-9)
}

func TestCoordinator_TransientLossPausesAndResumes(t *testing.T) {
	c, r, _ := newTestCoordinator(t, "track-a")
	_, err := c.Enqueue(context.Background(), "track-a")
	require.NoError(t, err)
	require.NoError(t, c.Play())

	c.HandleFocusChange(focus.ChangeLostTransient)
	assert.Equal(t, playback.StatePaused, c.Status().Transport.State)
	assert.Equal(t, 1, r.pauses)

	c.HandleFocusChange(focus.ChangeGained)
	assert.Equal(t, playback.StatePlaying, c.Status().Transport.State)
	// Resume, not reload
	assert.Len(t, r.loads, 1)
}

func TestCoordinator_PermanentLossStops(t *testing.T) {
	c, r, auth := newTestCoordinator(t, "track-a")
	_, err := c.Enqueue(context.Background(), "track-a")
	require.NoError(t, err)
	require.NoError(t, c.Play())

	c.HandleFocusChange(focus.ChangeLostPermanent)

	assert.Equal(t, playback.StateStopped, c.Status().Transport.State)
	assert.Equal(t, 1, r.releases)
	assert.Equal(t, 1, auth.abandons)
}

func TestCoordinator_NoisyOutput(t *testing.T) {
	c, r, _ := newTestCoordinator(t, "track-a")
	_, err := c.Enqueue(context.Background(), "track-a")
	require.NoError(t, err)

	// Not armed before any play
	c.HandleNoisyOutput()
	assert.Equal(t, 0, r.pauses)

	require.NoError(t, c.Play())
	c.HandleNoisyOutput()
	assert.Equal(t, playback.StatePaused, c.Status().Transport.State)
	assert.Equal(t, 1, r.pauses)

	// Disarmed by the pause: a second event does nothing
	c.HandleNoisyOutput()
	assert.Equal(t, 1, r.pauses)
}

func TestCoordinator_CompletedThenReplayReloads(t *testing.T) {
	c, r, _ := newTestCoordinator(t, "track-a")
	_, err := c.Enqueue(context.Background(), "track-a")
	require.NoError(t, err)
	require.NoError(t, c.Play())

	c.HandleCompleted()
	assert.Equal(t, playback.StatePaused, c.Status().Transport.State)

	require.NoError(t, c.Play())
	assert.Len(t, r.loads, 2)
	assert.Equal(t, playback.StatePlaying, c.Status().Transport.State)
}

func TestCoordinator_SeekWhilePaused(t *testing.T) {
	c, r, _ := newTestCoordinator(t, "track-a")
	_, err := c.Enqueue(context.Background(), "track-a")
	require.NoError(t, err)
	require.NoError(t, c.Play())
	c.Pause()
	r.position = 1111 // stale

	c.SeekTo(5000)
	assert.Equal(t, int64(5000), c.Status().Transport.Position)

	require.NoError(t, c.Play())
	r.position = 5200
	assert.Equal(t, int64(5200), c.Status().Transport.Position)
}

func TestCoordinator_SeekOnEmptyQueue(t *testing.T) {
	c, r, _ := newTestCoordinator(t)

	c.SeekTo(5000)
	assert.Empty(t, r.seeks)
	assert.Equal(t, int64(0), c.Status().Transport.Position)
}

func TestCoordinator_PlayFromID(t *testing.T) {
	c, _, _ := newTestCoordinator(t, "track-a", "track-b")
	ctx := context.Background()
	_, err := c.Enqueue(ctx, "track-a")
	require.NoError(t, err)

	// Unqueued track gets enqueued and selected
	require.NoError(t, c.PlayFromID(ctx, "track-b"))
	s := c.Status()
	assert.Equal(t, playback.StatePlaying, s.Transport.State)
	assert.Equal(t, "track-b", s.Current.Track.ID)
	assert.Equal(t, 2, s.QueueLength)

	// Queued track is selected without duplicating the entry
	require.NoError(t, c.PlayFromID(ctx, "track-a"))
	s = c.Status()
	assert.Equal(t, "track-a", s.Current.Track.ID)
	assert.Equal(t, 2, s.QueueLength)
}

func TestCoordinator_Prepare_DoesNotStartPlayback(t *testing.T) {
	c, r, _ := newTestCoordinator(t, "track-a")
	_, err := c.Enqueue(context.Background(), "track-a")
	require.NoError(t, err)

	c.Prepare()

	assert.Equal(t, playback.StateStopped, c.Status().Transport.State)
	assert.Empty(t, r.loads)
	assert.Equal(t, 0, r.starts)
}
