package notification

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playbox/internal/app/playback"
)

// recordingSink collects notices under a lock since broadcasts are
// delivered from separate goroutines.
type recordingSink struct {
	mu      sync.Mutex
	notices []Notice
}

func (s *recordingSink) Send(n Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
	return nil
}

func (s *recordingSink) all() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Notice, len(s.notices))
	copy(result, s.notices)
	return result
}

func snapshot(state playback.State) playback.StatusSnapshot {
	return playback.StatusSnapshot{
		State:     state,
		Rate:      1.0,
		Actions:   playback.ActionsFor(state),
		UpdatedAt: time.Now(),
	}
}

func TestManager_Broadcast(t *testing.T) {
	m := NewManager()
	defer m.Close()

	a := &recordingSink{}
	b := &recordingSink{}
	m.Subscribe(a)
	m.Subscribe(b)
	assert.Equal(t, 2, m.SubscriberCount())

	m.Broadcast(snapshot(playback.StatePlaying))

	require.Len(t, a.all(), 1)
	require.Len(t, b.all(), 1)
	assert.Equal(t, playback.StatePlaying, a.all()[0].Status.State)
}

func TestManager_SequenceNumbersIncrease(t *testing.T) {
	m := NewManager()
	defer m.Close()

	sink := &recordingSink{}
	m.Subscribe(sink)

	m.Broadcast(snapshot(playback.StatePlaying))
	m.Broadcast(snapshot(playback.StatePaused))
	m.Broadcast(snapshot(playback.StateStopped))

	notices := sink.all()
	require.Len(t, notices, 3)
	assert.Less(t, notices[0].SequenceNo, notices[1].SequenceNo)
	assert.Less(t, notices[1].SequenceNo, notices[2].SequenceNo)
}

func TestManager_Unsubscribe(t *testing.T) {
	m := NewManager()
	defer m.Close()

	sink := &recordingSink{}
	id := m.Subscribe(sink)
	m.Broadcast(snapshot(playback.StatePlaying))

	m.Unsubscribe(id)
	m.Broadcast(snapshot(playback.StateStopped))

	assert.Len(t, sink.all(), 1)
	assert.Equal(t, 0, m.SubscriberCount())
}

func TestManager_SlowSinkDoesNotBlockOthers(t *testing.T) {
	m := NewManager()
	m.sendTimeout = 20 * time.Millisecond
	defer m.Close()

	block := make(chan struct{})
	defer close(block)
	m.Subscribe(SinkFunc(func(Notice) error {
		<-block
		return nil
	}))
	fast := &recordingSink{}
	m.Subscribe(fast)

	done := make(chan struct{})
	go func() {
		m.Broadcast(snapshot(playback.StatePlaying))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a stuck sink")
	}
	assert.Len(t, fast.all(), 1)
}
