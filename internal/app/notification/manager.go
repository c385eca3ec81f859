// Package notification fans playback status snapshots out to presentation
// sinks (the session/notification layer of the host platform).
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osa030/playbox/internal/app/playback"
)

// Notice is the broadcast payload: a status snapshot with a sequence number
// so sinks can detect reordering or loss.
type Notice struct {
	SequenceNo uint64
	Status     playback.StatusSnapshot
}

// Sink receives notices. Sends are fire-and-forget: the session never
// consumes a sink's return value beyond logging.
type Sink interface {
	Send(Notice) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Notice) error

// Send calls f(n).
func (f SinkFunc) Send(n Notice) error {
	return f(n)
}

type subscription struct {
	id   string
	sink Sink
}

// Manager manages sink subscriptions and broadcasting.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription

	sequenceMu sync.Mutex
	sequenceNo uint64

	sendTimeout time.Duration
}

// NewManager creates a manager with no subscribers.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
		sendTimeout:   500 * time.Millisecond,
	}
}

// Subscribe registers a sink and returns its subscription ID.
func (m *Manager) Subscribe(sink Sink) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscriptions[id] = &subscription{id: id, sink: sink}
	return id
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
}

// Broadcast stamps the snapshot with the next sequence number and sends it
// to every subscriber. Each send runs in its own goroutine with a timeout
// so a stuck sink cannot stall the control path.
func (m *Manager) Broadcast(status playback.StatusSnapshot) {
	m.sequenceMu.Lock()
	m.sequenceNo++
	notice := Notice{SequenceNo: m.sequenceNo, Status: status}
	m.sequenceMu.Unlock()

	m.mu.RLock()
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), m.sendTimeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- s.sink.Send(notice)
			}()

			select {
			case <-done:
				// Send errors are ignored; the payload is fire-and-forget.
			case <-ctx.Done():
				// Sink too slow, move on.
			}
		}(sub)
	}
	wg.Wait()
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make(map[string]*subscription)
}
