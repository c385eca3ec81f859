// Package queue provides the ordered playback queue with a wrapping cursor.
package queue

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/osa030/playbox/internal/domain/track"
)

// Errors
var (
	ErrEmptyQueue     = errors.New("queue is empty")
	ErrDuplicateEntry = errors.New("entry already queued")
	ErrEntryNotFound  = errors.New("entry not found")
)

// entryNamespace is the UUID namespace for deriving entry IDs from track IDs.
var entryNamespace = uuid.MustParse("6f1c24c8-8c1d-4b6f-9a76-3d2c52f1a6b0")

// Entry wraps a track with a stable, content-derived queue entry ID.
type Entry struct {
	ID    string
	Track track.Track
}

// NewEntry creates an entry whose ID is derived from the track ID, so the
// same track always maps to the same entry ID.
func NewEntry(t track.Track) Entry {
	return Entry{
		ID:    uuid.NewSHA1(entryNamespace, []byte(t.ID)).String(),
		Track: t,
	}
}

// Queue is an ordered sequence of entries with a cursor.
// The cursor is -1 when the queue is empty, otherwise always within
// [0, len-1]. Navigation wraps around at both ends.
//
// A queue is owned by a single session coordinator and is not safe for
// concurrent use on its own.
type Queue struct {
	entries []Entry
	cursor  int
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		entries: make([]Entry, 0),
		cursor:  -1,
	}
}

// Enqueue appends an entry. If the queue was empty, the cursor moves to it.
func (q *Queue) Enqueue(e Entry) error {
	for _, existing := range q.entries {
		if existing.ID == e.ID {
			return errors.Wrapf(ErrDuplicateEntry, "entry %s", e.ID)
		}
	}

	q.entries = append(q.entries, e)
	if q.cursor < 0 {
		q.cursor = 0
	}
	return nil
}

// Dequeue removes the entry with the given ID. The cursor is adjusted so it
// keeps pointing at a valid entry, or cleared when the queue becomes empty.
func (q *Queue) Dequeue(entryID string) error {
	idx := -1
	for i, e := range q.entries {
		if e.ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.Wrapf(ErrEntryNotFound, "entry %s", entryID)
	}

	q.entries = append(q.entries[:idx], q.entries[idx+1:]...)

	if idx <= q.cursor {
		q.cursor--
	}
	if len(q.entries) == 0 {
		q.cursor = -1
	} else if q.cursor < 0 {
		q.cursor = 0
	}
	return nil
}

// Next advances the cursor, wrapping to the first entry after the last.
func (q *Queue) Next() error {
	if len(q.entries) == 0 {
		return ErrEmptyQueue
	}
	q.cursor = (q.cursor + 1) % len(q.entries)
	return nil
}

// Previous moves the cursor back, wrapping to the last entry from the first.
func (q *Queue) Previous() error {
	if len(q.entries) == 0 {
		return ErrEmptyQueue
	}
	q.cursor--
	if q.cursor < 0 {
		q.cursor = len(q.entries) - 1
	}
	return nil
}

// Select moves the cursor to the entry with the given ID.
func (q *Queue) Select(entryID string) error {
	for i, e := range q.entries {
		if e.ID == entryID {
			q.cursor = i
			return nil
		}
	}
	return errors.Wrapf(ErrEntryNotFound, "entry %s", entryID)
}

// Current returns the entry under the cursor, or false when the queue is empty.
func (q *Queue) Current() (Entry, bool) {
	if q.cursor < 0 || q.cursor >= len(q.entries) {
		return Entry{}, false
	}
	return q.entries[q.cursor], true
}

// Index returns the cursor position, or -1 when the queue is empty.
func (q *Queue) Index() int {
	return q.cursor
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	return len(q.entries)
}

// IsEmpty returns true if no entries are queued.
func (q *Queue) IsEmpty() bool {
	return len(q.entries) == 0
}

// Entries returns a copy of the queued entries in order.
func (q *Queue) Entries() []Entry {
	result := make([]Entry, len(q.entries))
	copy(result, q.entries)
	return result
}
