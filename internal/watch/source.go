// Package watch monitors a directory for newly created files and feeds
// them to the organize engine. The notification mechanism is pluggable:
// a platform-native fsnotify source and a polling fallback both satisfy
// Source, and tests can inject synthetic sources.
package watch

import (
	"sync"
	"time"
)

// Event describes one filesystem creation notification.
type Event struct {
	Path string    // Absolute path of the created entry
	Dir  bool      // Whether the entry is a directory
	Time time.Time // When the notification was observed
}

// Source delivers creation events for a single watched directory,
// non-recursively. Start on a running source returns an error; Stop on a
// stopped source is a no-op. Stop blocks until the delivery goroutines
// have quiesced and the events channel is closed, so a caller may safely
// mutate or remove the watched directory afterwards.
type Source interface {
	Start() error
	Stop()
	Events() <-chan Event
}

// eventQueue is an elastic FIFO between notification delivery and event
// consumption. A slow consumer makes the queue grow; it never drops.
type eventQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []Event
	closed  bool
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends an event. Events pushed after close are discarded.
func (q *eventQueue) push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.pending = append(q.pending, ev)
	q.cond.Signal()
}

// pop blocks until an event is available or the queue is closed.
// It reports false once the queue is closed; remaining pending events
// are intentionally discarded so no new work starts after a stop.
func (q *eventQueue) pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return Event{}, false
	}
	ev := q.pending[0]
	q.pending = q.pending[1:]
	return ev, true
}

// close releases all waiters.
func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
