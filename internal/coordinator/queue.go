package coordinator

import (
	"sync"

	"github.com/halvard/kinocut/internal/canvas"
	"github.com/halvard/kinocut/internal/media"
)

// Source tells which side of the coordinator an event entered from. The
// source decides the propagation path: engine events flow to the store
// and stop there; surface events flow to the store and on to the engine.
type Source int

const (
	// SourceEngine marks engine-originated notifications and echoes.
	SourceEngine Source = iota + 1
	// SourceSurface marks user interactions committed by the canvas.
	SourceSurface
)

func (s Source) String() string {
	switch s {
	case SourceEngine:
		return "engine"
	case SourceSurface:
		return "surface"
	default:
		return "unknown"
	}
}

// Event wraps one queued notification with its logical sequence number.
// Exactly one of Engine/Surface is set, matching Source.
type Event struct {
	Seq     int64
	Source  Source
	Engine  media.Event
	Surface canvas.Event
}

// Name returns the wrapped event's stable name for logs and traces.
func (e Event) Name() string {
	switch e.Source {
	case SourceEngine:
		return media.EventName(e.Engine)
	case SourceSurface:
		return canvas.EventName(e.Surface)
	default:
		return "unknown"
	}
}

// eventQueue is a FIFO for coordinator events.
//
// The queue is unbounded: an engine echo storm after a wholesale push
// must never block the emitter. Enqueueing is safe from any goroutine;
// dequeuing happens only on the session goroutine. The buffered signal
// channel coalesces wakeups for the context-aware wait in Run.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends an event. Returns false once the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue pops the front event without blocking.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}
	e := q.events[0]

	// Zero the slot so the wrapped payloads can be collected while the
	// backing array lives on.
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Wait returns the signal channel for select-based waiting. The channel
// closes when the queue closes, waking all waiters.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of queued events.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close stops further enqueues and wakes waiters.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
