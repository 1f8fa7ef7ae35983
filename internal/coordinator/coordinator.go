// Package coordinator owns the session event loop that keeps the two
// halves of a timeline session aligned: the document store and the
// media engine's mirror of it.
//
// Two pipelines meet here and their asymmetry is the whole design.
// Engine notifications fold into the store and STOP; applying one never
// calls back into the engine, so echoes of our own writes die after one
// hop against the store's value-idempotent commits. Surface commits go
// the other way: the store is updated first (the render must not wait),
// then the change is forwarded to the engine fire-and-forget.
//
// All mutations happen on the single goroutine that runs the loop.
// External callers only enqueue.
package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/halvard/kinocut/internal/canvas"
	"github.com/halvard/kinocut/internal/ident"
	"github.com/halvard/kinocut/internal/media"
	"github.com/halvard/kinocut/internal/timeline"
)

// Record is one journal entry: a sequence number, which side the event
// entered from, its stable name, and the marshaled payload.
type Record struct {
	Seq     int64           `json:"seq"`
	Source  string          `json:"source"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Recorder receives every processed event in sequence order.
// Implementations must not call back into the coordinator.
type Recorder interface {
	Append(Record) error
}

// Coordinator routes events between the store and the media engine.
type Coordinator struct {
	store    *timeline.Store
	engine   media.Engine
	queue    *eventQueue
	clock    *Clock
	ids      ident.Generator
	log      *slog.Logger
	recorder Recorder

	playhead atomic.Int64
	playing  atomic.Bool
	draining atomic.Bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the session logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// WithIDs swaps the id generator. Scenario runs use a deterministic
// sequence so split and duplicate mint reproducible ids.
func WithIDs(gen ident.Generator) Option {
	return func(c *Coordinator) {
		if gen != nil {
			c.ids = gen
		}
	}
}

// WithClock sets a pre-positioned clock, used when resuming a session
// from a journal.
func WithClock(clock *Clock) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithRecorder attaches a journal.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) {
		c.recorder = r
	}
}

// New builds a coordinator over the given store and engine and
// subscribes to the engine's notifications. Events queue from the
// moment New returns; nothing is applied until Run or Drain.
func New(store *timeline.Store, engine media.Engine, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  store,
		engine: engine,
		queue:  newEventQueue(),
		clock:  NewClock(),
		ids:    ident.UUID(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.engine.Subscribe(func(ev media.Event) {
		c.queue.Enqueue(Event{Seq: c.clock.Next(), Source: SourceEngine, Engine: ev})
	})
	return c
}

// Store returns the document store.
func (c *Coordinator) Store() *timeline.Store { return c.store }

// SurfaceSink returns the callback an interaction surface commits
// through. Safe to call from any goroutine; events queue until the
// loop picks them up.
func (c *Coordinator) SurfaceSink() func(canvas.Event) {
	return func(ev canvas.Event) {
		if ev == nil {
			return
		}
		c.queue.Enqueue(Event{Seq: c.clock.Next(), Source: SourceSurface, Surface: ev})
	}
}

// Run starts the single-writer event loop. Blocks until the context is
// cancelled or Stop is called.
//
// On a processing failure the error is logged with the event's context
// and the loop continues. Retrying would make replay non-deterministic;
// the journal holds what an operator needs to investigate.
func (c *Coordinator) Run(ctx context.Context) error {
	c.log.Info("session loop starting")

	for {
		event, ok := c.queue.TryDequeue()
		if ok {
			if err := c.processEvent(event); err != nil {
				c.logEventError(event, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			c.log.Info("session loop stopping: context cancelled")
			c.queue.Close()
			return ctx.Err()

		case <-c.queue.Wait():
			// A wakeup does not mean work: Enqueue coalesces tokens and
			// a drained backlog can leave one behind. Only a closed and
			// empty queue ends the loop; anything else re-checks.
			if c.queue.Closed() && c.queue.Len() == 0 {
				c.log.Info("session loop stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue, which makes Run return after the backlog
// drains.
func (c *Coordinator) Stop() {
	c.queue.Close()
}

// Drain processes the queued backlog on the caller's goroutine and
// returns the number of events applied, including events enqueued by
// the processing itself. Tests and the scenario runner use Drain
// instead of Run.
//
// Nested calls return 0 immediately: applying an event must never
// re-enter the loop, that is how feedback cycles start.
func (c *Coordinator) Drain() int {
	if !c.draining.CompareAndSwap(false, true) {
		return 0
	}
	defer c.draining.Store(false)

	n := 0
	for {
		event, ok := c.queue.TryDequeue()
		if !ok {
			return n
		}
		if err := c.processEvent(event); err != nil {
			c.logEventError(event, err)
		}
		n++
	}
}

// QueueLen returns the number of pending events.
func (c *Coordinator) QueueLen() int {
	return c.queue.Len()
}

// Seq returns the last issued sequence number.
func (c *Coordinator) Seq() int64 {
	return c.clock.Current()
}

// Playhead returns the engine's last reported position in microseconds.
func (c *Coordinator) Playhead() int64 {
	return c.playhead.Load()
}

// IsPlaying reports the engine's last reported transport state.
func (c *Coordinator) IsPlaying() bool {
	return c.playing.Load()
}

func (c *Coordinator) processEvent(e Event) error {
	c.record(e)

	switch e.Source {
	case SourceEngine:
		if e.Engine == nil {
			return fmt.Errorf("engine event missing payload")
		}
		return c.applyEngine(e.Engine)

	case SourceSurface:
		if e.Surface == nil {
			return fmt.Errorf("surface event missing payload")
		}
		return c.applySurface(e.Seq, e.Surface)

	default:
		return fmt.Errorf("unknown event source: %d", e.Source)
	}
}

// record appends the event to the journal, if one is attached. Journal
// failures never stop the session; they are logged and the event is
// applied anyway.
func (c *Coordinator) record(e Event) {
	if c.recorder == nil {
		return
	}

	var src any
	switch e.Source {
	case SourceEngine:
		src = e.Engine
	case SourceSurface:
		src = e.Surface
	}

	var payload json.RawMessage
	if src != nil {
		b, err := json.Marshal(src)
		if err != nil {
			c.log.Warn("journal payload marshal failed",
				"seq", e.Seq,
				"event", e.Name(),
				"error", err,
			)
		} else {
			payload = b
		}
	}

	rec := Record{Seq: e.Seq, Source: e.Source.String(), Name: e.Name(), Payload: payload}
	if err := c.recorder.Append(rec); err != nil {
		c.log.Warn("journal append failed",
			"seq", e.Seq,
			"event", e.Name(),
			"error", err,
		)
	}
}

func (c *Coordinator) logEventError(e Event, err error) {
	c.log.Error("event processing failed",
		"error", err,
		"seq", e.Seq,
		"source", e.Source.String(),
		"event", e.Name(),
	)
}
