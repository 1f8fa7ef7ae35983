package media

import (
	"sync"

	"github.com/halvard/kinocut/internal/ident"
	"github.com/halvard/kinocut/internal/timeline"
)

// MemEngine is an in-process engine that mirrors timeline structure and
// echoes every mutation as the event a real compositor would emit. It
// backs tests, replay, and headless TUI sessions.
//
// Writes are expected from a single goroutine; the mutex exists so
// transport readers (CurrentTime, MaxDuration) may poll from another.
type MemEngine struct {
	mu       sync.Mutex
	state    *timeline.State
	playhead int64
	playing  bool
	ids      ident.Generator
	subs     []func(Event)
}

var _ Engine = (*MemEngine)(nil)

// NewMemEngine returns an empty, ready engine. gen mints ids for clips
// and tracks the engine originates (split halves, duplicates, auto
// lanes).
func NewMemEngine(gen ident.Generator) *MemEngine {
	if gen == nil {
		gen = ident.UUID()
	}
	return &MemEngine{state: timeline.NewState(), ids: gen}
}

// Subscribe registers an event callback. Events are delivered
// synchronously in emit order.
func (e *MemEngine) Subscribe(fn func(Event)) {
	e.mu.Lock()
	e.subs = append(e.subs, fn)
	e.mu.Unlock()
}

func (e *MemEngine) emit(events ...Event) {
	e.mu.Lock()
	subs := e.subs
	e.mu.Unlock()
	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// CurrentTime returns the playhead position in microseconds.
func (e *MemEngine) CurrentTime() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playhead
}

// MaxDuration returns the furthest clip end.
func (e *MemEngine) MaxDuration() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.MaxEnd()
}

// Playing reports whether the transport is running.
func (e *MemEngine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Snapshot returns the engine's structural mirror. Test helper.
func (e *MemEngine) Snapshot() *timeline.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// AddClip stores a clip and echoes ClipAdded. The track hint is honored
// when it names a live track of a compatible type; otherwise the engine
// reuses the first lane matching the clip's type, creating one (and
// emitting TrackAdded) when none exists.
func (e *MemEngine) AddClip(c timeline.Clip, trackID string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	want := timeline.TrackTypeFor(c.Type)
	target := ""
	if t, ok := e.state.Track(trackID); ok && t.Type == want {
		target = trackID
	} else {
		for _, t := range e.state.Tracks() {
			if t.Type == want {
				target = t.ID
				break
			}
		}
	}

	var events []Event
	if target == "" {
		nt := timeline.Track{ID: e.ids.NewID(), Type: want}
		next, err := e.state.AddTrack(nt, -1)
		if err != nil {
			e.mu.Unlock()
			return err
		}
		e.state = next
		target = nt.ID
		events = append(events, TrackAdded{Track: nt, Index: -1})
	}

	next, err := e.state.AddClip(c, target)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.state = next
	events = append(events, ClipAdded{Clip: c.Clone(), TrackID: target})
	e.mu.Unlock()

	e.emit(events...)
	return nil
}

// UpdateClip merges a patch and echoes ClipUpdated with the merged clip.
func (e *MemEngine) UpdateClip(id string, p timeline.Patch) error {
	e.mu.Lock()
	next, err := e.state.UpdateClip(id, p)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.state = next
	merged, _ := next.Clip(id)
	e.mu.Unlock()

	e.emit(ClipUpdated{Clip: merged})
	return nil
}

// RemoveClip drops a clip and echoes ClipRemoved.
func (e *MemEngine) RemoveClip(id string) error {
	e.mu.Lock()
	next, err := e.state.RemoveClip(id)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.state = next
	e.mu.Unlock()

	e.emit(ClipRemoved{ID: id})
	return nil
}

// SetTracks replaces the track list wholesale. Clips referenced by the
// new list are kept; clips no longer referenced are dropped; references
// to clips the engine never received are skipped, since the pusher may
// simply be ahead of the clip feed. The call is idempotent and emits
// nothing.
func (e *MemEngine) SetTracks(tracks []timeline.Track) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	keep := make([]timeline.Clip, 0, e.state.NumClips())
	pruned := make([]timeline.Track, 0, len(tracks))
	for _, t := range tracks {
		nt := t.Clone()
		nt.ClipIDs = nt.ClipIDs[:0]
		for _, cid := range t.ClipIDs {
			if c, ok := e.state.Clip(cid); ok {
				keep = append(keep, c)
				nt.ClipIDs = append(nt.ClipIDs, cid)
			}
		}
		pruned = append(pruned, nt)
	}
	next, err := timeline.BuildState(pruned, keep, e.state.Selection())
	if err != nil {
		return err
	}
	e.state = next
	return nil
}

// SelectClips replaces the selection, emitting the transition event a
// real engine would: created, updated, or cleared. A call that leaves
// the selection unchanged emits nothing.
func (e *MemEngine) SelectClips(ids []string) error {
	e.mu.Lock()
	prev := e.state.Selection()
	next := e.state.SetSelection(ids)
	cur := next.Selection()
	if stringsEqual(prev, cur) {
		e.mu.Unlock()
		return nil
	}
	e.state = next
	e.mu.Unlock()

	switch {
	case len(cur) == 0:
		e.emit(SelectionCleared{})
	case len(prev) == 0:
		e.emit(SelectionCreated{IDs: cur})
	default:
		e.emit(SelectionUpdated{IDs: cur})
	}
	return nil
}

// SplitSelected cuts every selected clip containing the given time. A
// negative time means the playhead. Selected clips the time falls outside
// of are skipped.
func (e *MemEngine) SplitSelected(at int64) error {
	e.mu.Lock()
	if at < 0 {
		at = e.playhead
	}

	var events []Event
	for _, id := range e.state.Selection() {
		c, ok := e.state.Clip(id)
		if !ok || at <= c.Display.From || at >= c.Display.To {
			continue
		}
		left, right, err := timeline.SplitAt(c, at)
		if err != nil {
			continue
		}
		right.ID = e.ids.NewID()

		next, err := e.state.UpdateClip(id, timeline.Patch{
			Display:  &left.Display,
			Trim:     left.Trim,
			Duration: &left.Duration,
		})
		if err != nil {
			continue
		}
		next, err = next.InsertClipAfter(right, id)
		if err != nil {
			continue
		}
		e.state = next
		trackID, _ := e.state.TrackOf(id)
		merged, _ := e.state.Clip(id)
		events = append(events,
			ClipUpdated{Clip: merged},
			ClipAdded{Clip: right, TrackID: trackID},
		)
	}
	e.mu.Unlock()

	e.emit(events...)
	return nil
}

// DuplicateSelected deep-copies each selected clip under a fresh id onto
// a fresh track inserted directly below the source track. Duplicates are
// never placed on the source track, so they cannot overlap the original.
func (e *MemEngine) DuplicateSelected() error {
	e.mu.Lock()
	var events []Event
	for _, id := range e.state.Selection() {
		c, ok := e.state.Clip(id)
		if !ok {
			continue
		}
		srcTrack, _ := e.state.TrackOf(id)

		dup := c.Clone()
		dup.ID = e.ids.NewID()
		nt := timeline.Track{ID: e.ids.NewID(), Type: timeline.TrackTypeFor(c.Type)}
		idx := e.state.TrackIndex(srcTrack) + 1

		next, err := e.state.AddTrack(nt, idx)
		if err != nil {
			continue
		}
		next, err = next.AddClip(dup, nt.ID)
		if err != nil {
			continue
		}
		e.state = next
		events = append(events,
			TrackAdded{Track: nt, Index: idx},
			ClipAdded{Clip: dup, TrackID: nt.ID},
		)
	}
	e.mu.Unlock()

	e.emit(events...)
	return nil
}

// Seek clamps the target to [0, MaxDuration], moves the playhead, and
// acknowledges with a TimeChanged event.
func (e *MemEngine) Seek(us int64) error {
	e.mu.Lock()
	if us < 0 {
		us = 0
	}
	if max := e.state.MaxEnd(); us > max {
		us = max
	}
	e.playhead = us
	e.mu.Unlock()

	e.emit(TimeChanged{Us: us})
	return nil
}

// Play starts the transport. Already playing is a no-op.
func (e *MemEngine) Play() error {
	e.mu.Lock()
	if e.playing {
		e.mu.Unlock()
		return nil
	}
	e.playing = true
	e.mu.Unlock()

	e.emit(PlaybackStarted{})
	return nil
}

// Pause stops the transport. Already paused is a no-op.
func (e *MemEngine) Pause() error {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return nil
	}
	e.playing = false
	e.mu.Unlock()

	e.emit(PlaybackPaused{})
	return nil
}

// Tick advances the playhead by delta microseconds while the transport is
// playing, pausing at the end of the last clip. Headless hosts call this
// from their frame loop.
func (e *MemEngine) Tick(delta int64) {
	e.mu.Lock()
	if !e.playing || delta <= 0 {
		e.mu.Unlock()
		return
	}
	max := e.state.MaxEnd()
	e.playhead += delta
	ended := e.playhead >= max
	if ended {
		e.playhead = max
		e.playing = false
	}
	us := e.playhead
	e.mu.Unlock()

	if ended {
		e.emit(TimeChanged{Us: us}, PlaybackPaused{})
		return
	}
	e.emit(TimeChanged{Us: us})
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
