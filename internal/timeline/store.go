package timeline

import "sync"

// ChangeKind classifies what part of the timeline a store change touched,
// so a renderer can decide between relayout and a cheap repaint.
type ChangeKind int

const (
	// ChangeReset means the whole state was replaced (import, replay).
	ChangeReset ChangeKind = iota
	// ChangeTracks means tracks were added, removed, or reordered.
	ChangeTracks
	// ChangeClips means clip content or placement changed.
	ChangeClips
	// ChangeSelection means only the selection set changed.
	ChangeSelection
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeReset:
		return "reset"
	case ChangeTracks:
		return "tracks"
	case ChangeClips:
		return "clips"
	case ChangeSelection:
		return "selection"
	default:
		return "unknown"
	}
}

// Change describes one committed store mutation.
type Change struct {
	Rev  int64
	Kind ChangeKind
	// IDs lists the directly affected clip or track ids. A reset carries
	// none.
	IDs []string
}

// Store owns the live timeline state for one session. Writes swap in a
// new immutable State under a mutex and bump a monotonic revision;
// readers take snapshots that stay valid forever. All writes are expected
// to come from the session's own goroutine — the lock exists so renderers
// on other goroutines can snapshot safely, not to serialize writers.
type Store struct {
	mu    sync.RWMutex
	state *State
	rev   int64
	subs  []func(Change)
}

// NewStore returns a store holding an empty timeline.
func NewStore() *Store {
	return &Store{state: NewState()}
}

// Snapshot returns the current state. The snapshot is immutable and may
// be read from any goroutine.
func (st *Store) Snapshot() *State {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.state
}

// Rev returns the current revision. Revisions increase by one per
// committed change and start at zero for the empty timeline.
func (st *Store) Rev() int64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.rev
}

// Subscribe registers a callback invoked after every committed change, in
// commit order, on the goroutine that performed the write. Subscriptions
// last for the life of the store.
func (st *Store) Subscribe(fn func(Change)) {
	st.mu.Lock()
	st.subs = append(st.subs, fn)
	st.mu.Unlock()
}

// commit swaps in next and notifies subscribers. A nil error with an
// unchanged pointer is a no-op: nothing is bumped or published.
func (st *Store) commit(next *State, kind ChangeKind, ids ...string) {
	st.mu.Lock()
	if next == st.state {
		st.mu.Unlock()
		return
	}
	st.state = next
	st.rev++
	ch := Change{Rev: st.rev, Kind: kind, IDs: ids}
	subs := st.subs
	st.mu.Unlock()

	for _, fn := range subs {
		fn(ch)
	}
}

// Reset replaces the entire state, as after an import or replay. The new
// state must pass Validate before it is accepted.
func (st *Store) Reset(next *State) error {
	if err := next.Validate(); err != nil {
		return err
	}
	st.commit(next, ChangeReset)
	return nil
}

// AddTrack inserts a track at the given display index; -1 appends.
func (st *Store) AddTrack(t Track, index int) error {
	next, err := st.Snapshot().AddTrack(t, index)
	if err != nil {
		return err
	}
	st.commit(next, ChangeTracks, t.ID)
	return nil
}

// RemoveTrack removes a track and its clips.
func (st *Store) RemoveTrack(id string) error {
	next, err := st.Snapshot().RemoveTrack(id)
	if err != nil {
		return err
	}
	st.commit(next, ChangeTracks, id)
	return nil
}

// AddClip stores a clip on a track in display order.
func (st *Store) AddClip(c Clip, trackID string) error {
	next, err := st.Snapshot().AddClip(c, trackID)
	if err != nil {
		return err
	}
	st.commit(next, ChangeClips, c.ID)
	return nil
}

// InsertClipAfter stores a clip directly after a sibling on the same
// track.
func (st *Store) InsertClipAfter(c Clip, siblingID string) error {
	next, err := st.Snapshot().InsertClipAfter(c, siblingID)
	if err != nil {
		return err
	}
	st.commit(next, ChangeClips, c.ID)
	return nil
}

// RemoveClip deletes a clip.
func (st *Store) RemoveClip(id string) error {
	next, err := st.Snapshot().RemoveClip(id)
	if err != nil {
		return err
	}
	st.commit(next, ChangeClips, id)
	return nil
}

// UpdateClip merges a patch into a clip. Applying a patch that changes
// nothing leaves the revision untouched.
func (st *Store) UpdateClip(id string, p Patch) error {
	cur := st.Snapshot()
	next, err := cur.UpdateClip(id, p)
	if err != nil {
		return err
	}
	if prev, ok := cur.Clip(id); ok {
		if merged, ok := next.Clip(id); ok && clipEqual(prev, merged) {
			return nil
		}
	}
	st.commit(next, ChangeClips, id)
	return nil
}

// MoveClip reassigns a clip to another track.
func (st *Store) MoveClip(id, targetTrackID string) error {
	next, err := st.Snapshot().MoveClip(id, targetTrackID)
	if err != nil {
		return err
	}
	st.commit(next, ChangeClips, id)
	return nil
}

// ReorderTracks replaces the display order with a permutation of the
// current track ids.
func (st *Store) ReorderTracks(order []string) error {
	next, err := st.Snapshot().ReorderTracks(order)
	if err != nil {
		return err
	}
	st.commit(next, ChangeTracks, order...)
	return nil
}

// SetSelection replaces the selection; unknown ids are dropped. Setting
// the selection it already holds leaves the revision untouched.
func (st *Store) SetSelection(ids []string) {
	cur := st.Snapshot()
	next := cur.SetSelection(ids)
	if selectionEqual(cur.selection, next.selection) {
		return
	}
	st.commit(next, ChangeSelection, next.Selection()...)
}

func selectionEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
