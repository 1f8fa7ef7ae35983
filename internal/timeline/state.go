package timeline

import (
	"fmt"
	"sort"
)

// State is an immutable snapshot of the timeline: tracks in display
// order, clips by id, and the current selection. Update operations are
// pure — they return a new State and never modify the receiver — so a
// snapshot handed to a renderer can never tear while an edit runs.
//
// Values returned by accessors share backing storage with the snapshot
// and must be treated as read-only.
type State struct {
	tracks    map[string]Track
	order     []string
	clips     map[string]Clip
	selection map[string]struct{}
}

// NewState returns an empty timeline.
func NewState() *State {
	return &State{
		tracks:    map[string]Track{},
		order:     []string{},
		clips:     map[string]Clip{},
		selection: map[string]struct{}{},
	}
}

// BuildState assembles a snapshot from flat track and clip lists, as they
// arrive from an import or a wholesale engine push. Track order follows
// the slice; every cross-entity invariant is validated before the state
// is returned.
func BuildState(tracks []Track, clips []Clip, selection []string) (*State, error) {
	s := &State{
		tracks:    make(map[string]Track, len(tracks)),
		order:     make([]string, 0, len(tracks)),
		clips:     make(map[string]Clip, len(clips)),
		selection: make(map[string]struct{}, len(selection)),
	}
	for _, c := range clips {
		if _, ok := s.clips[c.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrClipExists, c.ID)
		}
		s.clips[c.ID] = c.Clone()
	}
	for _, t := range tracks {
		if _, ok := s.tracks[t.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrTrackExists, t.ID)
		}
		nt := t.Clone()
		sortClipIDs(nt.ClipIDs, s.clips)
		s.tracks[t.ID] = nt
		s.order = append(s.order, t.ID)
	}
	for _, id := range selection {
		if _, ok := s.clips[id]; ok {
			s.selection[id] = struct{}{}
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *State) clone() *State {
	next := &State{
		tracks:    make(map[string]Track, len(s.tracks)),
		order:     append([]string(nil), s.order...),
		clips:     make(map[string]Clip, len(s.clips)),
		selection: make(map[string]struct{}, len(s.selection)),
	}
	for id, t := range s.tracks {
		next.tracks[id] = t
	}
	for id, c := range s.clips {
		next.clips[id] = c
	}
	for id := range s.selection {
		next.selection[id] = struct{}{}
	}
	return next
}

// Track returns the track with the given id.
func (s *State) Track(id string) (Track, bool) {
	t, ok := s.tracks[id]
	return t, ok
}

// Tracks returns all tracks in display order.
func (s *State) Tracks() []Track {
	out := make([]Track, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tracks[id])
	}
	return out
}

// TrackIndex returns the display position of a track, or -1.
func (s *State) TrackIndex(id string) int {
	for i, tid := range s.order {
		if tid == id {
			return i
		}
	}
	return -1
}

// TrackOrder returns the track ids in display order.
func (s *State) TrackOrder() []string {
	return append([]string(nil), s.order...)
}

// NumTracks returns the number of tracks.
func (s *State) NumTracks() int { return len(s.order) }

// Clip returns the clip with the given id.
func (s *State) Clip(id string) (Clip, bool) {
	c, ok := s.clips[id]
	return c, ok
}

// NumClips returns the number of clips.
func (s *State) NumClips() int { return len(s.clips) }

// ClipsOn returns the clips of a track in list order.
func (s *State) ClipsOn(trackID string) []Clip {
	t, ok := s.tracks[trackID]
	if !ok {
		return nil
	}
	out := make([]Clip, 0, len(t.ClipIDs))
	for _, id := range t.ClipIDs {
		if c, ok := s.clips[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// TrackOf returns the id of the track whose list contains the clip.
func (s *State) TrackOf(clipID string) (string, bool) {
	for _, tid := range s.order {
		for _, cid := range s.tracks[tid].ClipIDs {
			if cid == clipID {
				return tid, true
			}
		}
	}
	return "", false
}

// Selection returns the selected clip ids, sorted for determinism.
func (s *State) Selection() []string {
	out := make([]string, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsSelected reports whether the clip is part of the selection.
func (s *State) IsSelected(id string) bool {
	_, ok := s.selection[id]
	return ok
}

// MaxEnd returns the largest display end across all clips: the total
// extent of the timeline in microseconds.
func (s *State) MaxEnd() int64 {
	var max int64
	for _, c := range s.clips {
		if c.Display.To > max {
			max = c.Display.To
		}
	}
	return max
}

// AddTrack inserts a track at the given display index; index -1 appends.
// The track's clip list may only reference clips that already exist and
// are not listed by another track.
func (s *State) AddTrack(t Track, index int) (*State, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if _, ok := s.tracks[t.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrTrackExists, t.ID)
	}
	for _, cid := range t.ClipIDs {
		if _, ok := s.clips[cid]; !ok {
			return nil, fmt.Errorf("%w: %s referenced by track %s", ErrClipNotFound, cid, t.ID)
		}
		if owner, ok := s.TrackOf(cid); ok {
			return nil, fmt.Errorf("clip %s already belongs to track %s", cid, owner)
		}
	}

	next := s.clone()
	next.tracks[t.ID] = t.Clone()
	if index < 0 || index > len(next.order) {
		index = len(next.order)
	}
	next.order = append(next.order[:index], append([]string{t.ID}, next.order[index:]...)...)
	return next, nil
}

// RemoveTrack removes a track, cascading removal of its clips and pruning
// them from the selection.
func (s *State) RemoveTrack(id string) (*State, error) {
	t, ok := s.tracks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}

	next := s.clone()
	for _, cid := range t.ClipIDs {
		delete(next.clips, cid)
		delete(next.selection, cid)
	}
	delete(next.tracks, id)
	for i, tid := range next.order {
		if tid == id {
			next.order = append(next.order[:i], next.order[i+1:]...)
			break
		}
	}
	return next, nil
}

// AddClip validates and stores a clip, inserting its id into the target
// track's list at the position that keeps the list in ascending
// display-from order.
func (s *State) AddClip(c Clip, trackID string) (*State, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, ok := s.clips[c.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrClipExists, c.ID)
	}
	t, ok := s.tracks[trackID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, trackID)
	}

	next := s.clone()
	next.clips[c.ID] = c.Clone()
	nt := t.Clone()
	nt.ClipIDs = insertOrdered(nt.ClipIDs, c.ID, c.Display.From, next.clips)
	next.tracks[trackID] = nt
	return next, nil
}

// InsertClipAfter stores a clip directly after an existing sibling in the
// same track, regardless of display order. Split uses this to keep the
// right-hand part adjacent to the original.
func (s *State) InsertClipAfter(c Clip, siblingID string) (*State, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, ok := s.clips[c.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrClipExists, c.ID)
	}
	trackID, ok := s.TrackOf(siblingID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClipNotFound, siblingID)
	}

	next := s.clone()
	next.clips[c.ID] = c.Clone()
	nt := next.tracks[trackID].Clone()
	for i, cid := range nt.ClipIDs {
		if cid == siblingID {
			nt.ClipIDs = append(nt.ClipIDs[:i+1], append([]string{c.ID}, nt.ClipIDs[i+1:]...)...)
			break
		}
	}
	next.tracks[trackID] = nt
	return next, nil
}

// RemoveClip deletes a clip from the clip map, its track's list, and the
// selection.
func (s *State) RemoveClip(id string) (*State, error) {
	if _, ok := s.clips[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrClipNotFound, id)
	}

	next := s.clone()
	delete(next.clips, id)
	delete(next.selection, id)
	if tid, ok := next.TrackOf(id); ok {
		nt := next.tracks[tid].Clone()
		nt.ClipIDs = removeString(nt.ClipIDs, id)
		next.tracks[tid] = nt
	}
	return next, nil
}

// Patch carries a partial clip update. Nil fields are left untouched;
// applying the same patch twice yields the same state.
type Patch struct {
	Display        *Span
	Trim           *Span
	Duration       *int64
	PlaybackRate   *float64
	SourceDuration *int64
	Geometry       *Geometry
	Text           *TextStyle
	Effect         *EffectParams
	Muted          *bool // reserved for future per-clip mute
}

// UpdateClip merges a patch into a clip. The merged clip must still
// satisfy the clip invariants. When the display interval moves, the clip
// is repositioned within its track to keep ascending display order.
func (s *State) UpdateClip(id string, p Patch) (*State, error) {
	c, ok := s.clips[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClipNotFound, id)
	}

	merged := c.Clone()
	if p.Display != nil {
		merged.Display = *p.Display
	}
	if p.Trim != nil {
		t := *p.Trim
		merged.Trim = &t
	}
	if p.Duration != nil {
		merged.Duration = *p.Duration
	}
	if p.PlaybackRate != nil {
		merged.PlaybackRate = *p.PlaybackRate
	}
	if p.SourceDuration != nil {
		merged.SourceDuration = *p.SourceDuration
	}
	if p.Geometry != nil {
		g := *p.Geometry
		merged.Geometry = &g
	}
	if p.Text != nil {
		txt := *p.Text
		merged.Text = &txt
	}
	if p.Effect != nil {
		fx := *p.Effect
		merged.Effect = &fx
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	next := s.clone()
	next.clips[id] = merged
	if p.Display != nil && p.Display.From != c.Display.From {
		if tid, ok := next.TrackOf(id); ok {
			nt := next.tracks[tid].Clone()
			nt.ClipIDs = removeString(nt.ClipIDs, id)
			nt.ClipIDs = insertOrdered(nt.ClipIDs, id, merged.Display.From, next.clips)
			next.tracks[tid] = nt
		}
	}
	return next, nil
}

// MoveClip reassigns a clip to another track, inserting at the position
// that preserves ascending display order among its new siblings.
func (s *State) MoveClip(id, targetTrackID string) (*State, error) {
	c, ok := s.clips[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClipNotFound, id)
	}
	if _, ok := s.tracks[targetTrackID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, targetTrackID)
	}
	fromID, _ := s.TrackOf(id)
	if fromID == targetTrackID {
		return s, nil
	}

	next := s.clone()
	if fromID != "" {
		src := next.tracks[fromID].Clone()
		src.ClipIDs = removeString(src.ClipIDs, id)
		next.tracks[fromID] = src
	}
	dst := next.tracks[targetTrackID].Clone()
	dst.ClipIDs = insertOrdered(dst.ClipIDs, id, c.Display.From, next.clips)
	next.tracks[targetTrackID] = dst
	return next, nil
}

// ReorderTracks replaces the display order. The new order must be a
// permutation of the current track ids.
func (s *State) ReorderTracks(order []string) (*State, error) {
	if len(order) != len(s.order) {
		return nil, fmt.Errorf("reorder: got %d ids, have %d tracks", len(order), len(s.order))
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if _, ok := s.tracks[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("reorder: track %s listed twice", id)
		}
		seen[id] = true
	}

	next := s.clone()
	next.order = append([]string(nil), order...)
	return next, nil
}

// SetSelection replaces the selection. Ids without a live clip are
// dropped silently, so re-applying a stale selection is harmless.
func (s *State) SetSelection(ids []string) *State {
	next := s.clone()
	next.selection = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := next.clips[id]; ok {
			next.selection[id] = struct{}{}
		}
	}
	return next
}

// Validate re-checks the cross-entity invariants over the whole snapshot:
// every listed clip exists, no clip appears in two tracks, every clip
// passes its own validation. Import and replay call this before a state
// is accepted.
func (s *State) Validate() error {
	owned := map[string]string{}
	for _, tid := range s.order {
		t, ok := s.tracks[tid]
		if !ok {
			return fmt.Errorf("order references unknown track %s", tid)
		}
		if err := t.Validate(); err != nil {
			return err
		}
		for _, cid := range t.ClipIDs {
			if _, ok := s.clips[cid]; !ok {
				return fmt.Errorf("track %s lists unknown clip %s", tid, cid)
			}
			if other, dup := owned[cid]; dup {
				return fmt.Errorf("clip %s listed by tracks %s and %s", cid, other, tid)
			}
			owned[cid] = tid
		}
	}
	if len(s.tracks) != len(s.order) {
		return fmt.Errorf("%d tracks but %d order entries", len(s.tracks), len(s.order))
	}
	for id, c := range s.clips {
		if err := c.Validate(); err != nil {
			return err
		}
		if _, ok := owned[id]; !ok {
			return fmt.Errorf("clip %s belongs to no track", id)
		}
	}
	for id := range s.selection {
		if _, ok := s.clips[id]; !ok {
			return fmt.Errorf("selection references unknown clip %s", id)
		}
	}
	return nil
}

func removeString(list []string, v string) []string {
	for i, s := range list {
		if s == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// sortClipIDs restores ascending display order on import. Mutations
// maintain the order incrementally; only BuildState sees lists from
// outside.
func sortClipIDs(ids []string, clips map[string]Clip) {
	sort.SliceStable(ids, func(i, j int) bool {
		return clips[ids[i]].Display.From < clips[ids[j]].Display.From
	})
}

// insertOrdered places id into list keeping ascending display-from order.
// Ties insert after existing entries so repeated operations are stable.
func insertOrdered(list []string, id string, from int64, clips map[string]Clip) []string {
	at := len(list)
	for i, cid := range list {
		if c, ok := clips[cid]; ok && c.Display.From > from {
			at = i
			break
		}
	}
	return append(list[:at], append([]string{id}, list[at:]...)...)
}
