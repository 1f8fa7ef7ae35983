package coordinator

import (
	"errors"
	"fmt"

	"github.com/halvard/kinocut/internal/media"
	"github.com/halvard/kinocut/internal/timeline"
)

// AddClip routes a new clip through the engine, which owns lane
// assignment: it honors a type-compatible track hint and otherwise
// reuses or creates a lane of the clip's type. The engine's
// notifications mirror the clip (and any fresh lane) into the store.
//
// An empty id is filled in before validation so callers can hand over
// bare clips.
func (c *Coordinator) AddClip(clip timeline.Clip, trackHint string) error {
	if clip.ID == "" {
		clip.ID = c.ids.NewID()
	}
	if err := clip.Validate(); err != nil {
		return err
	}
	return c.engine.AddClip(clip, trackHint)
}

// RemoveClip routes a clip removal through the engine; the removal
// echo prunes the store and the selection. An id the engine does not
// know is a no-op.
func (c *Coordinator) RemoveClip(id string) error {
	err := c.engine.RemoveClip(id)
	if timeline.IsMissingRef(err) {
		c.log.Debug("removal for unknown clip", "clip", id)
		return nil
	}
	return err
}

// UpdateClip merges a partial update into a clip, store first, engine
// after. The merged clip must still satisfy the clip invariants; an
// unknown id is a no-op.
func (c *Coordinator) UpdateClip(id string, p timeline.Patch) error {
	err := c.store.UpdateClip(id, p)
	if timeline.IsMissingRef(err) {
		c.log.Debug("update for unknown clip", "clip", id)
		return nil
	}
	if err != nil {
		return err
	}
	c.forward("clip update", c.engine.UpdateClip(id, p), "clip", id)
	return nil
}

// TrimClip rewrites a media clip's trim window. The trim window is
// authoritative: duration is derived from it through the clip's
// playback rate and the display interval is re-anchored at displayFrom
// with that duration, whatever width the caller had in mind.
func (c *Coordinator) TrimClip(id string, trim timeline.Span, displayFrom int64) error {
	cl, ok := c.store.Snapshot().Clip(id)
	if !ok {
		c.log.Debug("trim for unknown clip", "clip", id)
		return nil
	}
	if !cl.Trimmable() {
		return fmt.Errorf("clip %s: type %s has no trim window", id, cl.Type)
	}

	dur := timeline.DurationForTrim(trim.Len(), cl.Rate())
	return c.UpdateClip(id, timeline.Patch{
		Display:  &timeline.Span{From: displayFrom, To: displayFrom + dur},
		Trim:     &trim,
		Duration: &dur,
	})
}

// MoveClip reassigns a clip to an existing track and realigns the
// engine's track list wholesale.
func (c *Coordinator) MoveClip(id, trackID string) error {
	err := c.store.MoveClip(id, trackID)
	if timeline.IsMissingRef(err) {
		c.log.Debug("move with unknown reference", "clip", id, "track", trackID)
		return nil
	}
	if err != nil {
		return err
	}
	c.pushTracks()
	return nil
}

// MoveClipToNewTrack creates a lane of the clip's type at index and
// moves the clip onto it.
func (c *Coordinator) MoveClipToNewTrack(id string, index int) error {
	return c.moveToNewTrack(id, index, c.ids.NewID())
}

// AddTrack inserts a track at index (-1 appends) and realigns the
// engine. An empty id is filled in.
func (c *Coordinator) AddTrack(t timeline.Track, index int) error {
	if t.ID == "" {
		t.ID = c.ids.NewID()
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if err := c.store.AddTrack(t, index); err != nil {
		return err
	}
	c.pushTracks()
	return nil
}

// RemoveTrack removes a track, cascading its clips out of the store
// and the selection, and realigns the engine. The wholesale push drops
// the cascaded clips engine-side too.
func (c *Coordinator) RemoveTrack(id string) error {
	err := c.store.RemoveTrack(id)
	if timeline.IsMissingRef(err) {
		c.log.Debug("removal for unknown track", "track", id)
		return nil
	}
	if err != nil {
		return err
	}
	c.pushTracks()
	return nil
}

// ReorderTracks replaces the track display order. The order must be a
// permutation of the current track ids.
func (c *Coordinator) ReorderTracks(order []string) error {
	if err := c.store.ReorderTracks(order); err != nil {
		return err
	}
	c.pushTracks()
	return nil
}

// SelectClips replaces the selection on both sides. Unknown ids are
// dropped by the store and the engine independently.
func (c *Coordinator) SelectClips(ids []string) {
	c.store.SetSelection(ids)
	c.forward("selection", c.engine.SelectClips(ids))
}

// SplitClip cuts a clip at absolute time t. The original keeps its id
// and becomes the left part; the right part gets a fresh id and is
// inserted immediately after it on the same track. Returns the right
// part's id.
//
// A cut at or outside the clip's edges is an error; an unknown id is a
// no-op returning "".
func (c *Coordinator) SplitClip(id string, t int64) (string, error) {
	snap := c.store.Snapshot()
	cl, ok := snap.Clip(id)
	if !ok {
		c.log.Debug("split for unknown clip", "clip", id)
		return "", nil
	}
	trackID, _ := snap.TrackOf(id)

	left, right, err := timeline.SplitAt(cl, t)
	if err != nil {
		return "", err
	}
	right.ID = c.ids.NewID()

	if err := c.store.UpdateClip(id, fullPatch(left)); err != nil {
		return "", err
	}
	if err := c.store.InsertClipAfter(right, id); err != nil {
		return "", err
	}

	c.forward("clip update", c.engine.UpdateClip(id, fullPatch(left)), "clip", id)
	c.forward("clip add", c.engine.AddClip(right, trackID), "clip", right.ID)
	return right.ID, nil
}

// DuplicateClip deep-clones a clip under a fresh id onto a newly
// created lane right below its source track. Never the same track:
// the copy keeps the original's display interval and would overlap.
// Returns the new clip's id.
func (c *Coordinator) DuplicateClip(id string) (string, error) {
	snap := c.store.Snapshot()
	cl, ok := snap.Clip(id)
	if !ok {
		c.log.Debug("duplicate for unknown clip", "clip", id)
		return "", nil
	}
	srcTrack, _ := snap.TrackOf(id)

	dup := cl.Clone()
	dup.ID = c.ids.NewID()
	lane := timeline.Track{ID: c.ids.NewID(), Type: timeline.TrackTypeFor(cl.Type)}

	if err := c.store.AddTrack(lane, snap.TrackIndex(srcTrack)+1); err != nil {
		return "", err
	}
	if err := c.store.AddClip(dup, lane.ID); err != nil {
		return "", err
	}

	// The lane must reach the engine before the clip so the placement
	// hint resolves; the push carries no clips the engine hasn't seen.
	c.pushTracks()
	c.forward("clip add", c.engine.AddClip(dup, lane.ID), "clip", dup.ID)
	return dup.ID, nil
}

// SplitSelected asks the engine to split every selected clip at the
// given time, or at the engine's playhead when t is negative. The
// engine's notifications carry the halves back into the store.
func (c *Coordinator) SplitSelected(t int64) error {
	return c.engine.SplitSelected(t)
}

// DuplicateSelected asks the engine to duplicate every selected clip
// onto fresh lanes. Mirrored back through notifications.
func (c *Coordinator) DuplicateSelected() error {
	return c.engine.DuplicateSelected()
}

// Seek moves the engine playhead. The engine clamps to content bounds
// and reports the landed position through a time notification.
func (c *Coordinator) Seek(us int64) error {
	return c.engine.Seek(us)
}

// Play starts engine playback.
func (c *Coordinator) Play() error {
	return c.engine.Play()
}

// Pause halts engine playback.
func (c *Coordinator) Pause() error {
	return c.engine.Pause()
}

// MaxDuration returns the engine's view of the content end.
func (c *Coordinator) MaxDuration() int64 {
	return c.engine.MaxDuration()
}

// LoadState replaces the whole session with an imported snapshot. The
// store is reset first; the engine rebuild that follows is
// fire-and-forget, so a not-yet-ready engine yields a store-only
// session that SyncEngine can realign later.
func (c *Coordinator) LoadState(st *timeline.State) error {
	if st == nil {
		return fmt.Errorf("load: nil state")
	}
	if err := c.store.Reset(st); err != nil {
		return err
	}
	c.SyncEngine()
	return nil
}

// SyncEngine rebuilds the engine's mirror from the store: tracks are
// pushed first so lanes exist under the store's ids, clips are fed
// one by one with their lane as placement hint, then a final wholesale
// push restores exact membership for engines that ignore hints. The
// echo storm this produces dies against the store's idempotent
// commits.
func (c *Coordinator) SyncEngine() {
	snap := c.store.Snapshot()
	tracks := snap.Tracks()

	if err := c.engine.SetTracks(tracks); err != nil {
		if errors.Is(err, media.ErrUnavailable) {
			c.log.Debug("engine unavailable, skipping sync")
		} else {
			c.log.Warn("engine rejected track push", "error", err)
		}
		return
	}
	for _, t := range tracks {
		for _, cl := range snap.ClipsOn(t.ID) {
			c.forward("clip add", c.engine.AddClip(cl, t.ID), "clip", cl.ID)
		}
	}
	c.forward("track push", c.engine.SetTracks(tracks))
	c.forward("selection", c.engine.SelectClips(snap.Selection()))
}
