package coordinator

import (
	"errors"
	"strconv"

	"github.com/halvard/kinocut/internal/canvas"
	"github.com/halvard/kinocut/internal/ident"
	"github.com/halvard/kinocut/internal/media"
	"github.com/halvard/kinocut/internal/timeline"
)

// laneDomain salts ids for tracks created by gutter drops. The id is
// derived from the triggering event, not minted, so folding a journal
// recreates the lane under its original id.
const laneDomain = "kinocut/lane/v1"

// applyEngine folds one engine notification into the store and stops.
// This path never calls the engine: the notification is either an echo
// of our own write, absorbed by the store's value-idempotent commits,
// or an engine-originated fact the store simply has to mirror.
func (c *Coordinator) applyEngine(ev media.Event) error {
	switch ev := ev.(type) {
	case media.TrackAdded:
		err := c.store.AddTrack(ev.Track, ev.Index)
		if errors.Is(err, timeline.ErrTrackExists) {
			return nil
		}
		return err

	case media.TrackRemoved:
		err := c.store.RemoveTrack(ev.ID)
		if timeline.IsMissingRef(err) {
			c.log.Debug("track removal for unknown track", "track", ev.ID)
			return nil
		}
		return err

	case media.ClipAdded:
		err := c.store.AddClip(ev.Clip, ev.TrackID)
		switch {
		case errors.Is(err, timeline.ErrClipExists):
			return nil
		case timeline.IsMissingRef(err):
			c.log.Debug("clip added on unknown track", "clip", ev.Clip.ID, "track", ev.TrackID)
			return nil
		}
		return err

	case media.ClipUpdated:
		err := c.store.UpdateClip(ev.Clip.ID, fullPatch(ev.Clip))
		if timeline.IsMissingRef(err) {
			c.log.Debug("update for unknown clip", "clip", ev.Clip.ID)
			return nil
		}
		return err

	case media.ClipRemoved:
		err := c.store.RemoveClip(ev.ID)
		if timeline.IsMissingRef(err) {
			c.log.Debug("removal for unknown clip", "clip", ev.ID)
			return nil
		}
		return err

	case media.SelectionCreated:
		c.store.SetSelection(ev.IDs)
		return nil

	case media.SelectionUpdated:
		c.store.SetSelection(ev.IDs)
		return nil

	case media.SelectionCleared:
		c.store.SetSelection(nil)
		return nil

	case media.TimeChanged:
		c.playhead.Store(ev.Us)
		return nil

	case media.PlaybackStarted:
		c.playing.Store(true)
		return nil

	case media.PlaybackPaused:
		c.playing.Store(false)
		return nil

	default:
		c.log.Debug("ignoring engine event", "event", media.EventName(ev))
		return nil
	}
}

// applySurface commits one surface interaction: the store is updated
// first so the next render sees it, then the change is forwarded to the
// engine. Forward failures are logged, never retried; the engine's echo
// of a successful forward comes back through applyEngine and is
// absorbed there. seq is the event's sequence number, used only to
// derive ids for entities the apply itself creates.
func (c *Coordinator) applySurface(seq int64, ev canvas.Event) error {
	switch ev := ev.(type) {
	case canvas.ClipModified:
		p := timeline.Patch{
			Display:  &timeline.Span{From: ev.DisplayFrom, To: ev.DisplayFrom + ev.Duration},
			Duration: &ev.Duration,
			Trim:     ev.Trim,
		}
		err := c.store.UpdateClip(ev.ID, p)
		if timeline.IsMissingRef(err) {
			c.log.Debug("modify for unknown clip", "clip", ev.ID)
			return nil
		}
		if err != nil {
			return err
		}
		c.forward("clip update", c.engine.UpdateClip(ev.ID, p), "clip", ev.ID)
		return nil

	case canvas.ClipMovedToTrack:
		err := c.store.MoveClip(ev.ID, ev.TrackID)
		if timeline.IsMissingRef(err) {
			c.log.Debug("move with unknown reference", "clip", ev.ID, "track", ev.TrackID)
			return nil
		}
		if err != nil {
			return err
		}
		c.pushTracks()
		return nil

	case canvas.ClipMovedToNewTrack:
		lane := ident.Derive(laneDomain, ev.ID, strconv.FormatInt(seq, 10))
		return c.moveToNewTrack(ev.ID, ev.TargetIndex, lane)

	case canvas.SelectionChanged:
		c.store.SetSelection(ev.IDs)
		c.forward("selection", c.engine.SelectClips(ev.IDs))
		return nil

	case canvas.ClipsRemoved:
		for _, id := range ev.IDs {
			err := c.store.RemoveClip(id)
			if timeline.IsMissingRef(err) {
				c.log.Debug("removal for unknown clip", "clip", id)
				continue
			}
			if err != nil {
				return err
			}
			c.forward("clip removal", c.engine.RemoveClip(id), "clip", id)
		}
		return nil

	default:
		c.log.Debug("ignoring surface event", "event", canvas.EventName(ev))
		return nil
	}
}

// moveToNewTrack creates a lane of the clip's type at index and moves
// the clip onto it, then realigns the engine wholesale.
func (c *Coordinator) moveToNewTrack(clipID string, index int, laneID string) error {
	snap := c.store.Snapshot()
	cl, ok := snap.Clip(clipID)
	if !ok {
		c.log.Debug("gutter drop for unknown clip", "clip", clipID)
		return nil
	}
	if index < 0 {
		index = 0
	}
	if n := snap.NumTracks(); index > n {
		index = n
	}

	t := timeline.Track{ID: laneID, Type: timeline.TrackTypeFor(cl.Type)}
	if err := c.store.AddTrack(t, index); err != nil {
		return err
	}
	if err := c.store.MoveClip(clipID, t.ID); err != nil {
		return err
	}
	c.pushTracks()
	return nil
}

// pushTracks replaces the engine's track list wholesale with the
// store's. The call is idempotent on the engine side and emits no
// change events, so structural edits cannot start feedback loops.
func (c *Coordinator) pushTracks() {
	c.forward("track push", c.engine.SetTracks(c.store.Snapshot().Tracks()))
}

// forward applies the fire-and-forget discipline to an engine call
// made after a store commit: an unavailable engine drops the call
// outright (the next wholesale push realigns it), anything else is
// logged once. Never retried either way.
func (c *Coordinator) forward(op string, err error, attrs ...any) {
	if err == nil {
		return
	}
	if errors.Is(err, media.ErrUnavailable) {
		c.log.Debug("engine unavailable, dropping "+op, attrs...)
		return
	}
	c.log.Warn("engine rejected "+op, append(attrs, "error", err)...)
}

// fullPatch spreads every field of an echoed clip into a patch, so an
// engine-shaped clip can be folded through the store's merge path.
func fullPatch(cl timeline.Clip) timeline.Patch {
	cl = cl.Clone()
	return timeline.Patch{
		Display:        &cl.Display,
		Trim:           cl.Trim,
		Duration:       &cl.Duration,
		PlaybackRate:   &cl.PlaybackRate,
		SourceDuration: &cl.SourceDuration,
		Geometry:       cl.Geometry,
		Text:           cl.Text,
		Effect:         cl.Effect,
	}
}
