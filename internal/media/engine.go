// Package media defines the boundary to the compositing/playback engine
// and an in-process reference engine used by tests, replay, and the TUI.
//
// The engine is authoritative for playback; the timeline store is
// authoritative for structure. Calls into the engine are fire-and-forget:
// they return an error for immediate rejection but are never retried, and
// the resulting engine echo events are absorbed idempotently upstream.
package media

import (
	"errors"

	"github.com/halvard/kinocut/internal/timeline"
)

// ErrUnavailable is returned when the engine is not ready to accept
// operations. Callers drop the operation and re-issue after a ready
// signal; nothing is queued on their behalf.
var ErrUnavailable = errors.New("media engine unavailable")

// Engine is the surface the timeline core consumes. All times are
// microseconds.
type Engine interface {
	// AddClip hands a clip to the engine. trackID is a hint; empty lets
	// the engine pick a lane for the clip's type.
	AddClip(c timeline.Clip, trackID string) error
	// UpdateClip applies a partial update to an engine-side clip.
	UpdateClip(id string, p timeline.Patch) error
	// RemoveClip drops a clip by id.
	RemoveClip(id string) error
	// SetTracks replaces the engine's track list wholesale. The call is
	// idempotent and emits no change events.
	SetTracks(tracks []timeline.Track) error
	// SelectClips replaces the engine-side selection.
	SelectClips(ids []string) error
	// SplitSelected cuts the selected clips at the given time; a
	// negative time means the current playhead.
	SplitSelected(at int64) error
	// DuplicateSelected deep-copies the selected clips under fresh ids.
	DuplicateSelected() error
	// Seek moves the playhead, clamped to [0, MaxDuration].
	Seek(us int64) error
	// Play and Pause drive the transport.
	Play() error
	Pause() error

	// CurrentTime returns the playhead position.
	CurrentTime() int64
	// MaxDuration returns the furthest clip end the engine knows of.
	MaxDuration() int64

	// Subscribe registers a callback invoked synchronously, in emit
	// order, for every engine event. Subscriptions last for the life of
	// the engine.
	Subscribe(fn func(Event))
}
