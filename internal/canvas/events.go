package canvas

import (
	"encoding/json"
	"fmt"

	"github.com/halvard/kinocut/internal/timeline"
)

// Event is the closed set of notifications the interaction surface emits
// toward the coordinator. The marker method seals the union.
type Event interface {
	surfaceEvent()
}

// ClipModified commits the geometry a gesture settled on: a new display
// start, a new duration, and for trim resizes the new trim window.
type ClipModified struct {
	ID          string         `json:"id"`
	DisplayFrom int64          `json:"displayFrom"`
	Duration    int64          `json:"duration"`
	Trim        *timeline.Span `json:"trim,omitempty"`
}

// ClipMovedToTrack commits a drop onto an existing lane.
type ClipMovedToTrack struct {
	ID      string `json:"id"`
	TrackID string `json:"trackId"`
}

// ClipMovedToNewTrack commits a drop onto a lane gutter: the clip wants a
// fresh track created at TargetIndex.
type ClipMovedToNewTrack struct {
	ID          string `json:"id"`
	TargetIndex int    `json:"targetIndex"`
}

// SelectionChanged reports the clips now selected on the surface.
type SelectionChanged struct {
	IDs []string `json:"ids"`
}

// ClipsRemoved reports clips deleted on the surface.
type ClipsRemoved struct {
	IDs []string `json:"ids"`
}

func (ClipModified) surfaceEvent()        {}
func (ClipMovedToTrack) surfaceEvent()    {}
func (ClipMovedToNewTrack) surfaceEvent() {}
func (SelectionChanged) surfaceEvent()    {}
func (ClipsRemoved) surfaceEvent()        {}

// EventName returns a stable name for logging and traces.
func EventName(ev Event) string {
	switch ev.(type) {
	case ClipModified:
		return "clip-modified"
	case ClipMovedToTrack:
		return "clip-moved-to-track"
	case ClipMovedToNewTrack:
		return "clip-moved-to-new-track"
	case SelectionChanged:
		return "selection-changed"
	case ClipsRemoved:
		return "clips-removed"
	default:
		return "unknown"
	}
}

// DecodeEvent rebuilds the typed event a journal record was written
// from. It inverts EventName plus JSON marshaling.
func DecodeEvent(name string, payload []byte) (Event, error) {
	switch name {
	case "clip-modified":
		return decodeAs[ClipModified](payload)
	case "clip-moved-to-track":
		return decodeAs[ClipMovedToTrack](payload)
	case "clip-moved-to-new-track":
		return decodeAs[ClipMovedToNewTrack](payload)
	case "selection-changed":
		return decodeAs[SelectionChanged](payload)
	case "clips-removed":
		return decodeAs[ClipsRemoved](payload)
	default:
		return nil, fmt.Errorf("canvas: unknown event %q", name)
	}
}

func decodeAs[T Event](payload []byte) (Event, error) {
	var ev T
	if len(payload) == 0 {
		return ev, nil
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("canvas: decode %T: %w", ev, err)
	}
	return ev, nil
}
