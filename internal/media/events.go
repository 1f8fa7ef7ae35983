package media

import (
	"encoding/json"
	"fmt"

	"github.com/halvard/kinocut/internal/timeline"
)

// Event is the closed set of notifications an engine emits. The marker
// method keeps the union sealed: consumers switch over the concrete
// types and the compiler knows every case lives in this package.
type Event interface {
	engineEvent()
}

// ClipAdded reports a clip the engine now plays. Echoes of an AddClip
// call and clips originated by other engine subsystems look identical.
type ClipAdded struct {
	Clip    timeline.Clip `json:"clip"`
	TrackID string        `json:"trackId"`
}

// ClipUpdated reports new values for an existing clip.
type ClipUpdated struct {
	Clip timeline.Clip `json:"clip"`
}

// ClipRemoved reports a clip the engine no longer plays.
type ClipRemoved struct {
	ID string `json:"id"`
}

// TrackAdded reports a new lane. Index is the display position, -1 when
// appended.
type TrackAdded struct {
	Track timeline.Track `json:"track"`
	Index int            `json:"index"`
}

// TrackRemoved reports a removed lane.
type TrackRemoved struct {
	ID string `json:"id"`
}

// SelectionCreated reports a selection where none existed.
type SelectionCreated struct {
	IDs []string `json:"ids"`
}

// SelectionUpdated reports a changed selection.
type SelectionUpdated struct {
	IDs []string `json:"ids"`
}

// SelectionCleared reports an emptied selection.
type SelectionCleared struct{}

// TimeChanged reports the playhead position in microseconds.
type TimeChanged struct {
	Us int64 `json:"us"`
}

// PlaybackStarted reports the transport entering play.
type PlaybackStarted struct{}

// PlaybackPaused reports the transport pausing.
type PlaybackPaused struct{}

func (ClipAdded) engineEvent()        {}
func (ClipUpdated) engineEvent()      {}
func (ClipRemoved) engineEvent()      {}
func (TrackAdded) engineEvent()       {}
func (TrackRemoved) engineEvent()     {}
func (SelectionCreated) engineEvent() {}
func (SelectionUpdated) engineEvent() {}
func (SelectionCleared) engineEvent() {}
func (TimeChanged) engineEvent()      {}
func (PlaybackStarted) engineEvent()  {}
func (PlaybackPaused) engineEvent()   {}

// EventName returns a stable name for logging and traces.
func EventName(ev Event) string {
	switch ev.(type) {
	case ClipAdded:
		return "clip:added"
	case ClipUpdated:
		return "clip:updated"
	case ClipRemoved:
		return "clip:removed"
	case TrackAdded:
		return "track:added"
	case TrackRemoved:
		return "track:removed"
	case SelectionCreated:
		return "selection:created"
	case SelectionUpdated:
		return "selection:updated"
	case SelectionCleared:
		return "selection:cleared"
	case TimeChanged:
		return "currentTime"
	case PlaybackStarted:
		return "play"
	case PlaybackPaused:
		return "pause"
	default:
		return "unknown"
	}
}

// DecodeEvent rebuilds the typed event a journal record was written
// from. It inverts EventName plus JSON marshaling.
func DecodeEvent(name string, payload []byte) (Event, error) {
	switch name {
	case "clip:added":
		return decodeAs[ClipAdded](payload)
	case "clip:updated":
		return decodeAs[ClipUpdated](payload)
	case "clip:removed":
		return decodeAs[ClipRemoved](payload)
	case "track:added":
		return decodeAs[TrackAdded](payload)
	case "track:removed":
		return decodeAs[TrackRemoved](payload)
	case "selection:created":
		return decodeAs[SelectionCreated](payload)
	case "selection:updated":
		return decodeAs[SelectionUpdated](payload)
	case "selection:cleared":
		return SelectionCleared{}, nil
	case "currentTime":
		return decodeAs[TimeChanged](payload)
	case "play":
		return PlaybackStarted{}, nil
	case "pause":
		return PlaybackPaused{}, nil
	default:
		return nil, fmt.Errorf("media: unknown event %q", name)
	}
}

func decodeAs[T Event](payload []byte) (Event, error) {
	var ev T
	if len(payload) == 0 {
		return ev, nil
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("media: decode %T: %w", ev, err)
	}
	return ev, nil
}
