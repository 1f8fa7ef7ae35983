package timeline

import "fmt"

// TrackType identifies the kind of clips a lane groups. Placeholder
// tracks exist only as drop targets and hold no clips of their own kind.
type TrackType string

const (
	TrackVideo       TrackType = "video"
	TrackAudio       TrackType = "audio"
	TrackImage       TrackType = "image"
	TrackText        TrackType = "text"
	TrackCaption     TrackType = "caption"
	TrackEffect      TrackType = "effect"
	TrackTransition  TrackType = "transition"
	TrackPlaceholder TrackType = "placeholder"
)

// ValidTrackTypes enumerates every accepted track type.
var ValidTrackTypes = map[TrackType]bool{
	TrackVideo:       true,
	TrackAudio:       true,
	TrackImage:       true,
	TrackText:        true,
	TrackCaption:     true,
	TrackEffect:      true,
	TrackTransition:  true,
	TrackPlaceholder: true,
}

// TrackTypeFor returns the track type matching a clip type.
func TrackTypeFor(ct ClipType) TrackType {
	switch ct {
	case ClipVideo:
		return TrackVideo
	case ClipAudio:
		return TrackAudio
	case ClipImage:
		return TrackImage
	case ClipText:
		return TrackText
	case ClipCaption:
		return TrackCaption
	case ClipEffect:
		return TrackEffect
	case ClipTransition:
		return TrackTransition
	default:
		return TrackPlaceholder
	}
}

// Track is an ordered lane of clips. ClipIDs is kept in ascending
// display-from order; a clip id appears in at most one track.
type Track struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Type    TrackType `json:"type"`
	ClipIDs []string  `json:"clipIds"`
	Muted   bool      `json:"muted,omitempty"`
}

// Clone returns a copy whose ClipIDs slice is independent of the original.
func (t Track) Clone() Track {
	out := t
	out.ClipIDs = append([]string(nil), t.ClipIDs...)
	return out
}

// Validate checks track-local invariants.
func (t Track) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("track: missing id")
	}
	if !ValidTrackTypes[t.Type] {
		return fmt.Errorf("track %s: unknown type %q", t.ID, t.Type)
	}
	seen := make(map[string]bool, len(t.ClipIDs))
	for _, id := range t.ClipIDs {
		if seen[id] {
			return fmt.Errorf("track %s: clip %s listed twice", t.ID, id)
		}
		seen[id] = true
	}
	return nil
}
