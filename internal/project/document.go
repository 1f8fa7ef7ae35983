// Package project is the serialization boundary: the JSON document
// format sessions are imported from and exported to, schema validation
// for untrusted input, and content hashing for change detection.
//
// All times inside a document are integer microseconds, the same unit
// the store and engine use. Callers working in seconds convert at
// their own edge.
package project

import (
	"fmt"
	"sort"

	"github.com/halvard/kinocut/internal/timeline"
)

// Settings carries the composition parameters that ride along with the
// timeline content.
type Settings struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	FPS     float64 `json:"fps"`
	BGColor string  `json:"bgColor"`
}

// DefaultSettings is used when exporting a session that never loaded a
// document.
var DefaultSettings = Settings{Width: 1920, Height: 1080, FPS: 30, BGColor: "#000000"}

// Document is the on-disk project format.
type Document struct {
	Clips    []timeline.Clip  `json:"clips"`
	Tracks   []timeline.Track `json:"tracks"`
	Settings Settings         `json:"settings"`
}

// State assembles the document's timeline into a validated snapshot.
// Nothing is mutated on failure; the caller loads the returned state
// into a session only after this succeeds.
func (d *Document) State() (*timeline.State, error) {
	st, err := timeline.BuildState(d.Tracks, d.Clips, nil)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	return st, nil
}

// FromState flattens a snapshot back into document form. Tracks keep
// their display order and clips are listed track by track in display
// order, so the same state always flattens to the same document.
// Clip lists are never null, an empty timeline still encodes as [].
func FromState(st *timeline.State, s Settings) *Document {
	doc := &Document{
		Clips:    make([]timeline.Clip, 0, st.NumClips()),
		Tracks:   st.Tracks(),
		Settings: s,
	}
	for i, t := range doc.Tracks {
		if doc.Tracks[i].ClipIDs == nil {
			doc.Tracks[i].ClipIDs = []string{}
		}
		doc.Clips = append(doc.Clips, st.ClipsOn(t.ID)...)
	}
	return doc
}

// CloneClip duplicates a clip through its serialized form, per the
// duplication contract: a deep copy of the JSON entry under a fresh id.
func CloneClip(c timeline.Clip, newID string) (timeline.Clip, error) {
	data, err := marshalDeterministic(c)
	if err != nil {
		return timeline.Clip{}, fmt.Errorf("project: clone clip %s: %w", c.ID, err)
	}
	var out timeline.Clip
	if err := unmarshalStrict(data, &out); err != nil {
		return timeline.Clip{}, fmt.Errorf("project: clone clip %s: %w", c.ID, err)
	}
	out.ID = newID
	return out, nil
}

// SortClipsByStart orders clip entries by display start, then id, for
// stable diffs of hand-edited documents.
func SortClipsByStart(clips []timeline.Clip) {
	sort.SliceStable(clips, func(i, j int) bool {
		if clips[i].Display.From != clips[j].Display.From {
			return clips[i].Display.From < clips[j].Display.From
		}
		return clips[i].ID < clips[j].ID
	})
}
