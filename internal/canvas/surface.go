// Package canvas is the interaction surface of the timeline: it lays
// clips out as glyphs, runs the pointer gesture state machine over them,
// and emits committed edits as events. It never talks to the engine and
// never writes the store; the coordinator does both.
package canvas

import (
	"log/slog"

	"github.com/halvard/kinocut/internal/snap"
	"github.com/halvard/kinocut/internal/timeline"
	"github.com/halvard/kinocut/internal/timeunit"
)

// Surface owns glyph layout and pointer handling for one timeline view.
// Pointer coordinates are content-space pixels; the host translates
// viewport scrolling before calling in.
//
// Not safe for concurrent use.
type Surface struct {
	conv     timeunit.Converter
	metrics  LaneMetrics
	machine  *Machine
	zoom     float64
	log      *slog.Logger
	sink     func(Event)

	state  *timeline.State
	glyphs []Glyph
	lanes  []string // lane index → track id

	// gesture bookkeeping
	originClip  timeline.Clip
	originTrack string
	preview     *Intent
}

// NewSurface returns a surface over an empty timeline at zoom 1. Events
// committed by gestures go to sink.
func NewSurface(conv timeunit.Converter, metrics LaneMetrics, resolver snap.Resolver, guide *snap.GuideThrottle, log *slog.Logger, sink func(Event)) *Surface {
	if log == nil {
		log = slog.Default()
	}
	if sink == nil {
		sink = func(Event) {}
	}
	return &Surface{
		conv:    conv,
		metrics: metrics,
		machine: NewMachine(conv, resolver, guide, 0),
		zoom:    1,
		log:     log,
		sink:    sink,
		state:   timeline.NewState(),
	}
}

// SetSnapshot relayouts the surface for a new store snapshot. The zoom
// from the previous snapshot is kept.
func (sf *Surface) SetSnapshot(s *timeline.State) {
	sf.state = s
	sf.relayout()
}

// SetZoom relayouts at a new zoom factor. Zoom must be positive;
// anything else is ignored.
func (sf *Surface) SetZoom(zoom float64) {
	if zoom <= 0 {
		return
	}
	sf.zoom = zoom
	sf.relayout()
}

// Zoom returns the current zoom factor.
func (sf *Surface) Zoom() float64 { return sf.zoom }

func (sf *Surface) relayout() {
	sf.glyphs = Layout(sf.state, sf.conv, sf.zoom, sf.metrics)
	tracks := sf.state.Tracks()
	sf.lanes = make([]string, len(tracks))
	for i, t := range tracks {
		sf.lanes[i] = t.ID
	}
}

// Glyphs returns the current layout, in paint order.
func (sf *Surface) Glyphs() []Glyph { return sf.glyphs }

// LaneCount returns the number of lanes laid out.
func (sf *Surface) LaneCount() int { return len(sf.lanes) }

// Metrics returns the lane geometry in effect.
func (sf *Surface) Metrics() LaneMetrics { return sf.metrics }

// GestureState returns the machine's state.
func (sf *Surface) GestureState() GestureState { return sf.machine.State() }

// Preview returns the live gesture proposal, if a gesture is running.
// Renderers draw the gestured glyph from this instead of the layout.
func (sf *Surface) Preview() (Intent, bool) {
	if sf.preview == nil {
		return Intent{}, false
	}
	return *sf.preview, true
}

// GuideLine returns the snap guide to draw, if any.
func (sf *Surface) GuideLine() (float64, bool) {
	return sf.machine.GuideLine()
}

// PointerDown selects and, when the hit allows it, starts a gesture.
// Empty-space clicks clear the selection unless shift is held.
func (sf *Surface) PointerDown(x, y float64, shift bool) {
	hit := HitTest(sf.glyphs, x, y)
	if hit.Zone == ZoneNone {
		if !shift && len(sf.state.Selection()) > 0 {
			sf.sink(SelectionChanged{IDs: nil})
		}
		return
	}

	sf.updateSelection(hit.ClipID, shift)

	clip, ok := sf.state.Clip(hit.ClipID)
	if !ok {
		return
	}
	g := sf.glyphs[hit.GlyphIndex]
	if sf.machine.Begin(g, clip, hit.Zone, x, y, sf.zoom, Stops(sf.glyphs, hit.ClipID)) {
		sf.originClip = clip
		sf.originTrack = g.TrackID
		in := sf.machine.Move(x, y)
		sf.preview = &in
	}
}

func (sf *Surface) updateSelection(id string, shift bool) {
	cur := sf.state.Selection()
	if shift {
		var next []string
		removed := false
		for _, s := range cur {
			if s == id {
				removed = true
				continue
			}
			next = append(next, s)
		}
		if !removed {
			next = append(next, id)
		}
		sf.sink(SelectionChanged{IDs: next})
		return
	}
	if len(cur) == 1 && cur[0] == id {
		return
	}
	sf.sink(SelectionChanged{IDs: []string{id}})
}

// PointerMove advances a running gesture and returns its proposal.
func (sf *Surface) PointerMove(x, y float64) (Intent, bool) {
	if sf.machine.State() == Idle {
		return Intent{}, false
	}
	in := sf.machine.Move(x, y)
	sf.preview = &in
	return in, true
}

// PointerUp commits a running gesture. Geometry changes emit
// ClipModified; drags additionally classify the drop and emit the track
// move. A gesture that moved nothing emits nothing.
func (sf *Surface) PointerUp(x, y float64) {
	gesture := sf.machine.State()
	in, ok := sf.machine.End(x, y)
	sf.preview = nil
	if !ok {
		return
	}

	if sf.geometryChanged(in) {
		sf.sink(ClipModified{
			ID:          in.ClipID,
			DisplayFrom: in.DisplayFrom,
			Duration:    in.Duration,
			Trim:        in.Trim,
		})
	}

	if gesture != Dragging {
		return
	}
	drop := ClassifyDrop(in.Y, len(sf.lanes), sf.metrics)
	switch drop.Kind {
	case DropLane:
		if target := sf.lanes[drop.Index]; target != sf.originTrack {
			sf.sink(ClipMovedToTrack{ID: in.ClipID, TrackID: target})
		}
	case DropGutter:
		sf.log.Debug("drop on gutter", "clip", in.ClipID, "index", drop.Index)
		sf.sink(ClipMovedToNewTrack{ID: in.ClipID, TargetIndex: drop.Index})
	}
}

// CancelGesture abandons a running gesture without emitting anything.
func (sf *Surface) CancelGesture() {
	sf.machine.Cancel()
	sf.preview = nil
}

// DeleteSelection emits removal of the selected clips.
func (sf *Surface) DeleteSelection() {
	ids := sf.state.Selection()
	if len(ids) == 0 {
		return
	}
	sf.sink(ClipsRemoved{IDs: ids})
}

func (sf *Surface) geometryChanged(in Intent) bool {
	c := sf.originClip
	if in.DisplayFrom != c.Display.From || in.Duration != c.Duration {
		return true
	}
	if (in.Trim == nil) != (c.Trim == nil) {
		return in.Trim != nil
	}
	return in.Trim != nil && *in.Trim != *c.Trim
}
