package canvas

import (
	"github.com/halvard/kinocut/internal/snap"
	"github.com/halvard/kinocut/internal/timeline"
	"github.com/halvard/kinocut/internal/timeunit"
	"github.com/halvard/kinocut/internal/viewport"
)

// LaneMetrics fixes the vertical geometry of the lane stack.
type LaneMetrics struct {
	LaneHeight  float64 // full lane pitch, including the gutter
	GlyphInsetY float64 // gap above a glyph inside its lane
	GutterPx    float64 // tolerance band around lane boundaries for drops
}

// DefaultLaneMetrics matches a compact timeline row.
func DefaultLaneMetrics() LaneMetrics {
	return LaneMetrics{LaneHeight: 48, GlyphInsetY: 4, GutterPx: 6}
}

// GlyphHeight returns the rendered glyph height inside a lane.
func (m LaneMetrics) GlyphHeight() float64 {
	return m.LaneHeight - 2*m.GlyphInsetY
}

// LaneTop returns the y of the lane at the given index.
func (m LaneMetrics) LaneTop(index int) float64 {
	return float64(index) * m.LaneHeight
}

// StackHeight returns the height of n lanes.
func (m LaneMetrics) StackHeight(n int) float64 {
	return float64(n) * m.LaneHeight
}

// Glyph is the rendered footprint of one clip: a rectangle in content
// space plus everything hit testing and painting need to know about it.
type Glyph struct {
	ClipID    string
	TrackID   string
	LaneIndex int
	Type      timeline.ClipType
	Rect      viewport.Rect
	Selected  bool
	Trimmable bool
}

// Layout computes glyph rectangles for a timeline snapshot at the given
// zoom. Width derives from the clip's displayed duration: a trimmed clip
// at 2x rate shows half its source window's length, and its glyph is
// exactly that wide. Rate never stretches the glyph.
func Layout(s *timeline.State, conv timeunit.Converter, zoom float64, m LaneMetrics) []Glyph {
	glyphs := make([]Glyph, 0, s.NumClips())
	for lane, t := range s.Tracks() {
		top := m.LaneTop(lane) + m.GlyphInsetY
		for _, c := range s.ClipsOn(t.ID) {
			x := conv.MicrosToPixels(c.Display.From, zoom, 1)
			w := conv.MicrosToPixels(c.Duration, zoom, 1)
			glyphs = append(glyphs, Glyph{
				ClipID:    c.ID,
				TrackID:   t.ID,
				LaneIndex: lane,
				Type:      c.Type,
				Rect:      viewport.Rect{X: x, Y: top, W: w, H: m.GlyphHeight()},
				Selected:  s.IsSelected(c.ID),
				Trimmable: c.Trimmable(),
			})
		}
	}
	return glyphs
}

// Rects extracts the rectangles for viewport bounds computation.
func Rects(glyphs []Glyph) []viewport.Rect {
	out := make([]viewport.Rect, len(glyphs))
	for i, g := range glyphs {
		out[i] = g.Rect
	}
	return out
}

// Stops collects the stationary snap stops: both edges of every glyph
// except the one being dragged.
func Stops(glyphs []Glyph, draggedID string) []snap.Stop {
	stops := make([]snap.Stop, 0, 2*len(glyphs))
	for _, g := range glyphs {
		if g.ClipID == draggedID {
			continue
		}
		stops = append(stops,
			snap.Stop{X: g.Rect.X, ClipID: g.ClipID, Edge: snap.EdgeLeft},
			snap.Stop{X: g.Rect.Right(), ClipID: g.ClipID, Edge: snap.EdgeRight},
		)
	}
	return stops
}
