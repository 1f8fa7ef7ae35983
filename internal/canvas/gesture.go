package canvas

import (
	"math"

	"github.com/halvard/kinocut/internal/snap"
	"github.com/halvard/kinocut/internal/timeline"
	"github.com/halvard/kinocut/internal/timeunit"
	"github.com/halvard/kinocut/internal/viewport"
)

// MinGlyphWidthPx is the narrowest a resize may make a glyph.
const MinGlyphWidthPx = 16.0

// DragThresholdPx is the horizontal travel that engages a gesture. Below
// it the pointer is treated as a click and the clip keeps its geometry,
// so selecting a clip can never nudge it onto a nearby snap stop.
const DragThresholdPx = 3.0

// GestureState is the per-glyph interaction state. Pointer-down on a
// body enters Dragging; pointer-down on an edge handle enters the
// matching resize state; pointer-up always returns to Idle.
type GestureState int

const (
	Idle GestureState = iota
	Dragging
	ResizingLeft
	ResizingRight
)

func (s GestureState) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case ResizingLeft:
		return "resizing-left"
	case ResizingRight:
		return "resizing-right"
	default:
		return "idle"
	}
}

// Intent is one immutable gesture proposal: the geometry the clip would
// take if the pointer released now. Every pointer move produces a fresh
// value; nothing downstream can mutate a frame another component holds.
type Intent struct {
	ClipID  string
	Gesture GestureState

	DisplayFrom int64
	Duration    int64
	// Trim is set only by trim resizes.
	Trim *timeline.Span

	// Snapped reports that a stop captured the glyph this frame; GuideX
	// is where the guide line belongs.
	Snapped bool
	GuideX  float64

	// Y is the pointer's vertical position, used to classify drops.
	Y float64
}

// Machine runs the gesture state machine for one interaction surface.
// All motion math lives here: pixel deltas become time deltas through
// the clip's own playback rate, snapping corrects in pixel space first,
// and bounds clamp in time space afterwards — left/zero bounds before
// right/source bounds, so when both bind the source bound has the final
// word.
//
// Not safe for concurrent use; pointer traffic arrives on one goroutine.
type Machine struct {
	conv     timeunit.Converter
	resolver snap.Resolver
	guide    *snap.GuideThrottle
	minWidth float64

	state   GestureState
	clip    timeline.Clip
	rect    viewport.Rect
	zoom    float64
	startX  float64
	engaged bool
	stops   []snap.Stop
	last    Intent
}

// NewMachine returns an idle machine. A nil guide throttle gets the
// default redraw interval; non-positive minWidth gets MinGlyphWidthPx.
func NewMachine(conv timeunit.Converter, resolver snap.Resolver, guide *snap.GuideThrottle, minWidth float64) *Machine {
	if guide == nil {
		guide = snap.NewGuideThrottle(0, nil)
	}
	if minWidth <= 0 {
		minWidth = MinGlyphWidthPx
	}
	return &Machine{conv: conv, resolver: resolver, guide: guide, minWidth: minWidth}
}

// State returns the current gesture state.
func (m *Machine) State() GestureState { return m.state }

// ClipID returns the clip under gesture, empty when idle.
func (m *Machine) ClipID() string {
	if m.state == Idle {
		return ""
	}
	return m.clip.ID
}

// GuideLine returns the throttled guide position while one is on screen.
func (m *Machine) GuideLine() (float64, bool) {
	if m.state == Idle || !m.guide.Active() {
		return 0, false
	}
	return m.guide.X(), true
}

// Begin starts a gesture from a pointer-down hit. It is refused while
// another gesture runs or when the zone does not start one.
func (m *Machine) Begin(g Glyph, clip timeline.Clip, zone Zone, x, y, zoom float64, stops []snap.Stop) bool {
	if m.state != Idle {
		return false
	}
	switch zone {
	case ZoneBody:
		m.state = Dragging
	case ZoneLeftHandle:
		m.state = ResizingLeft
	case ZoneRightHandle:
		m.state = ResizingRight
	default:
		return false
	}
	m.clip = clip.Clone()
	// A media clip may carry no recorded trim window; it shows its full
	// material from the source start. Edge gestures trim against that
	// window, so synthesize it before the trim paths run.
	if m.state != Dragging && m.clip.Trimmable() && m.clip.Trim == nil {
		span := timeline.Span{From: 0, To: timeline.TrimSpanFor(m.clip.Duration, m.clip.Rate())}
		m.clip.Trim = &span
	}
	m.rect = g.Rect
	m.zoom = zoom
	m.startX = x
	m.stops = stops
	m.last = Intent{
		ClipID:      clip.ID,
		Gesture:     m.state,
		DisplayFrom: clip.Display.From,
		Duration:    clip.Duration,
		Trim:        cloneSpan(clip.Trim),
		Y:           y,
	}
	return true
}

// Move advances the gesture to the pointer position and returns the
// resulting proposal. Moving an idle machine returns a zero Intent.
func (m *Machine) Move(x, y float64) Intent {
	if m.state == Idle {
		return Intent{}
	}
	if !m.engaged {
		if math.Abs(x-m.startX) < DragThresholdPx {
			in := m.last
			in.Y = y
			m.last = in
			return in
		}
		m.engaged = true
	}

	var in Intent
	switch m.state {
	case Dragging:
		in = m.drag(x)
	case ResizingLeft:
		if m.clip.Trimmable() {
			in = m.trimLeft(x)
		} else {
			in = m.resizeLeft(x)
		}
	case ResizingRight:
		if m.clip.Trimmable() {
			in = m.trimRight(x)
		} else {
			in = m.resizeRight(x)
		}
	}
	in.ClipID = m.clip.ID
	in.Gesture = m.state
	in.Y = y

	if in.Snapped {
		m.guide.ShouldRedraw(in.GuideX)
	} else {
		m.guide.Reset()
	}
	m.last = in
	return in
}

// End finishes the gesture at the pointer position and returns the final
// proposal. The machine is idle afterwards.
func (m *Machine) End(x, y float64) (Intent, bool) {
	if m.state == Idle {
		return Intent{}, false
	}
	in := m.Move(x, y)
	m.reset()
	return in, true
}

// Cancel abandons the gesture without a proposal.
func (m *Machine) Cancel() {
	m.reset()
}

func (m *Machine) reset() {
	m.state = Idle
	m.clip = timeline.Clip{}
	m.stops = nil
	m.engaged = false
	m.guide.Reset()
	m.last = Intent{}
}

// drag moves display.from; duration and trim ride along unchanged.
func (m *Machine) drag(x float64) Intent {
	deltaPx := x - m.startX
	leftPx := m.rect.X + deltaPx

	cands := []snap.Candidate{
		{X: leftPx, Edge: snap.EdgeLeft},
		{X: leftPx + m.rect.W, Edge: snap.EdgeRight},
	}
	in := Intent{Duration: m.clip.Duration, Trim: cloneSpan(m.clip.Trim)}
	if match, ok := m.resolver.Resolve(cands, m.stops); ok {
		leftPx += match.Delta
		in.Snapped = true
		in.GuideX = match.Stop.X
	}

	from := m.conv.PixelsToMicros(leftPx, m.zoom, 1)
	if from < 0 {
		from = 0
		in.Snapped = false
	}
	in.DisplayFrom = from
	return in
}

// resizeRight grows or shrinks a synthesized clip: width maps straight
// to duration. Minimum width is the only bound.
func (m *Machine) resizeRight(x float64) Intent {
	deltaPx := x - m.startX
	rightPx := m.rect.Right() + deltaPx

	in := Intent{DisplayFrom: m.clip.Display.From}
	if match, ok := m.resolver.Resolve([]snap.Candidate{{X: rightPx, Edge: snap.EdgeRight}}, m.stops); ok {
		rightPx += match.Delta
		in.Snapped = true
		in.GuideX = match.Stop.X
	}
	if rightPx < m.rect.X+m.minWidth {
		rightPx = m.rect.X + m.minWidth
		in.Snapped = false
	}

	in.Duration = m.conv.PixelsToMicros(rightPx-m.rect.X, m.zoom, 1)
	return in
}

// resizeLeft moves the left edge of a synthesized clip; the right
// timeline edge stays fixed. Zero bound first, then minimum width.
func (m *Machine) resizeLeft(x float64) Intent {
	deltaPx := x - m.startX
	leftPx := m.rect.X + deltaPx

	in := Intent{}
	if match, ok := m.resolver.Resolve([]snap.Candidate{{X: leftPx, Edge: snap.EdgeLeft}}, m.stops); ok {
		leftPx += match.Delta
		in.Snapped = true
		in.GuideX = match.Stop.X
	}
	if leftPx < 0 {
		leftPx = 0
		in.Snapped = false
	}
	if leftPx > m.rect.Right()-m.minWidth {
		leftPx = m.rect.Right() - m.minWidth
		in.Snapped = false
	}

	from := m.conv.PixelsToMicros(leftPx, m.zoom, 1)
	if from < 0 {
		from = 0
	}
	in.DisplayFrom = from
	in.Duration = m.clip.Display.To - from
	return in
}

// trimRight adjusts trim.to through the clip's playback rate; the glyph
// cannot shrink under the minimum width and cannot reveal material past
// the end of the source.
func (m *Machine) trimRight(x float64) Intent {
	deltaPx := x - m.startX
	rightPx := m.rect.Right() + deltaPx

	in := Intent{DisplayFrom: m.clip.Display.From}
	if match, ok := m.resolver.Resolve([]snap.Candidate{{X: rightPx, Edge: snap.EdgeRight}}, m.stops); ok {
		rightPx += match.Delta
		in.Snapped = true
		in.GuideX = match.Stop.X
	}

	rate := m.clip.Rate()
	deltaUs := m.conv.PixelsToMicros(rightPx-m.rect.Right(), m.zoom, rate)
	to := m.clip.Trim.To + deltaUs

	minSpan := m.conv.PixelsToMicros(m.minWidth, m.zoom, rate)
	if to < m.clip.Trim.From+minSpan {
		to = m.clip.Trim.From + minSpan
		in.Snapped = false
	}
	if m.clip.SourceDuration > 0 && to > m.clip.SourceDuration {
		to = m.clip.SourceDuration
		in.Snapped = false
	}

	span := timeline.Span{From: m.clip.Trim.From, To: to}
	in.Trim = &span
	in.Duration = timeline.DurationForTrim(span.Len(), rate)
	return in
}

// trimLeft adjusts trim.from while the clip's right timeline edge stays
// fixed. Growth leftwards stops at whichever zero bound binds first —
// start of source material or start of timeline — and shrink stops at
// the minimum width.
func (m *Machine) trimLeft(x float64) Intent {
	deltaPx := x - m.startX
	leftPx := m.rect.X + deltaPx

	in := Intent{}
	if match, ok := m.resolver.Resolve([]snap.Candidate{{X: leftPx, Edge: snap.EdgeLeft}}, m.stops); ok {
		leftPx += match.Delta
		in.Snapped = true
		in.GuideX = match.Stop.X
	}

	rate := m.clip.Rate()
	deltaUs := m.conv.PixelsToMicros(leftPx-m.rect.X, m.zoom, rate)
	from := m.clip.Trim.From + deltaUs

	// Zero bounds: source start, then timeline start expressed in trim
	// units. The timeline bound allows at most Display.From of leftward
	// display growth.
	if from < 0 {
		from = 0
		in.Snapped = false
	}
	if floor := m.clip.Trim.From - timeline.TrimSpanFor(m.clip.Display.From, rate); from < floor {
		from = floor
		in.Snapped = false
	}
	// Right bound: minimum width.
	minSpan := m.conv.PixelsToMicros(m.minWidth, m.zoom, rate)
	if from > m.clip.Trim.To-minSpan {
		from = m.clip.Trim.To - minSpan
		in.Snapped = false
	}

	span := timeline.Span{From: from, To: m.clip.Trim.To}
	dur := timeline.DurationForTrim(span.Len(), rate)

	// Rounding may overshoot the fixed right edge past t=0; re-anchor on
	// the clamped duration so trim stays derived from it.
	if dur > m.clip.Display.To {
		dur = m.clip.Display.To
		span = timeline.Span{From: m.clip.Trim.To - timeline.TrimSpanFor(dur, rate), To: m.clip.Trim.To}
	}
	in.Trim = &span
	in.Duration = dur
	in.DisplayFrom = m.clip.Display.To - dur
	return in
}

func cloneSpan(s *timeline.Span) *timeline.Span {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
