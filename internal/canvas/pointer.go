package canvas

import "math"

// HandleWidthPx is the hit width of a resize handle at a glyph edge.
const HandleWidthPx = 8.0

// Zone names the part of a glyph a pointer landed on.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneBody
	ZoneLeftHandle
	ZoneRightHandle
)

func (z Zone) String() string {
	switch z {
	case ZoneBody:
		return "body"
	case ZoneLeftHandle:
		return "left-handle"
	case ZoneRightHandle:
		return "right-handle"
	default:
		return "none"
	}
}

// Hit is the result of a pointer-down hit test.
type Hit struct {
	GlyphIndex int
	ClipID     string
	Zone       Zone
}

// HitTest finds the glyph under the pointer, preferring the one drawn
// last when clips overlap. Edge bands map to resize handles; on glyphs
// too narrow for two full handles the bands shrink so a body hit stays
// possible.
func HitTest(glyphs []Glyph, x, y float64) Hit {
	for i := len(glyphs) - 1; i >= 0; i-- {
		g := glyphs[i]
		r := g.Rect
		if x < r.X || x > r.Right() || y < r.Y || y > r.Bottom() {
			continue
		}
		handle := math.Min(HandleWidthPx, r.W/3)
		zone := ZoneBody
		switch {
		case x <= r.X+handle:
			zone = ZoneLeftHandle
		case x >= r.Right()-handle:
			zone = ZoneRightHandle
		}
		return Hit{GlyphIndex: i, ClipID: g.ClipID, Zone: zone}
	}
	return Hit{GlyphIndex: -1, Zone: ZoneNone}
}

// DropKind classifies where a drag ended vertically.
type DropKind int

const (
	// DropLane lands on an existing lane.
	DropLane DropKind = iota
	// DropGutter lands on a boundary between lanes (or above the first /
	// below the last): the clip asks for a new track at Index.
	DropGutter
)

// Drop is a classified drop position. For DropLane, Index is the lane;
// for DropGutter, Index is the insertion position for the new track.
type Drop struct {
	Kind  DropKind
	Index int
}

// ClassifyDrop maps a pointer y to a lane or a gutter. Boundaries win
// within the gutter tolerance band; anything above the stack inserts at
// zero and anything below appends.
func ClassifyDrop(y float64, laneCount int, m LaneMetrics) Drop {
	if laneCount == 0 {
		return Drop{Kind: DropGutter, Index: 0}
	}
	for k := 0; k <= laneCount; k++ {
		if math.Abs(y-m.LaneTop(k)) <= m.GutterPx {
			return Drop{Kind: DropGutter, Index: k}
		}
	}
	switch {
	case y < 0:
		return Drop{Kind: DropGutter, Index: 0}
	case y >= m.StackHeight(laneCount):
		return Drop{Kind: DropGutter, Index: laneCount}
	default:
		return Drop{Kind: DropLane, Index: int(y / m.LaneHeight)}
	}
}
