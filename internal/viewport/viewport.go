// Package viewport tracks the visible window over the timeline's virtual
// content and the scrollbar geometry derived from it.
package viewport

import "math"

// Defaults used when Config fields are zero.
const (
	DefaultMarginLeftPx  = 16.0
	DefaultMarginRightPx = 240.0
	DefaultMinThumbPx    = 24.0
)

// Rect is a glyph rectangle in content space, pixels.
type Rect struct {
	X, Y, W, H float64
}

// Right returns X+W.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns Y+H.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Thumb is a scrollbar thumb: offset and length along its track, pixels.
type Thumb struct {
	Offset float64
	Len    float64
}

// Config sets the fixed margins added around content and the minimum
// thumb length. Zero fields take the package defaults.
type Config struct {
	MarginLeft  float64
	MarginRight float64
	MinThumb    float64
}

// Scroller owns the scroll offset for one timeline view. Content bounds
// are the union of all glyph rects extended by fixed margins; the
// vertical extent is the larger of the glyph union and the full track
// stack, so empty lanes still scroll into view. Offsets are always
// clamped to the content, on every scroll and every bounds change.
//
// Not safe for concurrent use; the owning session drives it.
type Scroller struct {
	cfg Config

	minX, maxX float64
	height     float64

	viewW, viewH float64
	x, y         float64
}

// NewScroller returns a scroller over empty content.
func NewScroller(cfg Config) *Scroller {
	if cfg.MarginLeft == 0 {
		cfg.MarginLeft = DefaultMarginLeftPx
	}
	if cfg.MarginRight == 0 {
		cfg.MarginRight = DefaultMarginRightPx
	}
	if cfg.MinThumb == 0 {
		cfg.MinThumb = DefaultMinThumbPx
	}
	return &Scroller{cfg: cfg}
}

// SetViewport sets the visible window size and re-clamps the offset.
func (s *Scroller) SetViewport(w, h float64) {
	s.viewW = math.Max(0, w)
	s.viewH = math.Max(0, h)
	s.clamp()
}

// SetRects recomputes content bounds from the glyph rects and the total
// track-stack height, then re-clamps the offset.
func (s *Scroller) SetRects(rects []Rect, stackHeight float64) {
	// An offset resting on the left bound stays on it when the bound
	// moves: a fresh scroller (x and minX both zero) therefore lands on
	// the new left bound, and the thumb reads zero travel at rest.
	pinned := s.x == s.minX

	if len(rects) == 0 {
		// No glyphs: a margin-wide strip anchored at the origin.
		s.minX, s.maxX = 0, s.cfg.MarginLeft+s.cfg.MarginRight
		s.height = math.Max(0, stackHeight)
	} else {
		minX, maxX := math.Inf(1), math.Inf(-1)
		maxY := 0.0
		for _, r := range rects {
			minX = math.Min(minX, r.X)
			maxX = math.Max(maxX, r.Right())
			maxY = math.Max(maxY, r.Bottom())
		}
		s.minX = minX - s.cfg.MarginLeft
		s.maxX = maxX + s.cfg.MarginRight
		s.height = math.Max(maxY, stackHeight)
	}

	if pinned {
		s.x = s.minX
	}
	s.clamp()
}

// ContentWidth returns the horizontal content extent including margins.
func (s *Scroller) ContentWidth() float64 { return s.maxX - s.minX }

// ContentHeight returns the vertical content extent.
func (s *Scroller) ContentHeight() float64 { return s.height }

// X returns the horizontal scroll offset in content space.
func (s *Scroller) X() float64 { return s.x }

// Y returns the vertical scroll offset.
func (s *Scroller) Y() float64 { return s.y }

// ViewportWidth returns the visible window width.
func (s *Scroller) ViewportWidth() float64 { return s.viewW }

// ViewportHeight returns the visible window height.
func (s *Scroller) ViewportHeight() float64 { return s.viewH }

// ScrollTo moves the offset, clamped to content.
func (s *Scroller) ScrollTo(x, y float64) {
	s.x, s.y = x, y
	s.clamp()
}

// ScrollBy moves the offset by a delta, clamped to content.
func (s *Scroller) ScrollBy(dx, dy float64) {
	s.ScrollTo(s.x+dx, s.y+dy)
}

func (s *Scroller) clamp() {
	s.x = clampOffset(s.x, s.minX, s.maxX, s.viewW)
	s.y = clampOffset(s.y, 0, s.height, s.viewH)
}

// clampOffset pins o to [min, max-view]; content smaller than the view
// pins to min.
func clampOffset(o, min, max, view float64) float64 {
	hi := max - view
	if hi < min {
		return min
	}
	return math.Min(math.Max(o, min), hi)
}

// HThumb returns the horizontal scrollbar thumb for a track the width of
// the viewport. Thumb length is proportional to the viewport/content
// ratio with the configured minimum enforced; content that fits yields a
// full-length thumb at offset 0.
func (s *Scroller) HThumb() Thumb {
	return s.thumb(s.viewW, s.ContentWidth(), s.x-s.minX)
}

// VThumb returns the vertical scrollbar thumb.
func (s *Scroller) VThumb() Thumb {
	return s.thumb(s.viewH, s.height, s.y)
}

func (s *Scroller) thumb(view, content, scrolled float64) Thumb {
	if view <= 0 || content <= view {
		return Thumb{Offset: 0, Len: view}
	}
	length := math.Max(s.cfg.MinThumb, view*view/content)
	span := content - view
	travel := view - length
	return Thumb{Offset: scrolled / span * travel, Len: length}
}

// DragHThumb converts a pointer delta on the horizontal thumb into a
// scroll delta through the inverse of the thumb-to-content scale and
// applies it. Returns the offset actually applied after clamping.
func (s *Scroller) DragHThumb(deltaPx float64) float64 {
	before := s.x
	s.ScrollBy(deltaPx*s.dragScale(s.viewW, s.ContentWidth()), 0)
	return s.x - before
}

// DragVThumb is the vertical counterpart of DragHThumb.
func (s *Scroller) DragVThumb(deltaPx float64) float64 {
	before := s.y
	s.ScrollBy(0, deltaPx*s.dragScale(s.viewH, s.height))
	return s.y - before
}

func (s *Scroller) dragScale(view, content float64) float64 {
	if view <= 0 || content <= view {
		return 0
	}
	length := math.Max(s.cfg.MinThumb, view*view/content)
	travel := view - length
	if travel <= 0 {
		return 0
	}
	return (content - view) / travel
}

// EnsureVisible scrolls the minimum horizontal distance that brings x
// into view, with a small inset so the target is not glued to the edge.
func (s *Scroller) EnsureVisible(x float64) {
	const inset = 8.0
	switch {
	case x < s.x+inset:
		s.ScrollTo(x-inset, s.y)
	case x > s.x+s.viewW-inset:
		s.ScrollTo(x-s.viewW+inset, s.y)
	}
}
