package snap

import "time"

// DefaultRedrawInterval is the minimum time between guide-line redraws.
const DefaultRedrawInterval = 50 * time.Millisecond

// GuideThrottle rate-limits guide-line redraws during a drag. The snap
// decision itself runs every pointer move; only the visual guide is
// throttled, so a fast pointer cannot make the line flicker.
//
// Not safe for concurrent use; a drag lives on one goroutine.
type GuideThrottle struct {
	min  time.Duration
	now  func() time.Time
	last time.Time
	x    float64
	has  bool
}

// NewGuideThrottle returns a throttle with the given minimum redraw
// interval. A nil now uses the wall clock; tests inject their own.
func NewGuideThrottle(min time.Duration, now func() time.Time) *GuideThrottle {
	if min <= 0 {
		min = DefaultRedrawInterval
	}
	if now == nil {
		now = time.Now
	}
	return &GuideThrottle{min: min, now: now}
}

// ShouldRedraw reports whether the guide at x needs repainting. The first
// guide of a drag always draws; after that a redraw requires both a new
// position and the minimum interval since the last draw.
func (g *GuideThrottle) ShouldRedraw(x float64) bool {
	if !g.has {
		g.has = true
		g.x = x
		g.last = g.now()
		return true
	}
	if x == g.x {
		return false
	}
	if g.now().Sub(g.last) < g.min {
		return false
	}
	g.x = x
	g.last = g.now()
	return true
}

// Active reports whether a guide is currently shown.
func (g *GuideThrottle) Active() bool { return g.has }

// X returns the position of the guide last drawn.
func (g *GuideThrottle) X() float64 { return g.x }

// Reset hides the guide; the next ShouldRedraw draws immediately. Called
// on drag end and whenever the snap match disappears.
func (g *GuideThrottle) Reset() {
	g.has = false
	g.x = 0
	g.last = time.Time{}
}
