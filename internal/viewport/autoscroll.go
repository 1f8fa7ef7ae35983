package viewport

import "math"

// Auto-scroll defaults: hot-zone width at each viewport edge and the
// fastest per-tick step when the pointer sits on the edge itself.
const (
	DefaultEdgeZonePx = 40.0
	DefaultMaxStepPx  = 24.0
)

// AutoScroller scrolls the viewport while a drag holds the pointer near
// an edge. It owns no goroutine: the host's frame loop calls Tick once
// per frame, which keeps every mutation on the session's goroutine. The
// active flag admits a single loop — a second Start while running is
// refused — and Stop must be called on drag end or teardown so no stale
// loop keeps scrolling.
type AutoScroller struct {
	edge    float64
	maxStep float64
	active  bool
}

// NewAutoScroller returns a stopped auto-scroller. Non-positive
// parameters take the package defaults.
func NewAutoScroller(edgeZone, maxStep float64) *AutoScroller {
	if edgeZone <= 0 {
		edgeZone = DefaultEdgeZonePx
	}
	if maxStep <= 0 {
		maxStep = DefaultMaxStepPx
	}
	return &AutoScroller{edge: edgeZone, maxStep: maxStep}
}

// Start arms the loop. Returns false when a loop is already active, in
// which case the caller must not schedule another tick source.
func (a *AutoScroller) Start() bool {
	if a.active {
		return false
	}
	a.active = true
	return true
}

// Stop disarms the loop. Safe to call repeatedly.
func (a *AutoScroller) Stop() { a.active = false }

// Active reports whether a loop is armed.
func (a *AutoScroller) Active() bool { return a.active }

// Tick applies one auto-scroll step for the pointer's viewport-relative
// x position and returns the horizontal delta applied. The step scales
// with how deep the pointer sits in the hot zone and is zero outside it
// or when the loop is stopped.
func (a *AutoScroller) Tick(pointerX float64, s *Scroller) float64 {
	if !a.active {
		return 0
	}

	step := 0.0
	switch {
	case pointerX < a.edge:
		depth := math.Min(a.edge, a.edge-pointerX)
		step = -a.maxStep * depth / a.edge
	case pointerX > s.ViewportWidth()-a.edge:
		depth := math.Min(a.edge, pointerX-(s.ViewportWidth()-a.edge))
		step = a.maxStep * depth / a.edge
	default:
		return 0
	}

	before := s.X()
	s.ScrollBy(step, 0)
	return s.X() - before
}
