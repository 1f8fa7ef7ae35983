// Package snap aligns dragged glyph edges to stationary edges of other
// glyphs. Tolerance is measured in screen pixels and does not scale with
// zoom, so the feel of the snap is constant at every magnification.
package snap

import "math"

// DefaultTolerancePx is the widest pixel gap that still snaps.
const DefaultTolerancePx = 10.0

// Edge names one side of a glyph.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
)

func (e Edge) String() string {
	if e == EdgeLeft {
		return "left"
	}
	return "right"
}

// Stop is a stationary edge a drag can snap to.
type Stop struct {
	X      float64
	ClipID string
	Edge   Edge
}

// Candidate is an edge of the glyph being dragged or resized.
type Candidate struct {
	X    float64
	Edge Edge
}

// Match pairs the winning candidate with its stop. Delta is stop.X minus
// candidate.X: adding it to the glyph's position lands the edge exactly
// on the stop, clearing any sub-pixel residue from the pointer math.
type Match struct {
	Candidate Candidate
	Stop      Stop
	Delta     float64
}

// Resolver finds the closest stop within tolerance.
type Resolver struct {
	tolerance float64
}

// New returns a resolver with the given pixel tolerance; non-positive
// values fall back to DefaultTolerancePx.
func New(tolerance float64) Resolver {
	if tolerance <= 0 {
		tolerance = DefaultTolerancePx
	}
	return Resolver{tolerance: tolerance}
}

// Tolerance returns the pixel tolerance in effect.
func (r Resolver) Tolerance() float64 { return r.tolerance }

// Resolve picks the single closest candidate/stop pair within tolerance.
// Ties resolve deterministically: smaller candidate X first, then smaller
// stop X, so repeated frames of a stationary pointer always pick the same
// guide.
func (r Resolver) Resolve(candidates []Candidate, stops []Stop) (Match, bool) {
	best := Match{}
	bestDist := math.Inf(1)
	found := false

	for _, c := range candidates {
		for _, s := range stops {
			d := math.Abs(s.X - c.X)
			if d > r.tolerance {
				continue
			}
			if found && !closer(d, bestDist, c, s, best) {
				continue
			}
			best = Match{Candidate: c, Stop: s, Delta: s.X - c.X}
			bestDist = d
			found = true
		}
	}
	return best, found
}

func closer(d, bestDist float64, c Candidate, s Stop, best Match) bool {
	if d != bestDist {
		return d < bestDist
	}
	if c.X != best.Candidate.X {
		return c.X < best.Candidate.X
	}
	return s.X < best.Stop.X
}
