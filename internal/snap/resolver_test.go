package snap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/kinocut/internal/testutil"
)

func TestResolveSnapsToClosestStopWithinTolerance(t *testing.T) {
	r := New(10)
	stops := []Stop{
		{X: 200, ClipID: "b", Edge: EdgeLeft},
		{X: 320, ClipID: "b", Edge: EdgeRight},
	}

	// Dragged glyph left edge lands at 205px: within 10px of the stop at
	// 200, so the glyph snaps exactly onto it.
	m, ok := r.Resolve([]Candidate{{X: 205, Edge: EdgeLeft}}, stops)
	require.True(t, ok)
	assert.Equal(t, -5.0, m.Delta)
	assert.Equal(t, 200.0, m.Stop.X)
	assert.Equal(t, 205.0+m.Delta, m.Stop.X)
}

func TestResolveIgnoresStopsBeyondTolerance(t *testing.T) {
	r := New(10)
	stops := []Stop{{X: 200, ClipID: "b", Edge: EdgeLeft}}

	_, ok := r.Resolve([]Candidate{{X: 215, Edge: EdgeLeft}}, stops)
	assert.False(t, ok)
	_, ok = r.Resolve([]Candidate{{X: 189.9, Edge: EdgeLeft}}, stops)
	assert.False(t, ok)

	// Exactly on the tolerance boundary still snaps.
	m, ok := r.Resolve([]Candidate{{X: 210, Edge: EdgeLeft}}, stops)
	require.True(t, ok)
	assert.Equal(t, -10.0, m.Delta)
}

func TestResolvePicksSingleClosestAcrossBothEdges(t *testing.T) {
	r := New(10)
	// Glyph spans [100, 180]. A stop sits 7px from its left edge and
	// another 3px from its right edge; the right one wins.
	cands := []Candidate{
		{X: 100, Edge: EdgeLeft},
		{X: 180, Edge: EdgeRight},
	}
	stops := []Stop{
		{X: 107, ClipID: "a", Edge: EdgeRight},
		{X: 183, ClipID: "c", Edge: EdgeLeft},
	}

	m, ok := r.Resolve(cands, stops)
	require.True(t, ok)
	assert.Equal(t, EdgeRight, m.Candidate.Edge)
	assert.Equal(t, 3.0, m.Delta)
	assert.Equal(t, "c", m.Stop.ClipID)
}

func TestResolveTieBreaksDeterministically(t *testing.T) {
	r := New(10)
	cands := []Candidate{{X: 100, Edge: EdgeLeft}}
	stops := []Stop{
		{X: 104, ClipID: "z", Edge: EdgeLeft},
		{X: 96, ClipID: "a", Edge: EdgeRight},
	}

	// Equal 4px distance on both sides: the smaller stop X wins, and it
	// keeps winning on every call.
	first, ok := r.Resolve(cands, stops)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := r.Resolve(cands, stops)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, 96.0, first.Stop.X)
}

func TestResolveZoomIndependence(t *testing.T) {
	// The same pixel geometry must behave identically regardless of what
	// zoom produced it; the resolver never sees time values.
	r := New(10)
	for _, base := range []float64{10, 100, 1000} {
		m, ok := r.Resolve(
			[]Candidate{{X: base + 5, Edge: EdgeLeft}},
			[]Stop{{X: base, ClipID: "b", Edge: EdgeLeft}},
		)
		require.True(t, ok)
		assert.Equal(t, -5.0, m.Delta)
	}
}

func TestNewFallsBackToDefaultTolerance(t *testing.T) {
	assert.Equal(t, DefaultTolerancePx, New(0).Tolerance())
	assert.Equal(t, DefaultTolerancePx, New(-3).Tolerance())
	assert.Equal(t, 6.0, New(6).Tolerance())
}

func TestGuideThrottleRateLimitsRedraws(t *testing.T) {
	clk := testutil.NewFakeClock(time.Unix(0, 0))
	g := NewGuideThrottle(50*time.Millisecond, clk.Now)

	// First guide draws immediately.
	assert.True(t, g.ShouldRedraw(200))
	assert.True(t, g.Active())
	assert.Equal(t, 200.0, g.X())

	// New positions inside the interval are suppressed.
	clk.Advance(10 * time.Millisecond)
	assert.False(t, g.ShouldRedraw(210))
	clk.Advance(10 * time.Millisecond)
	assert.False(t, g.ShouldRedraw(220))
	assert.Equal(t, 200.0, g.X(), "suppressed moves leave the drawn guide alone")

	// Once the interval elapses the next new position draws.
	clk.Advance(40 * time.Millisecond)
	assert.True(t, g.ShouldRedraw(230))
	assert.Equal(t, 230.0, g.X())

	// An unchanged position never redraws, however much time passes.
	clk.Advance(time.Second)
	assert.False(t, g.ShouldRedraw(230))
}

func TestGuideThrottleResetShowsNextGuideImmediately(t *testing.T) {
	clk := testutil.NewFakeClock(time.Unix(0, 0))
	g := NewGuideThrottle(50*time.Millisecond, clk.Now)

	assert.True(t, g.ShouldRedraw(100))
	g.Reset()
	assert.False(t, g.Active())

	// No interval wait after a reset: a fresh drag gets its guide at once.
	assert.True(t, g.ShouldRedraw(140))
	assert.Equal(t, 140.0, g.X())
}
