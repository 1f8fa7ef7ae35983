package canvas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/kinocut/internal/snap"
	"github.com/halvard/kinocut/internal/testutil"
	"github.com/halvard/kinocut/internal/timeline"
	"github.com/halvard/kinocut/internal/timeunit"
	"github.com/halvard/kinocut/internal/viewport"
)

// testMachine returns a machine at 100 px/s, zoom 1, 10px snap, 16px min
// width, with an always-ready guide clock.
func testMachine() *Machine {
	guide := snap.NewGuideThrottle(time.Millisecond, testutil.NewFakeClock(time.Unix(0, 0)).AutoAdvancing(time.Second).Now)
	return NewMachine(timeunit.New(100), snap.New(10), guide, 16)
}

func glyphFor(c timeline.Clip) Glyph {
	conv := timeunit.New(100)
	return Glyph{
		ClipID:    c.ID,
		Type:      c.Type,
		Rect:      viewport.Rect{X: conv.MicrosToPixels(c.Display.From, 1, 1), Y: 4, W: conv.MicrosToPixels(c.Duration, 1, 1), H: 40},
		Trimmable: c.Trimmable(),
	}
}

func begin(t *testing.T, m *Machine, c timeline.Clip, zone Zone, x float64, stops []snap.Stop) {
	t.Helper()
	require.True(t, m.Begin(glyphFor(c), c, zone, x, 24, 1, stops))
}

func TestTrimRightClampsAtSourceEnd(t *testing.T) {
	m := testMachine()
	c := timeline.Clip{
		ID: "v", Type: timeline.ClipVideo,
		Display:      timeline.Span{From: 0, To: 8 * sec},
		Trim:         &timeline.Span{From: 0, To: 8 * sec},
		Duration:     8 * sec,
		PlaybackRate: 1,
		Source:       "media/v.mp4", SourceDuration: 10 * sec,
	}
	begin(t, m, c, ZoneRightHandle, 800, nil)

	// +4s of pointer travel asks for trim.to = 12s; the 10s source stops
	// it. The gesture continues, clamped, with no error.
	in := m.Move(1200, 24)
	assert.Equal(t, 10*sec, in.Trim.To)
	assert.Equal(t, 10*sec, in.Duration)
	assert.Equal(t, int64(0), in.DisplayFrom)

	in = m.Move(1500, 24)
	assert.Equal(t, 10*sec, in.Trim.To, "still pinned while the pointer is past the bound")

	// Pulling back inside the source releases the clamp immediately.
	in, ok := m.End(900, 24)
	require.True(t, ok)
	assert.Equal(t, 9*sec, in.Trim.To)
	assert.Equal(t, 9*sec, in.Duration)
	assert.Equal(t, Idle, m.State())
}

func TestTrimWithoutRecordedWindowUsesFullMaterial(t *testing.T) {
	m := testMachine()
	// A media clip need not carry a trim window; the gesture treats the
	// absent window as the full material starting at the source origin.
	c := timeline.Clip{
		ID: "v", Type: timeline.ClipVideo,
		Display:      timeline.Span{From: 0, To: 8 * sec},
		Duration:     8 * sec,
		PlaybackRate: 1,
		Source:       "media/v.mp4", SourceDuration: 10 * sec,
	}
	begin(t, m, c, ZoneRightHandle, 800, nil)

	in := m.Move(900, 24)
	require.NotNil(t, in.Trim)
	assert.Equal(t, int64(0), in.Trim.From)
	assert.Equal(t, 9*sec, in.Trim.To)
	assert.Equal(t, 9*sec, in.Duration)

	// The synthesized window still honors the source bound.
	in = m.Move(1500, 24)
	assert.Equal(t, 10*sec, in.Trim.To)

	m.Cancel()

	// Left handle on the same clip: the in point moves inside the
	// synthesized window.
	begin(t, m, c, ZoneLeftHandle, 0, nil)
	in = m.Move(100, 24)
	require.NotNil(t, in.Trim)
	assert.Equal(t, 1*sec, in.Trim.From)
	assert.Equal(t, 8*sec, in.Trim.To)
	assert.Equal(t, 7*sec, in.Duration)
}

func TestTrimRightMinimumWidth(t *testing.T) {
	m := testMachine()
	c := timeline.Clip{
		ID: "v", Type: timeline.ClipVideo,
		Display:      timeline.Span{From: 0, To: 8 * sec},
		Trim:         &timeline.Span{From: 0, To: 8 * sec},
		Duration:     8 * sec,
		PlaybackRate: 1,
		Source:       "media/v.mp4", SourceDuration: 10 * sec,
	}
	begin(t, m, c, ZoneRightHandle, 800, nil)

	// Collapsing the clip stops at the 16px minimum: 160ms at this zoom.
	in := m.Move(0, 24)
	assert.Equal(t, int64(160_000), in.Trim.Len())
	assert.Equal(t, int64(160_000), in.Duration)
}

func TestTrimLeftClampsAtSourceStart(t *testing.T) {
	m := testMachine()
	c := timeline.Clip{
		ID: "v", Type: timeline.ClipVideo,
		Display:      timeline.Span{From: 5 * sec, To: 13 * sec},
		Trim:         &timeline.Span{From: 2 * sec, To: 10 * sec},
		Duration:     8 * sec,
		PlaybackRate: 1,
		Source:       "media/v.mp4", SourceDuration: 10 * sec,
	}
	begin(t, m, c, ZoneLeftHandle, 500, nil)

	// -4s of travel asks for trim.from = -2s; source start pins it at 0.
	in := m.Move(100, 24)
	assert.Equal(t, int64(0), in.Trim.From)
	assert.Equal(t, 10*sec, in.Duration)
	// The right timeline edge never moved.
	assert.Equal(t, 3*sec, in.DisplayFrom)
	assert.Equal(t, 13*sec, in.DisplayFrom+in.Duration)
}

func TestTrimLeftTimelineStartBindsBeforeSource(t *testing.T) {
	m := testMachine()
	// Plenty of source headroom (trim.from 5s) but only 2s of timeline
	// room: the zero bound that binds first is the timeline's.
	c := timeline.Clip{
		ID: "v", Type: timeline.ClipVideo,
		Display:      timeline.Span{From: 2 * sec, To: 7 * sec},
		Trim:         &timeline.Span{From: 5 * sec, To: 10 * sec},
		Duration:     5 * sec,
		PlaybackRate: 1,
		Source:       "media/v.mp4", SourceDuration: 12 * sec,
	}
	begin(t, m, c, ZoneLeftHandle, 200, nil)

	in := m.Move(-200, 24)
	assert.Equal(t, int64(0), in.DisplayFrom)
	assert.Equal(t, 7*sec, in.Duration)
	assert.Equal(t, 3*sec, in.Trim.From, "only 2s of source window reclaimed")
}

func TestTrimLeftShrinkStopsAtMinimumWidth(t *testing.T) {
	m := testMachine()
	c := timeline.Clip{
		ID: "v", Type: timeline.ClipVideo,
		Display:      timeline.Span{From: 0, To: 4 * sec},
		Trim:         &timeline.Span{From: 0, To: 4 * sec},
		Duration:     4 * sec,
		PlaybackRate: 1,
		Source:       "media/v.mp4", SourceDuration: 10 * sec,
	}
	begin(t, m, c, ZoneLeftHandle, 0, nil)

	in := m.Move(3000, 24)
	assert.Equal(t, int64(160_000), in.Duration)
	assert.Equal(t, 4*sec-160_000, in.DisplayFrom)
	assert.Equal(t, 4*sec, in.DisplayFrom+in.Duration, "right edge fixed")
}

func TestTrimDeltasScaleWithPlaybackRate(t *testing.T) {
	m := testMachine()
	c := timeline.Clip{
		ID: "fast", Type: timeline.ClipVideo,
		Display:      timeline.Span{From: 0, To: 5 * sec},
		Trim:         &timeline.Span{From: 0, To: 10 * sec},
		Duration:     5 * sec,
		PlaybackRate: 2,
		Source:       "media/fast.mp4", SourceDuration: 20 * sec,
	}
	begin(t, m, c, ZoneRightHandle, 500, nil)

	// +100px = +1s of display at this zoom, which at 2x covers +2s of
	// source material.
	in := m.Move(600, 24)
	assert.Equal(t, 12*sec, in.Trim.To)
	assert.Equal(t, 6*sec, in.Duration)
}

func TestDragSnapsEdgeExactlyOntoStop(t *testing.T) {
	m := testMachine()
	c := videoClip("drag", 0, sec) // glyph [0,100]
	stops := []snap.Stop{{X: 200, ClipID: "other", Edge: snap.EdgeLeft}}
	begin(t, m, c, ZoneBody, 50, stops)

	// Pointer travel +105px puts the right edge at 205: five pixels off
	// the stop. Snapping lands the glyph so the edge sits exactly on it.
	in := m.Move(155, 24)
	require.True(t, in.Snapped)
	assert.Equal(t, 200.0, in.GuideX)
	assert.Equal(t, sec, in.DisplayFrom, "left edge at 100px exactly")
	assert.Equal(t, c.Duration, in.Duration, "drag never changes duration")

	// Eleven pixels away: outside tolerance, no snap, raw position.
	in = m.Move(161, 24)
	assert.False(t, in.Snapped)
	assert.Equal(t, int64(1_110_000), in.DisplayFrom)
}

func TestDragClampsAtTimelineStart(t *testing.T) {
	m := testMachine()
	c := videoClip("drag", 2*sec, 3*sec)
	begin(t, m, c, ZoneBody, 250, nil)

	in := m.Move(-100, 24)
	assert.Equal(t, int64(0), in.DisplayFrom)
}

func TestClickUnderThresholdKeepsGeometry(t *testing.T) {
	m := testMachine()
	c := videoClip("click", 0, sec)
	// A stop sits 4px from the glyph's right edge; a snap would move it.
	stops := []snap.Stop{{X: 104, ClipID: "other", Edge: snap.EdgeLeft}}
	begin(t, m, c, ZoneBody, 50, stops)

	in, ok := m.End(52, 24)
	require.True(t, ok)
	assert.False(t, in.Snapped)
	assert.Equal(t, c.Display.From, in.DisplayFrom)
	assert.Equal(t, c.Duration, in.Duration)
}

func TestSimpleResizeRightAdjustsDurationOnly(t *testing.T) {
	m := testMachine()
	c := textClip("txt", 2*sec, 4*sec) // glyph [200,400]
	begin(t, m, c, ZoneRightHandle, 400, nil)

	in := m.Move(500, 24)
	assert.Equal(t, 3*sec, in.Duration)
	assert.Equal(t, 2*sec, in.DisplayFrom)
	assert.Nil(t, in.Trim)

	// Collapse stops at the minimum width.
	in = m.Move(100, 24)
	assert.Equal(t, int64(160_000), in.Duration)
}

func TestSimpleResizeLeftKeepsRightEdge(t *testing.T) {
	m := testMachine()
	c := textClip("txt", 2*sec, 4*sec)
	begin(t, m, c, ZoneLeftHandle, 200, nil)

	in := m.Move(100, 24)
	assert.Equal(t, sec, in.DisplayFrom)
	assert.Equal(t, 3*sec, in.Duration)

	// Past the timeline start the left edge pins at zero.
	in = m.Move(-300, 24)
	assert.Equal(t, int64(0), in.DisplayFrom)
	assert.Equal(t, 4*sec, in.Duration)
}

func TestBeginRefusedWhileGestureRuns(t *testing.T) {
	m := testMachine()
	c := videoClip("a", 0, sec)
	begin(t, m, c, ZoneBody, 50, nil)

	other := videoClip("b", 2*sec, 3*sec)
	assert.False(t, m.Begin(glyphFor(other), other, ZoneBody, 250, 24, 1, nil))
	assert.Equal(t, "a", m.ClipID())
}

func TestCancelDiscardsGesture(t *testing.T) {
	m := testMachine()
	c := videoClip("a", 0, sec)
	begin(t, m, c, ZoneBody, 50, nil)
	m.Move(500, 24)

	m.Cancel()
	assert.Equal(t, Idle, m.State())
	_, ok := m.End(500, 24)
	assert.False(t, ok)
}

func TestGuideLineFollowsThrottledSnap(t *testing.T) {
	m := testMachine()
	c := videoClip("drag", 0, sec)
	stops := []snap.Stop{{X: 200, ClipID: "other", Edge: snap.EdgeLeft}}
	begin(t, m, c, ZoneBody, 50, stops)

	_, ok := m.GuideLine()
	assert.False(t, ok, "no guide before a snap")

	m.Move(155, 24)
	x, ok := m.GuideLine()
	require.True(t, ok)
	assert.Equal(t, 200.0, x)

	// Leaving the snap hides the guide.
	m.Move(300, 24)
	_, ok = m.GuideLine()
	assert.False(t, ok)
}
