package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/kinocut/internal/timeline"
	"github.com/halvard/kinocut/internal/timeunit"
)

const sec = int64(1_000_000)

func videoClip(id string, from, to int64) timeline.Clip {
	return timeline.Clip{
		ID:             id,
		Type:           timeline.ClipVideo,
		Display:        timeline.Span{From: from, To: to},
		Trim:           &timeline.Span{From: 0, To: to - from},
		Duration:       to - from,
		PlaybackRate:   1,
		Source:         "media/" + id + ".mp4",
		SourceDuration: 60 * sec,
	}
}

func textClip(id string, from, to int64) timeline.Clip {
	return timeline.Clip{
		ID:           id,
		Type:         timeline.ClipText,
		Display:      timeline.Span{From: from, To: to},
		Duration:     to - from,
		PlaybackRate: 1,
		Text:         &timeline.TextStyle{Text: "caption " + id},
	}
}

// twoLaneState: lane ta [a1 0-2s, a2 3-5s], lane tb [b1 1-4s].
func twoLaneState(t *testing.T) *timeline.State {
	t.Helper()
	s, err := timeline.BuildState(
		[]timeline.Track{
			{ID: "ta", Type: timeline.TrackVideo, ClipIDs: []string{"a1", "a2"}},
			{ID: "tb", Type: timeline.TrackVideo, ClipIDs: []string{"b1"}},
		},
		[]timeline.Clip{
			videoClip("a1", 0, 2*sec),
			videoClip("a2", 3*sec, 5*sec),
			videoClip("b1", sec, 4*sec),
		},
		nil,
	)
	require.NoError(t, err)
	return s
}

func TestLayoutGeometry(t *testing.T) {
	conv := timeunit.New(100)
	m := DefaultLaneMetrics()
	glyphs := Layout(twoLaneState(t), conv, 2, m)
	require.Len(t, glyphs, 3)

	// 100 px/s base at zoom 2: 1s = 200px.
	a1 := glyphs[0]
	assert.Equal(t, "a1", a1.ClipID)
	assert.Equal(t, 0.0, a1.Rect.X)
	assert.Equal(t, 400.0, a1.Rect.W)
	assert.Equal(t, m.GlyphInsetY, a1.Rect.Y)
	assert.Equal(t, 0, a1.LaneIndex)
	assert.True(t, a1.Trimmable)

	b1 := glyphs[2]
	assert.Equal(t, "b1", b1.ClipID)
	assert.Equal(t, 200.0, b1.Rect.X)
	assert.Equal(t, 1, b1.LaneIndex)
	assert.Equal(t, m.LaneHeight+m.GlyphInsetY, b1.Rect.Y)
}

func TestLayoutWidthComesFromDurationNotRate(t *testing.T) {
	conv := timeunit.New(100)
	fast := timeline.Clip{
		ID:             "fast",
		Type:           timeline.ClipVideo,
		Display:        timeline.Span{From: 0, To: 5 * sec},
		Trim:           &timeline.Span{From: 0, To: 10 * sec},
		Duration:       5 * sec,
		PlaybackRate:   2,
		Source:         "media/fast.mp4",
		SourceDuration: 10 * sec,
	}
	s, err := timeline.BuildState(
		[]timeline.Track{{ID: "t", Type: timeline.TrackVideo, ClipIDs: []string{"fast"}}},
		[]timeline.Clip{fast}, nil,
	)
	require.NoError(t, err)

	glyphs := Layout(s, conv, 1, DefaultLaneMetrics())
	require.Len(t, glyphs, 1)
	// Ten seconds of source at 2x shows as five seconds: 500px, not 1000.
	assert.Equal(t, 500.0, glyphs[0].Rect.W)
}

func TestLayoutMarksSelection(t *testing.T) {
	s := twoLaneState(t).SetSelection([]string{"a2"})
	glyphs := Layout(s, timeunit.New(100), 1, DefaultLaneMetrics())
	for _, g := range glyphs {
		assert.Equal(t, g.ClipID == "a2", g.Selected)
	}
}

func TestStopsExcludeDraggedGlyph(t *testing.T) {
	glyphs := Layout(twoLaneState(t), timeunit.New(100), 1, DefaultLaneMetrics())
	stops := Stops(glyphs, "a1")
	require.Len(t, stops, 4, "two edges for each of the two other glyphs")
	for _, s := range stops {
		assert.NotEqual(t, "a1", s.ClipID)
	}
}

func TestHitTestZones(t *testing.T) {
	glyphs := Layout(twoLaneState(t), timeunit.New(100), 1, DefaultLaneMetrics())
	// a1: x [0,200], lane 0 rows y [4,44].

	tests := []struct {
		name string
		x, y float64
		clip string
		zone Zone
	}{
		{"body center", 100, 24, "a1", ZoneBody},
		{"left handle band", 3, 24, "a1", ZoneLeftHandle},
		{"right handle band", 197, 24, "a1", ZoneRightHandle},
		{"just inside body after handle", 20, 24, "a1", ZoneBody},
		{"above lane", 100, 2, "", ZoneNone},
		{"between clips", 250, 24, "", ZoneNone},
		{"second lane", 150, 72, "b1", ZoneBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := HitTest(glyphs, tt.x, tt.y)
			assert.Equal(t, tt.zone, hit.Zone)
			if tt.clip != "" {
				assert.Equal(t, tt.clip, hit.ClipID)
			}
		})
	}
}

func TestHitTestNarrowGlyphKeepsBodyZone(t *testing.T) {
	s, err := timeline.BuildState(
		[]timeline.Track{{ID: "t", Type: timeline.TrackText, ClipIDs: []string{"n"}}},
		[]timeline.Clip{textClip("n", 0, sec/10)}, nil, // 0.1s = 10px wide
	)
	require.NoError(t, err)
	glyphs := Layout(s, timeunit.New(100), 1, DefaultLaneMetrics())

	// Handles shrink to a third of the width, leaving the middle third
	// as body.
	assert.Equal(t, ZoneLeftHandle, HitTest(glyphs, 1, 24).Zone)
	assert.Equal(t, ZoneBody, HitTest(glyphs, 5, 24).Zone)
	assert.Equal(t, ZoneRightHandle, HitTest(glyphs, 9, 24).Zone)
}

func TestHitTestPrefersTopmostOverlap(t *testing.T) {
	// Two clips overlapping in time on the same lane: the later one in
	// paint order wins.
	s, err := timeline.BuildState(
		[]timeline.Track{{ID: "t", Type: timeline.TrackVideo, ClipIDs: []string{"under", "over"}}},
		[]timeline.Clip{videoClip("under", 0, 4*sec), videoClip("over", 2*sec, 6*sec)},
		nil,
	)
	require.NoError(t, err)
	glyphs := Layout(s, timeunit.New(100), 1, DefaultLaneMetrics())

	hit := HitTest(glyphs, 300, 24)
	assert.Equal(t, "over", hit.ClipID)
}

func TestClassifyDrop(t *testing.T) {
	m := DefaultLaneMetrics() // lane height 48, gutter 6

	tests := []struct {
		name string
		y    float64
		want Drop
	}{
		{"center of first lane", 24, Drop{DropLane, 0}},
		{"center of second lane", 72, Drop{DropLane, 1}},
		{"on the boundary", 48, Drop{DropGutter, 1}},
		{"just above the boundary", 43, Drop{DropGutter, 1}},
		{"just below the boundary", 53, Drop{DropGutter, 1}},
		{"top edge", 2, Drop{DropGutter, 0}},
		{"above the stack", -30, Drop{DropGutter, 0}},
		{"below the stack", 200, Drop{DropGutter, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDrop(tt.y, 2, m))
		})
	}

	assert.Equal(t, Drop{DropGutter, 0}, ClassifyDrop(24, 0, m), "no lanes yet: everything is a gutter")
}

func TestPaintTableCoversEveryClipType(t *testing.T) {
	for ct := range timeline.ValidClipTypes {
		spec := PaintFor(ct)
		assert.NotEmpty(t, spec.FillToken, "type %s", ct)
		assert.NotEmpty(t, spec.Badge, "type %s", ct)
		require.NotNil(t, spec.Label, "type %s", ct)
	}
}

func TestPaintLabels(t *testing.T) {
	v := videoClip("a1", 0, sec)
	assert.Equal(t, "a1.mp4", PaintFor(v.Type).Label(v))

	txt := textClip("t1", 0, sec)
	assert.Equal(t, "caption t1", PaintFor(txt.Type).Label(txt))

	fx := timeline.Clip{Type: timeline.ClipEffect, Effect: &timeline.EffectParams{Name: "blur"}}
	assert.Equal(t, "blur", PaintFor(fx.Type).Label(fx))

	unknown := timeline.Clip{Type: "hologram"}
	spec := PaintFor(unknown.Type)
	assert.Equal(t, "clip.unknown", spec.FillToken)
	assert.Equal(t, "hologram", spec.Label(unknown))
}

func TestTrimHandlesOnlyOnMediaTypes(t *testing.T) {
	assert.True(t, PaintFor(timeline.ClipVideo).TrimHandles)
	assert.True(t, PaintFor(timeline.ClipAudio).TrimHandles)
	assert.False(t, PaintFor(timeline.ClipImage).TrimHandles)
	assert.False(t, PaintFor(timeline.ClipText).TrimHandles)
	assert.False(t, PaintFor(timeline.ClipTransition).TrimHandles)
}
