package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/kinocut/internal/ident"
	"github.com/halvard/kinocut/internal/timeline"
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

func newTestEngine(t *testing.T) (*MemEngine, *[]Event) {
	t.Helper()
	e := NewMemEngine(ident.Sequence("eng"))
	var got []Event
	e.Subscribe(func(ev Event) { got = append(got, ev) })
	return e, &got
}

func TestMemEngineAddClipCreatesLaneWhenNeeded(t *testing.T) {
	e, got := newTestEngine(t)

	require.NoError(t, e.AddClip(videoClip("c1", 0, 2*sec), ""))

	require.Len(t, *got, 2)
	ta, ok := (*got)[0].(TrackAdded)
	require.True(t, ok, "first event should announce the auto lane")
	assert.Equal(t, timeline.TrackVideo, ta.Track.Type)
	ca, ok := (*got)[1].(ClipAdded)
	require.True(t, ok)
	assert.Equal(t, "c1", ca.Clip.ID)
	assert.Equal(t, ta.Track.ID, ca.TrackID)

	// A second clip of the same type reuses the lane.
	require.NoError(t, e.AddClip(videoClip("c2", 3*sec, 4*sec), ""))
	require.Len(t, *got, 3)
	assert.Equal(t, "clip:added", EventName((*got)[2]))
}

func TestMemEngineAddClipHonorsCompatibleHint(t *testing.T) {
	e, got := newTestEngine(t)
	require.NoError(t, e.AddClip(videoClip("c1", 0, sec), ""))
	lane := (*got)[0].(TrackAdded).Track.ID

	require.NoError(t, e.AddClip(videoClip("c2", 2*sec, 3*sec), lane))
	ca := (*got)[len(*got)-1].(ClipAdded)
	assert.Equal(t, lane, ca.TrackID)

	// A hint naming a lane of the wrong type falls back to type matching.
	audio := timeline.Clip{
		ID: "a1", Type: timeline.ClipAudio,
		Display:  timeline.Span{From: 0, To: sec},
		Trim:     &timeline.Span{From: 0, To: sec},
		Duration: sec, PlaybackRate: 1,
		Source: "media/a1.wav", SourceDuration: 10 * sec,
	}
	require.NoError(t, e.AddClip(audio, lane))
	ca = (*got)[len(*got)-1].(ClipAdded)
	assert.NotEqual(t, lane, ca.TrackID)
}

func TestMemEngineUpdateAndRemoveEcho(t *testing.T) {
	e, got := newTestEngine(t)
	require.NoError(t, e.AddClip(videoClip("c1", 0, 2*sec), ""))

	d := timeline.Span{From: 5 * sec, To: 7 * sec}
	require.NoError(t, e.UpdateClip("c1", timeline.Patch{Display: &d}))
	up := (*got)[len(*got)-1].(ClipUpdated)
	assert.Equal(t, d, up.Clip.Display)

	require.NoError(t, e.RemoveClip("c1"))
	assert.Equal(t, ClipRemoved{ID: "c1"}, (*got)[len(*got)-1])

	assert.ErrorIs(t, e.RemoveClip("c1"), timeline.ErrClipNotFound)
	assert.ErrorIs(t, e.UpdateClip("ghost", timeline.Patch{}), timeline.ErrClipNotFound)
}

func TestMemEngineSetTracksIsSilentAndIdempotent(t *testing.T) {
	e, got := newTestEngine(t)
	require.NoError(t, e.AddClip(videoClip("c1", 0, 2*sec), ""))
	require.NoError(t, e.AddClip(videoClip("c2", 3*sec, 5*sec), ""))
	lane := (*got)[0].(TrackAdded).Track.ID
	before := len(*got)

	// Split the two clips across two lanes, wholesale.
	tracks := []timeline.Track{
		{ID: lane, Type: timeline.TrackVideo, ClipIDs: []string{"c1"}},
		{ID: "lane2", Type: timeline.TrackVideo, ClipIDs: []string{"c2"}},
	}
	require.NoError(t, e.SetTracks(tracks))
	require.NoError(t, e.SetTracks(tracks))

	assert.Len(t, *got, before, "setTracks must not emit change events")
	snap := e.Snapshot()
	assert.Equal(t, []string{lane, "lane2"}, snap.TrackOrder())
	owner, _ := snap.TrackOf("c2")
	assert.Equal(t, "lane2", owner)

	// References to clips the engine never saw are skipped, not fatal:
	// the pusher may be ahead of the clip feed.
	ahead := []timeline.Track{
		{ID: lane, Type: timeline.TrackVideo, ClipIDs: []string{"c1", "ghost"}},
		{ID: "lane2", Type: timeline.TrackVideo, ClipIDs: []string{"c2"}},
	}
	require.NoError(t, e.SetTracks(ahead))
	assert.Equal(t, 2, e.Snapshot().NumClips())
	_, ok := e.Snapshot().Clip("ghost")
	assert.False(t, ok)
}

func TestMemEngineSelectionTransitions(t *testing.T) {
	e, got := newTestEngine(t)
	require.NoError(t, e.AddClip(videoClip("c1", 0, sec), ""))
	require.NoError(t, e.AddClip(videoClip("c2", 2*sec, 3*sec), ""))
	base := len(*got)

	require.NoError(t, e.SelectClips([]string{"c1"}))
	require.NoError(t, e.SelectClips([]string{"c1"})) // unchanged: silent
	require.NoError(t, e.SelectClips([]string{"c1", "c2"}))
	require.NoError(t, e.SelectClips(nil))

	evs := (*got)[base:]
	require.Len(t, evs, 3)
	assert.Equal(t, SelectionCreated{IDs: []string{"c1"}}, evs[0])
	assert.Equal(t, SelectionUpdated{IDs: []string{"c1", "c2"}}, evs[1])
	assert.Equal(t, SelectionCleared{}, evs[2])
}

func TestMemEngineSplitSelected(t *testing.T) {
	e, got := newTestEngine(t)
	require.NoError(t, e.AddClip(videoClip("c1", 0, 10*sec), ""))
	require.NoError(t, e.SelectClips([]string{"c1"}))
	base := len(*got)

	require.NoError(t, e.SplitSelected(4*sec))

	evs := (*got)[base:]
	require.Len(t, evs, 2)
	up := evs[0].(ClipUpdated)
	assert.Equal(t, timeline.Span{From: 0, To: 4 * sec}, up.Clip.Display)
	add := evs[1].(ClipAdded)
	assert.Equal(t, timeline.Span{From: 4 * sec, To: 10 * sec}, add.Clip.Display)
	assert.NotEqual(t, "c1", add.Clip.ID)

	snap := e.Snapshot()
	track, _ := snap.TrackOf("c1")
	ids := []string{}
	for _, c := range snap.ClipsOn(track) {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"c1", add.Clip.ID}, ids)

	// A split point outside the clip is skipped silently.
	require.NoError(t, e.SplitSelected(99*sec))
	assert.Len(t, *got, base+2)
}

func TestMemEngineSplitSelectedAtPlayhead(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.AddClip(videoClip("c1", 0, 10*sec), ""))
	require.NoError(t, e.SelectClips([]string{"c1"}))
	require.NoError(t, e.Seek(3*sec))

	require.NoError(t, e.SplitSelected(-1))

	c1, _ := e.Snapshot().Clip("c1")
	assert.Equal(t, 3*sec, c1.Display.To)
}

func TestMemEngineDuplicateSelectedUsesFreshAdjacentLane(t *testing.T) {
	e, got := newTestEngine(t)
	require.NoError(t, e.AddClip(videoClip("c1", 0, 2*sec), ""))
	srcLane := (*got)[0].(TrackAdded).Track.ID
	require.NoError(t, e.SelectClips([]string{"c1"}))
	base := len(*got)

	require.NoError(t, e.DuplicateSelected())

	evs := (*got)[base:]
	require.Len(t, evs, 2)
	ta := evs[0].(TrackAdded)
	ca := evs[1].(ClipAdded)
	assert.NotEqual(t, srcLane, ta.Track.ID)
	assert.Equal(t, ta.Track.ID, ca.TrackID)
	assert.NotEqual(t, "c1", ca.Clip.ID)
	assert.Equal(t, timeline.Span{From: 0, To: 2 * sec}, ca.Clip.Display)

	snap := e.Snapshot()
	assert.Equal(t, 1, snap.TrackIndex(ta.Track.ID), "duplicate lane sits after the source lane")
	require.NoError(t, snap.Validate())
}

func TestMemEngineSeekClampsToContent(t *testing.T) {
	e, got := newTestEngine(t)
	require.NoError(t, e.AddClip(videoClip("c1", 0, 5*sec), ""))
	base := len(*got)

	require.NoError(t, e.Seek(-sec))
	assert.Equal(t, TimeChanged{Us: 0}, (*got)[base])
	require.NoError(t, e.Seek(99*sec))
	assert.Equal(t, TimeChanged{Us: 5 * sec}, (*got)[base+1])
	assert.Equal(t, 5*sec, e.CurrentTime())
}

func TestMemEngineTransportAndTick(t *testing.T) {
	e, got := newTestEngine(t)
	require.NoError(t, e.AddClip(videoClip("c1", 0, 2*sec), ""))
	base := len(*got)

	require.NoError(t, e.Play())
	require.NoError(t, e.Play()) // idempotent: silent
	assert.True(t, e.Playing())

	e.Tick(sec / 2)
	assert.Equal(t, sec/2, e.CurrentTime())

	// Ticking past the end clamps and pauses.
	e.Tick(10 * sec)
	assert.Equal(t, 2*sec, e.CurrentTime())
	assert.False(t, e.Playing())

	evs := (*got)[base:]
	require.Len(t, evs, 4)
	assert.Equal(t, PlaybackStarted{}, evs[0])
	assert.Equal(t, TimeChanged{Us: sec / 2}, evs[1])
	assert.Equal(t, TimeChanged{Us: 2 * sec}, evs[2])
	assert.Equal(t, PlaybackPaused{}, evs[3])
}

func TestGateDropsOperationsUntilOpen(t *testing.T) {
	inner := NewMemEngine(ident.Sequence("eng"))
	g := NewGate(inner)

	assert.ErrorIs(t, g.AddClip(videoClip("c1", 0, sec), ""), ErrUnavailable)
	assert.ErrorIs(t, g.Seek(0), ErrUnavailable)
	assert.ErrorIs(t, g.SelectClips([]string{"c1"}), ErrUnavailable)
	assert.Zero(t, g.MaxDuration())
	assert.Equal(t, 0, inner.Snapshot().NumClips(), "dropped ops never reach the engine")

	readyRuns := 0
	g.OnReady(func() { readyRuns++ })
	g.Open()
	g.Open()
	assert.Equal(t, 1, readyRuns)

	require.NoError(t, g.AddClip(videoClip("c1", 0, sec), ""))
	assert.Equal(t, 1, inner.Snapshot().NumClips())

	// Hooks registered after opening run immediately.
	g.OnReady(func() { readyRuns++ })
	assert.Equal(t, 2, readyRuns)
}
