package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/kinocut/internal/ident"
	"github.com/halvard/kinocut/internal/media"
	"github.com/halvard/kinocut/internal/timeline"
)

func TestAddClipRoutesThroughEngine(t *testing.T) {
	store, eng, coord := newSession(t)

	require.NoError(t, coord.AddClip(videoClip("a1", 0, 2*sec), ""))
	coord.Drain()

	// The engine owned lane assignment, so the store's track carries
	// the engine's id.
	snap := store.Snapshot()
	require.Equal(t, 1, snap.NumTracks())
	assert.Equal(t, []string{"e-1"}, snap.TrackOrder())
	owner, _ := snap.TrackOf("a1")
	assert.Equal(t, "e-1", owner)

	mirror, ok := eng.Snapshot().Clip("a1")
	require.True(t, ok)
	assert.Equal(t, timeline.Span{From: 0, To: 2 * sec}, mirror.Display)
}

func TestAddClipMintsMissingID(t *testing.T) {
	store, _, coord := newSession(t)

	cl := videoClip("", 0, sec)
	require.NoError(t, coord.AddClip(cl, ""))
	coord.Drain()

	_, ok := store.Snapshot().Clip("c-1")
	assert.True(t, ok)
}

func TestAddClipRejectsInvalid(t *testing.T) {
	_, _, coord := newSession(t)

	bad := videoClip("x", 2*sec, 2*sec) // empty display interval
	assert.Error(t, coord.AddClip(bad, ""))
}

func TestRemoveClipPrunesBothSides(t *testing.T) {
	store, eng, coord := seedSession(t)
	coord.SelectClips([]string{"a1", "b1"})
	coord.Drain()

	require.NoError(t, coord.RemoveClip("a1"))
	coord.Drain()

	_, ok := store.Snapshot().Clip("a1")
	assert.False(t, ok)
	_, ok = eng.Snapshot().Clip("a1")
	assert.False(t, ok)
	assert.Equal(t, []string{"b1"}, store.Snapshot().Selection())

	// Unknown ids are quiet no-ops.
	assert.NoError(t, coord.RemoveClip("ghost"))
}

func TestSplitClipWorkedExample(t *testing.T) {
	store, eng, coord := newSession(t)

	src := videoClip("src", 0, 10*sec)
	src.Trim = &timeline.Span{From: 0, To: 10 * sec}
	src.SourceDuration = 10 * sec
	st, err := timeline.BuildState(
		[]timeline.Track{{ID: "ta", Type: timeline.TrackVideo, ClipIDs: []string{"src"}}},
		[]timeline.Clip{src},
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, coord.LoadState(st))
	coord.Drain()

	rightID, err := coord.SplitClip("src", 4*sec)
	require.NoError(t, err)
	require.Equal(t, "c-1", rightID)
	coord.Drain()

	snap := store.Snapshot()
	left, _ := snap.Clip("src")
	assert.Equal(t, timeline.Span{From: 0, To: 4 * sec}, left.Display)
	assert.Equal(t, timeline.Span{From: 0, To: 4 * sec}, *left.Trim)
	assert.Equal(t, 4*sec, left.Duration)

	right, ok := snap.Clip(rightID)
	require.True(t, ok)
	assert.Equal(t, timeline.Span{From: 4 * sec, To: 10 * sec}, right.Display)
	assert.Equal(t, timeline.Span{From: 4 * sec, To: 10 * sec}, *right.Trim)
	assert.Equal(t, 6*sec, right.Duration)

	// Both halves sit in the original track, the new one right after
	// the original.
	ta, _ := snap.Track("ta")
	assert.Equal(t, []string{"src", rightID}, ta.ClipIDs)

	mta, _ := eng.Snapshot().Track("ta")
	assert.Equal(t, []string{"src", rightID}, mta.ClipIDs)
}

func TestSplitClipRejectsEdgeCuts(t *testing.T) {
	_, _, coord := seedSession(t)

	_, err := coord.SplitClip("a1", 0)
	assert.Error(t, err)
	_, err = coord.SplitClip("a1", 2*sec)
	assert.Error(t, err)

	id, err := coord.SplitClip("ghost", sec)
	assert.NoError(t, err)
	assert.Empty(t, id)
}

func TestDuplicateClipLandsOnFreshAdjacentLane(t *testing.T) {
	store, eng, coord := seedSession(t)

	dupID, err := coord.DuplicateClip("a1")
	require.NoError(t, err)
	require.Equal(t, "c-1", dupID)
	coord.Drain()

	snap := store.Snapshot()
	assert.Equal(t, []string{"ta", "c-2", "tb"}, snap.TrackOrder())

	dup, ok := snap.Clip(dupID)
	require.True(t, ok)
	orig, _ := snap.Clip("a1")
	assert.Equal(t, orig.Display, dup.Display)
	owner, _ := snap.TrackOf(dupID)
	assert.Equal(t, "c-2", owner)

	mirrorOwner, _ := eng.Snapshot().TrackOf(dupID)
	assert.Equal(t, "c-2", mirrorOwner)
}

func TestTrimClipDerivesFromTrimWindow(t *testing.T) {
	store, _, coord := newSession(t)

	cl := videoClip("v", 2*sec, 5*sec)
	cl.Trim = &timeline.Span{From: sec, To: 7 * sec}
	cl.PlaybackRate = 2
	cl.SourceDuration = 10 * sec
	st, err := timeline.BuildState(
		[]timeline.Track{{ID: "ta", Type: timeline.TrackVideo, ClipIDs: []string{"v"}}},
		[]timeline.Clip{cl},
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, coord.LoadState(st))
	coord.Drain()

	// New window [1s,9s) at rate 2 plays for 4s, whatever the display
	// width was before.
	require.NoError(t, coord.TrimClip("v", timeline.Span{From: sec, To: 9 * sec}, 2*sec))
	coord.Drain()

	got, _ := store.Snapshot().Clip("v")
	assert.Equal(t, timeline.Span{From: 2 * sec, To: 6 * sec}, got.Display)
	assert.Equal(t, 4*sec, got.Duration)
	assert.Equal(t, timeline.Span{From: sec, To: 9 * sec}, *got.Trim)
}

func TestTrimClipRejectsNonMedia(t *testing.T) {
	_, _, coord := newSession(t)

	cl := timeline.Clip{
		ID:           "t1",
		Type:         timeline.ClipText,
		Display:      timeline.Span{From: 0, To: 2 * sec},
		Duration:     2 * sec,
		PlaybackRate: 1,
		Text:         &timeline.TextStyle{Text: "title"},
	}
	st, err := timeline.BuildState(
		[]timeline.Track{{ID: "tt", Type: timeline.TrackText, ClipIDs: []string{"t1"}}},
		[]timeline.Clip{cl},
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, coord.LoadState(st))
	coord.Drain()

	assert.Error(t, coord.TrimClip("t1", timeline.Span{From: 0, To: sec}, 0))
}

func TestMoveClipWholesalePush(t *testing.T) {
	store, eng, coord := seedSession(t)

	require.NoError(t, coord.MoveClip("a2", "tb"))
	coord.Drain()

	owner, _ := store.Snapshot().TrackOf("a2")
	assert.Equal(t, "tb", owner)
	mirrorOwner, _ := eng.Snapshot().TrackOf("a2")
	assert.Equal(t, "tb", mirrorOwner)

	// Unknown references stay quiet.
	assert.NoError(t, coord.MoveClip("ghost", "tb"))
	assert.NoError(t, coord.MoveClip("a1", "nowhere"))
}

func TestTrackLifecycleRealignsEngine(t *testing.T) {
	store, eng, coord := seedSession(t)

	require.NoError(t, coord.AddTrack(timeline.Track{Type: timeline.TrackAudio}, 0))
	coord.Drain()
	assert.Equal(t, []string{"c-1", "ta", "tb"}, store.Snapshot().TrackOrder())
	assert.Equal(t, []string{"c-1", "ta", "tb"}, eng.Snapshot().TrackOrder())

	require.NoError(t, coord.ReorderTracks([]string{"tb", "ta", "c-1"}))
	coord.Drain()
	assert.Equal(t, []string{"tb", "ta", "c-1"}, eng.Snapshot().TrackOrder())

	// Removing ta cascades a1 and a2 out of both sides.
	require.NoError(t, coord.RemoveTrack("ta"))
	coord.Drain()
	assert.Equal(t, []string{"tb", "c-1"}, store.Snapshot().TrackOrder())
	assert.Equal(t, []string{"tb", "c-1"}, eng.Snapshot().TrackOrder())
	_, ok := eng.Snapshot().Clip("a1")
	assert.False(t, ok)
	_, ok = store.Snapshot().Clip("a2")
	assert.False(t, ok)
}

func TestSplitSelectedDelegatesToEngine(t *testing.T) {
	store, _, coord := seedSession(t)

	coord.SelectClips([]string{"b1"})
	coord.Drain()
	require.NoError(t, coord.Seek(2*sec))
	coord.Drain()

	// Negative time means the engine's playhead, which sits at 2s
	// inside b1 [1s,4s).
	require.NoError(t, coord.SplitSelected(-1))
	coord.Drain()

	snap := store.Snapshot()
	left, _ := snap.Clip("b1")
	assert.Equal(t, timeline.Span{From: sec, To: 2 * sec}, left.Display)

	tb, _ := snap.Track("tb")
	require.Len(t, tb.ClipIDs, 2)
	assert.Equal(t, "b1", tb.ClipIDs[0])
	right, _ := snap.Clip(tb.ClipIDs[1])
	assert.Equal(t, timeline.Span{From: 2 * sec, To: 4 * sec}, right.Display)
}

func TestDuplicateSelectedDelegatesToEngine(t *testing.T) {
	store, _, coord := seedSession(t)

	coord.SelectClips([]string{"a1"})
	coord.Drain()
	require.NoError(t, coord.DuplicateSelected())
	coord.Drain()

	// The engine minted a fresh lane below ta and mirrored it back.
	snap := store.Snapshot()
	require.Equal(t, 3, snap.NumTracks())
	assert.Equal(t, "ta", snap.TrackOrder()[0])
	laneID := snap.TrackOrder()[1]
	lane, _ := snap.Track(laneID)
	require.Len(t, lane.ClipIDs, 1)

	dup, _ := snap.Clip(lane.ClipIDs[0])
	orig, _ := snap.Clip("a1")
	assert.Equal(t, orig.Display, dup.Display)
	assert.NotEqual(t, "a1", dup.ID)
}

func TestLoadStateValidatesBeforeMutation(t *testing.T) {
	store, _, coord := seedSession(t)
	rev := store.Rev()

	assert.Error(t, coord.LoadState(nil))
	assert.Equal(t, rev, store.Rev())
}

func TestSelectClipsDropsUnknownIDs(t *testing.T) {
	store, eng, coord := seedSession(t)

	coord.SelectClips([]string{"a1", "ghost"})
	coord.Drain()

	assert.Equal(t, []string{"a1"}, store.Snapshot().Selection())
	assert.Equal(t, []string{"a1"}, eng.Snapshot().Selection())
}

func TestMaxDurationTracksContent(t *testing.T) {
	_, _, coord := seedSession(t)
	assert.Equal(t, 5*sec, coord.MaxDuration())
}

func TestOpsAgainstClosedGate(t *testing.T) {
	store := timeline.NewStore()
	gate := media.NewGate(media.NewMemEngine(ident.Sequence("e")))
	coord := New(store, gate, WithIDs(ident.Sequence("c")))

	assert.ErrorIs(t, coord.Seek(sec), media.ErrUnavailable)
	assert.ErrorIs(t, coord.Play(), media.ErrUnavailable)
	assert.ErrorIs(t, coord.SplitSelected(-1), media.ErrUnavailable)
	assert.ErrorIs(t, coord.DuplicateSelected(), media.ErrUnavailable)
	assert.Zero(t, coord.MaxDuration())
}
