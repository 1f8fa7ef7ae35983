package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/kinocut/internal/config"
	"github.com/halvard/kinocut/internal/coordinator"
	"github.com/halvard/kinocut/internal/ident"
	"github.com/halvard/kinocut/internal/media"
	"github.com/halvard/kinocut/internal/project"
	"github.com/halvard/kinocut/internal/timeline"
)

const sec = int64(1_000_000)

func mediaClip(id string, from, to, source int64) timeline.Clip {
	return timeline.Clip{
		ID:             id,
		Type:           timeline.ClipVideo,
		Display:        timeline.Span{From: from, To: to},
		Trim:           &timeline.Span{From: 0, To: to - from},
		Duration:       to - from,
		PlaybackRate:   1,
		Source:         "media/" + id + ".mp4",
		SourceDuration: source,
	}
}

// newEditor builds a live session with two video lanes and an editor
// model sized like a small terminal. The cursor starts on a1.
func newEditor(t *testing.T) (*Model, *timeline.Store, *media.MemEngine) {
	t.Helper()

	store := timeline.NewStore()
	eng := media.NewMemEngine(ident.Sequence("e"))
	coord := coordinator.New(store, eng, coordinator.WithIDs(ident.Sequence("c")))

	st, err := timeline.BuildState(
		[]timeline.Track{
			{ID: "ta", Type: timeline.TrackVideo, ClipIDs: []string{"a1"}},
			{ID: "tb", Type: timeline.TrackVideo, ClipIDs: []string{"b1"}},
		},
		[]timeline.Clip{
			mediaClip("a1", 0, 10*sec, 10*sec),
			mediaClip("b1", 12*sec, 15*sec, 20*sec),
		},
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, coord.LoadState(st))
	coord.Drain()

	m := New(Options{
		Coordinator: coord,
		Transport:   eng,
		Config:      config.Default(),
		Settings:    project.DefaultSettings,
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 24})
	m.Update(tea.KeyMsg{Type: tea.KeyTab}) // cursor onto a1
	require.Equal(t, "a1", m.cursor)
	return m, store, eng
}

func press(m *Model, k tea.KeyMsg) {
	m.Update(k)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSplitKeyCutsCursorClipAtPlayhead(t *testing.T) {
	m, store, _ := newEditor(t)

	press(m, runes("s")) // playhead at 0: split rejected, clip intact
	assert.Equal(t, 2, store.Snapshot().NumClips())
	assert.NotEmpty(t, m.status)

	require.NoError(t, m.coord.Seek(4*sec))
	m.coord.Drain()
	press(m, runes("s"))

	snap := store.Snapshot()
	assert.Equal(t, 3, snap.NumClips())
	left, ok := snap.Clip("a1")
	require.True(t, ok)
	assert.Equal(t, timeline.Span{From: 0, To: 4 * sec}, left.Display)
	assert.Equal(t, timeline.Span{From: 0, To: 4 * sec}, *left.Trim)

	ta, _ := snap.Track("ta")
	require.Len(t, ta.ClipIDs, 2)
	right, ok := snap.Clip(ta.ClipIDs[1])
	require.True(t, ok)
	assert.Equal(t, timeline.Span{From: 4 * sec, To: 10 * sec}, right.Display)
	assert.Equal(t, timeline.Span{From: 4 * sec, To: 10 * sec}, *right.Trim)
}

func TestNudgeRightMovesClipThroughGesturePipeline(t *testing.T) {
	m, store, eng := newEditor(t)

	// b1 has no snap neighbor within tolerance after a one-column move:
	// 10px at zoom 1 and 100px/s is exactly 100ms.
	press(m, tea.KeyMsg{Type: tea.KeyTab}) // cursor onto b1
	require.Equal(t, "b1", m.cursor)
	press(m, tea.KeyMsg{Type: tea.KeyShiftRight})

	cl, ok := store.Snapshot().Clip("b1")
	require.True(t, ok)
	assert.Equal(t, int64(12*sec+100_000), cl.Display.From)
	assert.Equal(t, 3*sec, cl.Duration)

	// The surface commit was forwarded: the engine mirror agrees.
	ecl, ok := eng.Snapshot().Clip("b1")
	require.True(t, ok)
	assert.Equal(t, cl.Display, ecl.Display)
}

func TestNudgeRoundTripsWithoutDrift(t *testing.T) {
	m, store, _ := newEditor(t)

	press(m, tea.KeyMsg{Type: tea.KeyShiftRight})
	cl, _ := store.Snapshot().Clip("a1")
	assert.Equal(t, int64(100_000), cl.Display.From)

	// Nudging back lands at exactly 0: the pixel/micro conversion is
	// round-trip stable, repeated edits accumulate no residue.
	press(m, tea.KeyMsg{Type: tea.KeyShiftLeft})
	cl, _ = store.Snapshot().Clip("a1")
	assert.Equal(t, int64(0), cl.Display.From)
}

func TestTrimRightClampsAtSourceDuration(t *testing.T) {
	m, store, _ := newEditor(t)

	// a1's trim window already spans its full 10s source; "]" asks for
	// one more column and must clamp, not error.
	press(m, runes("]"))

	cl, ok := store.Snapshot().Clip("a1")
	require.True(t, ok)
	assert.Equal(t, int64(10*sec), cl.Trim.To)
	assert.Equal(t, int64(10*sec), cl.Duration)
	assert.Empty(t, m.status)
}

func TestTrimRightGrowsWithinSource(t *testing.T) {
	m, store, _ := newEditor(t)

	press(m, tea.KeyMsg{Type: tea.KeyTab}) // b1: 3s trimmed of a 20s source
	require.Equal(t, "b1", m.cursor)
	press(m, runes("]"))

	cl, ok := store.Snapshot().Clip("b1")
	require.True(t, ok)
	assert.Equal(t, int64(3*sec+100_000), cl.Trim.To)
	assert.Equal(t, int64(3*sec+100_000), cl.Duration)
	assert.Equal(t, cl.Display.From+cl.Duration, cl.Display.To)
}

func TestDeleteKeyRemovesSelection(t *testing.T) {
	m, store, _ := newEditor(t)

	press(m, runes("x"))
	snap := store.Snapshot()
	_, ok := snap.Clip("a1")
	assert.False(t, ok)
	assert.Empty(t, snap.Selection())
	assert.Equal(t, 1, snap.NumClips())

	// Cursor fell back to nothing; deleting again is a no-op.
	press(m, runes("x"))
	assert.Equal(t, 1, store.Snapshot().NumClips())
}

func TestMoveToLaneBelowReassignsTrack(t *testing.T) {
	m, store, _ := newEditor(t)

	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("J")})

	snap := store.Snapshot()
	trackID, ok := snap.TrackOf("a1")
	require.True(t, ok)
	assert.Equal(t, "tb", trackID)
	tb, _ := snap.Track("tb")
	// Display order: a1 [0,10s) before b1 [12,15s).
	assert.Equal(t, []string{"a1", "b1"}, tb.ClipIDs)
}

func TestNewLaneKeyCreatesTrackBetweenLanes(t *testing.T) {
	m, store, _ := newEditor(t)

	press(m, runes("n"))

	snap := store.Snapshot()
	require.Equal(t, 3, snap.NumTracks())
	trackID, _ := snap.TrackOf("a1")
	assert.Equal(t, 1, snap.TrackIndex(trackID))
	assert.NotEqual(t, "ta", trackID)
	assert.NotEqual(t, "tb", trackID)
}

func TestDuplicateKeyClonesOntoNewLane(t *testing.T) {
	m, store, _ := newEditor(t)

	press(m, runes("d"))

	snap := store.Snapshot()
	assert.Equal(t, 3, snap.NumTracks())
	assert.Equal(t, 3, snap.NumClips())
}

func TestPlayPauseDrivesTransportTicks(t *testing.T) {
	m, _, _ := newEditor(t)

	press(m, tea.KeyMsg{Type: tea.KeySpace})
	m.Update(tickMsg{})
	assert.True(t, m.coord.IsPlaying())
	assert.Equal(t, m.refresh.Microseconds(), m.coord.Playhead())
	assert.True(t, m.autos.Active())

	press(m, tea.KeyMsg{Type: tea.KeySpace})
	m.Update(tickMsg{})
	assert.False(t, m.coord.IsPlaying())
	assert.False(t, m.autos.Active())

	head := m.coord.Playhead()
	m.Update(tickMsg{})
	assert.Equal(t, head, m.coord.Playhead(), "paused transport must not advance")
}

func TestZoomClampsToConfiguredBounds(t *testing.T) {
	m, _, _ := newEditor(t)

	for i := 0; i < 40; i++ {
		press(m, runes("+"))
	}
	assert.Equal(t, m.cfg.Timeline.MaxZoom, m.surface.Zoom())

	for i := 0; i < 80; i++ {
		press(m, runes("-"))
	}
	assert.Equal(t, m.cfg.Timeline.MinZoom, m.surface.Zoom())
}

func TestViewRendersLanesAndStatus(t *testing.T) {
	m, _, _ := newEditor(t)

	out := m.View()
	assert.Contains(t, out, "kinocut")
	assert.Contains(t, out, "2 tracks, 2 clips")
	assert.Contains(t, out, "a1.mp4")

	m.showHelp = true
	assert.Contains(t, m.View(), "split at playhead")
}
