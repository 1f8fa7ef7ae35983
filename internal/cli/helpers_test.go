package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halvard/kinocut/internal/coordinator"
	"github.com/halvard/kinocut/internal/history"
	"github.com/halvard/kinocut/internal/ident"
	"github.com/halvard/kinocut/internal/media"
	"github.com/halvard/kinocut/internal/timeline"
)

// testProject is the known-good document every command test starts
// from: one video clip, one audio clip, one lane each.
const testProject = "testdata/project.json"

// writeProject writes a document fixture into a temp dir and returns
// its path.
func writeProject(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// newJournal records one live editing session into a fresh journal
// file and closes it with its content hash. Returns the journal path,
// the session id, and that hash.
func newJournal(t *testing.T) (string, int64, string) {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := history.Open(path)
	require.NoError(t, err)
	defer j.Close()

	sess, err := j.BeginSession(ctx, "cuts/intro.json", "")
	require.NoError(t, err)

	store := timeline.NewStore()
	live := coordinator.New(store, media.NewMemEngine(ident.Sequence("e")),
		coordinator.WithRecorder(sess))

	clip := timeline.Clip{
		ID:           "a1",
		Type:         timeline.ClipVideo,
		Display:      timeline.Span{From: 0, To: 2_000_000},
		Duration:     2_000_000,
		PlaybackRate: 1,
		Source:       "media/a1.mp4",
	}
	require.NoError(t, live.AddClip(clip, ""))
	live.Drain()
	require.NoError(t, live.Seek(1_000_000))
	live.Drain()

	hash, err := history.StateHash(store.Snapshot())
	require.NoError(t, err)
	require.NoError(t, j.CloseSession(ctx, sess.ID(), hash))

	return path, sess.ID(), hash
}
