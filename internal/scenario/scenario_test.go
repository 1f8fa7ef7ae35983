package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidScenario(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "rough_cut.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "rough_cut", sc.Name)
	assert.NotEmpty(t, sc.Description)
	assert.Empty(t, sc.Project)
	require.Len(t, sc.Steps, 4)
	assert.Equal(t, "add-clip", sc.Steps[0].Op)
	require.NotNil(t, sc.Steps[0].Clip)
	assert.Equal(t, int64(2000000), sc.Steps[0].Clip.Duration)
	assert.NotEmpty(t, sc.Assertions)
}

func TestLoadResolvesProjectPath(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "trim_and_cleanup.yaml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("testdata", "projects", "two_lane.json"), sc.Project)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "no_such_scenario.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: d
steps:
  - op: play
assertion:
  - type: playhead
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadRejectsInvalidScenarios(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing name",
			body: "description: d\nsteps:\n  - op: play\nassertions:\n  - type: playhead\n",
			want: "name is required",
		},
		{
			name: "no steps",
			body: "name: x\ndescription: d\nassertions:\n  - type: playhead\n",
			want: "steps list is required",
		},
		{
			name: "no assertions",
			body: "name: x\ndescription: d\nsteps:\n  - op: play\n",
			want: "assertions list is required",
		},
		{
			name: "unknown op",
			body: "name: x\ndescription: d\nsteps:\n  - op: teleport\nassertions:\n  - type: playhead\n",
			want: `unknown op "teleport"`,
		},
		{
			name: "expect_error on a surface op",
			body: "name: x\ndescription: d\nsteps:\n  - op: select\n    expect_error: boom\nassertions:\n  - type: playhead\n",
			want: "expect_error cannot apply to surface op",
		},
		{
			name: "add-clip without clip",
			body: "name: x\ndescription: d\nsteps:\n  - op: add-clip\nassertions:\n  - type: playhead\n",
			want: "clip is required",
		},
		{
			name: "split without a cut point",
			body: "name: x\ndescription: d\nsteps:\n  - op: split\n    id: a\nassertions:\n  - type: playhead\n",
			want: "at must be positive",
		},
		{
			name: "trim with inverted window",
			body: "name: x\ndescription: d\nsteps:\n  - op: trim\n    id: a\n    trim: {from: 5, to: 5}\nassertions:\n  - type: playhead\n",
			want: "trim window must be ordered",
		},
		{
			name: "unknown assertion type",
			body: "name: x\ndescription: d\nsteps:\n  - op: play\nassertions:\n  - type: vibes\n",
			want: `unknown assertion type "vibes"`,
		},
		{
			name: "journal_order without events",
			body: "name: x\ndescription: d\nsteps:\n  - op: play\nassertions:\n  - type: journal_order\n",
			want: "events list is required",
		},
		{
			name: "missing project file",
			body: "name: x\ndescription: d\nproject: projects/ghost.json\nsteps:\n  - op: play\nassertions:\n  - type: playhead\n",
			want: "project file not found",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeScenario(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestClipSpecDefaultsRate(t *testing.T) {
	c := ClipSpec{ID: "a", Type: "video", From: 0, Duration: 100, Src: "x.mp4"}.Clip()
	assert.Equal(t, float64(1), c.PlaybackRate)

	c = ClipSpec{ID: "a", Type: "video", From: 0, Duration: 100, Rate: 2, Src: "x.mp4"}.Clip()
	assert.Equal(t, float64(2), c.PlaybackRate)
}

func TestClipSpecCarriesTrimAndText(t *testing.T) {
	spec := ClipSpec{
		ID:       "cap",
		Type:     "text",
		From:     10,
		Duration: 90,
		Text:     "Title card",
	}
	c := spec.Clip()
	require.NotNil(t, c.Text)
	assert.Equal(t, "Title card", c.Text.Text)
	assert.Nil(t, c.Trim)

	spec = ClipSpec{
		ID:       "v",
		Type:     "video",
		From:     0,
		Duration: 100,
		Src:      "v.mp4",
		Trim:     &SpanSpec{From: 50, To: 150},
	}
	c = spec.Clip()
	require.NotNil(t, c.Trim)
	assert.Equal(t, int64(50), c.Trim.From)
	assert.Equal(t, int64(150), c.Trim.To)
}
