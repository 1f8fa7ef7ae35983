package canvas

import (
	"path"

	"github.com/halvard/kinocut/internal/timeline"
)

// PaintSpec describes how a glyph paints, independent of any rendering
// toolkit. FillToken is a stable style key a renderer maps to its own
// colors; Label derives the text drawn on the glyph body from the clip.
type PaintSpec struct {
	FillToken   string
	Badge       string
	ShowWave    bool
	ShowFilm    bool
	TrimHandles bool
	Label       func(c timeline.Clip) string
}

// paintTable is the single dispatch point from clip type to glyph
// appearance. Supporting a new clip type means adding one row; no other
// code in the painting path switches on type.
var paintTable = map[timeline.ClipType]PaintSpec{
	timeline.ClipVideo: {
		FillToken:   "clip.video",
		Badge:       "V",
		ShowFilm:    true,
		TrimHandles: true,
		Label:       sourceLabel,
	},
	timeline.ClipAudio: {
		FillToken:   "clip.audio",
		Badge:       "A",
		ShowWave:    true,
		TrimHandles: true,
		Label:       sourceLabel,
	},
	timeline.ClipImage: {
		FillToken: "clip.image",
		Badge:     "I",
		Label:     sourceLabel,
	},
	timeline.ClipText: {
		FillToken: "clip.text",
		Badge:     "T",
		Label:     textLabel,
	},
	timeline.ClipCaption: {
		FillToken: "clip.caption",
		Badge:     "C",
		Label:     textLabel,
	},
	timeline.ClipEffect: {
		FillToken: "clip.effect",
		Badge:     "FX",
		Label:     effectLabel,
	},
	timeline.ClipTransition: {
		FillToken: "clip.transition",
		Badge:     "TR",
		Label:     effectLabel,
	},
}

var fallbackPaint = PaintSpec{
	FillToken: "clip.unknown",
	Badge:     "?",
	Label:     func(c timeline.Clip) string { return string(c.Type) },
}

// PaintFor returns the paint strategy for a clip type. Unknown types get
// a neutral fallback rather than a panic; the glyph still renders.
func PaintFor(t timeline.ClipType) PaintSpec {
	if spec, ok := paintTable[t]; ok {
		return spec
	}
	return fallbackPaint
}

func sourceLabel(c timeline.Clip) string {
	if c.Source == "" {
		return string(c.Type)
	}
	return path.Base(c.Source)
}

func textLabel(c timeline.Clip) string {
	if c.Text == nil || c.Text.Text == "" {
		return string(c.Type)
	}
	return c.Text.Text
}

func effectLabel(c timeline.Clip) string {
	if c.Effect == nil || c.Effect.Name == "" {
		return string(c.Type)
	}
	return c.Effect.Name
}
