package timeline

import (
	"fmt"
	"math"
)

// ClipType identifies what a clip renders. Video and audio clips play a
// window of source material and are the only trimmable types; everything
// else is synthesized and just occupies timeline space.
type ClipType string

const (
	ClipVideo      ClipType = "video"
	ClipAudio      ClipType = "audio"
	ClipImage      ClipType = "image"
	ClipText       ClipType = "text"
	ClipCaption    ClipType = "caption"
	ClipEffect     ClipType = "effect"
	ClipTransition ClipType = "transition"
)

// ValidClipTypes enumerates every accepted clip type.
var ValidClipTypes = map[ClipType]bool{
	ClipVideo:      true,
	ClipAudio:      true,
	ClipImage:      true,
	ClipText:       true,
	ClipCaption:    true,
	ClipEffect:     true,
	ClipTransition: true,
}

// Span is a half-open interval [From, To) in microseconds. Display spans
// are absolute timeline positions; trim spans index into source material.
type Span struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// Len returns To-From.
func (s Span) Len() int64 { return s.To - s.From }

// Valid reports whether the span is non-empty and ordered.
func (s Span) Valid() bool { return s.From < s.To }

// Contains reports whether t falls inside [From, To).
func (s Span) Contains(t int64) bool { return t >= s.From && t < s.To }

// Shift returns the span moved by delta.
func (s Span) Shift(delta int64) Span { return Span{From: s.From + delta, To: s.To + delta} }

// Geometry positions a clip's visual output in composition space.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rotate float64 `json:"rotate,omitempty"`
}

// TextStyle carries the parameters of text and caption clips.
type TextStyle struct {
	Text       string  `json:"text"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	Color      string  `json:"color,omitempty"`
	Background string  `json:"background,omitempty"`
	Align      string  `json:"align,omitempty"`
}

// EffectParams carries the parameters of effect and transition clips.
type EffectParams struct {
	Name   string             `json:"name"`
	Params map[string]float64 `json:"params,omitempty"`
}

// Clip is a single timed element on the timeline.
//
// Display is the clip's absolute timeline interval; its length always
// equals Duration. Media clips additionally carry a Trim window into the
// source material: the window's length divided by PlaybackRate is the
// displayed duration. Because times are integer microseconds that
// division rounds; the rounding is anchored on whichever window was
// authoritative for the last edit (trim edits derive duration, splits
// derive trim), so consistency is checked in both directions.
type Clip struct {
	ID           string   `json:"id"`
	Type         ClipType `json:"type"`
	Display      Span     `json:"display"`
	Trim         *Span    `json:"trim,omitempty"`
	Duration     int64    `json:"duration"`
	PlaybackRate float64  `json:"playbackRate"`

	// Source identifies the backing media and its full length in source
	// microseconds. Only meaningful for video and audio clips.
	Source         string `json:"src,omitempty"`
	SourceDuration int64  `json:"sourceDuration,omitempty"`

	Geometry *Geometry     `json:"geometry,omitempty"`
	Text     *TextStyle    `json:"text,omitempty"`
	Effect   *EffectParams `json:"effect,omitempty"`
}

// Trimmable reports whether the clip plays a window of source material.
func (c Clip) Trimmable() bool {
	return c.Type == ClipVideo || c.Type == ClipAudio
}

// Rate returns PlaybackRate, defaulting to 1 when unset.
func (c Clip) Rate() float64 {
	if c.PlaybackRate <= 0 {
		return 1
	}
	return c.PlaybackRate
}

// Clone returns a deep copy; mutations of the copy never reach the
// original's pointer payloads.
func (c Clip) Clone() Clip {
	out := c
	if c.Trim != nil {
		t := *c.Trim
		out.Trim = &t
	}
	if c.Geometry != nil {
		g := *c.Geometry
		out.Geometry = &g
	}
	if c.Text != nil {
		txt := *c.Text
		out.Text = &txt
	}
	if c.Effect != nil {
		fx := *c.Effect
		fx.Params = make(map[string]float64, len(c.Effect.Params))
		for k, v := range c.Effect.Params {
			fx.Params[k] = v
		}
		out.Effect = &fx
	}
	return out
}

// Validate checks the clip invariants:
//
//	0 <= Display.From < Display.To
//	Display.To - Display.From == Duration
//	0 <= Trim.From < Trim.To <= SourceDuration   (when trim present)
//	Duration and the trim window agree through PlaybackRate
func (c Clip) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("clip: missing id")
	}
	if !ValidClipTypes[c.Type] {
		return fmt.Errorf("clip %s: unknown type %q", c.ID, c.Type)
	}
	if c.PlaybackRate < 0 {
		return fmt.Errorf("clip %s: negative playback rate %v", c.ID, c.PlaybackRate)
	}
	if c.Display.From < 0 || !c.Display.Valid() {
		return fmt.Errorf("clip %s: invalid display interval [%d,%d)", c.ID, c.Display.From, c.Display.To)
	}
	if got := c.Display.Len(); got != c.Duration {
		return fmt.Errorf("clip %s: display length %d != duration %d", c.ID, got, c.Duration)
	}
	if c.Trim != nil {
		if !c.Trimmable() {
			return fmt.Errorf("clip %s: type %s cannot carry a trim window", c.ID, c.Type)
		}
		if c.Trim.From < 0 || !c.Trim.Valid() {
			return fmt.Errorf("clip %s: invalid trim interval [%d,%d)", c.ID, c.Trim.From, c.Trim.To)
		}
		if c.SourceDuration > 0 && c.Trim.To > c.SourceDuration {
			return fmt.Errorf("clip %s: trim end %d exceeds source duration %d", c.ID, c.Trim.To, c.SourceDuration)
		}
		if !trimConsistent(c.Duration, c.Trim.Len(), c.Rate()) {
			return fmt.Errorf("clip %s: duration %d disagrees with trim window %d at rate %v",
				c.ID, c.Duration, c.Trim.Len(), c.Rate())
		}
	}
	return nil
}

// trimConsistent accepts rounding anchored on either window: a trim edit
// derives duration = round(span/rate); a split derives span =
// round(duration*rate). Integer microseconds leave at most one unit of
// slack in each domain, so the windows must agree within rate+1 source
// microseconds.
func trimConsistent(duration, trimSpan int64, rate float64) bool {
	return math.Abs(float64(trimSpan)-float64(duration)*rate) <= rate+1
}

// DurationForTrim returns the displayed duration of a trim window at the
// given playback rate, rounded to the nearest microsecond.
func DurationForTrim(trimSpan int64, rate float64) int64 {
	if rate <= 0 {
		rate = 1
	}
	return int64(math.Round(float64(trimSpan) / rate))
}

// TrimSpanFor returns the source-window length that plays for the given
// displayed duration at the given rate, rounded to the nearest microsecond.
func TrimSpanFor(duration int64, rate float64) int64 {
	if rate <= 0 {
		rate = 1
	}
	return int64(math.Round(float64(duration) * rate))
}

// SplitAt cuts a clip at absolute timeline time t, strictly inside the
// display interval. The left part keeps the clip's id and ends at t; the
// right part starts at t and runs to the original end. A trim window is
// divided at the rate-scaled offset so both parts keep playing the same
// source material they covered before the cut. The right part's id is
// left empty for the caller to assign.
func SplitAt(c Clip, t int64) (left, right Clip, err error) {
	if t <= c.Display.From || t >= c.Display.To {
		return Clip{}, Clip{}, fmt.Errorf("split point %d outside clip %s display (%d,%d)",
			t, c.ID, c.Display.From, c.Display.To)
	}

	left = c.Clone()
	right = c.Clone()
	right.ID = ""

	left.Display = Span{From: c.Display.From, To: t}
	left.Duration = left.Display.Len()
	right.Display = Span{From: t, To: c.Display.To}
	right.Duration = right.Display.Len()

	if c.Trim != nil {
		cut := c.Trim.From + TrimSpanFor(t-c.Display.From, c.Rate())
		left.Trim = &Span{From: c.Trim.From, To: cut}
		right.Trim = &Span{From: cut, To: c.Trim.To}
	}
	return left, right, nil
}

func clipEqual(a, b Clip) bool {
	if a.ID != b.ID || a.Type != b.Type || a.Display != b.Display ||
		a.Duration != b.Duration || a.PlaybackRate != b.PlaybackRate ||
		a.Source != b.Source || a.SourceDuration != b.SourceDuration {
		return false
	}
	if !spanPtrEqual(a.Trim, b.Trim) {
		return false
	}
	if (a.Geometry == nil) != (b.Geometry == nil) || (a.Geometry != nil && *a.Geometry != *b.Geometry) {
		return false
	}
	if (a.Text == nil) != (b.Text == nil) || (a.Text != nil && *a.Text != *b.Text) {
		return false
	}
	if (a.Effect == nil) != (b.Effect == nil) || (a.Effect != nil && !effectEqual(*a.Effect, *b.Effect)) {
		return false
	}
	return true
}

func effectEqual(a, b EffectParams) bool {
	if a.Name != b.Name || len(a.Params) != len(b.Params) {
		return false
	}
	for k, v := range a.Params {
		if bv, ok := b.Params[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func spanPtrEqual(a, b *Span) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
