// Package timeunit converts between the three time domains the editor
// works in: screen pixels, absolute-timeline microseconds, and the
// seconds/milliseconds used at external boundaries.
//
// All internal time values are integer microseconds. Conversions round to
// the nearest integer in one place so that repeated edits cannot
// accumulate sub-microsecond drift. The pixel scale is
// BasePxPerSecond*zoom; a clip's playback rate stretches pixel deltas when
// they are mapped onto source material.
package timeunit

import (
	"fmt"
	"math"
	"time"
)

// MicrosPerSecond is the internal resolution of the timeline.
const MicrosPerSecond = 1_000_000

// DefaultBasePxPerSecond is the pixel width of one second at zoom 1.
const DefaultBasePxPerSecond = 100.0

// Converter maps pixels to microseconds and back for a fixed base scale.
// Zoom and playback rate are passed per call because both change while a
// session runs; the base scale is fixed at session start from config.
//
// The zero value is unusable; construct with New.
type Converter struct {
	basePxPerSecond float64
}

// New returns a Converter with the given base pixel-per-second scale.
// Non-positive bases fall back to DefaultBasePxPerSecond.
func New(basePxPerSecond float64) Converter {
	if basePxPerSecond <= 0 {
		basePxPerSecond = DefaultBasePxPerSecond
	}
	return Converter{basePxPerSecond: basePxPerSecond}
}

// BasePxPerSecond reports the configured base scale.
func (c Converter) BasePxPerSecond() float64 {
	return c.basePxPerSecond
}

// PixelsToMicros converts a pixel distance to timeline microseconds.
//
//	us = px / (base*zoom) * 1e6 * rate
//
// The playback rate maps a screen distance onto source material: dragging
// a trim handle N pixels on a 2x clip consumes twice the source time.
// Pass rate 1 for plain timeline distances. zoom and rate must be > 0.
// The result is rounded to the nearest microsecond.
func (c Converter) PixelsToMicros(px, zoom, rate float64) int64 {
	return int64(math.Round(px / (c.basePxPerSecond * zoom) * MicrosPerSecond * rate))
}

// MicrosToPixels is the exact inverse of PixelsToMicros:
//
//	px = us * (base*zoom) / (1e6 * rate)
//
// Round-tripping a pixel value through PixelsToMicros and back returns the
// original within one pixel for any zoom inside the configured bounds.
func (c Converter) MicrosToPixels(us int64, zoom, rate float64) float64 {
	return float64(us) * (c.basePxPerSecond * zoom) / (MicrosPerSecond * rate)
}

// FromSeconds converts boundary seconds to internal microseconds.
// Callers at the external boundary own this conversion; core packages
// never see seconds.
func FromSeconds(s float64) int64 {
	return int64(math.Round(s * MicrosPerSecond))
}

// ToSeconds converts internal microseconds to boundary seconds.
func ToSeconds(us int64) float64 {
	return float64(us) / MicrosPerSecond
}

// FromMillis converts boundary milliseconds to internal microseconds.
func FromMillis(ms float64) int64 {
	return int64(math.Round(ms * 1000))
}

// ToMillis converts internal microseconds to boundary milliseconds.
func ToMillis(us int64) float64 {
	return float64(us) / 1000
}

// ToDuration converts internal microseconds to a time.Duration.
func ToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}

// Timecode renders microseconds as h:mm:ss.mmm (hours omitted when zero),
// the format the CLI and TUI display.
func Timecode(us int64) string {
	if us < 0 {
		us = 0
	}
	ms := us / 1000
	h := ms / 3_600_000
	m := (ms % 3_600_000) / 60_000
	s := (ms % 60_000) / 1000
	frac := ms % 1000

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, frac)
	}
	return fmt.Sprintf("%02d:%02d.%03d", m, s, frac)
}
