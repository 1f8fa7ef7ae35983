package config

import (
	"github.com/halvard/kinocut/internal/canvas"
	"github.com/halvard/kinocut/internal/snap"
	"github.com/halvard/kinocut/internal/timeunit"
	"github.com/halvard/kinocut/internal/viewport"
)

// Default returns a Config populated with the defaults the geometry
// packages already use, so an empty config file changes nothing.
func Default() *Config {
	lanes := canvas.DefaultLaneMetrics()
	return &Config{
		Timeline: TimelineConfig{
			PxPerSecond:     timeunit.DefaultBasePxPerSecond,
			SnapTolerancePx: snap.DefaultTolerancePx,
			MinClipWidthPx:  canvas.MinGlyphWidthPx,
			LaneHeightPx:    lanes.LaneHeight,
			LaneGapPx:       lanes.GlyphInsetY,
			MinZoom:         0.1,
			MaxZoom:         8,
		},
		Viewport: ViewportConfig{
			MarginLeftPx:  viewport.DefaultMarginLeftPx,
			MarginRightPx: viewport.DefaultMarginRightPx,
			MinThumbPx:    viewport.DefaultMinThumbPx,
		},
		Autosave: AutosaveConfig{
			Enabled: false,
		},
		TUI: TUIConfig{
			RefreshMs: 50,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with the defaults above.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Timeline
	if c.Timeline.PxPerSecond == 0 {
		c.Timeline.PxPerSecond = d.Timeline.PxPerSecond
	}
	if c.Timeline.SnapTolerancePx == 0 {
		c.Timeline.SnapTolerancePx = d.Timeline.SnapTolerancePx
	}
	if c.Timeline.MinClipWidthPx == 0 {
		c.Timeline.MinClipWidthPx = d.Timeline.MinClipWidthPx
	}
	if c.Timeline.LaneHeightPx == 0 {
		c.Timeline.LaneHeightPx = d.Timeline.LaneHeightPx
	}
	if c.Timeline.LaneGapPx == 0 {
		c.Timeline.LaneGapPx = d.Timeline.LaneGapPx
	}
	if c.Timeline.MinZoom == 0 {
		c.Timeline.MinZoom = d.Timeline.MinZoom
	}
	if c.Timeline.MaxZoom == 0 {
		c.Timeline.MaxZoom = d.Timeline.MaxZoom
	}

	// Viewport
	if c.Viewport.MarginLeftPx == 0 {
		c.Viewport.MarginLeftPx = d.Viewport.MarginLeftPx
	}
	if c.Viewport.MarginRightPx == 0 {
		c.Viewport.MarginRightPx = d.Viewport.MarginRightPx
	}
	if c.Viewport.MinThumbPx == 0 {
		c.Viewport.MinThumbPx = d.Viewport.MinThumbPx
	}

	// TUI
	if c.TUI.RefreshMs == 0 {
		c.TUI.RefreshMs = d.TUI.RefreshMs
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// LaneMetrics maps the timeline section onto canvas lane geometry.
func (c *Config) LaneMetrics() canvas.LaneMetrics {
	m := canvas.DefaultLaneMetrics()
	if c.Timeline.LaneHeightPx > 0 {
		m.LaneHeight = c.Timeline.LaneHeightPx
	}
	if c.Timeline.LaneGapPx > 0 {
		m.GlyphInsetY = c.Timeline.LaneGapPx
	}
	return m
}

// ViewportOptions maps the viewport section onto the scroller's config.
func (c *Config) ViewportOptions() viewport.Config {
	return viewport.Config{
		MarginLeft:  c.Viewport.MarginLeftPx,
		MarginRight: c.Viewport.MarginRightPx,
		MinThumb:    c.Viewport.MinThumbPx,
	}
}
