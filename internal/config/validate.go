package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for errors. Run it after
// ApplyDefaults; several rules assume zero values have been filled.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Timeline.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("timeline: %w", err))
	}
	if err := c.Viewport.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("viewport: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks TimelineConfig for errors.
func (c *TimelineConfig) Validate() error {
	if c.PxPerSecond <= 0 {
		return errors.New("px_per_second must be positive")
	}
	if c.SnapTolerancePx < 0 {
		return errors.New("snap_tolerance_px must be non-negative")
	}
	if c.MinClipWidthPx < 0 {
		return errors.New("min_clip_width_px must be non-negative")
	}
	if c.LaneHeightPx <= 0 {
		return errors.New("lane_height_px must be positive")
	}
	if c.LaneGapPx < 0 {
		return errors.New("lane_gap_px must be non-negative")
	}
	if 2*c.LaneGapPx >= c.LaneHeightPx {
		return errors.New("lane_gap_px must leave room for glyphs inside the lane")
	}
	if c.MinZoom <= 0 {
		return errors.New("min_zoom must be positive")
	}
	if c.MaxZoom < c.MinZoom {
		return fmt.Errorf("max_zoom %g must be at least min_zoom %g", c.MaxZoom, c.MinZoom)
	}
	return nil
}

// Validate checks ViewportConfig for errors.
func (c *ViewportConfig) Validate() error {
	if c.MarginLeftPx < 0 || c.MarginRightPx < 0 {
		return errors.New("margins must be non-negative")
	}
	if c.MinThumbPx < 0 {
		return errors.New("min_thumb_px must be non-negative")
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	if c.RefreshMs < 0 {
		return errors.New("refresh_ms must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
