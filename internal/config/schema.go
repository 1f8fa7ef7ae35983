package config

// Config is the root configuration structure.
type Config struct {
	Timeline TimelineConfig `toml:"timeline"`
	Viewport ViewportConfig `toml:"viewport"`
	Autosave AutosaveConfig `toml:"autosave"`
	TUI      TUIConfig      `toml:"tui"`
	Log      LogConfig      `toml:"log"`
}

// TimelineConfig holds timeline geometry, zoom bounds, and snap
// settings. All pixel values are content-space pixels at zoom 1.
type TimelineConfig struct {
	PxPerSecond     float64 `toml:"px_per_second"`
	SnapTolerancePx float64 `toml:"snap_tolerance_px"`
	MinClipWidthPx  float64 `toml:"min_clip_width_px"`
	LaneHeightPx    float64 `toml:"lane_height_px"`
	LaneGapPx       float64 `toml:"lane_gap_px"`
	MinZoom         float64 `toml:"min_zoom"`
	MaxZoom         float64 `toml:"max_zoom"`
}

// ViewportConfig holds scroll viewport settings.
type ViewportConfig struct {
	MarginLeftPx  float64 `toml:"margin_left_px"`
	MarginRightPx float64 `toml:"margin_right_px"`
	MinThumbPx    float64 `toml:"min_thumb_px"`
}

// AutosaveConfig controls the session journal. Path left empty puts
// the journal under the user's data directory.
type AutosaveConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	RefreshMs int `toml:"refresh_ms"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
