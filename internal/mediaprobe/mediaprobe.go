// Package mediaprobe reads media file metadata through ffprobe. Only
// the CLI reaches for it; the timeline packages treat source durations
// as plain numbers carried by the document.
package mediaprobe

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// JSON output from ffprobe, reduced to the fields we read.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// prober runs ffprobe and returns its JSON output. Tests swap it to
// avoid needing an ffprobe binary.
var prober = ffmpeg.Probe

// SourceDuration returns the container duration of a media file in
// microseconds, rounded to the nearest microsecond.
func SourceDuration(path string) (int64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("media file not found: %s", path)
	}

	raw, err := prober(path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}
	return parseDuration(raw)
}

// parseDuration extracts format.duration from ffprobe JSON. ffprobe
// reports decimal seconds as a string.
func parseDuration(raw string) (int64, error) {
	var probe probeOutput
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if probe.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe output carries no duration")
	}

	secs, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable duration %q: %w", probe.Format.Duration, err)
	}
	if secs < 0 {
		return 0, fmt.Errorf("negative duration %q", probe.Format.Duration)
	}
	return int64(math.Round(secs * 1e6)), nil
}
