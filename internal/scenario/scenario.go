// Package scenario runs scripted timeline sessions end to end: a YAML
// file describes a sequence of editing operations, the runner executes
// them against a real coordinator, store, and memory engine, and
// assertions check the final timeline, the transport, and the recorded
// event journal. Golden trace files pin the full event order and the
// exported document for regression coverage.
//
// Everything a run produces is deterministic: both sides mint ids from
// fixed sequences, the queue drains between steps, and lane ids created
// by gutter drops derive from their triggering event.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/halvard/kinocut/internal/timeline"
)

// Scenario defines one scripted session.
type Scenario struct {
	// Name uniquely identifies the scenario; golden files are named
	// after it.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description"`

	// Project optionally names a document to load before the steps
	// run, relative to the scenario file. Empty starts from a blank
	// timeline.
	Project string `yaml:"project,omitempty"`

	// Steps is the operation script, executed in order with a full
	// queue drain after each step.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final timeline, transport, and journal.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scripted operation. Op selects the operation; the other
// fields parameterize it. Times are microseconds throughout.
//
// Coordinator ops: add-clip, remove-clip, trim, move, add-track,
// remove-track, reorder-tracks, split, duplicate, split-selected,
// duplicate-selected, seek, play, pause.
//
// Surface commits (routed through the interaction sink, like a
// pointer-up would): modify, move-to-track, move-to-gutter, select,
// delete.
type Step struct {
	Op string `yaml:"op"`

	Clip     *ClipSpec `yaml:"clip,omitempty"`
	ID       string    `yaml:"id,omitempty"`
	Name     string    `yaml:"name,omitempty"`
	Track    string    `yaml:"track,omitempty"`
	Index    *int      `yaml:"index,omitempty"`
	At       int64     `yaml:"at,omitempty"`
	From     int64     `yaml:"from,omitempty"`
	Duration int64     `yaml:"duration,omitempty"`
	Trim     *SpanSpec `yaml:"trim,omitempty"`
	IDs      []string  `yaml:"ids,omitempty"`
	Order    []string  `yaml:"order,omitempty"`
	Type     string    `yaml:"type,omitempty"`

	// ExpectError inverts the step: it passes only when the operation
	// fails with an error containing this substring. Surface commits
	// never report errors, so it only applies to coordinator ops.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// index returns the step's index, or def when the file omitted it.
// add-track defaults to append; gutter drops default to the top.
func (s *Step) index(def int) int {
	if s.Index == nil {
		return def
	}
	return *s.Index
}

// ClipSpec describes a clip created by add-clip. Rate defaults to 1.
type ClipSpec struct {
	ID             string    `yaml:"id,omitempty"`
	Type           string    `yaml:"type"`
	From           int64     `yaml:"from"`
	Duration       int64     `yaml:"duration"`
	Rate           float64   `yaml:"rate,omitempty"`
	Src            string    `yaml:"src,omitempty"`
	SourceDuration int64     `yaml:"sourceDuration,omitempty"`
	Trim           *SpanSpec `yaml:"trim,omitempty"`
	Text           string    `yaml:"text,omitempty"`
}

// Clip materializes the spec as a timeline clip.
func (cs ClipSpec) Clip() timeline.Clip {
	c := timeline.Clip{
		ID:             cs.ID,
		Type:           timeline.ClipType(cs.Type),
		Display:        timeline.Span{From: cs.From, To: cs.From + cs.Duration},
		Duration:       cs.Duration,
		PlaybackRate:   cs.Rate,
		Source:         cs.Src,
		SourceDuration: cs.SourceDuration,
	}
	if c.PlaybackRate == 0 {
		c.PlaybackRate = 1
	}
	if cs.Trim != nil {
		sp := cs.Trim.Span()
		c.Trim = &sp
	}
	if cs.Text != "" {
		c.Text = &timeline.TextStyle{Text: cs.Text}
	}
	return c
}

// SpanSpec is a half-open microsecond interval in YAML form.
type SpanSpec struct {
	From int64 `yaml:"from"`
	To   int64 `yaml:"to"`
}

// Span converts to the timeline representation.
func (s SpanSpec) Span() timeline.Span {
	return timeline.Span{From: s.From, To: s.To}
}

// Assertion validates the final timeline state, the transport, or the
// journal. Type selects the check; the other fields parameterize it.
type Assertion struct {
	// Type is one of: track_order, clip_on_track, clip_span,
	// selection, clip_count, playhead, journal_contains,
	// journal_order, journal_count.
	Type string `yaml:"type"`

	Clip    string    `yaml:"clip,omitempty"`
	Track   string    `yaml:"track,omitempty"`
	Tracks  []string  `yaml:"tracks,omitempty"`
	From    int64     `yaml:"from,omitempty"`
	To      int64     `yaml:"to,omitempty"`
	Trim    *SpanSpec `yaml:"trim,omitempty"`
	IDs     []string  `yaml:"ids,omitempty"`
	Count   int       `yaml:"count,omitempty"`
	At      int64     `yaml:"at,omitempty"`
	Playing *bool     `yaml:"playing,omitempty"`
	Source  string    `yaml:"source,omitempty"`
	Event   string    `yaml:"event,omitempty"`
	Events  []string  `yaml:"events,omitempty"`
}

// Assertion type constants.
const (
	AssertTrackOrder      = "track_order"
	AssertClipOnTrack     = "clip_on_track"
	AssertClipSpan        = "clip_span"
	AssertSelection       = "selection"
	AssertClipCount       = "clip_count"
	AssertPlayhead        = "playhead"
	AssertJournalContains = "journal_contains"
	AssertJournalOrder    = "journal_order"
	AssertJournalCount    = "journal_count"
)

// surfaceOps are the steps that commit through the interaction sink.
var surfaceOps = map[string]bool{
	"modify":         true,
	"move-to-track":  true,
	"move-to-gutter": true,
	"select":         true,
	"delete":         true,
}

// Load reads and parses a scenario YAML file. Unknown fields are
// rejected (catches typos like "assertion:" for "assertions:"), the
// project path is resolved relative to the scenario file, and every
// step and assertion is validated before anything runs.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if sc.Project != "" && !filepath.IsAbs(sc.Project) {
		sc.Project = filepath.Join(filepath.Dir(path), sc.Project)
	}

	if err := validate(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

func validate(sc *Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if sc.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(sc.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if sc.Project != "" {
		if _, err := os.Stat(sc.Project); os.IsNotExist(err) {
			return fmt.Errorf("project file not found: %s", sc.Project)
		}
	}

	for i := range sc.Steps {
		if err := validateStep(i, &sc.Steps[i]); err != nil {
			return err
		}
	}
	for i := range sc.Assertions {
		if err := validateAssertion(i, &sc.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, s *Step) error {
	if s.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", i)
	}
	if s.ExpectError != "" && surfaceOps[s.Op] {
		return fmt.Errorf("steps[%d]: expect_error cannot apply to surface op %q", i, s.Op)
	}

	switch s.Op {
	case "add-clip":
		if s.Clip == nil {
			return fmt.Errorf("steps[%d]: clip is required for add-clip", i)
		}
		if s.Clip.Type == "" {
			return fmt.Errorf("steps[%d]: clip.type is required", i)
		}
		if s.Clip.Duration <= 0 {
			return fmt.Errorf("steps[%d]: clip.duration must be positive", i)
		}
	case "remove-clip", "remove-track", "duplicate":
		if s.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for %s", i, s.Op)
		}
	case "modify":
		if s.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for modify", i)
		}
		if s.Duration <= 0 {
			return fmt.Errorf("steps[%d]: duration must be positive for modify", i)
		}
	case "trim":
		if s.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for trim", i)
		}
		if s.Trim == nil {
			return fmt.Errorf("steps[%d]: trim window is required for trim", i)
		}
		if s.Trim.To <= s.Trim.From {
			return fmt.Errorf("steps[%d]: trim window must be ordered (from < to)", i)
		}
	case "move", "move-to-track":
		if s.ID == "" || s.Track == "" {
			return fmt.Errorf("steps[%d]: id and track are required for %s", i, s.Op)
		}
	case "move-to-gutter":
		if s.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for move-to-gutter", i)
		}
	case "add-track":
		if s.Type == "" {
			return fmt.Errorf("steps[%d]: type is required for add-track", i)
		}
	case "reorder-tracks":
		if len(s.Order) == 0 {
			return fmt.Errorf("steps[%d]: order is required for reorder-tracks", i)
		}
	case "delete":
		if len(s.IDs) == 0 {
			return fmt.Errorf("steps[%d]: ids is required for delete", i)
		}
	case "split":
		if s.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for split", i)
		}
		if s.At <= 0 {
			return fmt.Errorf("steps[%d]: at must be positive for split", i)
		}
	case "select", "split-selected", "duplicate-selected", "seek", "play", "pause":
		// No required fields.
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, s.Op)
	}
	return nil
}

func validateAssertion(i int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", i)
	case AssertTrackOrder:
		if len(a.Tracks) == 0 {
			return fmt.Errorf("assertions[%d]: tracks list is required for track_order", i)
		}
	case AssertClipOnTrack:
		if a.Clip == "" || a.Track == "" {
			return fmt.Errorf("assertions[%d]: clip and track are required for clip_on_track", i)
		}
	case AssertClipSpan:
		if a.Clip == "" {
			return fmt.Errorf("assertions[%d]: clip is required for clip_span", i)
		}
		if a.To <= a.From {
			return fmt.Errorf("assertions[%d]: span must be ordered (from < to)", i)
		}
	case AssertSelection:
		// Empty ids asserts an empty selection.
	case AssertClipCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", i)
		}
	case AssertPlayhead:
		if a.At < 0 {
			return fmt.Errorf("assertions[%d]: at must be non-negative", i)
		}
	case AssertJournalContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for journal_contains", i)
		}
	case AssertJournalOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for journal_order", i)
		}
	case AssertJournalCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for journal_count", i)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", i)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
	}
	return nil
}
