package scenario

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/halvard/kinocut/internal/canvas"
	"github.com/halvard/kinocut/internal/coordinator"
	"github.com/halvard/kinocut/internal/ident"
	"github.com/halvard/kinocut/internal/media"
	"github.com/halvard/kinocut/internal/project"
	"github.com/halvard/kinocut/internal/timeline"
)

// Result captures everything a finished run produced: the journal, the
// final timeline, the exported document, and any step or assertion
// failures. Pass is true only when Errors is empty.
type Result struct {
	Scenario *Scenario
	Pass     bool
	Errors   []string

	Journal  []coordinator.Record
	Final    *timeline.State
	Document []byte
	Hash     string
	Playhead int64
	Playing  bool
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// memRecorder journals into memory, in sequence order.
type memRecorder struct {
	records []coordinator.Record
}

func (r *memRecorder) Append(rec coordinator.Record) error {
	r.records = append(r.records, rec)
	return nil
}

// Run executes the scenario against a fresh session: an empty store, a
// memory engine, and a coordinator wired between them. Both sides mint
// sequential ids ("e-N" engine side, "c-N" coordinator side) so runs
// are reproducible. The queue drains fully after every step, the same
// settle point an interactive session reaches between gestures.
//
// The returned error covers infrastructure failures only (unreadable
// project, encode failure). Step and assertion failures land in
// Result.Errors.
func Run(sc *Scenario) (*Result, error) {
	res := &Result{Scenario: sc}

	store := timeline.NewStore()
	engine := media.NewMemEngine(ident.Sequence("e"))
	rec := &memRecorder{}
	coord := coordinator.New(store, engine,
		coordinator.WithIDs(ident.Sequence("c")),
		coordinator.WithRecorder(rec),
		coordinator.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	settings := project.DefaultSettings
	if sc.Project != "" {
		data, err := os.ReadFile(sc.Project)
		if err != nil {
			return nil, fmt.Errorf("failed to read project file: %w", err)
		}
		st, doc, err := project.DecodeState(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode project: %w", err)
		}
		settings = doc.Settings
		if err := coord.LoadState(st); err != nil {
			return nil, fmt.Errorf("failed to load project: %w", err)
		}
		coord.Drain()
	}

	sink := coord.SurfaceSink()
	for i := range sc.Steps {
		step := &sc.Steps[i]
		err := runStep(coord, sink, step)
		coord.Drain()

		if step.ExpectError != "" {
			switch {
			case err == nil:
				res.addError("steps[%d] (%s): expected error containing %q, got none", i, step.Op, step.ExpectError)
			case !strings.Contains(err.Error(), step.ExpectError):
				res.addError("steps[%d] (%s): expected error containing %q, got %q", i, step.Op, step.ExpectError, err)
			}
			continue
		}
		if err != nil {
			// A failed step poisons everything after it; stop here
			// and surface the state as it stood for debugging.
			res.addError("steps[%d] (%s): %v", i, step.Op, err)
			if ferr := finishResult(res, coord, store, rec, settings); ferr != nil {
				return nil, ferr
			}
			return res, nil
		}
	}

	if err := finishResult(res, coord, store, rec, settings); err != nil {
		return nil, err
	}
	res.Errors = append(res.Errors, EvaluateAssertions(res, sc.Assertions)...)
	res.Pass = len(res.Errors) == 0
	return res, nil
}

func finishResult(res *Result, coord *coordinator.Coordinator, store *timeline.Store, rec *memRecorder, settings project.Settings) error {
	snap := store.Snapshot()
	res.Final = snap
	res.Journal = rec.records
	res.Playhead = coord.Playhead()
	res.Playing = coord.IsPlaying()

	doc := project.FromState(snap, settings)
	data, err := project.Encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode final document: %w", err)
	}
	res.Document = data

	hash, err := project.DocumentHash(doc)
	if err != nil {
		return fmt.Errorf("failed to hash final document: %w", err)
	}
	res.Hash = hash
	return nil
}

// runStep dispatches one scripted operation. Coordinator ops call the
// session API and report its error; surface ops commit through the
// sink and never fail here, any trouble shows up in the journal and
// the final state instead.
func runStep(coord *coordinator.Coordinator, sink func(canvas.Event), s *Step) error {
	switch s.Op {
	case "add-clip":
		return coord.AddClip(s.Clip.Clip(), s.Track)
	case "remove-clip":
		return coord.RemoveClip(s.ID)
	case "trim":
		return coord.TrimClip(s.ID, s.Trim.Span(), s.From)
	case "move":
		return coord.MoveClip(s.ID, s.Track)
	case "add-track":
		t := timeline.Track{ID: s.ID, Name: s.Name, Type: timeline.TrackType(s.Type)}
		return coord.AddTrack(t, s.index(-1))
	case "remove-track":
		return coord.RemoveTrack(s.ID)
	case "reorder-tracks":
		return coord.ReorderTracks(s.Order)
	case "split":
		_, err := coord.SplitClip(s.ID, s.At)
		return err
	case "duplicate":
		_, err := coord.DuplicateClip(s.ID)
		return err
	case "split-selected":
		return coord.SplitSelected(s.At)
	case "duplicate-selected":
		return coord.DuplicateSelected()
	case "seek":
		return coord.Seek(s.At)
	case "play":
		return coord.Play()
	case "pause":
		return coord.Pause()

	case "modify":
		ev := canvas.ClipModified{ID: s.ID, DisplayFrom: s.From, Duration: s.Duration}
		if s.Trim != nil {
			sp := s.Trim.Span()
			ev.Trim = &sp
		}
		sink(ev)
	case "move-to-track":
		sink(canvas.ClipMovedToTrack{ID: s.ID, TrackID: s.Track})
	case "move-to-gutter":
		sink(canvas.ClipMovedToNewTrack{ID: s.ID, TargetIndex: s.index(0)})
	case "select":
		sink(canvas.SelectionChanged{IDs: s.IDs})
	case "delete":
		sink(canvas.ClipsRemoved{IDs: s.IDs})
	}
	return nil
}
