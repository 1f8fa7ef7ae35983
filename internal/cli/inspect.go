package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/halvard/kinocut/internal/project"
	"github.com/halvard/kinocut/internal/timeline"
)

// ClipSummary is one clip row in the inspect output.
type ClipSummary struct {
	ID       string            `json:"id"`
	Type     timeline.ClipType `json:"type"`
	From     int64             `json:"from"`
	To       int64             `json:"to"`
	Duration int64             `json:"duration"`
	Rate     float64           `json:"playbackRate"`
	Trim     *timeline.Span    `json:"trim,omitempty"`
	Src      string            `json:"src,omitempty"`
}

// TrackSummary is one track row in the inspect output.
type TrackSummary struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Type  timeline.TrackType `json:"type"`
	Muted bool               `json:"muted,omitempty"`
	Clips []ClipSummary      `json:"clips"`
}

// InspectResult holds the document summary.
type InspectResult struct {
	Path      string           `json:"path"`
	SizeBytes int64            `json:"size_bytes"`
	Hash      string           `json:"hash"`
	Settings  project.Settings `json:"settings"`
	Duration  int64            `json:"duration"` // end of the furthest clip, in microseconds
	ClipCount int              `json:"clip_count"`
	Tracks    []TrackSummary   `json:"tracks"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <project.json>",
		Short: "Summarize a project document",
		Long: `Summarize a project document: settings, content hash, and the clips
on each track in display order.

Exit codes:
  0 - Success
  1 - Document invalid
  2 - Command error (file not found, unreadable)

Examples:
  kinocut inspect project.json
  kinocut inspect project.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, readErrs := ReadDocumentFile(path)
	if len(readErrs) > 0 {
		var loadErr *LoadError
		if errors.As(readErrs[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Message)
		}
		_ = formatter.Error(ErrCodeGeneric, readErrs[0].Error(), nil)
		return NewExitError(ExitCommandError, readErrs[0].Error())
	}

	st, doc, decodeErrs := DecodeDocument(data)
	if len(decodeErrs) > 0 {
		return outputLoadErrors(formatter, decodeErrs)
	}

	hash, err := project.DocumentHash(doc)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	result := buildInspectResult(path, int64(len(data)), hash, st, doc)

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputInspectText(formatter, result)
}

// buildInspectResult flattens the state into the summary shape. Tracks
// keep display order; clips keep their track's display order.
func buildInspectResult(path string, size int64, hash string, st *timeline.State, doc *project.Document) InspectResult {
	result := InspectResult{
		Path:      path,
		SizeBytes: size,
		Hash:      hash,
		Settings:  doc.Settings,
		Duration:  st.MaxEnd(),
		ClipCount: st.NumClips(),
		Tracks:    make([]TrackSummary, 0, st.NumTracks()),
	}

	for _, t := range st.Tracks() {
		ts := TrackSummary{
			ID:    t.ID,
			Name:  t.Name,
			Type:  t.Type,
			Muted: t.Muted,
			Clips: make([]ClipSummary, 0, len(t.ClipIDs)),
		}
		for _, c := range st.ClipsOn(t.ID) {
			cs := ClipSummary{
				ID:       c.ID,
				Type:     c.Type,
				From:     c.Display.From,
				To:       c.Display.To,
				Duration: c.Duration,
				Rate:     c.Rate(),
				Src:      c.Source,
			}
			if c.Trim != nil {
				trim := *c.Trim
				cs.Trim = &trim
			}
			ts.Clips = append(ts.Clips, cs)
		}
		result.Tracks = append(result.Tracks, ts)
	}

	return result
}

// outputInspectText renders the summary for humans.
func outputInspectText(formatter *OutputFormatter, r InspectResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Project: %s (%s)\n", r.Path, humanize.IBytes(uint64(r.SizeBytes)))
	fmt.Fprintf(w, "Hash: %s\n", shortHash(r.Hash))
	fmt.Fprintf(w, "Settings: %dx%d @ %g fps, background %s\n",
		r.Settings.Width, r.Settings.Height, r.Settings.FPS, r.Settings.BGColor)
	fmt.Fprintf(w, "Duration: %s (%s us)\n", formatUS(r.Duration), humanize.Comma(r.Duration))
	fmt.Fprintf(w, "Content: %d track(s), %d clip(s)\n", len(r.Tracks), r.ClipCount)

	for _, t := range r.Tracks {
		fmt.Fprintln(w)
		label := t.Name
		if label == "" {
			label = "(unnamed)"
		}
		muted := ""
		if t.Muted {
			muted = ", muted"
		}
		fmt.Fprintf(w, "Track %s %q (%s, %d clip(s)%s)\n", t.ID, label, t.Type, len(t.Clips), muted)

		for _, c := range t.Clips {
			fmt.Fprintf(w, "  %-14s %-7s %s - %s (%s)", c.ID, c.Type, formatUS(c.From), formatUS(c.To), formatUS(c.Duration))
			if c.Trim != nil {
				fmt.Fprintf(w, " trim %s-%s", formatUS(c.Trim.From), formatUS(c.Trim.To))
			}
			if c.Rate != 1 {
				fmt.Fprintf(w, " x%g", c.Rate)
			}
			if c.Src != "" {
				fmt.Fprintf(w, "  %s", c.Src)
			}
			fmt.Fprintln(w)
		}
	}

	return nil
}

// outputLoadErrors renders decode failures the same way validate does:
// schema and consistency problems are validation failures, not command
// errors.
func outputLoadErrors(formatter *OutputFormatter, errs []error) error {
	verrs := make(project.ValidationErrors, 0, len(errs))
	for _, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			verrs = append(verrs, project.ValidationError{
				Field:   "document",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    loadErr.Line,
			})
			continue
		}
		verrs = append(verrs, project.ValidationError{
			Field:   "document",
			Message: err.Error(),
			Code:    ErrCodeGeneric,
		})
	}
	return outputValidationErrors(formatter, verrs)
}

// formatUS renders a microsecond timestamp as a short duration ("2.5s").
func formatUS(us int64) string {
	d := time.Duration(us) * time.Microsecond
	return d.Truncate(time.Millisecond).String()
}

// shortHash abbreviates a content hash for display.
func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16] + "…"
	}
	return h
}
