package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halvard/kinocut/internal/coordinator"
	"github.com/halvard/kinocut/internal/ident"
	"github.com/halvard/kinocut/internal/media"
	"github.com/halvard/kinocut/internal/project"
	"github.com/halvard/kinocut/internal/timeline"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output     string   // output path; stdout when empty
	Splits     []string // "clipID:microseconds" pairs, applied in order
	Duplicates []string // clip ids to duplicate, applied after splits
	Sort       bool     // order clip entries by display start
}

// ExportResult holds the export summary for JSON output.
type ExportResult struct {
	Path      string          `json:"path,omitempty"`
	ClipCount int             `json:"clip_count"`
	SizeBytes int             `json:"size_bytes"`
	Hash      string          `json:"hash"`
	Document  json.RawMessage `json:"document,omitempty"` // present when writing to stdout
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <project.json>",
		Short: "Normalize and re-encode a project document",
		Long: `Load a project document, optionally apply edits, and re-encode it
deterministically: tracks in display order, clips listed track by
track, stable field order.

Edits run through the same engine-backed session the interactive
editor uses. All --split flags apply first, then all --duplicate
flags; freshly minted clips get new unique ids.

Exit codes:
  0 - Success
  1 - Document invalid
  2 - Command error (file not found, bad flag, failed edit)

Examples:
  kinocut export project.json
  kinocut export project.json -o normalized.json
  kinocut export project.json --split intro:1000000 -o out.json
  kinocut export project.json --duplicate intro --sort -o out.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output path (default: stdout)")
	cmd.Flags().StringArrayVar(&opts.Splits, "split", nil, "split a clip: id:microseconds (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Duplicates, "duplicate", nil, "duplicate a clip by id (repeatable)")
	cmd.Flags().BoolVar(&opts.Sort, "sort", false, "order clip entries by display start")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
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

	final, err := applyEdits(st, opts, formatter)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			_ = formatter.Error(ErrCodeGeneric, exitErr.Error(), nil)
			return err
		}
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "export failed", err)
	}

	out := project.FromState(final, doc.Settings)
	if opts.Sort {
		project.SortClipsByStart(out.Clips)
	}

	encoded, err := project.Encode(out)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "export failed", err)
	}
	hash, err := project.DocumentHash(out)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "export failed", err)
	}

	return writeExport(formatter, opts, encoded, hash, len(out.Clips))
}

// applyEdits runs the requested splits and duplicates through a
// headless engine-backed session and returns the resulting snapshot.
// Without edits the loaded state passes through untouched.
func applyEdits(st *timeline.State, opts *ExportOptions, formatter *OutputFormatter) (*timeline.State, error) {
	if len(opts.Splits) == 0 && len(opts.Duplicates) == 0 {
		return st, nil
	}

	store := timeline.NewStore()
	engine := media.NewMemEngine(ident.Sequence("t"))
	coord := coordinator.New(store, engine)

	if err := coord.LoadState(st); err != nil {
		return nil, fmt.Errorf("failed to load document into session: %w", err)
	}
	coord.Drain()

	for _, spec := range opts.Splits {
		id, at, err := parseSplitSpec(spec)
		if err != nil {
			return nil, err
		}
		newID, err := coord.SplitClip(id, at)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("split %s failed", id), err)
		}
		// Unknown ids are a no-op for the interactive surface, but a
		// typo on the command line must not pass for success.
		if newID == "" {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("split %s failed: clip not found", id))
		}
		formatter.VerboseLog("Split %s at %dus -> %s", id, at, newID)
	}

	for _, id := range opts.Duplicates {
		newID, err := coord.DuplicateClip(id)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("duplicate %s failed", id), err)
		}
		if newID == "" {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("duplicate %s failed: clip not found", id))
		}
		formatter.VerboseLog("Duplicated %s -> %s", id, newID)
	}

	coord.Drain()
	return store.Snapshot(), nil
}

// parseSplitSpec parses an "id:microseconds" flag value. The last colon
// wins, so ids containing colons still parse.
func parseSplitSpec(spec string) (string, int64, error) {
	i := strings.LastIndex(spec, ":")
	if i <= 0 || i == len(spec)-1 {
		return "", 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid --split %q: expected id:microseconds", spec))
	}
	at, err := strconv.ParseInt(spec[i+1:], 10, 64)
	if err != nil {
		return "", 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid --split %q: expected id:microseconds", spec))
	}
	return spec[:i], at, nil
}

// writeExport delivers the encoded document to the chosen destination.
func writeExport(formatter *OutputFormatter, opts *ExportOptions, encoded []byte, hash string, clipCount int) error {
	if opts.Output == "" {
		if opts.Format == "json" {
			return formatter.Success(ExportResult{
				ClipCount: clipCount,
				SizeBytes: len(encoded),
				Hash:      hash,
				Document:  json.RawMessage(encoded),
			})
		}
		_, err := formatter.Writer.Write(encoded)
		return err
	}

	if err := os.WriteFile(opts.Output, encoded, 0644); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write output file", err)
	}

	if opts.Format == "json" {
		return formatter.Success(ExportResult{
			Path:      opts.Output,
			ClipCount: clipCount,
			SizeBytes: len(encoded),
			Hash:      hash,
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ Exported %s (%d clip(s), %d bytes)\n", opts.Output, clipCount, len(encoded))
	return nil
}
