package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halvard/kinocut/internal/mediaprobe"
	"github.com/halvard/kinocut/internal/project"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Probe bool // verify clip sources with ffprobe
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                      `json:"valid"`
	Errors []project.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <project.json>",
		Short: "Validate a project document",
		Long: `Validate a project document against the schema and timeline invariants.

Checks JSON syntax, schema conformance, and cross-entity consistency
(clip/track references, display windows, trim windows). With --probe,
additionally verifies each clip's source file with ffprobe: the file
must exist, its duration must match sourceDuration when the document
records one, and trim windows must fit inside the real media.

Exit codes:
  0 - Document valid
  1 - Validation failed
  2 - Command error (file not found, unreadable)

Examples:
  kinocut validate project.json
  kinocut validate project.json --probe
  kinocut validate project.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Probe, "probe", false, "verify clip sources with ffprobe")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	data, readErrs := ReadDocumentFile(path)
	if len(readErrs) > 0 {
		var loadErr *LoadError
		if errors.As(readErrs[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputValidateError(formatter, ErrCodeGeneric, readErrs[0].Error())
	}

	formatter.VerboseLog("Read %d byte(s) from %s", len(data), path)

	validationErrors := collectDocumentErrors(data, opts.Probe, formatter)
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter)
}

// collectDocumentErrors runs the validation stages in order: schema
// first, then timeline assembly, then (optionally) source probing.
// Later stages only run when the earlier ones pass, so probe results
// never bury a schema violation.
func collectDocumentErrors(data []byte, probe bool, formatter *OutputFormatter) project.ValidationErrors {
	if verrs := project.ValidateDocument(data); len(verrs) > 0 {
		return verrs
	}

	_, doc, err := project.DecodeState(data)
	if err != nil {
		return project.ValidationErrors{{
			Field:   "document",
			Message: err.Error(),
			Code:    ErrCodeInconsistent,
		}}
	}

	if !probe {
		return nil
	}
	return probeSources(doc, formatter)
}

// probeSources checks every clip that names a source file against the
// real media on disk. Clips without a src (text, effects) are skipped.
func probeSources(doc *project.Document, formatter *OutputFormatter) project.ValidationErrors {
	var errs project.ValidationErrors

	for i, c := range doc.Clips {
		if c.Source == "" {
			continue
		}
		formatter.VerboseLog("Probing %s", c.Source)

		dur, err := mediaprobe.SourceDuration(c.Source)
		if err != nil {
			errs = append(errs, project.ValidationError{
				Field:   fmt.Sprintf("clips[%d].src", i),
				Message: err.Error(),
				Code:    ErrCodeProbeFailed,
			})
			continue
		}

		if c.SourceDuration > 0 && c.SourceDuration != dur {
			errs = append(errs, project.ValidationError{
				Field:   fmt.Sprintf("clips[%d].sourceDuration", i),
				Message: fmt.Sprintf("document says %dus, source %s is %dus", c.SourceDuration, c.Source, dur),
				Code:    ErrCodeProbeMismatch,
			})
		}
		if c.Trim != nil && c.Trim.To > dur {
			errs = append(errs, project.ValidationError{
				Field:   fmt.Sprintf("clips[%d].trim", i),
				Message: fmt.Sprintf("trim ends at %dus but source %s is %dus", c.Trim.To, c.Source, dur),
				Code:    ErrCodeTrimOverrun,
			})
		}
	}

	return errs
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter) error {
	if formatter.Format == "json" {
		result := ValidationResult{Valid: true}
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ Document valid")
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// File access problems are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs project.ValidationErrors) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s [%s]: %s\n\n", err.Field, err.Code, err.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
