package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes. Scripts branch on these, so the mapping is part
// of the CLI contract: 1 means the input was judged and found wanting,
// 2 means the command never got far enough to judge it.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // invalid document, failed scenario, diverged replay
	ExitCommandError = 2 // missing files, unreadable journal, bad flags
)

// ExitError carries the exit code a command wants the process to die
// with. Cobra's RunE surfaces it to main, which unwraps the code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError with no underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code and context to an existing error.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps an error to its process exit code. Errors that never
// chose a code count as failures, not command errors.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope every JSON-mode command emits: exactly one
// per invocation, status "ok" with a payload or "error" with a CLIError.
type CLIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError is the error half of the envelope. Code is one of the E###
// constants in loader.go; Hint, when present, tells the caller what to
// do about it.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Hint    string      `json:"hint,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// hintFor maps the error codes with an obvious remedy to one line of
// operator guidance. Codes without a remedy worth naming return "".
func hintFor(code string) string {
	switch code {
	case ErrCodeNotFound:
		return "check the project path, or run 'kinocut init' to create one"
	case ErrCodeExists:
		return "pass --force to overwrite"
	case ErrCodeProbeFailed:
		return "verify the source path and that ffprobe is on PATH"
	case ErrCodeProbeMismatch, ErrCodeTrimOverrun:
		return "re-probe the sources and update the document durations"
	case ErrCodeDiverged:
		return "the journal no longer matches this build; re-record or discard it"
	default:
		return ""
	}
}

// OutputFormatter renders command results as the JSON envelope or as
// human-readable text, per the --format flag. Diagnostic chatter goes to
// ErrWriter so JSON mode keeps stdout parseable; when ErrWriter is nil
// everything shares Writer.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// Success renders a result payload.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return f.emit(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error renders an error with its code, a hint when one is known for the
// code, and optional structured details.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	cliErr := &CLIError{
		Code:    code,
		Message: message,
		Hint:    hintFor(code),
		Details: details,
	}
	if f.Format == "json" {
		return f.emit(CLIResponse{Status: "error", Error: cliErr})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if cliErr.Hint != "" {
		fmt.Fprintf(f.Writer, "  hint: %s\n", cliErr.Hint)
	}
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "  details: %v\n", details)
	}
	return nil
}

// VerboseLog writes a diagnostic line, dropped unless --verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.diag(), format+"\n", args...)
}

// emit writes one envelope, indented the same way the scenario and
// validate reports are.
func (f *OutputFormatter) emit(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func (f *OutputFormatter) diag() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
