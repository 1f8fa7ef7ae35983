package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/halvard/kinocut/internal/project"
	"github.com/halvard/kinocut/internal/timeline"
)

// LoadError represents an error that occurred during document loading.
type LoadError struct {
	Code    string
	Message string
	Line    int // line in the document, when known
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDocument reads, validates, and assembles a project document.
// Schema violations are collected in one pass; file and consistency
// errors come back alone.
func LoadDocument(path string) (*timeline.State, *project.Document, []error) {
	data, errs := ReadDocumentFile(path)
	if len(errs) > 0 {
		return nil, nil, errs
	}
	return DecodeDocument(data)
}

// ReadDocumentFile reads a document from disk without decoding it.
func ReadDocumentFile(path string) ([]byte, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("project file not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing project file: %v", err)}}
	}
	if info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a file: %s", path)}}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeRead, Message: fmt.Sprintf("failed to read project file: %v", err)}}
	}
	return data, nil
}

// DecodeDocument validates raw document bytes and assembles the
// timeline. Split from LoadDocument so commands that hold the bytes
// already (inspect, export re-checks) skip the second read.
func DecodeDocument(data []byte) (*timeline.State, *project.Document, []error) {
	st, doc, err := project.DecodeState(data)
	if err != nil {
		return nil, nil, convertDecodeError(err)
	}
	return st, doc, nil
}

// convertDecodeError lifts codec errors into LoadErrors. Schema
// violations keep the E2xx codes the project package assigned and
// surface one error per violation; everything else maps to a single
// consistency error.
func convertDecodeError(err error) []error {
	var verrs project.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]error, 0, len(verrs))
		for _, ve := range verrs {
			out = append(out, &LoadError{
				Code:    ve.Code,
				Message: fmt.Sprintf("%s: %s", ve.Field, ve.Message),
				Line:    ve.Line,
			})
		}
		return out
	}
	return []error{&LoadError{Code: ErrCodeInconsistent, Message: err.Error()}}
}

// Error code constants - unified across all CLI commands. Schema
// violations pass through with the E2xx codes the project package
// assigns them.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = "E002" // Path not found
	ErrCodeRead         = "E003" // File read error
	ErrCodeInconsistent = "E004" // Document decodes to an inconsistent timeline
	ErrCodeWriteFailed  = "E005" // File write error
	ErrCodeExists       = "E006" // Refusing to overwrite an existing file

	// Media probe errors (validate --probe)
	ErrCodeProbeFailed   = "E101" // ffprobe failed for a clip source
	ErrCodeProbeMismatch = "E102" // probed duration disagrees with the document
	ErrCodeTrimOverrun   = "E103" // trim window exceeds the probed source duration

	// Journal errors (replay, sessions)
	ErrCodeJournal  = "E110" // journal open/read failure
	ErrCodeDiverged = "E111" // replayed hash disagrees with the journaled final hash

	// Scenario errors
	ErrCodeScenario = "E120" // scenario load or execution failure
)
