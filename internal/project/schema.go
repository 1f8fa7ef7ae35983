package project

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"
)

// Validation error codes (E200-E299)
const (
	ErrDocumentSyntax = "E200" // input is not valid JSON
	ErrDocumentSchema = "E201" // document violates the schema
)

//go:embed schema.cue
var schemaSource string

const inputFilename = "document.json"

// ValidationError pinpoints one schema violation in a document.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors collects every violation found in one pass over the
// document (does not fail-fast).
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// ValidateDocument checks raw JSON against the embedded document schema
// without decoding it into Go values. Returns nil when the document is
// structurally valid.
func ValidateDocument(data []byte) ValidationErrors {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return toValidationErrors(err, ErrDocumentSchema)
	}
	def := schema.LookupPath(cue.ParsePath("#Document"))
	if err := def.Err(); err != nil {
		return toValidationErrors(err, ErrDocumentSchema)
	}

	expr, err := cuejson.Extract(inputFilename, data)
	if err != nil {
		return toValidationErrors(err, ErrDocumentSyntax)
	}
	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return toValidationErrors(err, ErrDocumentSyntax)
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true), cue.Final()); err != nil {
		return toValidationErrors(err, ErrDocumentSchema)
	}
	return nil
}

// toValidationErrors flattens a CUE error list into field-pathed
// validation errors. Line numbers point into the validated document,
// never into the schema.
func toValidationErrors(err error, code string) ValidationErrors {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return ValidationErrors{{Field: "document", Message: err.Error(), Code: code}}
	}

	out := make(ValidationErrors, 0, len(list))
	for _, e := range list {
		format, args := e.Msg()
		ve := ValidationError{
			Field:   fieldPath(e.Path()),
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		}
		positions := append([]token.Pos{e.Position()}, e.InputPositions()...)
		for _, pos := range positions {
			if pos.IsValid() && pos.Filename() == inputFilename {
				ve.Line = pos.Line()
				break
			}
		}
		out = append(out, ve)
	}
	return out
}

// fieldPath renders a CUE path as "tracks[1].clipIds" style, matching
// how the rest of the codebase reports indexed fields.
func fieldPath(parts []string) string {
	if len(parts) == 0 {
		return "document"
	}
	var b strings.Builder
	for _, p := range parts {
		if isIndex(p) {
			b.WriteString("[" + p + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(p)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
