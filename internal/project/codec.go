package project

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/halvard/kinocut/internal/timeline"
)

// Decode parses and validates a project document. Schema validation
// runs before anything is built, then the assembled timeline is checked
// against the cross-entity invariants, so a rejected document leaves no
// partial state anywhere.
func Decode(data []byte) (*Document, error) {
	if errs := ValidateDocument(data); len(errs) > 0 {
		return nil, errs
	}

	var doc Document
	if err := unmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("project: decode: %w", err)
	}
	if doc.Settings == (Settings{}) {
		doc.Settings = DefaultSettings
	}
	if _, err := doc.State(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DecodeState is Decode followed by assembly into a timeline snapshot.
func DecodeState(data []byte) (*timeline.State, *Document, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}
	st, err := doc.State()
	if err != nil {
		return nil, nil, err
	}
	return st, doc, nil
}

// Encode renders a document as indented JSON. The output is
// deterministic: struct fields keep declaration order and map-valued
// payloads marshal with sorted keys, so the same document always
// encodes to the same bytes.
func Encode(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("project: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// marshalDeterministic is Encode without indentation, shared by the
// codec and the hasher.
func marshalDeterministic(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}

func unmarshalStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
