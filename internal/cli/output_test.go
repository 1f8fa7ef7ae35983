package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorEnvelopeCarriesHintForKnownCodes(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error(ErrCodeExists, "project.json already exists", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeExists, resp.Error.Code)
	assert.Equal(t, "pass --force to overwrite", resp.Error.Hint)

	// Codes without a remedy worth naming carry no hint.
	buf.Reset()
	require.NoError(t, f.Error(ErrCodeGeneric, "boom", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Empty(t, resp.Error.Hint)
}

func TestErrorTextModePrintsHintLine(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Error(ErrCodeNotFound, "project file not found: x.json", nil))
	assert.Contains(t, buf.String(), "Error [E002]")
	assert.Contains(t, buf.String(), "hint: check the project path")
}

func TestVerboseLogGoesToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	diag := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}

	f.VerboseLog("probing %s", "a1.mp4")
	assert.Empty(t, out.String(), "diagnostics must not pollute the JSON stream")
	assert.Equal(t, "probing a1.mp4\n", diag.String())

	f.Verbose = false
	f.VerboseLog("dropped")
	assert.Equal(t, "probing a1.mp4\n", diag.String(), "nothing written while quiet")
}

func TestGetExitCodeDefaultsToFailure(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("untyped")))

	wrapped := WrapExitError(ExitFailure, "validation", errors.New("cause"))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Equal(t, "validation: cause", wrapped.Error())
}
