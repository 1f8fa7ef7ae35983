package scenario

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceText renders the run as a stable text trace: the transport
// position, every journaled record in order, and the exported document.
// Payloads and hashes are deliberately left out so a trace can be
// derived by hand from the scenario file.
func (r *Result) TraceText() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "scenario: %s\n", r.Scenario.Name)
	fmt.Fprintf(&b, "playhead: %d\n", r.Playhead)
	fmt.Fprintf(&b, "playing: %t\n", r.Playing)
	b.WriteString("journal:\n")
	for _, rec := range r.Journal {
		fmt.Fprintf(&b, "  %d %s %s\n", rec.Seq, rec.Source, rec.Name)
	}
	b.WriteString("document:\n")
	b.Write(r.Document)
	return b.Bytes()
}

// RunWithGolden loads and runs a scenario file, reports every step and
// assertion failure, and pins the trace against the golden fixture
// named after the scenario. Returns the result for extra checks.
func RunWithGolden(t *testing.T, path string) *Result {
	t.Helper()

	sc, err := Load(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	res, err := Run(sc)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}
	for _, msg := range res.Errors {
		t.Error(msg)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, res.TraceText())
	return res
}
