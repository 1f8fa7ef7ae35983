package scenario

import (
	"fmt"
	"sort"

	"github.com/halvard/kinocut/internal/coordinator"
	"github.com/halvard/kinocut/internal/timeline"
)

// AssertionError describes one failed assertion in expected/actual form.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against the finished run
// and returns one message per failure.
func EvaluateAssertions(res *Result, asserts []Assertion) []string {
	var failures []string
	for i := range asserts {
		if err := evaluate(res, &asserts[i]); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d] %v", i, err))
		}
	}
	return failures
}

func evaluate(res *Result, a *Assertion) error {
	switch a.Type {
	case AssertTrackOrder:
		return assertTrackOrder(res.Final, a)
	case AssertClipOnTrack:
		return assertClipOnTrack(res.Final, a)
	case AssertClipSpan:
		return assertClipSpan(res.Final, a)
	case AssertSelection:
		return assertSelection(res.Final, a)
	case AssertClipCount:
		return assertClipCount(res.Final, a)
	case AssertPlayhead:
		return assertPlayhead(res, a)
	case AssertJournalContains:
		return assertJournalContains(res.Journal, a)
	case AssertJournalOrder:
		return assertJournalOrder(res.Journal, a)
	case AssertJournalCount:
		return assertJournalCount(res.Journal, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertTrackOrder(st *timeline.State, a *Assertion) error {
	got := st.TrackOrder()
	if !equalStrings(a.Tracks, got) {
		return AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%v", a.Tracks),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

func assertClipOnTrack(st *timeline.State, a *Assertion) error {
	trackID, ok := st.TrackOf(a.Clip)
	if !ok {
		return AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("clip %q on track %q", a.Clip, a.Track),
			Actual:   "clip not present",
		}
	}
	if trackID != a.Track {
		return AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("clip %q on track %q", a.Clip, a.Track),
			Actual:   fmt.Sprintf("on track %q", trackID),
		}
	}
	return nil
}

func assertClipSpan(st *timeline.State, a *Assertion) error {
	cl, ok := st.Clip(a.Clip)
	if !ok {
		return AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("clip %q present", a.Clip),
			Actual:   "clip not present",
		}
	}
	if cl.Display.From != a.From || cl.Display.To != a.To {
		return AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("display [%d,%d)", a.From, a.To),
			Actual:   fmt.Sprintf("display [%d,%d)", cl.Display.From, cl.Display.To),
		}
	}
	if a.Trim != nil {
		if cl.Trim == nil {
			return AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("trim [%d,%d)", a.Trim.From, a.Trim.To),
				Actual:   "no trim window",
			}
		}
		if cl.Trim.From != a.Trim.From || cl.Trim.To != a.Trim.To {
			return AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("trim [%d,%d)", a.Trim.From, a.Trim.To),
				Actual:   fmt.Sprintf("trim [%d,%d)", cl.Trim.From, cl.Trim.To),
			}
		}
	}
	return nil
}

func assertSelection(st *timeline.State, a *Assertion) error {
	want := append([]string(nil), a.IDs...)
	sort.Strings(want)
	got := st.Selection()
	if !equalStrings(want, got) {
		return AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%v", want),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

func assertClipCount(st *timeline.State, a *Assertion) error {
	got := st.NumClips()
	scope := "total"
	if a.Track != "" {
		got = len(st.ClipsOn(a.Track))
		scope = fmt.Sprintf("on track %q", a.Track)
	}
	if got != a.Count {
		return AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d clips %s", a.Count, scope),
			Actual:   fmt.Sprintf("%d", got),
		}
	}
	return nil
}

func assertPlayhead(res *Result, a *Assertion) error {
	if res.Playhead != a.At {
		return AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("playhead at %d", a.At),
			Actual:   fmt.Sprintf("%d", res.Playhead),
		}
	}
	if a.Playing != nil && res.Playing != *a.Playing {
		return AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("playing=%t", *a.Playing),
			Actual:   fmt.Sprintf("playing=%t", res.Playing),
		}
	}
	return nil
}

func assertJournalContains(journal []coordinator.Record, a *Assertion) error {
	for _, rec := range journal {
		if recordMatches(rec, a.Event, a.Source) {
			return nil
		}
	}
	return AssertionError{
		Type:     a.Type,
		Expected: describeEvent(a.Event, a.Source),
		Actual:   fmt.Sprintf("absent from %d records", len(journal)),
	}
}

// assertJournalOrder checks the expected events appear as a
// subsequence of the journal: each one must occur somewhere after the
// previous match, with any number of other records in between.
func assertJournalOrder(journal []coordinator.Record, a *Assertion) error {
	pos := 0
	for _, want := range a.Events {
		found := false
		for pos < len(journal) {
			rec := journal[pos]
			pos++
			if recordMatches(rec, want, a.Source) {
				found = true
				break
			}
		}
		if !found {
			return AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%v in order", a.Events),
				Actual:   fmt.Sprintf("%s missing after record %d", describeEvent(want, a.Source), pos),
			}
		}
	}
	return nil
}

func assertJournalCount(journal []coordinator.Record, a *Assertion) error {
	got := 0
	for _, rec := range journal {
		if recordMatches(rec, a.Event, a.Source) {
			got++
		}
	}
	if got != a.Count {
		return AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, describeEvent(a.Event, a.Source)),
			Actual:   fmt.Sprintf("%d", got),
		}
	}
	return nil
}

// recordMatches reports whether a record has the given name, and the
// given source when one is specified.
func recordMatches(rec coordinator.Record, name, source string) bool {
	return rec.Name == name && (source == "" || rec.Source == source)
}

func describeEvent(name, source string) string {
	if source == "" {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("%s %q", source, name)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
