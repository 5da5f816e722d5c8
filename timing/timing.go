// Package timing implements a manual segment timer for instrumenting
// experiment phases.
//
// The caller brackets each phase with Start(name) / End(name). Names are
// labels only: reusing a name creates a new independent record, never an
// aggregation. Misusing the API (ending a stopped timer, mismatched names) is
// a programming error and panics.
package timing

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gomlx/exceptions"
)

// Segment is one completed timed span.
type Segment struct {
	Name    string
	Elapsed time.Duration
}

// Timer records manually delimited segments. The zero value is ready to use.
//
// A Timer is not safe for concurrent use.
type Timer struct {
	running  bool
	currName string
	started  time.Time
	total    time.Duration
	segments []Segment
}

// New returns an empty Timer.
func New() *Timer {
	return &Timer{}
}

// Start begins a segment named name. It panics if a segment is already
// running or if name is empty.
func (t *Timer) Start(name string) {
	if t.running {
		exceptions.Panicf("timing: Start(%q) while segment %q is still running, call End first", name, t.currName)
	}
	if name == "" {
		exceptions.Panicf("timing: Start requires a non-empty segment name")
	}
	t.currName = name
	t.started = time.Now()
	t.running = true
}

// End finishes the running segment and returns its duration. If name is not
// empty it is checked against the name given to Start, catching mismatched
// instrumentation hooks. It panics if no segment is running or on a name
// mismatch.
func (t *Timer) End(name string) time.Duration {
	if !t.running {
		exceptions.Panicf("timing: End(%q) without a running segment, call Start first", name)
	}
	if name != "" && name != t.currName {
		exceptions.Panicf("timing: End(%q) does not match Start(%q)", name, t.currName)
	}
	elapsed := time.Since(t.started)
	t.segments = append(t.segments, Segment{Name: t.currName, Elapsed: elapsed})
	t.total += elapsed
	t.running = false
	t.currName = ""
	return elapsed
}

// Running returns whether a segment is currently being timed.
func (t *Timer) Running() bool { return t.running }

// CurrentName returns the name of the running segment, or "" if none.
func (t *Timer) CurrentName() string { return t.currName }

// Total returns the summed duration of all completed segments. The running
// segment, if any, is not included.
func (t *Timer) Total() time.Duration { return t.total }

// Segments returns a copy of all completed segments, in completion order.
// Repeated names appear as separate entries.
func (t *Timer) Segments() []Segment {
	return slices.Clone(t.segments)
}

// Reset discards all state, including completed segments.
func (t *Timer) Reset() {
	*t = Timer{}
}

// Report returns a human-readable multi-line summary of the recorded segments.
func (t *Timer) Report() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total: %s", FormatDuration(t.total))
	if len(t.segments) > 0 {
		sb.WriteString("\nSegments:")
		for i, segment := range t.segments {
			fmt.Fprintf(&sb, "\n  #%02d %s: %s", i+1, segment.Name, FormatDuration(segment.Elapsed))
		}
	}
	if t.running {
		fmt.Fprintf(&sb, "\n* still running: %s", t.currName)
	}
	return sb.String()
}

// FormatDuration pretty-prints a duration scaled to ns, µs, ms or s.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%.1f ns", float64(d.Nanoseconds()))
	case d < time.Millisecond:
		return fmt.Sprintf("%.1f µs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.2f ms", float64(d.Nanoseconds())/1e6)
	}
	return fmt.Sprintf("%.3f s", d.Seconds())
}
