package timing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerSegments(t *testing.T) {
	timer := New()
	timer.Start("load")
	elapsed := timer.End("load")
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))

	timer.Start("train")
	timer.End("")

	// Same name again: an independent record, not an aggregation.
	timer.Start("load")
	timer.End("load")

	segments := timer.Segments()
	require.Len(t, segments, 3)
	assert.Equal(t, "load", segments[0].Name)
	assert.Equal(t, "train", segments[1].Name)
	assert.Equal(t, "load", segments[2].Name)

	var sum time.Duration
	for _, segment := range segments {
		sum += segment.Elapsed
	}
	assert.Equal(t, sum, timer.Total())
}

func TestTimerMisusePanics(t *testing.T) {
	timer := New()
	require.Panics(t, func() { timer.End("load") })
	require.Panics(t, func() { timer.Start("") })

	timer.Start("load")
	require.Panics(t, func() { timer.Start("train") })
	require.Panics(t, func() { timer.End("train") })
	timer.End("load")
}

func TestTimerRunningState(t *testing.T) {
	timer := New()
	assert.False(t, timer.Running())
	assert.Equal(t, "", timer.CurrentName())

	timer.Start("eval")
	assert.True(t, timer.Running())
	assert.Equal(t, "eval", timer.CurrentName())
	// The running segment is not part of the total yet.
	assert.Equal(t, time.Duration(0), timer.Total())

	timer.End("eval")
	assert.False(t, timer.Running())
}

func TestTimerReset(t *testing.T) {
	timer := New()
	timer.Start("load")
	timer.End("load")
	timer.Reset()
	assert.Empty(t, timer.Segments())
	assert.Equal(t, time.Duration(0), timer.Total())
	assert.False(t, timer.Running())
}

func TestReport(t *testing.T) {
	timer := New()
	timer.Start("load")
	timer.End("load")
	timer.Start("train")
	report := timer.Report()
	assert.True(t, strings.HasPrefix(report, "Total: "))
	assert.Contains(t, report, "#01 load:")
	assert.Contains(t, report, "* still running: train")
	timer.End("train")
}

func TestFormatDuration(t *testing.T) {
	for d, want := range map[time.Duration]string{
		500 * time.Nanosecond:              "500.0 ns",
		1500 * time.Nanosecond:             "1.5 µs",
		120 * time.Microsecond:             "120.0 µs",
		2500 * time.Microsecond:            "2.50 ms",
		1200 * time.Millisecond:            "1.200 s",
		3*time.Second + 141*time.Millisecond: "3.141 s",
	} {
		assert.Equalf(t, want, FormatDuration(d), "FormatDuration(%v)", d)
	}
}
