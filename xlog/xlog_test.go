package xlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func TestSetupRedirectsOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(Config{Verbosity: 1, Output: &buf}))
	defer func() {
		// Leave following tests with the default config.
		_ = Setup(Config{ToStderr: true})
	}()

	klog.Info("hello from xlog test")
	klog.V(1).Info("verbose line")
	klog.V(2).Info("too verbose, filtered")
	klog.Flush()

	logged := buf.String()
	assert.Contains(t, logged, "hello from xlog test")
	assert.Contains(t, logged, "verbose line")
	assert.NotContains(t, logged, "too verbose, filtered")
}

func TestColorize(t *testing.T) {
	msg := "warning message"
	colored := Colorize(WarningStyle, msg)
	// Whatever the terminal profile, the message text must survive.
	assert.True(t, strings.Contains(colored, msg))
}
