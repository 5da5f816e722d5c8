// Package xlog configures klog, the logger used across tutils, from an
// explicit Config value -- there is no singleton logger factory. It also
// provides the terminal styles used by the report-producing packages.
package xlog

import (
	"flag"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Config describes the desired logging behavior.
type Config struct {
	// Verbosity for klog.V() calls. tutils packages log progress at V(1).
	Verbosity int

	// ToStderr sends all log output to stderr. Ignored when Output is set.
	ToStderr bool

	// Output redirects log output to the given writer.
	Output io.Writer
}

// Setup applies the config to klog. It may be called again to reconfigure.
func Setup(cfg Config) error {
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	toStderr := cfg.ToStderr && cfg.Output == nil
	for name, value := range map[string]string{
		"v":               strconv.Itoa(cfg.Verbosity),
		"logtostderr":     strconv.FormatBool(toStderr),
		"alsologtostderr": "false",
		"stderrthreshold": "FATAL",
	} {
		if err := fs.Set(name, value); err != nil {
			return errors.Wrapf(err, "failed to set klog flag -%s=%s", name, value)
		}
	}
	if cfg.Output != nil {
		klog.SetOutput(cfg.Output)
	}
	return nil
}

// Styles used by the reports printed by tutils. They adapt to the terminal's
// color capabilities.
var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 2, 0, 2)
	InfoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	WarningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	ErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	EmphasisStyle = lipgloss.NewStyle().Bold(true)
	FaintStyle    = lipgloss.NewStyle().Faint(true)
)

// ColorProfile reports the color capability of the current terminal.
func ColorProfile() termenv.Profile {
	return termenv.ColorProfile()
}

// Colorize renders msg with the given style, unless the terminal has no color
// support, in which case msg is returned unchanged.
func Colorize(style lipgloss.Style, msg string) string {
	if ColorProfile() == termenv.Ascii {
		return msg
	}
	return style.Render(msg)
}
