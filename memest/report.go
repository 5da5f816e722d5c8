package memest

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"golang.org/x/exp/maps"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 2, 0, 2)

	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
)

func newPlainTable(alignments ...lipgloss.Position) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if row < 0 {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			alignment := lipgloss.Left
			if col < len(alignments) {
				alignment = alignments[col]
			} else if len(alignments) > 0 {
				alignment = alignments[len(alignments)-1]
			}
			return s.Align(alignment)
		})
}

// String renders the report as a table, suitable for printing to a terminal.
func (r *Report) String() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Model Memory Report (tensors only)"))
	sb.WriteString("\n")

	table := newPlainTable(lipgloss.Left, lipgloss.Right)
	table.Row("# tensors", humanize.Comma(int64(r.NumTensors)))
	table.Row("trainable elements", humanize.Comma(r.NumTrainable))
	table.Row("frozen elements", humanize.Comma(r.NumFrozen))

	dtypesKeys := maps.Keys(r.ByDType)
	slices.Sort(dtypesKeys)
	for _, dtype := range dtypesKeys {
		table.Row(dtype.String(), FormatBytes(r.ByDType[dtype]))
	}
	if len(r.ByDevice) > 0 {
		devices := maps.Keys(r.ByDevice)
		slices.Sort(devices)
		for _, device := range devices {
			name := device
			if name == "" {
				name = "(unset device)"
			}
			table.Row(name, FormatBytes(r.ByDevice[device]))
		}
	}
	table.Row("total", r.Formatted)
	sb.WriteString(table.Render())
	return sb.String()
}
