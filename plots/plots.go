// Package plots wraps the plotting stacks used around tutils into one-call
// helpers: each function builds one figure from raw data, writes it to a file
// and returns the saved path. There is no global figure state.
//
// Static PNG figures use gonum/plot, interactive HTML figures use go-plotly
// and lightweight SVG line charts use margaid.
package plots

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"k8s.io/klog/v2"
)

// Config tells the plot helpers where to write the figure.
type Config struct {
	// Dir to save into, created if needed. Empty means the current directory.
	Dir string

	// Name of the output file. Each helper has a default used when empty.
	Name string
}

// filePath resolves the output path, creating Config.Dir if needed.
func (cfg Config) filePath(defaultName string) (string, error) {
	name := cfg.Name
	if name == "" {
		name = defaultName
	}
	if cfg.Dir == "" {
		return name, nil
	}
	if err := os.MkdirAll(cfg.Dir, 0775); err != nil {
		return "", errors.Wrapf(err, "failed to create plot directory %q", cfg.Dir)
	}
	return filepath.Join(cfg.Dir, name), nil
}

// finite filters out NaN and Inf values.
func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Box draws one box plot per row of data and saves the figure as PNG
// (default name "boxplot.png").
func Box(data [][]float64, cfg Config) (string, error) {
	if len(data) == 0 {
		return "", errors.New("plots.Box: no distributions given")
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Boxplot (%d x %d)", len(data), len(data[0]))
	p.X.Label.Text = "Distribution index (0-based)"
	p.Y.Label.Text = "Values"
	for i, row := range data {
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(finite(row)))
		if err != nil {
			return "", errors.Wrapf(err, "failed to build box plot for distribution %d", i)
		}
		p.Add(box)
	}
	path, err := cfg.filePath("boxplot.png")
	if err != nil {
		return "", err
	}
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", errors.Wrapf(err, "failed to save box plot to %q", path)
	}
	klog.V(1).Infof("saved box plot to %s", path)
	return path, nil
}

// Histogram draws one histogram per row of data, stacked vertically with a
// shared value axis and a common density/count scale, and saves the figure as
// PNG (default name "histogram.png").
func Histogram(data [][]float64, bins int, density bool, cfg Config) (string, error) {
	if len(data) == 0 {
		return "", errors.New("plots.Histogram: no distributions given")
	}
	if bins <= 0 {
		bins = 100
	}

	hists := make([]*plotter.Histogram, len(data))
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMax := math.Inf(-1)
	for i, row := range data {
		h, err := plotter.NewHist(plotter.Values(finite(row)), bins)
		if err != nil {
			return "", errors.Wrapf(err, "failed to build histogram for distribution %d", i)
		}
		if density {
			h.Normalize(1)
		}
		hists[i] = h
		hxMin, hxMax, _, hyMax := h.DataRange()
		xMin = math.Min(xMin, hxMin)
		xMax = math.Max(xMax, hxMax)
		yMax = math.Max(yMax, hyMax)
	}

	yLabel := "Count"
	if density {
		yLabel = "Density"
	}
	grid := make([][]*plot.Plot, len(data))
	for i, h := range hists {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("Histogram [%d] (%d values)", i, len(data[i]))
		p.Y.Label.Text = yLabel
		p.X.Min, p.X.Max = xMin, xMax
		p.Y.Min, p.Y.Max = 0, yMax
		p.Add(h)
		if i == len(hists)-1 {
			p.X.Label.Text = "Value"
		}
		grid[i] = []*plot.Plot{p}
	}

	img := vgimg.New(14*vg.Inch, vg.Length(len(data))*3*vg.Inch)
	dc := draw.New(img)
	canvases := plot.Align(grid, draw.Tiles{Rows: len(data), Cols: 1}, dc)
	for i := range grid {
		grid[i][0].Draw(canvases[i][0])
	}

	path, err := cfg.filePath("histogram.png")
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %q", path)
	}
	pngCanvas := vgimg.PngCanvas{Canvas: img}
	if _, err := pngCanvas.WriteTo(f); err != nil {
		_ = f.Close()
		return "", errors.Wrapf(err, "failed to save histogram to %q", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to close %q", path)
	}
	klog.V(1).Infof("saved histogram to %s", path)
	return path, nil
}

// Lines draws one line per named series and saves the figure as PNG (default
// name "lines.png"). Series are drawn in lexicographic name order so colors
// are stable across runs.
func Lines(series map[string]plotter.XYs, cfg Config) (string, error) {
	if len(series) == 0 {
		return "", errors.New("plots.Lines: no series given")
	}
	p := plot.New()
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Value"

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	slices.Sort(names)
	args := make([]any, 0, 2*len(names))
	for _, name := range names {
		args = append(args, name, series[name])
	}
	if err := plotutil.AddLines(p, args...); err != nil {
		return "", errors.Wrap(err, "failed to add line series")
	}

	path, err := cfg.filePath("lines.png")
	if err != nil {
		return "", err
	}
	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return "", errors.Wrapf(err, "failed to save line plot to %q", path)
	}
	klog.V(1).Infof("saved line plot to %s", path)
	return path, nil
}
