package plots

import (
	"math"
	"os"
	"slices"

	mg "github.com/erkkah/margaid"
	"github.com/pkg/errors"
	"gonum.org/v1/plot/plotter"
	"k8s.io/klog/v2"
)

// LinesSVG draws one line per named series as a lightweight SVG (default name
// "lines.svg"). Series are drawn in lexicographic name order. NaN and Inf
// points are skipped.
func LinesSVG(series map[string]plotter.XYs, cfg Config) (string, error) {
	if len(series) == 0 {
		return "", errors.New("plots.LinesSVG: no series given")
	}

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	slices.Sort(names)

	allSeries := make([]*mg.Series, 0, len(names))
	allPoints := mg.NewSeries()
	numPoints := 0
	for _, name := range names {
		s := mg.NewSeries(mg.Titled(name))
		for _, xy := range series[name] {
			if math.IsNaN(xy.X) || math.IsInf(xy.X, 0) || math.IsNaN(xy.Y) || math.IsInf(xy.Y, 0) {
				continue
			}
			v := mg.MakeValue(xy.X, xy.Y)
			s.Add(v)
			allPoints.Add(v)
			numPoints++
		}
		allSeries = append(allSeries, s)
	}
	if numPoints == 0 {
		return "", errors.New("plots.LinesSVG: no finite points in any series")
	}

	diagram := mg.New(1024, 400,
		mg.WithAutorange(mg.XAxis, allSeries...),
		mg.WithAutorange(mg.YAxis, allSeries...),
		mg.WithInset(70),
		mg.WithPadding(2),
		mg.WithColorScheme(90),
		mg.WithBackgroundColor("#f8f8f8"),
	)
	for _, s := range allSeries {
		diagram.Line(s, mg.UsingAxes(mg.XAxis, mg.YAxis), mg.UsingStrokeWidth(2))
	}
	diagram.Axis(allPoints, mg.XAxis, diagram.ValueTicker('f', 0, 10), false, "Step")
	diagram.Axis(allPoints, mg.YAxis, diagram.ValueTicker('f', 3, 10), true, "Value")
	diagram.Frame()
	diagram.Legend(mg.BottomLeft)

	path, err := cfg.filePath("lines.svg")
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %q", path)
	}
	if err := diagram.Render(f); err != nil {
		_ = f.Close()
		return "", errors.Wrapf(err, "failed to render SVG line plot to %q", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to close %q", path)
	}
	klog.V(1).Infof("saved SVG line plot to %s", path)
	return path, nil
}
