package plots

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/plotter"
)

// requireSavedFile checks the helper reported path under dir and that the file
// exists and is not empty.
func requireSavedFile(t *testing.T, dir, path, wantName string) {
	t.Helper()
	require.Equal(t, filepath.Join(dir, wantName), path)
	info := must.M1(os.Stat(path))
	assert.Greater(t, info.Size(), int64(0))
}

func testDistributions() [][]float64 {
	data := make([][]float64, 3)
	for i := range data {
		row := make([]float64, 50)
		for j := range row {
			row[j] = float64(i+1) * math.Sin(float64(j)/5)
		}
		data[i] = row
	}
	// Sprinkle in missing values, they must not break rendering.
	data[0][3] = math.NaN()
	data[1][7] = math.Inf(1)
	return data
}

func TestBox(t *testing.T) {
	dir := t.TempDir()
	path, err := Box(testDistributions(), Config{Dir: dir})
	require.NoError(t, err)
	requireSavedFile(t, dir, path, "boxplot.png")

	_, err = Box(nil, Config{Dir: dir})
	require.Error(t, err)
}

func TestHistogram(t *testing.T) {
	dir := t.TempDir()
	path, err := Histogram(testDistributions(), 20, false, Config{Dir: dir})
	require.NoError(t, err)
	requireSavedFile(t, dir, path, "histogram.png")

	// Density mode with default bins and a custom name.
	path, err = Histogram(testDistributions(), 0, true, Config{Dir: dir, Name: "density.png"})
	require.NoError(t, err)
	requireSavedFile(t, dir, path, "density.png")
}

func TestViolin(t *testing.T) {
	dir := t.TempDir()
	path, err := Violin(testDistributions(), Config{Dir: dir})
	require.NoError(t, err)
	requireSavedFile(t, dir, path, "violin.html")

	contents := string(must.M1(os.ReadFile(path)))
	assert.Contains(t, contents, plotlySrc)
	assert.Contains(t, contents, "Plotly.newPlot")
}

func TestFeatures(t *testing.T) {
	dir := t.TempDir()
	m := mat.NewDense(6, 4, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		math.NaN(), 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,
		12, 13, 14, 15,
	})
	path, err := Features(m, 3, Config{Dir: dir})
	require.NoError(t, err)
	requireSavedFile(t, dir, path, "features.png")

	allNaN := mat.NewDense(2, 2, []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()})
	_, err = Features(allNaN, 0, Config{Dir: dir})
	require.Error(t, err)
}

func testSeries() map[string]plotter.XYs {
	series := make(map[string]plotter.XYs)
	for _, name := range []string{"train loss", "eval loss"} {
		xys := make(plotter.XYs, 20)
		for i := range xys {
			xys[i].X = float64(i)
			xys[i].Y = 1 / (float64(i) + 1)
		}
		series[name] = xys
	}
	return series
}

func TestLines(t *testing.T) {
	dir := t.TempDir()
	path, err := Lines(testSeries(), Config{Dir: dir})
	require.NoError(t, err)
	requireSavedFile(t, dir, path, "lines.png")
}

func TestLinesSVG(t *testing.T) {
	dir := t.TempDir()
	path, err := LinesSVG(testSeries(), Config{Dir: dir})
	require.NoError(t, err)
	requireSavedFile(t, dir, path, "lines.svg")

	contents := string(must.M1(os.ReadFile(path)))
	assert.True(t, strings.Contains(contents, "<svg"))
}

func TestConfigCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "plots")
	path, err := Box(testDistributions(), Config{Dir: dir})
	require.NoError(t, err)
	requireSavedFile(t, dir, path, "boxplot.png")
}
