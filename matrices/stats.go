package matrices

import (
	"math"
	"os"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// finiteSorted returns the finite values of data, sorted ascending.
func finiteSorted(data []float64) []float64 {
	finite := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	slices.Sort(finite)
	return finite
}

// ClipPercentiles returns a copy of data with finite values clamped to the
// [loPct, hiPct] percentile range (0-100, linear interpolation, NaNs ignored
// when computing the percentiles). loPct <= 0 disables the lower clip and
// hiPct >= 100 the upper one. NaN entries are left untouched.
func ClipPercentiles(data []float64, loPct, hiPct float64) []float64 {
	out := slices.Clone(data)
	sorted := finiteSorted(data)
	if len(sorted) == 0 {
		return out
	}
	lo, hi := math.Inf(-1), math.Inf(1)
	if loPct > 0 {
		lo = stat.Quantile(loPct/100, stat.LinInterp, sorted, nil)
	}
	if hiPct < 100 {
		hi = stat.Quantile(hiPct/100, stat.LinInterp, sorted, nil)
	}
	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		out[i] = math.Min(math.Max(v, lo), hi)
	}
	return out
}

// SummarizeRows computes per-row statistics of m -- mean, standard deviation
// (population), min/max and a few percentiles -- returning them as a
// dataframe with one row per matrix row. NaN and Inf entries are ignored;
// a row without any finite value yields NaN statistics.
func SummarizeRows(m mat.Matrix) dataframe.DataFrame {
	numRows, numCols := m.Dims()
	layer := make([]int, numRows)
	columns := map[string][]float64{
		"mean": make([]float64, numRows),
		"std":  make([]float64, numRows),
		"min":  make([]float64, numRows),
		"p1":   make([]float64, numRows),
		"p25":  make([]float64, numRows),
		"p50":  make([]float64, numRows),
		"p75":  make([]float64, numRows),
		"p99":  make([]float64, numRows),
		"max":  make([]float64, numRows),
	}
	row := make([]float64, numCols)
	for i := 0; i < numRows; i++ {
		layer[i] = i
		for j := 0; j < numCols; j++ {
			row[j] = m.At(i, j)
		}
		sorted := finiteSorted(row)
		if len(sorted) == 0 {
			for _, values := range columns {
				values[i] = math.NaN()
			}
			continue
		}
		columns["mean"][i] = stat.Mean(sorted, nil)
		columns["std"][i] = math.Sqrt(stat.PopVariance(sorted, nil))
		columns["min"][i] = sorted[0]
		columns["max"][i] = sorted[len(sorted)-1]
		for name, pct := range map[string]float64{"p1": 0.01, "p25": 0.25, "p50": 0.50, "p75": 0.75, "p99": 0.99} {
			columns[name][i] = stat.Quantile(pct, stat.LinInterp, sorted, nil)
		}
	}
	return dataframe.New(
		series.New(layer, series.Int, "layer"),
		series.New(columns["mean"], series.Float, "mean"),
		series.New(columns["std"], series.Float, "std"),
		series.New(columns["min"], series.Float, "min"),
		series.New(columns["p1"], series.Float, "p1"),
		series.New(columns["p25"], series.Float, "p25"),
		series.New(columns["p50"], series.Float, "p50"),
		series.New(columns["p75"], series.Float, "p75"),
		series.New(columns["p99"], series.Float, "p99"),
		series.New(columns["max"], series.Float, "max"),
	)
}

// SaveCSV writes the dataframe to path in CSV format, creating or overwriting
// the file.
func SaveCSV(df dataframe.DataFrame, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create CSV file %q", path)
	}
	if err := df.WriteCSV(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to write CSV file %q", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close CSV file %q", path)
	}
	return nil
}

// LoadCSV reads a dataframe from the CSV file in path.
func LoadCSV(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "failed to open CSV file %q", path)
	}
	defer func() { _ = f.Close() }()
	df := dataframe.ReadCSV(f)
	if df.Error() != nil {
		return dataframe.DataFrame{}, errors.Wrapf(df.Error(), "failed to parse CSV file %q", path)
	}
	return df, nil
}
