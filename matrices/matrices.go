// Package matrices implements filtering and summary helpers over
// two-dimensional matrices, using gonum's mat.Matrix as the input boundary.
//
// NaN entries are treated as missing values: they never appear in filter
// results and are ignored by the summary statistics.
package matrices

import (
	"math"
	"slices"

	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/mat"
)

// Coord is one selected matrix entry with its position.
type Coord struct {
	Row, Col int
	Value    float64
}

// collect returns all finite entries of m as coords.
func collect(m mat.Matrix) []Coord {
	numRows, numCols := m.Dims()
	coords := make([]Coord, 0, numRows*numCols)
	for i := 0; i < numRows; i++ {
		for j := 0; j < numCols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			coords = append(coords, Coord{Row: i, Col: j, Value: v})
		}
	}
	return coords
}

// sortDescending orders coords by value, largest first. Ties are broken by
// row-major position so results are deterministic.
func sortDescending(coords []Coord, numCols int) {
	slices.SortFunc(coords, func(a, b Coord) int {
		if a.Value != b.Value {
			if a.Value > b.Value {
				return -1
			}
			return 1
		}
		return (a.Row*numCols + a.Col) - (b.Row*numCols + b.Col)
	})
}

// TopK returns the k largest finite entries of m with their coordinates,
// ordered by value descending. k larger than the number of entries clamps;
// k <= 0 returns nil.
func TopK(m mat.Matrix, k int) []Coord {
	if k <= 0 {
		return nil
	}
	_, numCols := m.Dims()
	coords := collect(m)
	sortDescending(coords, numCols)
	if k > len(coords) {
		k = len(coords)
	}
	return coords[:k:k]
}

// MaxPercent returns every finite entry of m strictly greater than
// max(m) * percent, ordered by value descending. The maximum ignores NaN and
// Inf entries. It panics if percent is NaN or infinite.
func MaxPercent(m mat.Matrix, percent float64) []Coord {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		exceptions.Panicf("matrices.MaxPercent: percent must be finite, got %v", percent)
	}
	coords := collect(m)
	if len(coords) == 0 {
		return nil
	}
	maxValue := math.Inf(-1)
	for _, c := range coords {
		if c.Value > maxValue {
			maxValue = c.Value
		}
	}
	threshold := maxValue * percent
	filtered := coords[:0]
	for _, c := range coords {
		if c.Value > threshold {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	_, numCols := m.Dims()
	sortDescending(filtered, numCols)
	return slices.Clip(filtered)
}
