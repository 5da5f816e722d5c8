package plots

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/palette"
	"k8s.io/klog/v2"
)

// featuresScale is the nearest-neighbor upscale factor applied to the raw
// matrix image so individual cells stay visible.
const featuresScale = 8

// Features renders m as a heatmap image and saves it as PNG (default name
// "features.png"). Each matrix cell becomes one (upscaled) pixel colored by
// its value relative to the finite min/max of the whole matrix; NaN and Inf
// cells are transparent. When rowsPerFeature > 0, a horizontal separator line
// is drawn every rowsPerFeature rows to mark feature group boundaries.
func Features(m mat.Matrix, rowsPerFeature int, cfg Config) (string, error) {
	numRows, numCols := m.Dims()
	if numRows == 0 || numCols == 0 {
		return "", errors.New("plots.Features: empty matrix")
	}

	minValue, maxValue := math.Inf(1), math.Inf(-1)
	for i := 0; i < numRows; i++ {
		for j := 0; j < numCols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minValue = math.Min(minValue, v)
			maxValue = math.Max(maxValue, v)
		}
	}
	if minValue > maxValue {
		return "", errors.New("plots.Features: matrix has no finite values")
	}
	valueRange := maxValue - minValue
	if valueRange == 0 {
		valueRange = 1
	}

	colors := palette.Heat(256, 1).Colors()
	img := image.NewNRGBA(image.Rect(0, 0, numCols, numRows))
	for i := 0; i < numRows; i++ {
		for j := 0; j < numCols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				img.SetNRGBA(j, i, color.NRGBA{})
				continue
			}
			idx := int((v - minValue) / valueRange * float64(len(colors)-1))
			r, g, b, _ := colors[idx].RGBA()
			img.SetNRGBA(j, i, color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xFF})
		}
	}

	scaled := imaging.Resize(img, numCols*featuresScale, numRows*featuresScale, imaging.NearestNeighbor)
	if rowsPerFeature > 0 {
		boundary := color.NRGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xFF}
		for row := rowsPerFeature; row < numRows; row += rowsPerFeature {
			y := row * featuresScale
			for x := 0; x < numCols*featuresScale; x++ {
				scaled.SetNRGBA(x, y, boundary)
			}
		}
	}

	path, err := cfg.filePath("features.png")
	if err != nil {
		return "", err
	}
	if err := imaging.Save(scaled, path); err != nil {
		return "", errors.Wrapf(err, "failed to save features heatmap to %q", path)
	}
	klog.V(1).Infof("saved features heatmap to %s", path)
	return path, nil
}
