// Package memest estimates the memory footprint of a model from the shapes and
// precision tags of its parameters.
//
// It only accounts for the bytes of the tensors themselves: optimizer state,
// gradients and allocator overhead are not included. The input is an ordered
// sequence of Parameter values; any framework able to enumerate its tensors as
// (name, shape, precision) triples can be estimated.
package memest

import (
	"fmt"

	"github.com/terrencechentr/tutils/dtypes"
	"github.com/terrencechentr/tutils/shapes"
)

// Parameter describes one named tensor of a model.
type Parameter struct {
	Name  string
	Shape shapes.Shape

	// Trainable indicates the parameter receives gradient updates.
	Trainable bool

	// Buffer marks non-parameter state (e.g. batch-norm running statistics).
	Buffer bool

	// Device where the tensor lives ("cuda:0", "cpu", ...). Optional, used
	// only when grouping per device is enabled.
	Device string
}

// NewParameter builds a Parameter from a precision tag name and dimensions.
// The precision is parsed with dtypes.FromName, so an unrecognized tag returns
// a *dtypes.UnknownPrecisionError.
func NewParameter(name, precision string, dimensions ...int) (Parameter, error) {
	dtype, err := dtypes.FromName(precision)
	if err != nil {
		return Parameter{}, err
	}
	return Parameter{
		Name:      name,
		Shape:     shapes.Shape{DType: dtype, Dimensions: dimensions},
		Trainable: true,
	}, nil
}

// Model is the boundary to the surrounding framework: anything that exposes
// its tensors as a Parameter sequence can be estimated.
type Model interface {
	Parameters() []Parameter
}

// Report holds the result of an estimation.
//
// The per-precision totals always sum exactly to TotalBytes.
type Report struct {
	// TotalBytes of all counted tensors.
	TotalBytes int64

	// ByDType maps each precision tag to the bytes used by tensors of that tag.
	ByDType map[dtypes.DType]int64

	// ByDevice maps a device name to its byte total. Only filled when the
	// ByDevice option is given.
	ByDevice map[string]int64

	// NumTensors counted, and element counts split by trainability.
	NumTensors   int
	NumTrainable int64
	NumFrozen    int64

	// Formatted is TotalBytes rendered with binary (1024-based) unit scaling.
	Formatted string
}

type config struct {
	includeBuffers bool
	byDevice       bool
}

// Option configures Estimate.
type Option func(*config)

// WithoutBuffers excludes Buffer-marked parameters from the estimate.
func WithoutBuffers() Option {
	return func(cfg *config) { cfg.includeBuffers = false }
}

// ByDevice enables the per-device byte totals in the Report.
func ByDevice() Option {
	return func(cfg *config) { cfg.byDevice = true }
}

// Estimate walks the parameters and sums their byte sizes grouped by precision
// tag.
//
// It fails with a *dtypes.UnknownPrecisionError if any parameter carries an
// unrecognized precision, and with a *shapes.InvalidShapeError if any shape is
// empty or has a dimension <= 0. On error nothing partial is returned.
func Estimate(params []Parameter, opts ...Option) (*Report, error) {
	cfg := &config{includeBuffers: true}
	for _, opt := range opts {
		opt(cfg)
	}

	report := &Report{
		ByDType: make(map[dtypes.DType]int64),
	}
	if cfg.byDevice {
		report.ByDevice = make(map[string]int64)
	}
	for _, p := range params {
		if p.Buffer && !cfg.includeBuffers {
			continue
		}
		if !p.Shape.DType.IsValid() {
			return nil, &dtypes.UnknownPrecisionError{Name: p.Shape.DType.String()}
		}
		if err := p.Shape.Check(); err != nil {
			return nil, err
		}
		numElements := int64(p.Shape.Size())
		bytes := p.Shape.Memory()
		report.TotalBytes += bytes
		report.ByDType[p.Shape.DType] += bytes
		if cfg.byDevice {
			report.ByDevice[p.Device] += bytes
		}
		report.NumTensors++
		if p.Buffer {
			// Buffers are counted in bytes but not as trainable/frozen elements.
			continue
		}
		if p.Trainable {
			report.NumTrainable += numElements
		} else {
			report.NumFrozen += numElements
		}
	}
	report.Formatted = FormatBytes(report.TotalBytes)
	return report, nil
}

// EstimateModel is a shortcut for Estimate(m.Parameters(), opts...).
func EstimateModel(m Model, opts ...Option) (*Report, error) {
	return Estimate(m.Parameters(), opts...)
}

var byteUnits = [...]string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders a byte count with binary (1024-based) unit scaling,
// choosing the largest unit for which the value is >= 1.
// Values below 1KB print as an integer ("512B"), scaled values with two
// decimals ("3.81MB").
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%dB", n)
	}
	value := float64(n)
	unit := 0
	for value >= 1024 && unit < len(byteUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f%s", value, byteUnits[unit])
}
