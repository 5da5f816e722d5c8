// Package shapes defines Shape, the combination of a precision tag (dtypes.DType)
// and the dimensions of a tensor, along with size and memory accounting.
//
// Shape is a value type: it is cheap to copy and has no lifecycle. A valid shape
// has a recognized DType and a non-empty list of strictly positive dimensions.
package shapes

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"

	"github.com/terrencechentr/tutils/dtypes"
)

// Shape represents the shape of a tensor: its element precision tag and the
// dimension of each of its axes.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int
}

// InvalidShapeError is returned (by Shape.Check and the callers that use it)
// when a shape is empty or has an axis with dimension <= 0.
type InvalidShapeError struct {
	Dimensions []int

	// Axis with the offending dimension, or -1 if the shape has no dimensions.
	Axis int
}

// Error implements the error interface.
func (e *InvalidShapeError) Error() string {
	if e.Axis < 0 {
		return "invalid shape: at least one dimension is required"
	}
	return fmt.Sprintf("invalid shape %v: axis %d has dimension %d, must be > 0",
		e.Dimensions, e.Axis, e.Dimensions[e.Axis])
}

// Make returns a Shape with the given dtype and dimensions.
// It panics on a dimension <= 0: constructing an impossible shape is a
// programming error. Use Shape.Check to validate data-driven shapes instead.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{DType: dtype, Dimensions: slices.Clone(dimensions)}
	for _, dim := range dimensions {
		if dim <= 0 {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with an axis with dimension <= 0", s)
		}
	}
	return s
}

// Check validates the shape, returning an *InvalidShapeError if it has no
// dimensions or any dimension <= 0.
func (s Shape) Check() error {
	if len(s.Dimensions) == 0 {
		return &InvalidShapeError{Axis: -1}
	}
	for axis, dim := range s.Dimensions {
		if dim <= 0 {
			return &InvalidShapeError{Dimensions: slices.Clone(s.Dimensions), Axis: axis}
		}
	}
	return nil
}

// Rank of the shape, that is, the number of dimensions.
func (s Shape) Rank() int { return len(s.Dimensions) }

// Size returns the number of elements of DType needed for this shape.
// It's the product of all dimensions.
func (s Shape) Size() int {
	size := 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return size
}

// Memory returns the number of bytes needed to store an array of the given
// shape.
func (s Shape) Memory() int64 {
	return int64(s.Size()) * int64(s.DType.Size())
}

// Equal compares two shapes for equality: dtype and dimensions are compared.
func (s Shape) Equal(s2 Shape) bool {
	return s.DType == s2.DType && slices.Equal(s.Dimensions, s2.Dimensions)
}

// String implements fmt.Stringer, pretty-prints the shape.
func (s Shape) String() string {
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	return fmt.Sprintf("(%s)%v", s.DType, s.Dimensions)
}
