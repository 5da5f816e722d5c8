// Package dtypes defines the DType enum of numeric precision tags supported by tutils.
//
// A DType identifies the storage width of a tensor element (e.g. 32-bit floating point).
// It includes converters from the names commonly used by deep-learning frameworks
// ("fp32", "bf16", "half", ...) and from Go native types.
package dtypes

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/x448/float16"
)

// DType is a numeric precision tag: it identifies the storage type of a single
// tensor element.
type DType int

const (
	InvalidDType DType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float16
	BFloat16
	Float32
	Float64
)

// Aliases for the most commonly used dtypes.
const (
	F16 = Float16
	F32 = Float32
	F64 = Float64
	I32 = Int32
	I64 = Int64
)

// UnknownPrecisionError is returned when a precision tag is not part of the
// recognized set. Unrecognized tags always fail, they are never silently
// defaulted.
type UnknownPrecisionError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownPrecisionError) Error() string {
	return fmt.Sprintf("unknown precision tag %q", e.Name)
}

// MapOfNames maps known names and aliases to their DType.
// The lower-case version of every name is added automatically in init().
var MapOfNames = map[string]DType{
	"Bool":     Bool,
	"Int8":     Int8,
	"Int16":    Int16,
	"Int32":    Int32,
	"Int64":    Int64,
	"Uint8":    Uint8,
	"Uint16":   Uint16,
	"Uint32":   Uint32,
	"Uint64":   Uint64,
	"Float16":  Float16,
	"BFloat16": BFloat16,
	"Float32":  Float32,
	"Float64":  Float64,

	// Aliases used by the various ML frameworks.
	"fp16":   Float16,
	"half":   Float16,
	"bf16":   BFloat16,
	"fp32":   Float32,
	"float":  Float32,
	"f32":    Float32,
	"fp64":   Float64,
	"double": Float64,
	"f64":    Float64,
	"i8":     Int8,
	"i32":    Int32,
	"i64":    Int64,
	"u8":     Uint8,
	"pred":   Bool,
}

func init() {
	// Add a mapping to the lower-case version of the dtype names.
	keys := slices.Collect(maps.Keys(MapOfNames))
	for _, key := range keys {
		lowerKey := strings.ToLower(key)
		if lowerKey == key {
			continue
		}
		if _, found := MapOfNames[lowerKey]; found {
			continue
		}
		MapOfNames[lowerKey] = MapOfNames[key]
	}
}

// FromName converts a precision tag name (or one of its aliases) to the
// corresponding DType. Matching falls back to the lower-case version of name.
//
// It returns an *UnknownPrecisionError if name is not recognized.
func FromName(name string) (DType, error) {
	if dtype, found := MapOfNames[name]; found {
		return dtype, nil
	}
	if dtype, found := MapOfNames[strings.ToLower(name)]; found {
		return dtype, nil
	}
	return InvalidDType, &UnknownPrecisionError{Name: name}
}

// String implements fmt.Stringer.
func (dtype DType) String() string {
	switch dtype {
	case Bool:
		return "Bool"
	case Int8:
		return "Int8"
	case Int16:
		return "Int16"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case Uint8:
		return "Uint8"
	case Uint16:
		return "Uint16"
	case Uint32:
		return "Uint32"
	case Uint64:
		return "Uint64"
	case Float16:
		return "Float16"
	case BFloat16:
		return "BFloat16"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case InvalidDType:
		return "InvalidDType"
	}
	return fmt.Sprintf("DType(%d)", int(dtype))
}

// Size returns the number of bytes used to store one element of the given DType.
// It panics for an invalid DType -- use IsValid to check first if the value
// comes from an untrusted source.
func (dtype DType) Size() int {
	switch dtype {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16, Float16, BFloat16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	exceptions.Panicf("dtypes: Size() called on invalid dtype %s", dtype)
	panic(nil) // Unreachable.
}

// Bits returns the number of bits used to store one element of the given DType.
func (dtype DType) Bits() int {
	return dtype.Size() * 8
}

// IsValid returns whether dtype is one of the recognized precision tags.
func (dtype DType) IsValid() bool {
	return dtype > InvalidDType && dtype <= Float64
}

// IsFloat returns whether dtype is a floating point type, including the 16-bit
// variants.
func (dtype DType) IsFloat() bool {
	return dtype == Float16 || dtype == BFloat16 || dtype == Float32 || dtype == Float64
}

// IsInt returns whether dtype is a signed or unsigned integer type.
func (dtype DType) IsInt() bool {
	switch dtype {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsUnsigned returns whether dtype is one of the unsigned integer types.
func (dtype DType) IsUnsigned() bool {
	return dtype == Uint8 || dtype == Uint16 || dtype == Uint32 || dtype == Uint64
}

// Supported lists the Go types with a corresponding DType.
// Used as a constraint for generics.
//
// Notice Go's `int` type is not portable, it may translate to Int32 or Int64
// depending on the platform. BFloat16 has no native Go representation.
type Supported interface {
	bool | float16.Float16 | float32 | float64 |
		int | int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64
}

// FromGenericsType returns the DType corresponding to the Go type parameter.
func FromGenericsType[T Supported]() DType {
	var t T
	switch (any(t)).(type) {
	case bool:
		return Bool
	case float16.Float16:
		return Float16
	case float32:
		return Float32
	case float64:
		return Float64
	case int:
		switch strconv.IntSize {
		case 32:
			return Int32
		case 64:
			return Int64
		}
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	}
	return InvalidDType
}
