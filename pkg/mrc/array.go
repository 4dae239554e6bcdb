package mrc

import (
	"fmt"
	"reflect"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ComplexInt16 is one element of mode 3: a real and imaginary int16 pair.
type ComplexInt16 struct {
	Real, Imag int16
}

// Value lists the Go element types an Array can hold.
type Value interface {
	bool | int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64 | complex64 | complex128 | ComplexInt16
}

type realNumber interface {
	int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

type complexNumber interface {
	complex64 | complex128
}

// Array is a dense row-major n-dimensional array. Shape lists the slowest
// varying axis first: (depth, height, width) for volumes and stacks,
// (height, width) for images.
type Array struct {
	shape []int
	typ   ValueType
	data  any
}

// NewArray wraps data with the given shape. Without a shape the array is
// one-dimensional.
func NewArray[T Value](data []T, shape ...int) (*Array, error) {
	if len(shape) == 0 {
		shape = []int{len(data)}
	}
	n, err := shapeLen(shape)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: shape %v needs %d elements, have %d", ErrShapeMismatch, shape, n, len(data))
	}
	return &Array{shape: slices.Clone(shape), typ: valueTypeOf(data), data: data}, nil
}

// shapeLen returns the element count of shape, which must have at least
// one dimension and only positive ones.
func shapeLen(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: empty shape", ErrShapeMismatch)
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("%w: non-positive dimension in %v", ErrShapeMismatch, shape)
		}
		n *= d
	}
	return n, nil
}

func valueTypeOf(data any) ValueType {
	switch data.(type) {
	case []bool:
		return Bool
	case []int8:
		return Int8
	case []int16:
		return Int16
	case []int32:
		return Int32
	case []int64:
		return Int64
	case []uint8:
		return Uint8
	case []uint16:
		return Uint16
	case []uint32:
		return Uint32
	case []uint64:
		return Uint64
	case []float32:
		return Float32
	case []float64:
		return Float64
	case []complex64:
		return Complex64
	case []complex128:
		return Complex128
	case []ComplexInt16:
		return ComplexInt16Pair
	default:
		return InvalidValue
	}
}

// Zeros allocates a zero-filled array of element type e.
func Zeros(e ElementType, shape ...int) (*Array, error) {
	n, err := shapeLen(shape)
	if err != nil {
		return nil, err
	}
	data, err := makeElements(e, n)
	if err != nil {
		return nil, err
	}
	return &Array{shape: slices.Clone(shape), typ: e.ValueType(), data: data}, nil
}

func makeElements(e ElementType, n int) (any, error) {
	switch e {
	case ElemInt8:
		return make([]int8, n), nil
	case ElemInt16:
		return make([]int16, n), nil
	case ElemFloat32:
		return make([]float32, n), nil
	case ElemComplexInt16:
		return make([]ComplexInt16, n), nil
	case ElemComplex64:
		return make([]complex64, n), nil
	case ElemUint16:
		return make([]uint16, n), nil
	case ElemUint8:
		return make([]uint8, n), nil
	default:
		return nil, fmt.Errorf("%w: element type %s", ErrUnsupportedMode, e)
	}
}

// Data returns the backing slice when the array holds elements of type T.
func Data[T Value](a *Array) ([]T, bool) {
	d, ok := a.data.([]T)
	return d, ok
}

// Shape returns a copy of the array shape.
func (a *Array) Shape() []int { return slices.Clone(a.shape) }

// Type returns the element value type.
func (a *Array) Type() ValueType { return a.typ }

// Len returns the total number of elements.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.shape {
		n *= d
	}
	return n
}

// Reshape returns an array sharing a's data with a new shape.
func (a *Array) Reshape(shape ...int) (*Array, error) {
	n, err := shapeLen(shape)
	if err != nil {
		return nil, err
	}
	if n != a.Len() {
		return nil, fmt.Errorf("%w: cannot reshape %v to %v", ErrShapeMismatch, a.shape, shape)
	}
	return &Array{shape: slices.Clone(shape), typ: a.typ, data: a.data}, nil
}

// At returns element i as a float64. Complex elements yield their real part.
func (a *Array) At(i int) float64 {
	switch d := a.data.(type) {
	case []bool:
		if d[i] {
			return 1
		}
		return 0
	case []int8:
		return float64(d[i])
	case []int16:
		return float64(d[i])
	case []int32:
		return float64(d[i])
	case []int64:
		return float64(d[i])
	case []uint8:
		return float64(d[i])
	case []uint16:
		return float64(d[i])
	case []uint32:
		return float64(d[i])
	case []uint64:
		return float64(d[i])
	case []float32:
		return float64(d[i])
	case []float64:
		return d[i]
	case []complex64:
		return float64(real(d[i]))
	case []complex128:
		return real(d[i])
	case []ComplexInt16:
		return float64(d[i].Real)
	}
	return 0
}

// Float64s returns the elements widened to float64.
func (a *Array) Float64s() []float64 {
	if d, ok := a.data.([]float64); ok {
		return slices.Clone(d)
	}
	out := make([]float64, a.Len())
	for i := range out {
		out[i] = a.At(i)
	}
	return out
}

// Convert casts the array to the value type of element type e. Every
// conversion is a direct Go conversion per element, so narrowing (for
// example float64 to float32) rounds exactly as a plain cast does.
func (a *Array) Convert(e ElementType) (*Array, error) {
	target := e.ValueType()
	if target == a.typ {
		return a, nil
	}
	var (
		out any
		ok  bool
	)
	switch e {
	case ElemInt8:
		out, ok = convertReal[int8](a.data)
	case ElemInt16:
		out, ok = convertReal[int16](a.data)
	case ElemFloat32:
		out, ok = convertReal[float32](a.data)
	case ElemUint16:
		out, ok = convertReal[uint16](a.data)
	case ElemUint8:
		out, ok = convertReal[uint8](a.data)
	case ElemComplex64:
		out, ok = convertComplex[complex64](a.data)
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot convert %s to %s", ErrUnsupportedWriteType, a.typ, e)
	}
	return &Array{shape: slices.Clone(a.shape), typ: target, data: out}, nil
}

func castReal[D, S realNumber](src []S) []D {
	out := make([]D, len(src))
	for i, v := range src {
		out[i] = D(v)
	}
	return out
}

func convertReal[D realNumber](data any) ([]D, bool) {
	switch s := data.(type) {
	case []bool:
		out := make([]D, len(s))
		for i, v := range s {
			if v {
				out[i] = 1
			}
		}
		return out, true
	case []int8:
		return castReal[D](s), true
	case []int16:
		return castReal[D](s), true
	case []int32:
		return castReal[D](s), true
	case []int64:
		return castReal[D](s), true
	case []uint8:
		return castReal[D](s), true
	case []uint16:
		return castReal[D](s), true
	case []uint32:
		return castReal[D](s), true
	case []uint64:
		return castReal[D](s), true
	case []float32:
		return castReal[D](s), true
	case []float64:
		return castReal[D](s), true
	}
	return nil, false
}

func convertComplex[D complexNumber](data any) ([]D, bool) {
	switch s := data.(type) {
	case []complex64:
		out := make([]D, len(s))
		for i, v := range s {
			out[i] = D(v)
		}
		return out, true
	case []complex128:
		out := make([]D, len(s))
		for i, v := range s {
			out[i] = D(v)
		}
		return out, true
	}
	return nil, false
}

// Stats summarizes the real part of the array.
type Stats struct {
	Min, Max, Mean, RMS float64
}

// Stats computes the minimum, maximum, mean and the RMS deviation from the
// mean of the array.
func (a *Array) Stats() Stats {
	x := a.Float64s()
	if len(x) == 0 {
		return Stats{}
	}
	return Stats{
		Min:  floats.Min(x),
		Max:  floats.Max(x),
		Mean: stat.Mean(x, nil),
		RMS:  stat.PopStdDev(x, nil),
	}
}

// Dense returns a copy of a 2-D real array as a gonum matrix.
func (a *Array) Dense() (*mat.Dense, error) {
	if len(a.shape) != 2 {
		return nil, fmt.Errorf("%w: dense view needs 2 dimensions, have %v", ErrShapeMismatch, a.shape)
	}
	switch a.typ {
	case Complex64, Complex128, ComplexInt16Pair:
		return nil, fmt.Errorf("dense view of %s array: %w", a.typ, ErrUnsupportedMode)
	}
	return mat.NewDense(a.shape[0], a.shape[1], a.Float64s()), nil
}

// Equal reports whether b has the same shape, type and elements as a.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.typ == b.typ && slices.Equal(a.shape, b.shape) && reflect.DeepEqual(a.data, b.data)
}

// Crop returns the h by w region of a 2-D array whose top-left element is
// (y0, x0). The element type is preserved.
func (a *Array) Crop(y0, x0, h, w int) (*Array, error) {
	if len(a.shape) != 2 {
		return nil, fmt.Errorf("%w: crop needs a 2-D array, have %v", ErrShapeMismatch, a.shape)
	}
	ny, nx := a.shape[0], a.shape[1]
	if h <= 0 || w <= 0 || y0 < 0 || x0 < 0 || y0+h > ny || x0+w > nx {
		return nil, fmt.Errorf("%w: region %dx%d at (%d,%d) outside %v", ErrShapeMismatch, h, w, y0, x0, a.shape)
	}
	return a.gather([]int{h, w}, func(i int) int {
		return (y0+i/w)*nx + x0 + i%w
	}), nil
}

// gather builds a new array of the given shape whose element i is element
// index(i) of a.
func (a *Array) gather(shape []int, index func(int) int) *Array {
	n := 1
	for _, d := range shape {
		n *= d
	}
	var out any
	switch d := a.data.(type) {
	case []int8:
		out = gatherSlice(d, n, index)
	case []int16:
		out = gatherSlice(d, n, index)
	case []float32:
		out = gatherSlice(d, n, index)
	case []ComplexInt16:
		out = gatherSlice(d, n, index)
	case []complex64:
		out = gatherSlice(d, n, index)
	case []uint16:
		out = gatherSlice(d, n, index)
	case []uint8:
		out = gatherSlice(d, n, index)
	case []bool:
		out = gatherSlice(d, n, index)
	case []int32:
		out = gatherSlice(d, n, index)
	case []int64:
		out = gatherSlice(d, n, index)
	case []uint32:
		out = gatherSlice(d, n, index)
	case []uint64:
		out = gatherSlice(d, n, index)
	case []float64:
		out = gatherSlice(d, n, index)
	case []complex128:
		out = gatherSlice(d, n, index)
	default:
		panic(fmt.Sprintf("mrc: gather on %s array", a.typ))
	}
	return &Array{shape: slices.Clone(shape), typ: a.typ, data: out}
}

func gatherSlice[T any](src []T, n int, index func(int) int) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = src[index(i)]
	}
	return out
}
