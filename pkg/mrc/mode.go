package mrc

import "fmt"

// Mode is the on-disk code selecting the pixel element type.
type Mode int32

// Recognized modes. Mode 5 is not assigned.
const (
	ModeInt8         Mode = 0
	ModeInt16        Mode = 1
	ModeFloat32      Mode = 2
	ModeComplexInt16 Mode = 3
	ModeComplex64    Mode = 4
	ModeUint16       Mode = 6
	ModeUint8        Mode = 7
)

// ElementType is the in-memory element type a mode decodes to.
type ElementType int

const (
	ElemInvalid ElementType = iota
	ElemInt8
	ElemInt16
	ElemFloat32
	ElemComplexInt16
	ElemComplex64
	ElemUint16
	ElemUint8
)

var elementNames = [...]string{
	ElemInvalid:      "invalid",
	ElemInt8:         "int8",
	ElemInt16:        "int16",
	ElemFloat32:      "float32",
	ElemComplexInt16: "complex-int16",
	ElemComplex64:    "complex64",
	ElemUint16:       "uint16",
	ElemUint8:        "uint8",
}

func (e ElementType) String() string {
	if e < 0 || int(e) >= len(elementNames) {
		return fmt.Sprintf("ElementType(%d)", int(e))
	}
	return elementNames[e]
}

// Size returns the number of bytes one element occupies on disk.
func (e ElementType) Size() int {
	switch e {
	case ElemInt8, ElemUint8:
		return 1
	case ElemInt16, ElemUint16:
		return 2
	case ElemFloat32, ElemComplexInt16:
		return 4
	case ElemComplex64:
		return 8
	default:
		return 0
	}
}

// ValueType returns the array value type holding elements of this type.
func (e ElementType) ValueType() ValueType {
	switch e {
	case ElemInt8:
		return Int8
	case ElemInt16:
		return Int16
	case ElemFloat32:
		return Float32
	case ElemComplexInt16:
		return ComplexInt16Pair
	case ElemComplex64:
		return Complex64
	case ElemUint16:
		return Uint16
	case ElemUint8:
		return Uint8
	default:
		return InvalidValue
	}
}

// ModeToElement returns the element type stored under mode.
func ModeToElement(mode Mode) (ElementType, error) {
	switch mode {
	case ModeInt8:
		return ElemInt8, nil
	case ModeInt16:
		return ElemInt16, nil
	case ModeFloat32:
		return ElemFloat32, nil
	case ModeComplexInt16:
		return ElemComplexInt16, nil
	case ModeComplex64:
		return ElemComplex64, nil
	case ModeUint16:
		return ElemUint16, nil
	case ModeUint8:
		return ElemUint8, nil
	default:
		return ElemInvalid, fmt.Errorf("%w: %d", ErrUnsupportedMode, int32(mode))
	}
}

// Recognized reports whether mode has an element type.
func (m Mode) Recognized() bool {
	_, err := ModeToElement(m)
	return err == nil
}

// ValueType tags the Go element type of an Array.
type ValueType int

const (
	InvalidValue ValueType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Complex64
	Complex128
	ComplexInt16Pair
)

var valueNames = [...]string{
	InvalidValue:     "invalid",
	Bool:             "bool",
	Int8:             "int8",
	Int16:            "int16",
	Int32:            "int32",
	Int64:            "int64",
	Uint8:            "uint8",
	Uint16:           "uint16",
	Uint32:           "uint32",
	Uint64:           "uint64",
	Float32:          "float32",
	Float64:          "float64",
	Complex64:        "complex64",
	Complex128:       "complex128",
	ComplexInt16Pair: "complex-int16",
}

func (v ValueType) String() string {
	if v < 0 || int(v) >= len(valueNames) {
		return fmt.Sprintf("ValueType(%d)", int(v))
	}
	return valueNames[v]
}

// ModeForWrite selects the mode an array of type v is written as.
//
// The reduction is many-to-one: booleans and int8 become int8, int16 stays
// int16, every wider integer and both float widths become float32, both
// complex widths become complex64, and uint16/uint8 keep their own modes.
// Writers cast the array to the mode's element type before encoding, which
// loses precision for 64-bit and large 32-bit integer inputs.
// Packed complex int16 data is readable but never written.
func ModeForWrite(v ValueType) (Mode, error) {
	switch v {
	case Bool, Int8:
		return ModeInt8, nil
	case Int16:
		return ModeInt16, nil
	case Int32, Int64, Uint32, Uint64, Float32, Float64:
		return ModeFloat32, nil
	case Complex64, Complex128:
		return ModeComplex64, nil
	case Uint16:
		return ModeUint16, nil
	case Uint8:
		return ModeUint8, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedWriteType, v)
	}
}
