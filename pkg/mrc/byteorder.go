package mrc

import (
	"encoding/binary"
	"math/bits"
)

// Endianness is the byte order a machine stamp declares.
type Endianness int

const (
	Unknown Endianness = iota
	Little
	Big
)

func (e Endianness) String() string {
	switch e {
	case Little:
		return "little"
	case Big:
		return "big"
	default:
		return "unknown"
	}
}

// Order returns the binary.ByteOrder for e, or nil when unknown.
func (e Endianness) Order() binary.ByteOrder {
	switch e {
	case Little:
		return binary.LittleEndian
	case Big:
		return binary.BigEndian
	default:
		return nil
	}
}

const stampMask = 0xFFFF0000

// Stamp patterns after masking the low 16 bits. Writers disagree on how the
// stamp is laid out, so both the standard "DA" form and the "DD" form seen in
// older little-endian files are accepted. The decimal entries are the values
// some writers store, identical to the hex ones once masked.
var stampPatterns = [...]struct {
	pattern uint32
	order   Endianness
}{
	{0x11110000, Big},
	{0x44440000, Little},
	{0x44410000, Little},
	{286326784, Big},
	{1145110528, Little},
}

// ClassifyMarker reports the byte order named by a raw machine stamp.
func ClassifyMarker(raw uint32) Endianness {
	masked := raw & stampMask
	for _, p := range stampPatterns {
		if masked == p.pattern {
			return p.order
		}
	}
	return Unknown
}

// ResolveByteOrder classifies the stamp as read, then byte swapped. A stamp
// that matches neither is tolerated only when all three cell angles are 90,
// in which case native order is assumed; otherwise ok is false.
func ResolveByteOrder(marker uint32, alpha, beta, gamma float32) (e Endianness, ok bool) {
	if e = ClassifyMarker(marker); e != Unknown {
		return e, true
	}
	if e = ClassifyMarker(bits.ReverseBytes32(marker)); e != Unknown {
		return e, true
	}
	if alpha == 90 && beta == 90 && gamma == 90 {
		return NativeEndianness(), true
	}
	return Unknown, false
}

var stampBytes = map[Endianness][4]byte{
	Little: {0x44, 0x41, 0x00, 0x00},
	Big:    {0x11, 0x11, 0x00, 0x00},
}

// MachineStamp returns the stamp value that, encoded in order, produces the
// standard stamp bytes for that order.
func MachineStamp(order binary.ByteOrder) uint32 {
	b := stampBytes[endiannessOf(order)]
	return order.Uint32(b[:])
}

// NativeEndianness reports the byte order of the running platform.
func NativeEndianness() Endianness {
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		return Little
	}
	return Big
}

func nativeOrder() binary.ByteOrder {
	return NativeEndianness().Order()
}

func swappedOrder(order binary.ByteOrder) binary.ByteOrder {
	if endiannessOf(order) == Big {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func endiannessOf(order binary.ByteOrder) Endianness {
	if order == nil {
		return NativeEndianness()
	}
	if order.Uint16([]byte{1, 0}) == 1 {
		return Little
	}
	return Big
}
