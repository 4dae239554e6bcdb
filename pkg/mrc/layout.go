package mrc

import (
	"fmt"
	"math"
	"math/bits"
)

// ViewKind names the logical interpretation of the payload.
type ViewKind int

const (
	SingleImage ViewKind = iota
	ImageStack
	Volume
)

func (k ViewKind) String() string {
	switch k {
	case SingleImage:
		return "image"
	case ImageStack:
		return "stack"
	case Volume:
		return "volume"
	default:
		return fmt.Sprintf("ViewKind(%d)", int(k))
	}
}

// PayloadView is the classified layout of the bytes after the header.
//
// The nz field means either the depth of a volume or the number of images in
// a stack; Classify is the only place that decides which. A file is a volume
// when nz equals nx, so a stack whose image count equals its width is read
// as a volume. No stored flag distinguishes the two.
type PayloadView struct {
	Kind ViewKind

	// Count is the logical number of images: nz for stacks, 1 otherwise.
	Count int

	NX, NY, NZ int
	Element    ElementType

	// Transpose is set when mapc=2 and mapr=1, i.e. x varies slowest in
	// the stored data.
	Transpose bool

	// Base is the offset of the first payload byte, past the symmetry table.
	Base int64
}

// Classify derives the payload view of h.
func Classify(h *Header) (PayloadView, error) {
	elem, err := ModeToElement(h.Mode)
	if err != nil {
		return PayloadView{}, err
	}
	if h.NSymBT < 0 {
		return PayloadView{}, fmt.Errorf("%w: negative symmetry table length %d", ErrMalformedHeader, h.NSymBT)
	}
	v := PayloadView{
		NX:        int(h.NX),
		NY:        int(h.NY),
		NZ:        int(h.NZ),
		Element:   elem,
		Transpose: h.MapC == 2 && h.MapR == 1,
		Base:      HeaderSize + int64(h.NSymBT),
	}
	if _, ok := payloadBytes(v); !ok {
		return PayloadView{}, fmt.Errorf("%w: payload of %dx%dx%d %s elements overflows",
			ErrMalformedHeader, h.NX, h.NY, h.NZ, elem)
	}
	switch {
	case h.NZ == h.NX:
		v.Kind, v.Count = Volume, 1
	case h.NZ > 1:
		v.Kind, v.Count = ImageStack, int(h.NZ)
	default:
		v.Kind, v.Count = SingleImage, 1
	}
	return v, nil
}

// payloadBytes returns the byte length of the whole payload, or false when
// it or the file size overflows.
func payloadBytes(v PayloadView) (int64, bool) {
	n, ok := mulInt64(int64(v.NX), int64(v.NY))
	if ok {
		n, ok = mulInt64(n, int64(v.NZ))
	}
	if ok {
		n, ok = mulInt64(n, int64(v.Element.Size()))
	}
	if !ok || n > math.MaxInt || n > math.MaxInt64-v.Base {
		return 0, false
	}
	return n, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}

// Sections is the number of addressable 2-D sections, the raw nz.
func (v PayloadView) Sections() int {
	return v.NZ
}

// ImageElements is the element count of one 2-D section.
func (v PayloadView) ImageElements() int {
	return v.NX * v.NY
}

// ImageBytes is the byte length of one 2-D section.
func (v PayloadView) ImageBytes() int64 {
	return int64(v.ImageElements()) * int64(v.Element.Size())
}

// ImageOffset returns the byte offset of section i.
func (v PayloadView) ImageOffset(i int) int64 {
	return v.Base + int64(i)*v.ImageBytes()
}

// VolumeElements is the element count of the whole payload.
func (v PayloadView) VolumeElements() int {
	return v.NX * v.NY * v.NZ
}

// FileSize is the exact size a complete file with this layout has.
func (v PayloadView) FileSize() int64 {
	size, _ := payloadBytes(v)
	return v.Base + size
}

// ImageShape is the shape of a decoded 2-D section.
func (v PayloadView) ImageShape() []int {
	return []int{v.NY, v.NX}
}

// VolumeShape is the shape of a decoded volume. Transposed volumes are
// stored as (nx, ny, nz) and each depth slice is transposed on read.
func (v PayloadView) VolumeShape() []int {
	if v.Transpose {
		return []int{v.NY, v.NX, v.NZ}
	}
	return []int{v.NZ, v.NY, v.NX}
}

// storedImageIndex maps a position in the decoded (ny, nx) image to the
// element index in the stored section.
func (v PayloadView) storedImageIndex(y, x int) int {
	if v.Transpose {
		// stored as (nx, ny)
		return x*v.NY + y
	}
	return y*v.NX + x
}

// storedVolumeIndex maps the decoded volume position (a, b, c) to the
// stored element index.
func (v PayloadView) storedVolumeIndex(a, b, c int) int {
	if v.Transpose {
		// decoded (ny, nx, nz) from stored (nx, ny, nz)
		return b*v.NY*v.NZ + a*v.NZ + c
	}
	return a*v.NY*v.NX + b*v.NX + c
}
