package mrc

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// DefaultLabel is the label recorded in synthesized headers.
const DefaultLabel = "Created by mrcio"

// Stream is the handle WriteImage needs: it writes the payload and reads
// back an existing header when extending a stack.
type Stream interface {
	io.ReaderAt
	io.WriterAt
}

// WriteOption configures WriteImage.
type WriteOption func(*writeOptions)

type writeOptions struct {
	index  int
	header *Header
	apix   float64
	label  string
	order  binary.ByteOrder
}

func defaultWriteOptions() *writeOptions {
	return &writeOptions{
		index: NoIndex,
		apix:  1.0,
		label: DefaultLabel,
	}
}

// WithIndex writes the array as image index of a stack.
func WithIndex(index int) WriteOption {
	return func(o *writeOptions) {
		o.index = index
	}
}

// WithHeader writes with h instead of a synthesized header when h is valid.
func WithHeader(h *Header) WriteOption {
	return func(o *writeOptions) {
		o.header = h
	}
}

// WithPixelSize sets the pixel size used to derive the cell lengths.
func WithPixelSize(apix float64) WriteOption {
	return func(o *writeOptions) {
		if apix > 0 {
			o.apix = apix
		}
	}
}

// WithLabel sets the text label of a synthesized header.
func WithLabel(label string) WriteOption {
	return func(o *writeOptions) {
		o.label = label
	}
}

// WithByteOrder selects the byte order of the written file. Synthesized
// headers default to the native order; supplied or existing headers keep
// their own unless this option is given.
func WithByteOrder(order binary.ByteOrder) WriteOption {
	return func(o *writeOptions) {
		o.order = order
	}
}

// WriteImage casts a to the element type of its write mode and writes it
// with a header.
//
// With no index or index 0 the stream is treated as a new file and the
// header is synthesized from the array (or taken from WithHeader). With
// index > 0 a valid header already in the stream is kept and extended so
// the stack holds at least index+1 images; the array must then have the
// stack's mode and image size. The header is always written first, the
// payload at the offset of image index.
func WriteImage(w Stream, a *Array, opts ...WriteOption) error {
	o := defaultWriteOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.index < NoIndex {
		return fmt.Errorf("%w: negative index %d", ErrIndexOutOfRange, o.index)
	}

	mode, err := ModeForWrite(a.Type())
	if err != nil {
		return err
	}
	elem, err := ModeToElement(mode)
	if err != nil {
		return err
	}
	arr, err := a.Convert(elem)
	if err != nil {
		return err
	}
	if len(arr.shape) == 0 || len(arr.shape) > 3 {
		return fmt.Errorf("%w: %d dimensions", ErrShapeMismatch, len(arr.shape))
	}
	if len(arr.shape) == 3 && o.index != NoIndex {
		return fmt.Errorf("%w: a 3-D array cannot be written as stack image %d", ErrShapeMismatch, o.index)
	}

	var h *Header
	switch {
	case o.header != nil && o.header.Valid():
		h, err = supplyHeader(o.header, arr, mode)
		if err == nil && o.index != NoIndex {
			if n := int32(o.index + 1); n > h.NZ {
				h.NZ, h.MZ, h.ZLen = n, n, float32(n)
			}
		}
	case o.index > 0:
		if existing, rerr := ReadHeader(w); rerr == nil {
			h, err = extendHeader(existing, arr, mode, o.index)
		}
	}
	if err != nil {
		return err
	}
	if h == nil {
		h = newHeader(arr, mode, o)
		if o.index != NoIndex {
			n := int32(o.index + 1)
			h.NZ, h.MZ, h.ZLen = n, n, float32(n)
		}
	}
	if o.order != nil && endiannessOf(o.order) != endiannessOf(h.Order) {
		h.Order = o.order
		h.MachineStamp = MachineStamp(o.order)
	}

	v, err := Classify(h)
	if err != nil {
		return err
	}
	payload, err := encodeElements(arr, h.Order)
	if err != nil {
		return err
	}
	if err := WriteHeader(w, h); err != nil {
		return err
	}
	off := v.Base + int64(max(o.index, 0))*int64(len(payload))
	if _, err := w.WriteAt(payload, off); err != nil {
		return fmt.Errorf("writing payload at offset %d: %w", off, err)
	}
	return nil
}

// geometry returns width, height and depth of a row-major shape.
func geometry(shape []int) (nx, ny, nz int) {
	nx, ny, nz = shape[len(shape)-1], 1, 1
	if len(shape) > 1 {
		ny = shape[len(shape)-2]
	}
	if len(shape) > 2 {
		nz = shape[len(shape)-3]
	}
	return nx, ny, nz
}

func newHeader(a *Array, mode Mode, o *writeOptions) *Header {
	order := o.order
	if order == nil {
		order = nativeOrder()
	}
	nx, ny, nz := geometry(a.shape)
	st := a.Stats()
	h := &Header{
		NX:           int32(nx),
		NY:           int32(ny),
		NZ:           int32(nz),
		Mode:         mode,
		MX:           int32(nx),
		MY:           int32(ny),
		MZ:           int32(nz),
		XLen:         float32(float64(nx) * o.apix),
		YLen:         float32(float64(ny) * o.apix),
		ZLen:         float32(float64(nz) * o.apix),
		Alpha:        90,
		Beta:         90,
		Gamma:        90,
		MapC:         1,
		MapR:         2,
		MapS:         3,
		AMin:         float32(st.Min),
		AMax:         float32(st.Max),
		AMean:        float32(st.Mean),
		RMS:          float32(st.RMS),
		Map:          "MAP ",
		MachineStamp: MachineStamp(order),
		NLabels:      1,
		Order:        order,
	}
	h.Labels[0] = o.label
	if len(a.shape) == 3 {
		h.NXStart = -int32((nx + 1) / 2)
		h.NYStart = -int32((ny + 1) / 2)
		h.NZStart = -int32((nz + 1) / 2)
	}
	return h
}

func checkImageSize(h *Header, a *Array) error {
	nx, ny, _ := geometry(a.shape)
	if int(h.NX) != nx || int(h.NY) != ny {
		return fmt.Errorf("%w: header is %dx%d, array is %dx%d", ErrShapeMismatch, h.NX, h.NY, nx, ny)
	}
	return nil
}

func supplyHeader(src *Header, a *Array, mode Mode) (*Header, error) {
	if err := checkImageSize(src, a); err != nil {
		return nil, err
	}
	h := *src
	if h.Order == nil {
		h.Order = nativeOrder()
	}
	h.Mode = mode
	return &h, nil
}

// extendHeader grows an existing stack header to hold image index and
// folds the statistics of a into it, assuming images 0..index-1 are present.
func extendHeader(existing *Header, a *Array, mode Mode, index int) (*Header, error) {
	if existing.Mode != mode {
		return nil, fmt.Errorf("%w: stack mode %d, array mode %d", ErrModeMismatch, existing.Mode, mode)
	}
	if err := checkImageSize(existing, a); err != nil {
		return nil, err
	}
	h := *existing
	if n := int32(index + 1); n > h.NZ {
		h.NZ, h.MZ, h.ZLen = n, n, float32(n)
	}

	st := a.Stats()
	n1, n2 := float64(index), 1.0
	m1, m2 := float64(h.AMean), st.Mean
	mean := (n1*m1 + n2*m2) / (n1 + n2)
	v1, v2 := float64(h.RMS)*float64(h.RMS), st.RMS*st.RMS
	variance := (n1*v1+n2*v2)/(n1+n2) + n1*n2*(m1-m2)*(m1-m2)/((n1+n2)*(n1+n2))

	h.AMin = float32(math.Min(float64(h.AMin), st.Min))
	h.AMax = float32(math.Max(float64(h.AMax), st.Max))
	h.AMean = float32(mean)
	h.RMS = float32(math.Sqrt(variance))
	return &h, nil
}

// WriteImageFile writes a to path. Index 0 or no index creates or
// truncates the file; a higher index opens the existing file for update.
func WriteImageFile(path string, a *Array, opts ...WriteOption) error {
	o := defaultWriteOptions()
	for _, opt := range opts {
		opt(o)
	}
	var (
		f   *os.File
		err error
	)
	if o.index > 0 {
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	} else {
		f, err = os.Create(path)
	}
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	if err := WriteImage(f, a, opts...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// IsWritable reports whether filename has an extension this codec writes:
// mrc, ccp4 or map, in any case.
func IsWritable(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "mrc", "ccp4", "map":
		return true
	}
	return false
}

// StackWriter appends images to one stack. It is the single writer session
// a multi-image file needs: each append depends on the header the previous
// one left, and every image must share the first image's mode.
type StackWriter struct {
	w    Stream
	opts []WriteOption
	mode Mode
	next int
}

// NewStackWriter starts a stack at w. opts apply to every append.
func NewStackWriter(w Stream, opts ...WriteOption) *StackWriter {
	return &StackWriter{w: w, opts: opts}
}

// Append writes a as the next image of the stack.
func (s *StackWriter) Append(a *Array) error {
	mode, err := ModeForWrite(a.Type())
	if err != nil {
		return err
	}
	if s.next > 0 && mode != s.mode {
		return fmt.Errorf("%w: stack mode %d, array mode %d", ErrModeMismatch, s.mode, mode)
	}
	opts := append(append([]WriteOption(nil), s.opts...), WithIndex(s.next))
	if err := WriteImage(s.w, a, opts...); err != nil {
		return err
	}
	s.mode = mode
	s.next++
	return nil
}

// Len returns the number of images appended so far.
func (s *StackWriter) Len() int {
	return s.next
}
