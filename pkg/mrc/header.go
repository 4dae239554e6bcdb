package mrc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/bits"
	"strconv"
)

const (
	extraSize  = 100
	mapTagSize = 4
	labelSize  = 80
	// MaxLabels is the number of fixed-width text labels in a header.
	MaxLabels = 10
)

// Header is the fixed 1024-byte record at the start of every file.
//
// Order is not stored in the record itself; it is the byte order the
// numeric fields were decoded in and will be encoded in.
type Header struct {
	NX, NY, NZ                int32
	Mode                      Mode
	NXStart, NYStart, NZStart int32
	MX, MY, MZ                int32
	XLen, YLen, ZLen          float32
	Alpha, Beta, Gamma        float32
	MapC, MapR, MapS          int32
	AMin, AMax, AMean         float32
	ISpg                      int32
	NSymBT                    int32
	Extra                     [extraSize]byte
	XOrigin, YOrigin, ZOrigin float32
	Map                       string
	MachineStamp              uint32
	RMS                       float32
	NLabels                   int32
	Labels                    [MaxLabels]string

	Order binary.ByteOrder
}

// fieldBuf walks a header buffer field by field at fixed offsets.
type fieldBuf struct {
	buf   []byte
	order binary.ByteOrder
	pos   int
}

func (b *fieldBuf) int32() int32 {
	v := int32(b.order.Uint32(b.buf[b.pos:]))
	b.pos += 4
	return v
}

func (b *fieldBuf) uint32() uint32 {
	v := b.order.Uint32(b.buf[b.pos:])
	b.pos += 4
	return v
}

func (b *fieldBuf) float32() float32 {
	return math.Float32frombits(b.uint32())
}

func (b *fieldBuf) text(n int) string {
	s := bytes.TrimRight(b.buf[b.pos:b.pos+n], "\x00")
	b.pos += n
	return string(s)
}

func (b *fieldBuf) bytes(dst []byte) {
	b.pos += copy(dst, b.buf[b.pos:b.pos+len(dst)])
}

func (b *fieldBuf) putInt32(v int32) {
	b.putUint32(uint32(v))
}

func (b *fieldBuf) putUint32(v uint32) {
	b.order.PutUint32(b.buf[b.pos:], v)
	b.pos += 4
}

func (b *fieldBuf) putFloat32(v float32) {
	b.putUint32(math.Float32bits(v))
}

// putText writes s NUL padded to n bytes, truncating when longer.
func (b *fieldBuf) putText(s string, n int) {
	field := b.buf[b.pos : b.pos+n]
	clear(field)
	copy(field, s)
	b.pos += n
}

func (b *fieldBuf) putBytes(src []byte) {
	b.pos += copy(b.buf[b.pos:], src)
}

// DecodeHeader parses a header record with its numeric fields in order.
// The result is not validated.
func DecodeHeader(buf []byte, order binary.ByteOrder) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedHeader, HeaderSize, len(buf))
	}
	b := &fieldBuf{buf: buf, order: order}
	h := &Header{Order: order}

	h.NX, h.NY, h.NZ = b.int32(), b.int32(), b.int32()
	h.Mode = Mode(b.int32())
	h.NXStart, h.NYStart, h.NZStart = b.int32(), b.int32(), b.int32()
	h.MX, h.MY, h.MZ = b.int32(), b.int32(), b.int32()
	h.XLen, h.YLen, h.ZLen = b.float32(), b.float32(), b.float32()
	h.Alpha, h.Beta, h.Gamma = b.float32(), b.float32(), b.float32()
	h.MapC, h.MapR, h.MapS = b.int32(), b.int32(), b.int32()
	h.AMin, h.AMax, h.AMean = b.float32(), b.float32(), b.float32()
	h.ISpg = b.int32()
	h.NSymBT = b.int32()
	b.bytes(h.Extra[:])
	h.XOrigin, h.YOrigin, h.ZOrigin = b.float32(), b.float32(), b.float32()
	h.Map = b.text(mapTagSize)
	h.MachineStamp = b.uint32()
	h.RMS = b.float32()
	h.NLabels = b.int32()
	for i := range h.Labels {
		h.Labels[i] = b.text(labelSize)
	}
	return h, nil
}

// Encode serializes the header into a new 1024-byte record.
func (h *Header) Encode() []byte {
	order := h.Order
	if order == nil {
		order = nativeOrder()
	}
	b := &fieldBuf{buf: make([]byte, HeaderSize), order: order}

	for _, v := range []int32{
		h.NX, h.NY, h.NZ, int32(h.Mode),
		h.NXStart, h.NYStart, h.NZStart,
		h.MX, h.MY, h.MZ,
	} {
		b.putInt32(v)
	}
	for _, v := range []float32{h.XLen, h.YLen, h.ZLen, h.Alpha, h.Beta, h.Gamma} {
		b.putFloat32(v)
	}
	b.putInt32(h.MapC)
	b.putInt32(h.MapR)
	b.putInt32(h.MapS)
	b.putFloat32(h.AMin)
	b.putFloat32(h.AMax)
	b.putFloat32(h.AMean)
	b.putInt32(h.ISpg)
	b.putInt32(h.NSymBT)
	b.putBytes(h.Extra[:])
	b.putFloat32(h.XOrigin)
	b.putFloat32(h.YOrigin)
	b.putFloat32(h.ZOrigin)
	b.putText(h.Map, mapTagSize)
	b.putUint32(h.MachineStamp)
	b.putFloat32(h.RMS)
	b.putInt32(h.NLabels)
	for _, l := range h.Labels {
		b.putText(l, labelSize)
	}
	return b.buf
}

// Validate checks that the mode is recognized, the byte order can be
// resolved and every dimension is positive.
func (h *Header) Validate() error {
	if !h.Mode.Recognized() {
		return fmt.Errorf("%w: mode %d", ErrUnsupportedMode, int32(h.Mode))
	}
	if _, ok := ResolveByteOrder(h.MachineStamp, h.Alpha, h.Beta, h.Gamma); !ok {
		return fmt.Errorf("%w: unrecognized machine stamp 0x%08x with cell angles %g/%g/%g",
			ErrMalformedHeader, h.MachineStamp, h.Alpha, h.Beta, h.Gamma)
	}
	if h.NX <= 0 || h.NY <= 0 || h.NZ <= 0 {
		return fmt.Errorf("%w: non-positive dimensions %dx%dx%d", ErrMalformedHeader, h.NX, h.NY, h.NZ)
	}
	return nil
}

// Valid reports whether Validate passes.
func (h *Header) Valid() bool {
	return h.Validate() == nil
}

// ReadHeader reads and validates the header at the start of r. A machine
// stamp naming a byte order selects the order tried first; without one the
// record is decoded in native order first. The other order is tried when
// the first does not validate.
func ReadHeader(r io.ReaderAt) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if n, err := r.ReadAt(buf, 0); n < HeaderSize {
		return nil, fmt.Errorf("%w: short read (%d bytes): %v", ErrMalformedHeader, n, err)
	}
	return parseHeader(buf)
}

// stampOffset is the position of the machine stamp in the record.
const stampOffset = 212

// stampOrder reports the byte order named by the raw stamp bytes, if any.
func stampOrder(buf []byte) Endianness {
	raw := binary.BigEndian.Uint32(buf[stampOffset:])
	if e := ClassifyMarker(raw); e != Unknown {
		return e
	}
	return ClassifyMarker(bits.ReverseBytes32(raw))
}

func parseHeader(buf []byte) (*Header, error) {
	order := nativeOrder()
	if e := stampOrder(buf); e != Unknown {
		order = e.Order()
	}
	h, err := DecodeHeader(buf, order)
	if err != nil {
		return nil, err
	}
	if h.Valid() {
		return h, nil
	}
	h, err = DecodeHeader(buf, swappedOrder(order))
	if err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid in both byte orders: %v", ErrMalformedHeader, err)
	}
	return h, nil
}

// IsReadable reports whether r starts with a header that validates in
// either byte order.
func IsReadable(r io.ReaderAt) bool {
	_, err := ReadHeader(r)
	return err == nil
}

// WriteHeader writes the encoded header at offset 0.
func WriteHeader(w io.WriterAt, h *Header) error {
	if _, err := w.WriteAt(h.Encode(), 0); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return nil
}

// Fields returns every raw header field keyed by its conventional name.
func (h *Header) Fields() map[string]any {
	f := map[string]any{
		"nx": h.NX, "ny": h.NY, "nz": h.NZ,
		"mode":    int32(h.Mode),
		"nxstart": h.NXStart, "nystart": h.NYStart, "nzstart": h.NZStart,
		"mx": h.MX, "my": h.MY, "mz": h.MZ,
		"xlen": h.XLen, "ylen": h.YLen, "zlen": h.ZLen,
		"alpha": h.Alpha, "beta": h.Beta, "gamma": h.Gamma,
		"mapc": h.MapC, "mapr": h.MapR, "maps": h.MapS,
		"amin": h.AMin, "amax": h.AMax, "amean": h.AMean,
		"ispg":    h.ISpg,
		"nsymbt":  h.NSymBT,
		"extra":   string(bytes.TrimRight(h.Extra[:], "\x00")),
		"xorigin": h.XOrigin, "yorigin": h.YOrigin, "zorigin": h.ZOrigin,
		"map":       h.Map,
		"byteorder": h.MachineStamp,
		"rms":       h.RMS,
		"nlabels":   h.NLabels,
	}
	for i, l := range h.Labels {
		f["label"+strconv.Itoa(i)] = l
	}
	return f
}
