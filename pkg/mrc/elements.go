package mrc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"slices"
)

// readChunk bounds each ReadAt so a header promising more data than the
// stream holds fails on the first short read instead of allocating it all.
const readChunk = 1 << 20

// readElements reads n elements of type e at off, interpreting them in order.
func readElements(r io.ReaderAt, off int64, n int, e ElementType, order binary.ByteOrder) (any, error) {
	want := n * e.Size()
	buf := make([]byte, 0, min(want, readChunk))
	for len(buf) < want {
		start := len(buf)
		k := min(want-start, readChunk)
		buf = slices.Grow(buf, k)[:start+k]
		if got, err := r.ReadAt(buf[start:], off+int64(start)); got < k {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("reading %d %s elements at offset %d: %w", n, e, off, err)
		}
	}
	return decodeElements(buf, e, order)
}

// decodeElements converts raw payload bytes to a typed slice.
func decodeElements(buf []byte, e ElementType, order binary.ByteOrder) (any, error) {
	size := e.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: element type %s", ErrUnsupportedMode, e)
	}
	dst, err := makeElements(e, len(buf)/size)
	if err != nil {
		return nil, err
	}
	if err := binary.Read(bytes.NewReader(buf), order, dst); err != nil {
		return nil, fmt.Errorf("decoding %s elements: %w", e, err)
	}
	return dst, nil
}

// encodeElements serializes the array data in order. The array must already
// hold an on-disk element type.
func encodeElements(a *Array, order binary.ByteOrder) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(a.Len() * 8)
	if err := binary.Write(&buf, order, a.data); err != nil {
		return nil, fmt.Errorf("encoding %s elements: %w", a.typ, err)
	}
	return buf.Bytes(), nil
}
