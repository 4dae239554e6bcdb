package mrc

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// memFile is an in-memory file implementing ReaderAt, WriterAt and Seeker.
type memFile struct {
	buf []byte
	pos int64
}

func (m *memFile) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memFile) WriteAt(p []byte, off int64) (int, error) {
	if end := off + int64(len(p)); end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	return copy(m.buf[off:], p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.buf)) + offset
	}
	if m.pos < 0 {
		return 0, errors.New("negative position")
	}
	return m.pos, nil
}

func mustArray[T Value](t *testing.T, data []T, shape ...int) *Array {
	t.Helper()
	a, err := NewArray(data, shape...)
	if err != nil {
		t.Fatalf("NewArray failed: %v", err)
	}
	return a
}

func ramp[T realNumber](n int) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = T(i % 100)
	}
	return out
}

// testHeader returns a valid header for an nx*ny*nz float32 file.
func testHeader(nx, ny, nz int32) *Header {
	h := &Header{
		NX: nx, NY: ny, NZ: nz,
		Mode:  ModeFloat32,
		MX:    nx, MY: ny, MZ: nz,
		XLen:  float32(nx), YLen: float32(ny), ZLen: float32(nz),
		Alpha: 90, Beta: 90, Gamma: 90,
		MapC: 1, MapR: 2, MapS: 3,
		Map:   "MAP ",
		Order: nativeOrder(),
	}
	h.MachineStamp = MachineStamp(h.Order)
	return h
}

func tempPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	return st.Size()
}
