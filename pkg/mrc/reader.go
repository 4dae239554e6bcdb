package mrc

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"os"
)

// NoIndex asks ReadImage for the whole object: the full volume for a
// volume, the first image otherwise.
const NoIndex = -1

// Source is a random-access byte stream whose size can be found by seeking.
// *os.File and *bytes.Reader satisfy it.
type Source interface {
	io.ReaderAt
	io.Seeker
}

// Metadata is the caller-facing summary of a header.
type Metadata struct {
	Format string  `yaml:"format"`
	Layout string  `yaml:"layout"`
	Apix   float64 `yaml:"apix"`
	Count  int     `yaml:"count"`
	NX     int     `yaml:"nx"`
	NY     int     `yaml:"ny"`
	NZ     int     `yaml:"nz"`

	// Fields holds every raw header field under an "mrc_" prefixed key so
	// a writer can carry them over.
	Fields map[string]any `yaml:"fields"`
}

// FieldPrefix namespaces raw header fields in Metadata.Fields.
const FieldPrefix = "mrc_"

// ReadMetadata reads the header of r and summarizes it. The pixel size is
// xlen/nx; nz is reported as 1 unless the file is a volume.
func ReadMetadata(r io.ReaderAt) (*Metadata, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	v, err := Classify(h)
	if err != nil {
		return nil, err
	}
	m := &Metadata{
		Format: "mrc",
		Layout: v.Kind.String(),
		Apix:   float64(h.XLen) / float64(h.NX),
		Count:  v.Count,
		NX:     v.NX,
		NY:     v.NY,
		NZ:     1,
		Fields: make(map[string]any),
	}
	if v.Kind == Volume {
		m.NZ = v.NZ
	}
	for k, val := range h.Fields() {
		m.Fields[FieldPrefix+k] = val
	}
	return m, nil
}

// ReadImage reads section index of r, or with NoIndex the whole volume or
// first image. The file size must match the header exactly.
func ReadImage(r Source, index int) (*Array, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	v, err := Classify(h)
	if err != nil {
		return nil, err
	}
	idx := index
	if idx == NoIndex {
		idx = 0
	}
	if idx < 0 || idx >= v.Sections() {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, v.Sections())
	}
	size, err := streamSize(r)
	if err != nil {
		return nil, err
	}
	if size != v.FileSize() {
		return nil, fmt.Errorf("%w: %d != %d (nsymbt %d)", ErrSizeMismatch, size, v.FileSize(), h.NSymBT)
	}
	if index == NoIndex && v.Kind == Volume {
		return readVolume(r, h.Order, v)
	}
	return readSection(r, h.Order, v, idx)
}

func readSection(r io.ReaderAt, order binary.ByteOrder, v PayloadView, i int) (*Array, error) {
	data, err := readElements(r, v.ImageOffset(i), v.ImageElements(), v.Element, order)
	if err != nil {
		return nil, err
	}
	stored := &Array{shape: []int{v.ImageElements()}, typ: v.Element.ValueType(), data: data}
	if !v.Transpose {
		return stored.Reshape(v.ImageShape()...)
	}
	return stored.gather(v.ImageShape(), func(j int) int {
		return v.storedImageIndex(j/v.NX, j%v.NX)
	}), nil
}

func readVolume(r io.ReaderAt, order binary.ByteOrder, v PayloadView) (*Array, error) {
	data, err := readElements(r, v.Base, v.VolumeElements(), v.Element, order)
	if err != nil {
		return nil, err
	}
	stored := &Array{shape: []int{v.VolumeElements()}, typ: v.Element.ValueType(), data: data}
	if !v.Transpose {
		return stored.Reshape(v.VolumeShape()...)
	}
	return stored.gather(v.VolumeShape(), func(i int) int {
		a, b, c := i/(v.NX*v.NZ), (i/v.NZ)%v.NX, i%v.NZ
		return v.storedVolumeIndex(a, b, c)
	}), nil
}

// IterImages returns a sequence over every 2-D section of r in order. The
// sequence is single use: once exhausted, ranging over it again yields
// nothing. Unlike ReadImage it does not check the file size, so a truncated
// file yields an error at the first missing section.
func IterImages(r io.ReaderAt) (iter.Seq2[*Array, error], error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	v, err := Classify(h)
	if err != nil {
		return nil, err
	}
	next := 0
	return func(yield func(*Array, error) bool) {
		for next < v.Sections() {
			img, err := readSection(r, h.Order, v, next)
			next++
			if err != nil {
				next = v.Sections()
			}
			if !yield(img, err) || err != nil {
				return
			}
		}
	}, nil
}

// CountImages returns the raw nz field, without the stack/volume
// distinction Classify makes.
func CountImages(r io.ReaderAt) (int, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return 0, err
	}
	return int(h.NZ), nil
}

// IsVolume reports whether nz, nx and ny are all equal.
func IsVolume(r io.ReaderAt) (bool, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return false, err
	}
	return h.NZ == h.NX && h.NZ == h.NY, nil
}

// ReadImageFile opens path and reads one image or volume from it.
func ReadImageFile(path string, index int) (*Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ReadImage(f, index)
}

// ReadMetadataFile opens path and reads its header summary.
func ReadMetadataFile(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ReadMetadata(f)
}

func streamSize(s io.Seeker) (int64, error) {
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("finding stream size: %w", err)
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("finding stream size: %w", err)
	}
	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return 0, fmt.Errorf("finding stream size: %w", err)
	}
	return end, nil
}
