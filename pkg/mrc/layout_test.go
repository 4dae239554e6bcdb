package mrc

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		nx, ny, nz int32
		kind       ViewKind
		count      int
	}{
		{"cube volume", 64, 64, 64, Volume, 1},
		{"stack", 64, 64, 10, ImageStack, 10},
		{"single image", 100, 80, 1, SingleImage, 1},
		// A stack whose count equals its width cannot be told from a volume.
		{"ambiguous stack", 10, 20, 10, Volume, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Classify(testHeader(tt.nx, tt.ny, tt.nz))
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			if v.Kind != tt.kind {
				t.Errorf("expected %s, got %s", tt.kind, v.Kind)
			}
			if v.Count != tt.count {
				t.Errorf("expected count %d, got %d", tt.count, v.Count)
			}
			if v.Sections() != int(tt.nz) {
				t.Errorf("expected %d sections, got %d", tt.nz, v.Sections())
			}
		})
	}
}

func TestClassifyUnsupportedMode(t *testing.T) {
	h := testHeader(4, 4, 1)
	h.Mode = 5
	if _, err := Classify(h); !errors.Is(err, ErrUnsupportedMode) {
		t.Errorf("expected ErrUnsupportedMode, got %v", err)
	}
}

func TestPayloadOffsets(t *testing.T) {
	h := testHeader(64, 64, 10)
	h.NSymBT = 80
	v, err := Classify(h)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if v.Base != 1104 {
		t.Errorf("expected base 1104, got %d", v.Base)
	}
	if got, want := v.ImageOffset(3), int64(1104+3*64*64*4); got != want {
		t.Errorf("ImageOffset(3): expected %d, got %d", want, got)
	}
	if got, want := v.FileSize(), int64(1104+64*64*10*4); got != want {
		t.Errorf("FileSize: expected %d, got %d", want, got)
	}
}

func TestPayloadShapes(t *testing.T) {
	h := testHeader(6, 4, 6)
	v, _ := Classify(h)
	if v.Transpose {
		t.Fatal("default axis order should not transpose")
	}
	if !slices.Equal(v.ImageShape(), []int{4, 6}) {
		t.Errorf("image shape: got %v", v.ImageShape())
	}
	if !slices.Equal(v.VolumeShape(), []int{6, 4, 6}) {
		t.Errorf("volume shape: got %v", v.VolumeShape())
	}

	h.MapC, h.MapR = 2, 1
	v, _ = Classify(h)
	if !v.Transpose {
		t.Fatal("mapc=2, mapr=1 should transpose")
	}
	if !slices.Equal(v.VolumeShape(), []int{4, 6, 6}) {
		t.Errorf("transposed volume shape: got %v", v.VolumeShape())
	}
}

func TestClassifyRejectsOverflow(t *testing.T) {
	h := testHeader(math.MaxInt32, math.MaxInt32, 3)
	if _, err := Classify(h); !errors.Is(err, ErrMalformedHeader) {
		t.Errorf("expected ErrMalformedHeader, got %v", err)
	}

	h = testHeader(4, 4, 1)
	h.NSymBT = -8
	if _, err := Classify(h); !errors.Is(err, ErrMalformedHeader) {
		t.Errorf("negative nsymbt: expected ErrMalformedHeader, got %v", err)
	}
}
