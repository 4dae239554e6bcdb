package window

import (
	"errors"
	"testing"

	"mrcio/pkg/mrc"
)

func micrograph(t *testing.T, nx, ny int) *mrc.Array {
	t.Helper()
	data := make([]float32, nx*ny)
	for i := range data {
		data[i] = float32(i)
	}
	a, err := mrc.NewArray(data, ny, nx)
	if err != nil {
		t.Fatalf("NewArray failed: %v", err)
	}
	return a
}

func TestWindow(t *testing.T) {
	img := micrograph(t, 10, 8)
	w, err := Window(img, 5, 4, 4)
	if err != nil {
		t.Fatalf("Window failed: %v", err)
	}
	shape := w.Shape()
	if shape[0] != 4 || shape[1] != 4 {
		t.Fatalf("Expected 4x4 window, got %v", shape)
	}
	// top-left of the window is (3, 2)
	if got := w.At(0); got != 2*10+3 {
		t.Errorf("Expected first element %d, got %f", 2*10+3, got)
	}
	if w.Type() != mrc.Float32 {
		t.Errorf("Expected float32 window, got %s", w.Type())
	}
}

func TestWindowInvalidCoordinate(t *testing.T) {
	img := micrograph(t, 10, 8)
	tests := []struct {
		name       string
		x, y, size int
	}{
		{"negative x", -1, 4, 2},
		{"past width", 10, 4, 2},
		{"past height", 5, 8, 2},
		{"window leaves left edge", 1, 4, 4},
		{"window leaves bottom edge", 5, 7, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Window(img, tt.x, tt.y, tt.size); !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("Expected ErrInvalidCoordinate, got %v", err)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	img := micrograph(t, 10, 8)
	wins, err := Extract(img, []Coordinate{{X: 3, Y: 3}, {X: 6, Y: 4}}, 2)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(wins) != 2 {
		t.Fatalf("Expected 2 windows, got %d", len(wins))
	}
	if _, err := Extract(img, []Coordinate{{X: 3, Y: 3}, {X: 0, Y: 0}}, 2); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("Expected ErrInvalidCoordinate, got %v", err)
	}
}
