package visualization

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"mrcio/internal/models"
	"mrcio/pkg/mrc"
)

func testVolume(t *testing.T, width, height, depth int, fill func(x, y, z int) float32) *models.Volume {
	t.Helper()
	data := make([]float32, width*height*depth)
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				data[z*width*height+y*width+x] = fill(x, y, z)
			}
		}
	}
	a, err := mrc.NewArray(data, depth, height, width)
	if err != nil {
		t.Fatalf("NewArray failed: %v", err)
	}
	vol, err := models.NewVolume(a, 1.0)
	if err != nil {
		t.Fatalf("NewVolume failed: %v", err)
	}
	return vol
}

// TestExtractSlice verifies that slices are correctly extracted from the volume
func TestExtractSlice(t *testing.T) {
	width, height, depth := 10, 8, 5

	// Each slice along Z has a unique value
	viewer := NewViewer(testVolume(t, width, height, depth, func(x, y, z int) float32 {
		return float32(z)
	}))

	for z := 0; z < depth; z++ {
		img, err := viewer.ExtractSlice("z", z)
		if err != nil {
			t.Fatalf("Failed to extract Z slice at position %d: %v", z, err)
		}

		bounds := img.Bounds()
		if bounds.Dx() != width || bounds.Dy() != height {
			t.Errorf("Expected Z slice dimensions %dx%d, got %dx%d",
				width, height, bounds.Dx(), bounds.Dy())
		}

		gray16Img, ok := img.(*image.Gray16)
		if !ok {
			t.Fatalf("Expected *image.Gray16, got %T", img)
		}

		expected := uint16(float64(z) / float64(depth-1) * 65535)
		got := gray16Img.Gray16At(width/2, height/2).Y
		if diff := int(got) - int(expected); diff < -1 || diff > 1 {
			t.Errorf("Expected Z slice value ~%d at center, got %d", expected, got)
		}
	}

	imgX, err := viewer.ExtractSlice("x", width/2)
	if err != nil {
		t.Fatalf("Failed to extract X slice: %v", err)
	}
	if b := imgX.Bounds(); b.Dx() != depth || b.Dy() != height {
		t.Errorf("Expected X slice dimensions %dx%d, got %dx%d", depth, height, b.Dx(), b.Dy())
	}

	imgY, err := viewer.ExtractSlice("y", height/2)
	if err != nil {
		t.Fatalf("Failed to extract Y slice: %v", err)
	}
	if b := imgY.Bounds(); b.Dx() != width || b.Dy() != depth {
		t.Errorf("Expected Y slice dimensions %dx%d, got %dx%d", width, depth, b.Dx(), b.Dy())
	}

	if _, err := viewer.ExtractSlice("invalid", 0); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
	if _, err := viewer.ExtractSlice("z", depth+1); err == nil {
		t.Error("Expected error for out of bounds position, got nil")
	}
}

func TestExtractSliceConstantVolume(t *testing.T) {
	viewer := NewViewer(testVolume(t, 4, 4, 2, func(x, y, z int) float32 { return 3 }))
	img, err := viewer.ExtractSlice("z", 1)
	if err != nil {
		t.Fatalf("ExtractSlice failed: %v", err)
	}
	if got := img.(*image.Gray16).Gray16At(0, 0).Y; got != 0 {
		t.Errorf("Expected black for a constant volume, got %d", got)
	}
}

// TestExtractRegion verifies that 3D regions are correctly extracted
func TestExtractRegion(t *testing.T) {
	width, height, depth := 10, 10, 5
	vol := testVolume(t, width, height, depth, func(x, y, z int) float32 {
		return float32(x + 100*y + 10000*z)
	})
	viewer := NewViewer(vol)

	startX, startY, startZ := 2, 3, 1
	sizeX, sizeY, sizeZ := 4, 3, 2

	region, err := viewer.ExtractRegion(startX, startY, startZ, sizeX, sizeY, sizeZ)
	if err != nil {
		t.Fatalf("Failed to extract region: %v", err)
	}

	if len(region.Data) != sizeX*sizeY*sizeZ {
		t.Errorf("Expected region size %d, got %d", sizeX*sizeY*sizeZ, len(region.Data))
	}

	for z := 0; z < sizeZ; z++ {
		for y := 0; y < sizeY; y++ {
			for x := 0; x < sizeX; x++ {
				want := vol.Data[vol.Index(startX+x, startY+y, startZ+z)]
				if got := region.Data[region.Index(x, y, z)]; got != want {
					t.Errorf("Region value mismatch at (%d,%d,%d): expected %f, got %f", x, y, z, want, got)
				}
			}
		}
	}

	if _, err := viewer.ExtractRegion(-1, 0, 0, 1, 1, 1); err == nil {
		t.Error("Expected error for negative start coordinate, got nil")
	}
	if _, err := viewer.ExtractRegion(0, 0, 0, 0, 1, 1); err == nil {
		t.Error("Expected error for zero size, got nil")
	}
	if _, err := viewer.ExtractRegion(width-1, 0, 0, 2, 1, 1); err == nil {
		t.Error("Expected error for region extending beyond volume, got nil")
	}
}

// TestSaveSliceSequence verifies that a sequence of slices can be saved
func TestSaveSliceSequence(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file I/O test in short mode")
	}

	width, height, depth := 5, 5, 3
	viewer := NewViewer(testVolume(t, width, height, depth, func(x, y, z int) float32 {
		return float32(x * y)
	}))
	viewer.Quality = 75

	outputDir := filepath.Join(t.TempDir(), "slices")
	n, err := viewer.SaveSliceSequence("z", outputDir)
	if err != nil {
		t.Fatalf("Failed to save slice sequence: %v", err)
	}
	if n != depth {
		t.Errorf("Expected %d slices written, got %d", depth, n)
	}

	for z := 0; z < depth; z++ {
		filename := filepath.Join(outputDir, fmt.Sprintf("slice_z_%03d.jpg", z))
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			t.Errorf("Expected slice file does not exist: %s", filename)
		}
	}

	if _, err := viewer.SaveSliceSequence("invalid", outputDir); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
}
