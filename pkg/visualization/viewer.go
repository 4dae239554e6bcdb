package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"mrcio/internal/models"
)

// Viewer extracts orthogonal slices from a volume read out of an MRC file.
// Sample values are mapped linearly from the volume's [min, max] range onto
// the full 16-bit gray range.
type Viewer struct {
	volume *models.Volume

	// range of the samples used for normalization
	lo, hi float64

	// Quality is the JPEG quality used by SaveSlice (1-100)
	Quality int
}

// NewViewer creates a new viewer over vol
func NewViewer(vol *models.Volume) *Viewer {
	v := &Viewer{volume: vol, Quality: jpeg.DefaultQuality}
	if len(vol.Data) > 0 {
		v.lo, v.hi = floats.Min(vol.Data), floats.Max(vol.Data)
	}
	return v
}

func (v *Viewer) gray(value float64) color.Gray16 {
	if v.hi <= v.lo {
		return color.Gray16{}
	}
	scaled := (value - v.lo) / (v.hi - v.lo) * 65535
	return color.Gray16{Y: uint16(min(65535, max(0, scaled)))}
}

// ExtractSlice extracts a 2D slice from the volume along the specified axis
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	vol := v.volume
	var img *image.Gray16

	switch axis {
	case "x", "X":
		// YZ plane
		if position >= vol.Width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, vol.Width)
		}
		img = image.NewGray16(image.Rect(0, 0, vol.Depth, vol.Height))
		for y := 0; y < vol.Height; y++ {
			for z := 0; z < vol.Depth; z++ {
				img.SetGray16(z, y, v.gray(vol.Data[vol.Index(position, y, z)]))
			}
		}

	case "y", "Y":
		// XZ plane
		if position >= vol.Height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, vol.Height)
		}
		img = image.NewGray16(image.Rect(0, 0, vol.Width, vol.Depth))
		for z := 0; z < vol.Depth; z++ {
			for x := 0; x < vol.Width; x++ {
				img.SetGray16(x, z, v.gray(vol.Data[vol.Index(x, position, z)]))
			}
		}

	case "z", "Z":
		// XY plane
		if position >= vol.Depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, vol.Depth)
		}
		img = image.NewGray16(image.Rect(0, 0, vol.Width, vol.Height))
		for y := 0; y < vol.Height; y++ {
			for x := 0; x < vol.Width; x++ {
				img.SetGray16(x, y, v.gray(vol.Data[vol.Index(x, y, position)]))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// ExtractRegion extracts a 3D subregion from the volume
func (v *Viewer) ExtractRegion(startX, startY, startZ, sizeX, sizeY, sizeZ int) (*models.Volume, error) {
	vol := v.volume
	if startX < 0 || startY < 0 || startZ < 0 {
		return nil, fmt.Errorf("start coordinates must be non-negative")
	}

	if sizeX <= 0 || sizeY <= 0 || sizeZ <= 0 {
		return nil, fmt.Errorf("size dimensions must be positive")
	}

	if startX+sizeX > vol.Width || startY+sizeY > vol.Height || startZ+sizeZ > vol.Depth {
		return nil, fmt.Errorf("region extends beyond volume boundaries")
	}

	region := &models.Volume{
		Data:      make([]float64, 0, sizeX*sizeY*sizeZ),
		Width:     sizeX,
		Height:    sizeY,
		Depth:     sizeZ,
		VoxelSize: vol.VoxelSize,
	}
	for z := startZ; z < startZ+sizeZ; z++ {
		for y := startY; y < startY+sizeY; y++ {
			row := vol.Index(startX, y, z)
			region.Data = append(region.Data, vol.Data[row:row+sizeX]...)
		}
	}

	return region, nil
}

// SaveSlice saves an extracted slice as a JPEG image
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: v.Quality})
}

// SaveSliceSequence extracts and saves every slice along the specified axis.
// It returns the number of files written.
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) (int, error) {
	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.volume.Width
	case "y", "Y":
		maxPos = v.volume.Height
	case "z", "Z":
		maxPos = v.volume.Depth
	default:
		return 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, err
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return pos, err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.jpg", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return pos, err
		}
	}

	return maxPos, nil
}
