package models

import (
	"fmt"

	"mrcio/pkg/mrc"
)

// Volume represents a 3D sample grid read from an MRC file
type Volume struct {
	// Data is the 3D volume data as a 1D array in row-major order
	Data []float64

	// Width is the width of the volume in voxels
	Width int

	// Height is the height of the volume in voxels
	Height int

	// Depth is the depth of the volume in voxels (number of images for a stack)
	Depth int

	// VoxelSize is the physical size of each voxel
	VoxelSize struct {
		X, Y, Z float64
	}
}

// NewVolume builds a Volume from a 2-D image or a 3-D array with the given
// pixel size. Complex arrays contribute their real part.
func NewVolume(a *mrc.Array, apix float64) (*Volume, error) {
	shape := a.Shape()
	v := &Volume{Data: a.Float64s(), Depth: 1, Height: 1}
	switch len(shape) {
	case 2:
		v.Height, v.Width = shape[0], shape[1]
	case 3:
		v.Depth, v.Height, v.Width = shape[0], shape[1], shape[2]
	default:
		return nil, fmt.Errorf("volume needs 2 or 3 dimensions, got %v", shape)
	}
	v.VoxelSize.X, v.VoxelSize.Y, v.VoxelSize.Z = apix, apix, apix
	return v, nil
}

// NewStackVolume stacks equally sized 2-D images along the depth axis.
func NewStackVolume(images []*mrc.Array, apix float64) (*Volume, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to stack")
	}
	first, err := NewVolume(images[0], apix)
	if err != nil {
		return nil, err
	}
	for i, img := range images[1:] {
		s, err := NewVolume(img, apix)
		if err != nil {
			return nil, err
		}
		if s.Width != first.Width || s.Height != first.Height || s.Depth != 1 {
			return nil, fmt.Errorf("image %d is %dx%dx%d, expected %dx%d", i+1, s.Width, s.Height, s.Depth, first.Width, first.Height)
		}
		first.Data = append(first.Data, s.Data...)
		first.Depth++
	}
	return first, nil
}

// Index returns the position of voxel (x, y, z) in Data.
func (v *Volume) Index(x, y, z int) int {
	return z*v.Width*v.Height + y*v.Width + x
}
