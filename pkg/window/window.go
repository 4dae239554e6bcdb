// Package window extracts square windows centered on particle coordinates
// from 2-D micrograph images.
package window

import (
	"errors"
	"fmt"

	"mrcio/pkg/mrc"
)

// ErrInvalidCoordinate is returned when a coordinate lies outside the image
// or its window would leave the image.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a particle center in pixels. X indexes columns, Y rows.
type Coordinate struct {
	X, Y int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// Window returns the size by size region of img centered on (x, y). For
// even sizes the center is the element just past the middle.
func Window(img *mrc.Array, x, y, size int) (*mrc.Array, error) {
	shape := img.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("window needs a 2-D image, have shape %v", shape)
	}
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}
	ny, nx := shape[0], shape[1]
	if x < 0 || y < 0 || x >= nx || y >= ny {
		return nil, fmt.Errorf("%w: (%d,%d) outside %dx%d image", ErrInvalidCoordinate, x, y, nx, ny)
	}
	x0, y0 := x-size/2, y-size/2
	if x0 < 0 || y0 < 0 || x0+size > nx || y0+size > ny {
		return nil, fmt.Errorf("%w: %d pixel window at (%d,%d) leaves %dx%d image", ErrInvalidCoordinate, size, x, y, nx, ny)
	}
	return img.Crop(y0, x0, size, size)
}

// Extract windows every coordinate, stopping at the first invalid one.
func Extract(img *mrc.Array, coords []Coordinate, size int) ([]*mrc.Array, error) {
	out := make([]*mrc.Array, 0, len(coords))
	for i, c := range coords {
		w, err := Window(img, c.X, c.Y, size)
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", i+1, err)
		}
		out = append(out, w)
	}
	return out, nil
}
