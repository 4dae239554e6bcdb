// Package mrc reads and writes MRC/CCP4 files: a fixed 1024-byte header,
// an optional symmetry table, and raw pixel data for a single 2-D image, a
// stack of 2-D images, or a 3-D volume.
//
// # Headers
//
// The header's numeric fields are in one byte order per file. Writers have
// filled the machine stamp inconsistently, so [ReadHeader] decodes the record
// in native order, falls back to the swapped order, and accepts a stamp it
// cannot classify only when all cell angles are 90 degrees (see
// [ResolveByteOrder]). The payload is read in the same order as the header.
//
// # Layout
//
// The nz field is either the depth of a volume or the image count of a
// stack. [Classify] decides once per header: a file is a volume when nz
// equals nx, and a stack (or single image) otherwise. A stack whose count
// happens to equal its width is therefore read as a volume; nothing in the
// header distinguishes the two.
//
// # Modes
//
// Each on-disk mode maps to one element type ([ModeToElement]). Writing
// reduces many Go element types to a few modes ([ModeForWrite]); integers
// wider than 16 bits and float64 values are written as float32.
//
// # Reading and writing
//
//	img, err := mrc.ReadImageFile("stack.mrc", 3)
//	err = mrc.WriteImageFile("out.mrc", img, mrc.WithPixelSize(1.5))
//
// A stack built across several writes needs one writer session per file,
// see [StackWriter].
package mrc
