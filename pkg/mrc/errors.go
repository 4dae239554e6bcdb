package mrc

import "errors"

// Codec errors. Operations wrap these with detail, so test with errors.Is.
var (
	ErrMalformedHeader      = errors.New("mrc: malformed header")
	ErrUnsupportedMode      = errors.New("mrc: unsupported mode")
	ErrUnsupportedWriteType = errors.New("mrc: unsupported type for writing")
	ErrIndexOutOfRange      = errors.New("mrc: index exceeds number of images")
	ErrSizeMismatch         = errors.New("mrc: file size does not match header")
	ErrShapeMismatch        = errors.New("mrc: array shape does not match header")
	ErrModeMismatch         = errors.New("mrc: array mode does not match stack")
)

// HeaderSize is the fixed size of the header record in bytes.
const HeaderSize = 1024
