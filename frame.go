package hybridtrack

import (
	"fmt"
	"image"
	"time"
)

// Frame is one video frame in RGBA pixel order.  The image is owned by the
// caller and treated as read only.
type Frame struct {
	// Img holds the pixel data
	Img *image.RGBA
	// Seq is the sequence number assigned by the frame source
	Seq uint64
	// Timestamp is when the frame was captured
	Timestamp time.Time
}

// Width of the frame in pixels
func (f *Frame) Width() int {
	if f == nil || f.Img == nil {
		return 0
	}
	return f.Img.Rect.Dx()
}

// Height of the frame in pixels
func (f *Frame) Height() int {
	if f == nil || f.Img == nil {
		return 0
	}
	return f.Img.Rect.Dy()
}

// Validate checks the frame has pixel data and non zero dimensions
func (f *Frame) Validate() error {

	if f == nil || f.Img == nil {
		return fmt.Errorf("%w: no pixel data", ErrInvalidFrame)
	}

	w, h := f.Width(), f.Height()

	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidFrame, w, h)
	}

	if len(f.Img.Pix) < f.Img.Stride*(h-1)+w*4 {
		return fmt.Errorf("%w: pixel buffer too small for %dx%d", ErrInvalidFrame, w, h)
	}

	return nil
}
