package preprocess

import (
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-hybridtrack"
	"golang.org/x/image/draw"
)

// PadColor is the neutral gray used to fill letterbox padding
var PadColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// Resizer letterboxes frames into a canvas of the model input size.  The
// canvas is allocated once and the letterbox transform is cached until the
// source frame size changes.  A Resizer is owned by a single worker.
type Resizer struct {
	// modelWidth is the width of the model input
	modelWidth int
	// modelHeight is the height of the model input
	modelHeight int
	// fill is the padding color
	fill *image.Uniform
	// interp is the scaler used to draw the source into the canvas
	interp draw.Interpolator
	// canvas is the model input sized image reused across frames
	canvas *image.RGBA
	// pix backs the canvas pixels
	pix buffer
	// lb is the cached letterbox for the last source size
	lb Letterbox
	// cached indicates lb holds a valid transform
	cached bool
}

// ResizerOption configures a Resizer
type ResizerOption func(*Resizer)

// WithPadColor sets the padding color
func WithPadColor(c color.RGBA) ResizerOption {
	return func(r *Resizer) {
		r.fill = image.NewUniform(c)
	}
}

// WithInterpolator sets the scaler, the default is draw.ApproxBiLinear
func WithInterpolator(i draw.Interpolator) ResizerOption {
	return func(r *Resizer) {
		r.interp = i
	}
}

// NewResizer returns a resizer used for scaling frames to the dimensions
// needed for the model input tensor
func NewResizer(modelWidth, modelHeight int, opts ...ResizerOption) (*Resizer, error) {

	if modelWidth <= 0 || modelHeight <= 0 {
		return nil, fmt.Errorf("invalid model input size %dx%d", modelWidth, modelHeight)
	}

	r := &Resizer{
		modelWidth:  modelWidth,
		modelHeight: modelHeight,
		fill:        image.NewUniform(PadColor),
		interp:      draw.ApproxBiLinear,
	}

	for _, opt := range opts {
		opt(r)
	}

	pix := r.pix.get(modelWidth * modelHeight * 4)

	r.canvas = &image.RGBA{
		Pix:    pix,
		Stride: modelWidth * 4,
		Rect:   image.Rect(0, 0, modelWidth, modelHeight),
	}

	return r, nil
}

// Letterbox returns the transform for a source frame of the given size,
// recalculating only when the size differs from the previous call
func (r *Resizer) Letterbox(srcW, srcH int) (Letterbox, error) {

	if r.cached && r.lb.Same(srcW, srcH, r.modelWidth, r.modelHeight) {
		return r.lb, nil
	}

	lb, err := NewLetterbox(srcW, srcH, r.modelWidth, r.modelHeight)

	if err != nil {
		return Letterbox{}, err
	}

	r.lb = lb
	r.cached = true

	return lb, nil
}

// Resize letterboxes the frame into the canvas and returns it along with the
// transform used.  The canvas is only valid until the next call.
func (r *Resizer) Resize(frame *hybridtrack.Frame) (*image.RGBA, Letterbox, error) {

	if err := frame.Validate(); err != nil {
		return nil, Letterbox{}, err
	}

	lb, err := r.Letterbox(frame.Width(), frame.Height())

	if err != nil {
		return nil, Letterbox{}, err
	}

	// padding is redrawn every frame as the previous content may differ in
	// size after a source resolution change
	draw.Draw(r.canvas, r.canvas.Rect, r.fill, image.Point{}, draw.Src)

	r.interp.Scale(r.canvas, lb.ContentRect(), frame.Img, frame.Img.Rect, draw.Src, nil)

	return r.canvas, lb, nil
}

// ModelWidth returns the width of the canvas
func (r *Resizer) ModelWidth() int {
	return r.modelWidth
}

// ModelHeight returns the height of the canvas
func (r *Resizer) ModelHeight() int {
	return r.modelHeight
}
