package preprocess

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/swdee/go-hybridtrack"
)

// Encoder converts a letterboxed RGBA canvas into the raw input tensor bytes
// expected by the model, in NHWC layout with three RGB channels
type Encoder struct {
	// desc is the model input tensor descriptor
	desc hybridtrack.TensorDesc
	// attr holds the input width, height and channels
	attr hybridtrack.InputAttribute
	// out is the tensor buffer reused across frames
	out buffer
}

// NewEncoder returns an encoder for the given input tensor.  Only float32,
// uint8 and int8 inputs are supported, other types fail here so the error is
// surfaced when the model is loaded rather than on the first frame.
func NewEncoder(desc hybridtrack.TensorDesc) (*Encoder, error) {

	switch desc.Type {
	case hybridtrack.TensorFloat32, hybridtrack.TensorUint8, hybridtrack.TensorInt8:
	default:
		return nil, fmt.Errorf("%w: input %s", hybridtrack.ErrUnsupportedTensorType, desc.Type)
	}

	attr, err := desc.InputAttribute()

	if err != nil {
		return nil, err
	}

	if attr.Channel != 3 {
		return nil, fmt.Errorf("input tensor has %d channels, expected 3", attr.Channel)
	}

	return &Encoder{
		desc: desc,
		attr: attr,
	}, nil
}

// Encode writes the canvas pixels into the tensor buffer and returns it.
// The returned slice is reused by the next call.
func (e *Encoder) Encode(canvas *image.RGBA) ([]byte, error) {

	if canvas == nil {
		return nil, fmt.Errorf("%w: nil canvas", hybridtrack.ErrInvalidFrame)
	}

	w, h := canvas.Rect.Dx(), canvas.Rect.Dy()

	if w != e.attr.Width || h != e.attr.Height {
		return nil, fmt.Errorf("%w: canvas %dx%d does not match input %dx%d",
			hybridtrack.ErrInvalidFrame, w, h, e.attr.Width, e.attr.Height)
	}

	pixels := w * h * 3

	switch e.desc.Type {
	case hybridtrack.TensorFloat32:
		out := e.out.get(pixels * 4)
		i := 0

		for y := 0; y < h; y++ {
			row := canvas.Pix[y*canvas.Stride : y*canvas.Stride+w*4]

			for x := 0; x < w*4; x += 4 {
				for c := 0; c < 3; c++ {
					binary.NativeEndian.PutUint32(out[i:], math.Float32bits(float32(row[x+c])/255))
					i += 4
				}
			}
		}

		return out, nil

	default:
		// uint8 and int8 share the same byte representation, subtracting the
		// zero point narrows with wraparound
		out := e.out.get(pixels)
		zp := e.desc.ZP
		i := 0

		for y := 0; y < h; y++ {
			row := canvas.Pix[y*canvas.Stride : y*canvas.Stride+w*4]

			for x := 0; x < w*4; x += 4 {
				out[i] = quantizeInput(row[x], zp)
				out[i+1] = quantizeInput(row[x+1], zp)
				out[i+2] = quantizeInput(row[x+2], zp)
				i += 3
			}
		}

		return out, nil
	}
}

// quantizeInput subtracts the zero point from a channel value and narrows the
// result to a byte
func quantizeInput(c uint8, zp int32) byte {
	return byte(int32(c) - zp)
}

// Desc returns the input tensor descriptor
func (e *Encoder) Desc() hybridtrack.TensorDesc {
	return e.desc
}
