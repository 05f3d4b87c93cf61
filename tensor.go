package hybridtrack

import (
	"fmt"
	"strings"
)

// TensorType is the element type of a model input or output tensor
type TensorType int

const (
	TensorUnknown TensorType = iota
	TensorFloat32
	TensorFloat16
	TensorInt8
	TensorUint8
	TensorInt16
	TensorInt32
	TensorInt64
	TensorBool
)

// String returns a readable description of the TensorType
func (t TensorType) String() string {
	switch t {
	case TensorFloat32:
		return "FP32"
	case TensorFloat16:
		return "FP16"
	case TensorInt8:
		return "INT8"
	case TensorUint8:
		return "UINT8"
	case TensorInt16:
		return "INT16"
	case TensorInt32:
		return "INT32"
	case TensorInt64:
		return "INT64"
	case TensorBool:
		return "BOOL"
	default:
		return "UNKNOWN"
	}
}

// Size returns the number of bytes used by a single element of the type
func (t TensorType) Size() int {
	switch t {
	case TensorInt8, TensorUint8, TensorBool:
		return 1
	case TensorFloat16, TensorInt16:
		return 2
	case TensorFloat32, TensorInt32:
		return 4
	case TensorInt64:
		return 8
	default:
		return 0
	}
}

// TensorDesc describes a model tensor as reported by the inference engine.
// Descriptors are queried once when the model is loaded.
type TensorDesc struct {
	// Name of the tensor in the model graph
	Name string
	// Dims is the tensor shape, outermost dimension first
	Dims []int
	// Type is the element type
	Type TensorType
	// ZP is the quantization zero point, only meaningful for integer types
	ZP int32
	// Scale is the quantization scale, only meaningful for integer types
	Scale float32
}

// NElems returns the total number of elements in the tensor
func (d TensorDesc) NElems() int {
	if len(d.Dims) == 0 {
		return 0
	}

	n := 1

	for _, v := range d.Dims {
		n *= v
	}

	return n
}

// ByteSize returns the number of bytes needed to hold the tensor data
func (d TensorDesc) ByteSize() int {
	return d.NElems() * d.Type.Size()
}

// Quantized reports whether raw values need dequantizing with ZP and Scale
func (d TensorDesc) Quantized() bool {
	return d.Type == TensorInt8 || d.Type == TensorUint8
}

// InputAttribute holds the image dimensions an input tensor expects
type InputAttribute struct {
	Width   int
	Height  int
	Channel int
}

// InputAttribute returns the width, height and channel count of an NHWC
// image input tensor with shape [1, H, W, C] or [H, W, C]
func (d TensorDesc) InputAttribute() (InputAttribute, error) {

	dims := d.Dims

	if len(dims) == 4 {
		if dims[0] != 1 {
			return InputAttribute{}, fmt.Errorf("input batch size %d not supported", dims[0])
		}

		dims = dims[1:]
	}

	if len(dims) != 3 {
		return InputAttribute{}, fmt.Errorf("input tensor has %d dimensions, expected NHWC", len(d.Dims))
	}

	attr := InputAttribute{
		Height:  dims[0],
		Width:   dims[1],
		Channel: dims[2],
	}

	if attr.Width <= 0 || attr.Height <= 0 || attr.Channel <= 0 {
		return InputAttribute{}, fmt.Errorf("input tensor has invalid shape %v", d.Dims)
	}

	return attr, nil
}

// String returns a readable description of the tensor
func (d TensorDesc) String() string {

	dims := make([]string, len(d.Dims))

	for i, v := range d.Dims {
		dims[i] = fmt.Sprintf("%d", v)
	}

	return fmt.Sprintf("name=%s, dims=[%s], n_elems=%d, size=%d, type=%s, zp=%d, scale=%f",
		d.Name, strings.Join(dims, ", "), d.NElems(), d.ByteSize(), d.Type, d.ZP, d.Scale)
}

// Tensor is a descriptor together with the raw bytes produced or consumed by
// the inference engine, in native byte order
type Tensor struct {
	Desc TensorDesc
	Data []byte
}
