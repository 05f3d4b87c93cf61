package postprocess

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/swdee/go-hybridtrack"
	"gonum.org/v1/gonum/floats"
)

// numBoxAttributes is the number of leading attribute rows holding the box
// center and size
const numBoxAttributes = 4

// DecoderParams defines the struct containing the decoder parameters
type DecoderParams struct {
	// ConfidenceThreshold is the minimum class score a prediction needs to be
	// kept.  Applied per candidate before NMS.
	ConfidenceThreshold float32
	// IoUThreshold is the overlap above which NMS suppresses a box
	IoUThreshold float32
	// MaxDetections caps the number of boxes kept after NMS, 0 for no limit
	MaxDetections int
}

// YOLO11Params returns an instance of DecoderParams configured with default
// values for an anchor free YOLO model trained on the COCO dataset with
// output shape [1, 4+classes, predictions]
func YOLO11Params() DecoderParams {
	return DecoderParams{
		ConfidenceThreshold: 0.1,
		IoUThreshold:        0.45,
		MaxDetections:       0,
	}
}

// Decoder converts the raw output tensor of an anchor free detection model
// laid out as [numAttributes][numPredictions] into candidate boxes
type Decoder struct {
	// desc is the output tensor descriptor cached at load time
	desc hybridtrack.TensorDesc
	// modelWidth is the width of the model input
	modelWidth float32
	// modelHeight is the height of the model input
	modelHeight float32
	// params are the decoder parameters
	params DecoderParams
	// scores is scratch space for the class scores of a single column
	scores []float64
}

// NewDecoder returns a Decoder for the given output tensor descriptor and
// model input size.  The element type is checked here so unsupported models
// are rejected at load time.
func NewDecoder(desc hybridtrack.TensorDesc, modelWidth, modelHeight int,
	p DecoderParams) (*Decoder, error) {

	switch desc.Type {
	case hybridtrack.TensorFloat32, hybridtrack.TensorFloat16,
		hybridtrack.TensorUint8, hybridtrack.TensorInt8:
	default:
		return nil, fmt.Errorf("%w: output %s", hybridtrack.ErrUnsupportedTensorType, desc.Type)
	}

	if modelWidth <= 0 || modelHeight <= 0 {
		return nil, fmt.Errorf("invalid model input size %dx%d", modelWidth, modelHeight)
	}

	return &Decoder{
		desc:        desc,
		modelWidth:  float32(modelWidth),
		modelHeight: float32(modelHeight),
		params:      p,
	}, nil
}

// Params returns the decoder parameters
func (d *Decoder) Params() DecoderParams {
	return d.params
}

// shape returns the number of attributes and predictions of the output
// tensor, accepting [1][A][N] and [A][N]
func shape(dims []int) (int, int, error) {

	switch {
	case len(dims) == 3 && dims[0] == 1:
		return dims[1], dims[2], nil
	case len(dims) == 2:
		return dims[0], dims[1], nil
	default:
		return 0, 0, fmt.Errorf("%w: output dims %v", hybridtrack.ErrMalformedOutput, dims)
	}
}

// Decode returns the candidates in the output tensor with a class score at or
// above the confidence threshold.  A tensor with fewer than five attribute
// rows or the wrong amount of data returns ErrMalformedOutput and no
// candidates.
func (d *Decoder) Decode(t hybridtrack.Tensor) ([]Candidate, error) {

	numAttrs, numPreds, err := shape(t.Desc.Dims)

	if err != nil {
		return nil, err
	}

	if numAttrs < numBoxAttributes+1 {
		return nil, fmt.Errorf("%w: %d attributes, need at least %d",
			hybridtrack.ErrMalformedOutput, numAttrs, numBoxAttributes+1)
	}

	if t.Desc.Type != d.desc.Type {
		return nil, fmt.Errorf("%w: output type %s, model declared %s",
			hybridtrack.ErrMalformedOutput, t.Desc.Type, d.desc.Type)
	}

	want := numAttrs * numPreds * t.Desc.Type.Size()

	if len(t.Data) < want {
		return nil, fmt.Errorf("%w: %d bytes of output data, expected %d",
			hybridtrack.ErrMalformedOutput, len(t.Data), want)
	}

	read := d.reader(t)
	numClasses := numAttrs - numBoxAttributes

	if cap(d.scores) < numClasses {
		d.scores = make([]float64, numClasses)
	}

	scores := d.scores[:numClasses]

	var cands []Candidate

	for i := 0; i < numPreds; i++ {

		for c := 0; c < numClasses; c++ {
			scores[c] = float64(read((numBoxAttributes+c)*numPreds + i))
		}

		// first index wins on ties
		classID := floats.MaxIdx(scores)
		score := float32(scores[classID])

		if score < d.params.ConfidenceThreshold {
			continue
		}

		cands = append(cands, Candidate{
			CX:      read(i) * d.modelWidth,
			CY:      read(numPreds+i) * d.modelHeight,
			HalfW:   read(2*numPreds+i) * d.modelWidth / 2,
			HalfH:   read(3*numPreds+i) * d.modelHeight / 2,
			ClassID: classID,
			Score:   score,
		})
	}

	return cands, nil
}

// reader returns a function reading the dequantized float value of element
// idx from the tensor data
func (d *Decoder) reader(t hybridtrack.Tensor) func(idx int) float32 {

	data := t.Data
	zp := t.Desc.ZP
	scale := t.Desc.Scale

	switch t.Desc.Type {
	case hybridtrack.TensorFloat16:
		return func(idx int) float32 {
			return hybridtrack.Float16ToFloat32(binary.NativeEndian.Uint16(data[idx*2:]))
		}

	case hybridtrack.TensorUint8:
		return func(idx int) float32 {
			return deqntAffineToF32(int32(data[idx]), zp, scale)
		}

	case hybridtrack.TensorInt8:
		return func(idx int) float32 {
			return deqntAffineToF32(int32(int8(data[idx])), zp, scale)
		}

	default:
		return func(idx int) float32 {
			return math.Float32frombits(binary.NativeEndian.Uint32(data[idx*4:]))
		}
	}
}
