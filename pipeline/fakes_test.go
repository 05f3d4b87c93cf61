package pipeline

import (
	"encoding/binary"
	"errors"
	"image"
	"math"
	"sync"

	"github.com/swdee/go-hybridtrack"
	"github.com/swdee/go-hybridtrack/tracker"
)

// fakeEngine returns a fixed output tensor and counts invocations
type fakeEngine struct {
	in      hybridtrack.TensorDesc
	out     hybridtrack.TensorDesc
	data    []byte
	err     error
	invokes int
}

// newFakeEngine returns a 64x64 uint8 input engine producing the given
// [attrs][preds] float32 output
func newFakeEngine(rows [][]float32) *fakeEngine {

	preds := len(rows[0])

	var data []byte

	for _, row := range rows {
		for _, v := range row {
			data = binary.NativeEndian.AppendUint32(data, math.Float32bits(v))
		}
	}

	return &fakeEngine{
		in: hybridtrack.TensorDesc{
			Name: "images",
			Dims: []int{1, 64, 64, 3},
			Type: hybridtrack.TensorUint8,
		},
		out: hybridtrack.TensorDesc{
			Name: "output0",
			Dims: []int{1, len(rows), preds},
			Type: hybridtrack.TensorFloat32,
		},
		data: data,
	}
}

// oneBox is an output with a single 16x16 box at the canvas center, class 1
var oneBox = [][]float32{
	{0.5, 0.1},
	{0.5, 0.1},
	{0.25, 0.1},
	{0.25, 0.1},
	{0.05, 0.01},
	{0.8, 0.02},
}

func (f *fakeEngine) InputDesc() hybridtrack.TensorDesc  { return f.in }
func (f *fakeEngine) OutputDesc() hybridtrack.TensorDesc { return f.out }
func (f *fakeEngine) Close() error                       { return nil }

func (f *fakeEngine) Invoke(input []byte) (hybridtrack.Tensor, error) {
	f.invokes++

	if f.err != nil {
		return hybridtrack.Tensor{}, f.err
	}

	if len(input) != f.in.ByteSize() {
		return hybridtrack.Tensor{}, errors.New("bad input size")
	}

	return hybridtrack.Tensor{Desc: f.out, Data: f.data}, nil
}

// call is a single recorded tracker call
type call struct {
	withDets bool
	dets     int
	lumaLen  int
	width    int
	height   int
}

// recordingBackend records tracker calls and delegates to HoldLast
type recordingBackend struct {
	*tracker.HoldLast
	mu    sync.Mutex
	calls []call
	fail  bool
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{HoldLast: tracker.NewHoldLast()}
}

func (r *recordingBackend) record(c call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *recordingBackend) UpdateWithDetections(h tracker.Handle, dets []float32, luma []byte, width, height int) []float32 {
	r.record(call{withDets: true, dets: len(dets) / tracker.RequestStride, lumaLen: len(luma), width: width, height: height})

	if r.fail {
		return nil
	}

	return r.HoldLast.UpdateWithDetections(h, dets, luma, width, height)
}

func (r *recordingBackend) UpdateWithoutDetections(h tracker.Handle, luma []byte, width, height int) []float32 {
	r.record(call{lumaLen: len(luma), width: width, height: height})

	if r.fail {
		return nil
	}

	return r.HoldLast.UpdateWithoutDetections(h, luma, width, height)
}

// testFrame returns a 128x64 frame
func testFrame(seq uint64) *hybridtrack.Frame {
	return &hybridtrack.Frame{
		Img: image.NewRGBA(image.Rect(0, 0, 128, 64)),
		Seq: seq,
	}
}
