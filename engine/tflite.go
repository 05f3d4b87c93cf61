package engine

import (
	"fmt"
	"runtime"
	"sync"

	tflite "github.com/mattn/go-tflite"
	"github.com/swdee/go-hybridtrack"
	"go.uber.org/zap"
)

// TFLiteOptions configures the TFLite interpreter
type TFLiteOptions struct {
	// Threads is the number of CPU threads, 0 uses all CPUs
	Threads int
	// Log receives interpreter error reports
	Log *zap.Logger
}

// TFLite runs a single input, single output TensorFlow Lite model
type TFLite struct {
	mu          sync.Mutex
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
	inDesc      hybridtrack.TensorDesc
	outDesc     hybridtrack.TensorDesc
	out         []byte
	closed      bool
}

// NewTFLite loads the model file and queries its input and output
// descriptors.  Models whose input tensor type can't be encoded fail with
// ErrUnsupportedTensorType.
func NewTFLite(modelPath string, opts TFLiteOptions) (*TFLite, error) {

	log := opts.Log

	if log == nil {
		log = zap.NewNop()
	}

	threads := opts.Threads

	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	model := tflite.NewModelFromFile(modelPath)

	if model == nil {
		return nil, fmt.Errorf("failed to load model %s", modelPath)
	}

	options := tflite.NewInterpreterOptions()

	if options == nil {
		model.Delete()
		return nil, fmt.Errorf("failed to create interpreter options")
	}

	options.SetNumThread(threads)
	options.SetErrorReporter(func(msg string, userData interface{}) {
		log.Error("tflite", zap.String("msg", msg))
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)

	if interpreter == nil {
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("failed to create interpreter")
	}

	e := &TFLite{
		model:       model,
		options:     options,
		interpreter: interpreter,
	}

	if status := interpreter.AllocateTensors(); status != tflite.OK {
		e.Close()
		return nil, fmt.Errorf("failed to allocate tensors: %v", status)
	}

	if n := interpreter.GetInputTensorCount(); n != 1 {
		e.Close()
		return nil, fmt.Errorf("model has %d input tensors, expected 1", n)
	}

	if n := interpreter.GetOutputTensorCount(); n < 1 {
		e.Close()
		return nil, fmt.Errorf("model has no output tensors")
	}

	e.inDesc = describe(interpreter.GetInputTensor(0))
	e.outDesc = describe(interpreter.GetOutputTensor(0))

	switch e.inDesc.Type {
	case hybridtrack.TensorFloat32, hybridtrack.TensorUint8, hybridtrack.TensorInt8:
	default:
		e.Close()
		return nil, fmt.Errorf("%w: input %s", hybridtrack.ErrUnsupportedTensorType, e.inDesc.Type)
	}

	e.out = make([]byte, e.outDesc.ByteSize())

	log.Info("model loaded",
		zap.String("path", modelPath),
		zap.Int("threads", threads),
		zap.Stringer("input", e.inDesc),
		zap.Stringer("output", e.outDesc),
	)

	return e, nil
}

// describe converts a TFLite tensor to a TensorDesc
func describe(t *tflite.Tensor) hybridtrack.TensorDesc {

	dims := make([]int, t.NumDims())

	for i := range dims {
		dims[i] = t.Dim(i)
	}

	q := t.QuantizationParams()

	return hybridtrack.TensorDesc{
		Name:  t.Name(),
		Dims:  dims,
		Type:  tensorType(t.Type()),
		ZP:    int32(q.ZeroPoint),
		Scale: float32(q.Scale),
	}
}

// tfliteFloat16 is kTfLiteFloat16, which go-tflite has no constant for
const tfliteFloat16 tflite.TensorType = 10

// tensorType maps TFLite element types to TensorType
func tensorType(t tflite.TensorType) hybridtrack.TensorType {
	switch t {
	case tflite.Float32:
		return hybridtrack.TensorFloat32
	case tfliteFloat16:
		return hybridtrack.TensorFloat16
	case tflite.Int8:
		return hybridtrack.TensorInt8
	case tflite.UInt8:
		return hybridtrack.TensorUint8
	case tflite.Int16:
		return hybridtrack.TensorInt16
	case tflite.Int32:
		return hybridtrack.TensorInt32
	case tflite.Int64:
		return hybridtrack.TensorInt64
	case tflite.Bool:
		return hybridtrack.TensorBool
	default:
		return hybridtrack.TensorUnknown
	}
}

// InputDesc returns the cached input tensor descriptor
func (e *TFLite) InputDesc() hybridtrack.TensorDesc {
	return e.inDesc
}

// OutputDesc returns the cached output tensor descriptor
func (e *TFLite) OutputDesc() hybridtrack.TensorDesc {
	return e.outDesc
}

// Invoke copies the input into the model, runs it and returns the first
// output tensor.  The output data is reused by the next call.
func (e *TFLite) Invoke(input []byte) (hybridtrack.Tensor, error) {

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return hybridtrack.Tensor{}, fmt.Errorf("tflite invoke: %w", hybridtrack.ErrContextReleased)
	}

	if len(input) != e.inDesc.ByteSize() {
		return hybridtrack.Tensor{}, fmt.Errorf("input is %d bytes, model expects %d",
			len(input), e.inDesc.ByteSize())
	}

	if status := e.interpreter.GetInputTensor(0).CopyFromBuffer(input); status != tflite.OK {
		return hybridtrack.Tensor{}, fmt.Errorf("copying input failed: %v", status)
	}

	if status := e.interpreter.Invoke(); status != tflite.OK {
		return hybridtrack.Tensor{}, fmt.Errorf("invoke failed: %v", status)
	}

	if status := e.interpreter.GetOutputTensor(0).CopyToBuffer(e.out); status != tflite.OK {
		return hybridtrack.Tensor{}, fmt.Errorf("copying output failed: %v", status)
	}

	return hybridtrack.Tensor{Desc: e.outDesc, Data: e.out}, nil
}

// Close deletes the interpreter, its options and the model
func (e *TFLite) Close() error {

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	e.closed = true

	if e.interpreter != nil {
		e.interpreter.Delete()
	}

	if e.options != nil {
		e.options.Delete()
	}

	if e.model != nil {
		e.model.Delete()
	}

	return nil
}
