package pipeline

import (
	"fmt"
	"time"

	"github.com/swdee/go-hybridtrack"
	"github.com/swdee/go-hybridtrack/postprocess"
	"github.com/swdee/go-hybridtrack/preprocess"
	"go.uber.org/zap"
)

// Detector runs the full detection path on a frame: letterbox, encode,
// inference, decode, non-max suppression and unmapping
type Detector struct {
	// engine runs the model
	engine hybridtrack.Engine
	// resizer letterboxes frames into the model input size
	resizer *preprocess.Resizer
	// encoder converts the letterboxed canvas to input tensor bytes
	encoder *preprocess.Encoder
	// decoder converts the output tensor to candidates
	decoder *postprocess.Decoder
	// params are the detection thresholds
	params postprocess.DecoderParams
	log    *zap.Logger
}

// NewDetector validates the engine's input and output descriptors and
// prepares the reusable buffers.  Unsupported tensor types are returned here
// so they are caught before the stream starts.
func NewDetector(engine hybridtrack.Engine, p postprocess.DecoderParams,
	log *zap.Logger, opts ...preprocess.ResizerOption) (*Detector, error) {

	if engine == nil {
		return nil, fmt.Errorf("detector requires an engine")
	}

	if log == nil {
		log = zap.NewNop()
	}

	inDesc := engine.InputDesc()
	outDesc := engine.OutputDesc()

	encoder, err := preprocess.NewEncoder(inDesc)

	if err != nil {
		return nil, fmt.Errorf("error creating encoder: %w", err)
	}

	attr, err := inDesc.InputAttribute()

	if err != nil {
		return nil, fmt.Errorf("error reading input attributes: %w", err)
	}

	resizer, err := preprocess.NewResizer(attr.Width, attr.Height, opts...)

	if err != nil {
		return nil, fmt.Errorf("error creating resizer: %w", err)
	}

	decoder, err := postprocess.NewDecoder(outDesc, attr.Width, attr.Height, p)

	if err != nil {
		return nil, fmt.Errorf("error creating decoder: %w", err)
	}

	log.Info("detector ready",
		zap.Stringer("input", inDesc),
		zap.Stringer("output", outDesc),
		zap.Float32("confidence", p.ConfidenceThreshold),
		zap.Float32("nms", p.IoUThreshold),
	)

	return &Detector{
		engine:  engine,
		resizer: resizer,
		encoder: encoder,
		decoder: decoder,
		params:  p,
		log:     log,
	}, nil
}

// Detect returns the detections in the frame normalized to its dimensions
// with no track ids.  On error the stage times recorded so far are returned.
func (d *Detector) Detect(frame *hybridtrack.Frame) ([]hybridtrack.Detection, StageTimes, error) {

	var times StageTimes

	start := time.Now()

	canvas, lb, err := d.resizer.Resize(frame)

	if err != nil {
		return nil, times, err
	}

	input, err := d.encoder.Encode(canvas)

	if err != nil {
		return nil, times, err
	}

	times.Preprocess = time.Since(start)
	start = time.Now()

	output, err := d.engine.Invoke(input)

	times.Inference = time.Since(start)

	if err != nil {
		return nil, times, fmt.Errorf("inference failed: %w", err)
	}

	start = time.Now()

	cands, err := d.decoder.Decode(output)

	if err != nil {
		times.Postprocess = time.Since(start)
		return nil, times, err
	}

	keep := postprocess.NMS(cands, d.params.IoUThreshold, d.params.MaxDetections)
	dets := postprocess.Unmap(cands, keep, lb)

	times.Postprocess = time.Since(start)

	d.log.Debug("detected",
		zap.Uint64("seq", frame.Seq),
		zap.Int("candidates", len(cands)),
		zap.Int("kept", len(keep)),
		zap.Int("detections", len(dets)),
	)

	return dets, times, nil
}
