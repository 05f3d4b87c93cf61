package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/swdee/go-hybridtrack"
	"github.com/swdee/go-hybridtrack/preprocess"
	"github.com/swdee/go-hybridtrack/tracker"
	"github.com/swdee/go-hybridtrack/wire"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Result is the outcome of processing one frame
type Result struct {
	// Seq is the frame's source sequence number
	Seq uint64
	// FrameIndex is the zero based count of frames processed before this one
	FrameIndex uint64
	// Keyframe indicates detection ran on the frame
	Keyframe bool
	// Detections are the tracks returned by the tracker
	Detections []hybridtrack.Detection
	// Times are the stage latencies
	Times StageTimes
	// TrackerTiming is the timing the tracker reported for itself, zero when
	// its response had no timing trailer
	TrackerTiming tracker.Timing
}

// Controller decides per frame whether to run detection and drives the
// tracker.  A Controller is owned by a single worker goroutine.
type Controller struct {
	detector  *Detector
	tracker   *tracker.Tracker
	policy    Policy
	luma      preprocess.Luma
	index     uint64
	stats     *Stats
	publisher wire.Publisher
	codec     *wire.Codec
	session   uuid.UUID
	log       *zap.Logger
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger, the default discards everything
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithPublisher sends each frame's tracks in the wire text format
func WithPublisher(p wire.Publisher) Option {
	return func(c *Controller) {
		c.publisher = p
	}
}

// WithCodec sets the codec used to encode published tracks
func WithCodec(codec *wire.Codec) Option {
	return func(c *Controller) {
		c.codec = codec
	}
}

// WithStats sets where latencies are accumulated
func WithStats(s *Stats) Option {
	return func(c *Controller) {
		c.stats = s
	}
}

// NewController returns a Controller.  When policy is nil an IntervalPolicy
// matching the tracker's keyframe interval is used.
func NewController(det *Detector, tr *tracker.Tracker, policy Policy, opts ...Option) (*Controller, error) {

	if det == nil {
		return nil, fmt.Errorf("controller requires a detector")
	}

	if tr == nil {
		return nil, fmt.Errorf("controller requires a tracker: %w", hybridtrack.ErrTrackerUnavailable)
	}

	if policy == nil {
		policy = IntervalPolicy{Interval: tr.Params().KeyframeInterval}
	}

	c := &Controller{
		detector: det,
		tracker:  tr,
		policy:   policy,
		stats:    NewStats(),
		codec:    wire.NewCodec(),
		session:  uuid.New(),
		log:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.log = c.log.With(zap.Stringer("session", c.session))

	return c, nil
}

// Session returns the id identifying this controller in logs
func (c *Controller) Session() uuid.UUID {
	return c.session
}

// Stats returns the latency statistics
func (c *Controller) Stats() *Stats {
	return c.stats
}

// Process runs one frame through the pipeline.  Invalid frames are skipped
// without advancing the frame counter.  Detection and tracker failures
// degrade to fewer or no detections and are returned only for logging, the
// Result is always usable.  ErrContextReleased is returned once the tracker
// has been closed.
func (c *Controller) Process(ctx context.Context, frame *hybridtrack.Frame) (Result, error) {

	if err := frame.Validate(); err != nil {
		return Result{}, err
	}

	if !c.tracker.Alive() {
		return Result{Seq: frame.Seq}, fmt.Errorf("process frame %d: %w", frame.Seq, hybridtrack.ErrContextReleased)
	}

	start := time.Now()

	res := Result{
		Seq:        frame.Seq,
		FrameIndex: c.index,
		Keyframe:   c.policy.IsKeyframe(c.index),
	}

	// the tracker needs luma on every frame, keyframes included
	luma := c.luma.Convert(frame.Img)
	width, height := frame.Width(), frame.Height()

	var errs error
	var resp tracker.Response
	var err error

	if res.Keyframe {
		var dets []hybridtrack.Detection

		dets, res.Times, err = c.detector.Detect(frame)

		if err != nil {
			// an empty update keeps the tracker's frame count in step
			errs = multierr.Append(errs, fmt.Errorf("detection failed: %w", err))
			dets = nil
		}

		trackStart := time.Now()
		resp, err = c.tracker.UpdateWithDetections(tracker.Request{
			Detections: dets,
			Luma:       luma,
			Width:      width,
			Height:     height,
		})
		res.Times.Tracking = time.Since(trackStart)

	} else {
		flowStart := time.Now()
		resp, err = c.tracker.UpdateWithoutDetections(luma, width, height)
		res.Times.OpticalFlow = time.Since(flowStart)
	}

	if err != nil {
		errs = multierr.Append(errs, err)

		if errors.Is(err, hybridtrack.ErrContextReleased) {
			return res, errs
		}
	}

	res.Detections = resp.Tracks

	if res.Detections == nil {
		res.Detections = []hybridtrack.Detection{}
	}

	if resp.HasTiming {
		res.TrackerTiming = resp.Timing
	}

	res.Times.Total = time.Since(start)
	c.index++
	c.stats.Add(res)

	if c.publisher != nil {
		payload := c.codec.EncodeDetections(res.Detections, true)

		if err := c.publisher.Publish(ctx, frame.Seq, payload); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	c.log.Debug("frame processed",
		zap.Uint64("seq", res.Seq),
		zap.Uint64("index", res.FrameIndex),
		zap.Bool("keyframe", res.Keyframe),
		zap.Int("tracks", len(res.Detections)),
		zap.Duration("total", res.Times.Total),
		zap.Duration("trackerFlow", res.TrackerTiming.OpticalFlow),
		zap.Duration("trackerUpdate", res.TrackerTiming.Tracking),
	)

	if errs != nil {
		c.log.Warn("frame degraded", zap.Uint64("seq", res.Seq), zap.Error(errs))
	}

	return res, errs
}

// Close releases the tracker
func (c *Controller) Close() error {
	return c.tracker.Close()
}
