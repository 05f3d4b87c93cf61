/*
Example of running detection on keyframes only and propagating tracks on the
frames between with a tracker backend.  Frames are read at the video frame
rate and dropped whenever the pipeline is still busy with the previous one.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/swdee/go-hybridtrack"
	"github.com/swdee/go-hybridtrack/config"
	"github.com/swdee/go-hybridtrack/engine"
	"github.com/swdee/go-hybridtrack/logging"
	"github.com/swdee/go-hybridtrack/pipeline"
	"github.com/swdee/go-hybridtrack/source"
	"github.com/swdee/go-hybridtrack/tracker"
	"github.com/swdee/go-hybridtrack/wire"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Demo holds the components of a running pipeline
type Demo struct {
	cfg     *config.Config
	log     *zap.Logger
	labels  []string
	engine  *engine.TFLite
	tracker *tracker.Tracker
	ctrl    *pipeline.Controller
	worker  *pipeline.Worker
	src     source.Source
}

// NewDemo loads the model, tracker and frame source described by cfg
func NewDemo(cfg *config.Config, logger *zap.Logger) (*Demo, error) {

	d := &Demo{
		cfg: cfg,
		log: logger,
	}

	labels, err := hybridtrack.LoadLabels(cfg.Model.Labels)

	if err != nil {
		logger.Warn("labels not loaded, using class ids", zap.Error(err))
	}

	d.labels = labels

	d.engine, err = engine.NewTFLite(cfg.Model.Path, engine.TFLiteOptions{
		Threads: cfg.Model.Threads,
		Log:     logger,
	})

	if err != nil {
		return nil, fmt.Errorf("error loading model: %w", err)
	}

	det, err := pipeline.NewDetector(d.engine, cfg.DecoderParams(), logger)

	if err != nil {
		d.Close()
		return nil, fmt.Errorf("error creating detector: %w", err)
	}

	d.tracker, err = tracker.New(tracker.NewHoldLast(), cfg.TrackerParams(), logger)

	if err != nil {
		d.Close()
		return nil, fmt.Errorf("error creating tracker: %w", err)
	}

	var policy pipeline.Policy = pipeline.IntervalPolicy{Interval: cfg.Tracker.KeyframeInterval}

	if cfg.Tracker.Policy == config.PolicyTracker {
		policy = pipeline.TrackerPolicy{Tracker: d.tracker}
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}

	if cfg.Wire.Publish {
		opts = append(opts,
			pipeline.WithPublisher(wire.NewWriterPublisher(os.Stdout)),
			pipeline.WithCodec(&wire.Codec{Precision: cfg.Wire.Precision}),
		)
	}

	d.ctrl, err = pipeline.NewController(det, d.tracker, policy, opts...)

	if err != nil {
		d.Close()
		return nil, fmt.Errorf("error creating controller: %w", err)
	}

	d.src, err = openSource(cfg.Source)

	if err != nil {
		d.Close()
		return nil, err
	}

	d.worker = pipeline.NewWorker(d.ctrl, d.handleResult, logger)

	return d, nil
}

// openSource opens an image directory or a video depending on the uri
func openSource(cfg config.SourceConfig) (source.Source, error) {

	if fi, err := os.Stat(cfg.URI); err == nil && fi.IsDir() {
		return source.OpenImageDir(cfg.URI, cfg.MaxFrames)
	}

	return source.OpenCapture(cfg.URI)
}

// handleResult logs the tracks of each processed frame
func (d *Demo) handleResult(res pipeline.Result, err error) {

	if err != nil && errors.Is(err, hybridtrack.ErrContextReleased) {
		return
	}

	for _, det := range res.Detections {
		d.log.Debug("track",
			zap.Uint64("seq", res.Seq),
			zap.Int("id", det.TrackID),
			zap.String("label", hybridtrack.Label(d.labels, det.ClassID)),
			zap.Float32("conf", det.Confidence),
		)
	}
}

// Run reads frames at the stream frame rate and submits them to the worker
// until the source is exhausted
func (d *Demo) Run(ctx context.Context) error {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- d.worker.Run(ctx)
	}()

	ticker := time.NewTicker(time.Second / time.Duration(d.cfg.Tracker.FrameRate))
	defer ticker.Stop()

	frames := 0

	for {
		if d.cfg.Source.MaxFrames > 0 && frames >= d.cfg.Source.MaxFrames {
			break
		}

		frame, err := d.src.Read()

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("error reading frame: %w", err)
		}

		frames++
		d.worker.Submit(frame)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	// let the in flight frame finish
	for !d.worker.Idle() {
		time.Sleep(time.Millisecond)
	}

	cancel()
	<-done

	return nil
}

// Report logs the worker and latency statistics and writes the latency csv
func (d *Demo) Report() error {

	ws := d.worker.Stats()
	sum := d.ctrl.Stats().Summary()

	d.log.Info("stream finished",
		zap.Stringer("session", d.ctrl.Session()),
		zap.Uint64("submitted", ws.Submitted),
		zap.Uint64("dropped", ws.Dropped),
		zap.Int("processed", sum.Frames),
		zap.Int("keyframes", sum.Keyframes),
		zap.Duration("avgPrep", sum.Average.Preprocess),
		zap.Duration("avgInference", sum.Average.Inference),
		zap.Duration("avgPost", sum.Average.Postprocess),
		zap.Duration("avgTracking", sum.Average.Tracking),
		zap.Duration("avgFlow", sum.Average.OpticalFlow),
		zap.Float64("meanMs", sum.MeanLatency),
		zap.Float64("stddevMs", sum.StdDevLatency),
		zap.Float64("p95Ms", sum.P95Latency),
	)

	if d.cfg.Stats.CSVPath == "" {
		return nil
	}

	f, err := os.Create(d.cfg.Stats.CSVPath)

	if err != nil {
		return fmt.Errorf("error creating latency csv: %w", err)
	}

	return multierr.Append(d.ctrl.Stats().WriteCSV(f), f.Close())
}

// Close releases the source, tracker and model
func (d *Demo) Close() error {

	var err error

	if d.src != nil {
		err = multierr.Append(err, d.src.Close())
	}

	if d.tracker != nil {
		err = multierr.Append(err, d.tracker.Close())
	}

	if d.engine != nil {
		err = multierr.Append(err, d.engine.Close())
	}

	return err
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	configFile := flag.String("c", "", "YAML config file, defaults are used when empty")
	modelFile := flag.String("m", "", "TFLite YOLO model file, overrides config")
	vidFile := flag.String("v", "", "Video file, camera id or image directory, overrides config")
	interval := flag.Int("k", 0, "Keyframe interval, overrides config")

	flag.Parse()

	cfg := config.Default()

	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)

		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	if *modelFile != "" {
		cfg.Model.Path = *modelFile
	}

	if *vidFile != "" {
		cfg.Source.URI = *vidFile
	}

	if *interval > 0 {
		cfg.Tracker.KeyframeInterval = *interval
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Mode)

	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}

	defer logging.Sync(logger)

	demo, err := NewDemo(cfg, logger)

	if err != nil {
		logger.Fatal("error creating demo", zap.Error(err))
	}

	defer demo.Close()

	if err := demo.Run(context.Background()); err != nil {
		logger.Error("stream stopped", zap.Error(err))
	}

	if err := demo.Report(); err != nil {
		logger.Error("error writing report", zap.Error(err))
	}
}
