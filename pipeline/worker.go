package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/swdee/go-hybridtrack"
	"go.uber.org/zap"
)

// Processor processes a single frame
type Processor interface {
	Process(ctx context.Context, frame *hybridtrack.Frame) (Result, error)
}

// ResultHandler receives the outcome of each processed frame on the worker
// goroutine
type ResultHandler func(res Result, err error)

// WorkerStats is a snapshot of the worker counters
type WorkerStats struct {
	// Submitted is the number of frames offered to the worker
	Submitted uint64
	// Dropped is the number of frames rejected because one was in flight
	Dropped uint64
	// Processed is the number of frames that completed the pipeline
	Processed uint64
}

// Worker runs frames through a Processor one at a time.  At most one frame is
// in flight, a frame submitted while another is being processed is dropped.
// An in flight frame is never cancelled.
type Worker struct {
	proc    Processor
	handler ResultHandler
	frames  chan *hybridtrack.Frame
	busy    atomic.Bool
	log     *zap.Logger

	submitted atomic.Uint64
	dropped   atomic.Uint64
	processed atomic.Uint64
}

// NewWorker returns a Worker.  handler may be nil.
func NewWorker(proc Processor, handler ResultHandler, log *zap.Logger) *Worker {

	if log == nil {
		log = zap.NewNop()
	}

	if handler == nil {
		handler = func(Result, error) {}
	}

	return &Worker{
		proc:    proc,
		handler: handler,
		frames:  make(chan *hybridtrack.Frame, 1),
		log:     log,
	}
}

// Submit offers a frame without blocking.  It returns false when the frame was
// dropped because another frame is in flight.  The frame must not be modified
// after a successful Submit.
func (w *Worker) Submit(frame *hybridtrack.Frame) bool {

	w.submitted.Add(1)

	if frame == nil {
		w.dropped.Add(1)
		w.log.Debug("nil frame dropped")
		return false
	}

	if !w.busy.CompareAndSwap(false, true) {
		w.dropped.Add(1)
		w.log.Debug("frame dropped", zap.Uint64("seq", frame.Seq))
		return false
	}

	// the busy flag guarantees the slot is empty
	w.frames <- frame
	return true
}

// Run processes submitted frames until ctx is done.  A frame still waiting
// when ctx is done is discarded and the worker becomes idle.
func (w *Worker) Run(ctx context.Context) error {

	for {
		select {
		case <-ctx.Done():
			w.discard()
			return ctx.Err()

		case frame := <-w.frames:
			res, err := w.proc.Process(ctx, frame)
			w.processed.Add(1)
			w.handler(res, err)
			w.busy.Store(false)
		}
	}
}

// discard drops a queued frame that will not be processed
func (w *Worker) discard() {
	select {
	case frame := <-w.frames:
		w.dropped.Add(1)
		w.log.Debug("frame discarded on shutdown", zap.Uint64("seq", frame.Seq))
		w.busy.Store(false)
	default:
	}
}

// Idle reports whether no frame is in flight
func (w *Worker) Idle() bool {
	return !w.busy.Load()
}

// Stats returns a snapshot of the worker counters
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		Submitted: w.submitted.Load(),
		Dropped:   w.dropped.Load(),
		Processed: w.processed.Load(),
	}
}
