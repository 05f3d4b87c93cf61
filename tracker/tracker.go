package tracker

import (
	"fmt"
	"sync"

	"github.com/swdee/go-hybridtrack"
	"go.uber.org/zap"
)

// Handle identifies a tracker instance created by a Backend.  The zero
// Handle means initialisation failed.
type Handle uintptr

// Backend is the contract with an external stateful tracker.  Backends are
// not reentrant, callers must serialize every call for a given handle.
type Backend interface {
	// Init creates a tracker instance, returning the zero Handle on failure
	Init(frameRate, trackBuffer, keyframeInterval int) Handle
	// UpdateWithDetections passes a keyframe's detections in the flat request
	// layout along with the frame's luma and returns the live tracks in the
	// flat response layout
	UpdateWithDetections(h Handle, dets []float32, luma []byte, width, height int) []float32
	// UpdateWithoutDetections propagates tracks using only the frame's luma
	UpdateWithoutDetections(h Handle, luma []byte, width, height int) []float32
	// IsKeyframe reports whether the tracker expects detections on the next
	// frame
	IsKeyframe(h Handle) bool
	// Release frees the tracker instance
	Release(h Handle)
}

// Resetter is implemented by backends that can clear all tracks without
// releasing the instance
type Resetter interface {
	Reset(h Handle)
}

// Params defines the struct containing the tracker parameters
type Params struct {
	// FrameRate of the video stream
	FrameRate int
	// TrackBuffer is the number of frames a lost track is kept for
	TrackBuffer int
	// KeyframeInterval is the number of frames between keyframes, 1 runs
	// detection on every frame
	KeyframeInterval int
}

// DefaultParams returns tracker parameters for a 30 FPS stream with detection
// on every third frame
func DefaultParams() Params {
	return Params{
		FrameRate:        30,
		TrackBuffer:      30,
		KeyframeInterval: 3,
	}
}

// Tracker is a session with a single backend tracker instance.  All calls
// into the backend are serialized.
type Tracker struct {
	mu       sync.Mutex
	backend  Backend
	handle   Handle
	params   Params
	released bool
	log      *zap.Logger
}

// New initialises a tracker instance on the backend.  A failed
// initialisation returns ErrTrackerUnavailable and must end the session.
func New(backend Backend, p Params, log *zap.Logger) (*Tracker, error) {

	if backend == nil {
		return nil, fmt.Errorf("%w: no backend", hybridtrack.ErrTrackerUnavailable)
	}

	if log == nil {
		log = zap.NewNop()
	}

	h := backend.Init(p.FrameRate, p.TrackBuffer, p.KeyframeInterval)

	if h == 0 {
		return nil, fmt.Errorf("%w: init returned null handle", hybridtrack.ErrTrackerUnavailable)
	}

	log.Info("tracker initialised",
		zap.Int("frameRate", p.FrameRate),
		zap.Int("trackBuffer", p.TrackBuffer),
		zap.Int("keyframeInterval", p.KeyframeInterval),
	)

	return &Tracker{
		backend: backend,
		handle:  h,
		params:  p,
		log:     log,
	}, nil
}

// Params returns the parameters the tracker was created with
func (t *Tracker) Params() Params {
	return t.params
}

// Alive reports whether the tracker instance has not been released
func (t *Tracker) Alive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.released
}

// UpdateWithDetections sends a keyframe's detections to the tracker.  When
// the tracker gives no response the returned Response is empty and the error
// wraps ErrTrackerUnavailable.
func (t *Tracker) UpdateWithDetections(req Request) (Response, error) {
	return t.update(func() []float32 {
		return t.backend.UpdateWithDetections(t.handle, req.Flat(), req.Luma, req.Width, req.Height)
	})
}

// UpdateWithoutDetections propagates tracks on a frame where detection was
// skipped
func (t *Tracker) UpdateWithoutDetections(luma []byte, width, height int) (Response, error) {
	return t.update(func() []float32 {
		return t.backend.UpdateWithoutDetections(t.handle, luma, width, height)
	})
}

func (t *Tracker) update(call func() []float32) (resp Response, err error) {

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return Response{}, fmt.Errorf("tracker update: %w", hybridtrack.ErrContextReleased)
	}

	defer func() {
		if r := recover(); r != nil {
			resp = Response{}
			err = fmt.Errorf("%w: backend panic: %v", hybridtrack.ErrTrackerUnavailable, r)
		}
	}()

	flat := call()

	if len(flat) == 0 {
		return Response{}, fmt.Errorf("%w: no response", hybridtrack.ErrTrackerUnavailable)
	}

	resp, derr := DecodeResponse(flat)

	if derr != nil {
		// complete records are still usable
		t.log.Warn("tracker response truncated", zap.Error(derr))
	}

	return resp, nil
}

// IsKeyframe asks the tracker whether the next frame should run detection
func (t *Tracker) IsKeyframe() (bool, error) {

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return false, fmt.Errorf("tracker keyframe query: %w", hybridtrack.ErrContextReleased)
	}

	return t.backend.IsKeyframe(t.handle), nil
}

// Reset clears all tracks if the backend supports it
func (t *Tracker) Reset() error {

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return fmt.Errorf("tracker reset: %w", hybridtrack.ErrContextReleased)
	}

	r, ok := t.backend.(Resetter)

	if !ok {
		return fmt.Errorf("tracker backend %T does not support reset", t.backend)
	}

	r.Reset(t.handle)
	return nil
}

// Close releases the tracker instance.  It is safe to call more than once.
func (t *Tracker) Close() error {

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return nil
	}

	t.backend.Release(t.handle)
	t.released = true
	t.log.Info("tracker released")

	return nil
}
