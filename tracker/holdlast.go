package tracker

import (
	"sync"
	"time"

	"github.com/swdee/go-hybridtrack"
)

// HoldLast is an in process Backend used when no native tracker is
// available.  Every keyframe detection is given a new track id and the
// tracks are repeated unchanged on propagation frames.  It performs no
// motion estimation or association.
type HoldLast struct {
	mu       sync.Mutex
	next     Handle
	sessions map[Handle]*holdState
}

type holdState struct {
	interval int
	frame    uint64
	ids      *IDGenerator
	tracks   []hybridtrack.Detection
}

// NewHoldLast returns a HoldLast backend
func NewHoldLast() *HoldLast {
	return &HoldLast{
		sessions: make(map[Handle]*holdState),
	}
}

func (b *HoldLast) state(h Handle) *holdState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[h]
}

// Init creates a new session
func (b *HoldLast) Init(frameRate, trackBuffer, keyframeInterval int) Handle {

	if frameRate <= 0 || trackBuffer < 0 {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	b.sessions[b.next] = &holdState{
		interval: keyframeInterval,
		ids:      NewIDGenerator(),
	}

	return b.next
}

// UpdateWithDetections replaces the held tracks with the detections
func (b *HoldLast) UpdateWithDetections(h Handle, dets []float32, luma []byte, width, height int) []float32 {

	s := b.state(h)

	if s == nil {
		return nil
	}

	start := time.Now()

	// trailing partial values are ignored
	tracks, _ := DecodeDetections(dets)

	for i := range tracks {
		tracks[i].TrackID = s.ids.GetNext()
	}

	s.tracks = tracks
	s.frame++

	return EncodeResponse(s.tracks, &Timing{Tracking: time.Since(start)})
}

// UpdateWithoutDetections returns the held tracks
func (b *HoldLast) UpdateWithoutDetections(h Handle, luma []byte, width, height int) []float32 {

	s := b.state(h)

	if s == nil {
		return nil
	}

	s.frame++

	return EncodeResponse(s.tracks, &Timing{})
}

// IsKeyframe reports whether the next frame is a keyframe given the number of
// frames processed so far
func (b *HoldLast) IsKeyframe(h Handle) bool {

	s := b.state(h)

	if s == nil {
		return false
	}

	if s.interval <= 1 {
		return true
	}

	return s.frame%uint64(s.interval) == 0
}

// Reset clears the held tracks and frame count
func (b *HoldLast) Reset(h Handle) {

	s := b.state(h)

	if s == nil {
		return
	}

	s.tracks = nil
	s.frame = 0
	s.ids.Reset()
}

// Release removes the session
func (b *HoldLast) Release(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, h)
}
