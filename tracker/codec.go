package tracker

import (
	"fmt"
	"math"
	"time"

	"github.com/swdee/go-hybridtrack"
)

const (
	// RequestStride is the number of floats per detection sent to the
	// tracker: cx, cy, w, h, classId, confidence
	RequestStride = 6
	// ResponseStride is the number of floats per track returned by the
	// tracker: cx, cy, w, h, classId, confidence, trackId
	ResponseStride = 7
	// timingTrailer is the number of floats some trackers append after the
	// tracks: optical flow ms, tracking ms
	timingTrailer = 2
)

// Request is the input to the tracker's detection update on a keyframe
type Request struct {
	// Detections found on the keyframe
	Detections []hybridtrack.Detection
	// Luma is the single channel frame, Width*Height bytes
	Luma []byte
	// Width of the luma image
	Width int
	// Height of the luma image
	Height int
}

// Flat returns the detections as a flat array of RequestStride floats per
// detection
func (r Request) Flat() []float32 {
	return EncodeDetections(nil, r.Detections)
}

// EncodeDetections appends the detections to dst in the flat request layout
func EncodeDetections(dst []float32, dets []hybridtrack.Detection) []float32 {

	for _, d := range dets {
		dst = append(dst, d.CX, d.CY, d.W, d.H, float32(d.ClassID), d.Confidence)
	}

	return dst
}

// DecodeDetections parses a flat request array back into detections with no
// track id
func DecodeDetections(flat []float32) ([]hybridtrack.Detection, error) {

	n := len(flat) / RequestStride
	dets := make([]hybridtrack.Detection, n)

	for i := range dets {
		v := flat[i*RequestStride:]
		dets[i] = hybridtrack.Detection{
			CX:         v[0],
			CY:         v[1],
			W:          v[2],
			H:          v[3],
			ClassID:    toInt(v[4]),
			Confidence: v[5],
			TrackID:    hybridtrack.Untracked,
		}
	}

	if rem := len(flat) % RequestStride; rem != 0 {
		return dets, fmt.Errorf("%w: %d trailing request values", hybridtrack.ErrMalformedRecord, rem)
	}

	return dets, nil
}

// Timing is the per frame cost reported by the tracker
type Timing struct {
	// OpticalFlow is the time spent estimating motion
	OpticalFlow time.Duration
	// Tracking is the time spent updating tracks
	Tracking time.Duration
}

// Response is the tracker output for a single frame
type Response struct {
	// Tracks are the live tracks
	Tracks []hybridtrack.Detection
	// Timing is set when the tracker reported it
	Timing Timing
	// HasTiming indicates the response carried a timing trailer
	HasTiming bool
}

// EncodeResponse returns tracks in the flat response layout, followed by the
// timing trailer when timing is not nil
func EncodeResponse(tracks []hybridtrack.Detection, timing *Timing) []float32 {

	flat := make([]float32, 0, len(tracks)*ResponseStride+timingTrailer)

	for _, d := range tracks {
		flat = append(flat, d.CX, d.CY, d.W, d.H, float32(d.ClassID),
			d.Confidence, float32(d.TrackID))
	}

	if timing != nil {
		flat = append(flat, toMillis(timing.OpticalFlow), toMillis(timing.Tracking))
	}

	return flat
}

// DecodeResponse parses the flat response array.  A remainder of exactly two
// values is the timing trailer, any other remainder is a truncated record
// which is dropped and reported in the error while the complete records are
// still returned.
func DecodeResponse(flat []float32) (Response, error) {

	var resp Response
	var err error

	n := len(flat) / ResponseStride

	switch rem := len(flat) % ResponseStride; rem {
	case 0:
	case timingTrailer:
		trailer := flat[len(flat)-timingTrailer:]
		resp.Timing = Timing{
			OpticalFlow: fromMillis(trailer[0]),
			Tracking:    fromMillis(trailer[1]),
		}
		resp.HasTiming = true
	default:
		err = fmt.Errorf("%w: %d trailing response values", hybridtrack.ErrMalformedRecord, rem)
	}

	resp.Tracks = make([]hybridtrack.Detection, n)

	for i := range resp.Tracks {
		v := flat[i*ResponseStride:]
		resp.Tracks[i] = hybridtrack.Detection{
			CX:         v[0],
			CY:         v[1],
			W:          v[2],
			H:          v[3],
			ClassID:    toInt(v[4]),
			Confidence: v[5],
			TrackID:    toInt(v[6]),
		}
	}

	return resp, err
}

func toInt(v float32) int {
	return int(math.Round(float64(v)))
}

func toMillis(d time.Duration) float32 {
	return float32(d.Seconds() * 1000)
}

func fromMillis(ms float32) time.Duration {
	return time.Duration(float64(ms) * float64(time.Millisecond))
}
