package pipeline

import (
	"github.com/swdee/go-hybridtrack/tracker"
)

// Policy decides whether a frame runs detection
type Policy interface {
	// IsKeyframe reports whether the frame with the given zero based index
	// is a keyframe
	IsKeyframe(frameIndex uint64) bool
}

// IntervalPolicy makes every Interval'th frame a keyframe starting with the
// first.  An Interval of 1 or less runs detection on every frame.
type IntervalPolicy struct {
	Interval int
}

func (p IntervalPolicy) IsKeyframe(frameIndex uint64) bool {
	if p.Interval <= 1 {
		return true
	}
	return frameIndex%uint64(p.Interval) == 0
}

// TrackerPolicy defers the decision to the tracker's own frame counter
type TrackerPolicy struct {
	Tracker *tracker.Tracker
}

// IsKeyframe ignores the index and asks the tracker.  A released tracker
// never requests a keyframe.
func (p TrackerPolicy) IsKeyframe(frameIndex uint64) bool {

	isKey, err := p.Tracker.IsKeyframe()

	if err != nil {
		return false
	}

	return isKey
}
