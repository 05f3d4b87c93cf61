package postprocess

import (
	"github.com/swdee/go-hybridtrack"
	"github.com/swdee/go-hybridtrack/preprocess"
)

// minBoxSize is the size in source pixels a clipped box must exceed on both
// axes to be kept
const minBoxSize = 1

// Unmap converts the kept candidates from model input pixels back to
// detections normalized to the source frame.  Each edge is clipped to the
// frame independently and the box size recomputed from the clipped edges.
// Boxes that end up no larger than a pixel are discarded.
func Unmap(cands []Candidate, keep []int, lb preprocess.Letterbox) []hybridtrack.Detection {

	srcW := float32(lb.SrcWidth)
	srcH := float32(lb.SrcHeight)

	dets := make([]hybridtrack.Detection, 0, len(keep))

	for _, k := range keep {
		c := cands[k]

		left, top := lb.ToSource(c.Left(), c.Top())
		right, bottom := lb.ToSource(c.Right(), c.Bottom())

		left = clamp(left, 0, srcW)
		right = clamp(right, 0, srcW)
		top = clamp(top, 0, srcH)
		bottom = clamp(bottom, 0, srcH)

		w := right - left
		h := bottom - top

		if w <= minBoxSize || h <= minBoxSize {
			continue
		}

		dets = append(dets, hybridtrack.Detection{
			CX:         (left + w/2) / srcW,
			CY:         (top + h/2) / srcH,
			W:          w / srcW,
			H:          h / srcH,
			ClassID:    c.ClassID,
			Confidence: c.Score,
			TrackID:    hybridtrack.Untracked,
		})
	}

	return dets
}
