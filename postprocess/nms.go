package postprocess

import (
	"sort"
)

// IoU returns the intersection over union of two boxes.  Boxes with a zero
// union area have an IoU of 0.
func IoU(a, b Candidate) float32 {

	w := min(a.Right(), b.Right()) - max(a.Left(), b.Left())
	h := min(a.Bottom(), b.Bottom()) - max(a.Top(), b.Top())

	var inter float32

	if w > 0 && h > 0 {
		inter = w * h
	}

	union := a.Area() + b.Area() - inter

	if union <= 0 {
		return 0
	}

	return inter / union
}

// NMS performs class agnostic greedy non-max suppression and returns the
// indices of the kept candidates, highest score first.  Candidates with equal
// scores keep their original order.  A box is removed when its IoU with an
// already kept box is above threshold.  maxKeep limits the number of kept
// boxes, 0 for no limit.
func NMS(cands []Candidate, threshold float32, maxKeep int) []int {

	order := make([]int, len(cands))

	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(i, j int) bool {
		return cands[order[i]].Score > cands[order[j]].Score
	})

	removed := make([]bool, len(cands))
	keep := make([]int, 0, len(cands))

	for i, n := range order {

		if removed[i] {
			continue
		}

		keep = append(keep, n)

		if maxKeep > 0 && len(keep) >= maxKeep {
			break
		}

		for j := i + 1; j < len(order); j++ {
			if removed[j] {
				continue
			}

			if IoU(cands[n], cands[order[j]]) > threshold {
				removed[j] = true
			}
		}
	}

	return keep
}

// Select returns the candidates at the kept indices, in that order
func Select(cands []Candidate, keep []int) []Candidate {

	out := make([]Candidate, len(keep))

	for i, k := range keep {
		out[i] = cands[k]
	}

	return out
}
