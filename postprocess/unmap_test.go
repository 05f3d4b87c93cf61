package postprocess

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-hybridtrack"
	"github.com/swdee/go-hybridtrack/preprocess"
)

func TestUnmap(t *testing.T) {

	// 1280x720 into 640x640 has scale 0.5 and 140 pixels of top padding
	lb, err := preprocess.NewLetterbox(1280, 720, 640, 640)
	require.NoError(t, err)

	tests := []struct {
		name     string
		cand     Candidate
		expected []hybridtrack.Detection
	}{
		{
			name: "canvas center maps to frame center",
			cand: Candidate{CX: 320, CY: 320, HalfW: 50, HalfH: 50, ClassID: 2, Score: 0.8},
			expected: []hybridtrack.Detection{{
				CX: 0.5, CY: 0.5, W: 200.0 / 1280, H: 200.0 / 720,
				ClassID: 2, Confidence: 0.8, TrackID: hybridtrack.Untracked,
			}},
		},
		{
			name: "left edge clipped then size recomputed",
			cand: Candidate{CX: 10, CY: 320, HalfW: 30, HalfH: 50, ClassID: 0, Score: 0.5},
			expected: []hybridtrack.Detection{{
				CX: 40.0 / 1280, CY: 0.5, W: 80.0 / 1280, H: 200.0 / 720,
				ClassID: 0, Confidence: 0.5, TrackID: hybridtrack.Untracked,
			}},
		},
		{
			name: "bottom edge clipped",
			cand: Candidate{CX: 320, CY: 480, HalfW: 50, HalfH: 40, ClassID: 1, Score: 0.6},
			expected: []hybridtrack.Detection{{
				CX: 0.5, CY: 660.0 / 720, W: 200.0 / 1280, H: 120.0 / 720,
				ClassID: 1, Confidence: 0.6, TrackID: hybridtrack.Untracked,
			}},
		},
		{
			name:     "box inside padding is discarded",
			cand:     Candidate{CX: 320, CY: 60, HalfW: 50, HalfH: 40, Score: 0.9},
			expected: []hybridtrack.Detection{},
		},
		{
			name:     "one pixel box is discarded",
			cand:     Candidate{CX: 320, CY: 320, HalfW: 0.25, HalfH: 20, Score: 0.9},
			expected: []hybridtrack.Detection{},
		},
	}

	opt := cmpopts.EquateApprox(0, 1e-5)

	for _, tc := range tests {
		got := Unmap([]Candidate{tc.cand}, []int{0}, lb)

		if diff := cmp.Diff(tc.expected, got, opt); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestUnmapKeepOrder(t *testing.T) {

	lb, err := preprocess.NewLetterbox(640, 640, 640, 640)
	require.NoError(t, err)

	cands := []Candidate{
		{CX: 100, CY: 100, HalfW: 10, HalfH: 10, Score: 0.2},
		{CX: 300, CY: 300, HalfW: 10, HalfH: 10, Score: 0.9},
	}

	got := Unmap(cands, []int{1, 0}, lb)

	require.Len(t, got, 2)
	require.Equal(t, float32(0.9), got[0].Confidence)
	require.Equal(t, float32(0.2), got[1].Confidence)
}
