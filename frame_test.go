package hybridtrack

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameValidate(t *testing.T) {

	var nilFrame *Frame

	tests := []struct {
		name  string
		frame *Frame
		valid bool
	}{
		{"nil frame", nilFrame, false},
		{"no image", &Frame{}, false},
		{"zero width", &Frame{Img: image.NewRGBA(image.Rect(0, 0, 0, 10))}, false},
		{"zero height", &Frame{Img: image.NewRGBA(image.Rect(0, 0, 10, 0))}, false},
		{"short buffer", &Frame{Img: &image.RGBA{Pix: make([]byte, 8), Stride: 40, Rect: image.Rect(0, 0, 10, 10)}}, false},
		{"valid", &Frame{Img: image.NewRGBA(image.Rect(0, 0, 4, 2))}, true},
	}

	for _, tc := range tests {
		err := tc.frame.Validate()

		if tc.valid {
			assert.NoError(t, err, tc.name)
		} else {
			assert.ErrorIs(t, err, ErrInvalidFrame, tc.name)
		}
	}

	assert.Equal(t, 0, nilFrame.Width())
	assert.Equal(t, 4, tests[5].frame.Width())
	assert.Equal(t, 2, tests[5].frame.Height())
}

func TestDetectionPixels(t *testing.T) {

	d := Detection{CX: 0.5, CY: 0.5, W: 0.25, H: 0.5, TrackID: 3}

	l, top, r, b := d.Pixels(640, 480)

	assert.Equal(t, []int{240, 120, 400, 360}, []int{l, top, r, b})
	assert.True(t, d.Tracked())
	assert.False(t, Detection{TrackID: Untracked}.Tracked())
}
