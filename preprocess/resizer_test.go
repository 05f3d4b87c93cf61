package preprocess

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-hybridtrack"
	"golang.org/x/image/draw"
)

var (
	red = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// solid returns an image of the given size filled with a single color
func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestLetterbox(t *testing.T) {

	tests := []struct {
		srcWidth       int
		srcHeight      int
		modelWidth     int
		modelHeight    int
		expectedXPad   int
		expectedYPad   int
		expectedResize image.Point
		expectedScale  float64
	}{
		{1280, 720, 640, 640, 0, 140, image.Pt(640, 360), 0.50},
		{800, 1000, 640, 640, 64, 0, image.Pt(512, 640), 0.64},
		{800, 800, 640, 640, 0, 0, image.Pt(640, 640), 0.8},
		{1920, 1080, 640, 640, 0, 140, image.Pt(640, 360), 1.0 / 3},
		{641, 480, 320, 320, 0, 40, image.Pt(320, 240), 320.0 / 641},
		{100, 50, 64, 64, 0, 16, image.Pt(64, 32), 0.64},
	}

	for _, tc := range tests {
		lb, err := NewLetterbox(tc.srcWidth, tc.srcHeight, tc.modelWidth, tc.modelHeight)
		require.NoError(t, err)

		if lb.PadX != tc.expectedXPad || lb.PadY != tc.expectedYPad {
			t.Errorf("Test failed for src (%d, %d): Padding values wrong, expected XPad=%d, YPad=%d, got xPad=%d, yPad=%d",
				tc.srcWidth, tc.srcHeight, tc.expectedXPad, tc.expectedYPad, lb.PadX, lb.PadY)
		}

		if lb.ResizeWidth != tc.expectedResize.X || lb.ResizeHeight != tc.expectedResize.Y {
			t.Errorf("Test failed for src (%d, %d): resize wrong, expected %v, got %dx%d",
				tc.srcWidth, tc.srcHeight, tc.expectedResize, lb.ResizeWidth, lb.ResizeHeight)
		}

		if math.Abs(lb.Scale-tc.expectedScale) > 1e-9 {
			t.Errorf("Test failed for src (%d, %d): Scalefactor incorrect, expected %f, got %f",
				tc.srcWidth, tc.srcHeight, tc.expectedScale, lb.Scale)
		}
	}
}

func TestLetterboxInvariants(t *testing.T) {

	sizes := []int{1, 3, 17, 240, 320, 479, 640, 1080, 1919, 4000}

	for _, sw := range sizes {
		for _, sh := range sizes {
			lb, err := NewLetterbox(sw, sh, 320, 256)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, lb.PadX, 0, "src %dx%d", sw, sh)
			assert.GreaterOrEqual(t, lb.PadY, 0, "src %dx%d", sw, sh)
			assert.LessOrEqual(t, lb.PadX+lb.ResizeWidth, 320, "src %dx%d", sw, sh)
			assert.LessOrEqual(t, lb.PadY+lb.ResizeHeight, 256, "src %dx%d", sw, sh)

			// mapping the frame center to the model and back is the identity
			cx, cy := float32(sw)/2, float32(sh)/2
			mx, my := lb.ToModel(cx, cy)
			rx, ry := lb.ToSource(mx, my)
			assert.InDelta(t, cx, rx, 1e-2*float64(sw))
			assert.InDelta(t, cy, ry, 1e-2*float64(sh))
		}
	}
}

func TestLetterboxInvalid(t *testing.T) {

	_, err := NewLetterbox(0, 100, 640, 640)
	assert.ErrorIs(t, err, hybridtrack.ErrInvalidFrame)

	_, err = NewLetterbox(100, -1, 640, 640)
	assert.ErrorIs(t, err, hybridtrack.ErrInvalidFrame)

	_, err = NewLetterbox(100, 100, 0, 640)
	assert.ErrorIs(t, err, hybridtrack.ErrInvalidFrame)
}

func TestResizerCanvas(t *testing.T) {

	r, err := NewResizer(64, 64, WithInterpolator(draw.NearestNeighbor))
	require.NoError(t, err)

	frame := &hybridtrack.Frame{Img: solid(100, 50, red)}

	canvas, lb, err := r.Resize(frame)
	require.NoError(t, err)

	assert.Equal(t, 16, lb.PadY)
	assert.Equal(t, image.Rect(0, 0, 64, 64), canvas.Rect)

	// padding rows are neutral gray, content rows are the frame color
	assert.Equal(t, PadColor, canvas.RGBAAt(32, 0))
	assert.Equal(t, PadColor, canvas.RGBAAt(32, 15))
	assert.Equal(t, red, canvas.RGBAAt(32, 16))
	assert.Equal(t, red, canvas.RGBAAt(32, 47))
	assert.Equal(t, PadColor, canvas.RGBAAt(32, 48))
}

func TestResizerCachesLetterbox(t *testing.T) {

	r, err := NewResizer(64, 64)
	require.NoError(t, err)

	allocs := r.pix.allocs

	_, lb1, err := r.Resize(&hybridtrack.Frame{Img: solid(100, 50, red)})
	require.NoError(t, err)

	_, lb2, err := r.Resize(&hybridtrack.Frame{Img: solid(100, 50, red)})
	require.NoError(t, err)

	assert.Equal(t, lb1, lb2)

	// a new source size recalculates the transform but keeps the canvas
	_, lb3, err := r.Resize(&hybridtrack.Frame{Img: solid(50, 100, red)})
	require.NoError(t, err)

	assert.Equal(t, 16, lb3.PadX)
	assert.Equal(t, 0, lb3.PadY)
	assert.Equal(t, allocs, r.pix.allocs)
}

func TestResizerInvalidFrame(t *testing.T) {

	r, err := NewResizer(64, 64)
	require.NoError(t, err)

	_, _, err = r.Resize(&hybridtrack.Frame{})
	assert.ErrorIs(t, err, hybridtrack.ErrInvalidFrame)

	_, _, err = r.Resize(&hybridtrack.Frame{Img: image.NewRGBA(image.Rect(0, 0, 0, 10))})
	assert.ErrorIs(t, err, hybridtrack.ErrInvalidFrame)
}
