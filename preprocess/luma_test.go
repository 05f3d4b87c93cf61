package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLumaConvert(t *testing.T) {

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 30, G: 60, B: 90, A: 255})
	img.SetRGBA(1, 0, color.RGBA{R: 255, G: 255, B: 254, A: 255})
	img.SetRGBA(0, 1, color.RGBA{R: 0, G: 0, B: 0, A: 0})
	img.SetRGBA(1, 1, color.RGBA{R: 1, G: 1, B: 0, A: 255})

	var l Luma

	assert.Equal(t, []byte{60, 254, 0, 0}, l.Convert(img))
}

func TestLumaSubImage(t *testing.T) {

	img := solid(4, 4, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	img.SetRGBA(2, 2, color.RGBA{R: 90, G: 90, B: 90, A: 255})

	sub := img.SubImage(image.Rect(2, 2, 4, 4)).(*image.RGBA)

	var l Luma

	assert.Equal(t, []byte{90, 10, 10, 10}, l.Convert(sub))
}

func TestLumaReallocOnDimensionChange(t *testing.T) {

	var l Luma

	l.Convert(solid(4, 4, red))
	l.Convert(solid(4, 4, red))
	assert.Equal(t, 1, l.out.allocs)

	out := l.Convert(solid(8, 2, red))
	assert.Len(t, out, 16)
	assert.Equal(t, 1, l.out.allocs, "same pixel count reuses the buffer")

	out = l.Convert(solid(8, 4, red))
	assert.Len(t, out, 32)
	assert.Equal(t, 2, l.out.allocs)
}
