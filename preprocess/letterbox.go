package preprocess

import (
	"fmt"
	"image"
	"math"

	"github.com/swdee/go-hybridtrack"
)

// Letterbox is the aspect preserving transform from a source frame into the
// fixed model input size.  The scaled content is centered and the remainder
// filled with padding.
type Letterbox struct {
	// SrcWidth is the width of the source frame
	SrcWidth int
	// SrcHeight is the height of the source frame
	SrcHeight int
	// ModelWidth is the width of the model input
	ModelWidth int
	// ModelHeight is the height of the model input
	ModelHeight int
	// ResizeWidth is the width of the scaled content
	ResizeWidth int
	// ResizeHeight is the height of the scaled content
	ResizeHeight int
	// PadX is the left padding
	PadX int
	// PadY is the top padding
	PadY int
	// Scale is the factor applied to source pixels
	Scale float64
}

// NewLetterbox calculates the letterbox transform for scaling a source frame
// of srcW x srcH into a model input of modelW x modelH
func NewLetterbox(srcW, srcH, modelW, modelH int) (Letterbox, error) {

	if srcW <= 0 || srcH <= 0 {
		return Letterbox{}, fmt.Errorf("%w: source size %dx%d", hybridtrack.ErrInvalidFrame, srcW, srcH)
	}

	if modelW <= 0 || modelH <= 0 {
		return Letterbox{}, fmt.Errorf("%w: model size %dx%d", hybridtrack.ErrInvalidFrame, modelW, modelH)
	}

	scale := math.Min(float64(modelW)/float64(srcW), float64(modelH)/float64(srcH))

	lb := Letterbox{
		SrcWidth:     srcW,
		SrcHeight:    srcH,
		ModelWidth:   modelW,
		ModelHeight:  modelH,
		Scale:        scale,
		ResizeWidth:  scaled(srcW, scale, modelW),
		ResizeHeight: scaled(srcH, scale, modelH),
	}

	lb.PadX = (modelW - lb.ResizeWidth) / 2
	lb.PadY = (modelH - lb.ResizeHeight) / 2

	return lb, nil
}

// scaled rounds v*scale to the nearest pixel and keeps it within [1,limit]
func scaled(v int, scale float64, limit int) int {

	n := int(math.Round(float64(v) * scale))

	if n < 1 {
		return 1
	}

	if n > limit {
		return limit
	}

	return n
}

// ContentRect returns the region of the model input holding the scaled frame
func (l Letterbox) ContentRect() image.Rectangle {
	return image.Rect(l.PadX, l.PadY, l.PadX+l.ResizeWidth, l.PadY+l.ResizeHeight)
}

// ToSource maps a point in model input pixels back to source frame pixels
func (l Letterbox) ToSource(x, y float32) (float32, float32) {
	s := float32(l.Scale)
	return (x - float32(l.PadX)) / s, (y - float32(l.PadY)) / s
}

// ToModel maps a point in source frame pixels to model input pixels
func (l Letterbox) ToModel(x, y float32) (float32, float32) {
	s := float32(l.Scale)
	return x*s + float32(l.PadX), y*s + float32(l.PadY)
}

// Same reports whether the letterbox was calculated for the given source and
// model sizes
func (l Letterbox) Same(srcW, srcH, modelW, modelH int) bool {
	return l.SrcWidth == srcW && l.SrcHeight == srcH &&
		l.ModelWidth == modelW && l.ModelHeight == modelH
}
