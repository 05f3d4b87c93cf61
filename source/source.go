package source

import (
	"fmt"
	"image"
	"time"

	"github.com/swdee/go-hybridtrack"
	"gocv.io/x/gocv"
)

// Source produces frames from a camera, video or image sequence.  Read
// returns io.EOF at the end of the stream and ErrContextReleased once the
// source has been closed.
type Source interface {
	Read() (*hybridtrack.Frame, error)
	Close() error
}

// matToFrame converts a BGR Mat to a Frame.  Each frame gets its own pixel
// buffer as it may still be in flight in the pipeline when the next frame is
// read.
func matToFrame(bgr gocv.Mat, rgba *gocv.Mat, seq uint64) (*hybridtrack.Frame, error) {

	if bgr.Empty() {
		return nil, fmt.Errorf("%w: empty image", hybridtrack.ErrInvalidFrame)
	}

	gocv.CvtColor(bgr, rgba, gocv.ColorBGRToRGBA)

	pix, err := rgba.DataPtrUint8()

	if err != nil {
		return nil, fmt.Errorf("error reading pixels: %w", err)
	}

	w, h := rgba.Cols(), rgba.Rows()

	img := &image.RGBA{
		Pix:    make([]uint8, w*h*4),
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}

	copy(img.Pix, pix)

	return &hybridtrack.Frame{
		Img:       img,
		Seq:       seq,
		Timestamp: time.Now(),
	}, nil
}
