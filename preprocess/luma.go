package preprocess

import (
	"image"
)

// Luma converts frames to the single channel grayscale image consumed by the
// tracker's optical flow.  The output buffer is reused across frames.
type Luma struct {
	out buffer
}

// Convert returns width*height bytes where each pixel is (r+g+b)/3.  The
// returned slice is only valid until the next call.
func (l *Luma) Convert(img *image.RGBA) []byte {

	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := l.out.get(w * h)

	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		row := img.Pix[off : off+w*4]
		dst := out[y*w : (y+1)*w]

		for x := range dst {
			p := row[x*4 : x*4+3 : x*4+3]
			dst[x] = uint8((int(p[0]) + int(p[1]) + int(p[2])) / 3)
		}
	}

	return out
}
