package source

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/swdee/go-hybridtrack"
	"gocv.io/x/gocv"
)

// Capture reads frames from a video file, stream URL or camera device
type Capture struct {
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	bgr    gocv.Mat
	rgba   gocv.Mat
	seq    uint64
	closed bool
}

// OpenCapture opens the video at uri.  A numeric uri is a camera device id.
func OpenCapture(uri string) (*Capture, error) {

	var device interface{} = uri

	if id, err := strconv.Atoi(uri); err == nil {
		device = id
	}

	vc, err := gocv.OpenVideoCapture(device)

	if err != nil {
		return nil, fmt.Errorf("error opening video %s: %w", uri, err)
	}

	return &Capture{
		vc:   vc,
		bgr:  gocv.NewMat(),
		rgba: gocv.NewMat(),
	}, nil
}

// FPS returns the frame rate reported by the video, or 0 when unknown
func (c *Capture) FPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0
	}

	return c.vc.Get(gocv.VideoCaptureFPS)
}

// Read returns the next frame
func (c *Capture) Read() (*hybridtrack.Frame, error) {

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("capture read: %w", hybridtrack.ErrContextReleased)
	}

	if ok := c.vc.Read(&c.bgr); !ok || c.bgr.Empty() {
		return nil, io.EOF
	}

	c.seq++

	return matToFrame(c.bgr, &c.rgba, c.seq)
}

// Close releases the video and its Mats
func (c *Capture) Close() error {

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.bgr.Close()
	c.rgba.Close()

	return c.vc.Close()
}
