package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/swdee/go-hybridtrack"
	"gocv.io/x/gocv"
)

// imageExts are the file extensions read from an image directory
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ImageDir reads an image sequence from a directory in file name order, as
// used by MOT style datasets
type ImageDir struct {
	mu     sync.Mutex
	files  []string
	next   int
	rgba   gocv.Mat
	closed bool
}

// OpenImageDir lists the images in dir.  limit caps the number of frames, 0
// reads them all.
func OpenImageDir(dir string, limit int) (*ImageDir, error) {

	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, fmt.Errorf("error reading image directory: %w", err)
	}

	var files []string

	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}

		files = append(files, filepath.Join(dir, e.Name()))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}

	sort.Strings(files)

	if limit > 0 && limit < len(files) {
		files = files[:limit]
	}

	return &ImageDir{
		files: files,
		rgba:  gocv.NewMat(),
	}, nil
}

// Len returns the number of frames in the sequence
func (d *ImageDir) Len() int {
	return len(d.files)
}

// Read returns the next image in the sequence
func (d *ImageDir) Read() (*hybridtrack.Frame, error) {

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, fmt.Errorf("image dir read: %w", hybridtrack.ErrContextReleased)
	}

	if d.next >= len(d.files) {
		return nil, io.EOF
	}

	file := d.files[d.next]
	d.next++

	bgr := gocv.IMRead(file, gocv.IMReadColor)
	defer bgr.Close()

	frame, err := matToFrame(bgr, &d.rgba, uint64(d.next))

	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", file, err)
	}

	return frame, nil
}

// Close releases the conversion Mat
func (d *ImageDir) Close() error {

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	d.closed = true
	return d.rgba.Close()
}
