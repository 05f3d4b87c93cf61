package hybridtrack

import "fmt"

const (
	// UnknownClass is the class id given to a detection with no class
	UnknownClass = -1
	// Untracked is the track id given to a detection not yet associated
	// with a track
	Untracked = -1
)

// Detection is a bounding box normalized to the original frame dimensions
// with a class, confidence and optional track id
type Detection struct {
	// CX is the horizontal center in [0,1]
	CX float32
	// CY is the vertical center in [0,1]
	CY float32
	// W is the box width in [0,1]
	W float32
	// H is the box height in [0,1]
	H float32
	// ClassID is the class index or UnknownClass
	ClassID int
	// Confidence is the class score in [0,1]
	Confidence float32
	// TrackID is a positive track id, or Untracked
	TrackID int
}

// Tracked reports whether the detection has been assigned a track id
func (d Detection) Tracked() bool {
	return d.TrackID > 0
}

// Pixels returns the box as left, top, right, bottom in pixels of a frame of
// the given size
func (d Detection) Pixels(width, height int) (left, top, right, bottom int) {
	fw, fh := float32(width), float32(height)
	left = int((d.CX - d.W/2) * fw)
	top = int((d.CY - d.H/2) * fh)
	right = int((d.CX + d.W/2) * fw)
	bottom = int((d.CY + d.H/2) * fh)
	return
}

func (d Detection) String() string {
	return fmt.Sprintf("class=%d conf=%.3f track=%d box=(%.4f,%.4f %.4fx%.4f)",
		d.ClassID, d.Confidence, d.TrackID, d.CX, d.CY, d.W, d.H)
}
