package postprocess

import "fmt"

// Candidate is a raw box produced by the decoder for one prediction slot, in
// model input pixels including letterbox padding
type Candidate struct {
	// CX is the horizontal box center
	CX float32
	// CY is the vertical box center
	CY float32
	// HalfW is half the box width
	HalfW float32
	// HalfH is half the box height
	HalfH float32
	// ClassID is the index of the highest scoring class
	ClassID int
	// Score is the highest class score
	Score float32
}

// Left edge of the box
func (c Candidate) Left() float32 {
	return c.CX - c.HalfW
}

// Top edge of the box
func (c Candidate) Top() float32 {
	return c.CY - c.HalfH
}

// Right edge of the box
func (c Candidate) Right() float32 {
	return c.CX + c.HalfW
}

// Bottom edge of the box
func (c Candidate) Bottom() float32 {
	return c.CY + c.HalfH
}

// Area of the box
func (c Candidate) Area() float32 {
	return (2 * c.HalfW) * (2 * c.HalfH)
}

func (c Candidate) String() string {
	return fmt.Sprintf("class=%d score=%.3f (%.1f,%.1f,%.1f,%.1f)",
		c.ClassID, c.Score, c.Left(), c.Top(), c.Right(), c.Bottom())
}
