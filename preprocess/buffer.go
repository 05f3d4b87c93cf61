package preprocess

// buffer is a byte slice owned by a single pipeline stage that is reused
// across frames and only reallocated when the required size changes
type buffer struct {
	data []byte
	// allocs counts the number of allocations made
	allocs int
}

// get returns a slice of exactly size bytes.  The previous slice is
// released when the size changes.  Contents are not cleared.
func (b *buffer) get(size int) []byte {

	if len(b.data) != size {
		b.data = make([]byte, size)
		b.allocs++
	}

	return b.data
}
