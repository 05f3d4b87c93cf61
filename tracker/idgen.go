package tracker

import "sync"

// IDGenerator is a struct to hold a counter for generating the next
// incremental track ID
type IDGenerator struct {
	id int
	sync.Mutex
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GetNext returns the next incremental ID, starting at 1
func (id *IDGenerator) GetNext() int {
	id.Lock()
	defer id.Unlock()
	id.id++
	return id.id
}

// Reset starts numbering from 1 again
func (id *IDGenerator) Reset() {
	id.Lock()
	defer id.Unlock()
	id.id = 0
}
