package wire

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Publisher sends an encoded message for a frame to a remote peer.  The
// transport is supplied by the caller.
type Publisher interface {
	Publish(ctx context.Context, seq uint64, payload string) error
}

// WriterPublisher writes each message as a "seq<TAB>payload" line
type WriterPublisher struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterPublisher returns a Publisher writing to w
func NewWriterPublisher(w io.Writer) *WriterPublisher {
	return &WriterPublisher{w: w}
}

// Publish writes the message line
func (p *WriterPublisher) Publish(ctx context.Context, seq uint64, payload string) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := fmt.Fprintf(p.w, "%d\t%s\n", seq, payload); err != nil {
		return fmt.Errorf("error publishing frame %d: %w", seq, err)
	}

	return nil
}
