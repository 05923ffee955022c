package tui

import (
	"io"
	"sync"

	"github.com/vito/progrock"
	"go.trai.ch/zerr"
)

// ErrFeedClosed is returned when writing to a closed Feed.
var ErrFeedClosed = zerr.New("progress feed closed")

// Feed is a progrock writer whose updates are read back in order by the TUI.
// Writes never block, so a stalled reader cannot hold up installation.
type Feed struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*progrock.StatusUpdate
	closed bool
}

// NewFeed creates an empty Feed.
func NewFeed() *Feed {
	f := &Feed{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// WriteStatus queues update for the reader.
func (f *Feed) WriteStatus(update *progrock.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFeedClosed
	}
	f.queue = append(f.queue, update)
	f.cond.Signal()
	return nil
}

// Read blocks until an update is queued. It returns io.EOF once the feed is
// closed and drained.
func (f *Feed) Read() (*progrock.StatusUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.queue) == 0 && !f.closed {
		f.cond.Wait()
	}
	if len(f.queue) == 0 {
		return nil, io.EOF
	}
	update := f.queue[0]
	f.queue[0] = nil
	f.queue = f.queue[1:]
	return update, nil
}

// Close ends the feed. Queued updates can still be read.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cond.Broadcast()
	return nil
}
