// Package pool contains helpers for sharing resources between goroutines.
package pool

import (
	"io"
	"sync"
)

// LockedReader wraps an io.Reader to be safe for concurrent reads.
//
// Every Read acquires a lock, so that a reader which is not safe for concurrent
// use, such as a seeded test source, can be shared by every goroutine serving
// requests.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
// A reader that is already a *LockedReader is returned as is.
func NewLockedReader(r io.Reader) *LockedReader {
	if lr, ok := r.(*LockedReader); ok {
		return lr
	}
	return &LockedReader{reader: r}
}

// Read implements io.Reader for LockedReader.
//
// When called concurrently, which caller gets which bytes is raced, but no two
// callers observe the same bytes.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
