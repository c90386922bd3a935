package test

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Concurrently calls f(0), …, f(n-1) from n goroutines, and returns the first error.
func Concurrently(n int, f func(i int) error) error {
	var eg errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error { return f(i) })
	}
	return eg.Wait()
}

// Clock is a time source which only moves when told to.
type Clock struct {
	mtx sync.Mutex
	now time.Time
}

// NewClock returns a Clock set to a fixed date.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current time of the clock.
func (c *Clock) Now() time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.now = c.now.Add(d)
}
