// Package clock issues the millisecond timestamps used to stamp syncable
// rows and to compute pull watermarks.
package clock

import (
	"sync"
	"time"
)

// Clock hands out wall-clock timestamps in milliseconds that are strictly
// increasing within the process. The pull protocol uses an exclusive lower
// bound on updated_at, so two rows must never share a stamp with an
// in-flight watermark.
type Clock struct {
	mu   sync.Mutex
	last int64
}

func New() *Clock {
	return &Clock{}
}

// NowMillis returns the current time in milliseconds since the Unix epoch,
// bumped by one if the wall clock has not advanced since the previous call.
func (c *Clock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().UnixMilli()
	if now <= c.last {
		now = c.last + 1
	}
	c.last = now
	return now
}
