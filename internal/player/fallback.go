package player

import (
	"context"
	"sync"
	"time"
)

// FallbackClock wraps a Clock and keeps serving position estimates when the
// underlying query fails: the last observed position is advanced by wall time
// while playback is believed running. Before any successful observation there
// is nothing to estimate from, so the underlying error passes through and
// the consumer keeps its last known state instead of guessing.
type FallbackClock struct {
	mu      sync.Mutex
	inner   Clock
	lastPos float64
	lastAt  time.Time
	seen    bool
	paused  bool
	now     func() time.Time
}

func NewFallbackClock(inner Clock) *FallbackClock {
	return &FallbackClock{inner: inner, now: time.Now}
}

func (c *FallbackClock) CurrentTime(ctx context.Context) (float64, error) {
	pos, err := c.inner.CurrentTime(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.lastPos = pos
		c.lastAt = c.now()
		c.seen = true
		return pos, nil
	}
	if !c.seen {
		return 0, err
	}

	estimate := c.lastPos
	if !c.paused {
		estimate += c.now().Sub(c.lastAt).Seconds()
	}
	return estimate, nil
}

// MarkPaused tells the estimator whether playback is running, so estimates
// stop advancing while the player is paused.
func (c *FallbackClock) MarkPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// freeze or re-anchor the estimate at the transition
	if c.seen && !c.paused {
		c.lastPos += c.now().Sub(c.lastAt).Seconds()
	}
	c.lastAt = c.now()
	c.paused = paused
}
