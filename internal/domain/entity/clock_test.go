package entity

import (
	"context"
	"sync"
	"time"
)

// testClock is a settable time provider for deterministic tests
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(now time.Time) *testClock {
	return &testClock{now: now}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *testClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

func (c *testClock) Sleep(d time.Duration) {
	c.Advance(d)
}

func (c *testClock) WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}
