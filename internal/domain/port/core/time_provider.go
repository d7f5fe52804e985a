package core

import (
	"context"
	"time"
)

// TimeProvider abstracts clock access for the domain. Early-bird pricing and
// expiry checks depend on it, so tests can pin the clock to an instant.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	Sleep(d time.Duration)
	WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc)
}
