package worker

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrBusy is returned when every conversion slot is taken.
var ErrBusy = errors.New("server is busy, please retry")

// Limiter is a counting semaphore that bounds concurrent conversions.
type Limiter struct {
	slots  chan struct{}
	active atomic.Int64
}

// NewLimiter returns a Limiter with n slots. n below 1 is treated as 1.
func NewLimiter(n int) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{slots: make(chan struct{}, n)}
}

// TryAcquire takes a slot without waiting. The returned release func is
// idempotent and must be called once the conversion finishes.
func (l *Limiter) TryAcquire() (func(), error) {
	select {
	case l.slots <- struct{}{}:
		return l.releaser(), nil
	default:
		return nil, ErrBusy
	}
}

// Acquire waits for a slot until ctx is done.
func (l *Limiter) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.slots <- struct{}{}:
		return l.releaser(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Limiter) releaser() func() {
	l.active.Add(1)
	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			l.active.Add(-1)
			<-l.slots
		}
	}
}

// Active reports how many slots are held.
func (l *Limiter) Active() int {
	return int(l.active.Load())
}

// Capacity reports the total number of slots.
func (l *Limiter) Capacity() int {
	return cap(l.slots)
}
