package bootstrap

import "sync/atomic"

// Latch is a one-shot flag. The first TryAcquire wins; every later call
// loses, from any goroutine.
type Latch struct {
	done atomic.Bool
}

// DefaultLatch guards the initial session check for the whole process.
var DefaultLatch = &Latch{}

// TryAcquire reports whether this call is the first.
func (l *Latch) TryAcquire() bool {
	return l.done.CompareAndSwap(false, true)
}

// Acquired reports whether the latch has fired.
func (l *Latch) Acquired() bool {
	return l.done.Load()
}
