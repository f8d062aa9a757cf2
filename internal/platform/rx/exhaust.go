package rx

import "sync/atomic"

// Exhaust is a single-flight guard: while one run holds it, further
// attempts are dropped rather than queued.
type Exhaust struct {
	busy atomic.Bool
}

func (e *Exhaust) TryAcquire() bool {
	return e.busy.CompareAndSwap(false, true)
}

func (e *Exhaust) Release() {
	e.busy.Store(false)
}

func (e *Exhaust) Busy() bool {
	return e.busy.Load()
}
