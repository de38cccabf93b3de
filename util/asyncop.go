package util

import (
	"context"
	"sync"
)

// AsyncOp is a cancellable handle for a callback delivered from a
// background goroutine. Deliver after Cancel is suppressed, best effort.
type AsyncOp struct {
	mu        sync.Mutex
	cancelled bool
	cancelFn  context.CancelFunc
}

// NewAsyncOp creates a handle; cancelFn may be nil
func NewAsyncOp(cancelFn context.CancelFunc) *AsyncOp {
	return &AsyncOp{cancelFn: cancelFn}
}

// Cancel suppresses future deliveries and aborts the underlying work
func (o *AsyncOp) Cancel() {
	o.mu.Lock()
	o.cancelled = true
	cancelFn := o.cancelFn
	o.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
	}
}

// Deliver runs fn unless the operation was cancelled
func (o *AsyncOp) Deliver(fn func()) {
	o.mu.Lock()
	cancelled := o.cancelled
	o.mu.Unlock()

	if !cancelled {
		fn()
	}
}
