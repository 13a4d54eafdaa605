package ipcmain

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// Future is the deferred result of a handler. It is settled exactly once, either
// resolved with a value or rejected with an error; later calls are ignored.
// The zero value is an unsettled future ready to use.
type Future[R any] struct {
	ch     chan struct{}
	chOnce sync.Once
	once   sync.Once

	val R
	err error
}

// NewFuture allocates an unsettled future.
func NewFuture[R any]() *Future[R] {
	f := &Future[R]{}
	f.init()
	return f
}

func (f *Future[R]) init() {
	f.chOnce.Do(func() {
		if f.ch == nil {
			f.ch = make(chan struct{})
		}
	})
}

// Resolved returns a future already resolved with v.
func Resolved[R any](v R) *Future[R] {
	f := NewFuture[R]()
	f.Resolve(v)
	return f
}

// Rejected returns a future already rejected with err.
func Rejected[R any](err error) *Future[R] {
	f := NewFuture[R]()
	f.Reject(err)
	return f
}

// Go runs fn on its own goroutine and settles the returned future with its
// outcome. A panic in fn rejects the future with a *PanicError.
func Go[R any](fn func() (R, error)) *Future[R] {
	f := NewFuture[R]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.Reject(&PanicError{Value: r, Stack: debug.Stack()})
			}
		}()
		v, err := fn()
		if err != nil {
			f.Reject(err)
			return
		}
		f.Resolve(v)
	}()
	return f
}

// Resolve settles the future with v.
func (f *Future[R]) Resolve(v R) {
	f.init()
	f.once.Do(func() {
		f.val = v
		close(f.ch)
	})
}

// Reject settles the future with err. A nil err is replaced with a generic one so
// a rejected future never looks resolved.
func (f *Future[R]) Reject(err error) {
	if err == nil {
		err = fmt.Errorf("%s - future rejected without an error", logPrefix)
	}
	f.init()
	f.once.Do(func() {
		f.err = err
		close(f.ch)
	})
}

// Done returns a channel closed once the future is settled.
func (f *Future[R]) Done() <-chan struct{} {
	f.init()
	return f.ch
}

// Wait blocks until the future settles or ctx is done.
func (f *Future[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-f.Done():
		return f.val, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}
