package ipcmain

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/morezero/ipc-bridge/pkg/channel"
	"github.com/morezero/ipc-bridge/pkg/commsutil"
	"github.com/morezero/ipc-bridge/pkg/transport"
)

// HandlerFunc serves one invoke channel synchronously.
type HandlerFunc[A, R any] func(ev *transport.Event, args A) (R, error)

// DeferredFunc serves one invoke channel with a deferred result. It should return
// quickly; the reply is sent when the future settles.
type DeferredFunc[A, R any] func(ev *transport.Event, args A) *Future[R]

// HandlerError lets a handler pick the code and message a renderer sees when the
// failure is propagated.
type HandlerError struct {
	Code    string
	Message string
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panicked: %v", e.Value)
}

// Registration binds a handler to one invoke channel. Build it with Handle or
// HandleDeferred and pass it to Registry.Register.
type Registration interface {
	channelName() string
	check() error
	serve(r *Registry, req *transport.Request)
}

type binding[A, R any] struct {
	ch       channel.Invoke[A, R]
	sync     HandlerFunc[A, R]
	deferred DeferredFunc[A, R]
}

// Handle binds a synchronous handler to ch.
func Handle[A, R any](ch channel.Invoke[A, R], fn HandlerFunc[A, R]) Registration {
	return &binding[A, R]{ch: ch, sync: fn}
}

// HandleDeferred binds a handler returning a Future to ch.
func HandleDeferred[A, R any](ch channel.Invoke[A, R], fn DeferredFunc[A, R]) Registration {
	return &binding[A, R]{ch: ch, deferred: fn}
}

func (b *binding[A, R]) channelName() string { return b.ch.Name() }

func (b *binding[A, R]) check() error {
	if b.sync == nil && b.deferred == nil {
		return fmt.Errorf("%s - nil handler for %q", logPrefix, b.ch.Name())
	}
	return nil
}

func (b *binding[A, R]) serve(r *Registry, req *transport.Request) {
	ev := req.Event
	if err := r.validator.Validate(ev); err != nil {
		r.rejectSender(req, err)
		return
	}

	var args A
	if err := commsutil.DecodePayload(req.Payload, &args); err != nil {
		r.syncFailure(req, fmt.Errorf("%s - decode arguments: %w", logPrefix, err))
		return
	}

	if b.deferred != nil {
		b.serveDeferred(r, req, args)
		return
	}

	result, err := callSync(b.sync, ev, args)
	if err != nil {
		r.syncFailure(req, err)
		return
	}
	r.reply(req, result)
}

func (b *binding[A, R]) serveDeferred(r *Registry, req *transport.Request, args A) {
	f, err := callDeferred(b.deferred, req.Event, args)
	if err != nil {
		r.syncFailure(req, err)
		return
	}
	if f == nil {
		r.respond(req, transport.Undefined())
		return
	}

	go func() {
		<-f.Done()
		if f.err != nil {
			r.deferredFailure(req, f.err)
			return
		}
		r.reply(req, f.val)
	}()
}

func callSync[A, R any](fn HandlerFunc[A, R], ev *transport.Event, args A) (result R, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	return fn(ev, args)
}

func callDeferred[A, R any](fn DeferredFunc[A, R], ev *transport.Event, args A) (f *Future[R], err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	return fn(ev, args), nil
}

// failureReply turns a handler error into the reply a renderer sees.
func failureReply(err error, code string) *transport.Reply {
	var he *HandlerError
	if errors.As(err, &he) {
		return transport.Failure(he.Code, he.Message)
	}
	var pe *PanicError
	if errors.As(err, &pe) {
		return transport.Failure(code, "handler panicked")
	}
	return transport.Failure(code, err.Error())
}
