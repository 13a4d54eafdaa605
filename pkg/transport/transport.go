// Package transport defines the message transport the bridge rides on.
//
// A transport offers two primitives: serve requests arriving on a named channel,
// and send a one-way message to a named channel of a specific window.
package transport

import (
	"errors"
	"sync"
)

// ErrAlreadyResponded is returned when a request is answered twice.
var ErrAlreadyResponded = errors.New("transport: request already answered")

// Event is the context of one incoming request.
type Event struct {
	// Channel is the invoke channel the request arrived on.
	Channel string
	// SenderURL is the URL of the frame that issued the request.
	SenderURL string
	// WindowID identifies the renderer window that issued the request.
	WindowID string
}

// Request is one incoming invoke request. Handlers answer it at most once with
// Respond; a request that is never answered stays pending on the renderer side.
type Request struct {
	Event   *Event
	Payload []byte

	mu      sync.Mutex
	respond func(*Reply) error
}

// NewRequest builds a Request. respond is called at most once.
func NewRequest(ev *Event, payload []byte, respond func(*Reply) error) *Request {
	return &Request{Event: ev, Payload: payload, respond: respond}
}

// Respond sends the reply back to the requester.
func (r *Request) Respond(reply *Reply) error {
	r.mu.Lock()
	fn := r.respond
	r.respond = nil
	r.mu.Unlock()
	if fn == nil {
		return ErrAlreadyResponded
	}
	return fn(reply)
}

// RequestHandler serves requests on one channel.
type RequestHandler func(req *Request)

// Unsubscribe stops serving a channel.
type Unsubscribe func() error

// Transport is the platform primitive the bridge is built on.
type Transport interface {
	// Handle serves requests on channel until the returned Unsubscribe is called.
	Handle(channel string, h RequestHandler) (Unsubscribe, error)
	// Send delivers payload to windowID on channel. No reply is awaited.
	Send(windowID, channel string, payload []byte) error
}
