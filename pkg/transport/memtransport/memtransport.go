// Package memtransport is a process-local transport. It serves invoke requests
// by direct call and fans notifications out to in-memory subscribers; it backs
// tests and single-process embeddings where no broker is running.
package memtransport

import (
	"context"
	"fmt"
	"sync"

	"github.com/morezero/ipc-bridge/pkg/transport"
)

const logPrefix = "memtransport:memtransport"

// Message is one notification delivered to a window.
type Message struct {
	WindowID string
	Channel  string
	Payload  []byte
}

type subKey struct {
	windowID string
	channel  string
}

// Transport is an in-memory transport.Transport.
type Transport struct {
	mu       sync.RWMutex
	handlers map[string]transport.RequestHandler
	nextID   int
	subs     map[subKey]map[int]chan Message
	sent     []Message
	sendErr  error
}

var _ transport.Transport = (*Transport)(nil)

// New creates an empty Transport.
func New() *Transport {
	return &Transport{
		handlers: make(map[string]transport.RequestHandler),
		subs:     make(map[subKey]map[int]chan Message),
	}
}

// Handle serves channel with h. Only one handler may serve a channel.
func (m *Transport) Handle(channel string, h transport.RequestHandler) (transport.Unsubscribe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.handlers[channel]; ok {
		return nil, fmt.Errorf("%s - channel %q already served", logPrefix, channel)
	}
	m.handlers[channel] = h

	var once sync.Once
	return func() error {
		once.Do(func() {
			m.mu.Lock()
			delete(m.handlers, channel)
			m.mu.Unlock()
		})
		return nil
	}, nil
}

// Served reports whether a handler serves channel.
func (m *Transport) Served(channel string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.handlers[channel]
	return ok
}

// Invoke issues a request as a renderer would and waits for the reply.
// It returns ctx.Err() when the request is left unanswered.
func (m *Transport) Invoke(ctx context.Context, ev transport.Event, payload []byte) (*transport.Reply, error) {
	m.mu.RLock()
	h, ok := m.handlers[ev.Channel]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s - no handler for %q", logPrefix, ev.Channel)
	}

	replies := make(chan *transport.Reply, 1)
	req := transport.NewRequest(&ev, payload, func(r *transport.Reply) error {
		replies <- r
		return nil
	})
	h(req)

	select {
	case r := <-replies:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FailSends makes every following Send return err. Nil restores normal sends.
func (m *Transport) FailSends(err error) {
	m.mu.Lock()
	m.sendErr = err
	m.mu.Unlock()
}

// Send records the message and delivers it to the window's subscribers.
func (m *Transport) Send(windowID, channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}

	msg := Message{WindowID: windowID, Channel: channel, Payload: append([]byte(nil), payload...)}
	m.sent = append(m.sent, msg)
	for _, ch := range m.subs[subKey{windowID, channel}] {
		select {
		case ch <- msg:
		default:
			// Drop rather than stall the sender on a slow subscriber.
		}
	}
	return nil
}

// Sent returns a copy of every message sent so far.
func (m *Transport) Sent() []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Message(nil), m.sent...)
}

// Subscribe receives notifications sent to windowID on channel.
func (m *Transport) Subscribe(windowID, channel string) (<-chan Message, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := subKey{windowID, channel}
	if _, ok := m.subs[key]; !ok {
		m.subs[key] = make(map[int]chan Message)
	}
	id := m.nextID
	m.nextID++
	ch := make(chan Message, 64)
	m.subs[key][id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if byKey, ok := m.subs[key]; ok {
			if sub, exists := byKey[id]; exists {
				delete(byKey, id)
				close(sub)
			}
			if len(byKey) == 0 {
				delete(m.subs, key)
			}
		}
	}
	return ch, cancel
}
