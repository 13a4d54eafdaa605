// Package ipcmain registers host-side handlers for renderer requests.
//
// Every handler is wrapped the same way: the sender's origin is validated first,
// then the channel's arguments are decoded and the handler runs. Untrusted senders
// and synchronous handler failures are logged and answered with an "undefined"
// reply; how other failures surface is governed by Policy.
package ipcmain

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/morezero/ipc-bridge/pkg/channel"
	"github.com/morezero/ipc-bridge/pkg/commsutil"
	"github.com/morezero/ipc-bridge/pkg/transport"
)

const logPrefix = "ipcmain:registry"

var (
	ErrUnknownChannel    = errors.New("ipcmain: channel is not in the invoke table")
	ErrAlreadyRegistered = errors.New("ipcmain: channel already has a handler")
	ErrNotRegistered     = errors.New("ipcmain: channel has no handler")
)

// SenderValidator decides whether a request came from trusted content.
type SenderValidator interface {
	Validate(ev *transport.Event) error
}

// Params holds parameters for NewRegistry.
type Params struct {
	Transport transport.Transport
	Validator SenderValidator
	// Logger receives every contained failure. Nil uses slog.Default().
	Logger *slog.Logger
	Policy Policy
}

// Registry serves invoke channels on a transport.
type Registry struct {
	transport transport.Transport
	validator SenderValidator
	logger    *slog.Logger
	policy    Policy

	mu     sync.Mutex
	served map[string]transport.Unsubscribe
}

// NewRegistry creates a Registry. Transport and Validator are required.
func NewRegistry(params Params) (*Registry, error) {
	if params.Transport == nil {
		return nil, fmt.Errorf("%s - transport is required", logPrefix)
	}
	if params.Validator == nil {
		return nil, fmt.Errorf("%s - sender validator is required", logPrefix)
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		transport: params.Transport,
		validator: params.Validator,
		logger:    logger,
		policy:    params.Policy,
		served:    make(map[string]transport.Unsubscribe),
	}, nil
}

// Register serves each registration on its channel. It stops at the first
// failure; registrations before it stay served.
func (r *Registry) Register(regs ...Registration) error {
	for _, reg := range regs {
		if err := r.register(reg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) register(reg Registration) error {
	if reg == nil {
		return fmt.Errorf("%s - nil registration", logPrefix)
	}
	name := reg.channelName()
	if !channel.IsInvoke(name) {
		return fmt.Errorf("%s - %q: %w", logPrefix, name, ErrUnknownChannel)
	}
	if err := reg.check(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.served[name]; ok {
		return fmt.Errorf("%s - %q: %w", logPrefix, name, ErrAlreadyRegistered)
	}
	unsub, err := r.transport.Handle(name, func(req *transport.Request) {
		reg.serve(r, req)
	})
	if err != nil {
		return fmt.Errorf("%s - failed to serve %q: %w", logPrefix, name, err)
	}
	r.served[name] = unsub

	r.logger.Debug(fmt.Sprintf("%s - Registered handler for %s", logPrefix, name))
	return nil
}

// Unregister stops serving the named channel.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	unsub, ok := r.served[name]
	delete(r.served, name)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s - %q: %w", logPrefix, name, ErrNotRegistered)
	}
	if err := unsub(); err != nil {
		return fmt.Errorf("%s - failed to stop serving %q: %w", logPrefix, name, err)
	}
	return nil
}

// Channels returns the names of the served channels in sorted order.
func (r *Registry) Channels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.served))
	for name := range r.served {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Close stops serving every channel.
func (r *Registry) Close() error {
	var errs []error
	for _, name := range r.Channels() {
		if err := r.Unregister(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) rejectSender(req *transport.Request, err error) {
	r.logger.Error(fmt.Sprintf("%s - rejected request on %s: %v", logPrefix, channelOf(req), err))
	r.respond(req, transport.Undefined())
}

func (r *Registry) syncFailure(req *transport.Request, err error) {
	r.logger.Error(fmt.Sprintf("%s - handler for %s failed: %v", logPrefix, channelOf(req), err))
	if r.policy.propagatesSync() {
		r.respond(req, failureReply(err, transport.CodeHandlerFailed))
		return
	}
	r.respond(req, transport.Undefined())
}

func (r *Registry) deferredFailure(req *transport.Request, err error) {
	if r.policy.propagatesDeferred() {
		r.logger.Warn(fmt.Sprintf("%s - deferred handler for %s rejected: %v", logPrefix, channelOf(req), err))
		r.respond(req, failureReply(err, transport.CodeHandlerRejected))
		return
	}
	r.logger.Error(fmt.Sprintf("%s - deferred handler for %s rejected: %v", logPrefix, channelOf(req), err))
	r.respond(req, transport.Undefined())
}

func (r *Registry) reply(req *transport.Request, result interface{}) {
	data, err := commsutil.EncodePayload(result)
	if err != nil {
		r.logger.Error(fmt.Sprintf("%s - failed to encode result of %s: %v", logPrefix, channelOf(req), err))
		r.respond(req, transport.Undefined())
		return
	}
	r.respond(req, transport.Success(data))
}

func (r *Registry) respond(req *transport.Request, reply *transport.Reply) {
	if err := req.Respond(reply); err != nil {
		r.logger.Warn(fmt.Sprintf("%s - failed to answer request on %s: %v", logPrefix, channelOf(req), err))
	}
}

func channelOf(req *transport.Request) string {
	if req.Event == nil {
		return "<unknown>"
	}
	return req.Event.Channel
}
