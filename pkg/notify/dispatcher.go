// Package notify pushes host → renderer notifications on typed channels.
package notify

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/morezero/ipc-bridge/pkg/channel"
	"github.com/morezero/ipc-bridge/pkg/commsutil"
)

const logPrefix = "notify:dispatcher"

var (
	ErrUnknownChannel = errors.New("notify: channel is not in the notify table")
	ErrNoWindow       = errors.New("notify: no target window")
)

// Window is a renderer surface a notification can be addressed to.
type Window interface {
	WindowID() string
}

// WindowRef is a Window identified by its id.
type WindowRef string

// WindowID implements Window.
func (w WindowRef) WindowID() string { return string(w) }

// SendFunc sends one notification on the channel it was bound to.
type SendFunc[A any] func(win Window, args A) error

// DispatcherOpts configures Dispatcher. Nil or zero values use defaults.
type DispatcherOpts struct {
	// Logger receives send failures. Nil uses slog.Default().
	Logger *slog.Logger
}

// Dispatcher forwards notifications to a Sender.
type Dispatcher struct {
	sender Sender
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher. A nil sender drops every notification.
func NewDispatcher(sender Sender, opts *DispatcherOpts) *Dispatcher {
	if sender == nil {
		sender = NoOpSender{}
	}
	logger := slog.Default()
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	}
	return &Dispatcher{sender: sender, logger: logger}
}

// Send delivers args to win on ch. It does not wait for the renderer.
func Send[A any](d *Dispatcher, win Window, ch channel.Notify[A], args A) error {
	name := ch.Name()
	if !channel.IsNotify(name) {
		return fmt.Errorf("%s - %q: %w", logPrefix, name, ErrUnknownChannel)
	}
	if win == nil {
		return fmt.Errorf("%s - %s: %w", logPrefix, name, ErrNoWindow)
	}

	payload, err := commsutil.EncodePayload(args)
	if err != nil {
		return fmt.Errorf("%s - failed to encode %s payload: %w", logPrefix, name, err)
	}
	if err := d.sender.Send(win.WindowID(), name, payload); err != nil {
		d.logger.Error(fmt.Sprintf("%s - failed to send %s to window %s: %v", logPrefix, name, win.WindowID(), err))
		return err
	}

	d.logger.Debug(fmt.Sprintf("%s - Sent %s to window %s", logPrefix, name, win.WindowID()))
	return nil
}

// Bind returns a function that sends on ch through d.
func Bind[A any](d *Dispatcher, ch channel.Notify[A]) SendFunc[A] {
	return func(win Window, args A) error {
		return Send(d, win, ch, args)
	}
}
