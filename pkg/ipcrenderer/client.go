// Package ipcrenderer is the renderer side of the bridge: typed invokes against
// the host and subscriptions to the host's notifications for one window.
package ipcrenderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/semver/v3"
	comms "github.com/nats-io/nats.go"

	"github.com/morezero/ipc-bridge/pkg/channel"
	"github.com/morezero/ipc-bridge/pkg/commsutil"
	"github.com/morezero/ipc-bridge/pkg/transport"
)

const logPrefix = "ipcrenderer:client"

const defaultTimeout = 10 * time.Second

// ErrUndefined is returned when the host answered without a result. Requests
// from untrusted frames and contained handler failures end this way.
var ErrUndefined = errors.New("ipcrenderer: host returned no result")

// RemoteError is a failure the host chose to report.
type RemoteError struct {
	Channel string
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s - %s failed: %s: %s", logPrefix, e.Channel, e.Code, e.Message)
}

// Options configures a Client.
type Options struct {
	SubjectPrefix string
	// SenderURL is the URL of the frame issuing requests.
	SenderURL string
	// WindowID identifies this renderer's window.
	WindowID string
	// Timeout bounds a request when ctx carries no deadline.
	Timeout time.Duration
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client talks to a host over COMMS.
type Client struct {
	nc      *comms.Conn
	prefix  string
	sender  string
	window  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a Client on nc.
func NewClient(nc *comms.Conn, opts Options) *Client {
	prefix := opts.SubjectPrefix
	if prefix == "" {
		prefix = commsutil.DefaultSubjectPrefix
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		nc:      nc,
		prefix:  prefix,
		sender:  opts.SenderURL,
		window:  opts.WindowID,
		timeout: timeout,
		logger:  logger,
	}
}

// WindowID returns the window this client subscribes for.
func (c *Client) WindowID() string { return c.window }

// Invoke sends args on ch and decodes the host's reply.
func Invoke[A, R any](ctx context.Context, c *Client, ch channel.Invoke[A, R], args A) (R, error) {
	var zero R
	name := ch.Name()
	if !channel.IsInvoke(name) {
		return zero, fmt.Errorf("%s - %q is not an invoke channel", logPrefix, name)
	}

	payload, err := commsutil.EncodePayload(args)
	if err != nil {
		return zero, fmt.Errorf("%s - failed to encode %s arguments: %w", logPrefix, name, err)
	}

	msg := comms.NewMsg(commsutil.BuildInvokeSubject(c.prefix, name))
	msg.Header.Set(commsutil.HeaderSenderURL, c.sender)
	msg.Header.Set(commsutil.HeaderWindowID, c.window)
	msg.Data = payload

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.nc.RequestMsgWithContext(ctx, msg)
	if err != nil {
		return zero, fmt.Errorf("%s - %s request failed: %w", logPrefix, name, err)
	}

	var reply transport.Reply
	if err := commsutil.DecodePayload(resp.Data, &reply); err != nil {
		return zero, fmt.Errorf("%s - %s reply: %w", logPrefix, name, err)
	}
	if !reply.OK {
		re := &RemoteError{Channel: name}
		if reply.Error != nil {
			re.Code = reply.Error.Code
			re.Message = reply.Error.Message
		}
		return zero, re
	}
	if reply.IsUndefined() {
		return zero, ErrUndefined
	}

	var result R
	if err := commsutil.DecodePayload(reply.Result, &result); err != nil {
		return zero, fmt.Errorf("%s - %s result: %w", logPrefix, name, err)
	}
	return result, nil
}

// On calls fn for every notification the host sends this window on ch. The
// subscription is live on the server when On returns. Payloads that do not
// decode are logged and dropped.
func On[A any](c *Client, ch channel.Notify[A], fn func(args A)) (*comms.Subscription, error) {
	name := ch.Name()
	if !channel.IsNotify(name) {
		return nil, fmt.Errorf("%s - %q is not a notify channel", logPrefix, name)
	}
	subject := commsutil.BuildNotifySubject(c.prefix, c.window, name)
	sub, err := c.nc.Subscribe(subject, func(msg *comms.Msg) {
		var args A
		if err := commsutil.DecodePayload(msg.Data, &args); err != nil {
			c.logger.Warn(fmt.Sprintf("%s - dropped undecodable %s notification on %s: %v", logPrefix, name, msg.Subject, err))
			return
		}
		fn(args)
	})
	if err != nil {
		return nil, fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, subject, err)
	}
	if err := c.nc.Flush(); err != nil {
		sub.Unsubscribe()
		return nil, fmt.Errorf("%s - failed to flush subscription %s: %w", logPrefix, subject, err)
	}
	return sub, nil
}

// CheckContract fetches the host's channel contract and verifies its version
// satisfies constraint (e.g. "^1.0").
func (c *Client) CheckContract(ctx context.Context, constraint string) (*channel.Contract, error) {
	want, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("%s - invalid contract constraint %q: %w", logPrefix, constraint, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.nc.RequestWithContext(ctx, commsutil.BuildContractSubject(c.prefix), nil)
	if err != nil {
		return nil, fmt.Errorf("%s - contract request failed: %w", logPrefix, err)
	}

	var contract channel.Contract
	if err := commsutil.DecodePayload(resp.Data, &contract); err != nil {
		return nil, fmt.Errorf("%s - contract reply: %w", logPrefix, err)
	}
	got, err := semver.NewVersion(contract.Version)
	if err != nil {
		return nil, fmt.Errorf("%s - host contract version %q: %w", logPrefix, contract.Version, err)
	}
	if !want.Check(got) {
		return &contract, fmt.Errorf("%s - host contract %s does not satisfy %s", logPrefix, got, constraint)
	}
	return &contract, nil
}
