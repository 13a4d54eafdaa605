// Package natstransport carries bridge traffic over COMMS (NATS).
//
// Invoke channels are served as request/reply subjects; notifications are plain
// publishes on a per-window subject. The sender frame URL and window id travel
// as message headers.
//
// Those headers are set by the requester and taken as-is. Sender validation in
// ipcmain is only as strong as the broker's publish permissions: each window
// must connect with credentials that allow publishing on <prefix>.invoke.> only
// through the shell that stamps its real frame URL. A client that can publish
// there directly can claim any sender URL.
package natstransport

import (
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/ipc-bridge/pkg/commsutil"
	"github.com/morezero/ipc-bridge/pkg/transport"
)

const logPrefix = "natstransport:natstransport"

// Opts configures Transport. Nil or zero values use defaults.
type Opts struct {
	// SubjectPrefix namespaces all subjects. Empty uses commsutil.DefaultSubjectPrefix.
	SubjectPrefix string
}

// Transport is a transport.Transport backed by a COMMS connection.
type Transport struct {
	nc     *comms.Conn
	prefix string
}

var _ transport.Transport = (*Transport)(nil)

// New creates a Transport on nc. Pass nil for opts to use defaults.
func New(nc *comms.Conn, opts *Opts) *Transport {
	prefix := commsutil.DefaultSubjectPrefix
	if opts != nil && opts.SubjectPrefix != "" {
		prefix = opts.SubjectPrefix
	}
	return &Transport{nc: nc, prefix: prefix}
}

// Prefix returns the subject prefix in use.
func (t *Transport) Prefix() string { return t.prefix }

// Handle subscribes to the channel's invoke subject.
func (t *Transport) Handle(channel string, h transport.RequestHandler) (transport.Unsubscribe, error) {
	subject := commsutil.BuildInvokeSubject(t.prefix, channel)
	sub, err := t.nc.Subscribe(subject, func(msg *comms.Msg) {
		ev := &transport.Event{
			Channel:   channel,
			SenderURL: msg.Header.Get(commsutil.HeaderSenderURL),
			WindowID:  msg.Header.Get(commsutil.HeaderWindowID),
		}
		h(transport.NewRequest(ev, msg.Data, func(reply *transport.Reply) error {
			return respond(msg, reply)
		}))
	})
	if err != nil {
		return nil, fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, subject, err)
	}
	slog.Debug(fmt.Sprintf("%s - Subscribed to %s", logPrefix, subject))
	return sub.Unsubscribe, nil
}

// Send publishes payload on the window's notify subject.
func (t *Transport) Send(windowID, channel string, payload []byte) error {
	subject := commsutil.BuildNotifySubject(t.prefix, windowID, channel)
	if err := t.nc.Publish(subject, payload); err != nil {
		return fmt.Errorf("%s - failed to publish to %s: %w", logPrefix, subject, err)
	}
	return nil
}

// ServeContract answers contract queries with the JSON encoding of contract.
func (t *Transport) ServeContract(contract interface{}) (transport.Unsubscribe, error) {
	data, err := commsutil.EncodePayload(contract)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to encode contract: %w", logPrefix, err)
	}
	subject := commsutil.BuildContractSubject(t.prefix)
	sub, err := t.nc.Subscribe(subject, func(msg *comms.Msg) {
		if err := msg.Respond(data); err != nil {
			slog.Warn(fmt.Sprintf("%s - contract response failed: %v", logPrefix, err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, subject, err)
	}
	return sub.Unsubscribe, nil
}

func respond(msg *comms.Msg, reply *transport.Reply) error {
	data, err := commsutil.EncodePayload(reply)
	if err != nil {
		return fmt.Errorf("%s - failed to encode reply: %w", logPrefix, err)
	}
	if err := msg.Respond(data); err != nil {
		return fmt.Errorf("%s - failed to respond: %w", logPrefix, err)
	}
	return nil
}
