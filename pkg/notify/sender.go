package notify

// Sender is the transport primitive the dispatcher forwards to.
// transport.Transport satisfies it.
type Sender interface {
	Send(windowID, channel string, payload []byte) error
}

// NoOpSender is a Sender that does nothing (for hosts without renderers).
type NoOpSender struct{}

// Send is a no-op.
func (NoOpSender) Send(string, string, []byte) error {
	return nil
}

// CallbackSender is a Sender that calls a callback function (for testing).
type CallbackSender struct {
	callback func(windowID, channel string, payload []byte) error
}

// NewCallbackSender creates a new CallbackSender.
func NewCallbackSender(cb func(windowID, channel string, payload []byte) error) *CallbackSender {
	return &CallbackSender{callback: cb}
}

// Send calls the callback.
func (s *CallbackSender) Send(windowID, channel string, payload []byte) error {
	return s.callback(windowID, channel, payload)
}
