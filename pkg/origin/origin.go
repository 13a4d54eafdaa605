// Package origin decides whether an IPC request came from trusted content.
//
// In development the renderer is served by a dev server and only that server's
// origin is trusted. In a packaged build only the application's own content
// scheme is trusted.
package origin

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/morezero/ipc-bridge/pkg/transport"
)

const logPrefix = "origin:validator"

// DefaultAppScheme is the scheme packaged renderer content is served from.
const DefaultAppScheme = "app"

// Config selects the trust rule.
type Config struct {
	// DevServerURL enables development mode when non-empty.
	DevServerURL string
	// AppScheme is the packaged-content scheme, without the trailing colon.
	AppScheme string
}

// InvalidSenderError reports a request from an untrusted frame.
type InvalidSenderError struct {
	SenderURL string
	Reason    string
}

func (e *InvalidSenderError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s - IPC message from untrusted sender %q: %s", logPrefix, e.SenderURL, e.Reason)
	}
	return fmt.Sprintf("%s - IPC message from untrusted sender %q", logPrefix, e.SenderURL)
}

// Validator checks request senders against one trust rule.
type Validator struct {
	devOrigin string
	appScheme string
}

// NewValidator builds a Validator. An unparsable or host-less DevServerURL is an error.
func NewValidator(cfg Config) (*Validator, error) {
	v := &Validator{appScheme: strings.ToLower(strings.TrimSuffix(cfg.AppScheme, ":"))}
	if v.appScheme == "" {
		v.appScheme = DefaultAppScheme
	}
	if cfg.DevServerURL != "" {
		u, err := url.Parse(cfg.DevServerURL)
		if err != nil {
			return nil, fmt.Errorf("%s - invalid dev server URL %q: %w", logPrefix, cfg.DevServerURL, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%s - dev server URL %q has no origin", logPrefix, cfg.DevServerURL)
		}
		v.devOrigin = Origin(u)
	}
	return v, nil
}

// DevMode reports whether the validator trusts a dev server.
func (v *Validator) DevMode() bool { return v.devOrigin != "" }

// Validate returns nil when ev came from trusted content.
func (v *Validator) Validate(ev *transport.Event) error {
	if ev == nil {
		return &InvalidSenderError{Reason: "missing request event"}
	}
	u, err := url.Parse(ev.SenderURL)
	if err != nil || u.Scheme == "" {
		return &InvalidSenderError{SenderURL: ev.SenderURL, Reason: "unparsable URL"}
	}

	if v.devOrigin != "" {
		if Origin(u) != v.devOrigin {
			return &InvalidSenderError{SenderURL: u.String()}
		}
		return nil
	}
	if !strings.EqualFold(u.Scheme, v.appScheme) {
		return &InvalidSenderError{SenderURL: u.String()}
	}
	return nil
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

// Origin returns scheme://host[:port] for u, lower-cased, without the scheme's
// default port.
func Origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == defaultPorts[scheme] {
		port = ""
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return scheme + "://" + host + ":" + port
	}
	return scheme + "://" + host
}
