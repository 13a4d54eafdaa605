package commsutil

import (
	"fmt"
	"strings"
)

// DefaultSubjectPrefix namespaces every bridge subject.
const DefaultSubjectPrefix = "ipc"

// Headers carried by invoke requests.
const (
	HeaderSenderURL = "Ipc-Sender-Url"
	HeaderWindowID  = "Ipc-Window-Id"
)

var tokenReplacer = strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_")

// SanitizeToken turns s into a single subject token.
func SanitizeToken(s string) string {
	if s == "" {
		return "_"
	}
	return tokenReplacer.Replace(s)
}

// BuildInvokeSubject builds the subject a host serves an invoke channel on.
func BuildInvokeSubject(prefix, channel string) string {
	return fmt.Sprintf("%s.invoke.%s", prefixOrDefault(prefix), SanitizeToken(channel))
}

// BuildNotifySubject builds the subject a window receives a notify channel on.
func BuildNotifySubject(prefix, windowID, channel string) string {
	return fmt.Sprintf("%s.window.%s.%s", prefixOrDefault(prefix), SanitizeToken(windowID), SanitizeToken(channel))
}

// BuildContractSubject builds the subject the host answers contract queries on.
func BuildContractSubject(prefix string) string {
	return prefixOrDefault(prefix) + ".contract"
}

func prefixOrDefault(prefix string) string {
	if prefix == "" {
		return DefaultSubjectPrefix
	}
	return prefix
}
