// Package channel defines the typed channel contract shared by the host and renderers.
//
// Two tables exist: invoke channels (renderer → host, host replies) and notify
// channels (host → renderer, no reply). Channel values can only be created inside
// this package, so any channel a caller can name is a key of one of the tables and
// carries its argument and return types with it.
package channel

import (
	"fmt"
	"sort"
)

const logPrefix = "channel:channel"

// Invoke is a request/response channel. A is the argument tuple sent by the
// renderer, R is the value the host replies with.
type Invoke[A, R any] struct {
	name string
}

// Name returns the wire name of the channel.
func (c Invoke[A, R]) Name() string { return c.name }

// String implements fmt.Stringer.
func (c Invoke[A, R]) String() string { return c.name }

// Notify is a one-way host → renderer channel carrying the argument tuple A.
type Notify[A any] struct {
	name string
}

// Name returns the wire name of the channel.
func (c Notify[A]) Name() string { return c.name }

// String implements fmt.Stringer.
func (c Notify[A]) String() string { return c.name }

var (
	invokeNames = map[string]struct{}{}
	notifyNames = map[string]struct{}{}
)

func defineInvoke[A, R any](name string) Invoke[A, R] {
	define(invokeNames, "invoke", name)
	return Invoke[A, R]{name: name}
}

func defineNotify[A any](name string) Notify[A] {
	define(notifyNames, "notify", name)
	return Notify[A]{name: name}
}

func define(table map[string]struct{}, kind, name string) {
	if name == "" {
		panic(fmt.Sprintf("%s - empty %s channel name", logPrefix, kind))
	}
	if _, dup := table[name]; dup {
		panic(fmt.Sprintf("%s - duplicate %s channel %q", logPrefix, kind, name))
	}
	table[name] = struct{}{}
}

// IsInvoke reports whether name is a key of the invoke table.
func IsInvoke(name string) bool {
	_, ok := invokeNames[name]
	return ok
}

// IsNotify reports whether name is a key of the notify table.
func IsNotify(name string) bool {
	_, ok := notifyNames[name]
	return ok
}

// InvokeNames returns the invoke channel names in sorted order.
func InvokeNames() []string { return sortedKeys(invokeNames) }

// NotifyNames returns the notify channel names in sorted order.
func NotifyNames() []string { return sortedKeys(notifyNames) }

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Contract describes the channel tables for peers that cannot share Go types.
type Contract struct {
	Version string   `json:"version"`
	Invoke  []string `json:"invoke"`
	Notify  []string `json:"notify"`
}

// Describe returns the contract of this build.
func Describe() *Contract {
	return &Contract{
		Version: ContractVersion,
		Invoke:  InvokeNames(),
		Notify:  NotifyNames(),
	}
}
