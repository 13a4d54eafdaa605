package ipcmain

import (
	"errors"
	"fmt"
)

// Policy decides which handler failures reach the renderer.
//
// Origin validation failures are contained under every policy.
type Policy int

const (
	// PolicyAsymmetric contains synchronous failures (returned errors, panics,
	// undecodable arguments) and propagates rejected futures to the renderer.
	PolicyAsymmetric Policy = iota
	// PolicyContainAll contains every handler failure.
	PolicyContainAll
	// PolicyPropagateAll reports every handler failure to the renderer.
	PolicyPropagateAll
)

var policyNames = map[Policy]string{
	PolicyAsymmetric:   "asymmetric",
	PolicyContainAll:   "contain-all",
	PolicyPropagateAll: "propagate-all",
}

// ErrUnknownPolicy is returned by ParsePolicy for unrecognised names.
var ErrUnknownPolicy = errors.New("ipcmain: unknown failure policy")

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy maps a configuration name to a Policy. The empty string selects
// PolicyAsymmetric.
func ParsePolicy(s string) (Policy, error) {
	if s == "" {
		return PolicyAsymmetric, nil
	}
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%s - %q: %w", logPrefix, s, ErrUnknownPolicy)
}

func (p Policy) propagatesSync() bool     { return p == PolicyPropagateAll }
func (p Policy) propagatesDeferred() bool { return p != PolicyContainAll }
