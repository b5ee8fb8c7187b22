package security

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Capability represents a permission that a plugin script can request.
type Capability string

// Capabilities.
const (
	// CapabilityDocument grants every document capability.
	CapabilityDocument Capability = "document"

	// CapabilityRead allows reading the current block.
	CapabilityRead Capability = "document.read"

	// CapabilityWrite allows editing the document.
	CapabilityWrite Capability = "document.write"

	// CapabilityLog allows writing to the session log.
	CapabilityLog Capability = "log"
)

// Errors.
var (
	ErrUnknownCapability = errors.New("security: unknown capability")
	ErrDenied            = errors.New("security: capability not granted")
)

// RiskLevel indicates how much a capability can change.
type RiskLevel int

const (
	// RiskLow capabilities only observe.
	RiskLow RiskLevel = iota

	// RiskMedium capabilities change the document.
	RiskMedium
)

// String returns a string representation of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	default:
		return "unknown"
	}
}

// CapabilityInfo provides metadata about a capability.
type CapabilityInfo struct {
	Name        Capability
	Description string

	// Parent is the capability that implies this one, if any.
	Parent Capability
	Risk   RiskLevel
}

var capabilityRegistry = map[Capability]CapabilityInfo{
	CapabilityDocument: {
		Name:        CapabilityDocument,
		Description: "Read and edit the document",
		Risk:        RiskMedium,
	},
	CapabilityRead: {
		Name:        CapabilityRead,
		Description: "Read the current block",
		Parent:      CapabilityDocument,
		Risk:        RiskLow,
	},
	CapabilityWrite: {
		Name:        CapabilityWrite,
		Description: "Insert text and set block properties",
		Parent:      CapabilityDocument,
		Risk:        RiskMedium,
	},
	CapabilityLog: {
		Name:        CapabilityLog,
		Description: "Write to the session log",
		Risk:        RiskLow,
	},
}

// Info returns information about a capability.
func Info(c Capability) (CapabilityInfo, bool) {
	info, ok := capabilityRegistry[c]
	return info, ok
}

// All returns every known capability, sorted.
func All() []Capability {
	caps := make([]Capability, 0, len(capabilityRegistry))
	for c := range capabilityRegistry {
		caps = append(caps, c)
	}
	slices.Sort(caps)
	return caps
}

// Parse validates a capability name.
func Parse(s string) (Capability, error) {
	c := Capability(strings.TrimSpace(s))
	if _, ok := capabilityRegistry[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCapability, s)
	}
	return c, nil
}

// Implies reports whether holding granted implies holding required.
func Implies(granted, required Capability) bool {
	return granted == required || strings.HasPrefix(string(required), string(granted)+".")
}

// Set is an immutable set of granted capabilities.
type Set struct {
	granted []Capability
}

// NewSet creates a set granting caps.
func NewSet(caps ...Capability) Set {
	s := Set{granted: slices.Clone(caps)}
	slices.Sort(s.granted)
	s.granted = slices.Compact(s.granted)
	return s
}

// FullSet grants every capability.
func FullSet() Set {
	return NewSet(CapabilityDocument, CapabilityLog)
}

// ParseSet parses capability names into a set.
func ParseSet(names []string) (Set, error) {
	caps := make([]Capability, 0, len(names))
	for _, n := range names {
		c, err := Parse(n)
		if err != nil {
			return Set{}, err
		}
		caps = append(caps, c)
	}
	return NewSet(caps...), nil
}

// Has reports whether c is granted directly or through a parent.
func (s Set) Has(c Capability) bool {
	for _, g := range s.granted {
		if Implies(g, c) {
			return true
		}
	}
	return false
}

// Require returns an error wrapping ErrDenied when c is not granted.
func (s Set) Require(c Capability, operation string) error {
	if s.Has(c) {
		return nil
	}
	return &CapabilityError{Capability: c, Operation: operation}
}

// List returns the granted capabilities, sorted.
func (s Set) List() []Capability {
	return slices.Clone(s.granted)
}

// Risk returns the highest risk level in the set.
func (s Set) Risk() RiskLevel {
	risk := RiskLow
	for _, c := range s.granted {
		if info, ok := capabilityRegistry[c]; ok && info.Risk > risk {
			risk = info.Risk
		}
	}
	return risk
}

// CapabilityError reports an operation attempted without its capability.
type CapabilityError struct {
	Capability Capability
	Operation  string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability %q required for %s", e.Capability, e.Operation)
}

func (e *CapabilityError) Unwrap() error {
	return ErrDenied
}
