// Package adapter defines the plug-in shape external payment backends
// implement (C7) and the ordered registry the gate uses to resolve one
// by protocol name.
package adapter

import (
	"strings"

	"github.com/gzhole/paymentguard/internal/types"
)

// Port is the interface every backend adapter implements. Name
// identifies the adapter for routing; CanHandle is informational only
// — the gate resolves adapters by name and does not consult it.
type Port interface {
	Name() string
	CanHandle(pi *types.PaymentIntent) bool
	Execute(pi *types.PaymentIntent) types.PaymentResult
}

// Registry is an ordered list of adapters. Lookup is deterministic:
// the first adapter whose lowercased name equals the resolved protocol
// wins. It does not back-reference the gate.
type Registry struct {
	adapters []Port
}

// NewRegistry builds a registry seeded with the given adapters, in
// registration order.
func NewRegistry(adapters ...Port) *Registry {
	r := &Registry{}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register appends an adapter. If two adapters share a name, the
// earlier registration wins on lookup.
func (r *Registry) Register(a Port) {
	r.adapters = append(r.adapters, a)
}

// Resolve returns the first adapter whose name case-insensitively
// equals protocol, and whether one was found.
func (r *Registry) Resolve(protocol string) (Port, bool) {
	target := strings.ToLower(protocol)
	for _, a := range r.adapters {
		if strings.ToLower(a.Name()) == target {
			return a, true
		}
	}
	return nil, false
}

// Len reports how many adapters are registered.
func (r *Registry) Len() int { return len(r.adapters) }
