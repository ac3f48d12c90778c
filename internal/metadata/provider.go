// Package metadata defines how the registry learns which callbacks an owner
// contributes. The registry consumes descriptors only; how they are produced
// (an interface on the owner, a declarative manifest, a hand-written table)
// is up to the Provider.
package metadata

import (
	"github.com/specialistvlad/tickgrid/internal/binding"
	"github.com/specialistvlad/tickgrid/internal/owner"
)

// Provider describes the callbacks an owner contributes.
type Provider interface {
	DescribeCallbacks(o owner.Owner) []binding.Descriptor
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(o owner.Owner) []binding.Descriptor

// DescribeCallbacks implements Provider.
func (f ProviderFunc) DescribeCallbacks(o owner.Owner) []binding.Descriptor {
	return f(o)
}

// Describer is implemented by owners that declare their own callbacks.
type Describer interface {
	Callbacks() []binding.Descriptor
}

// SelfDescribing is a Provider that asks the owner itself, via Describer.
// Owners that do not implement Describer contribute nothing.
type SelfDescribing struct{}

// DescribeCallbacks implements Provider.
func (SelfDescribing) DescribeCallbacks(o owner.Owner) []binding.Descriptor {
	if d, ok := o.(Describer); ok {
		return d.Callbacks()
	}
	return nil
}

// Chain returns a Provider that consults providers in order and uses the
// first non-empty answer.
func Chain(providers ...Provider) Provider {
	return ProviderFunc(func(o owner.Owner) []binding.Descriptor {
		for _, p := range providers {
			if p == nil {
				continue
			}
			if ds := p.DescribeCallbacks(o); len(ds) > 0 {
				return ds
			}
		}
		return nil
	})
}

