// Package manifest turns a loaded manifest model into callback metadata: it
// validates the model against the compiled handlers and answers the
// registry's DescribeCallbacks queries for spawned entities.
package manifest

import (
	"io"
	"log/slog"
	"maps"

	"github.com/specialistvlad/tickgrid/internal/binding"
	"github.com/specialistvlad/tickgrid/internal/config"
	"github.com/specialistvlad/tickgrid/internal/entity"
	"github.com/specialistvlad/tickgrid/internal/handlers"
	"github.com/specialistvlad/tickgrid/internal/owner"
)

// Provider is a metadata.Provider backed by manifest behaviours. Owners that
// are not entities, or whose kind has no behaviour, contribute nothing.
type Provider struct {
	behaviours map[string]*config.Behaviour
	handlers   *handlers.Handlers
	logger     *slog.Logger
	out        io.Writer
}

// NewProvider creates a Provider. The model should already have passed
// Resolve so that every handler name is known.
func NewProvider(model *config.Model, h *handlers.Handlers, logger *slog.Logger, out io.Writer) *Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if out == nil {
		out = io.Discard
	}
	return &Provider{
		behaviours: model.Behaviours,
		handlers:   h,
		logger:     logger,
		out:        out,
	}
}

// DescribeCallbacks implements metadata.Provider. Each callback's handler is
// bound to the entity here, once, and the resulting closure is what the
// registry stores.
func (p *Provider) DescribeCallbacks(o owner.Owner) []binding.Descriptor {
	e, ok := o.(*entity.Entity)
	if !ok {
		return nil
	}
	b, ok := p.behaviours[e.Kind()]
	if !ok {
		return nil
	}

	descriptors := make([]binding.Descriptor, 0, len(b.Callbacks))
	for _, cb := range b.Callbacks {
		h, ok := p.handlers.Get(cb.Handler)
		if !ok {
			p.logger.Error("Callback handler is not registered; skipping.", "entity", e.String(), "handler", cb.Handler)
			continue
		}
		proc := h.Bind(handlers.BindContext{
			Entity: e,
			Logger: p.logger.With("entity", e.String(), "handler", cb.Handler),
			Out:    p.out,
		})
		descriptors = append(descriptors, binding.Descriptor{
			Phase:      cb.Phase,
			Order:      cb.Order,
			Persistent: cb.Persistent,
			Procedure:  proc,
			Name:       cb.Handler,
			Public:     cb.Public,
		})
	}
	return descriptors
}

// Spawn creates one entity per declaration, in order.
func Spawn(w *entity.World, decls []*config.Entity) []*entity.Entity {
	spawned := make([]*entity.Entity, 0, len(decls))
	for _, d := range decls {
		spawned = append(spawned, w.Spawn(d.Kind, d.Name, maps.Clone(d.Attributes)))
	}
	return spawned
}
