package entity

import (
	"log/slog"
	"slices"

	"github.com/specialistvlad/tickgrid/internal/owner"
	"github.com/zclconf/go-cty/cty"
)

// Registrar is the part of the callback registry a World drives.
type Registrar interface {
	RegisterObject(o owner.Owner) int
	UnregisterObject(o owner.Owner) int
	Registered(o owner.Owner) bool
	Clear(forced bool) int
}

// World tracks spawned entities and keeps their registrations current.
// It is not safe for concurrent use; it is driven from the frame loop.
type World struct {
	registry Registrar
	logger   *slog.Logger
	entities []*Entity
}

// NewWorld creates an empty world backed by registry.
func NewWorld(registry Registrar, logger *slog.Logger) *World {
	if registry == nil {
		panic("entity: registrar must not be nil")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &World{registry: registry, logger: logger}
}

// Spawn creates an entity, registers its callbacks and returns it.
func (w *World) Spawn(kind, name string, attrs map[string]cty.Value) *Entity {
	if attrs == nil {
		attrs = map[string]cty.Value{}
	}
	e := &Entity{
		Handle: owner.NewHandle(),
		kind:   kind,
		name:   name,
		attrs:  attrs,
		world:  w,
	}
	w.entities = append(w.entities, e)
	phases := w.registry.RegisterObject(e)
	w.logger.Debug("Entity spawned.", "entity", e.String(), "id", e.ID(), "phases", phases)
	return e
}

// Despawn unregisters e, marks it dead and drops it from the world. It
// returns false if e was already gone.
func (w *World) Despawn(e *Entity) bool {
	if e == nil || !e.Alive() {
		return false
	}
	w.registry.UnregisterObject(e)
	e.Invalidate()
	w.entities = slices.DeleteFunc(w.entities, func(x *Entity) bool { return x == e })
	w.logger.Debug("Entity despawned.", "entity", e.String(), "id", e.ID())
	return true
}

// Entities returns a snapshot of the live entities in spawn order.
func (w *World) Entities() []*Entity {
	return slices.Clone(w.entities)
}

// Len returns the number of live entities.
func (w *World) Len() int { return len(w.entities) }

// Find returns the first live entity with the given name.
func (w *World) Find(name string) (*Entity, bool) {
	for _, e := range w.entities {
		if e.name == name {
			return e, true
		}
	}
	return nil, false
}

// ResetScene clears non-persistent callbacks and despawns every entity that
// is left without a binding. Entities with a persistent callback survive.
func (w *World) ResetScene() int {
	w.registry.Clear(false)
	dropped := 0
	w.entities = slices.DeleteFunc(w.entities, func(e *Entity) bool {
		if w.registry.Registered(e) {
			return false
		}
		e.Invalidate()
		dropped++
		return true
	})
	w.logger.Info("Scene reset.", "despawned", dropped, "surviving", len(w.entities))
	return dropped
}

// Shutdown force-clears the registry and invalidates every entity.
func (w *World) Shutdown() {
	w.registry.Clear(true)
	for _, e := range w.entities {
		e.Invalidate()
	}
	n := len(w.entities)
	w.entities = nil
	w.logger.Info("World shut down.", "despawned", n)
}
