// Package entity provides the owners the host spawns from manifests and the
// World that keeps their registrations in step with their lifetime.
package entity

import (
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/tickgrid/internal/owner"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Entity is a spawned owner of a given kind.
type Entity struct {
	*owner.Handle

	kind  string
	name  string
	attrs map[string]cty.Value
	world *World
}

// Kind returns the behaviour kind the entity was spawned as.
func (e *Entity) Kind() string { return e.kind }

// Name returns the entity's instance name.
func (e *Entity) Name() string { return e.name }

// World returns the world that spawned the entity.
func (e *Entity) World() *World { return e.world }

// String implements fmt.Stringer.
func (e *Entity) String() string {
	return fmt.Sprintf("%s.%s", e.kind, e.name)
}

// Attr returns a raw attribute value.
func (e *Entity) Attr(name string) (cty.Value, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// AttrNames returns the attribute names in sorted order.
func (e *Entity) AttrNames() []string {
	return slices.Sorted(maps.Keys(e.attrs))
}

// Int returns the named attribute as an int, or def if it is absent, null,
// or not a whole number.
func (e *Entity) Int(name string, def int) int {
	var out int
	if !e.decode(name, &out) {
		return def
	}
	return out
}

// Str returns the named attribute as a string, or def.
func (e *Entity) Str(name string, def string) string {
	var out string
	if !e.decode(name, &out) {
		return def
	}
	return out
}

// Bool returns the named attribute as a bool, or def.
func (e *Entity) Bool(name string, def bool) bool {
	var out bool
	if !e.decode(name, &out) {
		return def
	}
	return out
}

// Despawn removes the entity from its world. Safe to call from inside one of
// the entity's own callbacks.
func (e *Entity) Despawn() bool {
	if e.world == nil {
		return e.Invalidate()
	}
	return e.world.Despawn(e)
}

func (e *Entity) decode(name string, target any) bool {
	v, ok := e.attrs[name]
	if !ok || v.IsNull() || !v.IsWhollyKnown() {
		return false
	}
	ty, err := gocty.ImpliedType(target)
	if err != nil {
		return false
	}
	converted, err := convert.Convert(v, ty)
	if err != nil {
		return false
	}
	return gocty.FromCtyValue(converted, target) == nil
}
