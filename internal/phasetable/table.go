// Package phasetable stores the callbacks of a single phase, ordered by
// integer order-group and then by registration order inside a group.
package phasetable

import (
	"slices"

	"github.com/google/uuid"
	"github.com/specialistvlad/tickgrid/internal/binding"
	"github.com/specialistvlad/tickgrid/internal/phase"
)

// Table is an ordered collection of bindings for one phase.
//
// Groups are kept even after their last binding leaves; only Clear drops
// empty groups. This keeps the order keys stable between clears and makes
// the dispatcher's empty-group policy observable.
//
// Table is not safe for concurrent use.
type Table struct {
	phase  phase.Phase
	keys   []int
	groups map[int][]*binding.Binding
	byID   map[uuid.UUID]*binding.Binding
	pass   uint64
}

// New creates an empty table for p.
func New(p phase.Phase) *Table {
	return &Table{
		phase:  p,
		groups: make(map[int][]*binding.Binding),
		byID:   make(map[uuid.UUID]*binding.Binding),
	}
}

// Phase returns the phase this table serves.
func (t *Table) Phase() phase.Phase {
	return t.phase
}

// Insert appends b to its order-group. If the owner already has a binding in
// this table, that binding is removed and returned so callers can report the
// replacement.
func (t *Table) Insert(b *binding.Binding) (replaced *binding.Binding) {
	id := b.Owner().ID()
	replaced = t.Remove(id)

	key := b.Order()
	if _, ok := t.groups[key]; !ok {
		pos, _ := slices.BinarySearch(t.keys, key)
		t.keys = slices.Insert(t.keys, pos, key)
	}
	b.Stamp(t.pass)
	t.groups[key] = append(t.groups[key], b)
	t.byID[id] = b
	return replaced
}

// BeginPass advances the pass counter and returns it. Bindings inserted
// from now until the next BeginPass report InsertedDuring for this value.
func (t *Table) BeginPass() uint64 {
	t.pass++
	return t.pass
}

// Find returns the binding registered for the owner id, if any.
func (t *Table) Find(id uuid.UUID) (*binding.Binding, bool) {
	b, ok := t.byID[id]
	return b, ok
}

// Remove detaches and deletes the binding registered for the owner id.
// It returns nil if the owner has no binding here.
func (t *Table) Remove(id uuid.UUID) *binding.Binding {
	b, ok := t.byID[id]
	if !ok {
		return nil
	}
	delete(t.byID, id)
	t.groups[b.Order()] = slices.DeleteFunc(t.groups[b.Order()], func(x *binding.Binding) bool {
		return x == b
	})
	b.Detach()
	return b
}

// Compact removes bindings whose owners are dead and returns how many went.
func (t *Table) Compact() int {
	return t.removeWhere(func(b *binding.Binding) bool { return b.Dead() })
}

// Clear removes every non-persistent binding, or every binding when forced.
// Dead bindings are removed regardless, and empty groups are dropped.
func (t *Table) Clear(forced bool) int {
	removed := t.removeWhere(func(b *binding.Binding) bool {
		return forced || !b.Persistent() || b.Dead()
	})
	t.keys = slices.DeleteFunc(t.keys, func(key int) bool {
		if len(t.groups[key]) == 0 {
			delete(t.groups, key)
			return true
		}
		return false
	})
	return removed
}

// Keys returns a snapshot of the order keys in ascending order.
func (t *Table) Keys() []int {
	return slices.Clone(t.keys)
}

// Group returns a snapshot of the bindings stored under key, in
// registration order. Mutating the table afterwards does not affect it.
func (t *Table) Group(key int) []*binding.Binding {
	return slices.Clone(t.groups[key])
}

// Bindings returns a snapshot of all bindings in dispatch order.
func (t *Table) Bindings() []*binding.Binding {
	out := make([]*binding.Binding, 0, len(t.byID))
	for _, key := range t.keys {
		out = append(out, t.groups[key]...)
	}
	return out
}

// Len returns the number of stored bindings, dead owners included.
func (t *Table) Len() int {
	return len(t.byID)
}

// Live returns the number of bindings that would run in the next pass.
func (t *Table) Live() int {
	n := 0
	for _, b := range t.byID {
		if b.Runnable() {
			n++
		}
	}
	return n
}

func (t *Table) removeWhere(pred func(*binding.Binding) bool) int {
	removed := 0
	for _, key := range t.keys {
		t.groups[key] = slices.DeleteFunc(t.groups[key], func(b *binding.Binding) bool {
			if !pred(b) {
				return false
			}
			if t.byID[b.Owner().ID()] == b {
				delete(t.byID, b.Owner().ID())
			}
			b.Detach()
			removed++
			return true
		})
	}
	return removed
}
