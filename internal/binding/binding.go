// Package binding holds the unit stored by the callback registry: one
// procedure bound to its owner, placed in a phase at an order.
package binding

import (
	"github.com/specialistvlad/tickgrid/internal/owner"
	"github.com/specialistvlad/tickgrid/internal/phase"
)

// Procedure is a zero-argument callback bound to its owner at registration.
type Procedure func()

// Descriptor is what a metadata provider reports for one callback an owner
// contributes. It is resolved once at registration and never re-queried.
type Descriptor struct {
	Phase      phase.Phase
	Order      int
	Persistent bool
	Procedure  Procedure

	// Name overrides the symbol name derived from Procedure in diagnostics.
	Name string
	// Public marks a procedure the provider knows to be callable from outside
	// the dispatcher, independent of its Go symbol.
	Public bool
}

// Binding is a registered callback. The registry owns Bindings; the Owner is
// referenced, never owned.
type Binding struct {
	owner      owner.Owner
	procedure  Procedure
	phase      phase.Phase
	order      int
	persistent bool
	name       string

	// detached is set once the binding leaves its table. Dispatch iterates
	// snapshots, so a removed binding may still be visited and must be skipped.
	detached bool

	// pass is the table's pass counter at insertion. A binding inserted while
	// pass N runs is first eligible in pass N+1.
	pass uint64
}

// New creates a binding for o from d. name is the resolved diagnostic name.
func New(o owner.Owner, d Descriptor, name string) *Binding {
	return &Binding{
		owner:      o,
		procedure:  d.Procedure,
		phase:      d.Phase,
		order:      d.Order,
		persistent: d.Persistent,
		name:       name,
	}
}

func (b *Binding) Owner() owner.Owner { return b.owner }
func (b *Binding) Phase() phase.Phase { return b.phase }
func (b *Binding) Order() int         { return b.order }
func (b *Binding) Persistent() bool   { return b.persistent }
func (b *Binding) Name() string       { return b.name }
func (b *Binding) Detached() bool     { return b.detached }

// Stamp records the pass counter of the table the binding is inserted into.
func (b *Binding) Stamp(pass uint64) { b.pass = pass }

// InsertedDuring reports whether the binding was inserted while pass ran.
func (b *Binding) InsertedDuring(pass uint64) bool { return b.pass == pass }

// Detach marks the binding as removed from its table.
func (b *Binding) Detach() {
	b.detached = true
}

// Dead reports whether the owner is gone.
func (b *Binding) Dead() bool {
	return owner.IsNil(b.owner) || !b.owner.Alive()
}

// Runnable reports whether Invoke would call the procedure.
func (b *Binding) Runnable() bool {
	return !b.detached && b.procedure != nil && !b.Dead()
}

// Invoke calls the procedure if the binding is still runnable and reports
// whether it did. Panics raised by the procedure are not recovered.
func (b *Binding) Invoke() bool {
	if !b.Runnable() {
		return false
	}
	b.procedure()
	return true
}
