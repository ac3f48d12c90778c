// Package registry provides the central frame-callback dispatcher.
//
// The Registry stores the callbacks that owners contribute for each phase of
// the host frame cycle and invokes them when the host dispatches that phase.
// Which callbacks an owner contributes is decided by a metadata.Provider,
// queried once when the owner is registered; the registry itself only stores,
// orders, validates and dispatches the resulting bindings.
//
// Within a phase, callbacks run in ascending order-group and, inside a group,
// in registration order. Each owner has at most one binding per phase;
// registering it again replaces the earlier binding.
//
// The registry never owns the objects it calls into. Owners report their own
// liveness, and a binding whose owner is gone is skipped at dispatch and
// compacted away on the next Register, Unregister or Clear.
//
// A Registry is meant to be driven from the single goroutine that runs the
// host frame loop. Callbacks may register and unregister owners while a phase
// is being dispatched; iteration works on snapshots and removed bindings are
// never invoked afterwards.
package registry
