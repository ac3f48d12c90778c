package registry

import (
	"log/slog"

	"github.com/specialistvlad/tickgrid/internal/binding"
	"github.com/specialistvlad/tickgrid/internal/metadata"
	"github.com/specialistvlad/tickgrid/internal/owner"
	"github.com/specialistvlad/tickgrid/internal/phase"
	"github.com/specialistvlad/tickgrid/internal/phasetable"
)

// EmptyGroupPolicy decides what Dispatch does when it reaches an order-group
// that currently holds no bindings.
type EmptyGroupPolicy int

const (
	// SkipEmptyGroups moves on to the next group.
	SkipEmptyGroups EmptyGroupPolicy = iota
	// StopAtEmptyGroup ends the phase at the first empty group, leaving later
	// groups unvisited for that pass.
	StopAtEmptyGroup
)

func (p EmptyGroupPolicy) String() string {
	switch p {
	case SkipEmptyGroups:
		return "skip"
	case StopAtEmptyGroup:
		return "stop"
	default:
		return "unknown"
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithEmptyGroupPolicy selects how Dispatch treats empty order-groups.
func WithEmptyGroupPolicy(policy EmptyGroupPolicy) Option {
	return func(r *Registry) {
		r.policy = policy
	}
}

// Registry owns one phase table per phase.
type Registry struct {
	provider metadata.Provider
	logger   *slog.Logger
	policy   EmptyGroupPolicy

	update      *phasetable.Table
	fixedUpdate *phasetable.Table
	lateUpdate  *phasetable.Table
	debugDraw   *phasetable.Table
}

// New creates a Registry that asks provider which callbacks an owner
// contributes. A nil provider is a programming error.
func New(provider metadata.Provider, opts ...Option) *Registry {
	if provider == nil {
		panic("registry: metadata provider must not be nil")
	}
	r := &Registry{
		provider:    provider,
		logger:      slog.New(slog.DiscardHandler),
		policy:      SkipEmptyGroups,
		update:      phasetable.New(phase.Update),
		fixedUpdate: phasetable.New(phase.FixedUpdate),
		lateUpdate:  phasetable.New(phase.LateUpdate),
		debugDraw:   phasetable.New(phase.DebugDraw),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the configured empty-group policy.
func (r *Registry) Policy() EmptyGroupPolicy {
	return r.policy
}

// RegisterObject binds every callback the provider describes for o and
// returns the number of phases o now participates in through this call.
//
// Nil or dead owners are ignored. A descriptor naming an undefined phase
// panics with *phase.UnknownPhaseError. A procedure that is callable from
// outside the dispatcher is reported as a visibility violation but still
// registered.
func (r *Registry) RegisterObject(o owner.Owner) int {
	if owner.IsNil(o) {
		r.logger.Debug("Ignoring registration of nil owner.")
		return 0
	}
	if !o.Alive() {
		r.logger.Debug("Ignoring registration of dead owner.", "owner", o.ID())
		return 0
	}

	descriptors := r.provider.DescribeCallbacks(o)
	seen := make([]bool, phase.Count())
	for _, d := range descriptors {
		tbl := r.table(d.Phase)
		if d.Procedure == nil {
			r.logger.Warn("Skipping callback without a procedure.", "owner", o.ID(), "phase", d.Phase, "name", d.Name)
			continue
		}

		name := r.checkVisibility(o, d)

		if seen[d.Phase] {
			r.logger.Warn("Owner declares more than one callback for a phase; the later declaration replaces the earlier one.",
				"owner", o.ID(), "phase", d.Phase, "procedure", name)
		}
		seen[d.Phase] = true

		if replaced := tbl.Insert(binding.New(o, d, name)); replaced != nil {
			r.logger.Debug("Replaced existing binding.", "owner", o.ID(), "phase", d.Phase,
				"old_order", replaced.Order(), "new_order", d.Order)
		}
	}

	registered := 0
	for p, touched := range seen {
		if !touched {
			continue
		}
		registered++
		if n := r.table(phase.Phase(p)).Compact(); n > 0 {
			r.logger.Debug("Compacted dead bindings.", "phase", phase.Phase(p), "removed", n)
		}
	}
	r.logger.Debug("Owner registered.", "owner", o.ID(), "phases", registered)
	return registered
}

// UnregisterObject removes every binding owned by o and returns how many
// were removed. Owners that were never registered are a no-op.
func (r *Registry) UnregisterObject(o owner.Owner) int {
	if owner.IsNil(o) {
		return 0
	}
	removed := 0
	for _, tbl := range r.tables() {
		if tbl.Remove(o.ID()) != nil {
			removed++
		}
		tbl.Compact()
	}
	if removed > 0 {
		r.logger.Debug("Owner unregistered.", "owner", o.ID(), "bindings", removed)
	}
	return removed
}

// Dispatch invokes the callbacks of phase p and returns how many ran.
//
// Order keys are captured when the pass starts and each group's bindings are
// captured when the group starts. Bindings removed after capture, and
// bindings whose owner died, are skipped. Bindings inserted while the pass
// runs, including an owner re-registering itself, wait for the next pass.
// Panics raised by callbacks are not recovered.
func (r *Registry) Dispatch(p phase.Phase) int {
	tbl := r.table(p)
	pass := tbl.BeginPass()
	invoked := 0
	for _, key := range tbl.Keys() {
		group := tbl.Group(key)
		if len(group) == 0 {
			if r.policy == StopAtEmptyGroup {
				return invoked
			}
			continue
		}
		for _, b := range group {
			if b.InsertedDuring(pass) {
				continue
			}
			if b.Invoke() {
				invoked++
			}
		}
	}
	return invoked
}

// Clear removes every non-persistent binding from every phase, or every
// binding when forced. It returns the number of bindings removed.
func (r *Registry) Clear(forced bool) int {
	removed := 0
	for _, tbl := range r.tables() {
		removed += tbl.Clear(forced)
	}
	r.logger.Info("Callback registry cleared.", "forced", forced, "removed", removed)
	return removed
}

// Len returns the number of bindings stored for p. Bindings of dead owners
// count until they are compacted.
func (r *Registry) Len(p phase.Phase) int {
	return r.table(p).Len()
}

// Live returns the number of p's bindings whose owner is still alive.
func (r *Registry) Live(p phase.Phase) int {
	return r.table(p).Live()
}

// Bindings returns a snapshot of p's bindings in dispatch order.
func (r *Registry) Bindings(p phase.Phase) []*binding.Binding {
	return r.table(p).Bindings()
}

// Registered reports whether o has a binding in any phase.
func (r *Registry) Registered(o owner.Owner) bool {
	if owner.IsNil(o) {
		return false
	}
	for _, tbl := range r.tables() {
		if _, ok := tbl.Find(o.ID()); ok {
			return true
		}
	}
	return false
}

// table resolves p to its phase table. An undefined phase means the caller
// is misconfigured, so it panics instead of returning an error.
func (r *Registry) table(p phase.Phase) *phasetable.Table {
	switch p {
	case phase.Update:
		return r.update
	case phase.FixedUpdate:
		return r.fixedUpdate
	case phase.LateUpdate:
		return r.lateUpdate
	case phase.DebugDraw:
		return r.debugDraw
	default:
		panic(&phase.UnknownPhaseError{Value: int(p)})
	}
}

func (r *Registry) tables() []*phasetable.Table {
	return []*phasetable.Table{r.update, r.fixedUpdate, r.lateUpdate, r.debugDraw}
}
