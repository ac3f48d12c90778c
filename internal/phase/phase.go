// Package phase defines the fixed set of points in the host frame cycle at
// which registered callbacks are dispatched.
package phase

import (
	"fmt"
	"strings"
)

// Phase identifies one dispatch category. The set is closed: the host frame
// loop knows every value and the registry keeps exactly one table per value.
type Phase int

const (
	// Update runs once per rendered frame.
	Update Phase = iota
	// FixedUpdate runs zero or more times per frame, driven by the fixed-rate step.
	FixedUpdate
	// LateUpdate runs once per frame after Update.
	LateUpdate
	// DebugDraw runs once per frame, only when the host runs in development mode.
	DebugDraw

	// count is the number of defined phases.
	count
)

// All returns every defined phase in declaration order. The frame loop
// decides the order phases are dispatched in.
func All() []Phase {
	return []Phase{Update, FixedUpdate, LateUpdate, DebugDraw}
}

// Count returns the number of defined phases.
func Count() int {
	return int(count)
}

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool {
	return p >= Update && p < count
}

// String returns the manifest name of the phase.
func (p Phase) String() string {
	switch p {
	case Update:
		return "update"
	case FixedUpdate:
		return "fixed_update"
	case LateUpdate:
		return "late_update"
	case DebugDraw:
		return "debug_draw"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Parse resolves a manifest phase name. Matching is case-insensitive and
// accepts both "fixed_update" and "fixedupdate" spellings.
func Parse(name string) (Phase, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "")
	for _, p := range All() {
		if strings.ReplaceAll(p.String(), "_", "") == normalized {
			return p, nil
		}
	}
	return 0, &UnknownPhaseError{Name: name, Value: -1}
}

// UnknownPhaseError reports a phase value or name outside the defined set.
//
// When it reaches the registry it is a defect in the caller's configuration
// and is raised as a panic; Parse returns it as an ordinary error so manifest
// loaders can turn it into a diagnostic.
type UnknownPhaseError struct {
	Name  string
	Value int
}

func (e *UnknownPhaseError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown phase %q: must be one of update, fixed_update, late_update, debug_draw", e.Name)
	}
	return fmt.Sprintf("unknown phase value %d: must be one of update, fixed_update, late_update, debug_draw", e.Value)
}

// MustValid panics with an *UnknownPhaseError if p is not a defined phase.
func MustValid(p Phase) {
	if !p.Valid() {
		panic(&UnknownPhaseError{Value: int(p)})
	}
}
