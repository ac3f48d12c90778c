// Package gizmo writes a debug line for its entity during DebugDraw, which
// the host only dispatches in development mode.
package gizmo

import (
	"fmt"

	"github.com/specialistvlad/tickgrid/internal/binding"
	"github.com/specialistvlad/tickgrid/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// BindGizmo is the handler for the 'gizmo' behaviour's debug_draw callback.
func BindGizmo(bc handlers.BindContext) binding.Procedure {
	label := bc.Entity.Str("label", "")
	if label == "" {
		label = bc.Entity.String()
	}
	frames := 0
	return func() {
		frames++
		fmt.Fprintf(bc.Out, "[gizmo] %s frame=%d\n", label, frames)
	}
}

// Register registers the handler with the host.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterHandler("OnDebugDrawGizmo", &handlers.RegisteredHandler{
		Description: "Writes a debug line per frame in development mode.",
		Bind:        BindGizmo,
	})
}
