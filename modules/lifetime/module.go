// Package lifetime despawns its entity after a fixed number of frames.
package lifetime

import (
	"github.com/specialistvlad/tickgrid/internal/binding"
	"github.com/specialistvlad/tickgrid/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// BindLifetime is the handler for the 'lifetime' behaviour's update callback.
// The entity despawns itself from inside its own callback once "frames"
// updates have run; the registry skips whatever else it had queued.
func BindLifetime(bc handlers.BindContext) binding.Procedure {
	remaining := bc.Entity.Int("frames", 1)
	return func() {
		remaining--
		if remaining > 0 {
			return
		}
		bc.Logger.Debug("Lifetime expired; despawning.")
		bc.Entity.Despawn()
	}
}

// Register registers the handler with the host.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterHandler("OnUpdateLifetime", &handlers.RegisteredHandler{
		Description: "Despawns the entity after `frames` updates.",
		Bind:        BindLifetime,
	})
}
