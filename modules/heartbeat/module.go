// Package heartbeat logs a line every N frames. It is the usual persistent
// behaviour that outlives scene changes.
package heartbeat

import (
	"github.com/specialistvlad/tickgrid/internal/binding"
	"github.com/specialistvlad/tickgrid/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// DefaultEvery is used when the entity has no usable "every" attribute.
const DefaultEvery = 60

// BindHeartbeat is the handler for the 'heartbeat' behaviour's update callback.
func BindHeartbeat(bc handlers.BindContext) binding.Procedure {
	every := bc.Entity.Int("every", DefaultEvery)
	if every <= 0 {
		every = DefaultEvery
	}
	frames := 0
	return func() {
		frames++
		if frames%every == 0 {
			bc.Logger.Info("Heartbeat.", "frame", frames)
		}
	}
}

// Register registers the handler with the host.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterHandler("OnUpdateHeartbeat", &handlers.RegisteredHandler{
		Description: "Logs a line every `every` frames.",
		Bind:        BindHeartbeat,
	})
}
