// Package print dumps an entity's attributes once, on its first LateUpdate.
package print

import (
	"fmt"

	"github.com/specialistvlad/tickgrid/internal/binding"
	"github.com/specialistvlad/tickgrid/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// BindPrint is the handler for the 'print' behaviour's late_update callback.
func BindPrint(bc handlers.BindContext) binding.Procedure {
	printed := false
	return func() {
		if printed {
			return
		}
		printed = true
		bc.Logger.Info("Printing attributes.")

		names := bc.Entity.AttrNames()
		fmt.Fprintf(bc.Out, "%s\n", bc.Entity)
		if len(names) == 0 {
			fmt.Fprintln(bc.Out, "      (no attributes)")
			return
		}
		for _, k := range names {
			v, _ := bc.Entity.Attr(k)
			fmt.Fprintf(bc.Out, "      %s = %s\n", k, formatValue(v))
		}
	}
}

// Register registers the handler with the host.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterHandler("OnLateUpdatePrint", &handlers.RegisteredHandler{
		Description: "Prints the entity's attributes on its first frame.",
		Bind:        BindPrint,
	})
}
