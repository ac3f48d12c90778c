package app

import (
	"github.com/specialistvlad/tickgrid/internal/handlers"
	"github.com/specialistvlad/tickgrid/modules/gizmo"
	"github.com/specialistvlad/tickgrid/modules/heartbeat"
	"github.com/specialistvlad/tickgrid/modules/lifetime"
	"github.com/specialistvlad/tickgrid/modules/print"
)

// coreModules is the definitive list of all modules that are compiled into
// the tickgrid binary.
var coreModules = []handlers.Module{
	&heartbeat.Module{},
	&lifetime.Module{},
	&gizmo.Module{},
	&print.Module{},
}
