package registry

import (
	"reflect"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/specialistvlad/tickgrid/internal/binding"
	"github.com/specialistvlad/tickgrid/internal/owner"
)

// checkVisibility enforces the internal-only contract for dispatched
// procedures and returns the name used for diagnostics.
//
// Callbacks must only ever run through the dispatcher. A procedure whose Go
// symbol is exported (a method value like w.Tick or a package-level func
// like OnTick) is reported, and the binding is still registered.
func (r *Registry) checkVisibility(o owner.Owner, d binding.Descriptor) string {
	symbol := procedureSymbol(d.Procedure)
	name := d.Name
	if name == "" {
		name = shortSymbol(symbol)
	}

	if d.Public || isExportedSymbol(symbol) {
		r.logger.Error("Callback procedure is externally invocable; dispatched procedures must be unexported or anonymous.",
			"violation", "visibility",
			"owner", o.ID(),
			"phase", d.Phase,
			"procedure", name,
		)
	}
	return name
}

// procedureSymbol returns the fully qualified runtime symbol of fn.
func procedureSymbol(fn binding.Procedure) string {
	if fn == nil {
		return ""
	}
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return ""
	}
	return f.Name()
}

// shortSymbol strips the import path from a runtime symbol.
func shortSymbol(symbol string) string {
	if i := strings.LastIndex(symbol, "/"); i >= 0 {
		symbol = symbol[i+1:]
	}
	return strings.TrimSuffix(symbol, "-fm")
}

// isExportedSymbol reports whether the final identifier of a runtime symbol
// is exported. Closures end in funcN and method values carry a -fm suffix:
//
//	pkg.(*Widget).Tick-fm   exported
//	pkg.(*Widget).tick-fm   unexported
//	pkg.NewWidget.func1     anonymous
func isExportedSymbol(symbol string) bool {
	s := strings.ReplaceAll(shortSymbol(symbol), "[...]", "")
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(first)
}
