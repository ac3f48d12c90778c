package manifest

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/specialistvlad/tickgrid/internal/config"
	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/handlers"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Resolve checks the model against the compiled handlers and normalises
// entity attributes in place: declared defaults are filled in and values are
// converted to their declared types. Every problem found is reported in a
// single error.
func Resolve(ctx context.Context, model *config.Model, h *handlers.Handlers) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, kind := range slices.Sorted(maps.Keys(model.Behaviours)) {
		b := model.Behaviours[kind]
		for _, cb := range b.Callbacks {
			if _, ok := h.Get(cb.Handler); !ok {
				errs = append(errs, fmt.Sprintf("behaviour '%s', %s callback: handler '%s' is not registered", kind, cb.Phase, cb.Handler))
			}
		}
	}

	globals := make(map[string]struct{}, len(model.Entities))
	for _, e := range model.Entities {
		if _, dup := globals[e.Name]; dup {
			errs = append(errs, fmt.Sprintf("entity '%s': declared more than once", e.Name))
		}
		globals[e.Name] = struct{}{}
		errs = append(errs, resolveEntity(model, e)...)
	}

	for _, s := range model.Scenes {
		names := make(map[string]struct{}, len(s.Entities))
		for _, e := range s.Entities {
			_, dupGlobal := globals[e.Name]
			_, dupScene := names[e.Name]
			if dupGlobal || dupScene {
				errs = append(errs, fmt.Sprintf("scene '%s', entity '%s': declared more than once", s.Name, e.Name))
			}
			names[e.Name] = struct{}{}
			errs = append(errs, resolveEntity(model, e)...)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("manifest validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Manifest resolved.", "behaviours", len(model.Behaviours), "entities", len(model.Entities), "scenes", len(model.Scenes))
	return nil
}

// resolveEntity applies the behaviour's attribute declarations to e.
func resolveEntity(model *config.Model, e *config.Entity) []string {
	b, ok := model.Behaviours[e.Kind]
	if !ok {
		return []string{fmt.Sprintf("entity '%s': unknown behaviour '%s'", e.Name, e.Kind)}
	}
	if len(b.Attributes) == 0 {
		return nil
	}
	if e.Attributes == nil {
		e.Attributes = make(map[string]cty.Value)
	}

	var errs []string
	for _, name := range slices.Sorted(maps.Keys(e.Attributes)) {
		if _, declared := b.Attributes[name]; !declared {
			errs = append(errs, fmt.Sprintf("entity '%s': attribute '%s' is not declared by behaviour '%s'", e.Name, name, e.Kind))
		}
	}
	for _, name := range slices.Sorted(maps.Keys(b.Attributes)) {
		def := b.Attributes[name]
		val, provided := e.Attributes[name]
		if !provided || val.IsNull() {
			if def.Default == nil {
				errs = append(errs, fmt.Sprintf("entity '%s': missing required attribute '%s'", e.Name, name))
				continue
			}
			val = *def.Default
		}
		converted, err := convert.Convert(val, def.Type)
		if err != nil {
			errs = append(errs, fmt.Sprintf("entity '%s', attribute '%s': %s expected: %v", e.Name, name, def.Type.FriendlyName(), err))
			continue
		}
		e.Attributes[name] = converted
	}
	return errs
}

// ResolveEntity applies the behaviour declarations of model to a single
// entity declared after startup.
func ResolveEntity(model *config.Model, e *config.Entity) error {
	if errs := resolveEntity(model, e); len(errs) > 0 {
		return fmt.Errorf("entity validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
