// This file translates the HCL schema structs into the format-agnostic
// manifest model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/tickgrid/internal/config"
	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/hclutil"
	"github.com/specialistvlad/tickgrid/internal/phase"
	"github.com/zclconf/go-cty/cty"
)

// translateBehaviour converts a behaviour block. Phase labels are parsed here
// so that a typo surfaces as a diagnostic pointing at the block.
func translateBehaviour(ctx context.Context, b *behaviourBlock, evalCtx *hcl.EvalContext) (*config.Behaviour, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx).With("behaviour", b.Kind)
	logger.Debug("Translating HCL behaviour to internal config model.")

	var diags hcl.Diagnostics
	def := &config.Behaviour{
		Kind:        b.Kind,
		Description: b.Description,
		Attributes:  make(map[string]*config.AttributeDefinition),
	}

	for _, cb := range b.Callbacks {
		p, err := phase.Parse(cb.Phase)
		if err != nil {
			diags = append(diags, diagError("Unknown phase", err.Error(), cb.DefRange.Ptr())...)
			continue
		}
		def.Callbacks = append(def.Callbacks, &config.Callback{
			Phase:      p,
			Handler:    cb.Handler,
			Order:      cb.Order,
			Persistent: cb.Persistent,
			Public:     cb.Public,
		})
	}

	for _, a := range b.Attributes {
		if _, dup := def.Attributes[a.Name]; dup {
			diags = append(diags, diagError("Duplicate attribute declaration",
				fmt.Sprintf("Attribute %q is declared more than once.", a.Name), a.DefRange.Ptr())...)
			continue
		}
		attr, attrDiags := translateAttribute(a, evalCtx)
		diags = append(diags, attrDiags...)
		if attr != nil {
			def.Attributes[attr.Name] = attr
		}
	}

	logger.Debug("Behaviour translated.", "callbacks", len(def.Callbacks), "attributes", len(def.Attributes))
	return def, diags
}

// translateAttribute resolves an attribute declaration's type and default.
func translateAttribute(a *attributeBlock, evalCtx *hcl.EvalContext) (*config.AttributeDefinition, hcl.Diagnostics) {
	ty, diags := hclutil.TypeExprToCtyType(a.Type)
	if diags.HasErrors() {
		return nil, diags
	}
	def := &config.AttributeDefinition{
		Name:        a.Name,
		Type:        ty,
		Description: a.Description,
	}
	if !hclutil.IsExprDefined(a.Default) {
		return def, diags
	}
	val, valDiags := a.Default.Value(evalCtx)
	diags = append(diags, valDiags...)
	if valDiags.HasErrors() || val.IsNull() {
		return def, diags
	}
	def.Default = &val
	return def, diags
}

// translateEntity evaluates an entity's attributes object.
func translateEntity(e *entityBlock, evalCtx *hcl.EvalContext) (*config.Entity, hcl.Diagnostics) {
	ent := &config.Entity{
		Kind:       e.Kind,
		Name:       e.Name,
		Attributes: make(map[string]cty.Value),
	}
	if e.Attributes == nil {
		return ent, nil
	}
	val, diags := e.Attributes.Value(evalCtx)
	if diags.HasErrors() || val.IsNull() {
		return ent, diags
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return ent, append(diags, diagError("Invalid attributes",
			fmt.Sprintf("The attributes of entity %q must be an object, got %s.", e.Name, ty.FriendlyName()),
			e.Attributes.Range().Ptr())...)
	}
	if !val.IsWhollyKnown() {
		return ent, append(diags, diagError("Invalid attributes",
			fmt.Sprintf("The attributes of entity %q must be known values.", e.Name),
			e.Attributes.Range().Ptr())...)
	}
	for k, v := range val.AsValueMap() {
		ent.Attributes[k] = v
	}
	return ent, diags
}

// translateScene converts a scene block and its nested entities.
func translateScene(s *sceneBlock, evalCtx *hcl.EvalContext) (*config.Scene, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	if s.Frames < 0 {
		diags = append(diags, diagError("Invalid frame count",
			fmt.Sprintf("Scene %q has a negative frame count.", s.Name), s.DefRange.Ptr())...)
	}
	scene := &config.Scene{Name: s.Name, Frames: s.Frames}
	for _, e := range s.Entities {
		ent, entDiags := translateEntity(e, evalCtx)
		diags = append(diags, entDiags...)
		scene.Entities = append(scene.Entities, ent)
	}
	return scene, diags
}
