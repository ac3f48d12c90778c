// Package hclutil holds small helpers on top of hashicorp/hcl shared by the
// manifest loader.
package hclutil

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// TypeExprToCtyType converts an HCL expression that names a type (e.g. the
// bare `number` keyword) into its cty.Type. Only primitive types and `any`
// are accepted for entity attributes.
func TypeExprToCtyType(expr hcl.Expression) (cty.Type, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	// We expect a simple identifier like `string`, not a complex expression.
	traversal, hclDiags := hcl.AbsTraversalForExpr(expr)
	if hclDiags.HasErrors() || len(traversal) != 1 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid type specification",
			Detail:   "The 'type' attribute must be a simple type keyword like 'string', 'number', 'bool' or 'any'.",
			Subject:  expr.Range().Ptr(),
		})
		return cty.NilType, diags
	}

	switch name := traversal.RootName(); name {
	case "string":
		return cty.String, diags
	case "number":
		return cty.Number, diags
	case "bool":
		return cty.Bool, diags
	case "any":
		return cty.DynamicPseudoType, diags
	default:
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported type",
			Detail:   fmt.Sprintf("The keyword '%s' is not a valid attribute type. Supported types are: string, number, bool, any.", name),
			Subject:  expr.Range().Ptr(),
		})
		return cty.NilType, diags
	}
}

// IsExprDefined reports whether expr was actually written in the source.
// gohcl fills omitted optional expression fields with zero-width
// placeholders, so a nil check is not enough.
func IsExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	return rng.End.Byte > rng.Start.Byte
}
