package hclutil

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Functions returns the functions available inside manifest expressions.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"abs":    stdlib.AbsoluteFunc,
		"ceil":   stdlib.CeilFunc,
		"floor":  stdlib.FloorFunc,
		"max":    stdlib.MaxFunc,
		"min":    stdlib.MinFunc,
		"lower":  stdlib.LowerFunc,
		"upper":  stdlib.UpperFunc,
		"format": stdlib.FormatFunc,
		"concat": stdlib.ConcatFunc,
	}
}

// EvalContext returns the evaluation context for manifest expressions.
// Manifests have no variables; only Functions are in scope.
func EvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{Functions: Functions()}
}
