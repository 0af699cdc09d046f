package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/nusig/internal/config"
	"github.com/vk/nusig/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Evaluator is the HCL-specific implementation of the config.Evaluator
// interface.
type Evaluator struct {
	funcs map[string]function.Function
}

// NewEvaluator creates a new HCL evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		funcs: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"format": stdlib.FormatFunc,
		},
	}
}

// String evaluates expr with env bound to the env variable.
func (e *Evaluator) String(ctx context.Context, expr hcl.Expression, env config.Env) (string, error) {
	logger := ctxlog.FromContext(ctx)

	val, diags := expr.Value(e.evalContext(env))
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() || !val.IsWhollyKnown() {
		return "", fmt.Errorf("%s: expression has no value", expr.Range())
	}

	converted, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("%s: cannot convert %s to string: %w", expr.Range(), val.Type().FriendlyName(), err)
	}
	if !val.Type().Equals(cty.String) {
		logger.Debug("Implicitly converted value type.", "from", val.Type().FriendlyName(), "to", "string")
	}

	var s string
	if err := gocty.FromCtyValue(converted, &s); err != nil {
		return "", err
	}
	return s, nil
}

func (e *Evaluator) evalContext(env config.Env) *hcl.EvalContext {
	vars := map[string]cty.Value{
		"env": cty.ObjectVal(map[string]cty.Value{
			"GOPACKAGE": cty.StringVal(env.GoPackage),
			"GOFILE":    cty.StringVal(env.GoFile),
		}),
	}
	return &hcl.EvalContext{Variables: vars, Functions: e.funcs}
}
