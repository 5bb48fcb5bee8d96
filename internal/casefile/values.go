package casefile

import (
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
	"gonum.org/v1/gonum/floats"
)

// evalContext is what case file expressions may refer to.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"pi": cty.NumberFloatVal(math.Pi),
		},
		Functions: map[string]function.Function{
			"abs":   stdlib.AbsoluteFunc,
			"ceil":  stdlib.CeilFunc,
			"floor": stdlib.FloorFunc,
			"log":   stdlib.LogFunc,
			"max":   stdlib.MaxFunc,
			"min":   stdlib.MinFunc,
			"pow":   stdlib.PowFunc,
		},
	}
}

// isExprDefined reports whether an optional attribute was written in the
// file. Omitted optional expressions decode to zero-width placeholders.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// numbers converts a number or a list of numbers.
func numbers(val cty.Value) ([]float64, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, fmt.Errorf("value must be known and not null")
	}
	if val.Type() == cty.Number || val.Type() == cty.String {
		n, err := convert.Convert(val, cty.Number)
		if err != nil {
			return nil, err
		}
		var f float64
		if err := gocty.FromCtyValue(n, &f); err != nil {
			return nil, err
		}
		return []float64{f}, nil
	}
	list, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("expected a number or a list of numbers, got %s", val.Type().FriendlyName())
	}
	var out []float64
	if err := gocty.FromCtyValue(list, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("list of numbers must not be empty")
	}
	return out, nil
}

func number(expr hcl.Expression, ctx *hcl.EvalContext) (float64, error) {
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return 0, diags
	}
	v, err := numbers(val)
	if err != nil {
		return 0, err
	}
	if len(v) != 1 {
		return 0, fmt.Errorf("expected a single number, got %d", len(v))
	}
	return v[0], nil
}

// assignments evaluates a `set` object into assignments sorted by path.
func assignments(expr hcl.Expression, ctx *hcl.EvalContext) ([]Assignment, error) {
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("'set' must be an object of variable paths, got %s", val.Type().FriendlyName())
	}
	var out []Assignment
	for path, v := range val.AsValueMap() {
		values, err := numbers(v)
		if err != nil {
			return nil, fmt.Errorf("value for '%s': %w", path, err)
		}
		out = append(out, Assignment{Path: path, Values: values})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Linspace returns n evenly spaced values from a to b inclusive.
func Linspace(a, b float64, n int) []float64 {
	if n <= 1 {
		return []float64{a}
	}
	return floats.Span(make([]float64, n), a, b)
}
