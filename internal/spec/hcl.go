package spec

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// blockCollections maps labeled block types onto the config key collecting
// them, e.g. `model "User" { ... }` lands in models["User"].
var blockCollections = map[string]string{
	"operation": "operations",
	"model":     "models",
	"parameter": "parameters",
	"property":  "properties",
}

// decodeHCL reads an HCL description. Both block and attribute styles work:
//
//  operation "GetUser" {
//    httpMethod = "GET"
//    parameter "id" { location = "uri" }
//  }
//  models = { Date = { type = "string" } }
//
// Expressions are evaluated without variables or functions.
func decodeHCL(data []byte, filename string) (map[string]any, Order, error) {
	file, diags := hclsyntax.ParseConfig(data, filename, hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, Order{}, hclError(diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, Order{}, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: unexpected body type %T", filename, file.Body)}
	}

	config, err := bodyToMap(body)
	if err != nil {
		return nil, Order{}, err
	}

	return config, Order{
		Operations: hclKeys(body, "operation", "operations"),
		Models:     hclKeys(body, "model", "models"),
	}, nil
}

func bodyToMap(body *hclsyntax.Body) (map[string]any, error) {
	out := map[string]any{}

	names := make([]string, 0, len(body.Attributes))
	for name := range body.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := exprToValue(body.Attributes[name].Expr)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}

	for _, block := range body.Blocks {
		inner, err := bodyToMap(block.Body)
		if err != nil {
			return nil, err
		}
		switch len(block.Labels) {
		case 0:
			if _, dup := out[block.Type]; dup {
				return nil, blockError(block, "duplicate %q block", block.Type)
			}
			out[block.Type] = inner
		case 1:
			key, ok := blockCollections[block.Type]
			if !ok {
				key = block.Type + "s"
			}
			if _, isAttr := body.Attributes[key]; isAttr {
				return nil, blockError(block, "%q is set both as an attribute and with %q blocks", key, block.Type)
			}
			collection, _ := out[key].(map[string]any)
			if collection == nil {
				if _, exists := out[key]; exists {
					return nil, blockError(block, "%q is set both as a block and with %q blocks", key, block.Type)
				}
				collection = map[string]any{}
				out[key] = collection
			}
			label := block.Labels[0]
			if _, dup := collection[label]; dup {
				return nil, blockError(block, "duplicate %s %q", block.Type, label)
			}
			collection[label] = inner
		default:
			return nil, blockError(block, "%q blocks take at most one label", block.Type)
		}
	}
	return out, nil
}

// exprToValue converts an expression into plain Go values. Object
// constructors are walked directly so keys like "$ref" need no quoting
// gymnastics beyond HCL's own.
func exprToValue(expr hclsyntax.Expression) (any, error) {
	switch e := expr.(type) {
	case *hclsyntax.ObjectConsExpr:
		out := make(map[string]any, len(e.Items))
		for _, item := range e.Items {
			key, err := objectKey(item.KeyExpr)
			if err != nil {
				return nil, err
			}
			v, err := exprToValue(item.ValueExpr)
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	case *hclsyntax.TupleConsExpr:
		out := make([]any, 0, len(e.Exprs))
		for _, item := range e.Exprs {
			v, err := exprToValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, hclError(diags)
	}
	return ctyToGo(val)
}

func objectKey(expr hclsyntax.Expression) (string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", hclError(diags)
	}
	if val.IsNull() || !val.IsKnown() || val.Type() != cty.String {
		r := expr.Range()
		return "", &SpecError{Code: ParseError, Message: fmt.Sprintf("%s: object keys must be strings", r.String())}
	}
	return val.AsString(), nil
}

func ctyToGo(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			v, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			v, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}

// hclKeys returns names in source order from labeled blocks of blockType or,
// failing that, from an object constructor assigned to attr.
func hclKeys(body *hclsyntax.Body, blockType, attr string) []string {
	var keys []string
	for _, block := range body.Blocks {
		if block.Type == blockType && len(block.Labels) == 1 {
			keys = append(keys, block.Labels[0])
		}
	}
	if len(keys) > 0 {
		return keys
	}
	a, ok := body.Attributes[attr]
	if !ok {
		return nil
	}
	obj, ok := a.Expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil
	}
	for _, item := range obj.Items {
		if key, err := objectKey(item.KeyExpr); err == nil {
			keys = append(keys, key)
		}
	}
	return keys
}

func blockError(block *hclsyntax.Block, format string, args ...any) error {
	return &SpecError{
		Code:    ParseError,
		Message: fmt.Sprintf("%s: %s", block.DefRange().String(), fmt.Sprintf(format, args...)),
	}
}

func hclError(diags hcl.Diagnostics) error {
	return &SpecError{Code: ParseError, Message: diags.Error(), Cause: diags}
}
