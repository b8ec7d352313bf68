package spec

import "strings"

// repairSwagger2 rewrites operations that kin-openapi refuses to convert, in
// place, and reports whether anything changed:
//   - several body parameters are merged into one object-typed body;
//   - body parameters next to formData ones become formData themselves and
//     the operation consumes multipart/form-data.
func repairSwagger2(doc map[string]any) bool {
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		return false
	}
	changed := false
	for _, item := range paths {
		ops, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for method, raw := range ops {
			if !isHTTPMethod(method) {
				continue
			}
			op, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if repairOperation(op) {
				changed = true
			}
		}
	}
	return changed
}

func isHTTPMethod(method string) bool {
	m := strings.ToLower(method)
	for _, known := range httpMethods {
		if m == known {
			return true
		}
	}
	return false
}

func repairOperation(op map[string]any) bool {
	params, ok := op["parameters"].([]any)
	if !ok || len(params) == 0 {
		return false
	}
	bodies, hasForm := 0, false
	for _, p := range params {
		switch paramIn(p) {
		case "body":
			bodies++
		case "formdata":
			hasForm = true
		}
	}
	switch {
	case bodies == 0:
		return false
	case hasForm:
		out := make([]any, 0, len(params))
		for _, p := range params {
			if paramIn(p) == "body" {
				out = append(out, bodyToFormData(p.(map[string]any)))
				continue
			}
			out = append(out, p)
		}
		op["parameters"] = out
		consumes, _ := op["consumes"].([]any)
		for _, c := range consumes {
			if c == "multipart/form-data" {
				return true
			}
		}
		op["consumes"] = append(consumes, "multipart/form-data")
		return true
	case bodies > 1:
		props := map[string]any{}
		var required []any
		rest := make([]any, 0, len(params))
		for _, p := range params {
			if paramIn(p) != "body" {
				rest = append(rest, p)
				continue
			}
			pm := p.(map[string]any)
			name := paramName(pm)
			props[name] = bodySchema(pm)
			if r, _ := pm["required"].(bool); r {
				required = append(required, name)
			}
		}
		schema := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			schema["required"] = required
		}
		merged := map[string]any{"in": "body", "name": "body", "schema": schema}
		op["parameters"] = append([]any{merged}, rest...)
		return true
	}
	return false
}

func paramIn(p any) string {
	pm, _ := p.(map[string]any)
	in, _ := pm["in"].(string)
	return strings.ToLower(in)
}

func paramName(pm map[string]any) string {
	if name, _ := pm["name"].(string); name != "" {
		return name
	}
	return "field"
}

func bodySchema(pm map[string]any) map[string]any {
	if s, ok := pm["schema"].(map[string]any); ok {
		return s
	}
	typ, _ := pm["type"].(string)
	if typ == "" {
		return map[string]any{"type": "string"}
	}
	s := map[string]any{"type": typ}
	if items, ok := pm["items"].(map[string]any); ok {
		s["items"] = items
	}
	if f, _ := pm["format"].(string); f != "" {
		s["format"] = f
	}
	return s
}

// bodyToFormData degrades a body parameter to a formData one. Referenced
// objects cannot be expressed as form fields and become strings.
func bodyToFormData(pm map[string]any) map[string]any {
	out := map[string]any{"in": "formData", "name": paramName(pm)}
	if d, _ := pm["description"].(string); d != "" {
		out["description"] = d
	}
	if r, ok := pm["required"].(bool); ok {
		out["required"] = r
	}
	schema := bodySchema(pm)
	typ, _ := schema["type"].(string)
	if typ == "" || typ == "object" {
		typ = "string"
	}
	out["type"] = typ
	if items, ok := schema["items"]; ok && typ == "array" {
		out["items"] = items
	}
	if f, _ := schema["format"].(string); f != "" {
		out["format"] = f
	}
	return out
}
