package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// detectOpenAPIVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else 0.
func detectOpenAPIVersion(root map[string]any) int {
	if s, ok := root["openapi"].(string); ok && strings.HasPrefix(strings.TrimSpace(s), "3.") {
		return 3
	}
	if v, ok := root["swagger"]; ok {
		if s := strings.TrimSpace(fmt.Sprint(v)); strings.HasPrefix(s, "2") {
			return 2
		}
	}
	return 0
}

func importOpenAPI(ctx context.Context, data []byte, version int, opts []ImportOption) (map[string]any, Order, error) {
	var doc *openapi3.T
	switch version {
	case 3:
		loader := openapi3.NewLoader()
		loaded, err := loader.LoadFromData(data)
		if err != nil {
			return nil, Order{}, mapValidateOrParseErr(err)
		}
		doc = loaded
	default:
		converted, err := convertV2ToV3(data)
		if err != nil {
			return nil, Order{}, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Cause: err}
		}
		doc = converted
	}
	if err := doc.Validate(ctx); err != nil && !canProceedDespiteValidation(err) {
		return nil, Order{}, mapValidateOrParseErr(err)
	}
	return FromOpenAPI(doc, opts...)
}

// convertV2ToV3 repairs the document, round-trips it through JSON so
// openapi2.T sees its json field names (basePath, operationId, ...), then
// calls ToV3.
func convertV2ToV3(data []byte) (*openapi3.T, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	repairSwagger2(raw)
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var v2 openapi2.T
	if err := json.Unmarshal(asJSON, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

var httpMethods = []string{"get", "post", "put", "delete", "patch", "head", "options", "trace"}

// FromOpenAPI maps an OpenAPI v3 document onto a description config:
// component schemas become models, path operations become operations keyed
// by operationId, and local schema refs become "$ref: Name". Options filter
// the imported operations.
func FromOpenAPI(doc *openapi3.T, opts ...ImportOption) (map[string]any, Order, error) {
	config := map[string]any{}
	var order Order
	filter, err := newImportConfig(opts)
	if err != nil {
		return nil, order, err
	}
	if doc == nil {
		return config, order, nil
	}

	if doc.Info != nil {
		setIfNotEmpty(config, "name", doc.Info.Title)
		setIfNotEmpty(config, "apiVersion", doc.Info.Version)
		setIfNotEmpty(config, "description", doc.Info.Description)
	}
	if len(doc.Servers) > 0 && doc.Servers[0] != nil {
		setIfNotEmpty(config, "baseUrl", doc.Servers[0].URL)
	}

	models := map[string]any{}
	if doc.Components != nil {
		names := make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			def := schemaDefinition(doc.Components.Schemas[name])
			if def == nil {
				continue
			}
			models[name] = def
			order.Models = append(order.Models, name)
		}
	}
	if len(models) > 0 {
		config["models"] = models
	}

	operations := map[string]any{}
	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		for _, method := range httpMethods {
			op := item.GetOperation(strings.ToUpper(method))
			if op == nil || !filter.allow(method, p, op.Tags) {
				continue
			}
			name := strings.TrimSpace(op.OperationID)
			if name == "" {
				name = operationName(method, p)
			}
			for base, n := name, 2; operations[name] != nil; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
			}
			operations[name] = operationDefinition(method, p, item.Parameters, op)
			order.Operations = append(order.Operations, name)
		}
	}
	if len(operations) > 0 {
		config["operations"] = operations
	}
	return config, order, nil
}

func operationDefinition(method, path string, shared openapi3.Parameters, op *openapi3.Operation) map[string]any {
	def := map[string]any{
		"httpMethod": strings.ToUpper(method),
		"uri":        path,
	}
	setIfNotEmpty(def, "summary", op.Summary)
	setIfNotEmpty(def, "notes", op.Description)
	if op.Deprecated {
		def["deprecated"] = true
	}
	if len(op.Tags) > 0 {
		tags := make([]any, 0, len(op.Tags))
		for _, t := range op.Tags {
			tags = append(tags, t)
		}
		def["tags"] = tags
	}

	params := map[string]any{}
	add := func(key, wire string, p map[string]any) {
		if _, taken := params[key]; taken {
			p["sentAs"] = wire
			key = key + "_" + asLocation(p)
			for base, n := key, 2; params[key] != nil; n++ {
				key = fmt.Sprintf("%s_%d", base, n)
			}
		}
		params[key] = p
	}

	// Path-level parameters first, overridden by operation-level ones.
	merged := map[string]*openapi3.Parameter{}
	var keys []string
	for _, list := range []openapi3.Parameters{shared, op.Parameters} {
		for _, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			k := ref.Value.In + ":" + ref.Value.Name
			if _, seen := merged[k]; !seen {
				keys = append(keys, k)
			}
			merged[k] = ref.Value
		}
	}
	for _, k := range keys {
		p := merged[k]
		pdef := schemaDefinition(p.Schema)
		if pdef == nil {
			pdef = map[string]any{}
		}
		pdef["location"] = parameterLocation(p.In)
		if p.Required {
			pdef["required"] = true
		}
		setIfNotEmpty(pdef, "description", p.Description)
		add(p.Name, p.Name, pdef)
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		if mt := jsonMedia(op.RequestBody.Value.Content); mt != nil && mt.Schema != nil {
			body := mt.Schema.Value
			if body != nil && len(body.Properties) > 0 {
				required := toSet(body.Required)
				names := make([]string, 0, len(body.Properties))
				for name := range body.Properties {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					pdef := schemaDefinition(body.Properties[name])
					if pdef == nil {
						pdef = map[string]any{}
					}
					pdef["location"] = "json"
					if _, ok := required[name]; ok {
						pdef["required"] = true
					}
					add(name, name, pdef)
				}
			} else if pdef := schemaDefinition(mt.Schema); pdef != nil {
				pdef["location"] = "body"
				if op.RequestBody.Value.Required {
					pdef["required"] = true
				}
				add("body", "body", pdef)
			}
		}
	}
	if len(params) > 0 {
		def["parameters"] = params
	}

	if model := responseModel(op.Responses); model != "" {
		def["responseModel"] = model
	}
	return def
}

// responseModel picks the first 2xx JSON response whose schema is a
// component ref.
func responseModel(responses openapi3.Responses) string {
	codes := make([]string, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if !strings.HasPrefix(code, "2") {
			continue
		}
		ref := responses[code]
		if ref == nil || ref.Value == nil {
			continue
		}
		if mt := jsonMedia(ref.Value.Content); mt != nil && mt.Schema != nil && mt.Schema.Ref != "" {
			return refName(mt.Schema.Ref)
		}
	}
	return ""
}

// schemaDefinition converts a kin-openapi schema into a raw model definition.
func schemaDefinition(ref *openapi3.SchemaRef) map[string]any {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		return map[string]any{"$ref": refName(ref.Ref)}
	}
	s := ref.Value
	if s == nil {
		return map[string]any{}
	}

	def := map[string]any{}
	setIfNotEmpty(def, "type", s.Type)
	setIfNotEmpty(def, "format", s.Format)
	setIfNotEmpty(def, "description", s.Description)
	setIfNotEmpty(def, "pattern", s.Pattern)
	if s.Default != nil {
		def["default"] = s.Default
	}
	if len(s.Enum) > 0 {
		def["enum"] = append([]any(nil), s.Enum...)
	}
	if s.Min != nil {
		def["minimum"] = *s.Min
	}
	if s.Max != nil {
		def["maximum"] = *s.Max
	}
	if s.MinLength > 0 {
		def["minLength"] = int(s.MinLength)
	}
	if s.MaxLength != nil {
		def["maxLength"] = int(*s.MaxLength)
	}
	if s.MinItems > 0 {
		def["minItems"] = int(s.MinItems)
	}
	if s.MaxItems != nil {
		def["maxItems"] = int(*s.MaxItems)
	}
	if s.Items != nil {
		def["items"] = schemaDefinition(s.Items)
	}

	properties := map[string]any{}
	required := toSet(s.Required)
	addProps := func(props openapi3.Schemas, req map[string]struct{}) {
		for name, pref := range props {
			pdef := schemaDefinition(pref)
			if pdef == nil {
				continue
			}
			if _, ok := req[name]; ok {
				pdef["required"] = true
			}
			properties[name] = pdef
		}
	}
	addProps(s.Properties, required)

	// allOf: the first ref becomes the parent, inline members merge in.
	for _, member := range s.AllOf {
		if member == nil {
			continue
		}
		if member.Ref != "" {
			if _, ok := def["extends"]; !ok {
				def["extends"] = refName(member.Ref)
			}
			continue
		}
		if member.Value != nil {
			addProps(member.Value.Properties, toSet(member.Value.Required))
			if _, ok := def["type"]; !ok {
				setIfNotEmpty(def, "type", member.Value.Type)
			}
		}
	}
	if len(properties) > 0 {
		def["properties"] = properties
	}
	return def
}

func jsonMedia(content openapi3.Content) *openapi3.MediaType {
	if mt := content["application/json"]; mt != nil {
		return mt
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(k, "json") && content[k] != nil {
			return content[k]
		}
	}
	return nil
}

// parameterLocation maps OpenAPI "in" values onto description locations;
// only path differs.
func parameterLocation(in string) string {
	if in == openapi3.ParameterInPath {
		return "uri"
	}
	return in
}

func asLocation(p map[string]any) string {
	if s, ok := p["location"].(string); ok {
		return s
	}
	return "param"
}

// refName turns "#/components/schemas/Pet" (or "other.yaml#/.../Pet") into "Pet".
func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return strings.TrimPrefix(ref, "#")
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9]+`)

// operationName derives a name such as "get_pets_id" for operations without
// an operationId.
func operationName(method, path string) string {
	cleaned := strings.Trim(nonIdent.ReplaceAllString(path, "_"), "_")
	if cleaned == "" {
		return strings.ToLower(method)
	}
	return strings.ToLower(method) + "_" + cleaned
}

func setIfNotEmpty(m map[string]any, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		m[key] = v
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

func mapValidateOrParseErr(err error) error {
	pointer := extractJSONPointer(err)
	code := ValidationError
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") || strings.Contains(lower, "unmarshal") {
		code = ParseError
	}
	return &SpecError{Code: code, Message: err.Error(), JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	// Unwrap MultiError and take the first for brevity.
	if me, ok := err.(openapi3.MultiError); ok {
		if len(me) > 0 {
			return extractJSONPointer(me[0])
		}
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
	}
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}

// canProceedDespiteValidation returns true for validation errors where a
// best-effort import still makes sense (e.g. unresolved $ref entries).
func canProceedDespiteValidation(err error) bool {
	if err == nil {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref")
}
