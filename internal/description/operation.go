package description

import (
	"strings"

	"github.com/mohae/deepcopy"
)

var operationKeys = map[string]struct{}{
	"name": {}, "httpMethod": {}, "uri": {}, "summary": {}, "notes": {},
	"documentationUrl": {}, "responseModel": {}, "deprecated": {}, "class": {},
	"parameters": {}, "additionalParameters": {},
}

// Operation is a named action made of named parameters.
type Operation struct {
	desc *Description
	raw  map[string]any

	name             string
	httpMethod       string
	uri              string
	summary          string
	notes            string
	documentationURL string
	responseModel    string
	class            string
	deprecated       bool

	params     map[string]*Parameter
	paramOrder []string
	additional *Parameter
	extra      map[string]any
}

// newOperation resolves every parameter of def. def itself is kept as given
// so ToArray round-trips exactly.
func newOperation(d *Description, name string, def map[string]any) (*Operation, error) {
	at := pointer("#/operations", name)
	op := &Operation{
		desc:             d,
		raw:              def,
		name:             asString(def["name"]),
		httpMethod:       strings.ToUpper(asString(def["httpMethod"])),
		uri:              asString(def["uri"]),
		summary:          asString(def["summary"]),
		notes:            asString(def["notes"]),
		documentationURL: asString(def["documentationUrl"]),
		responseModel:    asString(def["responseModel"]),
		class:            asString(def["class"]),
		deprecated:       asBool(def["deprecated"]),
		params:           map[string]*Parameter{},
		extra:            map[string]any{},
	}
	if op.name == "" {
		op.name = name
	}

	if raw, ok := def["parameters"]; ok && raw != nil {
		params, ok := asMap(raw)
		if !ok {
			return nil, newError(InvalidConfiguration, name, pointer(at, "parameters"),
				"description: parameters of operation %q must be a map, got %T", name, raw)
		}
		for pname, praw := range params {
			pat := pointer(at, "parameters", pname)
			pdef, ok := asDefinition(praw)
			if !ok {
				return nil, newError(InvalidConfiguration, pname, pat,
					"description: parameter %q of operation %q must be a map, got %T", pname, name, praw)
			}
			param, err := newParameter(d, withName(pdef, pname), pat, "")
			if err != nil {
				return nil, err
			}
			op.params[pname] = param
		}
		op.paramOrder = sortedKeys(op.params)
	}

	if raw, ok := def["additionalParameters"]; ok && raw != nil {
		adef, ok := asMap(raw)
		if !ok {
			return nil, newError(InvalidConfiguration, name, pointer(at, "additionalParameters"),
				"description: additionalParameters of operation %q must be a map, got %T", name, raw)
		}
		additional, err := newParameter(d, adef, pointer(at, "additionalParameters"), "")
		if err != nil {
			return nil, err
		}
		op.additional = additional
	}

	for k, v := range def {
		if _, known := operationKeys[k]; !known {
			op.extra[k] = v
		}
	}
	return op, nil
}

func (o *Operation) Name() string             { return o.name }
func (o *Operation) HTTPMethod() string       { return o.httpMethod }
func (o *Operation) URI() string              { return o.uri }
func (o *Operation) Summary() string          { return o.summary }
func (o *Operation) Notes() string            { return o.notes }
func (o *Operation) DocumentationURL() string { return o.documentationURL }
func (o *Operation) ResponseModel() string    { return o.responseModel }
func (o *Operation) Class() string            { return o.class }
func (o *Operation) Deprecated() bool         { return o.deprecated }

// AdditionalParameters describes values not matching a declared parameter,
// or nil.
func (o *Operation) AdditionalParameters() *Parameter { return o.additional }

// Params returns the parameters sorted by key.
func (o *Operation) Params() []*Parameter {
	out := make([]*Parameter, 0, len(o.paramOrder))
	for _, name := range o.paramOrder {
		out = append(out, o.params[name])
	}
	return out
}

// ParamNames returns the parameter keys, sorted.
func (o *Operation) ParamNames() []string { return append([]string(nil), o.paramOrder...) }

func (o *Operation) HasParam(name string) bool {
	_, ok := o.params[name]
	return ok
}

func (o *Operation) Param(name string) (*Parameter, bool) {
	p, ok := o.params[name]
	return p, ok
}

// ParamsByLocation returns the parameters sent in the given location
// (uri, query, header, json, ...).
func (o *Operation) ParamsByLocation(location string) []*Parameter {
	var out []*Parameter
	for _, name := range o.paramOrder {
		if p := o.params[name]; p.Location() == location {
			out = append(out, p)
		}
	}
	return out
}

// ResponseModelParameter resolves responseModel against the description's
// models. It returns nil when no response model is declared.
func (o *Operation) ResponseModelParameter() (*Parameter, error) {
	if o.responseModel == "" {
		return nil, nil
	}
	return o.desc.Model(o.responseModel)
}

// Data returns an unrecognized key of the definition, or nil.
func (o *Operation) Data(key string) any { return o.extra[key] }

// ToArray returns a copy of the definition the operation was built from.
func (o *Operation) ToArray() map[string]any {
	return deepcopy.Copy(o.raw).(map[string]any)
}
