// Package description holds a service description: named operations and
// models read from a nested key-value configuration, built on first access
// and cached by name.
package description

import (
	"errors"
	"strings"
	"sync"

	"github.com/mohae/deepcopy"
)

// Top-level configuration keys with dedicated handling. Everything else is
// kept as extra data.
const (
	keyOperations  = "operations"
	keyModels      = "models"
	keyName        = "name"
	keyDescription = "description"
	keyAPIVersion  = "apiVersion"
	keyBaseURL     = "baseUrl"
)

// Option configures a Description.
type Option func(*options)

type options struct {
	formatter      Formatter
	operationOrder []string
	modelOrder     []string
}

// WithFormatter replaces the default SchemaFormatter.
func WithFormatter(f Formatter) Option { return func(o *options) { o.formatter = f } }

// WithOperationOrder records the source order of operation names. Names not
// listed follow in lexicographic order.
func WithOperationOrder(names ...string) Option {
	return func(o *options) { o.operationOrder = append([]string(nil), names...) }
}

// WithModelOrder records the source order of model names.
func WithModelOrder(names ...string) Option {
	return func(o *options) { o.modelOrder = append([]string(nil), names...) }
}

// Description is a registry of operation and model definitions. The raw
// definitions never change after New; only the caches fill up.
type Description struct {
	name        string
	description string
	apiVersion  string
	baseURL     string

	operationDefs  map[string]map[string]any
	operationRaw   map[string]any
	operationOrder []string
	modelDefs      map[string]any
	modelOrder     []string
	extraData      map[string]any

	// sections records which of operations and models were given, and
	// whether as null, so ToArray can reproduce them.
	sections map[string]bool

	formatter Formatter

	opMu       sync.Mutex
	operations map[string]*Operation

	modelMu sync.Mutex
	models  map[string]*Parameter
}

// New builds a Description from config. Operation definitions must be
// map-like; everything else is validated when first accessed.
func New(config map[string]any, opts ...Option) (*Description, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	d := &Description{
		operationDefs: map[string]map[string]any{},
		operationRaw:  map[string]any{},
		sections:      map[string]bool{},
		modelDefs:     map[string]any{},
		extraData:     map[string]any{},
		formatter:     o.formatter,
		operations:    map[string]*Operation{},
		models:        map[string]*Parameter{},
	}
	if d.formatter == nil {
		d.formatter = NewSchemaFormatter()
	}

	for key, value := range config {
		switch key {
		case keyOperations:
			d.sections[key] = value == nil
			if value == nil {
				continue
			}
			ops, ok := asMap(value)
			if !ok {
				return nil, newError(InvalidConfiguration, "", "#/operations",
					"description: operations must be a map, got %T", value)
			}
			for name, raw := range ops {
				def, ok := asDefinition(raw)
				if !ok {
					return nil, newError(InvalidConfiguration, name, pointer("#/operations", name),
						"description: operation %q must be a map, got %T", name, raw)
				}
				d.operationDefs[name] = def
				d.operationRaw[name] = raw
			}
		case keyModels:
			d.sections[key] = value == nil
			if value == nil {
				continue
			}
			models, ok := asMap(value)
			if !ok {
				return nil, newError(InvalidConfiguration, "", "#/models",
					"description: models must be a map, got %T", value)
			}
			for name, raw := range models {
				d.modelDefs[name] = raw
			}
		case keyName:
			d.name = asString(value)
		case keyDescription:
			d.description = asString(value)
		case keyAPIVersion:
			d.apiVersion = asString(value)
		case keyBaseURL:
			d.baseURL = asString(value)
		default:
			d.extraData[key] = value
		}
	}

	d.operationOrder = orderedKeys(d.operationDefs, o.operationOrder)
	d.modelOrder = orderedKeys(d.modelDefs, o.modelOrder)
	return d, nil
}

func (d *Description) Name() string        { return d.name }
func (d *Description) Description() string { return d.description }
func (d *Description) APIVersion() string  { return d.apiVersion }
func (d *Description) BaseURL() string     { return d.baseURL }

// Operations returns every defined operation name, built or not.
func (d *Description) Operations() []string {
	return append([]string(nil), d.operationOrder...)
}

func (d *Description) HasOperation(name string) bool {
	_, ok := d.operationDefs[name]
	return ok
}

// Operation returns the cached Operation for name, building it on first use.
func (d *Description) Operation(name string) (*Operation, error) {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	if op, ok := d.operations[name]; ok {
		return op, nil
	}
	def, ok := d.operationDefs[name]
	if !ok {
		return nil, newError(NotFound, name, pointer("#/operations", name),
			"description: no operation named %q", name)
	}
	op, err := newOperation(d, name, def)
	if err != nil {
		return nil, err
	}
	d.operations[name] = op
	return op, nil
}

func (d *Description) HasModel(name string) bool {
	_, ok := d.modelDefs[name]
	return ok
}

// Model returns the cached Parameter for the named model, building it on
// first use with its name injected and $ref/extends resolved.
func (d *Description) Model(name string) (*Parameter, error) {
	d.modelMu.Lock()
	defer d.modelMu.Unlock()

	if p, ok := d.models[name]; ok {
		return p, nil
	}
	def, err := d.modelData(name)
	if err != nil {
		return nil, err
	}
	p, err := newParameter(d, def, pointer("#/models", name), name)
	if err != nil {
		return nil, err
	}
	d.models[name] = p
	return p, nil
}

// ModelNames returns model names in definition order.
func (d *Description) ModelNames() []string {
	return append([]string(nil), d.modelOrder...)
}

// Models builds every model not yet built and returns them by name.
func (d *Description) Models() (map[string]*Parameter, error) {
	out := make(map[string]*Parameter, len(d.modelOrder))
	for _, name := range d.modelOrder {
		p, err := d.Model(name)
		if err != nil {
			return nil, err
		}
		out[name] = p
	}
	return out, nil
}

// Data returns the extra top-level value stored under key, or nil.
func (d *Description) Data(key string) any {
	v, ok := d.extraData[key]
	if !ok {
		return nil
	}
	return deepcopy.Copy(v)
}

// ExtraData returns a copy of every unrecognized top-level key.
func (d *Description) ExtraData() map[string]any {
	out := make(map[string]any, len(d.extraData))
	for k, v := range d.extraData {
		out[k] = deepcopy.Copy(v)
	}
	return out
}

// Format converts value to its canonical string form for the schema type.
func (d *Description) Format(typ string, value any) (string, error) {
	return d.formatter.Format(typ, value)
}

// ToArray serializes the description back into its configuration shape.
// Models that have been built appear in their built form, which carries the
// injected name. Operations and models appear exactly when they were given.
func (d *Description) ToArray() map[string]any {
	out := make(map[string]any, len(d.extraData)+6)
	for k, v := range d.extraData {
		out[k] = deepcopy.Copy(v)
	}

	if null, ok := d.sections[keyOperations]; ok {
		if null {
			out[keyOperations] = nil
		} else {
			ops := make(map[string]any, len(d.operationRaw))
			for name, raw := range d.operationRaw {
				ops[name] = deepcopy.Copy(raw)
			}
			out[keyOperations] = ops
		}
	}

	if null, ok := d.sections[keyModels]; ok && null {
		out[keyModels] = nil
	} else if ok {
		d.modelMu.Lock()
		built := make(map[string]*Parameter, len(d.models))
		for name, p := range d.models {
			built[name] = p
		}
		d.modelMu.Unlock()

		models := make(map[string]any, len(d.modelDefs))
		for name, raw := range d.modelDefs {
			if p, ok := built[name]; ok {
				models[name] = p.ToArray()
				continue
			}
			models[name] = deepcopy.Copy(raw)
		}
		out[keyModels] = models
	}

	for key, value := range map[string]string{
		keyName:        d.name,
		keyDescription: d.description,
		keyAPIVersion:  d.apiVersion,
		keyBaseURL:     d.baseURL,
	} {
		if value != "" {
			out[key] = value
		}
	}
	return out
}

// modelData returns a copy of the named model's raw definition with its name
// injected. It reads only immutable state and takes no locks.
func (d *Description) modelData(name string) (map[string]any, error) {
	raw, ok := d.modelDefs[name]
	if !ok {
		return nil, newError(NotFound, name, pointer("#/models", name),
			"description: no model named %q", name)
	}
	def, ok := asDefinition(raw)
	if !ok {
		return nil, newError(InvalidConfiguration, name, pointer("#/models", name),
			"description: model %q must be a map, got %T", name, raw)
	}
	return withName(def, name), nil
}

// resolve follows $ref and extends chains under data. With $ref the target's
// keys win and only the local name survives; with extends the local keys win.
// self names the model being built, if any, so a model referring to itself is
// caught on the first hop.
func (d *Description) resolve(data map[string]any, at, self string) (map[string]any, error) {
	seen := map[string]bool{}
	if self != "" {
		seen[self] = true
	}
	chain := []string{}
	if self != "" {
		chain = append(chain, self)
	}

	current := data
	for {
		ref, hasRef := current["$ref"]
		ext, hasExt := current["extends"]
		if !hasRef && !hasExt {
			return current, nil
		}

		key, target := "$ref", asString(ref)
		if !hasRef {
			key, target = "extends", asString(ext)
		}
		if seen[target] {
			return nil, &Error{
				Code:    CyclicReference,
				Message: "description: cyclic reference " + strings.Join(append(chain, target), " -> "),
				Name:    target,
				Pointer: at,
			}
		}
		seen[target] = true
		chain = append(chain, target)

		base, err := d.modelData(target)
		if err != nil {
			code, msg := NotFound, key+" to unknown model \""+target+"\""
			var de *Error
			if d.HasModel(target) && errors.As(err, &de) {
				code, msg = de.Code, key+" to invalid model \""+target+"\""
			}
			return nil, &Error{
				Code:    code,
				Message: "description: " + msg,
				Name:    target,
				Pointer: at,
				Cause:   err,
			}
		}

		merged := make(map[string]any, len(base)+len(current))
		if key == "$ref" {
			for k, v := range base {
				merged[k] = v
			}
			for k, v := range current {
				if k == "$ref" {
					continue
				}
				if _, exists := merged[k]; !exists {
					merged[k] = v
				}
			}
			if name, ok := current["name"]; ok {
				merged["name"] = name
			}
		} else {
			for k, v := range current {
				if k != "extends" {
					merged[k] = v
				}
			}
			for k, v := range base {
				if _, exists := merged[k]; !exists {
					merged[k] = v
				}
			}
		}
		current = merged
	}
}
