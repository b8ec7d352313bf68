package description

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mohae/deepcopy"
)

// parameterKeys are read into typed fields; anything else lands in Data.
var parameterKeys = map[string]struct{}{
	"name": {}, "type": {}, "required": {}, "description": {}, "location": {},
	"sentAs": {}, "default": {}, "static": {}, "format": {}, "enum": {},
	"pattern": {}, "minimum": {}, "maximum": {}, "minLength": {}, "maxLength": {},
	"minItems": {}, "maxItems": {}, "properties": {}, "items": {},
	"additionalProperties": {}, "$ref": {}, "extends": {},
}

// Parameter is a model or an operation parameter. Nested properties, items
// and additionalProperties are built on first access and cached, which keeps
// self-referencing models usable.
type Parameter struct {
	desc     *Description
	pointer  string
	original map[string]any

	name        string
	types       []string
	required    bool
	description string
	location    string
	sentAs      string
	def         any
	static      bool
	format      string
	enum        []any
	pattern     string
	minimum     *float64
	maximum     *float64
	minLength   *int
	maxLength   *int
	minItems    *int
	maxItems    *int
	extra       map[string]any

	propertyDefs map[string]any
	itemsDef     map[string]any
	additional   any

	mu              sync.Mutex
	properties      map[string]*Parameter
	items           *Parameter
	additionalModel *Parameter
}

// newParameter resolves data against the owning Description and reads its
// fields. self is the model name when data is a top-level model.
func newParameter(d *Description, data map[string]any, at, self string) (*Parameter, error) {
	resolved, err := d.resolve(data, at, self)
	if err != nil {
		return nil, err
	}

	p := &Parameter{
		desc:        d,
		pointer:     at,
		original:    data,
		name:        asString(resolved["name"]),
		required:    asBool(resolved["required"]),
		description: asString(resolved["description"]),
		location:    asString(resolved["location"]),
		sentAs:      asString(resolved["sentAs"]),
		def:         resolved["default"],
		static:      asBool(resolved["static"]),
		format:      asString(resolved["format"]),
		pattern:     asString(resolved["pattern"]),
		extra:       map[string]any{},
		properties:  map[string]*Parameter{},
	}

	switch t := resolved["type"].(type) {
	case nil:
	case string:
		if t != "" {
			p.types = []string{t}
		}
	default:
		list, ok := asList(t)
		if !ok {
			return nil, p.invalid("type", "must be a string or a list of strings, got %T", t)
		}
		for _, item := range list {
			p.types = append(p.types, asString(item))
		}
	}

	if raw, ok := resolved["enum"]; ok && raw != nil {
		list, ok := asList(raw)
		if !ok {
			return nil, p.invalid("enum", "must be a list, got %T", raw)
		}
		p.enum = list
	}

	for _, f := range []struct {
		key string
		dst **float64
	}{{"minimum", &p.minimum}, {"maximum", &p.maximum}} {
		raw, ok := resolved[f.key]
		if !ok || raw == nil {
			continue
		}
		v, ok := asFloat(raw)
		if !ok {
			return nil, p.invalid(f.key, "must be a number, got %T", raw)
		}
		*f.dst = &v
	}
	for _, f := range []struct {
		key string
		dst **int
	}{{"minLength", &p.minLength}, {"maxLength", &p.maxLength}, {"minItems", &p.minItems}, {"maxItems", &p.maxItems}} {
		raw, ok := resolved[f.key]
		if !ok || raw == nil {
			continue
		}
		v, ok := asFloat(raw)
		if !ok || v < 0 || v != float64(int(v)) {
			return nil, p.invalid(f.key, "must be a non-negative integer, got %v", raw)
		}
		n := int(v)
		*f.dst = &n
	}

	if raw, ok := resolved["properties"]; ok && raw != nil {
		props, ok := asMap(raw)
		if !ok {
			return nil, p.invalid("properties", "must be a map, got %T", raw)
		}
		p.propertyDefs = props
	}
	if raw, ok := resolved["items"]; ok && raw != nil {
		items, ok := asMap(raw)
		if !ok {
			return nil, p.invalid("items", "must be a map, got %T", raw)
		}
		p.itemsDef = items
	}
	if raw, ok := resolved["additionalProperties"]; ok && raw != nil {
		switch v := raw.(type) {
		case bool:
			p.additional = v
		default:
			m, ok := asMap(v)
			if !ok {
				return nil, p.invalid("additionalProperties", "must be a bool or a map, got %T", raw)
			}
			p.additional = m
		}
	}

	for k, v := range resolved {
		if _, known := parameterKeys[k]; !known {
			p.extra[k] = v
		}
	}
	return p, nil
}

func (p *Parameter) invalid(field, format string, args ...any) *Error {
	return &Error{
		Code:    InvalidConfiguration,
		Message: fmt.Sprintf("description: %s: %s %s", p.displayName(), field, fmt.Sprintf(format, args...)),
		Name:    p.name,
		Pointer: pointer(p.pointer, field),
	}
}

func (p *Parameter) displayName() string {
	if p.name != "" {
		return p.name
	}
	return p.pointer
}

func (p *Parameter) Name() string        { return p.name }
func (p *Parameter) Required() bool      { return p.required }
func (p *Parameter) Description() string { return p.description }
func (p *Parameter) Location() string    { return p.location }
func (p *Parameter) Format() string      { return p.format }
func (p *Parameter) Pattern() string     { return p.pattern }
func (p *Parameter) Default() any        { return p.def }
func (p *Parameter) Static() bool        { return p.static }
func (p *Parameter) Enum() []any         { return append([]any(nil), p.enum...) }
func (p *Parameter) Minimum() *float64   { return p.minimum }
func (p *Parameter) Maximum() *float64   { return p.maximum }
func (p *Parameter) MinLength() *int     { return p.minLength }
func (p *Parameter) MaxLength() *int     { return p.maxLength }
func (p *Parameter) MinItems() *int      { return p.minItems }
func (p *Parameter) MaxItems() *int      { return p.maxItems }

// Type returns the declared type; union types are joined with "|".
func (p *Parameter) Type() string { return strings.Join(p.types, "|") }

func (p *Parameter) Types() []string { return append([]string(nil), p.types...) }

// SentAs returns the wire name, falling back to Name.
func (p *Parameter) SentAs() string {
	if p.sentAs != "" {
		return p.sentAs
	}
	return p.name
}

// Data returns an unrecognized key from the resolved definition, or nil.
func (p *Parameter) Data(key string) any { return p.extra[key] }

// Value applies static and default rules to a caller-supplied value.
func (p *Parameter) Value(v any) any {
	if p.static || (v == nil && p.def != nil) {
		return p.def
	}
	return v
}

// Filter formats v through the description's Formatter when the parameter
// declares a format.
func (p *Parameter) Filter(v any) (any, error) {
	if p.format == "" || v == nil {
		return v, nil
	}
	return p.desc.Format(p.format, v)
}

func (p *Parameter) HasProperty(name string) bool {
	_, ok := p.propertyDefs[name]
	return ok
}

// PropertyNames returns the declared property names, sorted.
func (p *Parameter) PropertyNames() []string { return sortedKeys(p.propertyDefs) }

// Property returns the named property, building it on first access. The
// property's key becomes its name unless the definition sets one.
func (p *Parameter) Property(name string) (*Parameter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if child, ok := p.properties[name]; ok {
		return child, nil
	}
	at := pointer(p.pointer, "properties", name)
	raw, ok := p.propertyDefs[name]
	if !ok {
		return nil, newError(NotFound, name, at, "description: %s has no property %q", p.displayName(), name)
	}
	def, ok := asDefinition(raw)
	if !ok {
		return nil, newError(InvalidConfiguration, name, at,
			"description: property %q of %s must be a map, got %T", name, p.displayName(), raw)
	}
	child, err := newParameter(p.desc, withName(def, name), at, "")
	if err != nil {
		return nil, err
	}
	p.properties[name] = child
	return child, nil
}

// Properties builds every property.
func (p *Parameter) Properties() (map[string]*Parameter, error) {
	out := make(map[string]*Parameter, len(p.propertyDefs))
	for _, name := range p.PropertyNames() {
		child, err := p.Property(name)
		if err != nil {
			return nil, err
		}
		out[name] = child
	}
	return out, nil
}

// Items returns the array item schema, or nil when none is declared.
func (p *Parameter) Items() (*Parameter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.items != nil || p.itemsDef == nil {
		return p.items, nil
	}
	items, err := newParameter(p.desc, p.itemsDef, pointer(p.pointer, "items"), "")
	if err != nil {
		return nil, err
	}
	p.items = items
	return items, nil
}

// AdditionalProperties reports whether undeclared properties are allowed and,
// when they are described by a schema, returns it.
func (p *Parameter) AdditionalProperties() (bool, *Parameter, error) {
	switch v := p.additional.(type) {
	case nil:
		return true, nil, nil
	case bool:
		return v, nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.additionalModel == nil {
		m, err := newParameter(p.desc, p.additional.(map[string]any), pointer(p.pointer, "additionalProperties"), "")
		if err != nil {
			return false, nil, err
		}
		p.additionalModel = m
	}
	return true, p.additionalModel, nil
}

// ToArray returns the definition the parameter was built from, before
// $ref and extends resolution, including any injected name.
func (p *Parameter) ToArray() map[string]any {
	return deepcopy.Copy(p.original).(map[string]any)
}
