package schema

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Parse errors. Callers match with errors.Is.
var (
	ErrMalformed        = errors.New("malformed schema")
	ErrUnknownTypeName  = errors.New("unknown type name")
	ErrMissingAttribute = errors.New("missing attribute")
	ErrInvalidAttribute = errors.New("invalid attribute")
)

var primitiveKinds = map[string]Kind{
	"null":    Null,
	"boolean": Boolean,
	"int":     Int,
	"long":    Long,
	"float":   Float,
	"double":  Double,
	"bytes":   Bytes,
	"string":  String,
}

// Parse builds a Schema from its JSON text. Named types (records and enums)
// are registered under their qualified name before their bodies are parsed,
// so a bare name appearing later in the document, including inside the type's
// own fields, resolves to the same definition.
func Parse(data []byte) (*Schema, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("schema: %w: %w", ErrMalformed, err)
	}
	p := &parser{named: map[string]*Schema{}}
	return p.parse(v, "")
}

// MustParse is a test and fixture helper that panics on parse failure.
func MustParse(data []byte) *Schema {
	s, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return s
}

type parser struct {
	named map[string]*Schema // qualified name -> definition
}

func (p *parser) parse(v any, ns string) (*Schema, error) {
	switch t := v.(type) {
	case string:
		return p.parseName(t, ns)
	case []any:
		union := make([]*Schema, 0, len(t))
		for _, alt := range t {
			s, err := p.parse(alt, ns)
			if err != nil {
				return nil, err
			}
			union = append(union, s)
		}
		return &Schema{kind: Union, union: union}, nil
	case map[string]any:
		return p.parseObject(t, ns)
	default:
		return nil, fmt.Errorf("schema: %w: unexpected %T in type position", ErrMalformed, v)
	}
}

func (p *parser) parseName(name, ns string) (*Schema, error) {
	if k, ok := primitiveKinds[name]; ok {
		return &Schema{kind: k}, nil
	}
	qn := qualified(name, ns)
	if s, ok := p.named[qn]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("schema: %w: %q", ErrUnknownTypeName, qn)
}

func (p *parser) parseObject(m map[string]any, ns string) (*Schema, error) {
	tv, ok := m["type"]
	if !ok {
		return nil, fmt.Errorf("schema: %w: object has no type", ErrMissingAttribute)
	}
	ts, ok := tv.(string)
	if !ok {
		// Wrapped complex type, e.g. {"type": {"type": "array", ...}}.
		return p.parse(tv, ns)
	}

	switch ts {
	case "record":
		return p.parseRecord(m, ns)
	case "enum":
		return p.parseEnum(m, ns)
	case "array":
		items, ok := m["items"]
		if !ok {
			return nil, fmt.Errorf("schema: %w: array has no items", ErrMissingAttribute)
		}
		is, err := p.parse(items, ns)
		if err != nil {
			return nil, err
		}
		return &Schema{kind: Array, items: is}, nil
	case "map":
		values, ok := m["values"]
		if !ok {
			return nil, fmt.Errorf("schema: %w: map has no values", ErrMissingAttribute)
		}
		vs, err := p.parse(values, ns)
		if err != nil {
			return nil, err
		}
		ks := &Schema{kind: String}
		if kv, ok := m["keys"]; ok {
			if ks, err = p.parse(kv, ns); err != nil {
				return nil, err
			}
		}
		return &Schema{kind: Map, keys: ks, values: vs}, nil
	default:
		s, err := p.parseName(ts, ns)
		if err != nil {
			return nil, err
		}
		if lt, ok := m["logicalType"]; ok {
			name, ok := lt.(string)
			if !ok {
				return nil, fmt.Errorf("schema: %w: logicalType must be a string", ErrInvalidAttribute)
			}
			// Copy so shared named definitions stay untagged.
			tagged := *s
			tagged.logical = LogicalType(name)
			return &tagged, nil
		}
		return s, nil
	}
}

func (p *parser) parseRecord(m map[string]any, ns string) (*Schema, error) {
	_, childNS, qn, err := namedAttrs(m, ns)
	if err != nil {
		return nil, err
	}
	if s, ok := p.named[qn]; ok {
		// Redefinition of a known name: reuse the first definition. The
		// normalizer inlines a registered definition at every reference
		// site, so duplicates are expected.
		return s, nil
	}
	s := &Schema{kind: Record, name: qn}
	p.named[qn] = s

	fv, ok := m["fields"]
	if !ok {
		return nil, fmt.Errorf("schema: %w: record %q has no fields", ErrMissingAttribute, qn)
	}
	fields, ok := fv.([]any)
	if !ok {
		return nil, fmt.Errorf("schema: %w: record %q fields must be an array", ErrInvalidAttribute, qn)
	}
	for _, f := range fields {
		fm, ok := f.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("schema: %w: record %q field must be an object", ErrInvalidAttribute, qn)
		}
		fname, ok := fm["name"].(string)
		if !ok {
			return nil, fmt.Errorf("schema: %w: record %q field has no name", ErrMissingAttribute, qn)
		}
		ft, ok := fm["type"]
		if !ok {
			return nil, fmt.Errorf("schema: %w: field %q has no type", ErrMissingAttribute, fname)
		}
		fs, err := p.parse(ft, childNS)
		if err != nil {
			return nil, err
		}
		s.fields = append(s.fields, &Field{Name: fname, Schema: fs})
	}
	return s, nil
}

func (p *parser) parseEnum(m map[string]any, ns string) (*Schema, error) {
	_, _, qn, err := namedAttrs(m, ns)
	if err != nil {
		return nil, err
	}
	if s, ok := p.named[qn]; ok {
		return s, nil
	}
	sv, ok := m["symbols"]
	if !ok {
		return nil, fmt.Errorf("schema: %w: enum %q has no symbols", ErrMissingAttribute, qn)
	}
	raw, ok := sv.([]any)
	if !ok {
		return nil, fmt.Errorf("schema: %w: enum %q symbols must be an array", ErrInvalidAttribute, qn)
	}
	symbols := make([]string, 0, len(raw))
	for _, sym := range raw {
		str, ok := sym.(string)
		if !ok {
			return nil, fmt.Errorf("schema: %w: enum %q symbol must be a string", ErrInvalidAttribute, qn)
		}
		symbols = append(symbols, str)
	}
	s := &Schema{kind: Enum, name: qn, symbols: symbols}
	p.named[qn] = s
	return s, nil
}

// namedAttrs extracts a named type's name, the namespace its children resolve
// against, and its qualified name.
func namedAttrs(m map[string]any, ns string) (name, childNS, qn string, err error) {
	nv, ok := m["name"].(string)
	if !ok {
		return "", "", "", fmt.Errorf("schema: %w: named type has no name", ErrMissingAttribute)
	}
	if nsv, ok := m["namespace"].(string); ok {
		ns = nsv
	}
	return nv, namespaceOf(nv, ns), qualified(nv, ns), nil
}

// qualified returns the fully qualified form of name. A name that already
// contains a dot is treated as qualified.
func qualified(name, ns string) string {
	if strings.Contains(name, ".") || ns == "" {
		return name
	}
	return ns + "." + name
}

// namespaceOf returns the namespace a name resolves children against: the
// dotted prefix for an already-qualified name, otherwise the enclosing
// namespace.
func namespaceOf(name, ns string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return ns
}
