package avro

import (
	"fmt"
)

// The raw avro schema is decoded into a small tagged-variant tree before
// normalization. Resolution is a pure transformation over these variants; the
// cycle-breaking substitution of a name reference by its definition is a
// plain variant match instead of type-string dispatch over a generic JSON
// tree.

type nodeKind int

const (
	nodePrimitive nodeKind = iota
	nodeRef
	nodeRecord
	nodeEnum
	nodeArray
	nodeMap
	nodeUnion
)

type node interface {
	kind() nodeKind
}

// primitiveNode is a primitive type, optionally carrying extra attributes
// such as logicalType.
type primitiveNode struct {
	name  string
	attrs map[string]any
}

// refNode is a reference to a named type by (possibly qualified) name.
type refNode struct {
	name string
}

// fieldNode wraps one record field; attrs keeps doc, default and friends.
type fieldNode struct {
	name  string
	typ   node
	attrs map[string]any
}

type recordNode struct {
	name      string
	namespace string
	fields    []*fieldNode
	attrs     map[string]any
}

type enumNode struct {
	name      string
	namespace string
	symbols   []string
	attrs     map[string]any
}

type arrayNode struct {
	items node
	attrs map[string]any
}

type mapNode struct {
	values node
	attrs  map[string]any
}

type unionNode struct {
	alts []node
}

func (*primitiveNode) kind() nodeKind { return nodePrimitive }
func (*refNode) kind() nodeKind       { return nodeRef }
func (*recordNode) kind() nodeKind    { return nodeRecord }
func (*enumNode) kind() nodeKind      { return nodeEnum }
func (*arrayNode) kind() nodeKind     { return nodeArray }
func (*mapNode) kind() nodeKind       { return nodeMap }
func (*unionNode) kind() nodeKind     { return nodeUnion }

var primitiveNames = map[string]bool{
	"null":    true,
	"boolean": true,
	"int":     true,
	"long":    true,
	"float":   true,
	"double":  true,
	"bytes":   true,
	"string":  true,
}

// decodeNode builds the variant tree from a generic JSON value standing in a
// type position.
func decodeNode(v any) (node, error) {
	switch t := v.(type) {
	case string:
		if primitiveNames[t] {
			return &primitiveNode{name: t}, nil
		}
		return &refNode{name: t}, nil
	case []any:
		alts := make([]node, 0, len(t))
		for _, alt := range t {
			n, err := decodeNode(alt)
			if err != nil {
				return nil, err
			}
			alts = append(alts, n)
		}
		return &unionNode{alts: alts}, nil
	case map[string]any:
		return decodeObject(t)
	default:
		return nil, fmt.Errorf("unexpected %T in type position", v)
	}
}

func decodeObject(m map[string]any) (node, error) {
	tv, ok := m["type"]
	if !ok {
		return nil, fmt.Errorf("schema object has no type")
	}
	ts, ok := tv.(string)
	if !ok {
		// A wrapped complex type such as {"type": {"type": "array", ...}}.
		return decodeNode(tv)
	}

	switch ts {
	case "record":
		name, namespace, err := decodeName(m)
		if err != nil {
			return nil, err
		}
		fv, _ := m["fields"].([]any)
		if fv == nil {
			return nil, fmt.Errorf("record %q has no fields", name)
		}
		fields := make([]*fieldNode, 0, len(fv))
		for _, f := range fv {
			fm, ok := f.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("record %q field must be an object", name)
			}
			fname, ok := fm["name"].(string)
			if !ok {
				return nil, fmt.Errorf("record %q field has no name", name)
			}
			ft, ok := fm["type"]
			if !ok {
				return nil, fmt.Errorf("field %q has no type", fname)
			}
			typ, err := decodeNode(ft)
			if err != nil {
				return nil, err
			}
			fields = append(fields, &fieldNode{
				name:  fname,
				typ:   typ,
				attrs: extraAttrs(fm, "name", "type"),
			})
		}
		return &recordNode{
			name:      name,
			namespace: namespace,
			fields:    fields,
			attrs:     extraAttrs(m, "type", "name", "namespace", "fields"),
		}, nil
	case "enum":
		name, namespace, err := decodeName(m)
		if err != nil {
			return nil, err
		}
		sv, _ := m["symbols"].([]any)
		if sv == nil {
			return nil, fmt.Errorf("enum %q has no symbols", name)
		}
		symbols := make([]string, 0, len(sv))
		for _, sym := range sv {
			str, ok := sym.(string)
			if !ok {
				return nil, fmt.Errorf("enum %q symbol must be a string", name)
			}
			symbols = append(symbols, str)
		}
		return &enumNode{
			name:      name,
			namespace: namespace,
			symbols:   symbols,
			attrs:     extraAttrs(m, "type", "name", "namespace", "symbols"),
		}, nil
	case "array":
		iv, ok := m["items"]
		if !ok {
			return nil, fmt.Errorf("array has no items")
		}
		items, err := decodeNode(iv)
		if err != nil {
			return nil, err
		}
		return &arrayNode{items: items, attrs: extraAttrs(m, "type", "items")}, nil
	case "map":
		vv, ok := m["values"]
		if !ok {
			return nil, fmt.Errorf("map has no values")
		}
		values, err := decodeNode(vv)
		if err != nil {
			return nil, err
		}
		return &mapNode{values: values, attrs: extraAttrs(m, "type", "values", "keys")}, nil
	default:
		if primitiveNames[ts] {
			return &primitiveNode{name: ts, attrs: extraAttrs(m, "type")}, nil
		}
		return &refNode{name: ts}, nil
	}
}

func decodeName(m map[string]any) (name, namespace string, err error) {
	nv, ok := m["name"].(string)
	if !ok {
		return "", "", fmt.Errorf("named type has no name")
	}
	namespace, _ = m["namespace"].(string)
	return nv, namespace, nil
}

// extraAttrs copies every attribute except the consumed ones so doc, default,
// logicalType and the rest survive the round trip.
func extraAttrs(m map[string]any, consumed ...string) map[string]any {
	var out map[string]any
	for k, v := range m {
		skip := false
		for _, c := range consumed {
			if k == c {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}

// render turns a variant tree back into a generic JSON value. Map nodes gain
// an explicit string key marker regardless of the source text.
func render(n node) any {
	switch t := n.(type) {
	case *primitiveNode:
		if len(t.attrs) == 0 {
			return t.name
		}
		out := map[string]any{"type": t.name}
		for k, v := range t.attrs {
			out[k] = v
		}
		return out
	case *refNode:
		return t.name
	case *recordNode:
		fields := make([]any, 0, len(t.fields))
		for _, f := range t.fields {
			fm := map[string]any{"name": f.name, "type": render(f.typ)}
			for k, v := range f.attrs {
				fm[k] = v
			}
			fields = append(fields, fm)
		}
		out := map[string]any{"type": "record", "name": t.name, "fields": fields}
		if t.namespace != "" {
			out["namespace"] = t.namespace
		}
		for k, v := range t.attrs {
			out[k] = v
		}
		return out
	case *enumNode:
		out := map[string]any{"type": "enum", "name": t.name, "symbols": toAnySlice(t.symbols)}
		if t.namespace != "" {
			out["namespace"] = t.namespace
		}
		for k, v := range t.attrs {
			out[k] = v
		}
		return out
	case *arrayNode:
		out := map[string]any{"type": "array", "items": render(t.items)}
		for k, v := range t.attrs {
			out[k] = v
		}
		return out
	case *mapNode:
		out := map[string]any{"type": "map", "keys": "string", "values": render(t.values)}
		for k, v := range t.attrs {
			out[k] = v
		}
		return out
	case *unionNode:
		alts := make([]any, 0, len(t.alts))
		for _, alt := range t.alts {
			alts = append(alts, render(alt))
		}
		return alts
	default:
		return nil
	}
}

func toAnySlice(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}
