package avro

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/isabella232/hydrator-plugins/schema"
)

// Normalizer converts raw avro schemas into the internal schema
// representation. Avro allows a named type (record or enum) to be defined
// once and referenced thereafter by name; the internal representation wants
// definitions inlined at every reference site that follows the definition.
// Results are cached by the canonical text of the input, so converting many
// records that share one schema parses it exactly once.
//
// A Normalizer is not safe for concurrent use; the pipeline allocates one per
// worker.
type Normalizer struct {
	cache  map[string]*schema.Schema
	parses int // schema.Parse invocations, observable by cache tests
}

// NewNormalizer returns an empty-cache Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{cache: map[string]*schema.Schema{}}
}

// Normalize converts the raw avro schema text into the internal schema.
// The registry of named types lives for exactly one call, so names from one
// schema never leak into the resolution of another.
func (n *Normalizer) Normalize(raw []byte) (*schema.Schema, error) {
	key := string(raw)
	if s, ok := n.cache[key]; ok {
		return s, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &Error{Code: CodeSchemaParse, Message: "malformed avro schema text", Cause: err}
	}
	root, err := decodeNode(v)
	if err != nil {
		return nil, &Error{Code: CodeSchemaParse, Message: "malformed avro schema", Cause: err}
	}

	resolved := resolve(root, "", registry{})
	rewritten, err := json.Marshal(render(resolved))
	if err != nil {
		return nil, &Error{Code: CodeSchemaConversion, Message: "cannot render rewritten schema", Cause: err}
	}

	n.parses++
	s, err := schema.Parse(rewritten)
	if err != nil {
		return nil, &Error{Code: CodeSchemaConversion, Message: "rewritten schema is not a valid internal schema", Cause: err}
	}
	n.cache[key] = s
	return s, nil
}

// registry maps a qualified name to the resolved definition of the record or
// enum that declared it. Scoped to a single Normalize call.
type registry map[string]node

// resolve rewrites the tree bottom-up, substituting name references whose
// definitions are already registered. A record registers itself only after
// its fields are resolved, matching avro's lexical resolution order: a
// self-reference (or a reference to a type still being defined) stays a bare
// name, which keeps the rewritten tree finite and leaves recursion to the
// internal schema parser.
func resolve(n node, ns string, reg registry) node {
	switch t := n.(type) {
	case *recordNode:
		if t.namespace != "" {
			ns = t.namespace
		}
		qn := qualifiedName(t.name, ns)
		childNS := namespaceOf(t.name, ns)
		fields := make([]*fieldNode, 0, len(t.fields))
		for _, f := range t.fields {
			fields = append(fields, &fieldNode{
				name:  f.name,
				typ:   resolve(f.typ, childNS, reg),
				attrs: f.attrs,
			})
		}
		out := &recordNode{name: t.name, namespace: t.namespace, fields: fields, attrs: t.attrs}
		reg[qn] = out
		return out
	case *enumNode:
		if t.namespace != "" {
			ns = t.namespace
		}
		reg[qualifiedName(t.name, ns)] = t
		return t
	case *refNode:
		// Lookup is relative to the current enclosing namespace, the
		// namespace in effect at the point of reference.
		if def, ok := reg[qualifiedName(t.name, ns)]; ok {
			return def
		}
		return t
	case *unionNode:
		alts := make([]node, 0, len(t.alts))
		for _, alt := range t.alts {
			alts = append(alts, resolve(alt, ns, reg))
		}
		return &unionNode{alts: alts}
	case *arrayNode:
		return &arrayNode{items: resolve(t.items, ns, reg), attrs: t.attrs}
	case *mapNode:
		return &mapNode{values: resolve(t.values, ns, reg), attrs: t.attrs}
	default:
		return n
	}
}

// qualifiedName returns the fully qualified form of name. A name already
// containing a dot is treated as qualified.
func qualifiedName(name, ns string) string {
	if strings.Contains(name, ".") || ns == "" {
		return name
	}
	return ns + "." + name
}

// namespaceOf returns the namespace nested names resolve against: the dotted
// prefix of an already-qualified name, otherwise the enclosing namespace.
func namespaceOf(name, ns string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return ns
}
