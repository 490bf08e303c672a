package schema

import (
	json "github.com/goccy/go-json"
)

// MarshalJSON renders the schema as Avro-style JSON. A named type's full
// definition is emitted once; later mentions, including self-references in
// recursive records, are emitted as the bare qualified name so the output
// stays finite.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.encode(map[string]bool{}))
}

// String returns the JSON rendering, or the kind name when marshaling fails.
func (s *Schema) String() string {
	b, err := s.MarshalJSON()
	if err != nil {
		return s.kind.String()
	}
	return string(b)
}

func (s *Schema) encode(seen map[string]bool) any {
	switch s.kind {
	case Record:
		if seen[s.name] {
			return s.name
		}
		seen[s.name] = true
		fields := make([]any, 0, len(s.fields))
		for _, f := range s.fields {
			fields = append(fields, map[string]any{
				"name": f.Name,
				"type": f.Schema.encode(seen),
			})
		}
		return map[string]any{"type": "record", "name": s.name, "fields": fields}
	case Enum:
		if seen[s.name] {
			return s.name
		}
		seen[s.name] = true
		return map[string]any{"type": "enum", "name": s.name, "symbols": s.symbols}
	case Array:
		return map[string]any{"type": "array", "items": s.items.encode(seen)}
	case Map:
		return map[string]any{
			"type":   "map",
			"keys":   s.keys.encode(seen),
			"values": s.values.encode(seen),
		}
	case Union:
		alts := make([]any, 0, len(s.union))
		for _, t := range s.union {
			alts = append(alts, t.encode(seen))
		}
		return alts
	default:
		if s.logical != LogicalNone {
			return map[string]any{"type": s.kind.String(), "logicalType": string(s.logical)}
		}
		return s.kind.String()
	}
}
