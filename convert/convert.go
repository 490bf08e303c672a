// Package convert coerces raw decoded values into the shapes the internal
// schema declares: JSON numbers to sized integers and floats, enum symbol
// membership, arrays, string-keyed maps, unions, and nested records.
package convert

import (
	"errors"
	"fmt"
	"math"

	json "github.com/goccy/go-json"

	"github.com/isabella232/hydrator-plugins/record"
	"github.com/isabella232/hydrator-plugins/schema"
)

// Conversion errors. Callers match with errors.Is.
var (
	ErrMismatch   = errors.New("value does not match schema")
	ErrOutOfRange = errors.New("numeric value out of range")
)

// getter is the read side of a decoded record, satisfied by both
// record.StructuredRecord and avro generic records.
type getter interface {
	Get(name string) any
}

// Converter converts values against a schema. When ConvertField is set it is
// invoked instead of Convert for every nested field and element, letting the
// owner layer extra per-field checks (the avro transformer's date-time
// validation) over the general coercion.
type Converter struct {
	ConvertField func(v any, s *schema.Schema) (any, error)
}

func (c *Converter) field(v any, s *schema.Schema) (any, error) {
	if c.ConvertField != nil {
		return c.ConvertField(v, s)
	}
	return c.Convert(v, s)
}

// Convert coerces v to the shape s declares.
func (c *Converter) Convert(v any, s *schema.Schema) (any, error) {
	switch s.Kind() {
	case schema.Null:
		if v != nil {
			return nil, mismatch(v, s)
		}
		return nil, nil
	case schema.Boolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return nil, mismatch(v, s)
	case schema.Int:
		return convertInt(v, s)
	case schema.Long:
		return convertLong(v, s)
	case schema.Float:
		return convertFloat(v, s)
	case schema.Double:
		return convertDouble(v, s)
	case schema.Bytes:
		switch t := v.(type) {
		case []byte:
			return t, nil
		case string:
			return []byte(t), nil
		}
		return nil, mismatch(v, s)
	case schema.String:
		if str, ok := v.(string); ok {
			return str, nil
		}
		return nil, mismatch(v, s)
	case schema.Enum:
		return convertEnum(v, s)
	case schema.Array:
		return c.convertArray(v, s)
	case schema.Map:
		return c.convertMap(v, s)
	case schema.Record:
		return c.convertRecord(v, s)
	case schema.Union:
		return c.convertUnion(v, s)
	default:
		return nil, mismatch(v, s)
	}
}

func (c *Converter) convertArray(v any, s *schema.Schema) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, mismatch(v, s)
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		converted, err := c.field(item, s.Items())
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func (c *Converter) convertMap(v any, s *schema.Schema) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, mismatch(v, s)
	}
	out := make(map[string]any, len(m))
	for k, mv := range m {
		converted, err := c.field(mv, s.Values())
		if err != nil {
			return nil, err
		}
		out[k] = converted
	}
	return out, nil
}

func (c *Converter) convertRecord(v any, s *schema.Schema) (any, error) {
	var get func(name string) any
	switch t := v.(type) {
	case map[string]any:
		get = func(name string) any { return t[name] }
	case getter:
		get = t.Get
	default:
		return nil, mismatch(v, s)
	}
	b, err := record.NewBuilder(s)
	if err != nil {
		return nil, err
	}
	for _, f := range s.Fields() {
		converted, err := c.field(get(f.Name), f.Schema)
		if err != nil {
			return nil, err
		}
		if err := b.Set(f.Name, converted); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func (c *Converter) convertUnion(v any, s *schema.Schema) (any, error) {
	if v == nil {
		if s.IsNullable() {
			return nil, nil
		}
		return nil, mismatch(v, s)
	}
	for _, alt := range s.Types() {
		if alt.Kind() == schema.Null {
			continue
		}
		if converted, err := c.Convert(v, alt); err == nil {
			return converted, nil
		}
	}
	return nil, mismatch(v, s)
}

func convertEnum(v any, s *schema.Schema) (any, error) {
	sym, ok := v.(string)
	if !ok {
		return nil, mismatch(v, s)
	}
	for _, known := range s.Symbols() {
		if known == sym {
			return sym, nil
		}
	}
	return nil, fmt.Errorf("convert: %q is not a symbol of enum %q: %w", sym, s.Name(), ErrMismatch)
}

func convertInt(v any, s *schema.Schema) (any, error) {
	n, err := convertLong(v, s)
	if err != nil {
		return nil, err
	}
	i := n.(int64)
	if i < math.MinInt32 || i > math.MaxInt32 {
		return nil, fmt.Errorf("convert: %d does not fit an int: %w", i, ErrOutOfRange)
	}
	return int32(i), nil
}

func convertLong(v any, s *schema.Schema) (any, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		if t != math.Trunc(t) {
			return nil, mismatch(v, s)
		}
		return int64(t), nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return nil, fmt.Errorf("convert: %q is not an integer: %w", t.String(), ErrMismatch)
		}
		return i, nil
	}
	return nil, mismatch(v, s)
}

func convertFloat(v any, s *schema.Schema) (any, error) {
	d, err := convertDouble(v, s)
	if err != nil {
		return nil, err
	}
	return float32(d.(float64)), nil
}

func convertDouble(v any, s *schema.Schema) (any, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("convert: %q is not a number: %w", t.String(), ErrMismatch)
		}
		return f, nil
	}
	return nil, mismatch(v, s)
}

func mismatch(v any, s *schema.Schema) error {
	return fmt.Errorf("convert: cannot convert %T value to %s schema: %w", v, s.Kind(), ErrMismatch)
}
