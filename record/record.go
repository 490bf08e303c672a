// Package record provides the structured record produced by the record
// transformation pipeline, together with its builder.
package record

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/isabella232/hydrator-plugins/schema"
)

// Builder validation errors.
var (
	ErrNotRecord    = errors.New("schema is not a record")
	ErrUnknownField = errors.New("field is not declared in the schema")
	ErrMissingField = errors.New("no value for non-nullable field")
)

// StructuredRecord pairs a record schema with one converted value per field.
// It is immutable once built.
type StructuredRecord struct {
	schema *schema.Schema
	values map[string]any
}

// Schema returns the record's schema.
func (r *StructuredRecord) Schema() *schema.Schema { return r.schema }

// Get returns the value of the named field, or nil when the field was never
// set or is not declared.
func (r *StructuredRecord) Get(name string) any { return r.values[name] }

// MarshalJSON renders the record's field values as a JSON object. Fields that
// were never set are omitted.
func (r *StructuredRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.values))
	for _, f := range r.schema.Fields() {
		if v, ok := r.values[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return json.Marshal(out)
}

// Builder assembles a StructuredRecord one field at a time.
type Builder struct {
	schema *schema.Schema
	values map[string]any
	set    map[string]bool
}

// NewBuilder returns a builder for the given record schema.
func NewBuilder(s *schema.Schema) (*Builder, error) {
	if s == nil || s.Kind() != schema.Record {
		return nil, ErrNotRecord
	}
	return &Builder{
		schema: s,
		values: make(map[string]any, len(s.Fields())),
		set:    make(map[string]bool, len(s.Fields())),
	}, nil
}

// Set assigns a value to a declared field.
func (b *Builder) Set(name string, v any) error {
	if b.schema.Field(name) == nil {
		return fmt.Errorf("record %q: %w: %q", b.schema.Name(), ErrUnknownField, name)
	}
	b.values[name] = v
	b.set[name] = true
	return nil
}

// Build finalizes the record. Every field whose schema does not admit null
// must have been set.
func (b *Builder) Build() (*StructuredRecord, error) {
	for _, f := range b.schema.Fields() {
		if b.set[f.Name] {
			continue
		}
		k := f.Schema.Kind()
		if k != schema.Null && !f.Schema.IsNullable() {
			return nil, fmt.Errorf("record %q: %w: %q", b.schema.Name(), ErrMissingField, f.Name)
		}
	}
	values := make(map[string]any, len(b.values))
	for k, v := range b.values {
		values[k] = v
	}
	return &StructuredRecord{schema: b.schema, values: values}, nil
}
