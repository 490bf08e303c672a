// Package schema provides the pipeline's internal schema representation.
//
// A Schema is produced by parsing the JSON form of a fully-rewritten Avro
// schema (see the avro package) and is immutable once constructed. Named
// records and enums may reference themselves or each other by name; the
// parser resolves such references to the already-constructed definition, so
// recursive schemas form a finite graph rather than an infinite tree.
package schema

// Kind identifies a schema node type.
type Kind int

const (
	Null Kind = iota
	Boolean
	Int
	Long
	Float
	Double
	Bytes
	String
	Enum
	Array
	Map
	Record
	Union
)

var kindNames = map[Kind]string{
	Null:    "null",
	Boolean: "boolean",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	Bytes:   "bytes",
	String:  "string",
	Enum:    "enum",
	Array:   "array",
	Map:     "map",
	Record:  "record",
	Union:   "union",
}

func (k Kind) String() string { return kindNames[k] }

// LogicalType refines a primitive kind's interpretation.
type LogicalType string

const (
	LogicalNone            LogicalType = ""
	LogicalDate            LogicalType = "date"
	LogicalTimeMillis      LogicalType = "time-millis"
	LogicalTimeMicros      LogicalType = "time-micros"
	LogicalTimestampMillis LogicalType = "timestamp-millis"
	LogicalTimestampMicros LogicalType = "timestamp-micros"
	LogicalDatetime        LogicalType = "datetime"
	LogicalDecimal         LogicalType = "decimal"
)

// Schema is one node of the internal schema graph.
type Schema struct {
	kind    Kind
	name    string // qualified name, records and enums only
	logical LogicalType

	fields  []*Field  // Record
	symbols []string  // Enum
	items   *Schema   // Array
	keys    *Schema   // Map
	values  *Schema   // Map
	union   []*Schema // Union
}

// Field is a named slot of a record schema.
type Field struct {
	Name   string
	Schema *Schema
}

func (s *Schema) Kind() Kind           { return s.kind }
func (s *Schema) Name() string         { return s.name }
func (s *Schema) Logical() LogicalType { return s.logical }

// Fields returns a record's fields in declaration order.
func (s *Schema) Fields() []*Field { return s.fields }

// Field returns the named field, or nil when the schema is not a record or
// declares no such field.
func (s *Schema) Field(name string) *Field {
	for _, f := range s.fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Symbols returns an enum's symbols in declaration order.
func (s *Schema) Symbols() []string { return s.symbols }

// Items returns an array's element schema.
func (s *Schema) Items() *Schema { return s.items }

// Keys returns a map's key schema.
func (s *Schema) Keys() *Schema { return s.keys }

// Values returns a map's value schema.
func (s *Schema) Values() *Schema { return s.values }

// Types returns a union's alternatives in declaration order.
func (s *Schema) Types() []*Schema { return s.union }

// IsNullable reports whether the schema is a union with a null alternative.
func (s *Schema) IsNullable() bool {
	if s.kind != Union {
		return false
	}
	for _, t := range s.union {
		if t.kind == Null {
			return true
		}
	}
	return false
}

// NonNullable unwraps a simple nullable union (null plus one alternative) to
// the non-null alternative. Any other schema is returned unchanged.
func (s *Schema) NonNullable() *Schema {
	if !s.IsNullable() || len(s.union) != 2 {
		return s
	}
	for _, t := range s.union {
		if t.kind != Null {
			return t
		}
	}
	return s
}
