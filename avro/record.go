package avro

// GenericRecord is the view of a decoded avro record the transformer needs:
// field access by name and the record's schema in its canonical JSON form.
// Avro decoder bindings satisfy it directly or through a thin adapter.
type GenericRecord interface {
	// Get returns the raw value of the named field, or nil when absent.
	Get(name string) any
	// SchemaJSON renders the record's avro schema as canonical JSON text.
	SchemaJSON() []byte
}

// Record is a map-backed GenericRecord, useful for decoders that produce
// generic values and for tests.
type Record struct {
	schemaJSON []byte
	values     map[string]any
}

// NewRecord pairs a canonical schema text with its decoded field values.
func NewRecord(schemaJSON []byte, values map[string]any) *Record {
	return &Record{schemaJSON: schemaJSON, values: values}
}

func (r *Record) Get(name string) any { return r.values[name] }

func (r *Record) SchemaJSON() []byte { return r.schemaJSON }
