package avro

// Package avro converts avro schemas and generic records into the pipeline's
// internal representation.
//
// - Normalizer rewrites a raw avro schema so that named-type references are
//   inlined, map keys are explicitly string-typed, and the result parses as
//   an internal schema. Results are cached per canonical schema text.
// - Transformer converts generic records field by field against the
//   normalized schema, validating datetime-tagged values as ISO-8601 local
//   date-times before general coercion.
//
// Design policy:
// - The named-type registry lives for one Normalize call; nothing leaks
//   between unrelated schemas.
// - Instances are single-worker; the pipeline allocates one per parallel
//   processing unit.
//
// Typical usage:
//
//	t := avro.NewTransformer()
//	out, err := t.Transform(rec)
//
//	s, err := t.Normalizer().Normalize(schemaText)
//	out, err = t.TransformWithSchema(rec, s)
