package avro

import (
	"fmt"
	"time"

	"github.com/isabella232/hydrator-plugins/convert"
	"github.com/isabella232/hydrator-plugins/record"
	"github.com/isabella232/hydrator-plugins/schema"
)

// TransformerOpt configures a Transformer.
type TransformerOpt struct {
	// SkipDatetimeValidation disables the ISO-8601 check on datetime fields.
	SkipDatetimeValidation bool
}

// Transformer converts avro generic records into structured records. Field
// values are coerced by a general converter; fields tagged with the datetime
// logical type are additionally validated as ISO-8601 local date-times before
// conversion. Like the Normalizer it owns, a Transformer serves one worker.
type Transformer struct {
	normalizer       *Normalizer
	converter        *convert.Converter
	validateDatetime bool
}

// NewTransformer returns a Transformer with an empty schema cache. The last
// option wins when several are given.
func NewTransformer(opts ...TransformerOpt) *Transformer {
	var opt TransformerOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	t := &Transformer{
		normalizer:       NewNormalizer(),
		validateDatetime: !opt.SkipDatetimeValidation,
	}
	t.converter = &convert.Converter{ConvertField: t.convertField}
	return t
}

// Normalizer exposes the transformer's schema normalizer so callers can
// derive the internal schema themselves, e.g. to pass a fixed schema to
// TransformWithSchema for every record of a batch.
func (t *Transformer) Normalizer() *Normalizer { return t.normalizer }

// Transform converts rec using the internal schema derived from the record's
// own avro schema.
func (t *Transformer) Transform(rec GenericRecord) (*record.StructuredRecord, error) {
	s, err := t.normalizer.Normalize(rec.SchemaJSON())
	if err != nil {
		return nil, err
	}
	return t.TransformWithSchema(rec, s)
}

// TransformWithSchema converts every field declared by s, in declaration
// order, and returns the finished record. Conversion errors propagate
// unwrapped.
func (t *Transformer) TransformWithSchema(rec GenericRecord, s *schema.Schema) (*record.StructuredRecord, error) {
	b, err := t.transformInto(rec, s, "")
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// TransformSkipping converts every field except skipField and returns the
// open builder. Callers that inject the skipped field themselves (a surrogate
// key, a file offset column) set it and finalize.
func (t *Transformer) TransformSkipping(rec GenericRecord, s *schema.Schema, skipField string) (*record.Builder, error) {
	return t.transformInto(rec, s, skipField)
}

func (t *Transformer) transformInto(rec GenericRecord, s *schema.Schema, skipField string) (*record.Builder, error) {
	b, err := record.NewBuilder(s)
	if err != nil {
		return nil, err
	}
	for _, f := range s.Fields() {
		if skipField != "" && f.Name == skipField {
			continue
		}
		v, err := t.convertField(rec.Get(f.Name), f.Schema)
		if err != nil {
			return nil, fieldError(err, f.Name)
		}
		if err := b.Set(f.Name, v); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// convertField validates datetime-tagged values first, then falls through to
// the general converter. It is also the converter's per-field hook, so nested
// record fields and collection elements receive the same validation.
func (t *Transformer) convertField(v any, fs *schema.Schema) (any, error) {
	if t.validateDatetime && v != nil && isDatetime(fs) {
		if err := validateDatetime(v); err != nil {
			return nil, err
		}
	}
	return t.converter.Convert(v, fs)
}

func isDatetime(s *schema.Schema) bool {
	if s.Logical() == schema.LogicalDatetime {
		return true
	}
	return s.IsNullable() && s.NonNullable().Logical() == schema.LogicalDatetime
}

// Layouts accepted for datetime values: ISO-8601 local date-times, seconds
// and fractional seconds optional.
var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

func parseLocalDateTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range localDateTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func validateDatetime(v any) error {
	s := fmt.Sprint(v)
	if _, err := parseLocalDateTime(s); err != nil {
		return &Error{
			Code:    CodeInvalidFormat,
			Value:   s,
			Message: fmt.Sprintf("datetime value %q is not in ISO-8601 format", s),
			Cause:   err,
		}
	}
	return nil
}

// fieldError attaches the field name to code-tagged errors that lack one.
// Other conversion errors propagate untouched.
func fieldError(err error, name string) error {
	if ae, ok := err.(*Error); ok && ae.Field == "" {
		withField := *ae
		withField.Field = name
		return &withField
	}
	return err
}
