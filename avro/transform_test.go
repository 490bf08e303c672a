package avro_test

import (
	"errors"
	"testing"

	"github.com/isabella232/hydrator-plugins/avro"
)

var orderSchema = []byte(`{"type":"record","name":"Order","fields":[
	{"name":"id","type":"long"},
	{"name":"item","type":"string"},
	{"name":"placed","type":{"type":"string","logicalType":"datetime"}}]}`)

func TestTransform_DatetimeValid(t *testing.T) {
	rec := avro.NewRecord(orderSchema, map[string]any{
		"id":     float64(7),
		"item":   "book",
		"placed": "2024-01-15T10:30:00",
	})

	out, err := avro.NewTransformer().Transform(rec)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if got := out.Get("placed"); got != "2024-01-15T10:30:00" {
		t.Fatalf("expected validated value forwarded unchanged, got %v", got)
	}
	if got := out.Get("id"); got != int64(7) {
		t.Fatalf("expected id converted to int64, got %T %v", got, got)
	}
}

func TestTransform_DatetimeInvalid(t *testing.T) {
	rec := avro.NewRecord(orderSchema, map[string]any{
		"id":     float64(7),
		"item":   "book",
		"placed": "not-a-date",
	})

	_, err := avro.NewTransformer().Transform(rec)
	if !avro.IsCode(err, avro.CodeInvalidFormat) {
		t.Fatalf("expected %s error, got %v", avro.CodeInvalidFormat, err)
	}
	var ae *avro.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *avro.Error, got %T", err)
	}
	if ae.Value != "not-a-date" {
		t.Fatalf("error must carry the offending value, got %q", ae.Value)
	}
	if ae.Field != "placed" {
		t.Fatalf("error must carry the field name, got %q", ae.Field)
	}
}

func TestTransform_DatetimeVariants(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"2024-01-15T10:30:00", true},
		{"2024-01-15T10:30", true},
		{"2024-01-15T10:30:00.123456", true},
		{"2024-01-15 10:30:00", false},
		{"2024-01-15T10:30:00Z", false},
		{"2024-13-01T10:30:00", false},
	}
	tr := avro.NewTransformer()
	for _, tt := range tests {
		rec := avro.NewRecord(orderSchema, map[string]any{
			"id": float64(1), "item": "x", "placed": tt.value,
		})
		_, err := tr.Transform(rec)
		if tt.ok && err != nil {
			t.Errorf("%q: unexpected error %v", tt.value, err)
		}
		if !tt.ok && !avro.IsCode(err, avro.CodeInvalidFormat) {
			t.Errorf("%q: expected %s error, got %v", tt.value, avro.CodeInvalidFormat, err)
		}
	}
}

func TestTransform_NullableDatetime(t *testing.T) {
	schemaText := []byte(`{"type":"record","name":"Evt","fields":[
		{"name":"ts","type":["null",{"type":"string","logicalType":"datetime"}]}]}`)
	tr := avro.NewTransformer()

	out, err := tr.Transform(avro.NewRecord(schemaText, map[string]any{"ts": nil}))
	if err != nil {
		t.Fatalf("null datetime must pass: %v", err)
	}
	if out.Get("ts") != nil {
		t.Fatalf("expected nil, got %v", out.Get("ts"))
	}

	_, err = tr.Transform(avro.NewRecord(schemaText, map[string]any{"ts": "bogus"}))
	if !avro.IsCode(err, avro.CodeInvalidFormat) {
		t.Fatalf("expected %s error, got %v", avro.CodeInvalidFormat, err)
	}
}

func TestTransform_SkipDatetimeValidationOpt(t *testing.T) {
	rec := avro.NewRecord(orderSchema, map[string]any{
		"id": float64(1), "item": "x", "placed": "not-a-date",
	})
	tr := avro.NewTransformer(avro.TransformerOpt{SkipDatetimeValidation: true})
	out, err := tr.Transform(rec)
	if err != nil {
		t.Fatalf("validation disabled, expected success: %v", err)
	}
	if out.Get("placed") != "not-a-date" {
		t.Fatalf("expected raw value forwarded, got %v", out.Get("placed"))
	}
}

func TestTransformSkipping(t *testing.T) {
	schemaText := []byte(`{"type":"record","name":"Evt","fields":[
		{"name":"id","type":"long"},
		{"name":"name","type":"string"}]}`)
	tr := avro.NewTransformer()
	s, err := tr.Normalizer().Normalize(schemaText)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	full := avro.NewRecord(schemaText, map[string]any{"id": float64(7), "name": "seven"})
	want, err := tr.TransformWithSchema(full, s)
	if err != nil {
		t.Fatalf("TransformWithSchema failed: %v", err)
	}

	b, err := tr.TransformSkipping(full, s, "id")
	if err != nil {
		t.Fatalf("TransformSkipping failed: %v", err)
	}
	// Finalizing without the skipped field must fail: id is required.
	if _, err := b.Build(); err == nil {
		t.Fatalf("expected Build to fail while id is unset")
	}
	if err := b.Set("id", int64(7)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, name := range []string{"id", "name"} {
		if got.Get(name) != want.Get(name) {
			t.Fatalf("field %q: got %v, want %v", name, got.Get(name), want.Get(name))
		}
	}
}

func TestTransform_NestedRecordDatetime(t *testing.T) {
	schemaText := []byte(`{"type":"record","name":"Evt","fields":[
		{"name":"meta","type":{"type":"record","name":"Meta","fields":[
			{"name":"created","type":{"type":"string","logicalType":"datetime"}}]}}]}`)
	rec := avro.NewRecord(schemaText, map[string]any{
		"meta": map[string]any{"created": "bad"},
	})
	_, err := avro.NewTransformer().Transform(rec)
	if !avro.IsCode(err, avro.CodeInvalidFormat) {
		t.Fatalf("nested datetime must be validated, got %v", err)
	}
}
