package convert_test

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/isabella232/hydrator-plugins/convert"
	"github.com/isabella232/hydrator-plugins/record"
	"github.com/isabella232/hydrator-plugins/schema"
)

func mustSchema(t *testing.T, text string) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(text))
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", text, err)
	}
	return s
}

func TestConvert_Primitives(t *testing.T) {
	c := &convert.Converter{}
	tests := []struct {
		text string
		in   any
		want any
	}{
		{`"boolean"`, true, true},
		{`"int"`, float64(41), int32(41)},
		{`"int"`, json.Number("42"), int32(42)},
		{`"long"`, float64(43), int64(43)},
		{`"long"`, int64(44), int64(44)},
		{`"float"`, float64(1.5), float32(1.5)},
		{`"double"`, float64(2.5), float64(2.5)},
		{`"double"`, json.Number("2.25"), float64(2.25)},
		{`"string"`, "hello", "hello"},
		{`"null"`, nil, nil},
	}
	for _, tt := range tests {
		got, err := c.Convert(tt.in, mustSchema(t, tt.text))
		if err != nil {
			t.Errorf("Convert(%v, %s) failed: %v", tt.in, tt.text, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Convert(%v, %s) = %T %v, want %T %v", tt.in, tt.text, got, got, tt.want, tt.want)
		}
	}
}

func TestConvert_Mismatches(t *testing.T) {
	c := &convert.Converter{}
	tests := []struct {
		text string
		in   any
	}{
		{`"boolean"`, "yes"},
		{`"int"`, 1.5},
		{`"int"`, "1"},
		{`"string"`, 1},
		{`"null"`, 0},
	}
	for _, tt := range tests {
		if _, err := c.Convert(tt.in, mustSchema(t, tt.text)); !errors.Is(err, convert.ErrMismatch) {
			t.Errorf("Convert(%v, %s): expected ErrMismatch, got %v", tt.in, tt.text, err)
		}
	}
}

func TestConvert_IntOutOfRange(t *testing.T) {
	c := &convert.Converter{}
	if _, err := c.Convert(float64(1<<33), mustSchema(t, `"int"`)); !errors.Is(err, convert.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestConvert_Bytes(t *testing.T) {
	c := &convert.Converter{}
	got, err := c.Convert("raw", mustSchema(t, `"bytes"`))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if string(got.([]byte)) != "raw" {
		t.Fatalf("expected bytes \"raw\", got %v", got)
	}
}

func TestConvert_Enum(t *testing.T) {
	s := mustSchema(t, `{"type":"enum","name":"Color","symbols":["RED","BLUE"]}`)
	c := &convert.Converter{}
	if got, err := c.Convert("RED", s); err != nil || got != "RED" {
		t.Fatalf("Convert(RED) = %v, %v", got, err)
	}
	if _, err := c.Convert("GREEN", s); !errors.Is(err, convert.ErrMismatch) {
		t.Fatalf("expected ErrMismatch for unknown symbol, got %v", err)
	}
}

func TestConvert_Array(t *testing.T) {
	s := mustSchema(t, `{"type":"array","items":"int"}`)
	c := &convert.Converter{}
	got, err := c.Convert([]any{float64(1), float64(2)}, s)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	items := got.([]any)
	if len(items) != 2 || items[0] != int32(1) || items[1] != int32(2) {
		t.Fatalf("unexpected items %v", items)
	}
}

func TestConvert_Map(t *testing.T) {
	s := mustSchema(t, `{"type":"map","keys":"string","values":"long"}`)
	c := &convert.Converter{}
	got, err := c.Convert(map[string]any{"a": float64(1)}, s)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	m := got.(map[string]any)
	if m["a"] != int64(1) {
		t.Fatalf("unexpected map %v", m)
	}
}

func TestConvert_Union(t *testing.T) {
	s := mustSchema(t, `["null","long"]`)
	c := &convert.Converter{}
	if got, err := c.Convert(nil, s); err != nil || got != nil {
		t.Fatalf("Convert(nil) = %v, %v", got, err)
	}
	if got, err := c.Convert(float64(9), s); err != nil || got != int64(9) {
		t.Fatalf("Convert(9) = %v, %v", got, err)
	}
	if _, err := c.Convert(nil, mustSchema(t, `["string","long"]`)); !errors.Is(err, convert.ErrMismatch) {
		t.Fatalf("expected ErrMismatch for null on non-nullable union, got %v", err)
	}
}

func TestConvert_NestedRecord(t *testing.T) {
	s := mustSchema(t, `{"type":"record","name":"R","fields":[
		{"name":"inner","type":{"type":"record","name":"I","fields":[
			{"name":"x","type":"int"}]}}]}`)
	c := &convert.Converter{}
	got, err := c.Convert(map[string]any{"inner": map[string]any{"x": float64(3)}}, s)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	r := got.(*record.StructuredRecord)
	inner := r.Get("inner").(*record.StructuredRecord)
	if inner.Get("x") != int32(3) {
		t.Fatalf("expected inner.x = 3, got %v", inner.Get("x"))
	}
}

func TestConvert_ConvertFieldHookSeesNestedValues(t *testing.T) {
	s := mustSchema(t, `{"type":"record","name":"R","fields":[
		{"name":"tags","type":{"type":"array","items":"string"}}]}`)
	var seen []any
	c := &convert.Converter{}
	c.ConvertField = func(v any, fs *schema.Schema) (any, error) {
		seen = append(seen, v)
		return c.Convert(v, fs)
	}
	if _, err := c.Convert(map[string]any{"tags": []any{"a", "b"}}, s); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	// The field value plus each array element.
	if len(seen) != 3 {
		t.Fatalf("expected hook to see 3 values, saw %d: %v", len(seen), seen)
	}
}
