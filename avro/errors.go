package avro

import (
	"errors"
	"fmt"
)

// Error codes carried by Error. The surrounding pipeline routes on these:
// schema errors are fatal to the conversion call, format errors are fatal to
// the single record being converted.
const (
	CodeSchemaParse      = "schema_parse"      // malformed raw avro schema text
	CodeSchemaConversion = "schema_conversion" // rewritten schema rejected by the internal parser
	CodeInvalidFormat    = "invalid_format"    // field value violates its logical type's textual format
)

// Error is a code-tagged conversion error.
type Error struct {
	Code    string
	Field   string // offending field name, when known
	Value   string // offending raw value, when known
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("avro: %s: %s", e.Code, e.Message)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q)", e.Field)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}
