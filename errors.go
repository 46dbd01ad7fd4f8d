package posarray

import (
	"fmt"
	"reflect"

	"github.com/chaisql/posarray/internal/schema"
)

// SchemaError is returned when a type cannot be used as a positional record:
// it is not a struct, a "pos" tag is malformed, an index is negative or a codec is unknown.
// It is detected the first time the type is used or registered.
type SchemaError = schema.Error

// FormatError is returned when the input is not positioned on an array.
type FormatError struct {
	Offset int
	Found  string
	Msg    string
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "expected array"
	}

	return fmt.Sprintf("posarray: %s at offset %d, found %s", msg, e.Offset, e.Found)
}

// UnsupportedTokenError is returned when an element of the array cannot be
// read as null, a boolean, a string, a number or an object.
type UnsupportedTokenError struct {
	Index  int
	Offset int
	Found  string
}

func (e *UnsupportedTokenError) Error() string {
	return fmt.Sprintf("posarray: unsupported token at index %d (offset %d): %s", e.Index, e.Offset, e.Found)
}

// ConversionError is returned when a value cannot be converted to or from
// the type of the field it belongs to.
type ConversionError struct {
	Index int
	Field string
	Value string
	Type  reflect.Type
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("posarray: cannot convert %s at index %d into %s (%s): %v", e.Value, e.Index, e.Field, e.Type, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// InvalidUnmarshalError describes an invalid argument passed to Unmarshal.
type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "posarray: Unmarshal(nil)"
	}

	if e.Type.Kind() != reflect.Ptr {
		return "posarray: Unmarshal(non-pointer " + e.Type.String() + ")"
	}

	return "posarray: Unmarshal(nil " + e.Type.String() + ")"
}

func excerpt(raw []byte) string {
	const max = 32
	if len(raw) <= max {
		return string(raw)
	}

	return string(raw[:max]) + "..."
}
