// Package schema builds and caches the positional layout of struct types.
//
// A layout is derived once per type, either from the "pos" struct tags or from
// an explicit registration table, and shared by every encode and decode call
// for the lifetime of the process.
package schema

import (
	"encoding/json"
	"math/big"
	"reflect"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// TagKey is the struct tag holding the position of a field.
const TagKey = "pos"

// IndexLimit is the highest index a field can declare.
const IndexLimit = 1<<16 - 1

// FieldDescriptor describes how one struct field maps to a position of the wire array.
type FieldDescriptor struct {
	// Index is the position of the field in the array.
	Index int
	// Name of the Go struct field.
	Name string
	// Path is the reflect index sequence leading to the field,
	// including embedded structs.
	Path []int
	// Type is the declared type of the field.
	Type reflect.Type
	// Elem is Type with one pointer level stripped.
	Elem reflect.Type
	// Codec is an optional nested codec used for this field.
	Codec any
	// Ambient forces the field through the general purpose serializer.
	Ambient bool
	// Simple reports whether Elem is eligible for the encoding fast path.
	Simple bool
}

// Optional reports whether the declared type is a pointer.
func (f *FieldDescriptor) Optional() bool {
	return f.Type.Kind() == reflect.Ptr
}

// Schema is the ordered list of field descriptors of a struct type.
type Schema struct {
	Type reflect.Type
	// Fields sorted by Index. Fields sharing an index keep their declaration order.
	Fields []FieldDescriptor
	// MaxIndex is the highest declared index, -1 if the type has no positional field.
	MaxIndex int

	// spans[i] delimits the fields declared at index i.
	spans []span
}

type span struct {
	start, end int
}

// At returns the fields declared at index i.
func (s *Schema) At(i int) []FieldDescriptor {
	if i < 0 || i >= len(s.spans) {
		return nil
	}

	sp := s.spans[i]
	return s.Fields[sp.start:sp.end]
}

type entry struct {
	schema *Schema
	err    error
}

var cache sync.Map // map[reflect.Type]entry

// Of returns the schema of t, building it on first use.
// Pointer types are dereferenced once.
// Build errors are cached as well and returned on every call.
func Of(t reflect.Type) (*Schema, error) {
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if e, ok := cache.Load(t); ok {
		return e.(entry).schema, e.(entry).err
	}

	s, err := build(t)
	e, _ := cache.LoadOrStore(t, entry{schema: s, err: err})
	return e.(entry).schema, e.(entry).err
}

// Load returns the schema of t only if it was already built.
func Load(t reflect.Type) (*Schema, bool) {
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	e, ok := cache.Load(t)
	if !ok || e.(entry).err != nil {
		return nil, false
	}

	return e.(entry).schema, true
}

func build(t reflect.Type) (*Schema, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, newError(t, "", "positional records must be structs")
	}

	var fields []FieldDescriptor
	for _, sf := range reflect.VisibleFields(t) {
		if sf.Anonymous || !sf.IsExported() {
			continue
		}

		tag, ok := sf.Tag.Lookup(TagKey)
		if !ok || tag == "-" {
			continue
		}

		opts, err := parseTag(tag)
		if err != nil {
			return nil, newError(t, sf.Name, err.Error())
		}

		var c any
		if opts.codec != "" {
			c, ok = lookupCodec(opts.codec)
			if !ok {
				return nil, newError(t, sf.Name, "unknown codec "+opts.codec)
			}
		}

		fields = append(fields, newDescriptor(sf, opts.index, c, opts.ambient))
	}

	return newSchema(t, fields), nil
}

func newDescriptor(sf reflect.StructField, index int, c any, ambient bool) FieldDescriptor {
	elem := sf.Type
	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}

	return FieldDescriptor{
		Index:   index,
		Name:    sf.Name,
		Path:    sf.Index,
		Type:    sf.Type,
		Elem:    elem,
		Codec:   c,
		Ambient: ambient,
		Simple:  IsSimple(sf.Type),
	}
}

func newSchema(t reflect.Type, fields []FieldDescriptor) *Schema {
	slices.SortStableFunc(fields, func(a, b FieldDescriptor) int {
		return a.Index - b.Index
	})

	s := Schema{
		Type:     t,
		Fields:   fields,
		MaxIndex: -1,
	}
	if len(fields) == 0 {
		return &s
	}

	s.MaxIndex = fields[len(fields)-1].Index
	s.spans = make([]span, s.MaxIndex+1)
	for i := 0; i < len(fields); {
		j := i
		for j < len(fields) && fields[j].Index == fields[i].Index {
			j++
		}
		s.spans[fields[i].Index] = span{start: i, end: j}
		i = j
	}

	return &s
}

var (
	decimalType    = reflect.TypeOf(decimal.Decimal{})
	bigIntType     = reflect.TypeOf(big.Int{})
	bigFloatType   = reflect.TypeOf(big.Float{})
	jsonNumberType = reflect.TypeOf(json.Number(""))
)

// IsSimple reports whether t, after stripping one pointer level, is a boolean,
// a numeric or enumerated kind, a string or an arbitrary-precision decimal.
func IsSimple(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t {
	case decimalType, bigIntType, bigFloatType, jsonNumberType:
		return true
	}

	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}

	return false
}

// Error is returned when a struct type cannot be turned into a schema.
type Error struct {
	Type  reflect.Type
	Field string
	Msg   string
}

func newError(t reflect.Type, field, msg string) error {
	return errors.WithStack(&Error{Type: t, Field: field, Msg: msg})
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "posarray: invalid schema for " + typeName(e.Type) + ": " + e.Msg
	}

	return "posarray: invalid schema for " + typeName(e.Type) + "." + e.Field + ": " + e.Msg
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}

	return t.String()
}
