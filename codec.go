package posarray

import (
	"reflect"

	"github.com/chaisql/posarray/internal/schema"
	"github.com/chaisql/posarray/internal/wire"
	"github.com/cockroachdb/errors"
)

// A Codec encodes and decodes the value of a field in place of the built-in rules.
//
// MarshalPositional receives the field value. UnmarshalPositional receives the raw
// JSON of the array element and a pointer to the field.
// cfg is the configuration derived for the codec by Config.Scoped.
//
// Codecs are used as map keys and must be comparable.
type Codec interface {
	MarshalPositional(v any, cfg *Config) ([]byte, error)
	UnmarshalPositional(data []byte, v any, cfg *Config) error
}

// ArrayCodec is the positional codec itself, usable for fields
// holding another positional record.
type ArrayCodec struct{}

// MarshalPositional encodes v as a positional array.
func (ArrayCodec) MarshalPositional(v any, cfg *Config) ([]byte, error) {
	return cfg.Marshal(v)
}

// UnmarshalPositional decodes a positional array into v.
func (ArrayCodec) UnmarshalPositional(data []byte, v any, cfg *Config) error {
	return cfg.Unmarshal(data, v)
}

// ListCodec encodes a slice of positional records as an array of arrays,
// like the levels of an order book: [[price, size], [price, size]].
type ListCodec struct{}

// MarshalPositional encodes the slice v.
func (ListCodec) MarshalPositional(v any, cfg *Config) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || ((rv.Kind() == reflect.Slice || rv.Kind() == reflect.Ptr) && rv.IsNil()) {
		return []byte("null"), nil
	}
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.Newf("posarray: ListCodec cannot encode %s", rv.Type())
	}

	w := getWriter()
	w.BeginArray()
	for i := 0; i < rv.Len(); i++ {
		if err := cfg.encode(w, rv.Index(i)); err != nil {
			writerPool.Put(w)
			return nil, errors.Wrapf(err, "element %d", i)
		}
	}
	w.EndArray()

	return putWriter(w), nil
}

// UnmarshalPositional decodes an array of records into the slice pointed to by v.
func (ListCodec) UnmarshalPositional(data []byte, v any, cfg *Config) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return errors.WithStack(&InvalidUnmarshalError{Type: reflect.TypeOf(v)})
	}

	slice := rv.Elem()
	r := wire.NewReader(data)
	if r.Peek() == wire.Null {
		slice.Set(reflect.Zero(slice.Type()))
		return nil
	}

	if err := r.BeginArray(); err != nil {
		return errors.WithStack(&FormatError{Offset: r.Offset(), Found: r.Found()})
	}

	out := reflect.MakeSlice(slice.Type(), 0, 0)
	for i := 0; ; i++ {
		more, err := r.More()
		if err != nil {
			return tokenError(err, i, r)
		}
		if !more {
			break
		}

		el, err := r.Next()
		if err != nil {
			return tokenError(err, i, r)
		}

		elem := reflect.New(slice.Type().Elem())
		if err := cfg.Unmarshal(el.Raw, elem.Interface()); err != nil {
			return errors.Wrapf(err, "element %d", i)
		}
		out = reflect.Append(out, elem.Elem())
	}

	slice.Set(out)
	return nil
}

func init() {
	RegisterCodec("array", ArrayCodec{})
	RegisterCodec("list", ListCodec{})
}

// RegisterCodec makes c available to struct tags under the given name:
//
//	Bids []Level `pos:"1,codec=list"`
//
// The "array" and "list" names are registered by default.
// It panics if the name is already used or if c is not comparable.
func RegisterCodec(name string, c Codec) {
	schema.RegisterCodec(name, c)
}

// Field declares the position of a struct field for Register.
type Field struct {
	// Name of the Go struct field.
	Name string
	// Index in the array.
	Index int
	// Codec optionally overrides the built-in rules for this field.
	Codec Codec
	// Ambient sends the field through Config.API.
	Ambient bool
}

// Register declares the layout of the struct type of v from an explicit list of fields,
// instead of "pos" struct tags. It must be called once, before the type is used.
//
//	err := posarray.Register(Trade{},
//		posarray.Field{Name: "ID", Index: 0},
//		posarray.Field{Name: "Price", Index: 3},
//	)
func Register(v any, fields ...Field) error {
	specs := make([]schema.FieldSpec, 0, len(fields))
	for _, f := range fields {
		spec := schema.FieldSpec{
			Name:    f.Name,
			Index:   f.Index,
			Ambient: f.Ambient,
		}
		if f.Codec != nil {
			spec.Codec = f.Codec
		}
		specs = append(specs, spec)
	}

	_, err := schema.Register(reflect.TypeOf(v), specs)
	return err
}
