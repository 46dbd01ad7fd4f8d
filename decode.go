package posarray

import (
	"encoding/json"
	"reflect"

	"github.com/chaisql/posarray/internal/convert"
	"github.com/chaisql/posarray/internal/schema"
	"github.com/chaisql/posarray/internal/wire"
	"github.com/cockroachdb/errors"
)

// Unmarshal decodes the positional array data into v using DefaultConfig.
func Unmarshal(data []byte, v any) error {
	return DefaultConfig.Unmarshal(data, v)
}

// Unmarshal decodes the positional array data into the struct pointed to by v.
//
// Element i of the array is assigned to every field declared at index i.
// Elements without a field are skipped, fields without an element keep their zero value.
// A null input sets v to its zero value.
//
// The record is decoded into a fresh instance which is stored in v only if
// the whole array was decoded successfully: on error, v is left untouched.
func (cfg *Config) Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.WithStack(&InvalidUnmarshalError{Type: reflect.TypeOf(v)})
	}

	r := wire.NewReader(data)
	rec, err := cfg.decode(r, rv.Type().Elem())
	if err != nil {
		return err
	}

	if !r.Done() {
		return errors.WithStack(&FormatError{Offset: r.Offset(), Found: r.Found(), Msg: "unexpected data after array"})
	}

	rv.Elem().Set(rec)
	return nil
}

// decode reads one record of type t from r.
func (cfg *Config) decode(r *wire.Reader, t reflect.Type) (reflect.Value, error) {
	switch r.Peek() {
	case wire.Null:
		if _, err := r.Value(); err != nil {
			return reflect.Value{}, errors.WithStack(&FormatError{Offset: r.Offset(), Found: r.Found()})
		}
		return reflect.Zero(t), nil
	case wire.Invalid:
		return reflect.Value{}, errors.WithStack(&FormatError{Offset: r.Offset(), Found: r.Found()})
	}

	if t.Kind() == reflect.Ptr {
		v, err := cfg.decode(r, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		return p, nil
	}

	s, err := cfg.schemaOf(t)
	if err != nil {
		return reflect.Value{}, err
	}

	rec := reflect.New(t).Elem()
	if err := cfg.parseInto(r, rec, s); err != nil {
		return reflect.Value{}, err
	}

	return rec, nil
}

// parseInto reads the array at the cursor element by element and assigns
// each element to the fields declared at its index.
func (cfg *Config) parseInto(r *wire.Reader, rec reflect.Value, s *schema.Schema) error {
	if err := r.BeginArray(); err != nil {
		return errors.WithStack(&FormatError{Offset: r.Offset(), Found: r.Found()})
	}

	for i := 0; ; i++ {
		more, err := r.More()
		if err != nil {
			return tokenError(err, i, r)
		}
		if !more {
			return nil
		}

		el, err := r.Next()
		if err != nil {
			return tokenError(err, i, r)
		}

		fields := s.At(i)
		for j := range fields {
			if err := cfg.decodeField(rec, &fields[j], el); err != nil {
				return err
			}
		}
	}
}

func (cfg *Config) decodeField(rec reflect.Value, f *schema.FieldDescriptor, el wire.Value) error {
	fv, err := settableField(rec, f.Path)
	if err != nil {
		return errors.Wrapf(err, "field %s", f.Name)
	}

	switch {
	case f.Codec != nil:
		c := f.Codec.(Codec)
		if err := c.UnmarshalPositional(el.Raw, fv.Addr().Interface(), cfg.Scoped(c)); err != nil {
			return errors.Wrapf(err, "field %s", f.Name)
		}
		return nil
	case f.Ambient:
		return cfg.unmarshalAmbient(fv, f, el)
	}

	var src any
	switch el.Kind {
	case wire.Null:
	case wire.Boolean:
		src, err = wire.Bool(el)
	case wire.String:
		src, err = wire.Unquote(el)
	case wire.Number:
		src = json.Number(el.Raw)
	case wire.Object:
		return cfg.unmarshalAmbient(fv, f, el)
	default:
		return errors.WithStack(&UnsupportedTokenError{Index: f.Index, Offset: el.Offset, Found: excerpt(el.Raw)})
	}
	if err == nil {
		err = convert.Assign(fv, src)
	}
	if err != nil {
		return errors.WithStack(&ConversionError{Index: f.Index, Field: f.Name, Value: excerpt(el.Raw), Type: f.Type, Err: err})
	}

	return nil
}

func (cfg *Config) unmarshalAmbient(fv reflect.Value, f *schema.FieldDescriptor, el wire.Value) error {
	if err := cfg.api().Unmarshal(el.Raw, fv.Addr().Interface()); err != nil {
		return errors.WithStack(&ConversionError{Index: f.Index, Field: f.Name, Value: excerpt(el.Raw), Type: f.Type, Err: err})
	}

	return nil
}

// settableField returns the field at path, allocating the embedded
// pointers leading to it.
func settableField(v reflect.Value, path []int) (reflect.Value, error) {
	for i, x := range path {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, errors.Newf("cannot allocate embedded pointer to unexported %s", v.Type().Elem())
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}

	return v, nil
}

// tokenError converts an error returned while reading the element i of
// an array into an UnsupportedTokenError or a FormatError.
func tokenError(err error, i int, r *wire.Reader) error {
	if errors.Is(err, wire.ErrUnexpectedEnd) {
		return errors.WithStack(&FormatError{Offset: r.Offset(), Found: r.Found(), Msg: "unterminated array"})
	}

	var se *wire.SyntaxError
	if errors.As(err, &se) {
		if se.InvalidValue {
			return errors.WithStack(&UnsupportedTokenError{Index: i, Offset: se.Offset, Found: se.Found})
		}
		return errors.WithStack(&FormatError{Offset: se.Offset, Found: se.Found, Msg: se.Msg})
	}

	return errors.WithStack(&FormatError{Offset: r.Offset(), Found: r.Found(), Msg: err.Error()})
}
