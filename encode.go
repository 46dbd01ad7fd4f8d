package posarray

import (
	"encoding/json"
	"math/big"
	"reflect"
	"sync"

	"github.com/chaisql/posarray/internal/schema"
	"github.com/chaisql/posarray/internal/wire"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

var (
	decimalType    = reflect.TypeOf(decimal.Decimal{})
	bigIntType     = reflect.TypeOf(big.Int{})
	bigFloatType   = reflect.TypeOf(big.Float{})
	jsonNumberType = reflect.TypeOf(json.Number(""))
)

var writerPool = sync.Pool{
	New: func() any { return wire.NewWriter() },
}

func getWriter() *wire.Writer {
	w := writerPool.Get().(*wire.Writer)
	w.Reset()
	return w
}

// putWriter returns w to the pool and a copy of its content.
func putWriter(w *wire.Writer) []byte {
	data := append([]byte(nil), w.Bytes()...)
	writerPool.Put(w)
	return data
}

// Marshal returns the positional array encoding of v using DefaultConfig.
func Marshal(v any) ([]byte, error) {
	return DefaultConfig.Marshal(v)
}

// Marshal returns the positional array encoding of v.
//
// v must be a struct, a pointer to a struct, or nil which is encoded as null.
// Each field declaring an index is written at that position, gaps between
// declared indices are filled with null. When several fields share an index,
// the first one declared is written.
func (cfg *Config) Marshal(v any) ([]byte, error) {
	w := getWriter()
	if err := cfg.encode(w, reflect.ValueOf(v)); err != nil {
		writerPool.Put(w)
		return nil, err
	}

	return putWriter(w), nil
}

func (cfg *Config) encode(w *wire.Writer, v reflect.Value) error {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			w.Null()
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		w.Null()
		return nil
	}

	s, err := cfg.schemaOf(v.Type())
	if err != nil {
		return err
	}

	w.BeginArray()

	last := -1
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Index == last {
			continue
		}

		for f.Index != last+1 {
			w.Null()
			last++
		}
		last = f.Index

		if err := cfg.encodeField(w, f, v); err != nil {
			return err
		}
	}

	w.EndArray()
	return nil
}

func (cfg *Config) encodeField(w *wire.Writer, f *schema.FieldDescriptor, rec reflect.Value) error {
	fv, ok := fieldOf(rec, f.Path)
	if !ok || isAbsent(fv) {
		w.Null()
		return nil
	}

	switch {
	case f.Codec != nil:
		c := f.Codec.(Codec)
		data, err := c.MarshalPositional(fv.Interface(), cfg.Scoped(c))
		if err != nil {
			return errors.Wrapf(err, "field %s", f.Name)
		}
		w.Raw(data)
		return nil
	case f.Simple && !f.Ambient:
		return cfg.encodeSimple(w, f, fv)
	}

	data, err := cfg.api().Marshal(fv.Interface())
	if err != nil {
		return errors.WithStack(&ConversionError{Index: f.Index, Field: f.Name, Value: fv.Type().String(), Type: f.Type, Err: err})
	}
	w.Raw(data)
	return nil
}

// encodeSimple writes booleans as literals, strings through the ambient
// serializer and every other simple type as raw numeric text.
func (cfg *Config) encodeSimple(w *wire.Writer, f *schema.FieldDescriptor, v reflect.Value) error {
	if f.Optional() {
		v = v.Elem()
	}

	switch v.Type() {
	case decimalType:
		w.Number(v.Interface().(decimal.Decimal).String())
		return nil
	case bigIntType:
		w.Number(addr(v).Interface().(*big.Int).String())
		return nil
	case bigFloatType:
		bf := addr(v).Interface().(*big.Float)
		if bf.IsInf() {
			return errors.WithStack(&ConversionError{Index: f.Index, Field: f.Name, Value: bf.String(), Type: f.Type, Err: errors.New("infinite value")})
		}
		w.Number(bf.Text('g', -1))
		return nil
	case jsonNumberType:
		n := v.String()
		if n == "" {
			n = "0"
		}
		if !wire.ValidNumber([]byte(n)) {
			return errors.WithStack(&ConversionError{Index: f.Index, Field: f.Name, Value: n, Type: f.Type, Err: errors.Newf("invalid number literal %q", n)})
		}
		w.Number(n)
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		w.Bool(v.Bool())
	case reflect.String:
		data, err := cfg.api().Marshal(v.String())
		if err != nil {
			return errors.WithStack(&ConversionError{Index: f.Index, Field: f.Name, Value: excerpt([]byte(v.String())), Type: f.Type, Err: err})
		}
		w.Raw(data)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		w.Int(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		w.Uint(v.Uint())
	case reflect.Float32, reflect.Float64:
		if err := w.Float(v.Float(), v.Type().Bits()); err != nil {
			return errors.WithStack(&ConversionError{Index: f.Index, Field: f.Name, Value: v.Type().String(), Type: f.Type, Err: err})
		}
	default:
		return errors.Newf("posarray: unexpected simple type %s", v.Type())
	}

	return nil
}

// addr returns a pointer to v, copying v if it is not addressable.
func addr(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v.Addr()
	}

	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p
}

func isAbsent(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}

	return false
}

// fieldOf returns the field at path. ok is false when an embedded
// pointer on the path is nil.
func fieldOf(v reflect.Value, path []int) (reflect.Value, bool) {
	for i, x := range path {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}

	return v, true
}
