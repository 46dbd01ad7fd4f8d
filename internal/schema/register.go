package schema

import (
	"reflect"
	"strconv"
	"sync"
)

var codecs sync.Map // map[string]any

// RegisterCodec makes a nested codec available to the codec=<name> tag option.
// It panics if called twice with the same name, if c is nil or if c
// cannot be used as a map key.
func RegisterCodec(name string, c any) {
	if name == "" {
		panic("posarray: RegisterCodec with empty name")
	}
	if c == nil {
		panic("posarray: RegisterCodec codec is nil")
	}
	if !reflect.TypeOf(c).Comparable() {
		panic("posarray: RegisterCodec codec of type " + reflect.TypeOf(c).String() + " is not comparable")
	}
	if _, dup := codecs.LoadOrStore(name, c); dup {
		panic("posarray: RegisterCodec called twice for codec " + name)
	}
}

func lookupCodec(name string) (any, bool) {
	return codecs.Load(name)
}

// FieldSpec is one row of an explicit registration table.
type FieldSpec struct {
	// Name of the struct field. Promoted fields of embedded structs are accepted.
	Name    string
	Index   int
	Codec   any
	Ambient bool
}

// Register sets the schema of t from an explicit table instead of struct tags.
// It must be called before t is first encoded or decoded and only once per type.
func Register(t reflect.Type, specs []FieldSpec) (*Schema, error) {
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, newError(t, "", "positional records must be structs")
	}

	fields := make([]FieldDescriptor, 0, len(specs))
	for _, spec := range specs {
		sf, ok := t.FieldByName(spec.Name)
		if !ok {
			return nil, newError(t, spec.Name, "no such field")
		}
		if !sf.IsExported() {
			return nil, newError(t, spec.Name, "field is not exported")
		}
		if spec.Index < 0 {
			return nil, newError(t, spec.Name, "index "+strconv.Itoa(spec.Index)+" is negative")
		}
		if spec.Index > IndexLimit {
			return nil, newError(t, spec.Name, "index "+strconv.Itoa(spec.Index)+" exceeds "+strconv.Itoa(IndexLimit))
		}
		if spec.Codec != nil && !reflect.TypeOf(spec.Codec).Comparable() {
			return nil, newError(t, spec.Name, "codec of type "+reflect.TypeOf(spec.Codec).String()+" is not comparable")
		}

		fields = append(fields, newDescriptor(sf, spec.Index, spec.Codec, spec.Ambient))
	}

	s := newSchema(t, fields)
	if _, loaded := cache.LoadOrStore(t, entry{schema: s}); loaded {
		return nil, newError(t, "", "schema already registered or in use")
	}

	return s, nil
}
