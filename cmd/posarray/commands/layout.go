package commands

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

var layoutTypes = map[string]reflect.Type{
	"string":  reflect.TypeOf(""),
	"int":     reflect.TypeOf(int64(0)),
	"float":   reflect.TypeOf(float64(0)),
	"decimal": reflect.TypeOf(decimal.Decimal{}),
	"bool":    reflect.TypeOf(false),
	"time":    reflect.TypeOf(time.Time{}),
	"any":     reflect.TypeOf((*any)(nil)).Elem(),
}

// Layout is a record type built at runtime from --field flags.
type Layout struct {
	Type reflect.Type
}

// ParseLayout builds a struct type from a list of field definitions
// in the form name:index[:type][:ambient].
//
// Each field is declared with a "pos" tag and a "json" tag holding its name.
// Fields of type any always go through the general purpose JSON API.
func ParseLayout(defs []string) (*Layout, error) {
	if len(defs) == 0 {
		return nil, errors.New("at least one --field is required")
	}

	seen := make(map[string]struct{}, len(defs))
	fields := make([]reflect.StructField, 0, len(defs))
	for i, def := range defs {
		parts := strings.Split(def, ":")
		if len(parts) < 2 || len(parts) > 4 {
			return nil, errors.Newf("invalid field %q: expected name:index[:type][:ambient]", def)
		}

		name := parts[0]
		if name == "" || name == "-" || strings.ContainsAny(name, "\"`,") {
			return nil, errors.Newf("invalid field %q: invalid name", def)
		}
		if _, ok := seen[name]; ok {
			return nil, errors.Newf("invalid field %q: duplicate name", def)
		}
		seen[name] = struct{}{}

		index, err := strconv.Atoi(parts[1])
		if err != nil || index < 0 {
			return nil, errors.Newf("invalid field %q: index must be a non-negative integer", def)
		}

		typ := "any"
		var ambient bool
		for _, opt := range parts[2:] {
			switch {
			case opt == "ambient":
				ambient = true
			case layoutTypes[opt] != nil && typ == "any":
				typ = opt
			default:
				return nil, errors.Newf("invalid field %q: unknown type or option %q", def, opt)
			}
		}

		tag := strconv.Itoa(index)
		if ambient || typ == "any" {
			tag += ",ambient"
		}

		fields = append(fields, reflect.StructField{
			Name: fmt.Sprintf("F%d", i),
			Type: layoutTypes[typ],
			Tag:  reflect.StructTag(fmt.Sprintf(`pos:"%s" json:"%s"`, tag, name)),
		})
	}

	return &Layout{Type: reflect.StructOf(fields)}, nil
}

// New returns a pointer to a new record of the layout.
func (l *Layout) New() any {
	return reflect.New(l.Type).Interface()
}
