// Package convert assigns decoded JSON primitives to Go values of a declared type.
//
// Decoded primitives are nil, bool, string and json.Number. Every conversion is
// locale independent: numbers always use the JSON number syntax.
package convert

import (
	"encoding"
	"encoding/json"
	"math/big"
	"reflect"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-module/carbon/v2"
	"github.com/shopspring/decimal"
)

var (
	timeType            = reflect.TypeOf(time.Time{})
	decimalType         = reflect.TypeOf(decimal.Decimal{})
	bigIntType          = reflect.TypeOf(big.Int{})
	bigFloatType        = reflect.TypeOf(big.Float{})
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Assign stores src into dst. dst must be settable.
// A nil src sets dst to its zero value. If dst is a pointer, the pointed value
// is allocated and src is assigned to it.
func Assign(dst reflect.Value, src any) error {
	if !dst.CanSet() {
		return errors.Newf("cannot set value of type %s", dst.Type())
	}

	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}

	if dst.Kind() == reflect.Ptr {
		v := reflect.New(dst.Type().Elem())
		if err := Assign(v.Elem(), src); err != nil {
			return err
		}

		dst.Set(v)
		return nil
	}

	switch x := src.(type) {
	case bool:
		return assignBool(dst, x)
	case string:
		return assignText(dst, x, false)
	case json.Number:
		return assignText(dst, string(x), true)
	}

	return errors.Newf("cannot convert %T to %s", src, dst.Type())
}

func assignBool(dst reflect.Value, b bool) error {
	var n int64
	if b {
		n = 1
	}

	switch dst.Type() {
	case decimalType:
		dst.Set(reflect.ValueOf(decimal.NewFromInt(n)))
		return nil
	case bigIntType:
		dst.Set(reflect.ValueOf(big.NewInt(n)).Elem())
		return nil
	case bigFloatType:
		dst.Set(reflect.ValueOf(new(big.Float).SetInt64(n)).Elem())
		return nil
	}

	switch dst.Kind() {
	case reflect.Bool:
		dst.SetBool(b)
		return nil
	case reflect.String:
		dst.SetString(strconv.FormatBool(b))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		dst.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		dst.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		dst.SetFloat(float64(n))
		return nil
	}

	return errors.Newf("cannot convert boolean to %s", dst.Type())
}

// assignText converts the text of a string or of a number into dst.
func assignText(dst reflect.Value, s string, number bool) error {
	switch dst.Type() {
	case timeType:
		t, err := parseTime(s, number)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
		return nil
	case decimalType:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return errors.Wrapf(err, "cannot convert %q to decimal", s)
		}
		dst.Set(reflect.ValueOf(d))
		return nil
	case bigIntType:
		i, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return errors.Newf("cannot convert %q to big.Int", s)
		}
		dst.Set(reflect.ValueOf(i).Elem())
		return nil
	case bigFloatType:
		f, _, err := big.ParseFloat(s, 10, 0, big.ToNearestEven)
		if err != nil {
			return errors.Wrapf(err, "cannot convert %q to big.Float", s)
		}
		dst.Set(reflect.ValueOf(f).Elem())
		return nil
	}

	if reflect.PtrTo(dst.Type()).Implements(textUnmarshalerType) && dst.CanAddr() {
		err := dst.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
		return errors.Wrapf(err, "cannot convert %q to %s", s, dst.Type())
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(s)
		return nil
	case reflect.Bool:
		if number {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return errors.Wrapf(err, "cannot convert %s to boolean", s)
			}
			dst.SetBool(!d.IsZero())
			return nil
		}

		b, err := strconv.ParseBool(s)
		if err != nil {
			return errors.Newf("cannot convert %q to boolean", s)
		}
		dst.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := parseInt(s)
		if err != nil {
			return err
		}
		if dst.OverflowInt(i) {
			return errors.Newf("%s overflows %s", s, dst.Type())
		}
		dst.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := parseUint(s)
		if err != nil {
			return err
		}
		if dst.OverflowUint(u) {
			return errors.Newf("%s overflows %s", s, dst.Type())
		}
		dst.SetUint(u)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, dst.Type().Bits())
		if err != nil {
			return errors.Newf("cannot convert %q to %s", s, dst.Type())
		}
		dst.SetFloat(f)
		return nil
	}

	return errors.Newf("cannot convert %q to %s", s, dst.Type())
}

// parseInt accepts integral values written with a fraction or an exponent, like 2.0 or 1e3.
func parseInt(s string) (int64, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return i, nil
	}

	d, derr := decimal.NewFromString(s)
	if derr != nil {
		return 0, errors.Newf("cannot convert %q to integer", s)
	}
	if !d.IsInteger() {
		return 0, errors.Newf("%s is not an integer", s)
	}

	bi := d.BigInt()
	if !bi.IsInt64() {
		return 0, errors.Newf("%s overflows int64", s)
	}

	return bi.Int64(), nil
}

func parseUint(s string) (uint64, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err == nil {
		return u, nil
	}

	d, derr := decimal.NewFromString(s)
	if derr != nil {
		return 0, errors.Newf("cannot convert %q to unsigned integer", s)
	}
	if d.IsNegative() {
		return 0, errors.Newf("%s is negative", s)
	}
	if !d.IsInteger() {
		return 0, errors.Newf("%s is not an integer", s)
	}

	bi := d.BigInt()
	if !bi.IsUint64() {
		return 0, errors.Newf("%s overflows uint64", s)
	}

	return bi.Uint64(), nil
}

// parseTime reads numbers as Unix milliseconds and text through carbon.
func parseTime(s string, number bool) (time.Time, error) {
	if number {
		ms, err := parseInt(s)
		if err != nil {
			return time.Time{}, errors.Wrap(err, "cannot convert number to time")
		}

		return carbon.CreateFromTimestampMilli(ms, "UTC").ToStdTime(), nil
	}

	c := carbon.Parse(s, "UTC")
	if c.Error != nil {
		return time.Time{}, errors.Wrapf(c.Error, "cannot convert %q to time", s)
	}

	return c.ToStdTime(), nil
}
