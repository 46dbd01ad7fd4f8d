// Package wire reads and writes the JSON tokens of positional arrays.
package wire

import (
	"github.com/buger/jsonparser"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// Kind of a JSON value.
type Kind uint8

// List of value kinds.
const (
	Invalid Kind = iota
	Null
	Boolean
	Number
	String
	Object
	Array
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Object:
		return "object"
	case Array:
		return "array"
	}

	return "invalid"
}

func kindOf(t jsonparser.ValueType) Kind {
	switch t {
	case jsonparser.Null:
		return Null
	case jsonparser.Boolean:
		return Boolean
	case jsonparser.Number:
		return Number
	case jsonparser.String:
		return String
	case jsonparser.Object:
		return Object
	case jsonparser.Array:
		return Array
	}

	return Invalid
}

// ErrUnexpectedEnd is returned when the input ends in the middle of a value.
var ErrUnexpectedEnd = errors.New("unexpected end of JSON input")

// SyntaxError is returned when the input is not valid JSON at Offset.
type SyntaxError struct {
	Offset int
	Found  string
	Msg    string
	// InvalidValue is set when the value itself could not be read,
	// as opposed to the structure around it.
	InvalidValue bool
}

func (e *SyntaxError) Error() string {
	if e.Found == "" {
		return e.Msg
	}

	return e.Msg + ": found " + e.Found
}

// Value is one element read from the input.
type Value struct {
	Kind Kind
	// Raw holds the complete JSON text of the value, quotes included.
	Raw []byte
	// Offset of the value in the input.
	Offset int
}

// Reader is a forward only cursor over a JSON document.
// It never goes back and each value is read at most once.
type Reader struct {
	data []byte
	pos  int
	// comma is set when the last element read was followed by a comma.
	comma bool
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the position of the cursor.
func (r *Reader) Offset() int {
	return r.pos
}

func (r *Reader) skipSpaces() {
	for r.pos < len(r.data) {
		switch r.data[r.pos] {
		case ' ', '\t', '\n', '\r':
			r.pos++
		default:
			return
		}
	}
}

// Peek returns the kind of the next value without consuming it.
func (r *Reader) Peek() Kind {
	r.skipSpaces()
	if r.pos >= len(r.data) {
		return Invalid
	}

	switch c := r.data[r.pos]; {
	case c == 'n':
		return Null
	case c == 't' || c == 'f':
		return Boolean
	case c == '"':
		return String
	case c == '{':
		return Object
	case c == '[':
		return Array
	case c == '-' || (c >= '0' && c <= '9'):
		return Number
	}

	return Invalid
}

// Found returns a short excerpt of the input at the cursor, for error messages.
func (r *Reader) Found() string {
	r.skipSpaces()
	if r.pos >= len(r.data) {
		return "end of input"
	}

	end := r.pos + 16
	if end > len(r.data) {
		end = len(r.data)
	}

	return string(r.data[r.pos:end])
}

// BeginArray consumes the opening bracket of an array.
func (r *Reader) BeginArray() error {
	r.skipSpaces()
	if r.pos >= len(r.data) || r.data[r.pos] != '[' {
		return errors.WithStack(&SyntaxError{Offset: r.pos, Found: r.Found(), Msg: "expected array start"})
	}

	r.pos++
	r.comma = false
	return nil
}

// More reports whether the current array has another element.
// When it returns false the closing bracket has been consumed.
func (r *Reader) More() (bool, error) {
	r.skipSpaces()
	if r.pos >= len(r.data) {
		return false, errors.WithStack(ErrUnexpectedEnd)
	}

	if r.data[r.pos] == ']' {
		if r.comma {
			return false, errors.WithStack(&SyntaxError{Offset: r.pos, Found: r.Found(), Msg: "unexpected ] after ,"})
		}
		r.pos++
		return false, nil
	}

	return true, nil
}

// Next reads the next value of the current array, along with
// the separator that follows it.
func (r *Reader) Next() (Value, error) {
	r.skipSpaces()
	start := r.pos

	raw, dataType, end, err := r.read()
	if err != nil {
		return Value{Offset: start}, err
	}

	r.pos = start + end
	r.skipSpaces()
	r.comma = false
	if r.pos < len(r.data) {
		switch r.data[r.pos] {
		case ',':
			r.pos++
			r.comma = true
		case ']':
		default:
			return Value{Offset: start}, errors.WithStack(&SyntaxError{Offset: r.pos, Found: r.Found(), Msg: "expected , or ]"})
		}
	}

	return Value{Kind: kindOf(dataType), Raw: raw, Offset: start}, nil
}

// Value reads one complete value, usually the top level one.
func (r *Reader) Value() (Value, error) {
	r.skipSpaces()
	start := r.pos

	raw, dataType, end, err := r.read()
	if err != nil {
		return Value{Offset: start}, err
	}

	r.pos = start + end
	return Value{Kind: kindOf(dataType), Raw: raw, Offset: start}, nil
}

// read returns the raw text of the value at the cursor and its end offset
// relative to the cursor.
func (r *Reader) read() ([]byte, jsonparser.ValueType, int, error) {
	if r.pos >= len(r.data) {
		return nil, jsonparser.NotExist, 0, errors.WithStack(ErrUnexpectedEnd)
	}

	data := r.data[r.pos:]
	_, dataType, end, err := jsonparser.Get(data)
	if err != nil {
		if dataType == jsonparser.Unknown || dataType == jsonparser.NotExist {
			return nil, jsonparser.Unknown, 0, errors.WithStack(&SyntaxError{Offset: r.pos, Found: r.Found(), Msg: "invalid value", InvalidValue: true})
		}

		return nil, dataType, 0, errors.Wrapf(err, "offset %d", r.pos)
	}

	// jsonparser only delimits numbers, the grammar is checked here.
	if dataType == jsonparser.Number && !ValidNumber(data[:end]) {
		return nil, jsonparser.Unknown, 0, errors.WithStack(&SyntaxError{Offset: r.pos, Found: r.Found(), Msg: "invalid number", InvalidValue: true})
	}

	return data[:end], dataType, end, nil
}

// ValidNumber reports whether b is exactly one JSON number.
func ValidNumber(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	if c := b[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	if c := b[len(b)-1]; c < '0' || c > '9' {
		return false
	}

	return sonic.ConfigStd.Valid(b)
}

// Done reports whether only white space is left in the input.
func (r *Reader) Done() bool {
	r.skipSpaces()
	return r.pos >= len(r.data)
}

// Unquote returns the unescaped content of a string value.
func Unquote(v Value) (string, error) {
	if v.Kind != String || len(v.Raw) < 2 {
		return "", errors.Newf("cannot read %s as string", v.Kind)
	}

	return jsonparser.ParseString(v.Raw[1 : len(v.Raw)-1])
}

// Bool returns the content of a boolean value.
func Bool(v Value) (bool, error) {
	if v.Kind != Boolean {
		return false, errors.Newf("cannot read %s as boolean", v.Kind)
	}

	return jsonparser.ParseBoolean(v.Raw)
}
