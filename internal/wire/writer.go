package wire

import (
	"bytes"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Writer writes the tokens of a compact JSON array.
type Writer struct {
	buf bytes.Buffer
	// needComma is set once the current array holds an element.
	needComma []bool
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return new(Writer)
}

// Bytes returns the written data.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Reset discards the written data.
func (w *Writer) Reset() {
	w.buf.Reset()
	w.needComma = w.needComma[:0]
}

func (w *Writer) separate() {
	n := len(w.needComma)
	if n == 0 {
		return
	}

	if w.needComma[n-1] {
		w.buf.WriteByte(',')
	}
	w.needComma[n-1] = true
}

// BeginArray writes [.
func (w *Writer) BeginArray() {
	w.separate()
	w.buf.WriteByte('[')
	w.needComma = append(w.needComma, false)
}

// EndArray writes ].
func (w *Writer) EndArray() {
	if n := len(w.needComma); n > 0 {
		w.needComma = w.needComma[:n-1]
	}
	w.buf.WriteByte(']')
}

// Null writes null.
func (w *Writer) Null() {
	w.separate()
	w.buf.WriteString("null")
}

// Bool writes true or false.
func (w *Writer) Bool(b bool) {
	w.separate()
	w.buf.WriteString(strconv.FormatBool(b))
}

// Int writes a signed integer.
func (w *Writer) Int(i int64) {
	w.separate()
	var b [20]byte
	w.buf.Write(strconv.AppendInt(b[:0], i, 10))
}

// Uint writes an unsigned integer.
func (w *Writer) Uint(u uint64) {
	w.separate()
	var b [20]byte
	w.buf.Write(strconv.AppendUint(b[:0], u, 10))
}

// Float writes a floating point number using the shortest
// representation that round trips at the given bit size.
func (w *Writer) Float(f float64, bitSize int) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.Newf("unsupported value %s", strconv.FormatFloat(f, 'g', -1, bitSize))
	}

	w.separate()

	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}

	var b [32]byte
	w.buf.Write(strconv.AppendFloat(b[:0], f, format, -1, bitSize))
	return nil
}

// Number writes numeric text as is. The caller guarantees it is a valid JSON number.
func (w *Writer) Number(s string) {
	w.separate()
	w.buf.WriteString(s)
}

// Raw writes a complete JSON value as is.
func (w *Writer) Raw(data []byte) {
	w.separate()
	w.buf.Write(data)
}
