package posarray

import (
	"encoding/json"
	"io"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// An Encoder writes positional records to an output stream,
// one array per line.
type Encoder struct {
	w   io.Writer
	cfg *Config
}

// NewEncoder returns an encoder that writes to w using DefaultConfig.
func NewEncoder(w io.Writer) *Encoder {
	return DefaultConfig.NewEncoder(w)
}

// NewEncoder returns an encoder that writes to w.
func (cfg *Config) NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, cfg: cfg}
}

// Encode writes the positional encoding of v followed by a newline.
func (e *Encoder) Encode(v any) error {
	data, err := e.cfg.Marshal(v)
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = e.w.Write(data)
	return errors.WithStack(err)
}

// A Decoder reads positional records from an input stream.
// Records may be separated by any amount of white space.
type Decoder struct {
	dec sonic.Decoder
	cfg *Config
	n   int
}

// NewDecoder returns a decoder that reads from r using DefaultConfig.
func NewDecoder(r io.Reader) *Decoder {
	return DefaultConfig.NewDecoder(r)
}

// NewDecoder returns a decoder that reads from r.
func (cfg *Config) NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: cfg.api().NewDecoder(r), cfg: cfg}
}

// More reports whether there is another record in the stream.
func (d *Decoder) More() bool {
	return d.dec.More()
}

// Decode reads the next record from the stream and stores it in v.
// It returns io.EOF when the stream is exhausted.
func (d *Decoder) Decode(v any) error {
	if !d.dec.More() {
		return io.EOF
	}

	var raw json.RawMessage
	if err := d.dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return errors.Wrapf(err, "record %d", d.n)
	}

	n := d.n
	d.n++
	if err := d.cfg.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "record %d", n)
	}

	return nil
}
