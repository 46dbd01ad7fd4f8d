package posarray_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/chaisql/posarray"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := posarray.NewEncoder(&buf)

	require.NoError(t, enc.Encode(gapped{Symbol: "BTC", Price: 1}))
	require.NoError(t, enc.Encode(&gapped{Symbol: "ETH", Price: 2}))
	require.NoError(t, enc.Encode(nil))

	require.Equal(t, "[\"BTC\",null,null,1]\n[\"ETH\",null,null,2]\nnull\n", buf.String())
}

func TestDecoder(t *testing.T) {
	dec := posarray.NewDecoder(strings.NewReader("[\"BTC\", 0, 0, 1]\n\n  [\"ETH\",null,null,2] [\"SOL\"]\n"))

	var got []gapped
	for dec.More() {
		var g gapped
		require.NoError(t, dec.Decode(&g))
		got = append(got, g)
	}

	require.Equal(t, []gapped{
		{Symbol: "BTC", Price: 1},
		{Symbol: "ETH", Price: 2},
		{Symbol: "SOL"},
	}, got)

	var g gapped
	require.Equal(t, io.EOF, dec.Decode(&g))
}

func TestDecoderError(t *testing.T) {
	dec := posarray.NewDecoder(strings.NewReader(`["BTC"] ["ETH", 1, 2, "x"]`))

	var g gapped
	require.NoError(t, dec.Decode(&g))

	err := dec.Decode(&g)
	var cerr *posarray.ConversionError
	require.True(t, errors.As(err, &cerr), "got %v", err)
	require.Contains(t, err.Error(), "record 1")
	require.Equal(t, "BTC", g.Symbol)
}

func TestDecoderKeepsCountingAfterError(t *testing.T) {
	dec := posarray.NewDecoder(strings.NewReader(`["A", 1, 2, "x"] ["B", 1, 2, "y"] ["C"]`))

	var g gapped
	err := dec.Decode(&g)
	require.Error(t, err)
	require.Contains(t, err.Error(), "record 0")

	err = dec.Decode(&g)
	require.Error(t, err)
	require.Contains(t, err.Error(), "record 1")

	require.NoError(t, dec.Decode(&g))
	require.Equal(t, "C", g.Symbol)
}

func TestEncoderDecoderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := posarray.NewEncoder(&buf)

	in := []full{
		{Symbol: "A", Bid: 1, Ask: 2, Open: true, Seq: 1},
		{Symbol: "B", Bid: 3, Ask: 4, Seq: 2},
	}
	for _, f := range in {
		require.NoError(t, enc.Encode(f))
	}

	dec := posarray.NewDecoder(&buf)
	var out []full
	for dec.More() {
		var f full
		require.NoError(t, dec.Decode(&f))
		out = append(out, f)
	}
	require.Equal(t, in, out)
}
