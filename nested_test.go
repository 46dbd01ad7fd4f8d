package posarray_test

import (
	"strings"
	"testing"

	"github.com/chaisql/posarray"
	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type level struct {
	Price decimal.Decimal `pos:"0"`
	Size  float64         `pos:"1"`
}

type book struct {
	Symbol string  `pos:"0"`
	Bids   []level `pos:"1,codec=list"`
	Asks   []level `pos:"2,codec=list"`
	Best   *level  `pos:"3,codec=array"`
}

func TestListCodec(t *testing.T) {
	var b book
	err := posarray.Unmarshal([]byte(`["BTC", [["100.5", 1.5], ["100", 2]], [], [100.5, 1.5]]`), &b)
	require.NoError(t, err)

	want := book{
		Symbol: "BTC",
		Bids: []level{
			{Price: decimal.RequireFromString("100.5"), Size: 1.5},
			{Price: decimal.RequireFromString("100"), Size: 2},
		},
		Asks: []level{},
		Best: &level{Price: decimal.RequireFromString("100.5"), Size: 1.5},
	}
	if diff := cmp.Diff(want, b, decimalComparer); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	data, err := posarray.Marshal(b)
	require.NoError(t, err)
	require.Equal(t, `["BTC",[[100.5,1.5],[100,2]],[],[100.5,1.5]]`, string(data))
}

func TestListCodecNull(t *testing.T) {
	var b book
	require.NoError(t, posarray.Unmarshal([]byte(`["BTC", null]`), &b))
	require.Nil(t, b.Bids)
	require.Nil(t, b.Best)

	data, err := posarray.Marshal(b)
	require.NoError(t, err)
	require.Equal(t, `["BTC",null,null,null]`, string(data))
}

func TestListCodecErrors(t *testing.T) {
	var b book

	err := posarray.Unmarshal([]byte(`["BTC", [["x", 1]]]`), &b)
	var cerr *posarray.ConversionError
	require.True(t, errors.As(err, &cerr), "got %v", err)
	require.True(t, strings.Contains(err.Error(), "element 0"), err.Error())

	err = posarray.Unmarshal([]byte(`["BTC", 42]`), &b)
	var ferr *posarray.FormatError
	require.True(t, errors.As(err, &ferr), "got %v", err)

	err = posarray.Unmarshal([]byte(`["BTC", [["1", 1],]]`), &b)
	require.True(t, errors.As(err, &ferr), "got %v", err)
}

type upper struct{}

func (upper) MarshalPositional(v any, cfg *posarray.Config) ([]byte, error) {
	return cfg.API.Marshal(strings.ToUpper(v.(string)))
}

func (upper) UnmarshalPositional(data []byte, v any, cfg *posarray.Config) error {
	var s string
	if err := cfg.API.Unmarshal(data, &s); err != nil {
		return err
	}

	*v.(*string) = strings.ToUpper(s)
	return nil
}

func init() {
	posarray.RegisterCodec("upper", upper{})
}

func TestCustomCodec(t *testing.T) {
	type rec struct {
		Symbol string `pos:"0,codec=upper"`
		Venue  string `pos:"1"`
	}

	var r rec
	require.NoError(t, posarray.Unmarshal([]byte(`["btc", "kraken"]`), &r))
	require.Equal(t, rec{Symbol: "BTC", Venue: "kraken"}, r)

	data, err := posarray.Marshal(rec{Symbol: "eth", Venue: "x"})
	require.NoError(t, err)
	require.Equal(t, `["ETH","x"]`, string(data))
}

func TestUnknownCodec(t *testing.T) {
	type rec struct {
		Symbol string `pos:"0,codec=nope"`
	}

	_, err := posarray.Marshal(rec{})
	var serr *posarray.SchemaError
	require.True(t, errors.As(err, &serr))
}

func TestRegisterCodecPanics(t *testing.T) {
	require.Panics(t, func() {
		posarray.RegisterCodec("list", posarray.ListCodec{})
	})
}
