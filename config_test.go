package posarray_test

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/chaisql/posarray"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := posarray.NewConfig()
	require.NotNil(t, cfg.API)
	require.NotNil(t, cfg.Logger)
	require.Greater(t, cfg.Concurrency, 0)

	cfg = posarray.NewConfig(
		posarray.WithAPI(sonic.ConfigFastest),
		posarray.WithConcurrency(3),
	)
	require.Equal(t, 3, cfg.Concurrency)
}

func TestZeroConfig(t *testing.T) {
	var cfg posarray.Config

	data, err := cfg.Marshal(quote{Name: "BTC"})
	require.NoError(t, err)
	require.Equal(t, `["BTC",null,0]`, string(data))
}

func TestScopedConfig(t *testing.T) {
	cfg := posarray.NewConfig()

	a := cfg.Scoped(posarray.ListCodec{})
	b := cfg.Scoped(posarray.ListCodec{})
	require.Same(t, a, b)
	require.Same(t, cfg, a.Parent)
	require.Equal(t, posarray.ListCodec{}, a.Codec)

	c := cfg.Scoped(posarray.ArrayCodec{})
	require.NotSame(t, a, c)

	other := posarray.NewConfig()
	require.NotSame(t, a, other.Scoped(posarray.ListCodec{}))
}

func TestConfigLogsCachePopulation(t *testing.T) {
	type logged struct {
		Symbol string  `pos:"0"`
		Bids   []level `pos:"1,codec=list"`
	}

	core, logs := observer.New(zapcore.DebugLevel)
	cfg := posarray.NewConfig(posarray.WithLogger(zap.New(core)))

	for i := 0; i < 3; i++ {
		_, err := cfg.Marshal(logged{Symbol: "BTC", Bids: []level{{Size: 1}}})
		require.NoError(t, err)
	}

	var built int
	for _, e := range logs.FilterMessage("schema built").AllUntimed() {
		if e.ContextMap()["type"] == "posarray_test.logged" {
			built++
		}
	}
	require.Equal(t, 1, built)
	require.Equal(t, 1, logs.FilterMessage("scoped config built").Len())
}

type trade struct {
	ID    string
	Side  string
	Price float64
	Tags  []string
}

var registerTradeErr = posarray.Register(trade{},
	posarray.Field{Name: "ID", Index: 0},
	posarray.Field{Name: "Price", Index: 2},
	posarray.Field{Name: "Tags", Index: 3, Ambient: true},
)

func TestRegister(t *testing.T) {
	require.NoError(t, registerTradeErr)

	var tr trade
	require.NoError(t, posarray.Unmarshal([]byte(`["t1", "buy", 1.5, ["a"]]`), &tr))
	require.Equal(t, trade{ID: "t1", Price: 1.5, Tags: []string{"a"}}, tr)

	data, err := posarray.Marshal(tr)
	require.NoError(t, err)
	require.Equal(t, `["t1",null,1.5,["a"]]`, string(data))

	err = posarray.Register(trade{}, posarray.Field{Name: "ID", Index: 0})
	var serr *posarray.SchemaError
	require.True(t, errors.As(err, &serr))
}

func TestRegisterErrors(t *testing.T) {
	type unknown struct{ A string }
	type negative struct{ A string }
	type unexported struct{ a string }

	var serr *posarray.SchemaError

	err := posarray.Register(unknown{}, posarray.Field{Name: "B", Index: 0})
	require.True(t, errors.As(err, &serr))

	err = posarray.Register(negative{}, posarray.Field{Name: "A", Index: -1})
	require.True(t, errors.As(err, &serr))

	err = posarray.Register(unexported{}, posarray.Field{Name: "a", Index: 0})
	require.True(t, errors.As(err, &serr))

	err = posarray.Register(42)
	require.True(t, errors.As(err, &serr))
}
