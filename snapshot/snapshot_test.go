package snapshot_test

import (
	"path/filepath"
	"testing"

	"github.com/chaisql/posarray"
	"github.com/chaisql/posarray/internal/testutil"
	"github.com/chaisql/posarray/internal/testutil/assert"
	"github.com/chaisql/posarray/snapshot"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type ticker struct {
	Symbol string          `pos:"0"`
	Price  decimal.Decimal `pos:"2"`
	Volume int64           `pos:"3"`
}

func TestStorePutGet(t *testing.T) {
	s := testutil.NewMemStore(t, nil)

	in := ticker{Symbol: "BTC", Price: decimal.RequireFromString("42000.5"), Volume: 12}
	require.NoError(t, s.Put("BTC", &in))

	raw, err := s.GetRaw("BTC")
	assert.NoError(t, err)
	require.Equal(t, testutil.MustMarshal(t, posarray.DefaultConfig, in), string(raw))
	require.Equal(t, 4, testutil.ArrayLen(t, raw))

	var out ticker
	require.NoError(t, s.Get("BTC", &out))
	require.Equal(t, "BTC", out.Symbol)
	require.True(t, in.Price.Equal(out.Price))
	require.Equal(t, int64(12), out.Volume)
}

func TestStoreOverride(t *testing.T) {
	s := testutil.NewMemStore(t, nil)

	require.NoError(t, s.Put("ETH", ticker{Symbol: "ETH", Volume: 1}))
	require.NoError(t, s.Put("ETH", ticker{Symbol: "ETH", Volume: 2}))

	var out ticker
	require.NoError(t, s.Get("ETH", &out))
	require.Equal(t, int64(2), out.Volume)
}

func TestStoreNotFound(t *testing.T) {
	s := testutil.NewMemStore(t, nil)

	var out ticker
	err := s.Get("nope", &out)
	assert.ErrorIs(t, err, snapshot.ErrKeyNotFound)

	_, err = s.GetRaw("nope")
	assert.ErrorIs(t, err, snapshot.ErrKeyNotFound)

	err = s.Delete("nope")
	assert.ErrorIs(t, err, snapshot.ErrKeyNotFound)
}

func TestStoreDelete(t *testing.T) {
	s := testutil.NewMemStore(t, nil)

	require.NoError(t, s.Put("BTC", ticker{Symbol: "BTC"}))
	require.NoError(t, s.Delete("BTC"))

	_, err := s.GetRaw("BTC")
	assert.ErrorIs(t, err, snapshot.ErrKeyNotFound)
}

func TestStoreEmptyKey(t *testing.T) {
	s := testutil.NewMemStore(t, nil)

	require.Error(t, s.Put("", ticker{}))
	_, err := s.GetRaw("")
	require.Error(t, err)
	require.Error(t, s.Delete(""))
}

func TestStorePutBatch(t *testing.T) {
	s := testutil.NewMemStore(t, nil)

	err := s.PutBatch(map[string]any{
		"BTC": ticker{Symbol: "BTC", Volume: 1},
		"ETH": &ticker{Symbol: "ETH", Volume: 2},
	})
	require.NoError(t, err)

	var out ticker
	require.NoError(t, s.Get("ETH", &out))
	require.Equal(t, "ETH", out.Symbol)
	require.NoError(t, s.Get("BTC", &out))
	require.Equal(t, "BTC", out.Symbol)
}

func TestStorePutBatchAtomic(t *testing.T) {
	s := testutil.NewMemStore(t, nil)

	err := s.PutBatch(map[string]any{
		"BTC": ticker{Symbol: "BTC"},
		"bad": 42,
	})
	require.Error(t, err)

	_, err = s.GetRaw("BTC")
	assert.ErrorIs(t, err, snapshot.ErrKeyNotFound)
}

func TestStoreOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshot")

	s, err := snapshot.Open(dir, &snapshot.Options{Config: posarray.NewConfig()})
	require.NoError(t, err)
	require.NoError(t, s.Put("BTC", ticker{Symbol: "BTC", Volume: 7}))
	require.NoError(t, s.Close())

	s, err = snapshot.Open(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	var out ticker
	require.NoError(t, s.Get("BTC", &out))
	require.Equal(t, int64(7), out.Volume)
}
