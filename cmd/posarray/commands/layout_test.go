package commands_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/chaisql/posarray/cmd/posarray/commands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseLayout(t *testing.T) {
	l, err := commands.ParseLayout([]string{"symbol:0:string", "price:2:decimal", "at:3:time", "meta:4", "qty:5:int:ambient"})
	require.NoError(t, err)
	require.Equal(t, 5, l.Type.NumField())

	tests := []struct {
		typ reflect.Type
		tag string
	}{
		{reflect.TypeOf(""), `pos:"0" json:"symbol"`},
		{reflect.TypeOf(decimal.Decimal{}), `pos:"2" json:"price"`},
		{reflect.TypeOf(time.Time{}), `pos:"3" json:"at"`},
		{reflect.TypeOf((*any)(nil)).Elem(), `pos:"4,ambient" json:"meta"`},
		{reflect.TypeOf(int64(0)), `pos:"5,ambient" json:"qty"`},
	}

	for i, test := range tests {
		f := l.Type.Field(i)
		require.Equal(t, test.typ, f.Type)
		require.Equal(t, reflect.StructTag(test.tag), f.Tag)
	}

	again, err := commands.ParseLayout([]string{"symbol:0:string", "price:2:decimal", "at:3:time", "meta:4", "qty:5:int:ambient"})
	require.NoError(t, err)
	require.Equal(t, l.Type, again.Type)
}

func TestParseLayoutErrors(t *testing.T) {
	tests := [][]string{
		nil,
		{"symbol"},
		{":0"},
		{"symbol:-1"},
		{"symbol:x"},
		{"symbol:0:blob"},
		{"symbol:0:string:ambient:extra"},
		{"sym\"bol:0"},
		{"a:0", "a:1"},
	}

	for _, test := range tests {
		_, err := commands.ParseLayout(test)
		require.Error(t, err, "%v", test)
	}
}
