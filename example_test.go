package posarray_test

import (
	"context"
	"fmt"
	"os"

	"github.com/chaisql/posarray"
	"github.com/shopspring/decimal"
)

func Example() {
	type Ticker struct {
		Symbol string          `pos:"0"`
		Price  decimal.Decimal `pos:"2"`
	}

	var t Ticker
	err := posarray.Unmarshal([]byte(`["BTC", 1, "42000.5"]`), &t)
	if err != nil {
		panic(err)
	}
	fmt.Println(t.Symbol, t.Price)

	data, err := posarray.Marshal(t)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(data))

	// Output:
	// BTC 42000.5
	// ["BTC",null,42000.5]
}

func ExampleEncoder() {
	type Trade struct {
		ID   string  `pos:"0"`
		Size float64 `pos:"1"`
	}

	enc := posarray.NewEncoder(os.Stdout)
	for _, t := range []Trade{{"a", 1}, {"b", 2.5}} {
		if err := enc.Encode(t); err != nil {
			panic(err)
		}
	}

	// Output:
	// ["a",1]
	// ["b",2.5]
}

func ExampleUnmarshalBatch() {
	type Level struct {
		Price float64 `pos:"0"`
		Size  float64 `pos:"1"`
	}

	var levels []Level
	err := posarray.UnmarshalBatch(context.Background(), []byte(`[[100, 1], [101, 2.5]]`), &levels)
	if err != nil {
		panic(err)
	}
	fmt.Println(levels)

	// Output:
	// [{100 1} {101 2.5}]
}
