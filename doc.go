/*
Package posarray encodes and decodes records as positional JSON arrays.

Many exchange and market data feeds send records as arrays whose element
positions carry the meaning of the values, instead of keyed objects:

	["BTCUSD", 42000.5, 1]

Struct fields declare the index they occupy with the "pos" tag:

	type Ticker struct {
		Symbol string          `pos:"0"`
		Price  decimal.Decimal `pos:"2"`
	}

Decoding the array above into a Ticker skips the element at index 1 and
converts "42000.5" into a decimal. Encoding writes every index up to the
highest declared one, filling the gaps with null:

	["BTCUSD",null,42000.5]

Tag options

The index may be followed by options:

	Extra map[string]any `pos:"3,ambient"`
	Bids  []Level        `pos:"4,codec=list"`

ambient sends the field through the general purpose JSON API of the Config
instead of the positional fast path. codec selects a nested Codec registered
with RegisterCodec. A field tagged "-" is ignored. Several fields may share
an index, decoding assigns the element to each of them.

Types without tags can be described with Register.

Configuration

Every call receives a Config carrying the sonic API used for structural values,
a zap logger and the concurrency of UnmarshalBatch. The package level functions
use DefaultConfig. The layout of a type is computed once and cached for the
lifetime of the process, as is the configuration derived for each nested codec.

Errors

Decoding fails on the first error, with a FormatError when the input is not an array,
an UnsupportedTokenError when an element cannot be read, or a ConversionError when a value
cannot be converted to the type of its field. The target is only modified on success.
Invalid layouts are reported as SchemaError.
*/
package posarray
