package knownschema

import (
	"math/big"
	"reflect"

	"github.com/blockberries/binschema/pkg/schema"
)

// Uint128 and Int128 carry 128-bit magnitude integers. Go has no native
// 128-bit integer kind, and both unsigned and signed 128-bit values would
// otherwise reflect as the identical underlying math/big.Int struct, so the
// registry can't tell U128 and I128 apart by reflect.Kind alone the way it
// distinguishes every other scalar width. Declaring two named types gives
// each its own reflect.Type, the same fix scalars.go applies to Char below.
type (
	Uint128 big.Int
	Int128  big.Int
)

// Big returns v as a *big.Int, sharing v's storage.
func (v *Uint128) Big() *big.Int { return (*big.Int)(v) }

// Big returns v as a *big.Int, sharing v's storage.
func (v *Int128) Big() *big.Int { return (*big.Int)(v) }

// NewUint128 wraps b as a Uint128.
func NewUint128(b *big.Int) *Uint128 { return (*Uint128)(b) }

// NewInt128 wraps b as an Int128.
func NewInt128(b *big.Int) *Int128 { return (*Int128)(b) }

// Char carries a single Unicode code point. Go's rune is only an alias for
// int32, so a struct field typed rune or int32 is indistinguishable by
// reflection; this named type lets a field opt into the Char scalar
// (4-byte fixed encoding, validated as a codepoint on decode) instead of
// the default I32 varint mapping for int32/rune fields.
type Char rune

var (
	uint128Type = reflect.TypeOf(Uint128{})
	int128Type  = reflect.TypeOf(Int128{})
	charType    = reflect.TypeOf(Char(0))
)

// specialScalar returns the Schema for one of the registry's named scalar
// types that reflect.Kind cannot distinguish on its own, and reports
// whether t was one of them.
func specialScalar(t reflect.Type) (schema.Schema, bool) {
	switch t {
	case uint128Type:
		return schema.ScalarSchema(schema.U128), true
	case int128Type:
		return schema.ScalarSchema(schema.I128), true
	case charType:
		return schema.ScalarSchema(schema.Char), true
	default:
		return schema.Schema{}, false
	}
}
