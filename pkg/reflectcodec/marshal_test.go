package reflectcodec

import (
	"math/big"
	"reflect"
	"testing"

	"github.com/blockberries/binschema/pkg/knownschema"
)

type arm struct {
	Name       string    `binschema:"name"`
	ArmLengths [2]float32 `binschema:"arm_lengths"`
}

type withSlice struct {
	Items []int32 `binschema:"items"`
}

type withOption struct {
	Label *string `binschema:"label"`
}

type withMap struct {
	Data map[string]string `binschema:"data"`
}

type node struct {
	Value int32 `binschema:"value"`
	Next  *node `binschema:"next"`
}

type shape interface {
	isShape()
}

type leaf struct {
	V int32 `binschema:"v"`
}

func (leaf) isShape() {}

type branch struct {
	N int32 `binschema:"n"`
	A shape `binschema:"a"`
	B shape `binschema:"b"`
}

func (branch) isShape() {}

type with128 struct {
	U knownschema.Uint128 `binschema:"u"`
	I knownschema.Int128  `binschema:"i"`
}

type withChar struct {
	C knownschema.Char `binschema:"c"`
}

func newRegistry(t *testing.T) *knownschema.Registry {
	t.Helper()
	r := knownschema.NewRegistry()
	for _, typ := range []reflect.Type{
		reflect.TypeOf(arm{}),
		reflect.TypeOf(withSlice{}),
		reflect.TypeOf(withOption{}),
		reflect.TypeOf(withMap{}),
		reflect.TypeOf(node{}),
		reflect.TypeOf(leaf{}),
		reflect.TypeOf(branch{}),
		reflect.TypeOf(with128{}),
		reflect.TypeOf(withChar{}),
	} {
		if err := r.RegisterStructType(typ); err != nil {
			t.Fatalf("register %s: %v", typ, err)
		}
	}
	if err := r.RegisterUnionType(reflect.TypeOf((*shape)(nil)).Elem(), []knownschema.UnionVariant{
		{Name: "Leaf", Sample: leaf{}},
		{Name: "Branch", Sample: branch{}},
	}); err != nil {
		t.Fatalf("register union: %v", err)
	}
	return r
}

func roundTrip[T any](t *testing.T, reg *knownschema.Registry, in T) T {
	t.Helper()
	data, err := MarshalWithRegistry(in, reg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out T
	if err := UnmarshalWithRegistry(data, &out, reg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestMarshalScalarsRoundTrip(t *testing.T) {
	reg := knownschema.NewRegistry()
	tests := []any{
		true, false,
		int8(-5), int16(-500), int32(-50000), int64(-5000000000),
		uint8(5), uint16(500), uint32(50000), uint64(5000000000),
		float32(3.25), float64(3.14159),
		"hello, world",
	}
	for _, v := range tests {
		data, err := MarshalWithRegistry(v, reg)
		if err != nil {
			t.Fatalf("marshal %v: %v", v, err)
		}
		out := reflect.New(reflect.TypeOf(v))
		if err := UnmarshalWithRegistry(data, out.Interface(), reg); err != nil {
			t.Fatalf("unmarshal %v: %v", v, err)
		}
		if out.Elem().Interface() != v {
			t.Fatalf("roundtrip mismatch: got %v, want %v", out.Elem().Interface(), v)
		}
	}
}

func TestMarshalStructWithFixedArray(t *testing.T) {
	reg := newRegistry(t)
	in := arm{Name: "Reed", ArmLengths: [2]float32{3.14, 4.97}}
	data, err := MarshalWithRegistry(in, reg)
	if err != nil {
		t.Fatal(err)
	}
	// "Reed" is length-prefixed (varint 4) then 4 raw bytes, then two
	// little-endian float32s with no length prefix (fixed-length seq).
	wantPrefixLen := 1 + len("Reed")
	if len(data) < wantPrefixLen+8 {
		t.Fatalf("encoding too short: %d bytes", len(data))
	}
	out := roundTrip(t, reg, in)
	if out != in {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", out, in)
	}
}

func TestMarshalVarLenSlice(t *testing.T) {
	reg := newRegistry(t)
	in := withSlice{Items: []int32{1, 2, 128}}
	out := roundTrip(t, reg, in)
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", out, in)
	}
}

func TestMarshalEmptySlice(t *testing.T) {
	reg := newRegistry(t)
	in := withSlice{Items: []int32{}}
	data, err := MarshalWithRegistry(in, reg)
	if err != nil {
		t.Fatal(err)
	}
	// a single varint 0 for the slice length.
	if len(data) != 1 || data[0] != 0 {
		t.Fatalf("expected a single zero-length varint byte, got %v", data)
	}
}

func TestMarshalOption(t *testing.T) {
	reg := newRegistry(t)
	label := "hi"
	some := withOption{Label: &label}
	out := roundTrip(t, reg, some)
	if out.Label == nil || *out.Label != "hi" {
		t.Fatalf("expected Some(\"hi\"), got %+v", out)
	}

	none := withOption{Label: nil}
	data, err := MarshalWithRegistry(none, reg)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 1 || data[0] != 0 {
		t.Fatalf("expected a single zero tag byte for None, got %v", data)
	}
	out2 := roundTrip(t, reg, none)
	if out2.Label != nil {
		t.Fatalf("expected None, got %+v", out2)
	}
}

func TestMarshalMapRoundTrip(t *testing.T) {
	reg := newRegistry(t)
	in := withMap{Data: map[string]string{"a": "1", "b": "2", "c": "3"}}
	out := roundTrip(t, reg, in)
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", out, in)
	}
}

func TestMarshalSelfReferentialStruct(t *testing.T) {
	reg := newRegistry(t)
	in := node{Value: 1, Next: &node{Value: 2, Next: &node{Value: 3, Next: nil}}}
	out := roundTrip(t, reg, in)
	if out.Value != 1 || out.Next == nil || out.Next.Value != 2 ||
		out.Next.Next == nil || out.Next.Next.Value != 3 || out.Next.Next.Next != nil {
		t.Fatalf("self-referential roundtrip mismatch: %+v", out)
	}
}

func TestMarshalUnionEnum(t *testing.T) {
	reg := newRegistry(t)
	in := branch{N: 6, A: leaf{V: 3}, B: leaf{V: 9}}
	data, err := MarshalWithRegistry(in, reg)
	if err != nil {
		t.Fatal(err)
	}

	var out branch
	if err := UnmarshalWithRegistry(data, &out, reg); err != nil {
		t.Fatal(err)
	}
	if out.N != 6 {
		t.Fatalf("N mismatch: got %d", out.N)
	}
	al, ok := out.A.(leaf)
	if !ok || al.V != 3 {
		t.Fatalf("A mismatch: got %#v", out.A)
	}
	bl, ok := out.B.(leaf)
	if !ok || bl.V != 9 {
		t.Fatalf("B mismatch: got %#v", out.B)
	}
}

func TestMarshal128BitScalars(t *testing.T) {
	reg := newRegistry(t)
	in := with128{
		U: *knownschema.NewUint128(big.NewInt(12345678901234)),
		I: *knownschema.NewInt128(big.NewInt(-987654321)),
	}
	out := roundTrip(t, reg, in)
	if out.U.Big().Cmp(in.U.Big()) != 0 {
		t.Fatalf("U128 mismatch: got %v, want %v", out.U.Big(), in.U.Big())
	}
	if out.I.Big().Cmp(in.I.Big()) != 0 {
		t.Fatalf("I128 mismatch: got %v, want %v", out.I.Big(), in.I.Big())
	}
}

func TestMarshalChar(t *testing.T) {
	reg := newRegistry(t)
	in := withChar{C: knownschema.Char('λ')}
	out := roundTrip(t, reg, in)
	if out.C != in.C {
		t.Fatalf("char mismatch: got %q, want %q", rune(out.C), rune(in.C))
	}
}

func TestUnmarshalRejectsNonPointer(t *testing.T) {
	reg := newRegistry(t)
	data, err := MarshalWithRegistry(arm{Name: "x", ArmLengths: [2]float32{1, 2}}, reg)
	if err != nil {
		t.Fatal(err)
	}
	var out arm
	if err := UnmarshalWithRegistry(data, out, reg); err == nil {
		t.Fatal("expected an error for a non-pointer unmarshal target")
	}
}

func TestUnmarshalTruncatedFixedArrayRejected(t *testing.T) {
	reg := newRegistry(t)
	// Dropping the last byte cuts into the second float32 of the fixed-length
	// seq, which has no length prefix; decoding must fail.
	in := arm{Name: "x", ArmLengths: [2]float32{1, 2}}
	data, err := MarshalWithRegistry(in, reg)
	if err != nil {
		t.Fatal(err)
	}
	truncated := data[:len(data)-1]
	var out arm
	if err := UnmarshalWithRegistry(truncated, &out, reg); err == nil {
		t.Fatal("expected truncated encoding to fail to decode")
	}
}
