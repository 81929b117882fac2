//go:build go1.18

package reflectcodec

import (
	"reflect"
	"testing"

	"github.com/blockberries/binschema/pkg/knownschema"
)

// fuzzRegistry builds a registry holding the types the fuzz targets decode
// (arm, leaf, branch and the shape union), without requiring a *testing.T (f.Fatalf reports a fuzz-time failure
// instead of a hard panic on a malformed registration).
func fuzzRegistry(f *testing.F) *knownschema.Registry {
	f.Helper()
	r := knownschema.NewRegistry()
	for _, typ := range []reflect.Type{
		reflect.TypeOf(arm{}),
		reflect.TypeOf(leaf{}),
		reflect.TypeOf(branch{}),
	} {
		if err := r.RegisterStructType(typ); err != nil {
			f.Fatalf("register %s: %v", typ, err)
		}
	}
	if err := r.RegisterUnionType(reflect.TypeOf((*shape)(nil)).Elem(), []knownschema.UnionVariant{
		{Name: "Leaf", Sample: leaf{}},
		{Name: "Branch", Sample: branch{}},
	}); err != nil {
		f.Fatalf("register union: %v", err)
	}
	return r
}

// FuzzUnmarshalStruct tests that Unmarshal never panics on arbitrary input
// decoded against a registered struct schema, only returns an error or a
// successfully decoded value.
func FuzzUnmarshalStruct(f *testing.F) {
	reg := fuzzRegistry(f)
	valid, err := MarshalWithRegistry(arm{Name: "Reed", ArmLengths: [2]float32{3.14, 4.97}}, reg)
	if err != nil {
		f.Fatalf("seed marshal: %v", err)
	}
	f.Add(valid)
	f.Add([]byte{})
	f.Add([]byte{0x00})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		var out arm
		_ = UnmarshalWithRegistry(data, &out, reg)
	})
}

// FuzzUnmarshalUnion tests that Unmarshal never panics when decoding
// arbitrary input against a registered union (interface) schema, the case
// most likely to mis-dispatch on a corrupt or adversarial enum tag.
func FuzzUnmarshalUnion(f *testing.F) {
	reg := fuzzRegistry(f)
	valid, err := MarshalWithRegistry(branch{N: 6, A: leaf{V: 3}, B: leaf{V: 9}}, reg)
	if err != nil {
		f.Fatalf("seed marshal: %v", err)
	}
	f.Add(valid)
	f.Add([]byte{})
	f.Add([]byte{0x02})

	f.Fuzz(func(t *testing.T, data []byte) {
		var out branch
		_ = UnmarshalWithRegistry(data, &out, reg)
	})
}
