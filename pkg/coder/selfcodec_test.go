package coder

import (
	"testing"

	"github.com/blockberries/binschema/pkg/schema"
)

func TestSelfSchemaRoundTrip(t *testing.T) {
	tests := []schema.Schema{
		schema.U8Schema(),
		schema.I128Schema(),
		schema.StrSchema(),
		schema.BytesSchema(),
		schema.UnitSchema(),
		schema.OptionSchema(schema.U32Schema()),
		schema.VarSeqSchema(schema.F64Schema()),
		schema.FixedSeqSchema(3, schema.BoolSchema()),
		schema.TupleSchema(schema.StrSchema(), schema.I64Schema()),
		schema.StructSchema(
			schema.Field{Name: "a", Schema: schema.U8Schema()},
			schema.Field{Name: "b", Schema: schema.StrSchema()},
		),
		schema.EnumSchema(
			schema.Variant{Name: "X", Schema: schema.UnitSchema()},
			schema.Variant{Name: "Y", Schema: schema.U32Schema()},
		),
		schema.SelfSchema(),
	}

	for _, in := range tests {
		data, err := EncodeSchema(in)
		if err != nil {
			t.Fatalf("EncodeSchema(%v): %v", in, err)
		}
		out, err := DecodeSchema(data)
		if err != nil {
			t.Fatalf("DecodeSchema: %v", err)
		}
		if !schema.Equal(in, out) {
			t.Fatalf("self-encoding roundtrip mismatch:\n  in:  %v\n  out: %v", in, out)
		}
	}
}

func TestSelfSchemaRecursiveSchema(t *testing.T) {
	// A schema that itself contains a Recurse node (describing a
	// self-referential type like a linked list) must self-encode too.
	listNode := schema.StructSchema(
		schema.Field{Name: "value", Schema: schema.I32Schema()},
		schema.Field{Name: "next", Schema: schema.OptionSchema(schema.RecurseSchema(2))},
	)
	data, err := EncodeSchema(listNode)
	if err != nil {
		t.Fatalf("EncodeSchema: %v", err)
	}
	out, err := DecodeSchema(data)
	if err != nil {
		t.Fatalf("DecodeSchema: %v", err)
	}
	if !schema.Equal(listNode, out) {
		t.Fatalf("recursive schema roundtrip mismatch:\n  in:  %v\n  out: %v", listNode, out)
	}
}

func TestDecodeSchemaRejectsTruncated(t *testing.T) {
	data, err := EncodeSchema(schema.SelfSchema())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeSchema(data[:len(data)-1]); err == nil {
		t.Fatal("expected truncated self-encoding to fail to decode")
	}
}
