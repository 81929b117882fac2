//go:build go1.18

package coder

import (
	"testing"

	"github.com/blockberries/binschema/pkg/schema"
)

// FuzzDecodeStruct tests that decoding an arbitrary byte string against a
// fixed, nontrivial schema never panics, only returns an error or a
// finished decoder.
func FuzzDecodeStruct(f *testing.F) {
	root := starfishSchema()
	enc := NewEncoder(&root, nil)
	fuzzMustOK(f, enc.BeginStruct())
	fuzzMustOK(f, enc.BeginStructField("name"))
	fuzzMustOK(f, enc.EncodeStr("Patrick"))
	fuzzMustOK(f, enc.BeginStructField("arm_lengths"))
	fuzzMustOK(f, enc.BeginVarLenSeq())
	fuzzMustOK(f, enc.SetVarLenSeqLen(2))
	fuzzMustOK(f, enc.BeginSeqElem())
	fuzzMustOK(f, enc.EncodeF64(3.14))
	fuzzMustOK(f, enc.BeginSeqElem())
	fuzzMustOK(f, enc.EncodeF64(4.97))
	fuzzMustOK(f, enc.FinishSeq())
	fuzzMustOK(f, enc.FinishStruct())
	f.Add(enc.Bytes())
	f.Add([]byte{})
	f.Add([]byte{0x00})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		dec := NewDecoder(&root, data, nil)
		if err := dec.BeginStruct(); err != nil {
			return
		}
		if err := dec.BeginStructField("name"); err != nil {
			return
		}
		if _, err := dec.DecodeStr(); err != nil {
			return
		}
		if err := dec.BeginStructField("arm_lengths"); err != nil {
			return
		}
		if err := dec.BeginVarLenSeq(); err != nil {
			return
		}
		n, err := dec.DecodeVarLenSeqLen()
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			if err := dec.BeginSeqElem(); err != nil {
				return
			}
			if _, err := dec.DecodeF64(); err != nil {
				return
			}
		}
		if err := dec.FinishSeq(); err != nil {
			return
		}
		_ = dec.FinishStruct()
	})
}

// FuzzDecodeRecursiveEnum tests that decoding arbitrary bytes against a
// self-referential schema (Recurse) never panics or recurses unboundedly,
// regardless of how deeply the tag bytes claim the tree nests.
func FuzzDecodeRecursiveEnum(f *testing.F) {
	root := treeSchema()
	f.Add([]byte{0x01, 0x00, 0x02, 0x00, 0x04})
	f.Add([]byte{})
	f.Add([]byte{0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		var decode func(dec *Decoder, depth int) error
		decode = func(dec *Decoder, depth int) error {
			if depth > 64 {
				return ErrAPIUsage
			}
			n, err := dec.BeginEnum()
			if err != nil {
				return err
			}
			ord, err := dec.DecodeEnumOrdinal(n)
			if err != nil {
				return err
			}
			switch ord {
			case 0:
				if err := dec.BeginEnumVariant(ord, "Leaf"); err != nil {
					return err
				}
				_, err := dec.DecodeI32()
				return err
			case 1:
				if err := dec.BeginEnumVariant(ord, "Branch"); err != nil {
					return err
				}
				if err := dec.BeginTuple(); err != nil {
					return err
				}
				if err := dec.BeginTupleElem(); err != nil {
					return err
				}
				if err := decode(dec, depth+1); err != nil {
					return err
				}
				if err := dec.BeginTupleElem(); err != nil {
					return err
				}
				if err := decode(dec, depth+1); err != nil {
					return err
				}
				return dec.FinishTuple()
			default:
				return ErrBadOrdinal
			}
		}

		dec := NewDecoder(&root, data, nil)
		_ = decode(dec, 0)
	})
}

// FuzzDecodeSchema tests that decoding arbitrary bytes as a self-described
// Schema value never panics, exercising the recursive-descent DecodeSchema
// path used for shipping schemas alongside data.
func FuzzDecodeSchema(f *testing.F) {
	seed, err := EncodeSchema(schema.SelfSchema())
	if err != nil {
		f.Fatalf("seed encode: %v", err)
	}
	f.Add(seed)
	f.Add([]byte{})
	f.Add([]byte{0x09, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = DecodeSchema(data)
	})
}

func fuzzMustOK(f *testing.F, err error) {
	f.Helper()
	if err != nil {
		f.Fatalf("unexpected error: %v", err)
	}
}
