package coder

import (
	"fmt"

	"github.com/blockberries/binschema/pkg/schema"
)

// EncodeSchema encodes s against schema.SelfSchema(), the fixed point that
// lets a Schema value describe and be described by the same wire format it
// governs for ordinary values. It is driven by hand rather than through
// pkg/reflectcodec because Schema's variant selection (which payload field
// is live for a given Kind) isn't expressible as a plain reflect-derived
// struct/tag mapping the way an ordinary Go type's shape is.
func EncodeSchema(s schema.Schema) ([]byte, error) {
	self := schema.SelfSchema()
	enc := NewEncoder(&self, nil)
	if err := encodeSchemaValue(enc, s); err != nil {
		return nil, err
	}
	if !enc.State().IsFinished() {
		return nil, enc.State().Err()
	}
	return append([]byte(nil), enc.Bytes()...), nil
}

// DecodeSchema reverses EncodeSchema.
func DecodeSchema(data []byte) (schema.Schema, error) {
	self := schema.SelfSchema()
	dec := NewDecoder(&self, data, nil)
	s, err := decodeSchemaValue(dec)
	if err != nil {
		return schema.Schema{}, err
	}
	if !dec.State().IsFinished() {
		return schema.Schema{}, dec.State().Err()
	}
	return s, nil
}

var scalarKindNames = [...]string{
	schema.U8: "U8", schema.U16: "U16", schema.U32: "U32", schema.U64: "U64", schema.U128: "U128",
	schema.I8: "I8", schema.I16: "I16", schema.I32: "I32", schema.I64: "I64", schema.I128: "I128",
	schema.F32: "F32", schema.F64: "F64", schema.Char: "Char", schema.Bool: "Bool",
}

func encodeSchemaValue(enc *Encoder, s schema.Schema) error {
	variantCount, err := enc.BeginEnum()
	if err != nil {
		return err
	}
	switch s.Kind {
	case schema.KindScalar:
		if err := enc.BeginEnumVariant(0, "Scalar", variantCount); err != nil {
			return err
		}
		scalarCount, err := enc.BeginEnum()
		if err != nil {
			return err
		}
		kindOrd := int(s.Scalar)
		if err := enc.BeginEnumVariant(kindOrd, s.Scalar.VariantName(), scalarCount); err != nil {
			return err
		}
		return enc.EncodeUnit()
	case schema.KindStr:
		if err := enc.BeginEnumVariant(1, "Str", variantCount); err != nil {
			return err
		}
		return enc.EncodeUnit()
	case schema.KindBytes:
		if err := enc.BeginEnumVariant(2, "Bytes", variantCount); err != nil {
			return err
		}
		return enc.EncodeUnit()
	case schema.KindUnit:
		if err := enc.BeginEnumVariant(3, "Unit", variantCount); err != nil {
			return err
		}
		return enc.EncodeUnit()
	case schema.KindOption:
		if err := enc.BeginEnumVariant(4, "Option", variantCount); err != nil {
			return err
		}
		return encodeSchemaValue(enc, *s.Inner)
	case schema.KindSeq:
		if err := enc.BeginEnumVariant(5, "Seq", variantCount); err != nil {
			return err
		}
		if err := enc.BeginStruct(); err != nil {
			return err
		}
		if err := enc.BeginStructField("len"); err != nil {
			return err
		}
		if s.SeqLen == nil {
			if err := enc.EncodeNone(); err != nil {
				return err
			}
		} else {
			if err := enc.BeginSome(); err != nil {
				return err
			}
			if err := enc.EncodeU64(uint64(*s.SeqLen)); err != nil {
				return err
			}
		}
		if err := enc.BeginStructField("inner"); err != nil {
			return err
		}
		if err := encodeSchemaValue(enc, *s.Inner); err != nil {
			return err
		}
		return enc.FinishStruct()
	case schema.KindTuple:
		if err := enc.BeginEnumVariant(6, "Tuple", variantCount); err != nil {
			return err
		}
		if err := enc.BeginVarLenSeq(); err != nil {
			return err
		}
		if err := enc.SetVarLenSeqLen(len(s.Elems)); err != nil {
			return err
		}
		for _, elem := range s.Elems {
			if err := enc.BeginSeqElem(); err != nil {
				return err
			}
			if err := encodeSchemaValue(enc, elem); err != nil {
				return err
			}
		}
		return enc.FinishSeq()
	case schema.KindStruct:
		if err := enc.BeginEnumVariant(7, "Struct", variantCount); err != nil {
			return err
		}
		if err := enc.BeginVarLenSeq(); err != nil {
			return err
		}
		if err := enc.SetVarLenSeqLen(len(s.Fields)); err != nil {
			return err
		}
		for _, f := range s.Fields {
			if err := enc.BeginSeqElem(); err != nil {
				return err
			}
			if err := enc.BeginStruct(); err != nil {
				return err
			}
			if err := enc.BeginStructField("name"); err != nil {
				return err
			}
			if err := enc.EncodeStr(f.Name); err != nil {
				return err
			}
			if err := enc.BeginStructField("inner"); err != nil {
				return err
			}
			if err := encodeSchemaValue(enc, f.Schema); err != nil {
				return err
			}
			if err := enc.FinishStruct(); err != nil {
				return err
			}
		}
		return enc.FinishSeq()
	case schema.KindEnum:
		if err := enc.BeginEnumVariant(8, "Enum", variantCount); err != nil {
			return err
		}
		if err := enc.BeginVarLenSeq(); err != nil {
			return err
		}
		if err := enc.SetVarLenSeqLen(len(s.Variants)); err != nil {
			return err
		}
		for _, v := range s.Variants {
			if err := enc.BeginSeqElem(); err != nil {
				return err
			}
			if err := enc.BeginStruct(); err != nil {
				return err
			}
			if err := enc.BeginStructField("name"); err != nil {
				return err
			}
			if err := enc.EncodeStr(v.Name); err != nil {
				return err
			}
			if err := enc.BeginStructField("inner"); err != nil {
				return err
			}
			if err := encodeSchemaValue(enc, v.Schema); err != nil {
				return err
			}
			if err := enc.FinishStruct(); err != nil {
				return err
			}
		}
		return enc.FinishSeq()
	case schema.KindRecurse:
		if err := enc.BeginEnumVariant(9, "Recurse", variantCount); err != nil {
			return err
		}
		return enc.EncodeU64(uint64(s.RecurseLevel))
	default:
		return fmt.Errorf("coder: unknown schema.Kind %v", s.Kind)
	}
}

func decodeSchemaValue(dec *Decoder) (schema.Schema, error) {
	variantCount, err := dec.BeginEnum()
	if err != nil {
		return schema.Schema{}, err
	}
	ord, err := dec.DecodeEnumOrdinal(variantCount)
	if err != nil {
		return schema.Schema{}, err
	}

	switch ord {
	case 0:
		if err := dec.BeginEnumVariant(ord, "Scalar"); err != nil {
			return schema.Schema{}, err
		}
		scalarCount, err := dec.BeginEnum()
		if err != nil {
			return schema.Schema{}, err
		}
		sord, err := dec.DecodeEnumOrdinal(scalarCount)
		if err != nil {
			return schema.Schema{}, err
		}
		if sord < 0 || sord >= len(scalarKindNames) {
			return schema.Schema{}, fmt.Errorf("coder: scalar ordinal %d out of range", sord)
		}
		if err := dec.BeginEnumVariant(sord, scalarKindNames[sord]); err != nil {
			return schema.Schema{}, err
		}
		if err := dec.DecodeUnit(); err != nil {
			return schema.Schema{}, err
		}
		return schema.ScalarSchema(schema.ScalarType(sord)), nil
	case 1:
		if err := dec.BeginEnumVariant(ord, "Str"); err != nil {
			return schema.Schema{}, err
		}
		return schema.StrSchema(), dec.DecodeUnit()
	case 2:
		if err := dec.BeginEnumVariant(ord, "Bytes"); err != nil {
			return schema.Schema{}, err
		}
		return schema.BytesSchema(), dec.DecodeUnit()
	case 3:
		if err := dec.BeginEnumVariant(ord, "Unit"); err != nil {
			return schema.Schema{}, err
		}
		return schema.UnitSchema(), dec.DecodeUnit()
	case 4:
		if err := dec.BeginEnumVariant(ord, "Option"); err != nil {
			return schema.Schema{}, err
		}
		inner, err := decodeSchemaValue(dec)
		if err != nil {
			return schema.Schema{}, err
		}
		return schema.OptionSchema(inner), nil
	case 5:
		if err := dec.BeginEnumVariant(ord, "Seq"); err != nil {
			return schema.Schema{}, err
		}
		if err := dec.BeginStruct(); err != nil {
			return schema.Schema{}, err
		}
		if err := dec.BeginStructField("len"); err != nil {
			return schema.Schema{}, err
		}
		present, err := dec.PeekOption()
		if err != nil {
			return schema.Schema{}, err
		}
		var seqLen *int
		if present {
			if err := dec.BeginSome(); err != nil {
				return schema.Schema{}, err
			}
			n, err := dec.DecodeU64()
			if err != nil {
				return schema.Schema{}, err
			}
			ln := int(n)
			seqLen = &ln
		} else if err := dec.DecodeNone(); err != nil {
			return schema.Schema{}, err
		}
		if err := dec.BeginStructField("inner"); err != nil {
			return schema.Schema{}, err
		}
		inner, err := decodeSchemaValue(dec)
		if err != nil {
			return schema.Schema{}, err
		}
		if err := dec.FinishStruct(); err != nil {
			return schema.Schema{}, err
		}
		if seqLen == nil {
			return schema.VarSeqSchema(inner), nil
		}
		return schema.FixedSeqSchema(*seqLen, inner), nil
	case 6:
		if err := dec.BeginEnumVariant(ord, "Tuple"); err != nil {
			return schema.Schema{}, err
		}
		if err := dec.BeginVarLenSeq(); err != nil {
			return schema.Schema{}, err
		}
		n, err := dec.DecodeVarLenSeqLen()
		if err != nil {
			return schema.Schema{}, err
		}
		elems := make([]schema.Schema, n)
		for i := 0; i < n; i++ {
			if err := dec.BeginSeqElem(); err != nil {
				return schema.Schema{}, err
			}
			elems[i], err = decodeSchemaValue(dec)
			if err != nil {
				return schema.Schema{}, err
			}
		}
		if err := dec.FinishSeq(); err != nil {
			return schema.Schema{}, err
		}
		return schema.TupleSchema(elems...), nil
	case 7:
		if err := dec.BeginEnumVariant(ord, "Struct"); err != nil {
			return schema.Schema{}, err
		}
		fields, err := decodeSchemaFieldLikeSeq(dec)
		if err != nil {
			return schema.Schema{}, err
		}
		out := make([]schema.Field, len(fields))
		for i, f := range fields {
			out[i] = schema.Field(f)
		}
		return schema.StructSchema(out...), nil
	case 8:
		if err := dec.BeginEnumVariant(ord, "Enum"); err != nil {
			return schema.Schema{}, err
		}
		variants, err := decodeSchemaFieldLikeSeq(dec)
		if err != nil {
			return schema.Schema{}, err
		}
		out := make([]schema.Variant, len(variants))
		for i, v := range variants {
			out[i] = schema.Variant(v)
		}
		return schema.EnumSchema(out...), nil
	case 9:
		if err := dec.BeginEnumVariant(ord, "Recurse"); err != nil {
			return schema.Schema{}, err
		}
		n, err := dec.DecodeU64()
		if err != nil {
			return schema.Schema{}, err
		}
		return schema.RecurseSchema(int(n)), nil
	default:
		return schema.Schema{}, fmt.Errorf("coder: schema enum ordinal %d out of range", ord)
	}
}

// namedSchema is the shared wire shape of schema.Field and schema.Variant
// (a name string plus a nested Schema), decoded once and reinterpreted as
// whichever Go type the caller needs since the two are structurally
// identical.
type namedSchema struct {
	Name   string
	Schema schema.Schema
}

func decodeSchemaFieldLikeSeq(dec *Decoder) ([]namedSchema, error) {
	if err := dec.BeginVarLenSeq(); err != nil {
		return nil, err
	}
	n, err := dec.DecodeVarLenSeqLen()
	if err != nil {
		return nil, err
	}
	out := make([]namedSchema, n)
	for i := 0; i < n; i++ {
		if err := dec.BeginSeqElem(); err != nil {
			return nil, err
		}
		if err := dec.BeginStruct(); err != nil {
			return nil, err
		}
		if err := dec.BeginStructField("name"); err != nil {
			return nil, err
		}
		name, err := dec.DecodeStr()
		if err != nil {
			return nil, err
		}
		if err := dec.BeginStructField("inner"); err != nil {
			return nil, err
		}
		inner, err := decodeSchemaValue(dec)
		if err != nil {
			return nil, err
		}
		if err := dec.FinishStruct(); err != nil {
			return nil, err
		}
		out[i] = namedSchema{Name: name, Schema: inner}
	}
	if err := dec.FinishSeq(); err != nil {
		return nil, err
	}
	return out, nil
}
