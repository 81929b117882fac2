package reflectcodec

import (
	"math/big"
	"reflect"

	"github.com/blockberries/binschema/pkg/coder"
	"github.com/blockberries/binschema/pkg/knownschema"
	"github.com/blockberries/binschema/pkg/schema"
)

// Unmarshal decodes binschema wire bytes produced for v's type into v,
// which must be a non-nil pointer. v's Schema comes from DefaultRegistry.
func Unmarshal(data []byte, v any) error {
	return UnmarshalWithRegistry(data, v, knownschema.DefaultRegistry)
}

// UnmarshalWithRegistry is Unmarshal against an explicit Registry.
func UnmarshalWithRegistry(data []byte, v any, reg *knownschema.Registry) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr {
		return &DecodeError{Message: "unmarshal target must be a pointer", Cause: ErrNotPointer}
	}
	if rv.IsNil() {
		return &DecodeError{Message: "unmarshal target must be non-nil", Cause: ErrNilPointer}
	}
	target := rv.Elem()

	s, err := reg.For(target.Type())
	if err != nil {
		return &DecodeError{Type: target.Type().String(), Message: err.Error(), Cause: err}
	}

	dec := coder.NewDecoder(&s, data, nil)
	if err := unmarshalValue(dec, reg, target, &s, target.Type().String()); err != nil {
		return err
	}
	if !dec.State().IsFinished() {
		return &DecodeError{Type: target.Type().String(), Message: "value did not fully satisfy its schema", Cause: dec.State().Err()}
	}
	return nil
}

func unmarshalValue(dec *coder.Decoder, reg *knownschema.Registry, v reflect.Value, s *schema.Schema, path string) error {
	s, err := resolveSchema(reg, v, s)
	if err != nil {
		return &DecodeError{Type: path, Message: err.Error(), Cause: err}
	}

	switch s.Kind {
	case schema.KindScalar:
		return unmarshalScalar(dec, v, s.Scalar, path)
	case schema.KindStr:
		str, err := dec.DecodeStr()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetString(str)
		return nil
	case schema.KindBytes:
		b, err := dec.DecodeBytes()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetBytes(b)
		return nil
	case schema.KindUnit:
		return dwrap(path, dec.DecodeUnit())
	case schema.KindOption:
		return unmarshalOption(dec, reg, v, s, path)
	case schema.KindSeq:
		if v.Kind() == reflect.Map {
			return unmarshalMap(dec, reg, v, s, path)
		}
		return unmarshalSeq(dec, reg, v, s, path)
	case schema.KindStruct:
		return unmarshalStruct(dec, reg, v, s, path)
	case schema.KindEnum:
		return unmarshalEnum(dec, reg, v, s, path)
	default:
		return &DecodeError{Type: path, Message: "unsupported schema kind for unmarshal"}
	}
}

func unmarshalScalar(dec *coder.Decoder, v reflect.Value, t schema.ScalarType, path string) error {
	switch t {
	case schema.U8:
		n, err := dec.DecodeU8()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetUint(uint64(n))
	case schema.U16:
		n, err := dec.DecodeU16()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetUint(uint64(n))
	case schema.U32:
		n, err := dec.DecodeU32()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetUint(uint64(n))
	case schema.U64:
		n, err := dec.DecodeU64()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetUint(n)
	case schema.U128:
		n, err := dec.DecodeU128()
		if err != nil {
			return dwrap(path, err)
		}
		setBig128(v, n)
	case schema.I8:
		n, err := dec.DecodeI8()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetInt(int64(n))
	case schema.I16:
		n, err := dec.DecodeI16()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetInt(int64(n))
	case schema.I32:
		n, err := dec.DecodeI32()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetInt(int64(n))
	case schema.I64:
		n, err := dec.DecodeI64()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetInt(n)
	case schema.I128:
		n, err := dec.DecodeI128()
		if err != nil {
			return dwrap(path, err)
		}
		setBig128(v, n)
	case schema.F32:
		n, err := dec.DecodeF32()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetFloat(float64(n))
	case schema.F64:
		n, err := dec.DecodeF64()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetFloat(n)
	case schema.Char:
		n, err := dec.DecodeChar()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetInt(int64(n))
	case schema.Bool:
		b, err := dec.DecodeBool()
		if err != nil {
			return dwrap(path, err)
		}
		v.SetBool(b)
	default:
		return &DecodeError{Type: path, Message: "unsupported scalar type"}
	}
	return nil
}

// setBig128 stores n (freshly allocated by the Decoder) into v, which must
// be an addressable knownschema.Uint128 or knownschema.Int128.
func setBig128(v reflect.Value, n *big.Int) {
	switch p := v.Addr().Interface().(type) {
	case *knownschema.Uint128:
		*p = *knownschema.NewUint128(n)
	case *knownschema.Int128:
		*p = *knownschema.NewInt128(n)
	}
}

func unmarshalOption(dec *coder.Decoder, reg *knownschema.Registry, v reflect.Value, s *schema.Schema, path string) error {
	if v.Kind() != reflect.Ptr {
		return &DecodeError{Type: path, Message: "option schema requires a Go pointer"}
	}
	present, err := dec.PeekOption()
	if err != nil {
		return dwrap(path, err)
	}
	if !present {
		if err := dwrap(path, dec.DecodeNone()); err != nil {
			return err
		}
		v.Set(reflect.Zero(v.Type()))
		return nil
	}
	if err := dwrap(path, dec.BeginSome()); err != nil {
		return err
	}
	elem := reflect.New(v.Type().Elem())
	if err := unmarshalValue(dec, reg, elem.Elem(), s.Inner, path+".?"); err != nil {
		return err
	}
	v.Set(elem)
	return nil
}

func unmarshalSeq(dec *coder.Decoder, reg *knownschema.Registry, v reflect.Value, s *schema.Schema, path string) error {
	var n int
	if s.SeqLen != nil {
		n = *s.SeqLen
		if err := dwrap(path, dec.BeginFixedLenSeq(n)); err != nil {
			return err
		}
	} else {
		if err := dwrap(path, dec.BeginVarLenSeq()); err != nil {
			return err
		}
		var err error
		n, err = dec.DecodeVarLenSeqLen()
		if err != nil {
			return dwrap(path, err)
		}
	}

	switch v.Kind() {
	case reflect.Slice:
		v.Set(reflect.MakeSlice(v.Type(), n, n))
	case reflect.Array:
		if n != v.Len() {
			return &DecodeError{Type: path, Message: "array length does not match wire length"}
		}
	default:
		return &DecodeError{Type: path, Message: "seq schema requires a Go slice or array"}
	}

	for i := 0; i < n; i++ {
		if err := dwrap(path, dec.BeginSeqElem()); err != nil {
			return err
		}
		if err := unmarshalValue(dec, reg, v.Index(i), s.Inner, elemPath(path, i)); err != nil {
			return err
		}
	}
	return dwrap(path, dec.FinishSeq())
}

func unmarshalMap(dec *coder.Decoder, reg *knownschema.Registry, v reflect.Value, s *schema.Schema, path string) error {
	tuple := s.Inner
	if tuple.Kind != schema.KindTuple || len(tuple.Elems) != 2 {
		return &DecodeError{Type: path, Message: "map schema must be a seq of 2-tuples"}
	}
	if err := dwrap(path, dec.BeginVarLenSeq()); err != nil {
		return err
	}
	n, err := dec.DecodeVarLenSeqLen()
	if err != nil {
		return dwrap(path, err)
	}

	v.Set(reflect.MakeMapWithSize(v.Type(), n))
	for i := 0; i < n; i++ {
		if err := dwrap(path, dec.BeginSeqElem()); err != nil {
			return err
		}
		if err := dwrap(path, dec.BeginTuple()); err != nil {
			return err
		}
		if err := dwrap(path, dec.BeginTupleElem()); err != nil {
			return err
		}
		key := reflect.New(v.Type().Key()).Elem()
		if err := unmarshalValue(dec, reg, key, &tuple.Elems[0], path+".key"); err != nil {
			return err
		}
		if err := dwrap(path, dec.BeginTupleElem()); err != nil {
			return err
		}
		val := reflect.New(v.Type().Elem()).Elem()
		if err := unmarshalValue(dec, reg, val, &tuple.Elems[1], path+".value"); err != nil {
			return err
		}
		if err := dwrap(path, dec.FinishTuple()); err != nil {
			return err
		}
		v.SetMapIndex(key, val)
	}
	return dwrap(path, dec.FinishSeq())
}

func unmarshalStruct(dec *coder.Decoder, reg *knownschema.Registry, v reflect.Value, s *schema.Schema, path string) error {
	fields, ok := reg.StructFields(v.Type())
	if !ok {
		return &DecodeError{Type: path, Message: "struct type not registered with knownschema", Cause: ErrUnregisteredType}
	}
	if len(fields) != len(s.Fields) {
		return &DecodeError{Type: path, Message: "registry field count disagrees with cached schema"}
	}
	if err := dwrap(path, dec.BeginStruct()); err != nil {
		return err
	}
	for i, f := range fields {
		if err := dwrap(path, dec.BeginStructField(f.WireName)); err != nil {
			return err
		}
		fv := v.FieldByIndex(f.GoField.Index)
		if err := unmarshalValue(dec, reg, fv, &s.Fields[i].Schema, path+"."+f.WireName); err != nil {
			return err
		}
	}
	return dwrap(path, dec.FinishStruct())
}

func unmarshalEnum(dec *coder.Decoder, reg *knownschema.Registry, v reflect.Value, s *schema.Schema, path string) error {
	if v.Kind() != reflect.Interface {
		return &DecodeError{Type: path, Message: "enum schema requires a Go interface value"}
	}
	variants, ok := reg.UnionVariants(v.Type())
	if !ok {
		return &DecodeError{Type: path, Message: "interface type not registered with knownschema", Cause: ErrUnregisteredType}
	}

	variantCount, err := dec.BeginEnum()
	if err != nil {
		return dwrap(path, err)
	}
	ord, err := dec.DecodeEnumOrdinal(variantCount)
	if err != nil {
		return dwrap(path, err)
	}
	if ord < 0 || ord >= len(variants) {
		return &DecodeError{Type: path, Message: "enum ordinal out of range for registered variants"}
	}
	name := variants[ord].Name
	if err := dwrap(path, dec.BeginEnumVariant(ord, name)); err != nil {
		return err
	}

	payload := reflect.New(variants[ord].Type)
	if err := unmarshalValue(dec, reg, payload.Elem(), &s.Variants[ord].Schema, path+"."+name); err != nil {
		return err
	}
	if variants[ord].PtrReceiver {
		v.Set(payload)
	} else {
		v.Set(payload.Elem())
	}
	return nil
}

func dwrap(path string, err error) error {
	if err == nil {
		return nil
	}
	return &DecodeError{Type: path, Cause: err, Message: err.Error()}
}
