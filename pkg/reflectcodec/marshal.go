// Package reflectcodec is the generic-serialization adapter: it walks a Go
// value by reflection and drives pkg/coder's Encoder/Decoder according to
// the Schema pkg/knownschema derives for the value's type, the way the
// teacher's marshal.go/unmarshal.go walk a reflect.Value and drive its
// Writer/Reader according to Go kind alone. Here the Schema at the current
// position, not the Go kind, decides fixed-vs-variable sequences and enum
// ordinal width, mirroring the original's serde.rs need() peek.
package reflectcodec

import (
	"reflect"
	"strconv"

	"github.com/blockberries/binschema/pkg/coder"
	"github.com/blockberries/binschema/pkg/knownschema"
	"github.com/blockberries/binschema/pkg/schema"
)

// Marshal encodes v into binschema wire bytes, deriving v's Schema from the
// package-level DefaultRegistry.
func Marshal(v any) ([]byte, error) {
	return MarshalWithRegistry(v, knownschema.DefaultRegistry)
}

// MarshalWithRegistry is Marshal against an explicit Registry, for callers
// that keep their types out of the shared DefaultRegistry.
func MarshalWithRegistry(v any, reg *knownschema.Registry) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, &EncodeError{Message: "cannot marshal an untyped nil"}
	}

	s, err := reg.For(rv.Type())
	if err != nil {
		return nil, &EncodeError{Type: rv.Type().String(), Message: err.Error(), Cause: err}
	}

	enc := coder.NewEncoder(&s, nil)
	if err := marshalValue(enc, reg, rv, &s, rv.Type().String()); err != nil {
		return nil, err
	}
	if !enc.State().IsFinished() {
		return nil, &EncodeError{Type: rv.Type().String(), Message: "value did not fully satisfy its schema", Cause: enc.State().Err()}
	}
	return append([]byte(nil), enc.Bytes()...), nil
}

// resolveSchema follows a Recurse node by re-deriving the Schema for v's
// own (necessarily recurring) Go type from the registry, rather than
// threading a separate ancestor stack through the walk: registry.For is a
// pure function of reflect.Type, so recomputing it at the point of
// recursion always reproduces exactly the schema a manually-maintained
// ancestor stack would have resolved to.
func resolveSchema(reg *knownschema.Registry, v reflect.Value, s *schema.Schema) (*schema.Schema, error) {
	if s.Kind != schema.KindRecurse {
		return s, nil
	}
	resolved, err := reg.For(v.Type())
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

func marshalValue(enc *coder.Encoder, reg *knownschema.Registry, v reflect.Value, s *schema.Schema, path string) error {
	s, err := resolveSchema(reg, v, s)
	if err != nil {
		return &EncodeError{Type: path, Message: err.Error(), Cause: err}
	}

	switch s.Kind {
	case schema.KindScalar:
		return marshalScalar(enc, v, s.Scalar, path)
	case schema.KindStr:
		return wrap(path, enc.EncodeStr(v.String()))
	case schema.KindBytes:
		return wrap(path, enc.EncodeBytes(v.Bytes()))
	case schema.KindUnit:
		return wrap(path, enc.EncodeUnit())
	case schema.KindOption:
		return marshalOption(enc, reg, v, s, path)
	case schema.KindSeq:
		if v.Kind() == reflect.Map {
			return marshalMap(enc, reg, v, s, path)
		}
		return marshalSeq(enc, reg, v, s, path)
	case schema.KindStruct:
		return marshalStruct(enc, reg, v, s, path)
	case schema.KindEnum:
		return marshalEnum(enc, reg, v, s, path)
	default:
		return &EncodeError{Type: path, Message: "unsupported schema kind for marshal"}
	}
}

func marshalScalar(enc *coder.Encoder, v reflect.Value, t schema.ScalarType, path string) error {
	switch t {
	case schema.U8:
		return wrap(path, enc.EncodeU8(uint8(v.Uint())))
	case schema.U16:
		return wrap(path, enc.EncodeU16(uint16(v.Uint())))
	case schema.U32:
		return wrap(path, enc.EncodeU32(uint32(v.Uint())))
	case schema.U64:
		return wrap(path, enc.EncodeU64(v.Uint()))
	case schema.U128:
		big128, ok := v.Interface().(knownschema.Uint128)
		if !ok {
			return &EncodeError{Type: path, Message: "expected knownschema.Uint128"}
		}
		return wrap(path, enc.EncodeU128(big128.Big()))
	case schema.I8:
		return wrap(path, enc.EncodeI8(int8(v.Int())))
	case schema.I16:
		return wrap(path, enc.EncodeI16(int16(v.Int())))
	case schema.I32:
		return wrap(path, enc.EncodeI32(int32(v.Int())))
	case schema.I64:
		return wrap(path, enc.EncodeI64(v.Int()))
	case schema.I128:
		big128, ok := v.Interface().(knownschema.Int128)
		if !ok {
			return &EncodeError{Type: path, Message: "expected knownschema.Int128"}
		}
		return wrap(path, enc.EncodeI128(big128.Big()))
	case schema.F32:
		return wrap(path, enc.EncodeF32(float32(v.Float())))
	case schema.F64:
		return wrap(path, enc.EncodeF64(v.Float()))
	case schema.Char:
		return wrap(path, enc.EncodeChar(rune(v.Int())))
	case schema.Bool:
		return wrap(path, enc.EncodeBool(v.Bool()))
	default:
		return &EncodeError{Type: path, Message: "unsupported scalar type"}
	}
}

func marshalOption(enc *coder.Encoder, reg *knownschema.Registry, v reflect.Value, s *schema.Schema, path string) error {
	if v.Kind() != reflect.Ptr {
		return &EncodeError{Type: path, Message: "option schema requires a Go pointer"}
	}
	if v.IsNil() {
		return wrap(path, enc.EncodeNone())
	}
	if err := wrap(path, enc.BeginSome()); err != nil {
		return err
	}
	return marshalValue(enc, reg, v.Elem(), s.Inner, path+".?")
}

func marshalSeq(enc *coder.Encoder, reg *knownschema.Registry, v reflect.Value, s *schema.Schema, path string) error {
	n := v.Len()
	if s.SeqLen != nil {
		if err := wrap(path, enc.BeginFixedLenSeq(n)); err != nil {
			return err
		}
	} else {
		if err := wrap(path, enc.BeginVarLenSeq()); err != nil {
			return err
		}
		if err := wrap(path, enc.SetVarLenSeqLen(n)); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		if err := wrap(path, enc.BeginSeqElem()); err != nil {
			return err
		}
		if err := marshalValue(enc, reg, v.Index(i), s.Inner, elemPath(path, i)); err != nil {
			return err
		}
	}
	return wrap(path, enc.FinishSeq())
}

func marshalMap(enc *coder.Encoder, reg *knownschema.Registry, v reflect.Value, s *schema.Schema, path string) error {
	tuple := s.Inner
	if tuple.Kind != schema.KindTuple || len(tuple.Elems) != 2 {
		return &EncodeError{Type: path, Message: "map schema must be a seq of 2-tuples"}
	}
	keys := v.MapKeys()
	if err := wrap(path, enc.BeginVarLenSeq()); err != nil {
		return err
	}
	if err := wrap(path, enc.SetVarLenSeqLen(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := wrap(path, enc.BeginSeqElem()); err != nil {
			return err
		}
		if err := wrap(path, enc.BeginTuple()); err != nil {
			return err
		}
		if err := wrap(path, enc.BeginTupleElem()); err != nil {
			return err
		}
		if err := marshalValue(enc, reg, k, &tuple.Elems[0], path+".key"); err != nil {
			return err
		}
		if err := wrap(path, enc.BeginTupleElem()); err != nil {
			return err
		}
		if err := marshalValue(enc, reg, v.MapIndex(k), &tuple.Elems[1], path+".value"); err != nil {
			return err
		}
		if err := wrap(path, enc.FinishTuple()); err != nil {
			return err
		}
	}
	return wrap(path, enc.FinishSeq())
}

func marshalStruct(enc *coder.Encoder, reg *knownschema.Registry, v reflect.Value, s *schema.Schema, path string) error {
	fields, ok := reg.StructFields(v.Type())
	if !ok {
		return &EncodeError{Type: path, Message: "struct type not registered with knownschema", Cause: ErrUnregisteredType}
	}
	if len(fields) != len(s.Fields) {
		return &EncodeError{Type: path, Message: "registry field count disagrees with cached schema"}
	}
	if err := wrap(path, enc.BeginStruct()); err != nil {
		return err
	}
	for i, f := range fields {
		if err := wrap(path, enc.BeginStructField(f.WireName)); err != nil {
			return err
		}
		fv := v.FieldByIndex(f.GoField.Index)
		if err := marshalValue(enc, reg, fv, &s.Fields[i].Schema, path+"."+f.WireName); err != nil {
			return err
		}
	}
	return wrap(path, enc.FinishStruct())
}

func marshalEnum(enc *coder.Encoder, reg *knownschema.Registry, v reflect.Value, s *schema.Schema, path string) error {
	if v.Kind() != reflect.Interface {
		return &EncodeError{Type: path, Message: "enum schema requires a Go interface value"}
	}
	if v.IsNil() {
		return &EncodeError{Type: path, Message: "nil interface value has no union variant", Cause: ErrNilPointer}
	}
	variants, ok := reg.UnionVariants(v.Type())
	if !ok {
		return &EncodeError{Type: path, Message: "interface type not registered with knownschema", Cause: ErrUnregisteredType}
	}

	elem := v.Elem()
	concrete := elem.Type()
	for concrete.Kind() == reflect.Ptr {
		concrete = concrete.Elem()
	}

	ord := -1
	for i, variant := range variants {
		if variant.Type == concrete {
			ord = i
			break
		}
	}
	if ord < 0 {
		return &EncodeError{Type: path, Message: "value's concrete type is not a registered union variant", Cause: ErrUnknownVariant}
	}

	variantCount, err := enc.BeginEnum()
	if err != nil {
		return wrap(path, err)
	}
	if err := wrap(path, enc.BeginEnumVariant(ord, variants[ord].Name, variantCount)); err != nil {
		return err
	}

	payload := elem
	for payload.Kind() == reflect.Ptr {
		if payload.IsNil() {
			return &EncodeError{Type: path, Message: "nil pointer union variant payload", Cause: ErrNilPointer}
		}
		payload = payload.Elem()
	}
	return marshalValue(enc, reg, payload, &s.Variants[ord].Schema, path+"."+variants[ord].Name)
}

func elemPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func wrap(path string, err error) error {
	if err == nil {
		return nil
	}
	return &EncodeError{Type: path, Cause: err, Message: err.Error()}
}
