package schema

// Scalar constructors. These return Schema values by value since Schema is
// small and comparable by structural equality (see Equal).

func ScalarSchema(t ScalarType) Schema { return Schema{Kind: KindScalar, Scalar: t} }

func U8Schema() Schema   { return ScalarSchema(U8) }
func U16Schema() Schema  { return ScalarSchema(U16) }
func U32Schema() Schema  { return ScalarSchema(U32) }
func U64Schema() Schema  { return ScalarSchema(U64) }
func U128Schema() Schema { return ScalarSchema(U128) }
func I8Schema() Schema   { return ScalarSchema(I8) }
func I16Schema() Schema  { return ScalarSchema(I16) }
func I32Schema() Schema  { return ScalarSchema(I32) }
func I64Schema() Schema  { return ScalarSchema(I64) }
func I128Schema() Schema { return ScalarSchema(I128) }
func F32Schema() Schema  { return ScalarSchema(F32) }
func F64Schema() Schema  { return ScalarSchema(F64) }
func CharSchema() Schema { return ScalarSchema(Char) }
func BoolSchema() Schema { return ScalarSchema(Bool) }

func StrSchema() Schema   { return Schema{Kind: KindStr} }
func BytesSchema() Schema { return Schema{Kind: KindBytes} }
func UnitSchema() Schema  { return Schema{Kind: KindUnit} }

// OptionSchema describes a value that is either absent or a present inner
// value conforming to inner.
func OptionSchema(inner Schema) Schema {
	return Schema{Kind: KindOption, Inner: cloneBox(inner)}
}

// FixedSeqSchema describes a sequence of exactly n elements, each
// conforming to elem, with no length prefix on the wire.
func FixedSeqSchema(n int, elem Schema) Schema {
	ln := n
	return Schema{Kind: KindSeq, Inner: cloneBox(elem), SeqLen: &ln}
}

// VarSeqSchema describes a variable-length sequence of elements each
// conforming to elem, varint-length-prefixed on the wire.
func VarSeqSchema(elem Schema) Schema {
	return Schema{Kind: KindSeq, Inner: cloneBox(elem)}
}

// TupleSchema describes an ordered, fixed-arity, heterogeneous sequence of
// elements with no framing between them on the wire.
func TupleSchema(elems ...Schema) Schema {
	return Schema{Kind: KindTuple, Elems: append([]Schema(nil), elems...)}
}

// StructSchema describes a named-field record encoded as a concatenation of
// its fields' encodings in declaration order, with no framing.
func StructSchema(fields ...Field) Schema {
	return Schema{Kind: KindStruct, Fields: append([]Field(nil), fields...)}
}

// EnumSchema describes a tagged union: exactly one of the named variants is
// present, selected by an ordinal encoded with OrdinalSize(len(variants))
// bytes.
func EnumSchema(variants ...Variant) Schema {
	return Schema{Kind: KindEnum, Variants: append([]Variant(nil), variants...)}
}

// RecurseSchema describes a back-edge to an ancestor schema node level
// levels up the enclosing schema stack (1 means the immediate parent).
func RecurseSchema(level int) Schema {
	return Schema{Kind: KindRecurse, RecurseLevel: level}
}

func cloneBox(s Schema) *Schema {
	cp := s
	return &cp
}
